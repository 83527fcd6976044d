package primitives

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestChecksumReferenceVectors(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		want uint32
	}{
		{"empty", []byte{}, 0},
		{"single zero byte", []byte{0x00}, 0},
		{"single one byte", []byte{0x01}, 1},
		{"two one bytes", []byte{0x01, 0x01}, 3},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ChecksumBytes(tc.data); got != tc.want {
				t.Fatalf("ChecksumBytes(%v) = %d, want %d", tc.data, got, tc.want)
			}
		})
	}
}

func TestChecksumRegionDegenerateCases(t *testing.T) {
	if got := ChecksumRegion(struct {
		Start     uintptr
		Length    int
		Available bool
	}{}); got != 0 {
		t.Fatalf("zero-value region should checksum to 0, got %d", got)
	}
}

// TestChecksumDeterminism_Property: identical inputs always yield
// identical outputs.
func TestChecksumDeterminism_Property(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("checksum is a pure function of its bytes", prop.ForAll(
		func(data []byte) bool {
			return ChecksumBytes(data) == ChecksumBytes(append([]byte{}, data...))
		},
		gen.SliceOf(gen.UInt8()).Map(func(bs []uint8) []byte {
			out := make([]byte, len(bs))
			for i, b := range bs {
				out[i] = byte(b)
			}
			return out
		}),
	))

	properties.TestingRun(t)
}

// TestChecksumTamperEvidence_Property: flipping any single byte changes
// the output, since each step of the recurrence is injective.
func TestChecksumTamperEvidence_Property(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("flipping one byte changes the checksum", prop.ForAll(
		func(data []byte, idx int, flip uint8) bool {
			if len(data) == 0 {
				return true
			}
			idx = idx % len(data)
			if idx < 0 {
				idx += len(data)
			}
			if flip == 0 {
				flip = 1
			}

			tampered := append([]byte{}, data...)
			tampered[idx] ^= byte(flip)

			return ChecksumBytes(data) != ChecksumBytes(tampered)
		},
		gen.SliceOfN(16, gen.UInt8()).Map(func(bs []uint8) []byte {
			out := make([]byte, len(bs))
			for i, b := range bs {
				out[i] = byte(b)
			}
			return out
		}),
		gen.IntRange(0, 15),
		gen.UInt8(),
	))

	properties.TestingRun(t)
}
