package primitives

import (
	"math/bits"
	"unsafe"

	"github.com/selfguard/selfguard/internal/locator"
)

// ChecksumBytes runs the monitor's tamper-evidence digest: a 32-bit
// running rotate-left/XOR recurrence over data, in order, starting from
// h = 0. It is intentionally weak and fast — a tripwire, not a MAC.
func ChecksumBytes(data []byte) uint32 {
	var h uint32
	for _, b := range data {
		h = bits.RotateLeft32(h, 1) ^ uint32(b)
	}
	return h
}

// ChecksumRegion checksums a locator.Region in place, without copying it
// into a Go-managed buffer. An unavailable, empty, or nil region
// checksums to 0.
func ChecksumRegion(r locator.Region) uint32 {
	if !r.Available || r.Start == 0 || r.Length <= 0 {
		return 0
	}
	data := unsafe.Slice((*byte)(unsafe.Pointer(r.Start)), r.Length)
	return ChecksumBytes(data)
}
