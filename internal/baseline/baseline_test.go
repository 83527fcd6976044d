package baseline

import "testing"

func TestZeroClearsRecord(t *testing.T) {
	r := Record{CodeChecksum: 0xdeadbeef, BaselineTSC: 12345, Initialized: true}
	r.Zero()

	if r.CodeChecksum != 0 {
		t.Errorf("CodeChecksum = %d, want 0", r.CodeChecksum)
	}
	if r.BaselineTSC != 0 {
		t.Errorf("BaselineTSC = %d, want 0", r.BaselineTSC)
	}
	if r.Initialized {
		t.Error("Initialized = true, want false")
	}
}

func TestSelfChecksumDeterministic(t *testing.T) {
	r := Record{CodeChecksum: 42, BaselineTSC: 99, Initialized: true}
	sum := func(b []byte) uint32 {
		var h uint32
		for _, c := range b {
			h = h<<1 ^ uint32(c)
		}
		return h
	}

	a := r.SelfChecksum(sum)
	b := r.SelfChecksum(sum)
	if a != b {
		t.Errorf("SelfChecksum is not deterministic: %d vs %d", a, b)
	}
}

func TestSelfChecksumChangesWithRecord(t *testing.T) {
	sum := func(b []byte) uint32 {
		var h uint32
		for _, c := range b {
			h = h<<1 ^ uint32(c)
		}
		return h
	}

	r1 := Record{CodeChecksum: 1, Initialized: true}
	r2 := Record{CodeChecksum: 2, Initialized: true}

	if r1.SelfChecksum(sum) == r2.SelfChecksum(sum) {
		t.Error("SelfChecksum should differ when the record's bytes differ")
	}
}
