//go:build linux

package watchdog

import "testing"

func TestParseMemoryRegion(t *testing.T) {
	start, region := parseMemoryRegion("00400000-00401000 r-xp 00000000 08:01 1234 /bin/sample")
	if start != 0x400000 {
		t.Fatalf("start = 0x%x, want 0x400000", start)
	}
	if region.Size != 0x1000 {
		t.Fatalf("size = 0x%x, want 0x1000", region.Size)
	}
	if region.File != "/bin/sample" {
		t.Fatalf("file = %q, want /bin/sample", region.File)
	}
	if region.Permissions != "r-xp" {
		t.Fatalf("permissions = %q, want r-xp", region.Permissions)
	}
}

func TestFindTextSection(t *testing.T) {
	tgt := &Target{
		Filename: "/bin/sample",
		Memory: MemoryMap{
			0x400000: {Address: 0x400000, File: "/bin/sample", Permissions: "r-xp", Size: 0x1000},
			0x600000: {Address: 0x600000, File: "/bin/sample", Permissions: "rw-p", Size: 0x1000},
		},
	}

	addr, ok := tgt.FindTextSection()
	if !ok {
		t.Fatal("FindTextSection did not find the executable mapping")
	}
	if addr != 0x400000 {
		t.Fatalf("FindTextSection = 0x%x, want 0x400000", addr)
	}
}

func TestFindTextSectionAbsent(t *testing.T) {
	tgt := &Target{Filename: "/bin/sample", Memory: MemoryMap{}}
	if _, ok := tgt.FindTextSection(); ok {
		t.Fatal("FindTextSection should report false on an empty map")
	}
}
