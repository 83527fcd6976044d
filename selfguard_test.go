package selfguard

import "testing"

// TestCleanRun exercises scenario S1 of spec.md §8.
func TestCleanRun(t *testing.T) {
	if got := Init(); got != OK {
		t.Fatalf("Init = %v, want OK", got)
	}
	defer Shutdown()

	if got := GetState(); got != Safe {
		t.Fatalf("GetState after init = %v, want Safe", got)
	}

	if got := Snapshot(); got != OK {
		t.Fatalf("Snapshot = %v, want OK", got)
	}

	for i := 0; i < 10; i++ {
		if got := CheckIntegrity(CheckAll); got != OK {
			t.Fatalf("CheckIntegrity iteration %d = %v, want OK", i, got)
		}
	}

	if got := GetState(); got != Safe {
		t.Fatalf("GetState after ten clean checks = %v, want Safe", got)
	}

	if got := Shutdown(); got != OK {
		t.Fatalf("Shutdown = %v, want OK", got)
	}
}

// TestUninitializedAccess exercises scenario S2.
func TestUninitializedAccess(t *testing.T) {
	if got := Snapshot(); got != ErrNotInit {
		t.Fatalf("Snapshot before init = %v, want ErrNotInit", got)
	}
	if got := CheckIntegrity(CheckAll); got != ErrNotInit {
		t.Fatalf("CheckIntegrity before init = %v, want ErrNotInit", got)
	}
	if got := DetectDebugger(); got != -1 {
		t.Fatalf("DetectDebugger before init = %d, want -1", got)
	}
	if got := GetState(); got != Compromised {
		t.Fatalf("GetState before init = %v, want Compromised", got)
	}
}

// TestZeroMask exercises scenario S6.
func TestZeroMask(t *testing.T) {
	if got := Init(); got != OK {
		t.Fatalf("Init = %v, want OK", got)
	}
	defer Shutdown()

	if got := CheckIntegrity(0); got != ErrInternal {
		t.Fatalf("CheckIntegrity(0) = %v, want ErrInternal", got)
	}
	if got := GetState(); got != Safe {
		t.Fatalf("GetState after zero mask = %v, want Safe", got)
	}
}

// TestReinitRoundTrip exercises scenario S7.
func TestReinitRoundTrip(t *testing.T) {
	if got := Init(); got != OK {
		t.Fatalf("first Init = %v, want OK", got)
	}
	if got := Shutdown(); got != OK {
		t.Fatalf("Shutdown = %v, want OK", got)
	}
	if got := Init(); got != OK {
		t.Fatalf("second Init = %v, want OK", got)
	}
	defer Shutdown()

	if got := GetState(); got != Safe {
		t.Fatalf("GetState after re-init = %v, want Safe", got)
	}
}

func TestAlreadyInit(t *testing.T) {
	if got := Init(); got != OK {
		t.Fatalf("Init = %v, want OK", got)
	}
	defer Shutdown()

	if got := Init(); got != ErrAlreadyInit {
		t.Fatalf("second Init = %v, want ErrAlreadyInit", got)
	}
}

func TestImplementationReportsKnownLabel(t *testing.T) {
	switch Implementation() {
	case "x86_64-native", "arm64-native", "c-fallback":
	default:
		t.Fatalf("Implementation() = %q, not a recognized label", Implementation())
	}
}

func TestResultSatisfiesError(t *testing.T) {
	var err error = ErrNotInit
	if err.Error() == "" {
		t.Fatal("Result.Error() returned empty string")
	}
}
