package locator

import "testing"

// TestLocateConsistency checks the property the orchestrator relies on:
// repeated calls agree on availability, and an available region is never
// reported with a nonsensical extent.
func TestLocateConsistency(t *testing.T) {
	first := Locate()
	second := Locate()

	if first.Available != second.Available {
		t.Fatalf("Locate availability is not stable across calls: %v vs %v", first, second)
	}

	if first.Available && first.Length <= 0 {
		t.Fatalf("available region has non-positive length: %+v", first)
	}

	if first.Available && first.Start == 0 {
		t.Fatalf("available region has a zero start address: %+v", first)
	}
}
