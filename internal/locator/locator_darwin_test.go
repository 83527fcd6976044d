//go:build darwin

package locator

import "testing"

// TestLocateSelfConsistent checks the same stability property as the
// cross-platform locator test, scoped to the segment-introspection
// environment so it only runs where that file is compiled.
func TestLocateSelfConsistent(t *testing.T) {
	first := Locate()
	second := Locate()
	if first.Available != second.Available {
		t.Fatalf("Locate availability is not stable: %v vs %v", first, second)
	}
}
