//go:build !linux || (!amd64 && !arm64)

package primitives

import "time"

// epoch anchors genericCycleCounter's nanosecond deltas to this process's
// start rather than the Unix epoch, since the portable backend's absolute
// magnitude carries no meaning of its own (spec.md §4.4).
var epoch = time.Now()

// genericCycleCounter substitutes a monotonic-clock nanosecond reading
// for a hardware cycle counter on hosts with no native backend.
func genericCycleCounter() uint64 {
	return uint64(time.Since(epoch).Nanoseconds())
}
