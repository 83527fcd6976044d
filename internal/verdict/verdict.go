// Package verdict defines the tri-state security verdict shared by the
// state manager and the public facade.
package verdict

// Verdict is the monitor's coarse judgment of process integrity. Values
// are totally ordered: Safe < Warning < Compromised.
type Verdict int32

const (
	Safe Verdict = iota
	Warning
	Compromised
)

// Clamp fails secure: any value outside the enumerated range is treated
// as Compromised.
func Clamp(v int32) Verdict {
	if v < int32(Safe) || v > int32(Compromised) {
		return Compromised
	}
	return Verdict(v)
}
