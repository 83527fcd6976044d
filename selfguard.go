// Package selfguard is the public facade (spec.md §4.1) of an in-process
// runtime integrity monitor: an application takes a baseline snapshot of
// its own executable code and timing environment, then periodically asks
// whether the process has been tampered with.
//
// The facade validates arguments and lifecycle and translates the state
// manager's verdict into the stable Result vocabulary below; it holds no
// state of its own.
package selfguard

import (
	"github.com/selfguard/selfguard/internal/primitives"
	"github.com/selfguard/selfguard/internal/state"
	"github.com/selfguard/selfguard/internal/verdict"
)

// Result is the facade's stable return-code vocabulary (spec.md §6). It
// implements error so callers can write the idiomatic
// `if r := selfguard.Init(); r != selfguard.OK { return r }`.
type Result int

const (
	OK Result = 0

	ErrInit        Result = -1
	ErrNotInit     Result = -2
	ErrAlreadyInit Result = -3
	ErrInternal    Result = -4
)

func (r Result) Error() string {
	switch r {
	case OK:
		return "selfguard: ok"
	case ErrInit:
		return "selfguard: initialization failed"
	case ErrNotInit:
		return "selfguard: not initialized"
	case ErrAlreadyInit:
		return "selfguard: already initialized"
	case ErrInternal:
		return "selfguard: internal check failure"
	default:
		return "selfguard: unknown result"
	}
}

// Verdict is the monitor's tri-valued judgment of process integrity.
type Verdict = verdict.Verdict

const (
	Safe        = verdict.Safe
	Warning     = verdict.Warning
	Compromised = verdict.Compromised
)

// CheckMask selects which checks CheckIntegrity runs.
type CheckMask = state.CheckMask

const (
	CheckDebugger CheckMask = state.Debugger
	CheckTiming   CheckMask = state.Timing
	CheckMemory   CheckMask = state.Memory
	CheckStack    CheckMask = state.Stack // reserved, currently a no-op
	CheckAll      CheckMask = state.All
)

// Init creates the singleton state manager, records the baseline cycle
// counter, and sets the verdict to Safe. It fails with ErrAlreadyInit if
// a singleton already exists, or ErrInit if construction fails.
func Init() Result {
	if _, err := state.Init(); err != nil {
		if err == state.ErrAlreadyInit {
			return ErrAlreadyInit
		}
		return ErrInit
	}
	return OK
}

// Snapshot replaces the recorded code checksum with a digest of the
// current code region (or, if the region is unavailable, of the
// baseline record itself). It never resets the verdict.
func Snapshot() Result {
	switch err := state.Snapshot(); err {
	case nil:
		return OK
	case state.ErrNotInit:
		return ErrNotInit
	default:
		return ErrInternal
	}
}

// CheckIntegrity runs the checks named by mask and folds their findings
// into the verdict under the monotonicity rule. It returns OK as long as
// the check ran, regardless of what it found — read GetState separately
// for the outcome.
func CheckIntegrity(mask CheckMask) Result {
	switch err := state.CheckIntegrity(mask); err {
	case nil:
		return OK
	case state.ErrNotInit:
		return ErrNotInit
	default:
		return ErrInternal
	}
}

// DetectDebugger is a fast path that consults the tracer primitive only
// and does not update the verdict. Returns -1 if uninitialized.
func DetectDebugger() int {
	return state.DetectDebugger()
}

// GetState is a lock-free read of the current verdict. It fails secure:
// an uninitialized or out-of-range value reads as Compromised.
func GetState() Verdict {
	return state.GetState()
}

// Shutdown zeros the baseline, forces the verdict to Compromised so a
// racing reader observes a fail-secure value, and destroys the
// singleton. Re-Init after Shutdown is permitted and yields a fresh
// baseline.
func Shutdown() Result {
	switch err := state.Shutdown(); err {
	case nil:
		return OK
	default:
		return ErrNotInit
	}
}

// Implementation reports the compiled-in detection backend: one of
// "x86_64-native", "arm64-native", or "c-fallback" (spec.md §6).
func Implementation() string {
	return primitives.Select().Name()
}
