// Package state implements the monitor's state manager (spec.md §4.2): the
// process-wide singleton owning the baseline record and the current
// verdict, and the orchestration algorithm that combines the debugger,
// timing, and memory checks into a single state transition.
package state

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/selfguard/selfguard/internal/baseline"
	"github.com/selfguard/selfguard/internal/locator"
	"github.com/selfguard/selfguard/internal/primitives"
	"github.com/selfguard/selfguard/internal/verdict"
)

// CheckMask is the bitmask over {Debugger, Timing, Memory, Stack, All}
// accepted by CheckIntegrity.
type CheckMask uint32

const (
	Debugger CheckMask = 1 << iota
	Timing
	Memory
	Stack // reserved, currently a no-op (spec.md §3, §9 open question)
	_
)

// All is the bitwise complement of zero, so future bits default to on.
const All CheckMask = ^CheckMask(0)

// Sentinel errors translated to Result codes at the facade boundary.
var (
	ErrAlreadyInit = errors.New("state: already initialized")
	ErrNotInit     = errors.New("state: not initialized")
	ErrInternal    = errors.New("state: internal check failure")
)

// Manager owns the baseline record and verdict for one monitoring session.
// Mutating operations take mu; verdict reads are lock-free through
// verdictVal with acquire/release ordering, matching spec.md §5.
type Manager struct {
	mu         sync.Mutex
	baseline   baseline.Record
	verdictVal atomic.Int32
	backend    primitives.Backend
}

// current is the process-wide singleton, published through an atomic
// pointer CAS. It starts nil: GetState on a nil singleton is the
// fail-secure default (spec.md §8 property 2).
var current atomic.Pointer[Manager]

// Current returns the live manager, or nil if uninitialized.
func Current() *Manager { return current.Load() }

// Init constructs a new manager and publishes it as the singleton. It
// fails with ErrAlreadyInit if one already exists. The verdict is forced
// to Compromised before publication so a racing reader can never observe
// a half-built manager as Safe.
func Init() (*Manager, error) {
	m := &Manager{backend: primitives.Select()}
	m.verdictVal.Store(int32(verdict.Compromised))

	if !current.CompareAndSwap(nil, m) {
		return nil, ErrAlreadyInit
	}

	m.mu.Lock()
	m.baseline.BaselineTSC = m.backend.CycleCounter()
	m.baseline.Initialized = true
	m.mu.Unlock()

	m.verdictVal.Store(int32(verdict.Safe))
	return m, nil
}

// Shutdown zeros the baseline, force-publishes Compromised (so a reader
// racing past shutdown observes a fail-secure value), and retires the
// singleton. It fails with ErrNotInit if none exists.
func Shutdown() error {
	m := current.Load()
	if m == nil {
		return ErrNotInit
	}

	m.mu.Lock()
	m.verdictVal.Store(int32(verdict.Compromised))
	m.baseline.Zero()
	m.mu.Unlock()

	current.CompareAndSwap(m, nil)
	return nil
}

// GetState reads the verdict lock-free with acquire ordering. A nil
// singleton or an out-of-range stored value both clamp to Compromised.
func GetState() verdict.Verdict {
	m := current.Load()
	if m == nil {
		return verdict.Compromised
	}
	return verdict.Clamp(m.verdictVal.Load())
}

// DetectDebugger is the fast path: it consults the tracer primitive only
// and never updates the verdict. Returns -1 if uninitialized.
func DetectDebugger() int {
	m := current.Load()
	if m == nil {
		return -1
	}
	return m.backend.LowLevelCheck()
}

// Snapshot replaces the baseline checksum with a digest of the current
// code region (or, if the locator reports unavailable, a digest of the
// baseline record itself). It never resets the verdict: a process already
// judged Compromised must not launder itself by re-snapshotting (spec.md
// §8 property 7).
func Snapshot() error {
	m := current.Load()
	if m == nil {
		return ErrNotInit
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	region := locator.Locate()
	if region.Available {
		m.baseline.CodeChecksum = primitives.ChecksumRegion(region)
	} else {
		m.baseline.CodeChecksum = m.baseline.SelfChecksum(primitives.ChecksumBytes)
	}
	return nil
}

// CheckIntegrity runs the orchestration algorithm of spec.md §4.2: under
// the mutex, combine the selected checks into suspicious/compromised
// booleans, then apply the monotonic transition rule. Mask zero is a
// caller error (ErrInternal), not a no-op.
func CheckIntegrity(mask CheckMask) error {
	if mask == 0 {
		return ErrInternal
	}

	m := current.Load()
	if m == nil {
		return ErrNotInit
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var suspicious, compromised bool

	if mask&Debugger != 0 {
		if m.backend.LowLevelCheck() >= 1 {
			compromised = true
		}
	}

	if mask&Timing != 0 {
		if m.backend.TimingCheck() >= 1 {
			suspicious = true
		}
	}

	if mask&Memory != 0 {
		region := locator.Locate()
		if region.Available {
			if primitives.ChecksumRegion(region) != m.baseline.CodeChecksum {
				compromised = true
			}
		} else {
			// Weaker signal: no real code coverage, so a mismatch only
			// raises suspicion (spec.md §4.2 step 5, §9 open question).
			if m.baseline.SelfChecksum(primitives.ChecksumBytes) != m.baseline.CodeChecksum {
				suspicious = true
			}
		}
	}

	// Stack bit is reserved and currently a no-op (spec.md §9).

	switch {
	case compromised:
		m.verdictVal.Store(int32(verdict.Compromised))
	case suspicious:
		m.verdictVal.CompareAndSwap(int32(verdict.Safe), int32(verdict.Warning))
	}

	return nil
}
