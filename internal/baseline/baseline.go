// Package baseline holds the monitor's single piece of mutable per-session
// state: the recorded code checksum and cycle value captured at snapshot
// time.
package baseline

import (
	"runtime"
	"unsafe"
)

// Record is created zeroed, written only under the state manager's mutex,
// and zeroed again at shutdown.
type Record struct {
	CodeChecksum uint32
	BaselineTSC  uint64
	Initialized  bool
	_            [7]byte // alignment padding, mirrors the packed C layout
}

// Zero wipes the record. runtime.KeepAlive deters the compiler from
// eliding the writes as dead stores once r is otherwise unused, the
// closest Go equivalent to a volatile write loop.
func (r *Record) Zero() {
	r.CodeChecksum = 0
	r.BaselineTSC = 0
	r.Initialized = false
	runtime.KeepAlive(r)
}

// SelfChecksum runs a checksum over the record's own bytes. It is the
// degraded MEMORY-check fallback used when the code region locator
// reports unavailable: near-tautological (the record only changes under
// the same lock that reads it), but kept for parity with the original
// implementation's behavior.
func (r *Record) SelfChecksum(sum func([]byte) uint32) uint32 {
	data := unsafe.Slice((*byte)(unsafe.Pointer(r)), unsafe.Sizeof(*r))
	return sum(data)
}
