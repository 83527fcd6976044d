/*  Copyright (c) 2012 Yan Ivnitskiy. All rights reserved.
 *
 *  Redistribution and use in source and binary forms, with or without
 *  modification, are permitted provided that the following conditions are
 *  met:
 *
 *     * Redistributions of source code must retain the above copyright
 *  notice, this list of conditions and the following disclaimer.
 *     * Redistributions in binary form must reproduce the above
 *  copyright notice, this list of conditions and the following disclaimer
 *  in the documentation and/or other materials provided with the
 *  distribution.
 *     * Neither the name of grace nor the names of its
 *  contributors may be used to endorse or promote products derived from
 *  this software without specific prior written permission.
 *
 *  THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS
 *  "AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT
 *  LIMITED TO, THE IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR
 *  A PARTICULAR PURPOSE ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT
 *  OWNER OR CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
 *  SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT
 *  LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR SERVICES; LOSS OF USE,
 *  DATA, OR PROFITS; OR BUSINESS INTERRUPTION) HOWEVER CAUSED AND ON ANY
 *  THEORY OF LIABILITY, WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT
 *  (INCLUDING NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
 *  OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH DAMAGE.
 */

//go:build linux

// Package watchdog implements the supplemented external watchdog
// component (SPEC_FULL.md §9): an optional, out-of-process supervisor
// that ptrace-attaches to a guarded process and independently recomputes
// its code checksum, as defense-in-depth against a compromised in-process
// monitor. It is adapted from a ptrace/DWARF toolkit originally built to
// trace and breakpoint an arbitrary child process.
//
// A host that only wants the in-process monitor (package selfguard) never
// imports this package.
package watchdog

import "syscall"

// Target represents a process under this supervisor's control: the
// guarded application, traced via ptrace from the outside.
type Target struct {
	Pid int
	// Filename backs the guarded executable, used to re-open it for
	// symbol extraction and to match its mapping in the memory map.
	Filename string
	// DebugSymbols is the symbol table extracted from DWARF, if the
	// binary carries debug info. Nil otherwise.
	DebugSymbols *SymbolTable
	Memory       MemoryMap
	Breakpoints  []*Breakpoint

	isRunning bool
}

// RegisterState wraps the platform register set captured at a trap.
type RegisterState struct {
	syscall.PtraceRegs
}

// int3Instr is the x86 single-byte breakpoint trap instruction installed
// at a canary address.
const int3Instr = 0xcc

// BreakpointFunc is invoked every time the canary breakpoint traps. It
// receives the register state at the trap and returns what the
// supervisor should do next.
type BreakpointFunc func(*RegisterState) Action

// Breakpoint is a single installed canary trap.
type Breakpoint struct {
	Address    uint64
	savedInstr []byte
	Active     bool
	Callback   BreakpointFunc
	HitCount   uint64
}

// Action tells the supervisor's event loop how to proceed after a
// breakpoint callback returns.
type Action int

const (
	Continue Action = iota
	Abort
)

// MemoryRegion is one parsed line of the guarded process's memory map.
type MemoryRegion struct {
	Address     uint64
	Offset      uint64
	File        string
	Size        int
	Permissions string
}

// MemoryMap indexes a process's mapped regions by start address.
type MemoryMap map[uint64]MemoryRegion

// CompiledFile is one DWARF compile unit: a source file and the
// functions attributed to it.
type CompiledFile struct {
	Filename      string
	Lowpc, Highpc uint64
	Functions     map[string]CompiledFunction
}

// CompiledFunction is one DWARF subprogram entry.
type CompiledFunction struct {
	Name          string
	Lowpc, Highpc uint64
	Lineno        int
}

func (f CompiledFunction) Address() uint64 { return f.Lowpc }
func (f CompiledFunction) High() uint64    { return f.Highpc }
func (f CompiledFunction) Low() uint64     { return f.Lowpc }
func (f CompiledFile) High() uint64        { return f.Highpc }
func (f CompiledFile) Low() uint64         { return f.Lowpc }

// instantiatedRange is implemented by both CompiledFile and
// CompiledFunction so contains() can test nesting generically.
type instantiatedRange interface {
	High() uint64
	Low() uint64
}

// SymbolTable maps a source file name to its compile unit, the Go
// analogue of the DWARF file table extracted from a single binary.
type SymbolTable map[string]CompiledFile

// TracerError is a single-string error, the same idiom the in-process
// monitor's internal sentinel set uses.
type TracerError string

func (t TracerError) Error() string { return string(t) }

// ensureNotRunning panics if the guarded process is executing; callers
// must stop it (it is stopped at every trap) before touching its memory
// or registers.
func (t *Target) ensureNotRunning() {
	if t.isRunning {
		panic("watchdog: target is running")
	}
}
