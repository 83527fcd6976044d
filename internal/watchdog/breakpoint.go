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

package watchdog

import (
	"fmt"
	"syscall"
	"unsafe"

	"github.com/selfguard/selfguard/internal/primitives"
)

const wordSize = int(unsafe.Sizeof(uintptr(0)))

// pokeAligned is a PTRACE_POKETEXT wrapper that pads writes out to a
// whole word, since ptrace only ever transfers a full word at a time.
func (t *Target) pokeAligned(where uint64, data []byte) (int, error) {
	rem := len(data) % wordSize
	if rem > 0 {
		pad := make([]byte, wordSize)
		if _, err := syscall.PtracePokeText(t.Pid, uintptr(where+uint64(len(data)-rem)), pad); err != nil {
			return 0, err
		}
		data = append(append([]byte{}, data...), pad[rem:]...)
	}

	count := 0
	for offset := 0; offset < len(data); offset += wordSize {
		end := offset + wordSize
		if end > len(data) {
			end = len(data)
		}
		n, err := syscall.PtracePokeText(t.Pid, uintptr(where+uint64(offset)), data[offset:end])
		if err != nil {
			return count, err
		}
		count += n
	}
	return count, nil
}

// peekAligned is a PTRACE_PEEKTEXT wrapper that reads whole words and
// trims to the requested range, mirroring pokeAligned.
func (t *Target) peekAligned(where uint64, out []byte) (int, error) {
	wordAligned := where &^ uint64(wordSize-1)
	firstOffset := int(where - wordAligned)
	total := 0

	word := make([]byte, wordSize)
	for total < len(out) {
		n, err := syscall.PtracePeekText(t.Pid, uintptr(wordAligned), word)
		if err != nil || n != wordSize {
			return total, fmt.Errorf("watchdog: peek at 0x%x: %w", wordAligned, err)
		}
		total += copy(out[total:], word[firstOffset:])
		wordAligned += uint64(wordSize)
		firstOffset = 0
	}
	return total, nil
}

// ReadCodeBytes reads n bytes of the guarded process's memory starting at
// addr, used both to recompute the external checksum and by tests as the
// tamper-injection seam.
func (t *Target) ReadCodeBytes(addr uint64, n int) ([]byte, error) {
	t.ensureNotRunning()
	buf := make([]byte, n)
	if _, err := t.peekAligned(addr, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// PokeBytes writes data into the guarded process's memory at addr,
// returning what used to be there. Used to install/remove canary traps
// and, in tests, to simulate an external tamper.
func (t *Target) PokeBytes(addr uint64, data []byte) (saved []byte, err error) {
	t.ensureNotRunning()

	saved = make([]byte, len(data))
	if n, err := t.peekAligned(addr, saved); err != nil || n != len(data) {
		return nil, fmt.Errorf("watchdog: read before poke at 0x%x: %w", addr, err)
	}

	if _, err := t.pokeAligned(addr, data); err != nil {
		return nil, fmt.Errorf("watchdog: poke at 0x%x: %w", addr, err)
	}
	return saved, nil
}

// AddBreakpoint installs the trap instruction at the address resolved
// from where and registers fn as its callback.
func (t *Target) AddBreakpoint(where string, fn BreakpointFunc) error {
	addr, err := t.resolveSymbol(where)
	if err != nil {
		return err
	}

	saved, err := t.PokeBytes(addr, []byte{int3Instr})
	if err != nil {
		return err
	}

	t.Breakpoints = append(t.Breakpoints, &Breakpoint{
		Address:    addr,
		savedInstr: saved,
		Active:     true,
		Callback:   fn,
	})
	return nil
}

// handleBreakpoint restores the original instruction, rewinds the
// program counter, lets the callback run, single-steps past the
// original instruction, reinstalls the trap, and recomputes the external
// checksum for onChecksum.
func (t *Target) handleBreakpoint(bp *Breakpoint, onChecksum ChecksumCallback) Action {
	regs, err := t.getRegisters()
	if err != nil {
		return Continue
	}

	t.PokeBytes(bp.Address, bp.savedInstr)

	regs.SetPC(bp.Address)
	t.setRegisters(regs)
	t.SingleStep()

	result := Continue
	if bp.Callback != nil {
		result = bp.Callback(regs)
	}

	t.PokeBytes(bp.Address, []byte{int3Instr})
	bp.HitCount++

	if onChecksum != nil {
		if checksum, err := t.checksumText(); err == nil {
			onChecksum(checksum, bp.HitCount)
		}
	}

	return result
}

// checksumText recomputes the tamper-evidence digest over the guarded
// process's current text section, using the same recurrence as the
// in-process monitor (internal/primitives.ChecksumBytes) so the two
// signals are directly comparable.
func (t *Target) checksumText() (uint32, error) {
	if err := t.refreshMemory(); err != nil {
		return 0, err
	}
	addr, ok := t.FindTextSection()
	if !ok {
		return 0, TracerError("watchdog: text section not found")
	}
	region := t.Memory[addr]
	data, err := t.ReadCodeBytes(addr, region.Size)
	if err != nil {
		return 0, err
	}
	return primitives.ChecksumBytes(data), nil
}
