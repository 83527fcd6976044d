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
	"os"
	"syscall"
)

// Launch starts binaryName under ptrace and returns a Target for it. The
// child does not begin executing until Supervise is called.
func Launch(binaryName string, args []string) (*Target, error) {
	if _, err := os.Stat(binaryName); err != nil {
		return nil, fmt.Errorf("watchdog: launch %s: %w", binaryName, err)
	}

	attr := &os.ProcAttr{
		Files: []*os.File{os.Stdin, os.Stdout, os.Stderr},
		Sys:   &syscall.SysProcAttr{Ptrace: true},
	}

	proc, err := os.StartProcess(binaryName, args, attr)
	if err != nil {
		return nil, fmt.Errorf("watchdog: launch %s: %w", binaryName, err)
	}

	t := &Target{Pid: proc.Pid, Filename: binaryName}
	if err := t.refreshMemory(); err != nil {
		return nil, fmt.Errorf("watchdog: read memory map of pid %d: %w", proc.Pid, err)
	}
	if syms, err := ExtractSymbolTable(binaryName); err == nil {
		t.DebugSymbols = syms
	}
	return t, nil
}

// AttachExisting ptrace-attaches to an already-running process, the
// out-of-process complement to an in-process monitor that only ever
// reasons about its own address space.
func AttachExisting(pid int, filename string) (*Target, error) {
	if err := syscall.PtraceAttach(pid); err != nil {
		return nil, fmt.Errorf("watchdog: attach pid %d: %w", pid, err)
	}

	var status syscall.WaitStatus
	if _, err := syscall.Wait4(pid, &status, 0, nil); err != nil {
		return nil, fmt.Errorf("watchdog: wait on attach to pid %d: %w", pid, err)
	}

	t := &Target{Pid: pid, Filename: filename}
	if err := t.refreshMemory(); err != nil {
		return nil, fmt.Errorf("watchdog: read memory map of pid %d: %w", pid, err)
	}
	if filename != "" {
		if syms, err := ExtractSymbolTable(filename); err == nil {
			t.DebugSymbols = syms
		}
	}
	return t, nil
}

// Continue resumes the guarded process after it has stopped at a trap.
func (t *Target) Continue() error {
	err := syscall.PtraceCont(t.Pid, 0)
	if err == nil {
		t.isRunning = true
	}
	return err
}

// SingleStep executes exactly one instruction in the guarded process.
func (t *Target) SingleStep() error {
	return syscall.PtraceSingleStep(t.Pid)
}

func (t *Target) getRegisters() (*RegisterState, error) {
	regs := &RegisterState{}
	if err := syscall.PtraceGetRegs(t.Pid, &regs.PtraceRegs); err != nil {
		return nil, err
	}
	return regs, nil
}

func (t *Target) setRegisters(regs *RegisterState) error {
	return syscall.PtraceSetRegs(t.Pid, &regs.PtraceRegs)
}

// inBreakpoint reports whether the guarded process is currently stopped
// exactly past one of its installed canary traps.
func (t *Target) inBreakpoint() (*Breakpoint, bool) {
	regs, err := t.getRegisters()
	if err != nil {
		return nil, false
	}
	pc := regs.PC()
	for _, bp := range t.Breakpoints {
		if bp.Address+1 == pc {
			return bp, true
		}
	}
	return nil, false
}

// ChecksumCallback is invoked once per canary hit with the checksum
// recomputed over the guarded process's text section and the cumulative
// hit count, so the caller can fold an external signal into its own
// verdict independent of the in-process monitor.
type ChecksumCallback func(checksum uint32, hitCount uint64)

// Supervise runs the event loop: it resumes the guarded process and
// waits for it to stop, exit, or hit a canary breakpoint, invoking
// onChecksum after every breakpoint hit. It returns the guarded
// process's exit status once it terminates.
func (t *Target) Supervise(onChecksum ChecksumCallback) (exitStatus int, err error) {
	var status syscall.WaitStatus

	for {
		_, werr := syscall.Wait4(t.Pid, &status, 0, nil)
		t.isRunning = false

		switch {
		case werr != nil:
			return status.ExitStatus(), werr
		case status.Exited():
			return status.ExitStatus(), nil
		case status.Stopped():
			if bp, hit := t.inBreakpoint(); hit {
				if t.handleBreakpoint(bp, onChecksum) == Abort {
					return status.ExitStatus(), nil
				}
			}
		}

		if contErr := t.Continue(); contErr != nil {
			return status.ExitStatus(), contErr
		}
	}
}

// Detach releases the guarded process from ptrace control, letting it
// run free.
func (t *Target) Detach() error {
	return syscall.PtraceDetach(t.Pid)
}
