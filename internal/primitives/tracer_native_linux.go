//go:build linux && (amd64 || arm64)

package primitives

import (
	"os"
	"strconv"

	"golang.org/x/sys/unix"
)

// probeEnvVar marks a re-exec of the current binary as a ptrace self-probe
// helper rather than a normal launch. The value is the PID to attach to.
const probeEnvVar = "SELFGUARD_PTRACE_PROBE_TARGET"

func init() {
	if target := os.Getenv(probeEnvVar); target != "" {
		os.Exit(runPtraceProbe(target))
	}
}

// runPtraceProbe is the helper process's entire job: attempt to attach to
// pidStr. A process can only ever have one tracer, so if pidStr is
// already traced, PTRACE_ATTACH fails with EPERM and that failure is
// itself the detection signal.
func runPtraceProbe(pidStr string) int {
	pid, err := strconv.Atoi(pidStr)
	if err != nil {
		return 2
	}

	if err := unix.PtraceAttach(pid); err != nil {
		if err == unix.EPERM {
			return 1
		}
		return 2
	}

	var status unix.WaitStatus
	_, _ = unix.Wait4(pid, &status, 0, nil)
	_ = unix.PtraceDetach(pid)
	return 0
}

// ptraceSelfProbe re-execs the current binary as a probe helper attached
// to our own PID. Returns 1 if something already traces us, 0 if the
// attach succeeded (and was cleanly released), -1 if the probe could not
// run at all.
func ptraceSelfProbe() int {
	exe, err := os.Executable()
	if err != nil {
		return -1
	}

	proc, err := os.StartProcess(exe, []string{exe}, &os.ProcAttr{
		Env: append(os.Environ(), probeEnvVar+"="+strconv.Itoa(os.Getpid())),
	})
	if err != nil {
		return -1
	}

	state, err := proc.Wait()
	if err != nil {
		return -1
	}

	switch state.ExitCode() {
	case 0:
		return 0
	case 1:
		return 1
	default:
		return -1
	}
}
