// Command selfguard-watchdog demonstrates the external watchdog
// component (SPEC_FULL.md §9): it launches a target binary under ptrace,
// installs a canary breakpoint, and prints the externally recomputed
// checksum on every hit. It is independent of the in-process monitor
// (package selfguard) and is additive: nothing here is required to use
// the facade in §4.1.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/selfguard/selfguard/internal/watchdog"
)

func main() {
	os.Exit(run())
}

func run() int {
	binary := flag.String("binary", "", "path to the guarded executable")
	canary := flag.String("canary", "", "symbolic location for the canary breakpoint (file.c:func or 0xADDR)")
	flag.Parse()

	if *binary == "" {
		fmt.Fprintln(os.Stderr, "usage: selfguard-watchdog -binary <path> [-canary <loc>]")
		return 2
	}

	target, err := watchdog.Launch(*binary, []string{*binary})
	if err != nil {
		fmt.Fprintln(os.Stderr, "watchdog: launch failed:", err)
		return 1
	}

	if *canary != "" {
		err := target.AddBreakpoint(*canary, func(*watchdog.RegisterState) watchdog.Action {
			return watchdog.Continue
		})
		if err != nil {
			fmt.Fprintln(os.Stderr, "watchdog: could not install canary:", err)
			return 1
		}
	}

	status, err := target.Supervise(func(checksum uint32, hitCount uint64) {
		fmt.Printf("canary hit #%d: external checksum=0x%08x\n", hitCount, checksum)
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "watchdog: supervise failed:", err)
		return 1
	}

	fmt.Printf("guarded process exited with status %d\n", status)
	return 0
}
