// Command selfguard-demo exercises the selfguard facade end to end: it
// initializes the monitor, takes a baseline snapshot, and runs a short
// polling loop printing the verdict after each integrity check. Terminal
// formatting, alerting, and symbolic result-to-string mapping beyond the
// facade's own Result/Verdict types are deliberately left to the host —
// they sit above the public contract (spec.md §1).
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/selfguard/selfguard"
)

func main() {
	os.Exit(run())
}

func run() int {
	if r := selfguard.Init(); r != selfguard.OK {
		fmt.Fprintln(os.Stderr, "selfguard: init failed:", r)
		return 1
	}
	defer selfguard.Shutdown()

	fmt.Printf("selfguard: backend=%s\n", selfguard.Implementation())

	if r := selfguard.Snapshot(); r != selfguard.OK {
		fmt.Fprintln(os.Stderr, "selfguard: snapshot failed:", r)
		return 1
	}

	const polls = 10
	for i := 1; i <= polls; i++ {
		if r := selfguard.CheckIntegrity(selfguard.CheckAll); r != selfguard.OK {
			fmt.Fprintln(os.Stderr, "selfguard: check failed:", r)
			return 1
		}

		state := selfguard.GetState()
		fmt.Printf("poll %2d/%d: verdict=%s debugger=%d\n", i, polls, verdictLabel(state), selfguard.DetectDebugger())

		if state == selfguard.Compromised {
			fmt.Fprintln(os.Stderr, "selfguard: verdict escalated to COMPROMISED, stopping")
			return 2
		}

		time.Sleep(200 * time.Millisecond)
	}

	return 0
}

// verdictLabel is a demo-local convenience; the facade itself exposes no
// string form, leaving that translation to the host (spec.md §1).
func verdictLabel(v selfguard.Verdict) string {
	switch v {
	case selfguard.Safe:
		return "SAFE"
	case selfguard.Warning:
		return "WARNING"
	case selfguard.Compromised:
		return "COMPROMISED"
	default:
		return "UNKNOWN"
	}
}
