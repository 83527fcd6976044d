// Command libselfguard builds a C-callable shared archive exposing the
// public facade's entry points under the stable ABI names and numeric
// contracts of spec.md §6, so existing C/C++ host code written against
// the original header needs no changes beyond relinking.
package main

/*
#include <stdint.h>
*/
import "C"

import (
	"github.com/selfguard/selfguard"
)

//export sg_init
func sg_init() C.int {
	return C.int(selfguard.Init())
}

//export sg_snapshot
func sg_snapshot() C.int {
	return C.int(selfguard.Snapshot())
}

//export sg_check_integrity
func sg_check_integrity(mask C.uint32_t) C.int {
	return C.int(selfguard.CheckIntegrity(selfguard.CheckMask(mask)))
}

//export sg_detect_debugger
func sg_detect_debugger() C.int {
	return C.int(selfguard.DetectDebugger())
}

//export sg_get_security_state
func sg_get_security_state() C.int {
	return C.int(selfguard.GetState())
}

//export sg_shutdown
func sg_shutdown() C.int {
	return C.int(selfguard.Shutdown())
}

func main() {}
