//go:build linux

package primitives

import (
	"os"
	"strconv"
	"strings"
)

// readTracerPID reads the TracerPid field out of /proc/self/status,
// returning 1 if a tracer is attached, 0 if not, -1 if the field could
// not be read.
func readTracerPID() int {
	data, err := os.ReadFile("/proc/self/status")
	if err != nil {
		return -1
	}

	for _, line := range strings.Split(string(data), "\n") {
		rest, ok := strings.CutPrefix(line, "TracerPid:")
		if !ok {
			continue
		}
		pid, err := strconv.Atoi(strings.TrimSpace(rest))
		if err != nil {
			return -1
		}
		if pid != 0 {
			return 1
		}
		return 0
	}
	return -1
}
