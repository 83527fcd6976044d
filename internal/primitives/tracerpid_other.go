//go:build !linux

package primitives

// readTracerPID has no process-introspection pseudo-file to read on this
// host.
func readTracerPID() int {
	return -1
}
