//go:build linux && arm64

package primitives

// cntvct reads the ARM generic timer's virtual count register CNTVCT_EL0,
// the arm64 analogue of RDTSC. Implemented in cycle_linux_arm64.s.
func cntvct() uint64

func nativeCycleCounter() uint64 {
	return cntvct()
}
