//go:build !linux || (!amd64 && !arm64)

package primitives

type portableBackend struct{}

func newBackend() Backend { return portableBackend{} }

func (portableBackend) Name() string { return "c-fallback" }

func (portableBackend) CycleCounter() uint64 {
	return genericCycleCounter()
}

func (portableBackend) LowLevelCheck() int {
	return readTracerPID()
}

func (portableBackend) TimingCheck() int {
	return timingCheck(genericCycleCounter, portableThresholdNs)
}
