package backend

import (
	"os"
	"os/exec"
	"runtime"
)

// Compute device identifiers.
const (
	DeviceCUDA = "cuda"
	DeviceMPS  = "mps"
	DeviceCPU  = "cpu"
)

// DetectDevice probes for the best available compute device. The probe order
// is fixed: cuda, then mps, then cpu. Every caller (backend initialization,
// status reporting) goes through this one function so the reported device
// never diverges from the device actually used.
func DetectDevice() string {
	if hasCUDA() {
		return DeviceCUDA
	}
	if hasMPS() {
		return DeviceMPS
	}
	return DeviceCPU
}

// hasCUDA reports whether an NVIDIA GPU appears usable on this host.
func hasCUDA() bool {
	if _, err := exec.LookPath("nvidia-smi"); err == nil {
		return true
	}
	if _, err := os.Stat("/proc/driver/nvidia"); err == nil {
		return true
	}
	return false
}

// hasMPS reports whether Apple Metal Performance Shaders are available.
func hasMPS() bool {
	return runtime.GOOS == "darwin" && runtime.GOARCH == "arm64"
}
