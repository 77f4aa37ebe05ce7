package model

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
)

// Device identifies the compute target the ONNX sessions bind to.
type Device string

const (
	DeviceCUDA   Device = "cuda"
	DeviceCoreML Device = "coreml"
	DeviceCPU    Device = "cpu"
)

// SelectDevice resolves a device preference to a concrete target. "auto"
// probes CUDA first, then the platform accelerator, then falls back to CPU.
// The probe runs once per service initialization; callers cache the result
// for the life of the loaded model.
func SelectDevice(preference string) (Device, error) {
	switch preference {
	case "", "auto":
		d := autoDetect()
		slog.Info("compute device selected", "device", string(d))

		return d, nil
	case string(DeviceCUDA):
		return DeviceCUDA, nil
	case string(DeviceCoreML):
		return DeviceCoreML, nil
	case string(DeviceCPU):
		return DeviceCPU, nil
	default:
		return "", fmt.Errorf("unknown device %q (want auto|cuda|coreml|cpu)", preference)
	}
}

// ExecutionProviders maps a device to the ORT execution providers requested
// at session creation, in order of preference. CPU returns nil so sessions
// use the runtime default.
func ExecutionProviders(d Device) []string {
	switch d {
	case DeviceCUDA:
		return []string{"CUDAExecutionProvider", "CPUExecutionProvider"}
	case DeviceCoreML:
		return []string{"CoreMLExecutionProvider", "CPUExecutionProvider"}
	default:
		return nil
	}
}

func autoDetect() Device {
	if cudaAvailable() {
		return DeviceCUDA
	}

	if runtime.GOOS == "darwin" {
		return DeviceCoreML
	}

	return DeviceCPU
}

// cudaAvailable reports whether a CUDA runtime is plausibly present. The
// definitive answer comes from session creation; this probe only steers the
// auto preference.
func cudaAvailable() bool {
	candidates := []string{
		"/usr/local/cuda/lib64/libcudart.so",
		"/usr/lib/x86_64-linux-gnu/libcudart.so",
		"/usr/lib/x86_64-linux-gnu/libcuda.so.1",
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return true
		}
	}

	return false
}
