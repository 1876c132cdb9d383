// Package host reports the CPU resources the batch sizes itself against.
package host

import (
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// Info describes the machine for the startup banner.
type Info struct {
	CPUModel     string
	LogicalCPUs  int
	PhysicalCPUs int
	TotalMemory  uint64
}

// CPUCount returns the number of logical CPUs. gopsutil reads the OS view;
// runtime.NumCPU is the fallback when that fails (e.g. restricted /proc).
func CPUCount() int {
	n, err := cpu.Counts(true)
	if err != nil || n < 1 {
		return runtime.NumCPU()
	}
	return n
}

// Describe gathers static hardware info. Missing pieces are left zero.
func Describe() Info {
	info := Info{
		CPUModel:    "Unknown CPU",
		LogicalCPUs: CPUCount(),
	}

	if ci, err := cpu.Info(); err == nil && len(ci) > 0 && ci[0].ModelName != "" {
		info.CPUModel = ci[0].ModelName
	}
	if n, err := cpu.Counts(false); err == nil {
		info.PhysicalCPUs = n
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		info.TotalMemory = vm.Total
	}

	return info
}
