package system

import (
	"fmt"
	"os"

	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// MemoryReport describes the memory picture of the running editor.
type MemoryReport struct {
	ProcessRSS  uint64
	SystemTotal uint64
	SystemUsed  float64 // percent
	BufferBytes int
	BufferCount int
}

// ReadMemory samples process and host memory. bufferBytes/bufferCount come
// from the raster registry.
func ReadMemory(bufferCount, bufferBytes int) (MemoryReport, error) {
	r := MemoryReport{BufferCount: bufferCount, BufferBytes: bufferBytes}

	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return r, fmt.Errorf("open process: %w", err)
	}
	info, err := proc.MemoryInfo()
	if err != nil {
		return r, fmt.Errorf("process memory: %w", err)
	}
	r.ProcessRSS = info.RSS

	vm, err := mem.VirtualMemory()
	if err != nil {
		return r, fmt.Errorf("host memory: %w", err)
	}
	r.SystemTotal = vm.Total
	r.SystemUsed = vm.UsedPercent
	return r, nil
}

func (r MemoryReport) String() string {
	return fmt.Sprintf(
		"--- [MEMORY REPORT] ---\n"+
			"Layer buffers: %d (%.1f MiB)\n"+
			"Process RSS: %.1f MiB\n"+
			"Host: %.1f GiB total, %.1f%% used\n"+
			"-----------------------\n",
		r.BufferCount, mib(uint64(r.BufferBytes)),
		mib(r.ProcessRSS),
		float64(r.SystemTotal)/(1<<30), r.SystemUsed,
	)
}

func mib(n uint64) float64 { return float64(n) / (1 << 20) }
