package system

import (
	"context"
	"os"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// Stats is a point-in-time view of the host and of this process.
type Stats struct {
	LogicalCPUs  int
	TotalMemMB   uint64
	UsedMemPct   float64
	ProcessRSSMB uint64
	ProcessCPU   float64
}

// Snapshot collects whatever gopsutil can read; unavailable fields stay zero.
func Snapshot(ctx context.Context) Stats {
	var s Stats
	if n, err := cpu.CountsWithContext(ctx, true); err == nil {
		s.LogicalCPUs = n
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		s.TotalMemMB = vm.Total / 1024 / 1024
		s.UsedMemPct = vm.UsedPercent
	}
	if p, err := process.NewProcessWithContext(ctx, int32(os.Getpid())); err == nil {
		if mi, err := p.MemoryInfoWithContext(ctx); err == nil {
			s.ProcessRSSMB = mi.RSS / 1024 / 1024
		}
		if pct, err := p.CPUPercentWithContext(ctx); err == nil {
			s.ProcessCPU = pct
		}
	}
	return s
}
