package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ivlev/typing2video/internal/system"
)

const benchmarkLog = "benchmark.log"

// report prints the performance summary and appends a line to benchmark.log.
func (p *Project) report(ctx context.Context, res *Result) {
	stats := system.Snapshot(ctx)

	measured := "n/a"
	if d, err := system.MediaDuration(ctx, res.Path); err == nil {
		measured = fmt.Sprintf("%.2fs", d.Seconds())
	} else {
		log.Debug().Err(err).Msg("ffprobe недоступен")
	}

	fps := 0.0
	if res.Elapsed > 0 {
		fps = float64(res.Frames) / res.Elapsed.Seconds()
	}

	fmt.Print(formatReport(p.Config.BuildVersion, res, measured, fps, stats))

	logEntry := fmt.Sprintf("[%s] Build: %s | Output: %s | Codec: %s | Frames: %d/%d | Total: %.2fs | FPS: %.2f | RSS: %dMB | CPU: %.1f%%\n",
		time.Now().Format("2006-01-02 15:04:05"),
		p.Config.BuildVersion,
		filepath.Base(res.Path),
		res.Codec.Name,
		res.Frames,
		res.Estimate,
		res.Elapsed.Seconds(),
		fps,
		stats.ProcessRSSMB,
		stats.ProcessCPU,
	)

	f, err := os.OpenFile(benchmarkLog, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Warn().Err(err).Msg("не удалось записать benchmark.log")
		return
	}
	defer f.Close()
	f.WriteString(logEntry)
}

func formatReport(build string, res *Result, measured string, fps float64, stats system.Stats) string {
	return fmt.Sprintf(
		"--- [PERFORMANCE REPORT] ---\n"+
			"Build: %s\n"+
			"Codec: %s\n"+
			"Frames: %d (estimate %d, forced: %t)\n"+
			"Virtual Time: %.2fs | Video Duration: %s\n"+
			"Total Time: %.2fs\n"+
			"Effective FPS: %.2f\n"+
			"Host: %d CPU | %d MB RAM (%.1f%% used) | Process RSS: %d MB | Process CPU: %.1f%%\n"+
			"----------------------------\n",
		build, res.Codec.Name, res.Frames, res.Estimate, res.Forced,
		res.Virtual.Seconds(), measured, res.Elapsed.Seconds(), fps,
		stats.LogicalCPUs, stats.TotalMemMB, stats.UsedMemPct, stats.ProcessRSSMB, stats.ProcessCPU,
	)
}
