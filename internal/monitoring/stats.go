package monitoring

import (
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// SystemStats is a point-in-time snapshot of the process and its host.
type SystemStats struct {
	CollectedAt           time.Time `json:"collectedAt"`
	UptimeSeconds         float64   `json:"uptimeSeconds"`
	Goroutines            int       `json:"goroutines"`
	ProcessRSSBytes       uint64    `json:"processRssBytes"`
	ProcessCPUPercent     float64   `json:"processCpuPercent"`
	HostMemoryUsedPercent float64   `json:"hostMemoryUsedPercent"`
	HostUptimeSeconds     uint64    `json:"hostUptimeSeconds"`
}

// StatCollector samples SystemStats and keeps the latest snapshot so that
// health checks never wait on /proc.
type StatCollector struct {
	proc    *process.Process
	started time.Time

	mu     sync.RWMutex
	latest SystemStats
}

func NewStatCollector() *StatCollector {
	c := &StatCollector{started: time.Now()}
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		log.Warn().Err(err).Msg("StatCollector: process stats unavailable")
	} else {
		c.proc = proc
	}
	return c
}

// Collect takes a fresh sample. Fields that cannot be read stay zero.
func (c *StatCollector) Collect() SystemStats {
	stats := SystemStats{
		CollectedAt:   time.Now().UTC(),
		UptimeSeconds: time.Since(c.started).Seconds(),
		Goroutines:    runtime.NumGoroutine(),
	}

	if c.proc != nil {
		if memInfo, err := c.proc.MemoryInfo(); err == nil {
			stats.ProcessRSSBytes = memInfo.RSS
		} else {
			log.Debug().Err(err).Msg("StatCollector: could not read process memory")
		}
		if cpu, err := c.proc.CPUPercent(); err == nil {
			stats.ProcessCPUPercent = cpu
		}
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		stats.HostMemoryUsedPercent = vm.UsedPercent
	} else {
		log.Debug().Err(err).Msg("StatCollector: could not read host memory")
	}
	if up, err := host.Uptime(); err == nil {
		stats.HostUptimeSeconds = up
	}

	c.mu.Lock()
	c.latest = stats
	c.mu.Unlock()
	return stats
}

// Latest returns the most recent snapshot, sampling once if none exists yet.
func (c *StatCollector) Latest() SystemStats {
	c.mu.RLock()
	stats := c.latest
	c.mu.RUnlock()
	if stats.CollectedAt.IsZero() {
		return c.Collect()
	}
	return stats
}
