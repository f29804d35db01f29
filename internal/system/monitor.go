package system

import (
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"

	"anim-studio/internal/domain"
)

const bytesPerGB = 1024 * 1024 * 1024

// Info reports static host details plus the app's working directories.
func Info(mediaDir, assetsDir string) domain.SystemInfo {
	hostname, _ := os.Hostname()
	return domain.SystemInfo{
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
		NumCPU:    runtime.NumCPU(),
		GoVersion: runtime.Version(),
		Hostname:  hostname,
		MediaDir:  mediaDir,
		AssetsDir: assetsDir,
	}
}

// Monitor samples host resource usage in the background and serves the
// most recent snapshot to pollers.
type Monitor struct {
	mu       sync.RWMutex
	interval time.Duration
	snapshot domain.PerformanceSnapshot
	stopCh   chan struct{}
	running  bool

	cpuPercent    func() (float64, error)
	virtualMemory func() (*mem.VirtualMemoryStat, error)
	loadAverage   func() (*load.AvgStat, error)
}

// NewMonitor creates a monitor refreshing at the given interval. Intervals
// under one second are raised to one second.
func NewMonitor(interval time.Duration) *Monitor {
	if interval < time.Second {
		interval = time.Second
	}
	return &Monitor{
		interval: interval,
		stopCh:   make(chan struct{}),
		cpuPercent: func() (float64, error) {
			percents, err := cpu.Percent(0, false)
			if err != nil {
				return 0, err
			}
			if len(percents) == 0 {
				return 0, nil
			}
			return percents[0], nil
		},
		virtualMemory: mem.VirtualMemory,
		loadAverage:   load.Avg,
	}
}

// NewMonitorForTests creates a monitor with injected samplers.
func NewMonitorForTests(
	cpuPercent func() (float64, error),
	virtualMemory func() (*mem.VirtualMemoryStat, error),
	loadAverage func() (*load.AvgStat, error),
) *Monitor {
	return &Monitor{
		interval:      time.Second,
		stopCh:        make(chan struct{}),
		cpuPercent:    cpuPercent,
		virtualMemory: virtualMemory,
		loadAverage:   loadAverage,
	}
}

// Start takes an initial sample and begins periodic collection.
func (m *Monitor) Start() {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return
	}
	m.running = true
	m.mu.Unlock()

	m.collect()

	go func() {
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				m.collect()
			case <-m.stopCh:
				return
			}
		}
	}()
}

// Stop ends periodic collection.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		m.running = false
		close(m.stopCh)
	}
}

// Snapshot returns the most recent sample.
func (m *Monitor) Snapshot() domain.PerformanceSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}

// collect gathers one sample. Sampler failures leave the affected fields
// at zero so a partial reading still reaches the UI.
func (m *Monitor) collect() {
	var next domain.PerformanceSnapshot
	next.CPUCount = runtime.NumCPU()
	next.Timestamp = time.Now().UTC()

	if percent, err := m.cpuPercent(); err == nil {
		next.CPUPercent = percent
	}
	if vmStat, err := m.virtualMemory(); err == nil && vmStat != nil {
		next.RAMTotalGB = float64(vmStat.Total) / bytesPerGB
		next.RAMUsedGB = float64(vmStat.Used) / bytesPerGB
		next.RAMPercent = vmStat.UsedPercent
	}
	if avgStat, err := m.loadAverage(); err == nil && avgStat != nil {
		next.Load1 = avgStat.Load1
	}

	m.mu.Lock()
	m.snapshot = next
	m.mu.Unlock()
}
