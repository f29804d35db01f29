package domain

import "time"

// SystemInfo describes the host environment the app runs on.
type SystemInfo struct {
	OS        string `json:"os"`
	Arch      string `json:"arch"`
	NumCPU    int    `json:"numCpu"`
	GoVersion string `json:"goVersion"`
	Hostname  string `json:"hostname"`
	MediaDir  string `json:"mediaDir"`
	AssetsDir string `json:"assetsDir"`
}

// PerformanceSnapshot carries one reading of host resource usage.
type PerformanceSnapshot struct {
	CPUPercent float64   `json:"cpuPercent"`
	CPUCount   int       `json:"cpuCount"`
	RAMUsedGB  float64   `json:"ramUsedGb"`
	RAMTotalGB float64   `json:"ramTotalGb"`
	RAMPercent float64   `json:"ramPercent"`
	Load1      float64   `json:"load1"`
	Timestamp  time.Time `json:"timestamp"`
}
