package models

import (
	units "github.com/docker/go-units"
)

// DiskStatus represents detailed disk usage information for one mounted partition
type DiskStatus struct {
	Device       string  `json:"device"`
	Path         string  `json:"path"`
	TotalGB      float64 `json:"total_gb"`
	UsedGB       float64 `json:"used_gb"`
	FreeGB       float64 `json:"free_gb"`
	UsagePercent float64 `json:"usage_percent"`
	Filesystem   string  `json:"filesystem"`
}

// UsageRecord is one data row of a usage sample, kept in the utility's own text form
type UsageRecord struct {
	Filesystem  string `json:"filesystem"`
	Available   string `json:"available"`
	UsedPercent string `json:"used_percent"`
}

// WatchedUsage is a UsageRecord on the watch-list after its percentage was parsed
type WatchedUsage struct {
	Filesystem     string  `json:"filesystem"`
	Available      string  `json:"available"`
	AvailableBytes int64   `json:"available_bytes"`
	UsedPercent    string  `json:"used_percent"`
	Percent        float64 `json:"percent"`
	Over           bool    `json:"over"`
}

// AvailableBytes converts the human-readable available size (e.g. "12G") to bytes.
// df -h uses base-1024 suffixes. Returns -1 when the value can't be parsed.
func (r UsageRecord) AvailableBytes() int64 {
	n, err := units.RAMInBytes(r.Available)
	if err != nil {
		return -1
	}
	return n
}
