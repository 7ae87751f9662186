package models

import "time"

// Alert stores one notification attempt made during a cycle
type Alert struct {
	Filesystem  string  `json:"filesystem"`
	UsedPercent string  `json:"used_percent"`
	Percent     float64 `json:"percent"`
	Delivered   bool    `json:"delivered"`
	Error       string  `json:"error,omitempty"`
}

// CycleResult is the outcome of one sample/evaluate/notify pass of the monitor
type CycleResult struct {
	StartedAt time.Time      `json:"started_at"`
	Records   []UsageRecord  `json:"records"`
	Watched   []WatchedUsage `json:"watched"`
	Alerts    []Alert        `json:"alerts"`
	Triggered bool           `json:"triggered"`
	NextSleep time.Duration  `json:"next_sleep"`
}

// HistoricalDataWindow holds the cycles that fall inside a requested time window
type HistoricalDataWindow struct {
	Since  time.Time     `json:"since"`
	Cycles []CycleResult `json:"cycles"`
}
