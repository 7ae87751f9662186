package services

import (
	"sync"
	"time"

	"diskwatch/internal/models"
)

// CycleHistory keeps the most recent monitor cycles in memory
type CycleHistory struct {
	mu            sync.RWMutex
	cycles        []models.CycleResult
	maxDataPoints int
	now           func() time.Time
}

// NewCycleHistory returns a history holding at most maxDataPoints cycles
func NewCycleHistory(maxDataPoints int) *CycleHistory {
	if maxDataPoints <= 0 {
		maxDataPoints = 60
	}
	return &CycleHistory{
		cycles:        []models.CycleResult{},
		maxDataPoints: maxDataPoints,
		now:           time.Now,
	}
}

// ObserveCycle appends a cycle, dropping the oldest one when full
func (h *CycleHistory) ObserveCycle(result models.CycleResult) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.cycles = append(h.cycles, result)
	if len(h.cycles) > h.maxDataPoints {
		h.cycles = h.cycles[len(h.cycles)-h.maxDataPoints:]
	}
}

// Window returns the cycles started within duration of now, oldest first
func (h *CycleHistory) Window(duration time.Duration) models.HistoricalDataWindow {
	h.mu.RLock()
	defer h.mu.RUnlock()

	cutoffTime := h.now().Add(-duration)

	window := models.HistoricalDataWindow{Since: cutoffTime, Cycles: []models.CycleResult{}}
	for _, c := range h.cycles {
		if c.StartedAt.After(cutoffTime) {
			window.Cycles = append(window.Cycles, c)
		}
	}

	return window
}

// Len returns the number of retained cycles
func (h *CycleHistory) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.cycles)
}
