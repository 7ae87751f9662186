package services

import (
	"testing"
	"time"

	"diskwatch/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCycleHistoryDropsOldest(t *testing.T) {
	h := NewCycleHistory(3)
	base := time.Now()
	for i := 0; i < 5; i++ {
		h.ObserveCycle(models.CycleResult{StartedAt: base.Add(time.Duration(i) * time.Second)})
	}

	require.Equal(t, 3, h.Len())
	window := h.Window(time.Hour)
	require.Len(t, window.Cycles, 3)
	assert.Equal(t, base.Add(2*time.Second), window.Cycles[0].StartedAt)
	assert.Equal(t, base.Add(4*time.Second), window.Cycles[2].StartedAt)
}

func TestCycleHistoryWindowFiltersByAge(t *testing.T) {
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	h := NewCycleHistory(10)
	h.now = func() time.Time { return now }

	h.ObserveCycle(models.CycleResult{StartedAt: now.Add(-2 * time.Hour)})
	h.ObserveCycle(models.CycleResult{StartedAt: now.Add(-5 * time.Minute), Triggered: true})

	window := h.Window(10 * time.Minute)
	require.Len(t, window.Cycles, 1)
	assert.True(t, window.Cycles[0].Triggered)
	assert.Equal(t, now.Add(-10*time.Minute), window.Since)
}

func TestCycleHistoryEmptyWindow(t *testing.T) {
	window := NewCycleHistory(0).Window(time.Minute)
	assert.NotNil(t, window.Cycles)
	assert.Empty(t, window.Cycles)
}
