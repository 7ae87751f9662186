package controllers

import (
	"net/http"
	"time"

	"diskwatch/internal/models"
	"diskwatch/internal/services"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// CycleSource exposes the monitor state the API reports on
type CycleSource interface {
	LastCycle() (models.CycleResult, bool)
	Threshold() float64
	Policy() string
}

// API holds the dependencies of the status handlers
type API struct {
	Monitor   CycleSource
	History   *services.CycleHistory
	Telemetry *services.Telemetry
	Auth      *services.AuthService
	Hub       *services.WebSocketHub
	Log       *logrus.Entry
}

// Health reports liveness
func (a *API) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetStatus returns the last completed cycle
func (a *API) GetStatus(c *gin.Context) {
	last, ok := a.Monitor.LastCycle()
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no cycle completed yet"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sampled_at":     last.StartedAt,
		"sampled_ago":    humanize.Time(last.StartedAt),
		"threshold":      a.Monitor.Threshold(),
		"policy":         a.Monitor.Policy(),
		"watched":        last.Watched,
		"alerts":         last.Alerts,
		"triggered":      last.Triggered,
		"next_sleep":     last.NextSleep.String(),
		"next_sample_at": last.StartedAt.Add(last.NextSleep).Format(time.RFC3339),
	})
}
