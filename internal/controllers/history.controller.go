package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// GetHistory returns the recent cycles
// Query params: duration=5m|10m|1h|24h (default: 10m)
func (a *API) GetHistory(c *gin.Context) {
	durationStr := c.DefaultQuery("duration", "10m")

	duration, err := time.ParseDuration(durationStr)
	if err != nil || duration <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid duration format"})
		return
	}

	window := a.History.Window(duration)
	c.JSON(http.StatusOK, gin.H{
		"duration": durationStr,
		"data":     window,
	})
}
