package controllers

import (
	"net/http"

	"diskwatch/internal/services"

	"github.com/gin-gonic/gin"
)

// GetDisks returns a live view of every mounted partition
func (a *API) GetDisks(c *gin.Context) {
	disks, err := services.GetAllDiskUsage(c.Request.Context(), a.Log)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, disks)
}

// GetMetrics serves the Prometheus exposition
func (a *API) GetMetrics(c *gin.Context) {
	a.Telemetry.Handler().ServeHTTP(c.Writer, c.Request)
}
