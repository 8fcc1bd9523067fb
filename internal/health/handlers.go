package health

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tylerheal/clientportal/internal/database"
)

var startTime = time.Now()

// HandleHealthCheck returns basic health status
func HandleHealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "clientportal",
		"timestamp": time.Now(),
		"uptime":    time.Since(startTime).String(),
	})
}

// HandleSystemReady reports readiness: the process is up and the store
// answers a ping.
func HandleSystemReady(c *gin.Context) {
	dbReady := false
	if database.DB != nil {
		if sqlDB, err := database.DB.DB(); err == nil {
			if err := sqlDB.Ping(); err == nil {
				dbReady = true
			}
		}
	}

	status := http.StatusOK
	if !dbReady {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{
		"ready":    dbReady,
		"database": dbReady,
		"service":  "clientportal",
	})
}
