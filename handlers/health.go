package handlers

import (
	"net/http"

	"aviachat/utils"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports liveness plus the latest session-store snapshot.
func HealthHandler(c *gin.Context) {
	status := utils.GetHealthStatus()
	code, label := http.StatusOK, "ok"
	if !status.SessionStore {
		code, label = http.StatusServiceUnavailable, "degraded"
	}
	c.JSON(code, gin.H{"status": label, "dependencies": status})
}
