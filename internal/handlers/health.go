package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/handlekurv/deal-service/internal/catalog"
	"github.com/handlekurv/deal-service/internal/database"
)

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status         string `json:"status"`
	Database       string `json:"database"`
	CatalogBreaker string `json:"catalogBreaker,omitempty"`
}

// HealthCheck handles the health check endpoint.
// GET /health
func HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status: "ok",
	}

	if database.Pool() != nil {
		if err := database.Status(c.Request.Context()); err != nil {
			response.Database = "disconnected"
			c.JSON(http.StatusServiceUnavailable, response)
			return
		}
		response.Database = "connected"
	} else {
		response.Database = "not configured"
	}

	if catalogCache != nil {
		state := catalogCache.BreakerState()
		response.CatalogBreaker = state.String()
		if state == catalog.BreakerOpen {
			response.Status = "degraded"
		}
	}

	c.JSON(http.StatusOK, response)
}
