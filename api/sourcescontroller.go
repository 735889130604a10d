package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dalatbot/config"
)

// RegisterSourceRoutes registers the source registry inspection endpoint.
func RegisterSourceRoutes(r *gin.Engine, registry *config.Registry) {
	r.GET("/api/sources", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"sources": registry.Sources})
	})
}
