// Package api exposes the pipeline over HTTP for the platform's admin
// tooling: trigger a run, read the last report, inspect the sources.
package api

import (
	"github.com/gin-gonic/gin"

	"dalatbot/config"
	"dalatbot/pipeline"
)

// NewRouter constructs a Gin engine with registered routes.
func NewRouter(p *pipeline.Pipeline, registry *config.Registry) *gin.Engine {
	r := gin.New()
	// Minimal middleware: recovery; logger optional to reduce verbosity
	r.Use(gin.Recovery())

	RegisterHealthRoutes(r)
	RegisterPipelineRoutes(r, p)
	RegisterSourceRoutes(r, registry)
	return r
}
