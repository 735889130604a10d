package api

import (
	"context"
	"log"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"dalatbot/pipeline"
)

// pipelineController serializes runs: at most one batch is in flight at a
// time, and the last finished report is kept for inspection.
type pipelineController struct {
	pipeline *pipeline.Pipeline

	mu       sync.Mutex
	inFlight bool
	last     *pipeline.Report
}

// RegisterPipelineRoutes registers the run-control endpoints.
func RegisterPipelineRoutes(r *gin.Engine, p *pipeline.Pipeline) {
	ctrl := &pipelineController{pipeline: p}
	g := r.Group("/api/pipeline")
	g.POST("/run", ctrl.handleRun)
	g.GET("/last", ctrl.handleLast)
}

// handleRun starts a batch asynchronously and returns immediately. A second
// trigger while a run is in flight gets 409.
func (ctrl *pipelineController) handleRun(c *gin.Context) {
	ctrl.mu.Lock()
	if ctrl.inFlight {
		ctrl.mu.Unlock()
		c.JSON(http.StatusConflict, gin.H{"error": "a pipeline run is already in flight"})
		return
	}
	ctrl.inFlight = true
	ctrl.mu.Unlock()

	go func() {
		// Detached from the request context: the run outlives the trigger.
		report := ctrl.pipeline.Run(context.Background())

		ctrl.mu.Lock()
		ctrl.inFlight = false
		ctrl.last = &report
		ctrl.mu.Unlock()

		log.Printf("pipeline run %s: %d stor(ies), %d error(s)", report.RunID, len(report.Stories), len(report.Errors))
	}()

	c.JSON(http.StatusAccepted, gin.H{"status": "started"})
}

func (ctrl *pipelineController) handleLast(c *gin.Context) {
	ctrl.mu.Lock()
	last := ctrl.last
	inFlight := ctrl.inFlight
	ctrl.mu.Unlock()

	if last == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no finished run yet", "in_flight": inFlight})
		return
	}
	c.JSON(http.StatusOK, gin.H{"in_flight": inFlight, "report": last})
}
