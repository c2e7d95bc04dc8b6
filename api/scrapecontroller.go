package api

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"cybertrack/orchestrator"
)

// ScrapeRequest selects the feeds to fetch; empty means the default
// preset.
type ScrapeRequest struct {
	Feeds []string `json:"feeds"`
}

// RegisterScrapeRoutes registers scrape-cycle endpoints.
func RegisterScrapeRoutes(r *gin.Engine, deps Deps) {
	g := r.Group("/api/scrape")
	g.POST("/run", handleScrapeRun(deps))
}

// handleScrapeRun triggers a full fetch → deduplicate → persist cycle.
// It runs asynchronously and returns 202 Accepted immediately.
func handleScrapeRun(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ScrapeRequest
		// Body is optional; ignore parse errors and use defaults.
		_ = c.ShouldBindJSON(&req)

		go func() {
			if err := orchestrator.RunOnce(context.Background(), deps.Config, req.Feeds); err != nil {
				log.Printf("Scrape run failed: %v", err)
			}
		}()
		c.JSON(http.StatusAccepted, gin.H{"status": "scrape started"})
	}
}
