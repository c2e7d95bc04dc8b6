package api

import (
	"github.com/gin-gonic/gin"

	"cybertrack/config"
	"cybertrack/orchestrator"
	"cybertrack/store"
)

// Deps holds the shared dependencies the controllers operate on.
type Deps struct {
	Pipeline *orchestrator.Pipeline
	Articles *store.RedisStore
	Config   config.Config
}

// NewRouter constructs a Gin engine with registered routes.
func NewRouter(deps Deps) *gin.Engine {
	r := gin.New()
	// Minimal middleware: recovery; logger optional to reduce verbosity
	r.Use(gin.Recovery())

	RegisterDeduplicationRoutes(r, deps)
	RegisterScrapeRoutes(r, deps)
	RegisterHealthRoutes(r)
	return r
}
