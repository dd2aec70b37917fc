package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orderly-com/wish-insights/internal/api/cron"
	v1 "github.com/orderly-com/wish-insights/internal/api/v1"
	"github.com/orderly-com/wish-insights/internal/config"
	"github.com/orderly-com/wish-insights/internal/logger"
	"github.com/orderly-com/wish-insights/internal/rest/middleware"
)

// Handlers bundles every HTTP handler wired into the router
type Handlers struct {
	Insights    *v1.InsightsHandler
	ScoringCron *cron.ScoringCronHandler
}

// NewRouter assembles the gin engine with middleware and routes
func NewRouter(cfg *config.Configuration, log *logger.Logger, handlers Handlers) *gin.Engine {
	if cfg.Deployment.Mode == config.ModeProd {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.ContextMiddleware(),
		middleware.LoggingMiddleware(log),
		middleware.ErrorMiddleware(log),
	)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1Group := router.Group("/v1")
	{
		teams := v1Group.Group("/teams/:team_id")
		teams.GET("/insights/rfm-distribution", handlers.Insights.GetRFMDistribution)
		teams.GET("/insights/nesl", handlers.Insights.GetNESL)
	}

	cronGroup := router.Group("/cron")
	{
		cronGroup.POST("/rfm", handlers.ScoringCron.RunRFMAll)
		cronGroup.POST("/teams/:team_id/rfm", handlers.ScoringCron.RunRFM)
		cronGroup.POST("/teams/:team_id/repurchase-cycles", handlers.ScoringCron.RunCycleStats)
	}

	return router
}
