package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/orderly-com/wish-insights/internal/logger"
	"github.com/orderly-com/wish-insights/internal/service"
)

type InsightsHandler struct {
	insightsService service.InsightsService
	logger          *logger.Logger
}

func NewInsightsHandler(
	insightsService service.InsightsService,
	logger *logger.Logger,
) *InsightsHandler {
	return &InsightsHandler{
		insightsService: insightsService,
		logger:          logger,
	}
}

// GetRFMDistribution returns the count of clients per total RFM score
func (h *InsightsHandler) GetRFMDistribution(c *gin.Context) {
	teamID := c.Param("team_id")

	response, err := h.insightsService.RFMDistribution(c.Request.Context(), teamID)
	if err != nil {
		h.logger.Errorw("failed to get rfm distribution", "team_id", teamID, "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetNESL segments the team's clients into New / Existing / Sleeping / Lost
func (h *InsightsHandler) GetNESL(c *gin.Context) {
	teamID := c.Param("team_id")

	response, err := h.insightsService.NESLCounts(c.Request.Context(), teamID, time.Now().UTC())
	if err != nil {
		h.logger.Errorw("failed to get nesl counts", "team_id", teamID, "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}
