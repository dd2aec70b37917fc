package cron

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/orderly-com/wish-insights/internal/api/dto"
	"github.com/orderly-com/wish-insights/internal/domain/team"
	"github.com/orderly-com/wish-insights/internal/logger"
	"github.com/orderly-com/wish-insights/internal/service"
)

// TeamLocker serializes scoring runs per team across instances
type TeamLocker interface {
	TryLockTeam(ctx context.Context, teamID string) (bool, error)
	UnlockTeam(ctx context.Context, teamID string) error
}

// ScoringCronHandler handles scheduler-triggered scoring runs
type ScoringCronHandler struct {
	rfmService   service.RFMService
	cycleService service.RepurchaseCycleService
	teamRepo     team.Repository
	locker       TeamLocker
	logger       *logger.Logger
}

// NewScoringCronHandler creates a new scoring cron handler
func NewScoringCronHandler(
	rfmService service.RFMService,
	cycleService service.RepurchaseCycleService,
	teamRepo team.Repository,
	locker TeamLocker,
	logger *logger.Logger,
) *ScoringCronHandler {
	return &ScoringCronHandler{
		rfmService:   rfmService,
		cycleService: cycleService,
		teamRepo:     teamRepo,
		locker:       locker,
		logger:       logger,
	}
}

// withTeamLock runs fn while holding the team's advisory lock. A held lock
// means another scoring run is in flight and the request is turned away.
func (h *ScoringCronHandler) withTeamLock(c *gin.Context, teamID string, fn func(ctx context.Context) error) {
	ctx := c.Request.Context()

	acquired, err := h.locker.TryLockTeam(ctx, teamID)
	if err != nil {
		c.Error(err)
		return
	}
	if !acquired {
		c.JSON(http.StatusConflict, gin.H{
			"status":  "skipped",
			"team_id": teamID,
			"reason":  "a scoring run is already in progress for this team",
		})
		return
	}
	defer func() {
		if err := h.locker.UnlockTeam(ctx, teamID); err != nil {
			h.logger.Errorw("failed to release team lock", "team_id", teamID, "error", err)
		}
	}()

	if err := fn(ctx); err != nil {
		c.Error(err)
	}
}

// RunRFM recomputes RFM scores for one team
func (h *ScoringCronHandler) RunRFM(c *gin.Context) {
	teamID := c.Param("team_id")
	h.logger.Infow("starting rfm scoring cron job",
		"team_id", teamID,
		"time", time.Now().UTC().Format(time.RFC3339),
	)

	h.withTeamLock(c, teamID, func(ctx context.Context) error {
		updated, err := h.rfmService.ScoreTeam(ctx, teamID)
		if err != nil {
			h.logger.Errorw("failed to score team", "team_id", teamID, "error", err)
			return err
		}

		h.logger.Infow("completed rfm scoring cron job", "team_id", teamID, "updated", updated)
		c.JSON(http.StatusOK, dto.RunResponse{TeamID: teamID, Updated: updated})
		return nil
	})
}

// RunRFMAll recomputes RFM scores for every active team
func (h *ScoringCronHandler) RunRFMAll(c *gin.Context) {
	h.logger.Infow("starting rfm scoring cron job for all teams",
		"time", time.Now().UTC().Format(time.RFC3339),
	)

	teams, err := h.teamRepo.ListActive(c.Request.Context())
	if err != nil {
		h.logger.Errorw("failed to list teams", "error", err)
		c.Error(err)
		return
	}

	ctx := c.Request.Context()
	results := make([]dto.RunResponse, 0, len(teams))
	for _, t := range teams {
		acquired, err := h.locker.TryLockTeam(ctx, t.ID)
		if err != nil {
			h.logger.Errorw("failed to acquire team lock", "team_id", t.ID, "error", err)
			continue
		}
		if !acquired {
			h.logger.Infow("skipping team with a run in progress", "team_id", t.ID)
			continue
		}

		updated, err := h.rfmService.ScoreTeam(ctx, t.ID)
		if unlockErr := h.locker.UnlockTeam(ctx, t.ID); unlockErr != nil {
			h.logger.Errorw("failed to release team lock", "team_id", t.ID, "error", unlockErr)
		}
		if err != nil {
			// one failing team must not block the rest of the sweep
			h.logger.Errorw("failed to score team", "team_id", t.ID, "error", err)
			continue
		}
		results = append(results, dto.RunResponse{TeamID: t.ID, Updated: updated})
	}

	h.logger.Infow("completed rfm scoring cron job for all teams",
		"teams", len(teams),
		"succeeded", len(results),
	)
	c.JSON(http.StatusOK, gin.H{"status": "success", "results": results})
}

// RunCycleStats recomputes repurchase cycle statistics for one team
func (h *ScoringCronHandler) RunCycleStats(c *gin.Context) {
	teamID := c.Param("team_id")
	h.logger.Infow("starting repurchase cycle cron job",
		"team_id", teamID,
		"time", time.Now().UTC().Format(time.RFC3339),
	)

	var req dto.RunCycleStatsRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.logger.Errorw("failed to parse request body", "error", err)
			c.Error(err)
			return
		}
	}

	dateEnd, err := req.Validate()
	if err != nil {
		c.Error(err)
		return
	}

	h.withTeamLock(c, teamID, func(ctx context.Context) error {
		updated, err := h.cycleService.CalculateTeam(ctx, teamID, service.CycleOptions{
			AppendDays: req.AppendDays,
			DateEnd:    dateEnd,
		})
		if err != nil {
			h.logger.Errorw("failed to calculate cycle statistics", "team_id", teamID, "error", err)
			return err
		}

		h.logger.Infow("completed repurchase cycle cron job", "team_id", teamID, "updated", updated)
		c.JSON(http.StatusOK, dto.RunResponse{TeamID: teamID, Updated: updated})
		return nil
	})
}
