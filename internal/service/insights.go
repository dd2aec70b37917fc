package service

import (
	"context"
	"time"

	"github.com/orderly-com/wish-insights/internal/api/dto"
	"github.com/orderly-com/wish-insights/internal/domain/purchase"
	ierr "github.com/orderly-com/wish-insights/internal/errors"
)

// rfmTotalScoreMin and rfmTotalScoreMax bound the total score distribution
const (
	rfmTotalScoreMin = 3
	rfmTotalScoreMax = 15
)

// neslRecentWindowMonths is the lookback separating new/existing clients from
// sleeping/lost ones
const neslRecentWindowMonths = 3

// InsightsService exposes read-side aggregates over the scorer's output
type InsightsService interface {
	// RFMDistribution returns the count of clients per total RFM score.
	// Unscored clients (sentinel values) are excluded.
	RFMDistribution(ctx context.Context, teamID string) (*dto.RFMDistributionResponse, error)

	// NESLCounts segments the team's clients into New, Existing, Sleeping
	// and Lost based on first purchase date and purchase count
	NESLCounts(ctx context.Context, teamID string, now time.Time) (*dto.NESLResponse, error)
}

type insightsService struct {
	ServiceParams
}

// NewInsightsService creates a new insights service
func NewInsightsService(params ServiceParams) InsightsService {
	return &insightsService{ServiceParams: params}
}

func (s *insightsService) RFMDistribution(ctx context.Context, teamID string) (*dto.RFMDistributionResponse, error) {
	if teamID == "" {
		return nil, ierr.NewError("team_id is required").
			WithHint("Team ID cannot be empty").
			Mark(ierr.ErrValidation)
	}

	clients, err := s.ClientRepo.ListByTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}

	counts := make(map[int]int, rfmTotalScoreMax-rfmTotalScoreMin+1)
	for _, c := range clients {
		if c.RFMTotalScore >= rfmTotalScoreMin && c.RFMTotalScore <= rfmTotalScoreMax {
			counts[c.RFMTotalScore]++
		}
	}

	resp := &dto.RFMDistributionResponse{TeamID: teamID}
	for score := rfmTotalScoreMin; score <= rfmTotalScoreMax; score++ {
		resp.Buckets = append(resp.Buckets, dto.RFMScoreBucket{
			Score: score,
			Count: counts[score],
		})
	}
	return resp, nil
}

func (s *insightsService) NESLCounts(ctx context.Context, teamID string, now time.Time) (*dto.NESLResponse, error) {
	if teamID == "" {
		return nil, ierr.NewError("team_id is required").
			WithHint("Team ID cannot be empty").
			Mark(ierr.ErrValidation)
	}

	clients, err := s.ClientRepo.ListByTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}

	rows, err := s.PurchaseRepo.ListConfirmed(ctx, &purchase.EligibleFilter{TeamID: teamID})
	if err != nil {
		return nil, err
	}

	type purchaseAgg struct {
		first time.Time
		count int
	}
	byClient := make(map[string]*purchaseAgg, len(clients))
	for _, row := range rows {
		a, ok := byClient[row.ClientID]
		if !ok {
			byClient[row.ClientID] = &purchaseAgg{first: row.Datetime, count: 1}
			continue
		}
		a.count++
	}

	recent := now.AddDate(0, -neslRecentWindowMonths, 0)
	resp := &dto.NESLResponse{TeamID: teamID}

	for _, c := range clients {
		a, ok := byClient[c.ID]
		switch {
		case ok && !a.first.Before(recent) && a.count == 1:
			resp.New++
		case ok && !a.first.Before(recent) && a.count > 1:
			resp.Existing++
		case ok && a.first.Before(recent) && a.count > 1:
			resp.Sleeping++
		}
	}

	lost := len(clients) - resp.New - resp.Existing - resp.Sleeping
	if lost < 0 {
		lost = 0
	}
	resp.Lost = lost

	return resp, nil
}
