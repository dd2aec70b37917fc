package testutil

import (
	"context"

	"github.com/samber/lo"

	"github.com/orderly-com/wish-insights/internal/domain/cycle"
	ierr "github.com/orderly-com/wish-insights/internal/errors"
)

// InMemoryCycleStore implements cycle.Repository, keyed by team
type InMemoryCycleStore struct {
	*InMemoryStore[*cycle.Summary]
}

// NewInMemoryCycleStore creates a new in-memory cycle summary store
func NewInMemoryCycleStore() *InMemoryCycleStore {
	return &InMemoryCycleStore{
		InMemoryStore: NewInMemoryStore[*cycle.Summary](),
	}
}

func copySummary(sm *cycle.Summary) *cycle.Summary {
	if sm == nil {
		return nil
	}
	copied := *sm
	copied.Daybase = append([]int(nil), sm.Daybase...)
	copied.Weekbase = append([]int(nil), sm.Weekbase...)
	copied.CycleDepthDaybase = append([]int(nil), sm.CycleDepthDaybase...)
	copied.CycleDepthWeekbase = append([]int(nil), sm.CycleDepthWeekbase...)
	copied.Clientbases = append([]string(nil), sm.Clientbases...)
	copied.DaybaseByCycle = copyIntSliceMap(sm.DaybaseByCycle)
	copied.WeekbaseByCycle = copyIntSliceMap(sm.WeekbaseByCycle)
	copied.DayStatsByCycle = lo.Assign(map[int]cycle.TrackStats{}, sm.DayStatsByCycle)
	copied.WeekStatsByCycle = lo.Assign(map[int]cycle.TrackStats{}, sm.WeekStatsByCycle)
	return &copied
}

func copyIntSliceMap(m map[int][]int) map[int][]int {
	if m == nil {
		return nil
	}
	out := make(map[int][]int, len(m))
	for k, v := range m {
		out[k] = append([]int(nil), v...)
	}
	return out
}

func (s *InMemoryCycleStore) GetByTeam(ctx context.Context, teamID string) (*cycle.Summary, error) {
	sm, err := s.InMemoryStore.Get(ctx, teamID)
	if err != nil {
		return nil, ierr.NewError("cycle summary not found").
			WithReportableDetails(map[string]interface{}{"team_id": teamID}).
			Mark(ierr.ErrNotFound)
	}
	return copySummary(sm), nil
}

func (s *InMemoryCycleStore) Upsert(ctx context.Context, summary *cycle.Summary) error {
	if summary == nil || summary.TeamID == "" {
		return ierr.NewError("summary needs a team ID").
			WithHint("Cycle summary cannot be nil and needs a team ID").
			Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Upsert(ctx, summary.TeamID, copySummary(summary))
}
