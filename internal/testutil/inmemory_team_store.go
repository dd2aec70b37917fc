package testutil

import (
	"context"
	"sort"

	"github.com/orderly-com/wish-insights/internal/domain/team"
	ierr "github.com/orderly-com/wish-insights/internal/errors"
)

// InMemoryTeamStore implements team.Repository
type InMemoryTeamStore struct {
	*InMemoryStore[*team.Team]
}

// NewInMemoryTeamStore creates a new in-memory team store
func NewInMemoryTeamStore() *InMemoryTeamStore {
	return &InMemoryTeamStore{
		InMemoryStore: NewInMemoryStore[*team.Team](),
	}
}

func copyTeam(t *team.Team) *team.Team {
	if t == nil {
		return nil
	}
	copied := *t
	return &copied
}

func (s *InMemoryTeamStore) Create(ctx context.Context, t *team.Team) error {
	if t == nil {
		return ierr.NewError("team cannot be nil").
			WithHint("Team cannot be nil").
			Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Create(ctx, t.ID, copyTeam(t))
}

func (s *InMemoryTeamStore) Get(ctx context.Context, id string) (*team.Team, error) {
	t, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("team not found").
			WithReportableDetails(map[string]interface{}{"id": id}).
			Mark(ierr.ErrNotFound)
	}
	return copyTeam(t), nil
}

func (s *InMemoryTeamStore) ListActive(_ context.Context) ([]*team.Team, error) {
	var out []*team.Team
	for _, t := range s.All() {
		if t.Removed {
			continue
		}
		out = append(out, copyTeam(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
