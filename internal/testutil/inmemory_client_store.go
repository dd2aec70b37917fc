package testutil

import (
	"context"
	"sort"

	"github.com/samber/lo"

	"github.com/orderly-com/wish-insights/internal/domain/client"
	ierr "github.com/orderly-com/wish-insights/internal/errors"
	"github.com/orderly-com/wish-insights/internal/types"
)

// InMemoryClientStore implements client.Repository
type InMemoryClientStore struct {
	*InMemoryStore[*client.Client]
}

// NewInMemoryClientStore creates a new in-memory client store
func NewInMemoryClientStore() *InMemoryClientStore {
	return &InMemoryClientStore{
		InMemoryStore: NewInMemoryStore[*client.Client](),
	}
}

func copyClient(c *client.Client) *client.Client {
	if c == nil {
		return nil
	}
	copied := *c
	if c.RFMSegment != nil {
		copied.RFMSegment = lo.ToPtr(*c.RFMSegment)
	}
	return &copied
}

func (s *InMemoryClientStore) Create(ctx context.Context, c *client.Client) error {
	if c == nil {
		return ierr.NewError("client cannot be nil").
			WithHint("Client cannot be nil").
			Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Create(ctx, c.ID, copyClient(c))
}

func (s *InMemoryClientStore) Get(ctx context.Context, id string) (*client.Client, error) {
	c, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("client not found").
			WithReportableDetails(map[string]interface{}{"id": id}).
			Mark(ierr.ErrNotFound)
	}
	return copyClient(c), nil
}

func (s *InMemoryClientStore) ListByTeam(_ context.Context, teamID string) ([]*client.Client, error) {
	var out []*client.Client
	for _, c := range s.All() {
		if c.TeamID != teamID || c.Removed || c.InternalMember {
			continue
		}
		out = append(out, copyClient(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemoryClientStore) ResetRFMFields(_ context.Context, teamID string, group types.RFMFieldGroup) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.items {
		if c.TeamID != teamID {
			continue
		}
		switch group {
		case types.RFMFieldGroupRecency:
			c.AvgRepurchaseDays = types.AvgRepurchaseUnset
			c.RFMRecency = types.RFMScoreUnset
		case types.RFMFieldGroupFrequencyAmount:
			c.RFMFrequency = types.RFMScoreUnset
			c.RFMMonetary = types.RFMScoreUnset
		case types.RFMFieldGroupScorePercentile:
			c.RFMTotalScore = types.RFMScoreUnset
			c.RFMPercentile = types.RFMPercentileUnset
		case types.RFMFieldGroupSegment:
			c.RFMSegment = nil
		default:
			return ierr.NewErrorf("unknown rfm field group: %s", group).
				Mark(ierr.ErrValidation)
		}
	}
	return nil
}

func (s *InMemoryClientStore) BulkUpdateRFMFields(_ context.Context, teamID string, updates []*client.RFMUpdate, group types.RFMFieldGroup, batchSize int) error {
	if batchSize <= 0 {
		return ierr.NewError("batch size must be positive").
			Mark(ierr.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, batch := range lo.Chunk(updates, batchSize) {
		for _, u := range batch {
			c, ok := s.items[u.ClientID]
			if !ok || c.TeamID != teamID {
				continue
			}
			switch group {
			case types.RFMFieldGroupRecency:
				c.AvgRepurchaseDays = u.AvgRepurchaseDays
				c.RFMRecency = u.Recency
			case types.RFMFieldGroupFrequencyAmount:
				c.RFMFrequency = u.Frequency
				c.RFMMonetary = u.Monetary
			case types.RFMFieldGroupScorePercentile:
				c.RFMTotalScore = u.TotalScore
				c.RFMPercentile = u.Percentile
			case types.RFMFieldGroupSegment:
				if u.Segment != nil {
					c.RFMSegment = lo.ToPtr(*u.Segment)
				} else {
					c.RFMSegment = nil
				}
			default:
				return ierr.NewErrorf("unknown rfm field group: %s", group).
					Mark(ierr.ErrValidation)
			}
		}
	}
	return nil
}
