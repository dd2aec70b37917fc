package testutil

import (
	"context"
	"sort"

	"github.com/orderly-com/wish-insights/internal/domain/purchase"
	ierr "github.com/orderly-com/wish-insights/internal/errors"
	"github.com/orderly-com/wish-insights/internal/types"
)

// InMemoryPurchaseStore implements purchase.Repository
type InMemoryPurchaseStore struct {
	*InMemoryStore[*purchase.Purchase]
}

// NewInMemoryPurchaseStore creates a new in-memory purchase store
func NewInMemoryPurchaseStore() *InMemoryPurchaseStore {
	return &InMemoryPurchaseStore{
		InMemoryStore: NewInMemoryStore[*purchase.Purchase](),
	}
}

func copyPurchase(p *purchase.Purchase) *purchase.Purchase {
	if p == nil {
		return nil
	}
	copied := *p
	return &copied
}

func (s *InMemoryPurchaseStore) Create(ctx context.Context, p *purchase.Purchase) error {
	if p == nil {
		return ierr.NewError("purchase cannot be nil").
			WithHint("Purchase cannot be nil").
			Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Create(ctx, p.ID, copyPurchase(p))
}

func (s *InMemoryPurchaseStore) ListConfirmed(_ context.Context, filter *purchase.EligibleFilter) ([]*purchase.Purchase, error) {
	if filter == nil || filter.TeamID == "" {
		return nil, ierr.NewError("team_id is required").
			WithHint("Eligible filter needs a team ID").
			Mark(ierr.ErrValidation)
	}

	var rows []*purchase.Purchase
	for _, p := range s.All() {
		if !purchaseMatchesFilter(p, filter) {
			continue
		}
		rows = append(rows, copyPurchase(p))
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Datetime.Before(rows[j].Datetime)
	})
	return rows, nil
}

func purchaseMatchesFilter(p *purchase.Purchase, filter *purchase.EligibleFilter) bool {
	if p.TeamID != filter.TeamID {
		return false
	}
	if p.PStatus != types.PurchaseStatusConfirmed || p.Removed || p.ClientRemoved {
		return false
	}
	if filter.ExcludeInternalMembers && p.ClientInternalMember {
		return false
	}
	if filter.Since != nil && p.Datetime.Before(*filter.Since) {
		return false
	}
	if filter.Until != nil && p.Datetime.After(*filter.Until) {
		return false
	}
	return true
}
