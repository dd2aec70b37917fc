package cycle

import "context"

// Repository defines the interface for repurchase cycle summary persistence
type Repository interface {
	// GetByTeam retrieves the team's summary row; ierr.ErrNotFound when the
	// team has never been summarized
	GetByTeam(ctx context.Context, teamID string) (*Summary, error)

	// Upsert creates the team's summary row or overwrites it in place
	Upsert(ctx context.Context, summary *Summary) error
}
