package team

import "context"

// Repository defines the interface for team lookups
type Repository interface {
	// Get retrieves a team by ID
	Get(ctx context.Context, id string) (*Team, error)

	// ListActive returns all non-removed teams
	ListActive(ctx context.Context) ([]*Team, error)
}
