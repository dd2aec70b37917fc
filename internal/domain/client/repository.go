package client

import (
	"context"

	"github.com/orderly-com/wish-insights/internal/types"
)

// Repository defines the interface for client persistence operations. The
// scorer never touches single rows: scores land through a reset of a whole
// field group to sentinels followed by one batched bulk write.
type Repository interface {
	// Create inserts a new client row
	Create(ctx context.Context, c *Client) error

	// Get retrieves a client by ID
	Get(ctx context.Context, id string) (*Client, error)

	// ListByTeam returns all non-removed, non-internal clients of a team
	ListByTeam(ctx context.Context, teamID string) ([]*Client, error)

	// ResetRFMFields sets every field of the group to its sentinel for all
	// clients of the team, scored or not
	ResetRFMFields(ctx context.Context, teamID string, group types.RFMFieldGroup) error

	// BulkUpdateRFMFields writes the group's fields for the given clients in
	// batches of at most batchSize rows
	BulkUpdateRFMFields(ctx context.Context, teamID string, updates []*RFMUpdate, group types.RFMFieldGroup, batchSize int) error
}
