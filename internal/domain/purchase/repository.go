package purchase

import (
	"context"
	"time"
)

// EligibleFilter selects purchase rows feeding a scoring run. Only confirmed,
// non-removed rows ever match; the remaining knobs vary per caller.
type EligibleFilter struct {
	TeamID string

	// Since bounds datetime from below (inclusive); nil means unbounded
	Since *time.Time

	// Until bounds datetime from above (inclusive); nil means unbounded
	Until *time.Time

	// ExcludeInternalMembers drops rows of internal (staff) clients
	ExcludeInternalMembers bool
}

// Repository defines the interface for reading purchase records
type Repository interface {
	// ListConfirmed returns the team's eligible purchase rows ordered by
	// datetime ascending
	ListConfirmed(ctx context.Context, filter *EligibleFilter) ([]*Purchase, error)
}
