package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// lockKeyPrefix namespaces the advisory lock keyspace so that scoring run
// locks never collide with locks taken by other tools on the same database
const lockKeyPrefix = "wish-insights:scoring:"

// TryLockTeam attempts to take the session advisory lock guarding one team's
// scoring runs. Returns false without blocking when another run holds it.
// The caller must release with UnlockTeam on the same Client.
func (c *Client) TryLockTeam(ctx context.Context, teamID string) (bool, error) {
	var acquired bool
	err := c.DB.QueryRowContext(ctx, `
		SELECT pg_try_advisory_lock(hashtext($1))
	`, lockKeyPrefix+teamID).Scan(&acquired)
	if err != nil {
		return false, fmt.Errorf("failed to acquire team lock: %w", err)
	}
	return acquired, nil
}

// UnlockTeam releases the team's scoring run lock
func (c *Client) UnlockTeam(ctx context.Context, teamID string) error {
	var released bool
	err := c.DB.QueryRowContext(ctx, `
		SELECT pg_advisory_unlock(hashtext($1))
	`, lockKeyPrefix+teamID).Scan(&released)
	if err != nil {
		return fmt.Errorf("failed to release team lock: %w", err)
	}
	if !released {
		return fmt.Errorf("team lock was not held: %s", teamID)
	}
	return nil
}

// IsSerializationError reports whether err is a Postgres serialization or
// deadlock failure that the caller may retry
func IsSerializationError(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "40001" || pqErr.Code == "40P01"
	}
	return false
}
