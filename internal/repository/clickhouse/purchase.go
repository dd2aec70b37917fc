package clickhouse

import (
	"context"

	"github.com/orderly-com/wish-insights/internal/clickhouse"
	"github.com/orderly-com/wish-insights/internal/domain/purchase"
	ierr "github.com/orderly-com/wish-insights/internal/errors"
	"github.com/orderly-com/wish-insights/internal/logger"
	"github.com/orderly-com/wish-insights/internal/types"
)

type PurchaseRepository struct {
	store  *clickhouse.ClickHouseStore
	logger *logger.Logger
}

func NewPurchaseRepository(store *clickhouse.ClickHouseStore, logger *logger.Logger) purchase.Repository {
	return &PurchaseRepository{store: store, logger: logger}
}

// ListConfirmed streams the team's eligible purchase rows.
// Query follows the table structure:
// - PRIMARY KEY: (team_id, datetime)
// - ORDER BY: (team_id, datetime, client_id, id)
// - PARTITION BY: toYYYYMM(datetime)
// - ENGINE: ReplacingMergeTree(version)
func (r *PurchaseRepository) ListConfirmed(ctx context.Context, filter *purchase.EligibleFilter) ([]*purchase.Purchase, error) {
	if filter == nil || filter.TeamID == "" {
		return nil, ierr.NewError("team_id filter is required").
			WithHint("Purchase queries must be scoped to a team").
			Mark(ierr.ErrValidation)
	}

	// Filters follow the primary key order for index usage
	query := `
		SELECT
			id, team_id, client_id, brand_id, datetime, total_price,
			purchase_status, removed, client_internal_member, client_removed
		FROM purchases FINAL
		WHERE team_id = ?
		AND purchase_status = ?
		AND removed = false
		AND client_removed = false
	`
	args := []interface{}{filter.TeamID, string(types.PurchaseStatusConfirmed)}

	if filter.Since != nil {
		query += " AND datetime >= ?"
		args = append(args, *filter.Since)
	}

	if filter.Until != nil {
		query += " AND datetime <= ?"
		args = append(args, *filter.Until)
	}

	if filter.ExcludeInternalMembers {
		query += " AND client_internal_member = false"
	}

	query += " ORDER BY datetime ASC, id ASC"

	rows, err := r.store.GetConn().Query(ctx, query, args...)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to query purchases").
			WithReportableDetails(map[string]interface{}{"team_id": filter.TeamID}).
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var purchases []*purchase.Purchase
	for rows.Next() {
		var (
			p      purchase.Purchase
			status string
		)
		err := rows.Scan(
			&p.ID,
			&p.TeamID,
			&p.ClientID,
			&p.BrandID,
			&p.Datetime,
			&p.Total,
			&status,
			&p.Removed,
			&p.ClientInternalMember,
			&p.ClientRemoved,
		)
		if err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to scan purchase row").
				Mark(ierr.ErrDatabase)
		}
		p.PStatus = types.PurchaseStatus(status)
		purchases = append(purchases, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Error occurred during row iteration").
			Mark(ierr.ErrDatabase)
	}

	r.logger.Debugw("fetched purchases from clickhouse",
		"team_id", filter.TeamID,
		"count", len(purchases),
	)
	return purchases, nil
}
