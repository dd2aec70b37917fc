package postgres

import (
	"context"
	"database/sql"

	"github.com/samber/lo"

	"github.com/orderly-com/wish-insights/internal/domain/client"
	ierr "github.com/orderly-com/wish-insights/internal/errors"
	"github.com/orderly-com/wish-insights/internal/logger"
	"github.com/orderly-com/wish-insights/internal/postgres"
	"github.com/orderly-com/wish-insights/internal/types"
)

const clientColumns = `
	id, team_id, external_id, internal_member, removed,
	avg_repurchase_days, rfm_recency, rfm_frequency, rfm_monetary,
	rfm_total_score, rfm_percentile, rfm_segment,
	tenant_id, status, created_at, updated_at, created_by, updated_by
`

type ClientRepository struct {
	db     *postgres.Client
	logger *logger.Logger
}

func NewClientRepository(db *postgres.Client, logger *logger.Logger) client.Repository {
	return &ClientRepository{db: db, logger: logger}
}

func (r *ClientRepository) Create(ctx context.Context, c *client.Client) error {
	if c == nil {
		return ierr.NewError("client cannot be nil").
			WithHint("Client cannot be nil").
			Mark(ierr.ErrValidation)
	}

	_, err := r.db.DB.ExecContext(ctx, `
		INSERT INTO clients (`+clientColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`,
		c.ID, c.TeamID, c.ExternalID, c.InternalMember, c.Removed,
		c.AvgRepurchaseDays, c.RFMRecency, c.RFMFrequency, c.RFMMonetary,
		c.RFMTotalScore, c.RFMPercentile, c.RFMSegment,
		c.TenantID, c.Status, c.CreatedAt, c.UpdatedAt, c.CreatedBy, c.UpdatedBy,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create client").
			WithReportableDetails(map[string]interface{}{"id": c.ID}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *ClientRepository) Get(ctx context.Context, id string) (*client.Client, error) {
	row := r.db.DB.QueryRowContext(ctx, `
		SELECT `+clientColumns+`
		FROM clients
		WHERE id = $1
	`, id)

	c, err := scanClient(row)
	if err == sql.ErrNoRows {
		return nil, ierr.NewError("client not found").
			WithReportableDetails(map[string]interface{}{"id": id}).
			Mark(ierr.ErrNotFound)
	}
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to get client").
			Mark(ierr.ErrDatabase)
	}
	return c, nil
}

func (r *ClientRepository) ListByTeam(ctx context.Context, teamID string) ([]*client.Client, error) {
	rows, err := r.db.DB.QueryContext(ctx, `
		SELECT `+clientColumns+`
		FROM clients
		WHERE team_id = $1
		AND removed = false
		AND internal_member = false
		ORDER BY id
	`, teamID)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list clients").
			WithReportableDetails(map[string]interface{}{"team_id": teamID}).
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var clients []*client.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to scan client row").
				Mark(ierr.ErrDatabase)
		}
		clients = append(clients, c)
	}
	if err := rows.Err(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Error occurred during row iteration").
			Mark(ierr.ErrDatabase)
	}
	return clients, nil
}

func (r *ClientRepository) ResetRFMFields(ctx context.Context, teamID string, group types.RFMFieldGroup) error {
	assignment, err := resetAssignment(group)
	if err != nil {
		return err
	}

	res, err := r.db.DB.ExecContext(ctx, `
		UPDATE clients SET `+assignment+`, updated_at = now()
		WHERE team_id = $1
	`, teamID)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to reset rfm fields").
			WithReportableDetails(map[string]interface{}{
				"team_id": teamID,
				"group":   string(group),
			}).
			Mark(ierr.ErrDatabase)
	}

	affected, _ := res.RowsAffected()
	r.logger.Debugw("reset rfm fields",
		"team_id", teamID,
		"group", string(group),
		"rows", affected,
	)
	return nil
}

func (r *ClientRepository) BulkUpdateRFMFields(ctx context.Context, teamID string, updates []*client.RFMUpdate, group types.RFMFieldGroup, batchSize int) error {
	if batchSize <= 0 {
		return ierr.NewError("batch size must be positive").
			Mark(ierr.ErrValidation)
	}

	query, err := updateQuery(group)
	if err != nil {
		return err
	}

	for _, batch := range lo.Chunk(updates, batchSize) {
		tx, err := r.db.DB.BeginTx(ctx, nil)
		if err != nil {
			return ierr.WithError(err).
				WithHint("Failed to begin update transaction").
				Mark(ierr.ErrDatabase)
		}

		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			_ = tx.Rollback()
			return ierr.WithError(err).
				WithHint("Failed to prepare update statement").
				Mark(ierr.ErrDatabase)
		}

		for _, u := range batch {
			if _, err := stmt.ExecContext(ctx, updateArgs(teamID, u, group)...); err != nil {
				_ = stmt.Close()
				_ = tx.Rollback()
				return ierr.WithError(err).
					WithHint("Failed to update client rfm fields").
					WithReportableDetails(map[string]interface{}{
						"team_id":   teamID,
						"client_id": u.ClientID,
						"group":     string(group),
					}).
					Mark(ierr.ErrDatabase)
			}
		}

		_ = stmt.Close()
		if err := tx.Commit(); err != nil {
			return ierr.WithError(err).
				WithHint("Failed to commit update transaction").
				Mark(ierr.ErrDatabase)
		}
	}

	r.logger.Debugw("bulk updated rfm fields",
		"team_id", teamID,
		"group", string(group),
		"clients", len(updates),
	)
	return nil
}

func resetAssignment(group types.RFMFieldGroup) (string, error) {
	switch group {
	case types.RFMFieldGroupRecency:
		return "avg_repurchase_days = -1, rfm_recency = -1", nil
	case types.RFMFieldGroupFrequencyAmount:
		return "rfm_frequency = -1, rfm_monetary = -1", nil
	case types.RFMFieldGroupScorePercentile:
		return "rfm_total_score = -1, rfm_percentile = -1", nil
	case types.RFMFieldGroupSegment:
		return "rfm_segment = NULL", nil
	default:
		return "", ierr.NewErrorf("unknown rfm field group: %s", group).
			Mark(ierr.ErrValidation)
	}
}

func updateQuery(group types.RFMFieldGroup) (string, error) {
	switch group {
	case types.RFMFieldGroupRecency:
		return `UPDATE clients SET avg_repurchase_days = $3, rfm_recency = $4, updated_at = now()
			WHERE team_id = $1 AND id = $2`, nil
	case types.RFMFieldGroupFrequencyAmount:
		return `UPDATE clients SET rfm_frequency = $3, rfm_monetary = $4, updated_at = now()
			WHERE team_id = $1 AND id = $2`, nil
	case types.RFMFieldGroupScorePercentile:
		return `UPDATE clients SET rfm_total_score = $3, rfm_percentile = $4, updated_at = now()
			WHERE team_id = $1 AND id = $2`, nil
	case types.RFMFieldGroupSegment:
		return `UPDATE clients SET rfm_segment = $3, updated_at = now()
			WHERE team_id = $1 AND id = $2`, nil
	default:
		return "", ierr.NewErrorf("unknown rfm field group: %s", group).
			Mark(ierr.ErrValidation)
	}
}

func updateArgs(teamID string, u *client.RFMUpdate, group types.RFMFieldGroup) []interface{} {
	switch group {
	case types.RFMFieldGroupRecency:
		return []interface{}{teamID, u.ClientID, u.AvgRepurchaseDays, u.Recency}
	case types.RFMFieldGroupFrequencyAmount:
		return []interface{}{teamID, u.ClientID, u.Frequency, u.Monetary}
	case types.RFMFieldGroupScorePercentile:
		return []interface{}{teamID, u.ClientID, u.TotalScore, u.Percentile}
	default:
		return []interface{}{teamID, u.ClientID, u.Segment}
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanClient(row rowScanner) (*client.Client, error) {
	var (
		c       client.Client
		segment sql.NullString
	)
	err := row.Scan(
		&c.ID, &c.TeamID, &c.ExternalID, &c.InternalMember, &c.Removed,
		&c.AvgRepurchaseDays, &c.RFMRecency, &c.RFMFrequency, &c.RFMMonetary,
		&c.RFMTotalScore, &c.RFMPercentile, &segment,
		&c.TenantID, &c.Status, &c.CreatedAt, &c.UpdatedAt, &c.CreatedBy, &c.UpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	if segment.Valid {
		c.RFMSegment = &segment.String
	}
	return &c, nil
}
