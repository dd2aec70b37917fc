package postgres

import (
	"context"
	"database/sql"

	"github.com/orderly-com/wish-insights/internal/domain/team"
	ierr "github.com/orderly-com/wish-insights/internal/errors"
	"github.com/orderly-com/wish-insights/internal/logger"
	"github.com/orderly-com/wish-insights/internal/postgres"
)

const teamColumns = `
	id, name, removed, return_day,
	tenant_id, status, created_at, updated_at, created_by, updated_by
`

type TeamRepository struct {
	db     *postgres.Client
	logger *logger.Logger
}

func NewTeamRepository(db *postgres.Client, logger *logger.Logger) team.Repository {
	return &TeamRepository{db: db, logger: logger}
}

func (r *TeamRepository) Get(ctx context.Context, id string) (*team.Team, error) {
	var t team.Team
	err := r.db.DB.QueryRowContext(ctx, `
		SELECT `+teamColumns+`
		FROM teams
		WHERE id = $1
	`, id).Scan(
		&t.ID, &t.Name, &t.Removed, &t.ReturnDay,
		&t.TenantID, &t.Status, &t.CreatedAt, &t.UpdatedAt, &t.CreatedBy, &t.UpdatedBy,
	)
	if err == sql.ErrNoRows {
		return nil, ierr.NewError("team not found").
			WithReportableDetails(map[string]interface{}{"id": id}).
			Mark(ierr.ErrNotFound)
	}
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to get team").
			Mark(ierr.ErrDatabase)
	}
	return &t, nil
}

func (r *TeamRepository) ListActive(ctx context.Context) ([]*team.Team, error) {
	rows, err := r.db.DB.QueryContext(ctx, `
		SELECT `+teamColumns+`
		FROM teams
		WHERE removed = false
		ORDER BY id
	`)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list teams").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var teams []*team.Team
	for rows.Next() {
		var t team.Team
		err := rows.Scan(
			&t.ID, &t.Name, &t.Removed, &t.ReturnDay,
			&t.TenantID, &t.Status, &t.CreatedAt, &t.UpdatedAt, &t.CreatedBy, &t.UpdatedBy,
		)
		if err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to scan team row").
				Mark(ierr.ErrDatabase)
		}
		teams = append(teams, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Error occurred during row iteration").
			Mark(ierr.ErrDatabase)
	}
	return teams, nil
}
