package postgres

import (
	"context"
	"database/sql"

	jsoniter "github.com/json-iterator/go"

	"github.com/orderly-com/wish-insights/internal/domain/cycle"
	ierr "github.com/orderly-com/wish-insights/internal/errors"
	"github.com/orderly-com/wish-insights/internal/logger"
	"github.com/orderly-com/wish-insights/internal/postgres"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// summaryRecord is the flattened row shape: the gap distributions and stats
// batteries are stored as jsonb columns
type summaryRecord struct {
	daybase            []byte
	weekbase           []byte
	daybaseByCycle     []byte
	weekbaseByCycle    []byte
	cycleDepthDaybase  []byte
	cycleDepthWeekbase []byte
	clientbases        []byte
	dayStats           []byte
	weekStats          []byte
	dayStatsByCycle    []byte
	weekStatsByCycle   []byte
}

type CycleRepository struct {
	db     *postgres.Client
	logger *logger.Logger
}

func NewCycleRepository(db *postgres.Client, logger *logger.Logger) cycle.Repository {
	return &CycleRepository{db: db, logger: logger}
}

func (r *CycleRepository) GetByTeam(ctx context.Context, teamID string) (*cycle.Summary, error) {
	var (
		sm      cycle.Summary
		rec     summaryRecord
		dateEnd sql.NullTime
	)
	err := r.db.DB.QueryRowContext(ctx, `
		SELECT
			id, team_id, date_end,
			daybase, weekbase, daybase_by_cycle, weekbase_by_cycle,
			cycle_depth_daybase, cycle_depth_weekbase,
			count_of_clientbase, clientbases,
			day_stats, week_stats, day_stats_by_cycle, week_stats_by_cycle,
			tenant_id, status, created_at, updated_at, created_by, updated_by
		FROM cycle_summaries
		WHERE team_id = $1
	`, teamID).Scan(
		&sm.ID, &sm.TeamID, &dateEnd,
		&rec.daybase, &rec.weekbase, &rec.daybaseByCycle, &rec.weekbaseByCycle,
		&rec.cycleDepthDaybase, &rec.cycleDepthWeekbase,
		&sm.RepurchasedClientCount, &rec.clientbases,
		&rec.dayStats, &rec.weekStats, &rec.dayStatsByCycle, &rec.weekStatsByCycle,
		&sm.TenantID, &sm.Status, &sm.CreatedAt, &sm.UpdatedAt, &sm.CreatedBy, &sm.UpdatedBy,
	)
	if err == sql.ErrNoRows {
		return nil, ierr.NewError("cycle summary not found").
			WithReportableDetails(map[string]interface{}{"team_id": teamID}).
			Mark(ierr.ErrNotFound)
	}
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to get cycle summary").
			Mark(ierr.ErrDatabase)
	}

	if dateEnd.Valid {
		t := dateEnd.Time
		sm.DateEnd = &t
	}
	if err := unmarshalSummary(&sm, &rec); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to decode cycle summary columns").
			Mark(ierr.ErrDatabase)
	}
	return &sm, nil
}

func (r *CycleRepository) Upsert(ctx context.Context, summary *cycle.Summary) error {
	if summary == nil || summary.TeamID == "" {
		return ierr.NewError("summary needs a team ID").
			WithHint("Cycle summary cannot be nil and needs a team ID").
			Mark(ierr.ErrValidation)
	}

	rec, err := marshalSummary(summary)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to encode cycle summary columns").
			Mark(ierr.ErrInternal)
	}

	id := summary.ID
	if id == "" {
		id = summary.TeamID
	}

	var dateEnd interface{}
	if summary.DateEnd != nil {
		dateEnd = *summary.DateEnd
	}

	_, err = r.db.DB.ExecContext(ctx, `
		INSERT INTO cycle_summaries (
			id, team_id, date_end,
			daybase, weekbase, daybase_by_cycle, weekbase_by_cycle,
			cycle_depth_daybase, cycle_depth_weekbase,
			count_of_clientbase, clientbases,
			day_stats, week_stats, day_stats_by_cycle, week_stats_by_cycle,
			tenant_id, status, created_at, updated_at, created_by, updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		ON CONFLICT (team_id) DO UPDATE SET
			date_end = EXCLUDED.date_end,
			daybase = EXCLUDED.daybase,
			weekbase = EXCLUDED.weekbase,
			daybase_by_cycle = EXCLUDED.daybase_by_cycle,
			weekbase_by_cycle = EXCLUDED.weekbase_by_cycle,
			cycle_depth_daybase = EXCLUDED.cycle_depth_daybase,
			cycle_depth_weekbase = EXCLUDED.cycle_depth_weekbase,
			count_of_clientbase = EXCLUDED.count_of_clientbase,
			clientbases = EXCLUDED.clientbases,
			day_stats = EXCLUDED.day_stats,
			week_stats = EXCLUDED.week_stats,
			day_stats_by_cycle = EXCLUDED.day_stats_by_cycle,
			week_stats_by_cycle = EXCLUDED.week_stats_by_cycle,
			updated_at = EXCLUDED.updated_at,
			updated_by = EXCLUDED.updated_by
	`,
		id, summary.TeamID, dateEnd,
		rec.daybase, rec.weekbase, rec.daybaseByCycle, rec.weekbaseByCycle,
		rec.cycleDepthDaybase, rec.cycleDepthWeekbase,
		summary.RepurchasedClientCount, rec.clientbases,
		rec.dayStats, rec.weekStats, rec.dayStatsByCycle, rec.weekStatsByCycle,
		summary.TenantID, summary.Status, summary.CreatedAt, summary.UpdatedAt,
		summary.CreatedBy, summary.UpdatedBy,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to upsert cycle summary").
			WithReportableDetails(map[string]interface{}{"team_id": summary.TeamID}).
			Mark(ierr.ErrDatabase)
	}

	r.logger.Debugw("upserted cycle summary", "team_id", summary.TeamID)
	return nil
}

func marshalSummary(sm *cycle.Summary) (*summaryRecord, error) {
	rec := &summaryRecord{}
	for _, enc := range []struct {
		dst *[]byte
		src interface{}
	}{
		{&rec.daybase, sm.Daybase},
		{&rec.weekbase, sm.Weekbase},
		{&rec.daybaseByCycle, sm.DaybaseByCycle},
		{&rec.weekbaseByCycle, sm.WeekbaseByCycle},
		{&rec.cycleDepthDaybase, sm.CycleDepthDaybase},
		{&rec.cycleDepthWeekbase, sm.CycleDepthWeekbase},
		{&rec.clientbases, sm.Clientbases},
		{&rec.dayStats, sm.DayStats},
		{&rec.weekStats, sm.WeekStats},
		{&rec.dayStatsByCycle, sm.DayStatsByCycle},
		{&rec.weekStatsByCycle, sm.WeekStatsByCycle},
	} {
		b, err := json.Marshal(enc.src)
		if err != nil {
			return nil, err
		}
		*enc.dst = b
	}
	return rec, nil
}

func unmarshalSummary(sm *cycle.Summary, rec *summaryRecord) error {
	for _, dec := range []struct {
		src []byte
		dst interface{}
	}{
		{rec.daybase, &sm.Daybase},
		{rec.weekbase, &sm.Weekbase},
		{rec.daybaseByCycle, &sm.DaybaseByCycle},
		{rec.weekbaseByCycle, &sm.WeekbaseByCycle},
		{rec.cycleDepthDaybase, &sm.CycleDepthDaybase},
		{rec.cycleDepthWeekbase, &sm.CycleDepthWeekbase},
		{rec.clientbases, &sm.Clientbases},
		{rec.dayStats, &sm.DayStats},
		{rec.weekStats, &sm.WeekStats},
		{rec.dayStatsByCycle, &sm.DayStatsByCycle},
		{rec.weekStatsByCycle, &sm.WeekStatsByCycle},
	} {
		if len(dec.src) == 0 {
			continue
		}
		if err := json.Unmarshal(dec.src, dec.dst); err != nil {
			return err
		}
	}
	return nil
}
