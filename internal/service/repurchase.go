package service

import (
	"context"
	"sort"
	"time"

	"github.com/orderly-com/wish-insights/internal/domain/cycle"
	"github.com/orderly-com/wish-insights/internal/domain/purchase"
	ierr "github.com/orderly-com/wish-insights/internal/errors"
	"github.com/orderly-com/wish-insights/internal/stats"
	"github.com/orderly-com/wish-insights/internal/types"
)

// dayOutlierCutoff excludes gaps of a year or more from the day-base
// statistics list. The week track intentionally has no equivalent cutoff.
const dayOutlierCutoff = 365

// CycleOptions parameterizes a repurchase cycle run
type CycleOptions struct {
	// AppendDays is the grace period: a gap of at most this many days counts
	// as an appended order, not a repurchase. Non-positive values take the
	// configured default.
	AppendDays int

	// DateEnd optionally bounds the purchase window from above (inclusive)
	DateEnd *time.Time
}

// RepurchaseCycleService derives inter-purchase interval statistics per team
type RepurchaseCycleService interface {
	// CalculateTeam recomputes the team's repurchase cycle summary from its
	// confirmed purchase history and upserts the single summary row. Returns
	// false when no eligible purchases exist, in which case any previous
	// summary is left untouched.
	CalculateTeam(ctx context.Context, teamID string, opts CycleOptions) (bool, error)
}

type repurchaseCycleService struct {
	ServiceParams
}

// NewRepurchaseCycleService creates a new repurchase cycle service
func NewRepurchaseCycleService(params ServiceParams) RepurchaseCycleService {
	return &repurchaseCycleService{ServiceParams: params}
}

// clientCycleState tracks one client through the forward pass
type clientCycleState struct {
	lastDate time.Time
	cycles   int
	orders   int
}

func (s *repurchaseCycleService) CalculateTeam(ctx context.Context, teamID string, opts CycleOptions) (bool, error) {
	if teamID == "" {
		return false, ierr.NewError("team_id is required").
			WithHint("Team ID cannot be empty").
			Mark(ierr.ErrValidation)
	}

	appendDays := opts.AppendDays
	if appendDays <= 0 {
		appendDays = s.Config.Scoring.PurchaseAppendDays
	}

	rows, err := s.PurchaseRepo.ListConfirmed(ctx, &purchase.EligibleFilter{
		TeamID: teamID,
		Until:  opts.DateEnd,
	})
	if err != nil {
		return false, err
	}

	if len(rows) == 0 {
		s.Logger.Infow("no eligible purchases for cycle statistics", "team_id", teamID)
		return false, nil
	}

	state := make(map[string]*clientCycleState, len(rows))
	clientOrder := make([]string, 0, len(rows))

	var daybase, weekbase []int
	dayByCycle := make(map[int][]int)
	weekByCycle := make(map[int][]int)
	repurchasedClients := 0

	for _, row := range rows {
		st, ok := state[row.ClientID]
		if !ok {
			state[row.ClientID] = &clientCycleState{
				lastDate: row.Datetime,
				orders:   1,
			}
			clientOrder = append(clientOrder, row.ClientID)
			continue
		}

		days := int(row.Datetime.Sub(st.lastDate) / (24 * time.Hour))
		if days > appendDays {
			st.cycles++
			weeks := days / 7

			daybase = append(daybase, days)
			weekbase = append(weekbase, weeks)
			dayByCycle[st.cycles] = append(dayByCycle[st.cycles], days)
			weekByCycle[st.cycles] = append(weekByCycle[st.cycles], weeks)

			if st.cycles == 1 {
				repurchasedClients++
			}
		}

		// every order advances the reference point, appended or not
		st.lastDate = row.Datetime
		st.orders++
	}

	sort.Ints(daybase)
	daybase = dropDayOutliers(daybase)
	sort.Ints(weekbase)

	maxDepth := 0
	for _, st := range state {
		if st.cycles > maxDepth {
			maxDepth = st.cycles
		}
	}
	depthCounts := make([]int, maxDepth+1)
	for _, st := range state {
		depthCounts[st.cycles]++
	}

	summary := &cycle.Summary{
		TeamID:                 teamID,
		DateEnd:                opts.DateEnd,
		Daybase:                daybase,
		Weekbase:               weekbase,
		DaybaseByCycle:         dayByCycle,
		WeekbaseByCycle:        weekByCycle,
		CycleDepthDaybase:      depthCounts,
		CycleDepthWeekbase:     append([]int(nil), depthCounts...),
		RepurchasedClientCount: repurchasedClients,
		Clientbases:            clientOrder,
		DayStats:               cycle.NewTrackStats(),
		WeekStats:              cycle.NewTrackStats(),
		DayStatsByCycle:        make(map[int]cycle.TrackStats, len(dayByCycle)),
		WeekStatsByCycle:       make(map[int]cycle.TrackStats, len(weekByCycle)),
		BaseModel:              types.GetDefaultBaseModel(ctx),
	}
	summary.TenantID = teamID

	applyTrackStats(&summary.DayStats, daybase, false)
	applyTrackStats(&summary.WeekStats, weekbase, false)

	for idx, bucket := range dayByCycle {
		sorted := append([]int(nil), bucket...)
		sort.Ints(sorted)
		ts := cycle.NewTrackStats()
		applyTrackStats(&ts, sorted, true)
		summary.DayStatsByCycle[idx] = ts
	}
	for idx, bucket := range weekByCycle {
		sorted := append([]int(nil), bucket...)
		sort.Ints(sorted)
		ts := cycle.NewTrackStats()
		applyTrackStats(&ts, sorted, true)
		summary.WeekStatsByCycle[idx] = ts
	}

	if err := s.CycleRepo.Upsert(ctx, summary); err != nil {
		return false, err
	}

	s.Logger.Infow("repurchase cycle statistics completed",
		"team_id", teamID,
		"purchase_rows", len(rows),
		"clients", len(clientOrder),
		"repurchased_clients", repurchasedClients,
		"day_gaps", len(daybase),
	)
	return true, nil
}

// dropDayOutliers removes gaps at or above the yearly cutoff from a sorted
// day-gap list
func dropDayOutliers(sortedDays []int) []int {
	cut := sort.SearchInts(sortedDays, dayOutlierCutoff)
	return sortedDays[:cut]
}

// applyTrackStats fills ts from a sorted gap list. Statistics needing two or
// three points stay at the sentinel below those thresholds. A mode with no
// unique value is written as the sentinel when modeSentinelOnFailure is set
// and left untouched otherwise.
func applyTrackStats(ts *cycle.TrackStats, sortedData []int, modeSentinelOnFailure bool) {
	data := make([]float64, len(sortedData))
	for i, v := range sortedData {
		data[i] = float64(v)
	}

	if len(data) < 2 {
		return
	}

	if v, err := stats.Mean(data); err == nil {
		ts.Mean = v
	}
	if v, err := stats.Median(data); err == nil {
		ts.Median = v
	}
	if v, err := stats.MedianLow(data); err == nil {
		ts.MedianLow = v
	}
	if v, err := stats.MedianHigh(data); err == nil {
		ts.MedianHigh = v
	}

	if len(data) < 3 {
		return
	}

	if v, err := stats.Mode(data); err == nil {
		ts.Mode = v
	} else if modeSentinelOnFailure {
		ts.Mode = types.StatUnset
	}

	if v, err := stats.PopulationStdDev(data); err == nil {
		ts.PopulationStdDev = v
	}
	if v, err := stats.PopulationVariance(data); err == nil {
		ts.PopulationVariance = v
	}
	if v, err := stats.SampleStdDev(data); err == nil {
		ts.SampleStdDev = v
	}
	if v, err := stats.SampleVariance(data); err == nil {
		ts.SampleVariance = v
	}

	essentialized := essentializedSlice(data)
	if len(essentialized) > 0 {
		ts.EssentializedLow = essentialized[0]
		ts.EssentializedHigh = essentialized[len(essentialized)-1]
	}
	if v, err := stats.SampleStdDev(essentialized); err == nil {
		ts.EssentializedStdDev = v
	}
}

// essentializedSlice keeps the middle band of a sorted list by trimming 45%
// of the points from each end
func essentializedSlice(sortedData []float64) []float64 {
	n := len(sortedData)
	cut := int(float64(n) * 0.45)
	return sortedData[cut : n-cut]
}
