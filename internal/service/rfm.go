package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/orderly-com/wish-insights/internal/domain/client"
	"github.com/orderly-com/wish-insights/internal/domain/purchase"
	ierr "github.com/orderly-com/wish-insights/internal/errors"
	"github.com/orderly-com/wish-insights/internal/types"
)

// RFMService computes recency/frequency/monetary scores for a team's clients
type RFMService interface {
	// ScoreTeam recomputes every RFM field for the team from its eligible
	// purchase history and persists the result. Returns false when the team
	// has no eligible purchases, in which case nothing is mutated.
	ScoreTeam(ctx context.Context, teamID string) (bool, error)
}

type rfmService struct {
	ServiceParams
}

// NewRFMService creates a new RFM scoring service
func NewRFMService(params ServiceParams) RFMService {
	return &rfmService{ServiceParams: params}
}

// clientAggregate accumulates one client's purchase history in row order
type clientAggregate struct {
	clientID string
	first    time.Time
	last     time.Time
	count    int
	total    float64

	frequency  int
	monetary   int
	recency    int
	totalScore int
	percentile int
	avgDays    float64
}

func (s *rfmService) ScoreTeam(ctx context.Context, teamID string) (bool, error) {
	if teamID == "" {
		return false, ierr.NewError("team_id is required").
			WithHint("Team ID cannot be empty").
			Mark(ierr.ErrValidation)
	}

	t, err := s.TeamRepo.Get(ctx, teamID)
	if err != nil {
		return false, err
	}

	firstDate, err := s.Config.Scoring.GetFirstDate()
	if err != nil {
		return false, ierr.WithError(err).
			WithHint("Invalid scoring.first_date configuration").
			Mark(ierr.ErrInternal)
	}

	rows, err := s.PurchaseRepo.ListConfirmed(ctx, &purchase.EligibleFilter{
		TeamID:                 teamID,
		Since:                  &firstDate,
		ExcludeInternalMembers: true,
	})
	if err != nil {
		return false, err
	}

	if len(rows) == 0 {
		s.Logger.Infow("no eligible purchases for rfm scoring", "team_id", teamID)
		return false, nil
	}

	aggs := s.aggregateByClient(rows)

	s.scoreFrequency(aggs)
	s.scoreMonetary(aggs)
	s.scoreRecency(aggs, t.GetReturnDay(), time.Now().UTC())
	s.computeAvgRepurchaseDays(aggs)

	for _, a := range aggs {
		a.totalScore = a.recency + a.frequency + a.monetary
	}

	s.assignPercentiles(aggs)

	updates := make([]*client.RFMUpdate, 0, len(aggs))
	for _, a := range aggs {
		segment := fmt.Sprintf("%d%d%d", a.recency, a.frequency, a.monetary)
		updates = append(updates, &client.RFMUpdate{
			ClientID:          a.clientID,
			AvgRepurchaseDays: a.avgDays,
			Recency:           a.recency,
			Frequency:         a.frequency,
			Monetary:          a.monetary,
			TotalScore:        a.totalScore,
			Percentile:        a.percentile,
			Segment:           &segment,
		})
	}

	// Staged replacement: each field group is reset to sentinels for the
	// whole team, then bulk-written for scored clients, so clients that fell
	// out of the window never keep a stale score from a previous run.
	batchSize := s.Config.Batch.Size
	for _, group := range types.RFMFieldGroups {
		if err := s.ClientRepo.ResetRFMFields(ctx, teamID, group); err != nil {
			return false, err
		}
		if err := s.ClientRepo.BulkUpdateRFMFields(ctx, teamID, updates, group, batchSize); err != nil {
			return false, err
		}
	}

	s.Logger.Infow("rfm scoring completed",
		"team_id", teamID,
		"scored_clients", len(updates),
		"purchase_rows", len(rows),
	)
	return true, nil
}

// aggregateByClient folds the time-ordered purchase rows into one aggregate
// per client, preserving first-seen order for stable downstream sorting
func (s *rfmService) aggregateByClient(rows []*purchase.Purchase) []*clientAggregate {
	byID := make(map[string]*clientAggregate, len(rows))
	aggs := make([]*clientAggregate, 0, len(rows))

	for _, row := range rows {
		a, ok := byID[row.ClientID]
		if !ok {
			a = &clientAggregate{
				clientID: row.ClientID,
				first:    row.Datetime,
			}
			byID[row.ClientID] = a
			aggs = append(aggs, a)
		}
		a.last = row.Datetime
		a.count++
		a.total += row.Total.InexactFloat64()
	}
	return aggs
}

// scoreFrequency bins purchase counts over the fixed edges 2, 4, 6, 8.
// A zero count range means no signal: everyone scores 1.
func (s *rfmService) scoreFrequency(aggs []*clientAggregate) {
	countMin, countMax := aggs[0].count, aggs[0].count
	for _, a := range aggs {
		if a.count < countMin {
			countMin = a.count
		}
		if a.count > countMax {
			countMax = a.count
		}
	}

	if countMax == countMin {
		for _, a := range aggs {
			a.frequency = 1
		}
		return
	}

	edges := []float64{2, 4, 6, 8}
	for _, a := range aggs {
		a.frequency = binRightClosed(float64(a.count), edges)
	}
}

// scoreMonetary bins summed purchase totals into quintiles after trimming the
// top of the distribution and shrinking the edge range by one bin width on
// each side
func (s *rfmService) scoreMonetary(aggs []*clientAggregate) {
	totals := make([]float64, 0, len(aggs))
	for _, a := range aggs {
		totals = append(totals, a.total)
	}
	sort.Float64s(totals)

	trimmed := totals[:int(math.Ceil(float64(len(totals))*0.95))]
	amountMin, amountMax := trimmed[0], trimmed[len(trimmed)-1]
	gap := math.Ceil((amountMax - amountMin) / 6)

	if gap == 0 {
		for _, a := range aggs {
			a.monetary = 1
		}
		return
	}

	minEdge := math.Ceil(amountMin + gap)
	maxEdge := math.Ceil(amountMax - gap)

	edges := arange(minEdge, maxEdge, gap)
	if len(edges) > 4 {
		edges = edges[:4]
	}

	for _, a := range aggs {
		a.monetary = binRightClosed(a.total, edges)
	}
}

// scoreRecency bins days-since-last-purchase and then inverts the direction
// so that the most recent buyers score highest. When the gap range is zero,
// everyone scores 1; the inversion never runs for that case.
func (s *rfmService) scoreRecency(aggs []*clientAggregate, returnDay int, now time.Time) {
	days := make([]float64, len(aggs))
	for i, a := range aggs {
		days[i] = float64(int(now.Sub(a.last) / (24 * time.Hour)))
	}

	recMin, recMax := days[0], days[0]
	for _, d := range days {
		if d < recMin {
			recMin = d
		}
		if d > recMax {
			recMax = d
		}
	}

	if recMax == recMin {
		for _, a := range aggs {
			a.recency = 1
		}
		return
	}

	var edges []float64
	if returnDay == 0 {
		edges = arange(recMin, recMax, (recMax-recMin)/4)
		if len(edges) > 4 {
			edges = edges[:4]
		}
	} else {
		rd := float64(returnDay)
		edges = []float64{rd, rd * 1.5, rd * 2.5, rd * 3}
	}

	for i, a := range aggs {
		a.recency = invertScore(binRightClosed(days[i], edges))
	}
}

// computeAvgRepurchaseDays derives the mean gap between a client's first and
// last purchase. A single purchase yields 0, as does any non-finite result.
func (s *rfmService) computeAvgRepurchaseDays(aggs []*clientAggregate) {
	for _, a := range aggs {
		if a.count <= 1 {
			a.avgDays = 0
			continue
		}
		timeGap := float64(int(a.last.Sub(a.first) / (24 * time.Hour)))
		avg := timeGap / float64(a.count-1)
		if math.IsInf(avg, 0) || math.IsNaN(avg) {
			avg = 0
		}
		a.avgDays = avg
	}
}

// assignPercentiles splits the clients, ordered by total score descending,
// into ten positional bands. Band boundaries are inclusive on both sides and
// the later band wins the shared row, so ties straddling a boundary land in
// the lower band.
func (s *rfmService) assignPercentiles(aggs []*clientAggregate) {
	order := make([]*clientAggregate, len(aggs))
	copy(order, aggs)
	sort.SliceStable(order, func(i, j int) bool {
		return order[i].totalScore > order[j].totalScore
	})

	n := len(order)
	step := float64(n) / 10
	if step == 0 {
		return
	}

	start := 0
	for i := 1; i <= 10; i++ {
		stop := int(step * float64(i))
		for r := start; r <= stop && r < n; r++ {
			order[r].percentile = i
		}
		start = stop
	}
}

// binRightClosed returns the 1-based bin for value over right-closed
// intervals (-inf, e1], (e1, e2], ..., (eN, +inf)
func binRightClosed(value float64, edges []float64) int {
	for i, e := range edges {
		if value <= e {
			return i + 1
		}
	}
	return len(edges) + 1
}

// invertScore swaps quintile direction: 1<->5, 2<->4, 3 stays
func invertScore(score int) int {
	return 6 - score
}

// arange mirrors numpy.arange over [start, stop) with the given step
func arange(start, stop, step float64) []float64 {
	if step <= 0 {
		return nil
	}
	out := make([]float64, 0, 4)
	for v := start; v < stop; v += step {
		out = append(out, v)
	}
	return out
}
