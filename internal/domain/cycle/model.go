package cycle

import (
	"time"

	"github.com/orderly-com/wish-insights/internal/types"
)

// TrackStats is the battery of statistics computed over one gap distribution.
// Fields needing at least two data points (mean through median-high) or three
// (the rest) stay at the -1 sentinel when the sample is too small.
type TrackStats struct {
	Mean       float64 `json:"mean"`
	Median     float64 `json:"median"`
	MedianLow  float64 `json:"median_low"`
	MedianHigh float64 `json:"median_high"`
	Mode       float64 `json:"mode"`

	PopulationStdDev   float64 `json:"pstdev"`
	PopulationVariance float64 `json:"pvariance"`
	SampleStdDev       float64 `json:"stdev"`
	SampleVariance     float64 `json:"variance"`

	EssentializedLow    float64 `json:"low_of_essentialized"`
	EssentializedHigh   float64 `json:"high_of_essentialized"`
	EssentializedStdDev float64 `json:"stdev_of_essentialized"`
}

// NewTrackStats returns a TrackStats with every field at the sentinel
func NewTrackStats() TrackStats {
	return TrackStats{
		Mean:                types.StatUnset,
		Median:              types.StatUnset,
		MedianLow:           types.StatUnset,
		MedianHigh:          types.StatUnset,
		Mode:                types.StatUnset,
		PopulationStdDev:    types.StatUnset,
		PopulationVariance:  types.StatUnset,
		SampleStdDev:        types.StatUnset,
		SampleVariance:      types.StatUnset,
		EssentializedLow:    types.StatUnset,
		EssentializedHigh:   types.StatUnset,
		EssentializedStdDev: types.StatUnset,
	}
}

// Summary is the single per-team repurchase cycle record, fully recomputed
// and overwritten on every run.
type Summary struct {
	ID      string     `json:"id"`
	TeamID  string     `json:"team_id"`
	DateEnd *time.Time `json:"date_end,omitempty"`

	// flat gap distributions, sorted ascending; the day track excludes gaps
	// of 365 days or more, the week track keeps everything
	Daybase  []int `json:"daybase"`
	Weekbase []int `json:"weekbase"`

	// gap distributions keyed by repurchase order (1 = first repurchase)
	DaybaseByCycle  map[int][]int `json:"daybase_by_cycle"`
	WeekbaseByCycle map[int][]int `json:"weekbase_by_cycle"`

	// clients bucketed by the final cycle depth they reached; index 0 counts
	// clients who never repurchased
	CycleDepthDaybase  []int `json:"count_of_cycle_daybase"`
	CycleDepthWeekbase []int `json:"count_of_cycle_weekbase"`

	// RepurchasedClientCount counts clients who repurchased at least once
	RepurchasedClientCount int `json:"count_of_clientbase"`

	// Clientbases is the de-duplicated set of client IDs seen in the window
	Clientbases []string `json:"clientbases"`

	DayStats  TrackStats `json:"day_stats"`
	WeekStats TrackStats `json:"week_stats"`

	DayStatsByCycle  map[int]TrackStats `json:"day_stats_by_cycle"`
	WeekStatsByCycle map[int]TrackStats `json:"week_stats_by_cycle"`

	types.BaseModel
}
