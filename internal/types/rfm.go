package types

// Sentinel values for scoring output fields. A client that falls outside the
// eligible purchase window keeps these after a full recompute, never zero.
const (
	RFMScoreUnset      = -1
	RFMPercentileUnset = -1
	AvgRepurchaseUnset = -1.0
	StatUnset          = -1.0
)

// RFMFieldGroup identifies one of the staged reset-then-write field groups
// the scorer persists. Each group is reset to sentinels for the whole team,
// then bulk-written for scored clients, before the next group is touched.
type RFMFieldGroup string

const (
	RFMFieldGroupRecency         RFMFieldGroup = "avg_repurchase_days,rfm_recency"
	RFMFieldGroupFrequencyAmount RFMFieldGroup = "rfm_frequency,rfm_monetary"
	RFMFieldGroupScorePercentile RFMFieldGroup = "rfm_total_score,rfm_percentile"
	RFMFieldGroupSegment         RFMFieldGroup = "rfm_segment"
)

// RFMFieldGroups is the persistence order of the staged passes
var RFMFieldGroups = []RFMFieldGroup{
	RFMFieldGroupRecency,
	RFMFieldGroupFrequencyAmount,
	RFMFieldGroupScorePercentile,
	RFMFieldGroupSegment,
}
