package team

import "github.com/orderly-com/wish-insights/internal/types"

// Team is the tenant unit: every scoring run operates on exactly one team.
type Team struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Removed bool   `json:"removed"`

	// ReturnDay is the expected number of days between purchases for the
	// team's vertical; 0 means not configured and recency binning falls back
	// to the observed gap range
	ReturnDay int `json:"return_day"`

	types.BaseModel
}

// GetReturnDay returns the configured repurchase cadence in days
func (t *Team) GetReturnDay() int {
	if t == nil {
		return 0
	}
	return t.ReturnDay
}
