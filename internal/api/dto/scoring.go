package dto

import (
	"time"

	ierr "github.com/orderly-com/wish-insights/internal/errors"
)

// RunCycleStatsRequest parameterizes a repurchase cycle run triggered by the
// scheduler
type RunCycleStatsRequest struct {
	// AppendDays overrides the configured grace period; 0 keeps the default
	AppendDays int `json:"append_days" validate:"min=0,max=365"`

	// DateEnd bounds the purchase window from above, formatted 2006-01-02
	DateEnd string `json:"date_end,omitempty"`
}

// Validate validates the request and parses DateEnd
func (r *RunCycleStatsRequest) Validate() (*time.Time, error) {
	if r.AppendDays < 0 || r.AppendDays > 365 {
		return nil, ierr.NewError("append_days out of range").
			WithHint("append_days must be between 0 and 365").
			Mark(ierr.ErrValidation)
	}
	if r.DateEnd == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", r.DateEnd)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("date_end must be formatted as YYYY-MM-DD").
			Mark(ierr.ErrValidation)
	}
	return &t, nil
}

// RunResponse reports whether a scoring run mutated anything
type RunResponse struct {
	TeamID  string `json:"team_id"`
	Updated bool   `json:"updated"`
}
