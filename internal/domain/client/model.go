package client

import (
	"time"

	"github.com/orderly-com/wish-insights/internal/types"
)

// Client is the domain model for a customer row within a team. The RFM
// fields are owned by the scorer; everything else arrives through the import
// pipeline.
type Client struct {
	ID             string `json:"id"`
	TeamID         string `json:"team_id"`
	ExternalID     string `json:"external_id,omitempty"`
	InternalMember bool   `json:"internal_member"`
	Removed        bool   `json:"removed"`

	AvgRepurchaseDays float64 `json:"avg_repurchase_days"`
	RFMRecency        int     `json:"rfm_recency"`
	RFMFrequency      int     `json:"rfm_frequency"`
	RFMMonetary       int     `json:"rfm_monetary"`
	RFMTotalScore     int     `json:"rfm_total_score"`
	RFMPercentile     int     `json:"rfm_percentile"`
	RFMSegment        *string `json:"rfm_segment,omitempty"`

	types.BaseModel
}

// New returns a client with every scoring field at its sentinel
func New(id, teamID string) *Client {
	return &Client{
		ID:                id,
		TeamID:            teamID,
		AvgRepurchaseDays: types.AvgRepurchaseUnset,
		RFMRecency:        types.RFMScoreUnset,
		RFMFrequency:      types.RFMScoreUnset,
		RFMMonetary:       types.RFMScoreUnset,
		RFMTotalScore:     types.RFMScoreUnset,
		RFMPercentile:     types.RFMPercentileUnset,
		BaseModel: types.BaseModel{
			TenantID:  teamID,
			Status:    types.StatusPublished,
			CreatedAt: time.Now().UTC(),
			UpdatedAt: time.Now().UTC(),
		},
	}
}

// RFMUpdate carries one client's computed scores into a bulk write
type RFMUpdate struct {
	ClientID          string
	AvgRepurchaseDays float64
	Recency           int
	Frequency         int
	Monetary          int
	TotalScore        int
	Percentile        int
	Segment           *string
}
