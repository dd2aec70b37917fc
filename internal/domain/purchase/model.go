package purchase

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/orderly-com/wish-insights/internal/types"
)

// Purchase is the domain model for a purchase record as produced by the
// import pipeline. Client flags are denormalized onto the row so that
// eligibility filtering stays a single scan.
type Purchase struct {
	ID       string               `json:"id"`
	TeamID   string               `json:"team_id"`
	ClientID string               `json:"client_id"`
	BrandID  string               `json:"brand_id,omitempty"`
	Datetime time.Time            `json:"datetime"`
	Total    decimal.Decimal      `json:"total_price"`
	PStatus  types.PurchaseStatus `json:"purchase_status"`
	Removed  bool                 `json:"removed"`

	// client flags denormalized from the client store at import time
	ClientInternalMember bool `json:"client_internal_member"`
	ClientRemoved        bool `json:"client_removed"`

	types.BaseModel
}
