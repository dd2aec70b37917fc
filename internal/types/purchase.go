package types

// PurchaseStatus is the lifecycle status of a purchase record as delivered by
// the import pipeline
type PurchaseStatus string

const (
	PurchaseStatusConfirmed PurchaseStatus = "CONFIRMED"
	PurchaseStatusAbandoned PurchaseStatus = "ABANDONED"
	PurchaseStatusKeep      PurchaseStatus = "KEEP"
)

func (s PurchaseStatus) Validate() bool {
	switch s {
	case PurchaseStatusConfirmed, PurchaseStatusAbandoned, PurchaseStatusKeep:
		return true
	}
	return false
}
