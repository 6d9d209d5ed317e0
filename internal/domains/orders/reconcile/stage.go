package reconcile

import "github.com/Apurer/fulfillment-api/internal/domains/orders/domain"

// Stage is one of the four progress buckets shown to a viewer.
type Stage struct {
	Index    int    `json:"index"`
	Label    string `json:"label"`
	Progress int    `json:"progress"`
}

var (
	StageConfirmed      = Stage{Index: 1, Label: "Order Confirmed", Progress: 5}
	StagePreparing      = Stage{Index: 2, Label: "Preparing", Progress: 25}
	StageReadyForPickup = Stage{Index: 3, Label: "Ready for Pickup", Progress: 50}
	StageOutForDelivery = Stage{Index: 3, Label: "Out for Delivery", Progress: 75}
	StageDelivered      = Stage{Index: 4, Label: "Delivered", Progress: 100}
)

// StageFor maps a status onto its stage. CANCELLED and unknown values have none.
func StageFor(status domain.Status) (Stage, bool) {
	switch status {
	case domain.StatusPending, domain.StatusConfirmed:
		return StageConfirmed, true
	case domain.StatusPreparing:
		return StagePreparing, true
	case domain.StatusReady:
		return StageReadyForPickup, true
	case domain.StatusOutForDelivery:
		return StageOutForDelivery, true
	case domain.StatusDelivered:
		return StageDelivered, true
	default:
		return Stage{}, false
	}
}

// after reports whether s sits strictly further along than other.
func (s Stage) after(other Stage) bool {
	if s.Index != other.Index {
		return s.Index > other.Index
	}
	return s.Progress > other.Progress
}
