package models

import "time"

// HighValueThreshold is the total cost at or above which a request is treated
// as a high-value procurement.
const HighValueThreshold = 10000.0

// RequestStatus enumerates the lifecycle states of a purchase request.
type RequestStatus string

const (
	StatusPending    RequestStatus = "pending"
	StatusApproved   RequestStatus = "approved"
	StatusCanvassing RequestStatus = "canvassing"
	StatusAwarded    RequestStatus = "awarded"
	StatusForPO      RequestStatus = "for_po"
	StatusDelivered  RequestStatus = "delivered"
	StatusPaid       RequestStatus = "paid"
	StatusCancelled  RequestStatus = "cancelled"
)

// Valid reports whether s is a known status.
func (s RequestStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusCanvassing, StatusAwarded,
		StatusForPO, StatusDelivered, StatusPaid, StatusCancelled:
		return true
	}
	return false
}

// SyncState tells whether a request is known to the backing store.
type SyncState string

const (
	SyncStateSynced      SyncState = "synced"
	SyncStatePendingSync SyncState = "pending_sync"
)

// LineItem is one requested article of a purchase request.
type LineItem struct {
	ID          int     `bson:"id" json:"id"`
	Description string  `bson:"description" json:"description"`
	Unit        string  `bson:"unit" json:"unit"`
	Quantity    float64 `bson:"quantity" json:"quantity"`
	UnitCost    float64 `bson:"unit_cost" json:"unit_cost"`
}

// Total returns quantity times unit cost. Negative inputs count as zero.
func (li LineItem) Total() float64 {
	return nonNegative(li.Quantity) * nonNegative(li.UnitCost)
}

// PurchaseRequest is the intake document that enters canvassing once approved.
type PurchaseRequest struct {
	RefNo     string        `bson:"ref_no" json:"ref_no" binding:"required"`
	Office    string        `bson:"office" json:"office"`
	Section   string        `bson:"section" json:"section"`
	Purpose   string        `bson:"purpose" json:"purpose"`
	Items     []LineItem    `bson:"items" json:"items" binding:"required,min=1"`
	Status    RequestStatus `bson:"status" json:"status"`
	SyncState SyncState     `bson:"-" json:"sync_state,omitempty"`
	CreatedAt time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time     `bson:"updated_at" json:"updated_at"`
}

// Total sums every line total of the request.
func (pr PurchaseRequest) Total() float64 {
	var total float64
	for _, item := range pr.Items {
		total += item.Total()
	}
	return total
}

// IsHighValue reports whether the request total meets HighValueThreshold.
func (pr PurchaseRequest) IsHighValue() bool {
	return pr.Total() >= HighValueThreshold
}

// Item looks up a line item by its identifier.
func (pr PurchaseRequest) Item(id int) (LineItem, bool) {
	for _, item := range pr.Items {
		if item.ID == id {
			return item, true
		}
	}
	return LineItem{}, false
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
