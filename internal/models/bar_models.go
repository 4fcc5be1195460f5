package models

import "time"

// Bar request statuses (request granularity, set by the sales rep side).
const (
	BarRequestPending   = "pending"
	BarRequestGiven     = "given"
	BarRequestCancelled = "cancelled"
	BarRequestCompleted = "completed"
)

// Bar fulfillment statuses (bartender-side processing per approved line).
const (
	FulfillmentPending   = "pending"
	FulfillmentFulfilled = "fulfilled"
	FulfillmentPartial   = "partial"
	FulfillmentReturned  = "returned"
)

// Modification types derived from a fulfillment's pending_* fields.
const (
	ModificationRemoval        = "removal"
	ModificationExchange       = "exchange"
	ModificationQuantityChange = "quantity_change"
	ModificationUnknown        = "unknown"
)

// BarRequest is a persisted ask from a sales rep to the bar staff to prepare
// a set of drink items for a table. Created in bulk from a table's cart.
type BarRequest struct {
	ID           int64     `json:"id" db:"id"`
	TableID      int       `json:"table_id" db:"table_id"`
	ProductID    int64     `json:"product_id" db:"product_id"`
	ProductName  string    `json:"product_name" db:"product_name"`
	Quantity     int       `json:"quantity" db:"quantity"`
	UnitPrice    float64   `json:"unit_price" db:"unit_price"`
	SalesRepID   int64     `json:"sales_rep_id" db:"sales_rep_id"`
	SalesRepName string    `json:"sales_rep_name" db:"sales_rep_name"`
	Status       string    `json:"status" db:"status"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// BarFulfillment tracks how much of an approved bar request was actually
// prepared or returned, plus an optional in-flight modification proposal
// captured in the pending_* fields.
type BarFulfillment struct {
	ID                int64   `json:"id" db:"id"`
	BarRequestID      int64   `json:"bar_request_id" db:"bar_request_id"`
	TableID           int     `json:"table_id" db:"table_id"`
	SalesRepID        int64   `json:"sales_rep_id" db:"sales_rep_id"`
	SalesRepName      string  `json:"sales_rep_name" db:"sales_rep_name"`
	ProductID         int64   `json:"product_id" db:"product_id"`
	ProductName       string  `json:"product_name" db:"product_name"`
	QuantityApproved  int     `json:"quantity_approved" db:"quantity_approved"`
	QuantityFulfilled int     `json:"quantity_fulfilled" db:"quantity_fulfilled"`
	QuantityReturned  int     `json:"quantity_returned" db:"quantity_returned"`
	UnitPrice         float64 `json:"unit_price" db:"unit_price"`
	TotalAmount       float64 `json:"total_amount" db:"total_amount"`
	Status            string  `json:"status" db:"status"`

	PendingQuantity         *int       `json:"pending_quantity,omitempty" db:"pending_quantity"`
	PendingProductID        *int64     `json:"pending_product_id,omitempty" db:"pending_product_id"`
	PendingProductName      *string    `json:"pending_product_name,omitempty" db:"pending_product_name"`
	PendingUnitPrice        *float64   `json:"pending_unit_price,omitempty" db:"pending_unit_price"`
	ModificationRequestedAt *time.Time `json:"modification_requested_at,omitempty" db:"modification_requested_at"`

	FulfilledAt *time.Time `json:"fulfilled_at,omitempty" db:"fulfilled_at"`
	Notes       *string    `json:"notes,omitempty" db:"notes"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// HasPendingModification reports whether a modification proposal is in flight.
func (f *BarFulfillment) HasPendingModification() bool {
	return f.ModificationRequestedAt != nil
}

// BarRequestFilters defines the available filters for querying bar requests.
type BarRequestFilters struct {
	TableID *int    `form:"table_id"`
	Status  *string `form:"status"`
}

// FulfillmentFilters defines the available filters for querying fulfillments.
type FulfillmentFilters struct {
	TableID *int    `form:"table_id"`
	Status  *string `form:"status"`
}
