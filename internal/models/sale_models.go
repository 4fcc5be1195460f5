package models

import "time"

// Sale is the persisted record of a finalized table tab.
// AmountPaid and IsPending track the deferred-payment variant: a pending sale
// keeps IsPending until recorded payments reach TotalAmount.
type Sale struct {
	ID            int64     `json:"id" db:"id"`
	SaleNumber    string    `json:"sale_number" db:"sale_number"`
	TotalAmount   float64   `json:"total_amount" db:"total_amount"`
	PaymentMethod string    `json:"payment_method" db:"payment_method"`
	SaleDate      time.Time `json:"sale_date" db:"sale_date"`
	TableID       *int      `json:"table_id,omitempty" db:"table_id"`
	SalesRepID    *int64    `json:"sales_rep_id,omitempty" db:"sales_rep_id"`
	SalesRepName  *string   `json:"sales_rep_name,omitempty" db:"sales_rep_name"`
	AmountPaid    *float64  `json:"amount_paid,omitempty" db:"amount_paid"`
	IsPending     bool      `json:"is_pending" db:"is_pending"`
	CustomerName  *string   `json:"customer_name,omitempty" db:"customer_name"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`

	Items []SaleItem `json:"items,omitempty"`
}

// SaleItem is one sold line of a sale. Category is read through the product
// join for reporting; it can be empty when the product row has no category.
type SaleItem struct {
	ID           int64     `json:"id" db:"id"`
	SaleID       int64     `json:"sale_id" db:"sale_id"`
	ProductID    int64     `json:"product_id" db:"product_id"`
	ProductName  string    `json:"product_name" db:"product_name"`
	Category     *string   `json:"category,omitempty" db:"category"`
	Quantity     int       `json:"quantity" db:"quantity"`
	UnitPrice    float64   `json:"unit_price" db:"unit_price"`
	UnitCost     float64   `json:"unit_cost" db:"unit_cost"`
	TotalPrice   float64   `json:"total_price" db:"total_price"`
	TotalCost    float64   `json:"total_cost" db:"total_cost"`
	ProfitAmount float64   `json:"profit_amount" db:"profit_amount"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// SaleFilters defines the available filters for querying sales.
type SaleFilters struct {
	TableID    *int    `form:"table_id"`
	SalesRepID *int64  `form:"sales_rep_id"`
	IsPending  *bool   `form:"is_pending"`
	StartDate  *string `form:"start_date"` // YYYY-MM-DD
	EndDate    *string `form:"end_date"`   // YYYY-MM-DD
	Page       int     `form:"page"`
	PageSize   int     `form:"page_size"`
}
