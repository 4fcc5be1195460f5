package models

// BarStatus reflects where a table's cart stands in the bar hand-off workflow.
// It is the client-side mirror of the persisted bar request state; the cart
// store updates it synchronously after a successful persisted transition.
type BarStatus string

const (
	BarStatusNone    BarStatus = "none"
	BarStatusPending BarStatus = "pending"
	BarStatusGiven   BarStatus = "given"
)

// CartItem is one line of a table's cart. Lines are keyed by
// (product_id, unit_price): adding the same product at the same price
// accumulates quantity, a different price opens a new line.
type CartItem struct {
	ProductID    int64   `json:"product_id"`
	Name         string  `json:"name"`
	Quantity     int     `json:"quantity"`
	UnitPrice    float64 `json:"unit_price"`
	UnitCost     float64 `json:"unit_cost"`
	TotalPrice   float64 `json:"total_price"`
	TotalCost    float64 `json:"total_cost"`
	ProfitAmount float64 `json:"profit_amount"`
}

// Expense is an ad hoc charge attached to a table outside the product catalog.
type Expense struct {
	ID       int64   `json:"id"`
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

// TableCart is a point-in-time snapshot of one table's cart state.
type TableCart struct {
	TableNumber     int        `json:"table_number"`
	Items           []CartItem `json:"items"`
	Expenses        []Expense  `json:"expenses"`
	BarStatus       BarStatus  `json:"bar_status"`
	PendingSale     bool       `json:"pending_sale"`
	PendingCustomer string     `json:"pending_customer,omitempty"`
	CartTotal       float64    `json:"cart_total"`
	ExpensesTotal   float64    `json:"expenses_total"`
	GrandTotal      float64    `json:"grand_total"`
	ProfitTotal     float64    `json:"profit_total"`
}
