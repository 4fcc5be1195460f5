package models

import "time"

// Product represents a sellable catalog item (drinks, food, miscellaneous stock).
type Product struct {
	ID           int64     `json:"id" db:"id"`
	Name         string    `json:"name" db:"name" binding:"required"`
	Category     string    `json:"category" db:"category"`
	CostPrice    float64   `json:"cost_price" db:"cost_price" binding:"gte=0"`
	SellingPrice float64   `json:"selling_price" db:"selling_price" binding:"required,gt=0"`
	CurrentStock int       `json:"current_stock" db:"current_stock"`
	LowStock     int       `json:"low_stock" db:"low_stock"` // alert threshold
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// IsLowStock reports whether the product has fallen to or below its alert threshold.
func (p *Product) IsLowStock() bool {
	return p.CurrentStock <= p.LowStock
}

// ProductFilters defines the available filters for querying products.
type ProductFilters struct {
	Category *string `form:"category"`
	LowStock *bool   `form:"low_stock"`
	Page     int     `form:"page"`
	PageSize int     `form:"page_size"`
}
