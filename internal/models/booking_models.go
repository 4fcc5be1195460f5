package models

import "time"

// RoomBooking is a hotel room booking. TotalPrice is always derived as
// Price x NumNights at creation time.
type RoomBooking struct {
	ID           int64     `json:"id" db:"id"`
	Category     string    `json:"category" db:"category"`
	CustomerType string    `json:"customer_type" db:"customer_type"`
	RoomType     string    `json:"room_type" db:"room_type"`
	HasDiscount  bool      `json:"has_discount" db:"has_discount"`
	NumNights    int       `json:"num_nights" db:"num_nights"`
	Price        float64   `json:"price" db:"price"`
	TotalPrice   float64   `json:"total_price" db:"total_price"`
	CustomerName string    `json:"customer_name" db:"customer_name"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// RoomBookingFilters defines the available filters for querying room bookings.
type RoomBookingFilters struct {
	RoomType  *string `form:"room_type"`
	StartDate *string `form:"start_date"` // YYYY-MM-DD
	EndDate   *string `form:"end_date"`   // YYYY-MM-DD
	Page      int     `form:"page"`
	PageSize  int     `form:"page_size"`
}
