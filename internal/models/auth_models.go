package models

import "time"

// User roles. Admin reaches inventory management, reports and user
// administration; SalesRep reaches the sales/table workflow only.
const (
	RoleAdmin    = "Admin"
	RoleSalesRep = "SalesRep"
)

// User is an authenticated back-office account.
type User struct {
	ID           int64     `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	FullName     string    `json:"full_name" db:"full_name"`
	Role         string    `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}
