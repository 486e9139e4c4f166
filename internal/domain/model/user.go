package model

import "time"

// Cart maps product identifiers to requested quantities.
type Cart map[string]int

// User represents a registered storefront customer.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Cart         Cart
	CreatedAt    time.Time
}
