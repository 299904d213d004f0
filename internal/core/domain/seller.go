package domain

import (
	"time"

	"github.com/google/uuid"
)

// SellerStatus represents the state of a seller account.
type SellerStatus string

const (
	SellerStatusActive    SellerStatus = "ACTIVE"
	SellerStatusSuspended SellerStatus = "SUSPENDED"
)

// Seller represents a seller whose payable balance can be topped up.
type Seller struct {
	ID                uuid.UUID    `json:"id"`
	Username          string       `json:"username"`
	PasswordHash      string       `json:"-"` // Never expose
	DisplayName       string       `json:"display_name"`
	GatewayCustomerID string       `json:"-"` // Stripe customer the backup cards belong to
	Currency          string       `json:"currency"`
	Status            SellerStatus `json:"status"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
}

// IsActive returns true if the seller account is active.
func (s *Seller) IsActive() bool {
	return s.Status == SellerStatusActive
}
