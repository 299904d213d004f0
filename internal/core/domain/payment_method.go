package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// BackupPaymentMethod is a tokenized card credential used only for
// balance top-up charges, independent from the seller's payout method.
type BackupPaymentMethod struct {
	ID           uuid.UUID  `json:"id"`
	SellerID     uuid.UUID  `json:"seller_id"`
	GatewayToken string     `json:"-"` // Stripe payment method token, never expose
	Last4        string     `json:"last4"`
	Brand        string     `json:"brand"`
	ExpMonth     int        `json:"exp_month"`
	ExpYear      int        `json:"exp_year"`
	IsDefault    bool       `json:"is_default"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
	ExternalID   string     `json:"external_id"` // Opaque identifier shown to clients
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// IsDeleted returns true if the method has been soft-deleted.
func (m *BackupPaymentMethod) IsDeleted() bool {
	return m.DeletedAt != nil
}

// IsExpired returns true if the card's expiry date is in the past
// relative to now. A card is valid through the last day of its expiry month.
func (m *BackupPaymentMethod) IsExpired(now time.Time) bool {
	if m.ExpYear < now.Year() {
		return true
	}
	if m.ExpYear == now.Year() && m.ExpMonth < int(now.Month()) {
		return true
	}
	return false
}

// DisplayName returns a human-readable card label.
func (m *BackupPaymentMethod) DisplayName() string {
	brand := m.Brand
	if brand == "" {
		brand = "Card"
	}
	return fmt.Sprintf("%s •••• %s", brand, m.Last4)
}
