package domain

import (
	"time"

	"github.com/google/uuid"
)

// MinChargeAmount is the smallest chargeable top-up in minor currency units.
const MinChargeAmount int64 = 100

// TopUpStatus represents the lifecycle state of a top-up charge.
// Transitions are monotonic: PENDING -> {SUCCESSFUL, FAILED}, never reversed.
type TopUpStatus string

const (
	TopUpStatusPending    TopUpStatus = "PENDING"
	TopUpStatusSuccessful TopUpStatus = "SUCCESSFUL"
	TopUpStatusFailed     TopUpStatus = "FAILED"
)

// TopUpCharge records a single attempt to charge a backup payment method
// to add funds to a seller's payable balance. Charges are never deleted.
type TopUpCharge struct {
	ID              uuid.UUID   `json:"id"`
	SellerID        uuid.UUID   `json:"seller_id"`
	PaymentMethodID uuid.UUID   `json:"payment_method_id"`
	Amount          int64       `json:"amount"` // Minor currency units
	Currency        string      `json:"currency"`
	GatewayChargeID *string     `json:"gateway_charge_id,omitempty"`
	Status          TopUpStatus `json:"status"`
	RefundID        *uuid.UUID  `json:"refund_id,omitempty"` // Refund this top-up was raised to cover
	ErrorMessage    *string     `json:"error_message,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	ProcessedAt     *time.Time  `json:"processed_at,omitempty"`
}

// IsTerminal returns true once the charge has settled either way.
func (c *TopUpCharge) IsTerminal() bool {
	return c.Status == TopUpStatusSuccessful || c.Status == TopUpStatusFailed
}

// BuildChargeIdempotencyKey constructs the idempotency key for a top-up
// create request scoped to a seller.
func BuildChargeIdempotencyKey(sellerID uuid.UUID, referenceKey string) string {
	return sellerID.String() + ":topup:" + referenceKey
}
