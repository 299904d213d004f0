package domain

import (
	"time"

	"github.com/google/uuid"
)

// LedgerEntry is an immutable record of funds credited to a seller's
// payable balance. Entries are created only when a top-up charge settles
// successfully; the unique charge reference makes double-crediting
// impossible at the storage layer.
type LedgerEntry struct {
	ID            uuid.UUID `json:"id"`
	SellerID      uuid.UUID `json:"seller_id"`
	TopUpChargeID uuid.UUID `json:"topup_charge_id"`
	Amount        int64     `json:"amount"` // Minor currency units
	Currency      string    `json:"currency"`
	CreatedAt     time.Time `json:"created_at"`
}
