package domain

import (
	"time"

	"github.com/google/uuid"
)

// IdempotencyLog caches the result of a top-up create request so client
// retries return the original charge instead of raising a duplicate.
type IdempotencyLog struct {
	Key          string    `json:"key"` // Format: "seller_id:topup:reference_key"
	ChargeID     uuid.UUID `json:"charge_id"`
	ResponseJSON []byte    `json:"response_json"` // Cached response to return
	CreatedAt    time.Time `json:"created_at"`
}
