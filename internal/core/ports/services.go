package ports

import (
	"context"
	"time"

	"balance-topup-service/internal/core/domain"

	"github.com/google/uuid"
)

// --- Service Ports (Business Logic) ---

// PaymentMethodRegistry manages attach/detach/default selection of
// backup payment methods per seller.
type PaymentMethodRegistry interface {
	Attach(ctx context.Context, req AttachRequest) (*domain.BackupPaymentMethod, error)
	Detach(ctx context.Context, sellerID, methodID uuid.UUID) error
	SetDefault(ctx context.Context, sellerID, methodID uuid.UUID) error
	List(ctx context.Context, sellerID uuid.UUID) ([]domain.BackupPaymentMethod, error)
}

// AttachRequest holds validated input for attaching a backup card.
type AttachRequest struct {
	SellerID     uuid.UUID
	GatewayToken string
	SetAsDefault bool
}

// TopUpService owns the TopUpCharge state machine:
// PENDING -> SUCCESSFUL | PENDING -> FAILED. Retries are the
// responsibility of the queue/worker, not this service.
type TopUpService interface {
	// Charge validates the request, persists a PENDING charge, enqueues
	// asynchronous processing and returns immediately. It does not block
	// on gateway completion.
	Charge(ctx context.Context, req ChargeRequest) (*domain.TopUpCharge, error)
	// ProcessCharge performs the gateway call for a pending charge and
	// settles it. Re-entry on a terminal charge is a no-op. The returned
	// charge is non-nil whenever the charge could be loaded, including on
	// failure, so callers have metadata for alerting.
	ProcessCharge(ctx context.Context, chargeID uuid.UUID) (*domain.TopUpCharge, error)
}

// ChargeRequest holds validated input for creating a top-up charge.
type ChargeRequest struct {
	SellerID     uuid.UUID
	Amount       int64      // Minor currency units
	MethodID     *uuid.UUID // nil = seller's default backup method
	RefundID     *uuid.UUID // Refund this top-up covers, if any
	ReferenceKey string     // Optional idempotency reference; "" disables dedup
}

// BalanceService decides whether a refund is covered by the seller's
// available balance, raising a top-up charge for any shortfall.
type BalanceService interface {
	EnsureBalanceCovered(ctx context.Context, req CoverageRequest) (*CoverageResult, error)
}

// CoverageRequest holds input for a refund coverage check.
type CoverageRequest struct {
	SellerID uuid.UUID
	RefundID uuid.UUID
	Amount   int64 // Minor units the refund needs covered
}

// CoverageResult is the outcome of a coverage check. Errors holds
// validation-style messages for the refund object when Covered is false.
type CoverageResult struct {
	Covered bool                `json:"covered"`
	Errors  []string            `json:"errors,omitempty"`
	Charge  *domain.TopUpCharge `json:"charge,omitempty"` // Pending charge raised for the shortfall
}

// ErrorNotifier reports failures to an external error-tracking sink.
type ErrorNotifier interface {
	Notify(ctx context.Context, err error, metadata map[string]any)
}

// FeatureFlags gates rollout of the top-up flow per seller.
type FeatureFlags interface {
	// Enabled reports whether the named flag is on for the seller.
	Enabled(ctx context.Context, flag string, sellerID uuid.UUID) (bool, error)
}

// AuthService defines seller authentication business logic.
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*domain.Seller, error)
	Login(ctx context.Context, username, password string) (string, time.Time, error) // token, expiry, error
}

// RegisterRequest holds input for seller registration.
type RegisterRequest struct {
	Username    string
	Password    string
	DisplayName string
	Currency    string
}

// ReportingService defines settings-dashboard reporting logic.
type ReportingService interface {
	GetBalance(ctx context.Context, sellerID uuid.UUID) (int64, string, error) // balance, currency, error
	ListTopUps(ctx context.Context, params TopUpListParams) ([]domain.TopUpCharge, int64, error)
	GetStats(ctx context.Context, sellerID uuid.UUID) (*TopUpStats, error)
}

// AuditService records audited actions.
type AuditService interface {
	Log(ctx context.Context, entry *domain.AuditLog)
}

// HashService handles password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(sellerID uuid.UUID) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	SellerID uuid.UUID
}

// SignatureService handles HMAC-SHA256 signing and verification for
// service-to-service requests and outgoing alert payloads.
type SignatureService interface {
	Sign(secretKey string, payload string) string
	Verify(secretKey string, payload string, signature string) bool
	BuildCanonicalString(method, path string, timestamp int64, nonce string, body string) string
}

// IdempotencyCache is the Redis-layer idempotency check (fast path).
type IdempotencyCache interface {
	Get(ctx context.Context, key string) ([]byte, error) // Returns cached response JSON or nil
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// NonceStore manages nonce uniqueness for replay attack prevention on
// the internal service API.
type NonceStore interface {
	// CheckAndSet atomically checks if nonce exists, sets it if not.
	// Returns true if nonce is new (valid), false if already used.
	CheckAndSet(ctx context.Context, scope string, nonce string, ttl time.Duration) (bool, error)
}
