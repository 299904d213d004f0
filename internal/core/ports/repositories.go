package ports

import (
	"context"
	"time"

	"balance-topup-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// SellerRepository defines persistence operations for sellers.
type SellerRepository interface {
	Create(ctx context.Context, seller *domain.Seller) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Seller, error)
	GetByUsername(ctx context.Context, username string) (*domain.Seller, error)
}

// PaymentMethodRepository defines persistence operations for backup
// payment methods. Methods accepting pgx.Tx run inside transaction blocks
// so the single-default invariant can be enforced with row locking.
type PaymentMethodRepository interface {
	Create(ctx context.Context, tx pgx.Tx, method *domain.BackupPaymentMethod) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.BackupPaymentMethod, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.BackupPaymentMethod, error)
	GetDefault(ctx context.Context, sellerID uuid.UUID) (*domain.BackupPaymentMethod, error)
	ListActive(ctx context.Context, sellerID uuid.UUID) ([]domain.BackupPaymentMethod, error)
	CountActive(ctx context.Context, sellerID uuid.UUID) (int64, error)
	ClearDefault(ctx context.Context, tx pgx.Tx, sellerID uuid.UUID) error
	SetDefault(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
	SoftDelete(ctx context.Context, id uuid.UUID, deletedAt time.Time) error
	HardDelete(ctx context.Context, id uuid.UUID) error
}

// TopUpChargeRepository defines persistence operations for top-up charges.
// Charges are never deleted; status moves PENDING -> {SUCCESSFUL, FAILED}.
type TopUpChargeRepository interface {
	Create(ctx context.Context, tx pgx.Tx, charge *domain.TopUpCharge) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.TopUpCharge, error)
	MarkSuccessful(ctx context.Context, tx pgx.Tx, id uuid.UUID, gatewayChargeID string, processedAt time.Time) error
	MarkFailed(ctx context.Context, id uuid.UUID, errorMessage string, processedAt time.Time) error
	CountByMethod(ctx context.Context, methodID uuid.UUID) (int64, error)
	List(ctx context.Context, params TopUpListParams) ([]domain.TopUpCharge, int64, error)
	GetStats(ctx context.Context, sellerID uuid.UUID) (*TopUpStats, error)
	ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]domain.TopUpCharge, error)
	ListFailedLinkedToRefunds(ctx context.Context, since time.Time) ([]domain.TopUpCharge, error)
}

// TopUpListParams holds filter + pagination for listing top-up charges.
type TopUpListParams struct {
	SellerID uuid.UUID
	Status   *domain.TopUpStatus
	From     *int64 // Unix timestamp
	To       *int64 // Unix timestamp
	Page     int
	PageSize int
}

// TopUpStats holds aggregated top-up statistics for a seller.
type TopUpStats struct {
	TotalCharges int64
	Successful   int64
	Failed       int64
	Pending      int64
	TotalLoaded  int64 // Sum of successful charge amounts
}

// LedgerRepository defines persistence operations for ledger entries.
// Entries are immutable; creation happens inside the same transaction
// that marks the linked charge successful.
type LedgerRepository interface {
	Create(ctx context.Context, tx pgx.Tx, entry *domain.LedgerEntry) error
	SumAvailable(ctx context.Context, sellerID uuid.UUID) (int64, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID, limit int) ([]domain.LedgerEntry, error)
}

// IdempotencyRepository defines persistence for idempotency logs (DB backup).
type IdempotencyRepository interface {
	Create(ctx context.Context, tx pgx.Tx, log *domain.IdempotencyLog) error
	Get(ctx context.Context, key string) (*domain.IdempotencyLog, error)
}

// AuditRepository defines persistence for audit logs.
type AuditRepository interface {
	Create(ctx context.Context, entry *domain.AuditLog) error
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
