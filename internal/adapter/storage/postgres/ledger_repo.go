package postgres

import (
	"context"
	"fmt"

	"balance-topup-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// LedgerRepo implements ports.LedgerRepository. Entries are append-only;
// the unique constraint on topup_charge_id prevents double-crediting.
type LedgerRepo struct {
	pool Pool
}

// NewLedgerRepo creates a new LedgerRepo.
func NewLedgerRepo(pool Pool) *LedgerRepo {
	return &LedgerRepo{pool: pool}
}

// Create inserts a ledger entry within a database transaction. Runs in the
// same transaction that marks the linked charge successful.
func (r *LedgerRepo) Create(ctx context.Context, tx pgx.Tx, e *domain.LedgerEntry) error {
	query := `INSERT INTO ledger_entries (id, seller_id, topup_charge_id, amount, currency, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := tx.Exec(ctx, query,
		e.ID, e.SellerID, e.TopUpChargeID, e.Amount, e.Currency, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	return nil
}

// SumAvailable returns the seller's payable balance in minor currency units.
func (r *LedgerRepo) SumAvailable(ctx context.Context, sellerID uuid.UUID) (int64, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM ledger_entries WHERE seller_id = $1`

	var sum int64
	if err := r.pool.QueryRow(ctx, query, sellerID).Scan(&sum); err != nil {
		return 0, fmt.Errorf("sum ledger entries: %w", err)
	}
	return sum, nil
}

// ListBySeller fetches the most recent ledger entries for a seller.
func (r *LedgerRepo) ListBySeller(ctx context.Context, sellerID uuid.UUID, limit int) ([]domain.LedgerEntry, error) {
	query := `SELECT id, seller_id, topup_charge_id, amount, currency, created_at
		FROM ledger_entries WHERE seller_id = $1 ORDER BY created_at DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, sellerID, limit)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		e := domain.LedgerEntry{}
		if err := rows.Scan(&e.ID, &e.SellerID, &e.TopUpChargeID, &e.Amount, &e.Currency, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ledger entry row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger entry rows: %w", err)
	}
	return entries, nil
}
