package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"balance-topup-service/internal/core/domain"
	"balance-topup-service/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const topUpColumns = `id, seller_id, payment_method_id, amount, currency, gateway_charge_id, status, refund_id, error_message, created_at, processed_at`

// TopUpRepo implements ports.TopUpChargeRepository.
type TopUpRepo struct {
	pool Pool
}

// NewTopUpRepo creates a new TopUpRepo.
func NewTopUpRepo(pool Pool) *TopUpRepo {
	return &TopUpRepo{pool: pool}
}

// Create inserts a new top-up charge within a database transaction.
func (r *TopUpRepo) Create(ctx context.Context, tx pgx.Tx, c *domain.TopUpCharge) error {
	query := `INSERT INTO topup_charges (id, seller_id, payment_method_id, amount, currency, gateway_charge_id, status, refund_id, error_message, created_at, processed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := tx.Exec(ctx, query,
		c.ID, c.SellerID, c.PaymentMethodID, c.Amount, c.Currency,
		c.GatewayChargeID, c.Status, c.RefundID, c.ErrorMessage,
		c.CreatedAt, c.ProcessedAt,
	)
	if err != nil {
		return fmt.Errorf("insert topup charge: %w", err)
	}
	return nil
}

// GetByID fetches a top-up charge by UUID.
func (r *TopUpRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.TopUpCharge, error) {
	query := fmt.Sprintf(`SELECT %s FROM topup_charges WHERE id = $1`, topUpColumns)

	return r.scanCharge(r.pool.QueryRow(ctx, query, id))
}

// MarkSuccessful settles a pending charge as successful within a database
// transaction. The status guard keeps settled charges immutable.
func (r *TopUpRepo) MarkSuccessful(ctx context.Context, tx pgx.Tx, id uuid.UUID, gatewayChargeID string, processedAt time.Time) error {
	query := `UPDATE topup_charges SET status = 'SUCCESSFUL', gateway_charge_id = $1, processed_at = $2
		WHERE id = $3 AND status = 'PENDING'`

	tag, err := tx.Exec(ctx, query, gatewayChargeID, processedAt, id)
	if err != nil {
		return fmt.Errorf("mark charge successful: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("charge not pending: %s", id)
	}
	return nil
}

// MarkFailed settles a pending charge as failed with a decline reason.
func (r *TopUpRepo) MarkFailed(ctx context.Context, id uuid.UUID, errorMessage string, processedAt time.Time) error {
	query := `UPDATE topup_charges SET status = 'FAILED', error_message = $1, processed_at = $2
		WHERE id = $3 AND status = 'PENDING'`

	tag, err := r.pool.Exec(ctx, query, errorMessage, processedAt, id)
	if err != nil {
		return fmt.Errorf("mark charge failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("charge not pending: %s", id)
	}
	return nil
}

// CountByMethod counts charges raised against a payment method, any status.
func (r *TopUpRepo) CountByMethod(ctx context.Context, methodID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM topup_charges WHERE payment_method_id = $1`

	var count int64
	if err := r.pool.QueryRow(ctx, query, methodID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count charges by method: %w", err)
	}
	return count, nil
}

// List fetches top-up charges with filtering and pagination.
func (r *TopUpRepo) List(ctx context.Context, params ports.TopUpListParams) ([]domain.TopUpCharge, int64, error) {
	var conditions []string
	var args []any
	argIdx := 1

	conditions = append(conditions, fmt.Sprintf("seller_id = $%d", argIdx))
	args = append(args, params.SellerID)
	argIdx++

	if params.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *params.Status)
		argIdx++
	}
	if params.From != nil {
		conditions = append(conditions, fmt.Sprintf("created_at >= to_timestamp($%d)", argIdx))
		args = append(args, *params.From)
		argIdx++
	}
	if params.To != nil {
		conditions = append(conditions, fmt.Sprintf("created_at <= to_timestamp($%d)", argIdx))
		args = append(args, *params.To)
		argIdx++
	}

	where := "WHERE " + strings.Join(conditions, " AND ")

	// Count total
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM topup_charges %s", where)
	var total int64
	err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count topup charges: %w", err)
	}

	// Fetch page
	offset := (params.Page - 1) * params.PageSize
	dataQuery := fmt.Sprintf(`SELECT %s FROM topup_charges %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		topUpColumns, where, argIdx, argIdx+1)
	args = append(args, params.PageSize, offset)

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list topup charges: %w", err)
	}
	defer rows.Close()

	var charges []domain.TopUpCharge
	for rows.Next() {
		c := domain.TopUpCharge{}
		err := rows.Scan(
			&c.ID, &c.SellerID, &c.PaymentMethodID, &c.Amount, &c.Currency,
			&c.GatewayChargeID, &c.Status, &c.RefundID, &c.ErrorMessage,
			&c.CreatedAt, &c.ProcessedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan topup charge row: %w", err)
		}
		charges = append(charges, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate topup charge rows: %w", err)
	}
	return charges, total, nil
}

// GetStats retrieves aggregated top-up statistics for a seller.
func (r *TopUpRepo) GetStats(ctx context.Context, sellerID uuid.UUID) (*ports.TopUpStats, error) {
	query := `SELECT
		COUNT(*) AS total,
		COUNT(*) FILTER (WHERE status = 'SUCCESSFUL') AS successful,
		COUNT(*) FILTER (WHERE status = 'FAILED') AS failed,
		COUNT(*) FILTER (WHERE status = 'PENDING') AS pending,
		COALESCE(SUM(amount) FILTER (WHERE status = 'SUCCESSFUL'), 0) AS total_loaded
		FROM topup_charges WHERE seller_id = $1`

	stats := &ports.TopUpStats{}
	err := r.pool.QueryRow(ctx, query, sellerID).Scan(
		&stats.TotalCharges, &stats.Successful, &stats.Failed, &stats.Pending, &stats.TotalLoaded,
	)
	if err != nil {
		return nil, fmt.Errorf("get topup stats: %w", err)
	}
	return stats, nil
}

// ListStalePending fetches pending charges created before the cutoff, for
// the reconciler sweep.
func (r *TopUpRepo) ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]domain.TopUpCharge, error) {
	query := fmt.Sprintf(`SELECT %s FROM topup_charges
		WHERE status = 'PENDING' AND created_at < $1 ORDER BY created_at LIMIT $2`, topUpColumns)

	return r.queryCharges(ctx, query, olderThan, limit)
}

// ListFailedLinkedToRefunds fetches charges that failed after the given
// time and were raised to cover a refund.
func (r *TopUpRepo) ListFailedLinkedToRefunds(ctx context.Context, since time.Time) ([]domain.TopUpCharge, error) {
	query := fmt.Sprintf(`SELECT %s FROM topup_charges
		WHERE status = 'FAILED' AND refund_id IS NOT NULL AND processed_at >= $1 ORDER BY processed_at`, topUpColumns)

	return r.queryCharges(ctx, query, since)
}

func (r *TopUpRepo) queryCharges(ctx context.Context, query string, args ...any) ([]domain.TopUpCharge, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query topup charges: %w", err)
	}
	defer rows.Close()

	var charges []domain.TopUpCharge
	for rows.Next() {
		c := domain.TopUpCharge{}
		err := rows.Scan(
			&c.ID, &c.SellerID, &c.PaymentMethodID, &c.Amount, &c.Currency,
			&c.GatewayChargeID, &c.Status, &c.RefundID, &c.ErrorMessage,
			&c.CreatedAt, &c.ProcessedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan topup charge row: %w", err)
		}
		charges = append(charges, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate topup charge rows: %w", err)
	}
	return charges, nil
}

func (r *TopUpRepo) scanCharge(row pgx.Row) (*domain.TopUpCharge, error) {
	c := &domain.TopUpCharge{}
	err := row.Scan(
		&c.ID, &c.SellerID, &c.PaymentMethodID, &c.Amount, &c.Currency,
		&c.GatewayChargeID, &c.Status, &c.RefundID, &c.ErrorMessage,
		&c.CreatedAt, &c.ProcessedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan topup charge: %w", err)
	}
	return c, nil
}
