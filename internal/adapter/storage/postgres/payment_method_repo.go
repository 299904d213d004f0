package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"balance-topup-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const paymentMethodColumns = `id, seller_id, gateway_token, last4, brand, exp_month, exp_year, is_default, deleted_at, external_id, created_at, updated_at`

// PaymentMethodRepo implements ports.PaymentMethodRepository.
type PaymentMethodRepo struct {
	pool Pool
}

// NewPaymentMethodRepo creates a new PaymentMethodRepo.
func NewPaymentMethodRepo(pool Pool) *PaymentMethodRepo {
	return &PaymentMethodRepo{pool: pool}
}

// Create inserts a new payment method within a database transaction.
func (r *PaymentMethodRepo) Create(ctx context.Context, tx pgx.Tx, m *domain.BackupPaymentMethod) error {
	query := `INSERT INTO backup_payment_methods (id, seller_id, gateway_token, last4, brand, exp_month, exp_year, is_default, deleted_at, external_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := tx.Exec(ctx, query,
		m.ID, m.SellerID, m.GatewayToken, m.Last4, m.Brand,
		m.ExpMonth, m.ExpYear, m.IsDefault, m.DeletedAt,
		m.ExternalID, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert payment method: %w", err)
	}
	return nil
}

// GetByID fetches a payment method by UUID, including soft-deleted rows.
func (r *PaymentMethodRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.BackupPaymentMethod, error) {
	query := fmt.Sprintf(`SELECT %s FROM backup_payment_methods WHERE id = $1`, paymentMethodColumns)

	return r.scanMethod(r.pool.QueryRow(ctx, query, id))
}

// GetByIDForUpdate fetches a payment method by UUID with a row lock, for
// use inside the default-switch transaction.
func (r *PaymentMethodRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.BackupPaymentMethod, error) {
	query := fmt.Sprintf(`SELECT %s FROM backup_payment_methods WHERE id = $1 FOR UPDATE`, paymentMethodColumns)

	return r.scanMethod(tx.QueryRow(ctx, query, id))
}

// GetDefault fetches the seller's default active payment method.
func (r *PaymentMethodRepo) GetDefault(ctx context.Context, sellerID uuid.UUID) (*domain.BackupPaymentMethod, error) {
	query := fmt.Sprintf(`SELECT %s FROM backup_payment_methods
		WHERE seller_id = $1 AND is_default = TRUE AND deleted_at IS NULL`, paymentMethodColumns)

	return r.scanMethod(r.pool.QueryRow(ctx, query, sellerID))
}

// ListActive fetches all non-deleted payment methods for a seller.
func (r *PaymentMethodRepo) ListActive(ctx context.Context, sellerID uuid.UUID) ([]domain.BackupPaymentMethod, error) {
	query := fmt.Sprintf(`SELECT %s FROM backup_payment_methods
		WHERE seller_id = $1 AND deleted_at IS NULL ORDER BY created_at`, paymentMethodColumns)

	rows, err := r.pool.Query(ctx, query, sellerID)
	if err != nil {
		return nil, fmt.Errorf("list payment methods: %w", err)
	}
	defer rows.Close()

	var methods []domain.BackupPaymentMethod
	for rows.Next() {
		m := domain.BackupPaymentMethod{}
		err := rows.Scan(
			&m.ID, &m.SellerID, &m.GatewayToken, &m.Last4, &m.Brand,
			&m.ExpMonth, &m.ExpYear, &m.IsDefault, &m.DeletedAt,
			&m.ExternalID, &m.CreatedAt, &m.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan payment method row: %w", err)
		}
		methods = append(methods, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payment method rows: %w", err)
	}
	return methods, nil
}

// CountActive counts a seller's non-deleted payment methods.
func (r *PaymentMethodRepo) CountActive(ctx context.Context, sellerID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM backup_payment_methods WHERE seller_id = $1 AND deleted_at IS NULL`

	var count int64
	if err := r.pool.QueryRow(ctx, query, sellerID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count payment methods: %w", err)
	}
	return count, nil
}

// ClearDefault unsets the default flag on all of a seller's methods,
// within a database transaction.
func (r *PaymentMethodRepo) ClearDefault(ctx context.Context, tx pgx.Tx, sellerID uuid.UUID) error {
	query := `UPDATE backup_payment_methods SET is_default = FALSE, updated_at = NOW()
		WHERE seller_id = $1 AND is_default = TRUE`

	if _, err := tx.Exec(ctx, query, sellerID); err != nil {
		return fmt.Errorf("clear default payment method: %w", err)
	}
	return nil
}

// SetDefault marks a payment method as the default, within a database
// transaction.
func (r *PaymentMethodRepo) SetDefault(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	query := `UPDATE backup_payment_methods SET is_default = TRUE, updated_at = NOW() WHERE id = $1`

	tag, err := tx.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("set default payment method: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("payment method not found: %s", id)
	}
	return nil
}

// SoftDelete marks a payment method as deleted while keeping the row for
// charge history.
func (r *PaymentMethodRepo) SoftDelete(ctx context.Context, id uuid.UUID, deletedAt time.Time) error {
	query := `UPDATE backup_payment_methods SET deleted_at = $1, is_default = FALSE, updated_at = NOW()
		WHERE id = $2 AND deleted_at IS NULL`

	tag, err := r.pool.Exec(ctx, query, deletedAt, id)
	if err != nil {
		return fmt.Errorf("soft delete payment method: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("payment method not found: %s", id)
	}
	return nil
}

// HardDelete removes a payment method row entirely. Only valid for methods
// with no charge history.
func (r *PaymentMethodRepo) HardDelete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM backup_payment_methods WHERE id = $1`

	if _, err := r.pool.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("hard delete payment method: %w", err)
	}
	return nil
}

func (r *PaymentMethodRepo) scanMethod(row pgx.Row) (*domain.BackupPaymentMethod, error) {
	m := &domain.BackupPaymentMethod{}
	err := row.Scan(
		&m.ID, &m.SellerID, &m.GatewayToken, &m.Last4, &m.Brand,
		&m.ExpMonth, &m.ExpYear, &m.IsDefault, &m.DeletedAt,
		&m.ExternalID, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan payment method: %w", err)
	}
	return m, nil
}
