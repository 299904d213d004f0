package postgres

import (
	"context"
	"errors"
	"fmt"

	"balance-topup-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// SellerRepo implements ports.SellerRepository.
type SellerRepo struct {
	pool Pool
}

// NewSellerRepo creates a new SellerRepo.
func NewSellerRepo(pool Pool) *SellerRepo {
	return &SellerRepo{pool: pool}
}

// Create inserts a new seller into the database.
func (r *SellerRepo) Create(ctx context.Context, s *domain.Seller) error {
	query := `INSERT INTO sellers (id, username, password_hash, display_name, gateway_customer_id, currency, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.pool.Exec(ctx, query,
		s.ID, s.Username, s.PasswordHash, s.DisplayName,
		s.GatewayCustomerID, s.Currency, s.Status,
		s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert seller: %w", err)
	}
	return nil
}

// GetByID fetches a seller by its UUID.
func (r *SellerRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Seller, error) {
	query := `SELECT id, username, password_hash, display_name, gateway_customer_id, currency, status, created_at, updated_at
		FROM sellers WHERE id = $1`

	return r.scanSeller(r.pool.QueryRow(ctx, query, id))
}

// GetByUsername fetches a seller by username.
func (r *SellerRepo) GetByUsername(ctx context.Context, username string) (*domain.Seller, error) {
	query := `SELECT id, username, password_hash, display_name, gateway_customer_id, currency, status, created_at, updated_at
		FROM sellers WHERE username = $1`

	return r.scanSeller(r.pool.QueryRow(ctx, query, username))
}

func (r *SellerRepo) scanSeller(row pgx.Row) (*domain.Seller, error) {
	s := &domain.Seller{}
	err := row.Scan(
		&s.ID, &s.Username, &s.PasswordHash, &s.DisplayName,
		&s.GatewayCustomerID, &s.Currency, &s.Status,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan seller: %w", err)
	}
	return s, nil
}
