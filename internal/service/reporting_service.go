package service

import (
	"context"
	"fmt"

	"balance-topup-service/internal/core/domain"
	"balance-topup-service/internal/core/ports"
	"balance-topup-service/pkg/apperror"

	"github.com/google/uuid"
)

// reportingService implements ports.ReportingService.
type reportingService struct {
	chargeRepo ports.TopUpChargeRepository
	ledgerRepo ports.LedgerRepository
	sellerRepo ports.SellerRepository
}

// NewReportingService creates a new reporting service.
func NewReportingService(
	chargeRepo ports.TopUpChargeRepository,
	ledgerRepo ports.LedgerRepository,
	sellerRepo ports.SellerRepository,
) ports.ReportingService {
	return &reportingService{
		chargeRepo: chargeRepo,
		ledgerRepo: ledgerRepo,
		sellerRepo: sellerRepo,
	}
}

// GetBalance returns the seller's available balance in minor units.
func (s *reportingService) GetBalance(ctx context.Context, sellerID uuid.UUID) (int64, string, error) {
	seller, err := s.sellerRepo.GetByID(ctx, sellerID)
	if err != nil {
		return 0, "", apperror.InternalError(fmt.Errorf("get seller: %w", err))
	}
	if seller == nil {
		return 0, "", apperror.ErrNotFound("seller")
	}

	balance, err := s.ledgerRepo.SumAvailable(ctx, sellerID)
	if err != nil {
		return 0, "", apperror.InternalError(fmt.Errorf("sum balance: %w", err))
	}

	return balance, seller.Currency, nil
}

// ListTopUps returns a paginated list of the seller's top-up charges.
func (s *reportingService) ListTopUps(ctx context.Context, params ports.TopUpListParams) ([]domain.TopUpCharge, int64, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 || params.PageSize > 100 {
		params.PageSize = 20
	}

	charges, total, err := s.chargeRepo.List(ctx, params)
	if err != nil {
		return nil, 0, apperror.InternalError(err)
	}
	return charges, total, nil
}

// GetStats returns aggregated top-up statistics for the seller.
func (s *reportingService) GetStats(ctx context.Context, sellerID uuid.UUID) (*ports.TopUpStats, error) {
	stats, err := s.chargeRepo.GetStats(ctx, sellerID)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	return stats, nil
}
