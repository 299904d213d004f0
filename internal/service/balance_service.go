package service

import (
	"context"
	"errors"
	"fmt"

	"balance-topup-service/internal/core/ports"
	"balance-topup-service/pkg/apperror"

	"github.com/rs/zerolog"
)

// RefundCoverageFlag gates the automatic top-up flow for refund shortfalls.
const RefundCoverageFlag = "refund_balance_topups"

// BalanceServiceImpl implements ports.BalanceService.
type BalanceServiceImpl struct {
	ledgerRepo ports.LedgerRepository
	topUpSvc   ports.TopUpService
	flags      ports.FeatureFlags
	log        zerolog.Logger
}

// NewBalanceService creates a new BalanceServiceImpl.
func NewBalanceService(
	ledgerRepo ports.LedgerRepository,
	topUpSvc ports.TopUpService,
	flags ports.FeatureFlags,
	log zerolog.Logger,
) *BalanceServiceImpl {
	return &BalanceServiceImpl{
		ledgerRepo: ledgerRepo,
		topUpSvc:   topUpSvc,
		flags:      flags,
		log:        log,
	}
}

// EnsureBalanceCovered checks whether the seller's available balance covers
// the refund amount and, when it falls short, raises a top-up charge for the
// difference. The refund ID doubles as the idempotency reference so repeated
// coverage checks for the same refund never stack charges.
func (s *BalanceServiceImpl) EnsureBalanceCovered(ctx context.Context, req ports.CoverageRequest) (*ports.CoverageResult, error) {
	enabled, err := s.flags.Enabled(ctx, RefundCoverageFlag, req.SellerID)
	if err != nil {
		// A flag read failure must not block refund processing.
		s.log.Warn().Err(err).Str("seller_id", req.SellerID.String()).Msg("feature flag check failed, treating as disabled")
		enabled = false
	}
	if !enabled {
		return &ports.CoverageResult{Covered: true}, nil
	}

	balance, err := s.ledgerRepo.SumAvailable(ctx, req.SellerID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("sum available balance: %w", err))
	}
	if balance >= req.Amount {
		return &ports.CoverageResult{Covered: true}, nil
	}

	shortfall := req.Amount - balance
	charge, err := s.topUpSvc.Charge(ctx, ports.ChargeRequest{
		SellerID:     req.SellerID,
		Amount:       shortfall,
		RefundID:     &req.RefundID,
		ReferenceKey: "refund:" + req.RefundID.String(),
	})
	if err != nil {
		msg, ok := s.coverageErrorMessage(err)
		if !ok {
			return nil, err
		}
		s.log.Warn().
			Str("seller_id", req.SellerID.String()).
			Str("refund_id", req.RefundID.String()).
			Int64("shortfall", shortfall).
			Str("error", msg).
			Msg("refund shortfall top-up rejected")
		return &ports.CoverageResult{Covered: false, Errors: []string{msg}}, nil
	}

	s.log.Info().
		Str("seller_id", req.SellerID.String()).
		Str("refund_id", req.RefundID.String()).
		Str("charge_id", charge.ID.String()).
		Int64("shortfall", shortfall).
		Msg("raised top-up charge for refund shortfall")

	return &ports.CoverageResult{Covered: false, Charge: charge}, nil
}

// coverageErrorMessage translates a charge error into a refund-facing
// validation message. Returns false for errors that should propagate as-is.
func (s *BalanceServiceImpl) coverageErrorMessage(err error) (string, bool) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		return "", false
	}
	switch {
	case apperror.IsInsufficientAmount(err):
		return appErr.Message, true
	case apperror.IsChargeError(err):
		return "Unable to load balance: " + appErr.Message, true
	default:
		return "", false
	}
}
