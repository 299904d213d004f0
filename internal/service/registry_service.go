package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"balance-topup-service/internal/core/domain"
	"balance-topup-service/internal/core/ports"
	"balance-topup-service/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RegistryServiceImpl implements ports.PaymentMethodRegistry.
type RegistryServiceImpl struct {
	methodRepo ports.PaymentMethodRepository
	chargeRepo ports.TopUpChargeRepository
	sellerRepo ports.SellerRepository
	gateway    ports.PaymentGateway
	transactor ports.DBTransactor
	log        zerolog.Logger
}

// NewRegistryService creates a new RegistryServiceImpl.
func NewRegistryService(
	methodRepo ports.PaymentMethodRepository,
	chargeRepo ports.TopUpChargeRepository,
	sellerRepo ports.SellerRepository,
	gateway ports.PaymentGateway,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *RegistryServiceImpl {
	return &RegistryServiceImpl{
		methodRepo: methodRepo,
		chargeRepo: chargeRepo,
		sellerRepo: sellerRepo,
		gateway:    gateway,
		transactor: transactor,
		log:        log,
	}
}

// Attach verifies the tokenized card with the gateway, binds it to the
// seller's gateway customer and stores it. The first active method for a
// seller always becomes the default.
func (s *RegistryServiceImpl) Attach(ctx context.Context, req ports.AttachRequest) (*domain.BackupPaymentMethod, error) {
	seller, err := s.sellerRepo.GetByID(ctx, req.SellerID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get seller: %w", err))
	}
	if seller == nil {
		return nil, apperror.ErrNotFound("seller")
	}

	gwMethod, err := s.gateway.GetPaymentMethod(ctx, req.GatewayToken)
	if err != nil {
		return nil, apperror.ErrAttachmentFailed(fmt.Errorf("verify token: %w", err))
	}
	if gwMethod.CustomerID != "" && gwMethod.CustomerID != seller.GatewayCustomerID {
		return nil, apperror.ErrTokenInUse()
	}
	if gwMethod.CustomerID == "" {
		if err := s.gateway.AttachPaymentMethod(ctx, req.GatewayToken, seller.GatewayCustomerID); err != nil {
			return nil, apperror.ErrAttachmentFailed(fmt.Errorf("attach token: %w", err))
		}
	}

	count, err := s.methodRepo.CountActive(ctx, req.SellerID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("count active methods: %w", err))
	}
	makeDefault := req.SetAsDefault || count == 0

	now := time.Now().UTC()
	method := &domain.BackupPaymentMethod{
		ID:           uuid.New(),
		SellerID:     req.SellerID,
		GatewayToken: req.GatewayToken,
		Last4:        gwMethod.Last4,
		Brand:        gwMethod.Brand,
		ExpMonth:     gwMethod.ExpMonth,
		ExpYear:      gwMethod.ExpYear,
		IsDefault:    makeDefault,
		ExternalID:   generateExternalID(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if makeDefault {
		if err := s.methodRepo.ClearDefault(ctx, dbTx, req.SellerID); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("clear default: %w", err))
		}
	}
	if err := s.methodRepo.Create(ctx, dbTx, method); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create payment method: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("method_id", method.ID.String()).
		Str("seller_id", req.SellerID.String()).
		Str("card", method.DisplayName()).
		Bool("default", makeDefault).
		Msg("payment method attached")

	return method, nil
}

// Detach removes a payment method. Methods referenced by charge history are
// soft-deleted so past charges stay auditable; unused methods are detached
// at the gateway and removed outright.
func (s *RegistryServiceImpl) Detach(ctx context.Context, sellerID, methodID uuid.UUID) error {
	method, err := s.getOwnedMethod(ctx, sellerID, methodID)
	if err != nil {
		return err
	}

	chargeCount, err := s.chargeRepo.CountByMethod(ctx, method.ID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("count charges: %w", err))
	}

	if chargeCount > 0 {
		if err := s.methodRepo.SoftDelete(ctx, method.ID, time.Now().UTC()); err != nil {
			return apperror.InternalError(fmt.Errorf("soft delete method: %w", err))
		}
		s.log.Info().
			Str("method_id", method.ID.String()).
			Str("seller_id", sellerID.String()).
			Int64("charge_count", chargeCount).
			Msg("payment method soft-deleted, charge history retained")
		return nil
	}

	if err := s.gateway.DetachPaymentMethod(ctx, method.GatewayToken); err != nil {
		return apperror.ErrDetachmentFailed(fmt.Errorf("detach token: %w", err))
	}
	if err := s.methodRepo.HardDelete(ctx, method.ID); err != nil {
		return apperror.InternalError(fmt.Errorf("delete method: %w", err))
	}

	s.log.Info().
		Str("method_id", method.ID.String()).
		Str("seller_id", sellerID.String()).
		Msg("payment method detached")

	return nil
}

// SetDefault promotes a method to the seller's default inside one
// transaction, so at most one active default exists at any point.
func (s *RegistryServiceImpl) SetDefault(ctx context.Context, sellerID, methodID uuid.UUID) error {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	method, err := s.methodRepo.GetByIDForUpdate(ctx, dbTx, methodID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("lock method: %w", err))
	}
	if method == nil || method.SellerID != sellerID || method.IsDeleted() {
		return apperror.ErrMethodNotFound()
	}

	if err := s.methodRepo.ClearDefault(ctx, dbTx, sellerID); err != nil {
		return apperror.InternalError(fmt.Errorf("clear default: %w", err))
	}
	if err := s.methodRepo.SetDefault(ctx, dbTx, methodID); err != nil {
		return apperror.InternalError(fmt.Errorf("set default: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("method_id", methodID.String()).
		Str("seller_id", sellerID.String()).
		Msg("default payment method changed")

	return nil
}

// List returns the seller's active (non-deleted) payment methods.
func (s *RegistryServiceImpl) List(ctx context.Context, sellerID uuid.UUID) ([]domain.BackupPaymentMethod, error) {
	methods, err := s.methodRepo.ListActive(ctx, sellerID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list methods: %w", err))
	}
	return methods, nil
}

func (s *RegistryServiceImpl) getOwnedMethod(ctx context.Context, sellerID, methodID uuid.UUID) (*domain.BackupPaymentMethod, error) {
	method, err := s.methodRepo.GetByID(ctx, methodID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get method: %w", err))
	}
	if method == nil || method.SellerID != sellerID || method.IsDeleted() {
		return nil, apperror.ErrMethodNotFound()
	}
	return method, nil
}

// generateExternalID produces the opaque identifier exposed to clients in
// place of the gateway token.
func generateExternalID() string {
	b := make([]byte, 12)
	_, _ = rand.Read(b)
	return "bpm_" + hex.EncodeToString(b)
}
