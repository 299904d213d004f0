package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"balance-topup-service/internal/core/domain"
	"balance-topup-service/internal/core/ports"
	"balance-topup-service/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const idempotencyTTL = 24 * time.Hour

// TopUpServiceImpl implements ports.TopUpService.
type TopUpServiceImpl struct {
	chargeRepo ports.TopUpChargeRepository
	methodRepo ports.PaymentMethodRepository
	sellerRepo ports.SellerRepository
	ledgerRepo ports.LedgerRepository
	idempRepo  ports.IdempotencyRepository
	idempCache ports.IdempotencyCache
	gateway    ports.PaymentGateway
	queue      ports.ChargeQueue
	transactor ports.DBTransactor
	log        zerolog.Logger
}

// NewTopUpService creates a new TopUpServiceImpl.
func NewTopUpService(
	chargeRepo ports.TopUpChargeRepository,
	methodRepo ports.PaymentMethodRepository,
	sellerRepo ports.SellerRepository,
	ledgerRepo ports.LedgerRepository,
	idempRepo ports.IdempotencyRepository,
	idempCache ports.IdempotencyCache,
	gateway ports.PaymentGateway,
	queue ports.ChargeQueue,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *TopUpServiceImpl {
	return &TopUpServiceImpl{
		chargeRepo: chargeRepo,
		methodRepo: methodRepo,
		sellerRepo: sellerRepo,
		ledgerRepo: ledgerRepo,
		idempRepo:  idempRepo,
		idempCache: idempCache,
		gateway:    gateway,
		queue:      queue,
		transactor: transactor,
		log:        log,
	}
}

// Charge validates the request, persists a PENDING charge and enqueues it
// for asynchronous gateway processing.
func (s *TopUpServiceImpl) Charge(ctx context.Context, req ports.ChargeRequest) (*domain.TopUpCharge, error) {
	if req.Amount < domain.MinChargeAmount {
		return nil, apperror.ErrInsufficientAmount(domain.MinChargeAmount)
	}

	var idempKey string
	if req.ReferenceKey != "" {
		idempKey = domain.BuildChargeIdempotencyKey(req.SellerID, req.ReferenceKey)

		// Layer 1: Redis idempotency check
		cached, err := s.idempCache.Get(ctx, idempKey)
		if err != nil {
			s.log.Warn().Err(err).Str("key", idempKey).Msg("redis idempotency check failed, falling through to DB")
		}
		if cached != nil {
			return s.unmarshalCachedCharge(cached)
		}

		// Layer 2: DB idempotency check
		idempLog, err := s.idempRepo.Get(ctx, idempKey)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("db idempotency check: %w", err))
		}
		if idempLog != nil {
			return s.unmarshalCachedCharge(idempLog.ResponseJSON)
		}
	}

	seller, err := s.sellerRepo.GetByID(ctx, req.SellerID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get seller: %w", err))
	}
	if seller == nil {
		return nil, apperror.ErrNotFound("seller")
	}

	method, err := s.resolveMethod(ctx, req)
	if err != nil {
		return nil, err
	}
	if method.IsExpired(time.Now().UTC()) {
		return nil, apperror.ErrPaymentMethodExpired()
	}

	now := time.Now().UTC()
	charge := &domain.TopUpCharge{
		ID:              uuid.New(),
		SellerID:        req.SellerID,
		PaymentMethodID: method.ID,
		Amount:          req.Amount,
		Currency:        seller.Currency,
		Status:          domain.TopUpStatusPending,
		RefundID:        req.RefundID,
		CreatedAt:       now,
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.chargeRepo.Create(ctx, dbTx, charge); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create charge: %w", err))
	}

	var respJSON []byte
	if idempKey != "" {
		respJSON, err = json.Marshal(charge)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("marshal response: %w", err))
		}
		idempLogEntry := &domain.IdempotencyLog{
			Key:          idempKey,
			ChargeID:     charge.ID,
			ResponseJSON: respJSON,
			CreatedAt:    now,
		}
		if err := s.idempRepo.Create(ctx, dbTx, idempLogEntry); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("save idempotency log: %w", err))
		}
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	// Post-process: cache in Redis (best-effort)
	if idempKey != "" {
		if err := s.idempCache.Set(ctx, idempKey, respJSON, idempotencyTTL); err != nil {
			s.log.Warn().Err(err).Str("key", idempKey).Msg("failed to cache idempotency in redis")
		}
	}

	// Enqueue for async processing. A failed enqueue is not fatal: the
	// reconciler re-enqueues stale pending charges.
	if err := s.queue.Enqueue(ctx, ports.ChargeTask{ChargeID: charge.ID}); err != nil {
		s.log.Warn().Err(err).Str("charge_id", charge.ID.String()).Msg("failed to enqueue charge, reconciler will pick it up")
	}

	s.log.Info().
		Str("charge_id", charge.ID.String()).
		Str("seller_id", req.SellerID.String()).
		Int64("amount", req.Amount).
		Msg("top-up charge created")

	return charge, nil
}

// resolveMethod picks the payment method to charge: the explicitly
// requested one or the seller's current default.
func (s *TopUpServiceImpl) resolveMethod(ctx context.Context, req ports.ChargeRequest) (*domain.BackupPaymentMethod, error) {
	if req.MethodID != nil {
		method, err := s.methodRepo.GetByID(ctx, *req.MethodID)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("get payment method: %w", err))
		}
		if method == nil || method.SellerID != req.SellerID || method.IsDeleted() {
			return nil, apperror.ErrMethodNotFound()
		}
		return method, nil
	}

	method, err := s.methodRepo.GetDefault(ctx, req.SellerID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get default payment method: %w", err))
	}
	if method == nil {
		return nil, apperror.ErrNoPaymentMethod()
	}
	return method, nil
}

// ProcessCharge runs the gateway call for a pending charge and settles it.
// A terminal charge is returned untouched, which makes queue redeliveries
// and reconciler re-enqueues harmless.
func (s *TopUpServiceImpl) ProcessCharge(ctx context.Context, chargeID uuid.UUID) (*domain.TopUpCharge, error) {
	charge, err := s.chargeRepo.GetByID(ctx, chargeID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get charge: %w", err))
	}
	if charge == nil {
		return nil, apperror.ErrNotFound("top-up charge")
	}
	if charge.IsTerminal() {
		s.log.Debug().
			Str("charge_id", charge.ID.String()).
			Str("status", string(charge.Status)).
			Msg("charge already settled, skipping")
		return charge, nil
	}

	method, err := s.methodRepo.GetByID(ctx, charge.PaymentMethodID)
	if err != nil {
		return charge, apperror.InternalError(fmt.Errorf("get payment method: %w", err))
	}
	if method == nil {
		return s.settleFailed(ctx, charge, "payment method no longer exists", apperror.ErrNoPaymentMethod())
	}

	seller, err := s.sellerRepo.GetByID(ctx, charge.SellerID)
	if err != nil {
		return charge, apperror.InternalError(fmt.Errorf("get seller: %w", err))
	}
	if seller == nil {
		return charge, apperror.ErrNotFound("seller")
	}

	gwCharge, err := s.gateway.CreateOffSessionCharge(ctx, ports.OffSessionChargeRequest{
		Amount:             charge.Amount,
		Currency:           charge.Currency,
		CustomerID:         seller.GatewayCustomerID,
		PaymentMethodToken: method.GatewayToken,
		Metadata: map[string]string{
			"seller_id":       charge.SellerID.String(),
			"topup_charge_id": charge.ID.String(),
		},
	})
	if err != nil {
		var declined *ports.CardDeclinedError
		if errors.As(err, &declined) {
			return s.settleFailed(ctx, charge, declined.Message, apperror.ErrCardDeclined(declined.Message, err))
		}
		appErr := apperror.ErrGatewayFailure(err)
		return s.settleFailed(ctx, charge, appErr.Message, appErr)
	}

	now := time.Now().UTC()
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return charge, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.chargeRepo.MarkSuccessful(ctx, dbTx, charge.ID, gwCharge.ID, now); err != nil {
		return charge, apperror.InternalError(fmt.Errorf("mark charge successful: %w", err))
	}

	entry := &domain.LedgerEntry{
		ID:            uuid.New(),
		SellerID:      charge.SellerID,
		TopUpChargeID: charge.ID,
		Amount:        charge.Amount,
		Currency:      charge.Currency,
		CreatedAt:     now,
	}
	if err := s.ledgerRepo.Create(ctx, dbTx, entry); err != nil {
		return charge, apperror.InternalError(fmt.Errorf("create ledger entry: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return charge, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	charge.Status = domain.TopUpStatusSuccessful
	charge.GatewayChargeID = &gwCharge.ID
	charge.ProcessedAt = &now

	s.log.Info().
		Str("charge_id", charge.ID.String()).
		Str("seller_id", charge.SellerID.String()).
		Str("gateway_charge_id", gwCharge.ID).
		Int64("amount", charge.Amount).
		Msg("top-up charge settled")

	return charge, nil
}

// settleFailed marks the charge FAILED with the gateway's message and
// returns the classified charge error.
func (s *TopUpServiceImpl) settleFailed(ctx context.Context, charge *domain.TopUpCharge, message string, chargeErr error) (*domain.TopUpCharge, error) {
	now := time.Now().UTC()
	if err := s.chargeRepo.MarkFailed(ctx, charge.ID, message, now); err != nil {
		return charge, apperror.InternalError(fmt.Errorf("mark charge failed: %w", err))
	}

	charge.Status = domain.TopUpStatusFailed
	charge.ErrorMessage = &message
	charge.ProcessedAt = &now

	s.log.Warn().
		Str("charge_id", charge.ID.String()).
		Str("seller_id", charge.SellerID.String()).
		Str("error", message).
		Msg("top-up charge failed")

	return charge, chargeErr
}

// unmarshalCachedCharge deserializes a cached charge response.
func (s *TopUpServiceImpl) unmarshalCachedCharge(data []byte) (*domain.TopUpCharge, error) {
	charge := &domain.TopUpCharge{}
	if err := json.Unmarshal(data, charge); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("unmarshal cached charge: %w", err))
	}
	return charge, nil
}
