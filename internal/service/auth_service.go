package service

import (
	"context"
	"fmt"
	"time"

	"balance-topup-service/internal/core/domain"
	"balance-topup-service/internal/core/ports"
	"balance-topup-service/pkg/apperror"

	"github.com/google/uuid"
)

// AuthServiceImpl implements ports.AuthService.
type AuthServiceImpl struct {
	sellerRepo ports.SellerRepository
	hashSvc    ports.HashService
	tokenSvc   ports.TokenService
	gateway    ports.PaymentGateway
}

// NewAuthService creates a new AuthServiceImpl.
func NewAuthService(
	sellerRepo ports.SellerRepository,
	hashSvc ports.HashService,
	tokenSvc ports.TokenService,
	gateway ports.PaymentGateway,
) *AuthServiceImpl {
	return &AuthServiceImpl{
		sellerRepo: sellerRepo,
		hashSvc:    hashSvc,
		tokenSvc:   tokenSvc,
		gateway:    gateway,
	}
}

// Register creates a seller account together with its gateway customer.
func (s *AuthServiceImpl) Register(ctx context.Context, req ports.RegisterRequest) (*domain.Seller, error) {
	existing, err := s.sellerRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("check username: %w", err))
	}
	if existing != nil {
		return nil, apperror.ErrUsernameExists()
	}

	passwordHash, err := s.hashSvc.Hash(req.Password)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("hash password: %w", err))
	}

	customerID, err := s.gateway.CreateCustomer(ctx, req.DisplayName)
	if err != nil {
		return nil, apperror.ErrGatewayFailure(fmt.Errorf("create gateway customer: %w", err))
	}

	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	now := time.Now().UTC()
	seller := &domain.Seller{
		ID:                uuid.New(),
		Username:          req.Username,
		PasswordHash:      passwordHash,
		DisplayName:       req.DisplayName,
		GatewayCustomerID: customerID,
		Currency:          currency,
		Status:            domain.SellerStatusActive,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.sellerRepo.Create(ctx, seller); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create seller: %w", err))
	}

	return seller, nil
}

// Login validates credentials and returns a JWT token.
func (s *AuthServiceImpl) Login(ctx context.Context, username, password string) (string, time.Time, error) {
	seller, err := s.sellerRepo.GetByUsername(ctx, username)
	if err != nil {
		return "", time.Time{}, apperror.InternalError(fmt.Errorf("find seller: %w", err))
	}
	if seller == nil {
		return "", time.Time{}, apperror.ErrInvalidCredentials()
	}

	valid, err := s.hashSvc.Verify(password, seller.PasswordHash)
	if err != nil {
		return "", time.Time{}, apperror.InternalError(fmt.Errorf("verify password: %w", err))
	}
	if !valid {
		return "", time.Time{}, apperror.ErrInvalidCredentials()
	}

	if !seller.IsActive() {
		return "", time.Time{}, apperror.ErrSellerSuspended()
	}

	token, expiry, err := s.tokenSvc.Generate(seller.ID)
	if err != nil {
		return "", time.Time{}, apperror.InternalError(fmt.Errorf("generate token: %w", err))
	}

	return token, expiry, nil
}
