package dto

import (
	"time"

	"balance-topup-service/internal/core/domain"
)

// RegisterRequest is the request body for seller registration.
type RegisterRequest struct {
	Username    string `json:"username" binding:"required,min=3,max=50,safe_id"`
	Password    string `json:"password" binding:"required,min=8,max=128"`
	DisplayName string `json:"display_name" binding:"required,min=1,max=100"`
	Currency    string `json:"currency" binding:"omitempty,len=3"`
}

// LoginRequest is the request body for seller login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterResponse is the response body for successful registration.
type RegisterResponse struct {
	SellerID    string `json:"seller_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Currency    string `json:"currency"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"` // Unix timestamp
}

// AttachMethodRequest is the request body for attaching a backup card.
type AttachMethodRequest struct {
	GatewayToken string `json:"gateway_token" binding:"required,max=100,safe_id"`
	SetAsDefault bool   `json:"set_as_default"`
}

// PaymentMethodResponse is the client view of a backup payment method.
// The gateway token never leaves the server.
type PaymentMethodResponse struct {
	ID         string `json:"id"`
	ExternalID string `json:"external_id"`
	Brand      string `json:"brand"`
	Last4      string `json:"last4"`
	ExpMonth   int    `json:"exp_month"`
	ExpYear    int    `json:"exp_year"`
	IsDefault  bool   `json:"is_default"`
	CreatedAt  string `json:"created_at"`
}

// TopUpRequest is the request body for a manual balance top-up.
type TopUpRequest struct {
	Amount       int64   `json:"amount" binding:"required,gt=0"`
	MethodID     *string `json:"method_id,omitempty" binding:"omitempty,uuid"`
	ReferenceKey string  `json:"reference_key" binding:"omitempty,max=100,safe_id"`
}

// TopUpResponse is the response body for top-up charge results.
type TopUpResponse struct {
	ID              string  `json:"id"`
	Amount          int64   `json:"amount"`
	Currency        string  `json:"currency"`
	Status          string  `json:"status"`
	PaymentMethodID string  `json:"payment_method_id"`
	RefundID        *string `json:"refund_id,omitempty"`
	ErrorMessage    *string `json:"error_message,omitempty"`
	CreatedAt       string  `json:"created_at"`
	ProcessedAt     *string `json:"processed_at,omitempty"`
}

// TopUpListResponse wraps a paginated top-up charge list.
type TopUpListResponse struct {
	Items      []TopUpResponse `json:"items"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	TotalPages int             `json:"total_pages"`
}

// BalanceResponse is the response for a balance query.
type BalanceResponse struct {
	Balance  int64  `json:"balance"`
	Currency string `json:"currency"`
}

// StatsResponse is the response for top-up statistics.
type StatsResponse struct {
	TotalCharges int64 `json:"total_charges"`
	Successful   int64 `json:"successful"`
	Failed       int64 `json:"failed"`
	Pending      int64 `json:"pending"`
	TotalLoaded  int64 `json:"total_loaded"`
}

// EnsureCoveredRequest is the internal request from the refund pipeline.
type EnsureCoveredRequest struct {
	SellerID string `json:"seller_id" binding:"required,uuid"`
	RefundID string `json:"refund_id" binding:"required,uuid"`
	Amount   int64  `json:"amount" binding:"required,gt=0"`
}

// EnsureCoveredResponse reports whether a refund amount is covered.
type EnsureCoveredResponse struct {
	Covered bool           `json:"covered"`
	Errors  []string       `json:"errors,omitempty"`
	Charge  *TopUpResponse `json:"charge,omitempty"`
}

// ToPaymentMethodResponse maps a domain payment method to its client view.
func ToPaymentMethodResponse(m *domain.BackupPaymentMethod) PaymentMethodResponse {
	return PaymentMethodResponse{
		ID:         m.ID.String(),
		ExternalID: m.ExternalID,
		Brand:      m.Brand,
		Last4:      m.Last4,
		ExpMonth:   m.ExpMonth,
		ExpYear:    m.ExpYear,
		IsDefault:  m.IsDefault,
		CreatedAt:  m.CreatedAt.Format(time.RFC3339),
	}
}

// ToTopUpResponse maps a domain charge to its client view.
func ToTopUpResponse(c *domain.TopUpCharge) TopUpResponse {
	resp := TopUpResponse{
		ID:              c.ID.String(),
		Amount:          c.Amount,
		Currency:        c.Currency,
		Status:          string(c.Status),
		PaymentMethodID: c.PaymentMethodID.String(),
		ErrorMessage:    c.ErrorMessage,
		CreatedAt:       c.CreatedAt.Format(time.RFC3339),
	}
	if c.RefundID != nil {
		id := c.RefundID.String()
		resp.RefundID = &id
	}
	if c.ProcessedAt != nil {
		ts := c.ProcessedAt.Format(time.RFC3339)
		resp.ProcessedAt = &ts
	}
	return resp
}
