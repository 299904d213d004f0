package handler

import (
	"balance-topup-service/internal/adapter/http/dto"
	"balance-topup-service/internal/adapter/http/middleware"
	"balance-topup-service/internal/core/ports"
	"balance-topup-service/pkg/apperror"
	"balance-topup-service/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SettingsHandler handles the seller settings endpoints: backup payment
// method management and the balance view.
type SettingsHandler struct {
	registry     ports.PaymentMethodRegistry
	reportingSvc ports.ReportingService
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(registry ports.PaymentMethodRegistry, reportingSvc ports.ReportingService) *SettingsHandler {
	return &SettingsHandler{registry: registry, reportingSvc: reportingSvc}
}

// AttachMethod handles POST /api/v1/settings/payment_methods.
func (h *SettingsHandler) AttachMethod(c *gin.Context) {
	sellerID, ok := sellerIDFromContext(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.AttachMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	method, err := h.registry.Attach(c.Request.Context(), ports.AttachRequest{
		SellerID:     sellerID,
		GatewayToken: req.GatewayToken,
		SetAsDefault: req.SetAsDefault,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToPaymentMethodResponse(method))
}

// ListMethods handles GET /api/v1/settings/payment_methods.
func (h *SettingsHandler) ListMethods(c *gin.Context) {
	sellerID, ok := sellerIDFromContext(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	methods, err := h.registry.List(c.Request.Context(), sellerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.PaymentMethodResponse, 0, len(methods))
	for i := range methods {
		items = append(items, dto.ToPaymentMethodResponse(&methods[i]))
	}

	response.OK(c, items)
}

// DetachMethod handles DELETE /api/v1/settings/payment_methods/:id.
func (h *SettingsHandler) DetachMethod(c *gin.Context) {
	sellerID, ok := sellerIDFromContext(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	methodID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid payment method id"))
		return
	}

	if err := h.registry.Detach(c.Request.Context(), sellerID, methodID); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"detached": true})
}

// SetDefaultMethod handles PUT /api/v1/settings/payment_methods/:id/default.
func (h *SettingsHandler) SetDefaultMethod(c *gin.Context) {
	sellerID, ok := sellerIDFromContext(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	methodID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid payment method id"))
		return
	}

	if err := h.registry.SetDefault(c.Request.Context(), sellerID, methodID); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"default": true})
}

// GetBalance handles GET /api/v1/settings/balance.
func (h *SettingsHandler) GetBalance(c *gin.Context) {
	sellerID, ok := sellerIDFromContext(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	balance, currency, err := h.reportingSvc.GetBalance(c.Request.Context(), sellerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.BalanceResponse{
		Balance:  balance,
		Currency: currency,
	})
}

// sellerIDFromContext extracts the authenticated seller id set by JWTAuth.
func sellerIDFromContext(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(middleware.CtxSellerID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
