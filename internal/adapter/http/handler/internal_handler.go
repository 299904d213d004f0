package handler

import (
	"balance-topup-service/internal/adapter/http/dto"
	"balance-topup-service/internal/core/ports"
	"balance-topup-service/pkg/apperror"
	"balance-topup-service/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// InternalHandler handles the service-to-service API consumed by the
// refund pipeline.
type InternalHandler struct {
	balanceSvc ports.BalanceService
}

// NewInternalHandler creates a new InternalHandler.
func NewInternalHandler(balanceSvc ports.BalanceService) *InternalHandler {
	return &InternalHandler{balanceSvc: balanceSvc}
}

// EnsureCovered handles POST /internal/v1/refunds/ensure-covered.
// It reports whether the seller's available balance covers the refund
// amount, raising an asynchronous top-up charge for any shortfall.
func (h *InternalHandler) EnsureCovered(c *gin.Context) {
	var req dto.EnsureCoveredRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	sellerID, err := uuid.Parse(req.SellerID)
	if err != nil {
		response.Error(c, apperror.Validation("invalid seller id"))
		return
	}
	refundID, err := uuid.Parse(req.RefundID)
	if err != nil {
		response.Error(c, apperror.Validation("invalid refund id"))
		return
	}

	result, err := h.balanceSvc.EnsureBalanceCovered(c.Request.Context(), ports.CoverageRequest{
		SellerID: sellerID,
		RefundID: refundID,
		Amount:   req.Amount,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := dto.EnsureCoveredResponse{
		Covered: result.Covered,
		Errors:  result.Errors,
	}
	if result.Charge != nil {
		charge := dto.ToTopUpResponse(result.Charge)
		resp.Charge = &charge
	}

	response.OK(c, resp)
}
