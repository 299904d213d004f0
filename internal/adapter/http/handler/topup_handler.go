package handler

import (
	"math"
	"strconv"

	"balance-topup-service/internal/adapter/http/dto"
	"balance-topup-service/internal/core/domain"
	"balance-topup-service/internal/core/ports"
	"balance-topup-service/pkg/apperror"
	"balance-topup-service/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TopUpHandler handles manual top-up and top-up history endpoints.
type TopUpHandler struct {
	topUpSvc     ports.TopUpService
	reportingSvc ports.ReportingService
}

// NewTopUpHandler creates a new TopUpHandler.
func NewTopUpHandler(topUpSvc ports.TopUpService, reportingSvc ports.ReportingService) *TopUpHandler {
	return &TopUpHandler{topUpSvc: topUpSvc, reportingSvc: reportingSvc}
}

// CreateTopUp handles POST /api/v1/topups. The charge is accepted as
// PENDING and processed asynchronously.
func (h *TopUpHandler) CreateTopUp(c *gin.Context) {
	sellerID, ok := sellerIDFromContext(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.TopUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	chargeReq := ports.ChargeRequest{
		SellerID:     sellerID,
		Amount:       req.Amount,
		ReferenceKey: req.ReferenceKey,
	}
	if req.MethodID != nil {
		methodID, err := uuid.Parse(*req.MethodID)
		if err != nil {
			response.Error(c, apperror.Validation("invalid payment method id"))
			return
		}
		chargeReq.MethodID = &methodID
	}

	charge, err := h.topUpSvc.Charge(c.Request.Context(), chargeReq)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToTopUpResponse(charge))
}

// ListTopUps handles GET /api/v1/topups.
func (h *TopUpHandler) ListTopUps(c *gin.Context) {
	sellerID, ok := sellerIDFromContext(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	params := ports.TopUpListParams{
		SellerID: sellerID,
		Page:     page,
		PageSize: pageSize,
	}

	if s := c.Query("status"); s != "" {
		status := domain.TopUpStatus(s)
		params.Status = &status
	}
	if f := c.Query("from"); f != "" {
		if v, err := strconv.ParseInt(f, 10, 64); err == nil {
			params.From = &v
		}
	}
	if t := c.Query("to"); t != "" {
		if v, err := strconv.ParseInt(t, 10, 64); err == nil {
			params.To = &v
		}
	}

	charges, total, err := h.reportingSvc.ListTopUps(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.TopUpResponse, 0, len(charges))
	for i := range charges {
		items = append(items, dto.ToTopUpResponse(&charges[i]))
	}

	totalPages := int(math.Ceil(float64(total) / float64(pageSize)))

	response.OK(c, dto.TopUpListResponse{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	})
}

// GetStats handles GET /api/v1/topups/stats.
func (h *TopUpHandler) GetStats(c *gin.Context) {
	sellerID, ok := sellerIDFromContext(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	stats, err := h.reportingSvc.GetStats(c.Request.Context(), sellerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.StatsResponse{
		TotalCharges: stats.TotalCharges,
		Successful:   stats.Successful,
		Failed:       stats.Failed,
		Pending:      stats.Pending,
		TotalLoaded:  stats.TotalLoaded,
	})
}
