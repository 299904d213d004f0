package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"balance-topup-service/internal/adapter/http/dto"
	"balance-topup-service/internal/adapter/http/middleware"
	"balance-topup-service/internal/core/domain"
	"balance-topup-service/internal/core/ports"
	"balance-topup-service/internal/core/ports/mocks"
	"balance-topup-service/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// --- Auth Handler Tests ---

func TestRegister_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	sellerID := uuid.New()
	mockAuth.EXPECT().Register(gomock.Any(), ports.RegisterRequest{
		Username:    "craftystore",
		Password:    "password123",
		DisplayName: "Crafty Store",
		Currency:    "USD",
	}).Return(&domain.Seller{
		ID:          sellerID,
		Username:    "craftystore",
		DisplayName: "Crafty Store",
		Currency:    "USD",
		Status:      domain.SellerStatusActive,
	}, nil)

	body, _ := json.Marshal(dto.RegisterRequest{
		Username:    "craftystore",
		Password:    "password123",
		DisplayName: "Crafty Store",
		Currency:    "USD",
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Register(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, sellerID.String(), data["seller_id"])
	assert.Equal(t, "craftystore", data["username"])
	assert.Equal(t, "USD", data["currency"])
}

func TestRegister_ValidationError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	// Empty body => binding error
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader([]byte("{}")))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Register(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegister_UsernameTaken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	mockAuth.EXPECT().Register(gomock.Any(), gomock.Any()).Return(nil, apperror.ErrUsernameExists())

	body, _ := json.Marshal(dto.RegisterRequest{
		Username:    "taken",
		Password:    "password123",
		DisplayName: "Shop",
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Register(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLogin_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	expiry := time.Now().Add(24 * time.Hour)
	mockAuth.EXPECT().Login(gomock.Any(), "craftystore", "password123").Return("jwt-token-123", expiry, nil)

	body, _ := json.Marshal(dto.LoginRequest{
		Username: "craftystore",
		Password: "password123",
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Login(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "jwt-token-123", data["token"])
}

func TestLogin_InvalidCredentials(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	mockAuth.EXPECT().Login(gomock.Any(), "bad", "badpassword").Return("", time.Time{}, apperror.ErrInvalidCredentials())

	body, _ := json.Marshal(dto.LoginRequest{
		Username: "bad",
		Password: "badpassword",
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Login(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// --- Settings Handler Tests ---

func TestAttachMethod_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRegistry := mocks.NewMockPaymentMethodRegistry(ctrl)
	h := NewSettingsHandler(mockRegistry, nil)

	sellerID := uuid.New()
	methodID := uuid.New()

	mockRegistry.EXPECT().Attach(gomock.Any(), ports.AttachRequest{
		SellerID:     sellerID,
		GatewayToken: "pm_test_visa",
		SetAsDefault: true,
	}).Return(&domain.BackupPaymentMethod{
		ID:         methodID,
		SellerID:   sellerID,
		ExternalID: "pm_test_visa",
		Brand:      "Visa",
		Last4:      "4242",
		ExpMonth:   12,
		ExpYear:    2030,
		IsDefault:  true,
		CreatedAt:  time.Now(),
	}, nil)

	body, _ := json.Marshal(dto.AttachMethodRequest{
		GatewayToken: "pm_test_visa",
		SetAsDefault: true,
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.CtxSellerID, sellerID)

	h.AttachMethod(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, methodID.String(), data["id"])
	assert.Equal(t, "4242", data["last4"])
	assert.Equal(t, true, data["is_default"])
}

func TestAttachMethod_MissingSellerID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRegistry := mocks.NewMockPaymentMethodRegistry(ctrl)
	h := NewSettingsHandler(mockRegistry, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)

	h.AttachMethod(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAttachMethod_TokenInUse(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRegistry := mocks.NewMockPaymentMethodRegistry(ctrl)
	h := NewSettingsHandler(mockRegistry, nil)

	sellerID := uuid.New()
	mockRegistry.EXPECT().Attach(gomock.Any(), gomock.Any()).Return(nil, apperror.ErrTokenInUse())

	body, _ := json.Marshal(dto.AttachMethodRequest{GatewayToken: "pm_claimed"})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.CtxSellerID, sellerID)

	h.AttachMethod(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestListMethods_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRegistry := mocks.NewMockPaymentMethodRegistry(ctrl)
	h := NewSettingsHandler(mockRegistry, nil)

	sellerID := uuid.New()
	mockRegistry.EXPECT().List(gomock.Any(), sellerID).Return([]domain.BackupPaymentMethod{
		{ID: uuid.New(), SellerID: sellerID, Brand: "Visa", Last4: "4242", IsDefault: true, CreatedAt: time.Now()},
		{ID: uuid.New(), SellerID: sellerID, Brand: "Mastercard", Last4: "5100", CreatedAt: time.Now()},
	}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Set(middleware.CtxSellerID, sellerID)

	h.ListMethods(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	items := resp["data"].([]interface{})
	assert.Len(t, items, 2)
}

func TestDetachMethod_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRegistry := mocks.NewMockPaymentMethodRegistry(ctrl)
	h := NewSettingsHandler(mockRegistry, nil)

	sellerID := uuid.New()
	methodID := uuid.New()
	mockRegistry.EXPECT().Detach(gomock.Any(), sellerID, methodID).Return(nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodDelete, "/", nil)
	c.Params = gin.Params{{Key: "id", Value: methodID.String()}}
	c.Set(middleware.CtxSellerID, sellerID)

	h.DetachMethod(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDetachMethod_InvalidID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRegistry := mocks.NewMockPaymentMethodRegistry(ctrl)
	h := NewSettingsHandler(mockRegistry, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodDelete, "/", nil)
	c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}
	c.Set(middleware.CtxSellerID, uuid.New())

	h.DetachMethod(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDetachMethod_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRegistry := mocks.NewMockPaymentMethodRegistry(ctrl)
	h := NewSettingsHandler(mockRegistry, nil)

	sellerID := uuid.New()
	methodID := uuid.New()
	mockRegistry.EXPECT().Detach(gomock.Any(), sellerID, methodID).Return(apperror.ErrMethodNotFound())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodDelete, "/", nil)
	c.Params = gin.Params{{Key: "id", Value: methodID.String()}}
	c.Set(middleware.CtxSellerID, sellerID)

	h.DetachMethod(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSetDefaultMethod_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRegistry := mocks.NewMockPaymentMethodRegistry(ctrl)
	h := NewSettingsHandler(mockRegistry, nil)

	sellerID := uuid.New()
	methodID := uuid.New()
	mockRegistry.EXPECT().SetDefault(gomock.Any(), sellerID, methodID).Return(nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPut, "/", nil)
	c.Params = gin.Params{{Key: "id", Value: methodID.String()}}
	c.Set(middleware.CtxSellerID, sellerID)

	h.SetDefaultMethod(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetBalance_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockReporting := mocks.NewMockReportingService(ctrl)
	h := NewSettingsHandler(nil, mockReporting)

	sellerID := uuid.New()
	mockReporting.EXPECT().GetBalance(gomock.Any(), sellerID).Return(int64(100000), "USD", nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Set(middleware.CtxSellerID, sellerID)

	h.GetBalance(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(100000), data["balance"])
	assert.Equal(t, "USD", data["currency"])
}

// --- TopUp Handler Tests ---

func TestCreateTopUp_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockTopUp := mocks.NewMockTopUpService(ctrl)
	h := NewTopUpHandler(mockTopUp, nil)

	sellerID := uuid.New()
	chargeID := uuid.New()
	methodID := uuid.New()
	now := time.Now()

	mockTopUp.EXPECT().Charge(gomock.Any(), ports.ChargeRequest{
		SellerID: sellerID,
		Amount:   5000,
	}).Return(&domain.TopUpCharge{
		ID:              chargeID,
		SellerID:        sellerID,
		PaymentMethodID: methodID,
		Amount:          5000,
		Currency:        "USD",
		Status:          domain.TopUpStatusPending,
		CreatedAt:       now,
	}, nil)

	body, _ := json.Marshal(dto.TopUpRequest{Amount: 5000})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.CtxSellerID, sellerID)

	h.CreateTopUp(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, chargeID.String(), data["id"])
	assert.Equal(t, "PENDING", data["status"])
}

func TestCreateTopUp_ExplicitMethod(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockTopUp := mocks.NewMockTopUpService(ctrl)
	h := NewTopUpHandler(mockTopUp, nil)

	sellerID := uuid.New()
	methodID := uuid.New()

	mockTopUp.EXPECT().Charge(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ interface{}, req ports.ChargeRequest) (*domain.TopUpCharge, error) {
			require.NotNil(t, req.MethodID)
			assert.Equal(t, methodID, *req.MethodID)
			return &domain.TopUpCharge{
				ID:              uuid.New(),
				SellerID:        sellerID,
				PaymentMethodID: methodID,
				Amount:          2500,
				Currency:        "USD",
				Status:          domain.TopUpStatusPending,
				CreatedAt:       time.Now(),
			}, nil
		})

	methodIDStr := methodID.String()
	body, _ := json.Marshal(dto.TopUpRequest{Amount: 2500, MethodID: &methodIDStr})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.CtxSellerID, sellerID)

	h.CreateTopUp(c)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCreateTopUp_BelowMinimum(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockTopUp := mocks.NewMockTopUpService(ctrl)
	h := NewTopUpHandler(mockTopUp, nil)

	sellerID := uuid.New()
	mockTopUp.EXPECT().Charge(gomock.Any(), gomock.Any()).Return(nil, apperror.ErrInsufficientAmount(domain.MinChargeAmount))

	body, _ := json.Marshal(dto.TopUpRequest{Amount: 50})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.CtxSellerID, sellerID)

	h.CreateTopUp(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "TOPUP_001", resp["error_code"])
}

func TestCreateTopUp_NoPaymentMethod(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockTopUp := mocks.NewMockTopUpService(ctrl)
	h := NewTopUpHandler(mockTopUp, nil)

	sellerID := uuid.New()
	mockTopUp.EXPECT().Charge(gomock.Any(), gomock.Any()).Return(nil, apperror.ErrNoPaymentMethod())

	body, _ := json.Marshal(dto.TopUpRequest{Amount: 5000})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.CtxSellerID, sellerID)

	h.CreateTopUp(c)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestListTopUps_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockReporting := mocks.NewMockReportingService(ctrl)
	h := NewTopUpHandler(nil, mockReporting)

	sellerID := uuid.New()
	now := time.Now()

	mockReporting.EXPECT().ListTopUps(gomock.Any(), gomock.Any()).Return([]domain.TopUpCharge{
		{
			ID:              uuid.New(),
			SellerID:        sellerID,
			PaymentMethodID: uuid.New(),
			Amount:          5000,
			Currency:        "USD",
			Status:          domain.TopUpStatusSuccessful,
			CreatedAt:       now,
			ProcessedAt:     &now,
		},
	}, int64(1), nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/?page=1&page_size=20", nil)
	c.Set(middleware.CtxSellerID, sellerID)

	h.ListTopUps(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	items := data["items"].([]interface{})
	assert.Len(t, items, 1)
	assert.Equal(t, float64(1), data["total"])
	assert.Equal(t, float64(1), data["total_pages"])
}

func TestListTopUps_StatusFilter(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockReporting := mocks.NewMockReportingService(ctrl)
	h := NewTopUpHandler(nil, mockReporting)

	sellerID := uuid.New()
	mockReporting.EXPECT().ListTopUps(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ interface{}, params ports.TopUpListParams) ([]domain.TopUpCharge, int64, error) {
			require.NotNil(t, params.Status)
			assert.Equal(t, domain.TopUpStatusFailed, *params.Status)
			return nil, 0, nil
		})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/?status=FAILED", nil)
	c.Set(middleware.CtxSellerID, sellerID)

	h.ListTopUps(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListTopUps_ServiceError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockReporting := mocks.NewMockReportingService(ctrl)
	h := NewTopUpHandler(nil, mockReporting)

	sellerID := uuid.New()
	mockReporting.EXPECT().ListTopUps(gomock.Any(), gomock.Any()).Return(nil, int64(0), errors.New("db down"))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Set(middleware.CtxSellerID, sellerID)

	h.ListTopUps(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestGetStats_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockReporting := mocks.NewMockReportingService(ctrl)
	h := NewTopUpHandler(nil, mockReporting)

	sellerID := uuid.New()
	mockReporting.EXPECT().GetStats(gomock.Any(), sellerID).Return(&ports.TopUpStats{
		TotalCharges: 10,
		Successful:   7,
		Failed:       2,
		Pending:      1,
		TotalLoaded:  35000,
	}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Set(middleware.CtxSellerID, sellerID)

	h.GetStats(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(10), data["total_charges"])
	assert.Equal(t, float64(35000), data["total_loaded"])
}

// --- Internal Handler Tests ---

func TestEnsureCovered_Covered(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockBalance := mocks.NewMockBalanceService(ctrl)
	h := NewInternalHandler(mockBalance)

	sellerID := uuid.New()
	refundID := uuid.New()

	mockBalance.EXPECT().EnsureBalanceCovered(gomock.Any(), ports.CoverageRequest{
		SellerID: sellerID,
		RefundID: refundID,
		Amount:   10000,
	}).Return(&ports.CoverageResult{Covered: true}, nil)

	body, _ := json.Marshal(dto.EnsureCoveredRequest{
		SellerID: sellerID.String(),
		RefundID: refundID.String(),
		Amount:   10000,
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.EnsureCovered(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, true, data["covered"])
	assert.Nil(t, data["charge"])
}

func TestEnsureCovered_ShortfallRaisesCharge(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockBalance := mocks.NewMockBalanceService(ctrl)
	h := NewInternalHandler(mockBalance)

	sellerID := uuid.New()
	refundID := uuid.New()
	chargeID := uuid.New()

	mockBalance.EXPECT().EnsureBalanceCovered(gomock.Any(), gomock.Any()).Return(&ports.CoverageResult{
		Covered: false,
		Errors:  []string{"cannot refund, you need to add credits first"},
		Charge: &domain.TopUpCharge{
			ID:              chargeID,
			SellerID:        sellerID,
			PaymentMethodID: uuid.New(),
			Amount:          4000,
			Currency:        "USD",
			Status:          domain.TopUpStatusPending,
			RefundID:        &refundID,
			CreatedAt:       time.Now(),
		},
	}, nil)

	body, _ := json.Marshal(dto.EnsureCoveredRequest{
		SellerID: sellerID.String(),
		RefundID: refundID.String(),
		Amount:   10000,
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.EnsureCovered(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, false, data["covered"])
	charge := data["charge"].(map[string]interface{})
	assert.Equal(t, chargeID.String(), charge["id"])
	assert.Equal(t, refundID.String(), charge["refund_id"])
}

func TestEnsureCovered_InvalidBody(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockBalance := mocks.NewMockBalanceService(ctrl)
	h := NewInternalHandler(mockBalance)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte("{}")))
	c.Request.Header.Set("Content-Type", "application/json")

	h.EnsureCovered(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// --- Health Check Test ---

func TestHealthCheck(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

	HealthCheck()(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
}
