package integration

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	httpHandler "balance-topup-service/internal/adapter/http/handler"
	redisStorage "balance-topup-service/internal/adapter/storage/redis"
	"balance-topup-service/internal/service"
	"balance-topup-service/internal/worker"
	"balance-topup-service/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testInternalSecret = "test-internal-secret-32bytes!!!!"

// testApp builds a full application stack with in-memory postgres repos, a
// fake card gateway and miniredis. This exercises the real HTTP layer,
// middleware, handlers, services, Redis stores and the charge worker
// end-to-end.

type testApp struct {
	server  *httptest.Server
	redis   *miniredis.Miniredis
	gateway *fakeGateway
	queue   *redisStorage.ChargeQueue
	worker  *worker.ChargeWorker
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	// Start miniredis
	mr, err := miniredis.Run()
	require.NoError(t, err)

	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})

	// Redis stores
	idempotencyCache := redisStorage.NewIdempotencyCache(rdb)
	nonceStore := redisStorage.NewNonceStore(rdb)
	chargeQueue := redisStorage.NewChargeQueue(rdb)
	chargeLock := redisStorage.NewChargeLock(rdb)
	flagStore := redisStorage.NewFlagStore(rdb)

	// Core services with real implementations
	sigSvc := service.NewHMACSignatureService()
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService("test-jwt-secret-key-32bytes!!", 24*time.Hour, "test-issuer")

	// In-memory repos + fake gateway
	sellerRepo := newInMemorySellerRepo()
	methodRepo := newInMemoryMethodRepo()
	chargeRepo := newInMemoryChargeRepo()
	ledgerRepo := newInMemoryLedgerRepo()
	idempotencyRepo := newInMemoryIdempotencyRepo()
	transactor := newInMemoryTransactor()
	gateway := newFakeGateway()

	// Business services
	log := logger.New("debug", false)
	authSvc := service.NewAuthService(sellerRepo, hashSvc, tokenSvc, gateway)
	registrySvc := service.NewRegistryService(methodRepo, chargeRepo, sellerRepo, gateway, transactor, log)
	topUpSvc := service.NewTopUpService(
		chargeRepo, methodRepo, sellerRepo, ledgerRepo,
		idempotencyRepo, idempotencyCache, gateway, chargeQueue, transactor, log,
	)
	balanceSvc := service.NewBalanceService(ledgerRepo, topUpSvc, flagStore, log)
	reportingSvc := service.NewReportingService(chargeRepo, ledgerRepo, sellerRepo)
	notifier := service.NewWebhookAlertNotifier(sigSvc, http.DefaultClient, "", "", log)

	chargeWorker := worker.NewChargeWorker(chargeQueue, chargeLock, topUpSvc, notifier, worker.ChargeWorkerConfig{
		MaxAttempts:    1,
		LockTTL:        time.Minute,
		DequeueTimeout: 100 * time.Millisecond,
	}, log)

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:            authSvc,
		Registry:           registrySvc,
		TopUpSvc:           topUpSvc,
		BalanceSvc:         balanceSvc,
		ReportingSvc:       reportingSvc,
		SigSvc:             sigSvc,
		NonceStore:         nonceStore,
		TokenSvc:           tokenSvc,
		InternalAuthSecret: testInternalSecret,
		Logger:             log,
	})

	server := httptest.NewServer(router)

	return &testApp{
		server:  server,
		redis:   mr,
		gateway: gateway,
		queue:   chargeQueue,
		worker:  chargeWorker,
	}
}

func (a *testApp) close() {
	a.server.Close()
	a.redis.Close()
}

// processQueuedCharges drains the charge queue through the worker, the way
// the worker binary would in production.
func (a *testApp) processQueuedCharges(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	for {
		task, err := a.queue.Dequeue(ctx, 100*time.Millisecond)
		require.NoError(t, err)
		if task == nil {
			return
		}
		a.worker.Handle(ctx, *task)
	}
}

// --- Integration Tests ---

func TestIntegration_HealthCheck(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	resp, err := http.Get(app.server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
}

func TestIntegration_RegisterAndLogin(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	// Register
	regBody, _ := json.Marshal(map[string]string{
		"username":     "seller1",
		"password":     "StrongPass123!",
		"display_name": "Test Seller",
	})
	resp, err := http.Post(app.server.URL+"/api/v1/auth/register", "application/json", bytes.NewReader(regBody))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var regResp map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&regResp))
	data := regResp["data"].(map[string]interface{})
	assert.NotEmpty(t, data["seller_id"])
	assert.Equal(t, "seller1", data["username"])
	assert.Equal(t, "USD", data["currency"])

	// Login
	loginBody, _ := json.Marshal(map[string]string{
		"username": "seller1",
		"password": "StrongPass123!",
	})
	resp2, err := http.Post(app.server.URL+"/api/v1/auth/login", "application/json", bytes.NewReader(loginBody))
	require.NoError(t, err)
	defer resp2.Body.Close()

	assert.Equal(t, http.StatusOK, resp2.StatusCode)

	var loginResp map[string]interface{}
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&loginResp))
	loginData := loginResp["data"].(map[string]interface{})
	assert.NotEmpty(t, loginData["token"])
}

func TestIntegration_LoginWrongCredentials(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	loginBody, _ := json.Marshal(map[string]string{
		"username": "nobody",
		"password": "wrongpassword",
	})
	resp, err := http.Post(app.server.URL+"/api/v1/auth/login", "application/json", bytes.NewReader(loginBody))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestIntegration_DuplicateUsername(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	regBody, _ := json.Marshal(map[string]string{
		"username":     "seller1",
		"password":     "StrongPass123!",
		"display_name": "Test",
	})

	resp, err := http.Post(app.server.URL+"/api/v1/auth/register", "application/json", bytes.NewReader(regBody))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	// Try again with same username
	resp2, err := http.Post(app.server.URL+"/api/v1/auth/register", "application/json", bytes.NewReader(regBody))
	require.NoError(t, err)
	resp2.Body.Close()
	assert.Equal(t, http.StatusConflict, resp2.StatusCode)
}

func TestIntegration_AttachAndListMethods(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	token := registerAndLogin(t, app, "cardseller")

	// Attach first card — becomes default automatically
	attachBody, _ := json.Marshal(map[string]interface{}{
		"gateway_token": "pm_card_one",
	})
	req, _ := http.NewRequest(http.MethodPost, app.server.URL+"/api/v1/settings/payment_methods", bytes.NewReader(attachBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var attachResp map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&attachResp))
	data := attachResp["data"].(map[string]interface{})
	assert.Equal(t, true, data["is_default"])
	assert.Equal(t, "4242", data["last4"])

	// List methods
	reqList, _ := http.NewRequest(http.MethodGet, app.server.URL+"/api/v1/settings/payment_methods", nil)
	reqList.Header.Set("Authorization", "Bearer "+token)
	respList, err := http.DefaultClient.Do(reqList)
	require.NoError(t, err)
	defer respList.Body.Close()

	assert.Equal(t, http.StatusOK, respList.StatusCode)
	var listResp map[string]interface{}
	require.NoError(t, json.NewDecoder(respList.Body).Decode(&listResp))
	items := listResp["data"].([]interface{})
	assert.Len(t, items, 1)
}

func TestIntegration_ManualTopUpEndToEnd(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	token := registerAndLogin(t, app, "topupseller")
	attachCard(t, app, token, "pm_good_card")

	// Balance starts at zero
	assert.Equal(t, int64(0), getBalance(t, app, token))

	// Create a top-up; accepted as PENDING
	topupBody, _ := json.Marshal(map[string]interface{}{
		"amount": int64(5000),
	})
	req, _ := http.NewRequest(http.MethodPost, app.server.URL+"/api/v1/topups", bytes.NewReader(topupBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var topupResp map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&topupResp))
	data := topupResp["data"].(map[string]interface{})
	assert.Equal(t, "PENDING", data["status"])

	// Worker settles the charge; balance is credited
	app.processQueuedCharges(t)
	assert.Equal(t, int64(5000), getBalance(t, app, token))

	// History shows a successful charge
	reqList, _ := http.NewRequest(http.MethodGet, app.server.URL+"/api/v1/topups", nil)
	reqList.Header.Set("Authorization", "Bearer "+token)
	respList, err := http.DefaultClient.Do(reqList)
	require.NoError(t, err)
	defer respList.Body.Close()

	var listResp map[string]interface{}
	require.NoError(t, json.NewDecoder(respList.Body).Decode(&listResp))
	listData := listResp["data"].(map[string]interface{})
	items := listData["items"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, "SUCCESSFUL", items[0].(map[string]interface{})["status"])
}

func TestIntegration_TopUpCardDeclined(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	token := registerAndLogin(t, app, "declineseller")
	attachCard(t, app, token, "pm_bad_card")
	app.gateway.declineToken("pm_bad_card")

	topupBody, _ := json.Marshal(map[string]interface{}{
		"amount": int64(5000),
	})
	req, _ := http.NewRequest(http.MethodPost, app.server.URL+"/api/v1/topups", bytes.NewReader(topupBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	app.processQueuedCharges(t)

	// Charge is FAILED, balance untouched
	assert.Equal(t, int64(0), getBalance(t, app, token))

	reqList, _ := http.NewRequest(http.MethodGet, app.server.URL+"/api/v1/topups?status=FAILED", nil)
	reqList.Header.Set("Authorization", "Bearer "+token)
	respList, err := http.DefaultClient.Do(reqList)
	require.NoError(t, err)
	defer respList.Body.Close()

	var listResp map[string]interface{}
	require.NoError(t, json.NewDecoder(respList.Body).Decode(&listResp))
	listData := listResp["data"].(map[string]interface{})
	items := listData["items"].([]interface{})
	require.Len(t, items, 1)
	failed := items[0].(map[string]interface{})
	assert.Equal(t, "FAILED", failed["status"])
	assert.NotEmpty(t, failed["error_message"])
}

func TestIntegration_TopUpWithoutCard(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	token := registerAndLogin(t, app, "cardlessseller")

	topupBody, _ := json.Marshal(map[string]interface{}{
		"amount": int64(5000),
	})
	req, _ := http.NewRequest(http.MethodPost, app.server.URL+"/api/v1/topups", bytes.NewReader(topupBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestIntegration_EnsureCovered_FlagDisabled(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	sellerID := registerAndGetSellerID(t, app, "flagoffseller")

	// Flag is off: every refund reports covered, no charge raised.
	status, body := postEnsureCovered(t, app, sellerID, "11111111-1111-1111-1111-111111111111", 10000)
	require.Equal(t, http.StatusOK, status)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, true, data["covered"])
	assert.Nil(t, data["charge"])
}

func TestIntegration_EnsureCovered_ShortfallChargesCard(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	app.redis.SAdd("feature:refund_balance_topups", "all")

	sellerID := registerAndGetSellerID(t, app, "shortfallseller")
	token := loginAndGetToken(t, app, "shortfallseller", "StrongPass123!")
	attachCard(t, app, token, "pm_backup_card")

	refundID := "22222222-2222-2222-2222-222222222222"
	status, body := postEnsureCovered(t, app, sellerID, refundID, 10000)
	require.Equal(t, http.StatusOK, status)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, false, data["covered"])
	charge := data["charge"].(map[string]interface{})
	assert.Equal(t, "PENDING", charge["status"])
	assert.Equal(t, float64(10000), charge["amount"])
	assert.Equal(t, refundID, charge["refund_id"])

	// Re-check before the charge settles: still short, but the refund ID
	// doubles as the idempotency reference so no second charge stacks.
	status2, body2 := postEnsureCovered(t, app, sellerID, refundID, 10000)
	require.Equal(t, http.StatusOK, status2)
	charge2 := body2["data"].(map[string]interface{})["charge"].(map[string]interface{})
	assert.Equal(t, charge["id"], charge2["id"])

	// Worker settles the charge; the refund is now covered.
	app.processQueuedCharges(t)
	status3, body3 := postEnsureCovered(t, app, sellerID, refundID, 10000)
	require.Equal(t, http.StatusOK, status3)
	data3 := body3["data"].(map[string]interface{})
	assert.Equal(t, true, data3["covered"])
}

func TestIntegration_EnsureCovered_SufficientBalance(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	app.redis.SAdd("feature:refund_balance_topups", "all")

	sellerID := registerAndGetSellerID(t, app, "richseller")
	token := loginAndGetToken(t, app, "richseller", "StrongPass123!")
	attachCard(t, app, token, "pm_rich_card")

	// Load 20,000 via manual top-up
	topupBody, _ := json.Marshal(map[string]interface{}{"amount": int64(20000)})
	req, _ := http.NewRequest(http.MethodPost, app.server.URL+"/api/v1/topups", bytes.NewReader(topupBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	app.processQueuedCharges(t)

	// 10,000 refund is covered outright
	status, body := postEnsureCovered(t, app, sellerID, "33333333-3333-3333-3333-333333333333", 10000)
	require.Equal(t, http.StatusOK, status)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, true, data["covered"])
	assert.Nil(t, data["charge"])
}

func TestIntegration_EnsureCovered_MissingAuthHeaders(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	resp, err := http.Post(app.server.URL+"/internal/v1/refunds/ensure-covered", "application/json", bytes.NewReader([]byte("{}")))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestIntegration_DetachKeepsHistoryMethods(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	token := registerAndLogin(t, app, "detachseller")
	methodID := attachCard(t, app, token, "pm_used_card")

	// Charge against the card so it has history
	topupBody, _ := json.Marshal(map[string]interface{}{"amount": int64(5000)})
	req, _ := http.NewRequest(http.MethodPost, app.server.URL+"/api/v1/topups", bytes.NewReader(topupBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	app.processQueuedCharges(t)

	// Detach
	reqDel, _ := http.NewRequest(http.MethodDelete, app.server.URL+"/api/v1/settings/payment_methods/"+methodID, nil)
	reqDel.Header.Set("Authorization", "Bearer "+token)
	respDel, err := http.DefaultClient.Do(reqDel)
	require.NoError(t, err)
	respDel.Body.Close()
	assert.Equal(t, http.StatusOK, respDel.StatusCode)

	// Gone from the active list
	reqList, _ := http.NewRequest(http.MethodGet, app.server.URL+"/api/v1/settings/payment_methods", nil)
	reqList.Header.Set("Authorization", "Bearer "+token)
	respList, err := http.DefaultClient.Do(reqList)
	require.NoError(t, err)
	defer respList.Body.Close()
	var listResp map[string]interface{}
	require.NoError(t, json.NewDecoder(respList.Body).Decode(&listResp))
	items := listResp["data"].([]interface{})
	assert.Len(t, items, 0)

	// History still references the charge
	reqHist, _ := http.NewRequest(http.MethodGet, app.server.URL+"/api/v1/topups", nil)
	reqHist.Header.Set("Authorization", "Bearer "+token)
	respHist, err := http.DefaultClient.Do(reqHist)
	require.NoError(t, err)
	defer respHist.Body.Close()
	var histResp map[string]interface{}
	require.NoError(t, json.NewDecoder(respHist.Body).Decode(&histResp))
	histData := histResp["data"].(map[string]interface{})
	assert.Equal(t, float64(1), histData["total"])
}

func TestIntegration_JWT_Stats(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	token := registerAndLogin(t, app, "statsseller")
	attachCard(t, app, token, "pm_stats_card")

	topupBody, _ := json.Marshal(map[string]interface{}{"amount": int64(7500)})
	req, _ := http.NewRequest(http.MethodPost, app.server.URL+"/api/v1/topups", bytes.NewReader(topupBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	app.processQueuedCharges(t)

	reqStats, _ := http.NewRequest(http.MethodGet, app.server.URL+"/api/v1/topups/stats", nil)
	reqStats.Header.Set("Authorization", "Bearer "+token)
	respStats, err := http.DefaultClient.Do(reqStats)
	require.NoError(t, err)
	defer respStats.Body.Close()

	assert.Equal(t, http.StatusOK, respStats.StatusCode)
	var statsResp map[string]interface{}
	require.NoError(t, json.NewDecoder(respStats.Body).Decode(&statsResp))
	data := statsResp["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["total_charges"])
	assert.Equal(t, float64(1), data["successful"])
	assert.Equal(t, float64(7500), data["total_loaded"])
}

func TestIntegration_JWT_Unauthorized(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	req, _ := http.NewRequest(http.MethodGet, app.server.URL+"/api/v1/settings/balance", nil)
	// No Authorization header
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// --- Helpers ---

func registerAndLogin(t *testing.T, app *testApp, username string) string {
	t.Helper()
	registerAndGetSellerID(t, app, username)
	return loginAndGetToken(t, app, username, "StrongPass123!")
}

func registerAndGetSellerID(t *testing.T, app *testApp, username string) string {
	t.Helper()
	regBody, _ := json.Marshal(map[string]string{
		"username":     username,
		"password":     "StrongPass123!",
		"display_name": "Test Seller",
	})
	resp, err := http.Post(app.server.URL+"/api/v1/auth/register", "application/json", bytes.NewReader(regBody))
	require.NoError(t, err)
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)
	require.Equal(t, http.StatusCreated, resp.StatusCode, "register response: %s", string(bodyBytes))
	var regResp map[string]interface{}
	require.NoError(t, json.Unmarshal(bodyBytes, &regResp))
	data := regResp["data"].(map[string]interface{})
	return data["seller_id"].(string)
}

func loginAndGetToken(t *testing.T, app *testApp, username, password string) string {
	t.Helper()
	loginBody, _ := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	resp, err := http.Post(app.server.URL+"/api/v1/auth/login", "application/json", bytes.NewReader(loginBody))
	require.NoError(t, err)
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)
	var loginResp map[string]interface{}
	require.NoError(t, json.Unmarshal(bodyBytes, &loginResp))
	data := loginResp["data"].(map[string]interface{})
	return data["token"].(string)
}

func attachCard(t *testing.T, app *testApp, token, gatewayToken string) string {
	t.Helper()
	attachBody, _ := json.Marshal(map[string]interface{}{
		"gateway_token": gatewayToken,
	})
	req, _ := http.NewRequest(http.MethodPost, app.server.URL+"/api/v1/settings/payment_methods", bytes.NewReader(attachBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)
	require.Equal(t, http.StatusCreated, resp.StatusCode, "attach response: %s", string(bodyBytes))
	var attachResp map[string]interface{}
	require.NoError(t, json.Unmarshal(bodyBytes, &attachResp))
	data := attachResp["data"].(map[string]interface{})
	return data["id"].(string)
}

func getBalance(t *testing.T, app *testApp, token string) int64 {
	t.Helper()
	req, _ := http.NewRequest(http.MethodGet, app.server.URL+"/api/v1/settings/balance", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var balResp struct {
		Data struct {
			Balance int64 `json:"balance"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&balResp))
	return balResp.Data.Balance
}

// postEnsureCovered calls the internal refund coverage endpoint with a
// valid service signature.
func postEnsureCovered(t *testing.T, app *testApp, sellerID, refundID string, amount int64) (int, map[string]interface{}) {
	t.Helper()
	body := fmt.Sprintf(`{"seller_id":"%s","refund_id":"%s","amount":%d}`, sellerID, refundID, amount)
	timestamp := fmt.Sprintf("%d", time.Now().Unix())
	nonce := uuid.New().String()

	canonical := fmt.Sprintf("POST|/internal/v1/refunds/ensure-covered|%s|%s|%s", timestamp, nonce, body)
	mac := hmac.New(sha256.New, []byte(testInternalSecret))
	mac.Write([]byte(canonical))
	signature := hex.EncodeToString(mac.Sum(nil))

	req, _ := http.NewRequest(http.MethodPost, app.server.URL+"/internal/v1/refunds/ensure-covered", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Service-Name", "refund-service")
	req.Header.Set("X-Signature", signature)
	req.Header.Set("X-Timestamp", timestamp)
	req.Header.Set("X-Nonce", nonce)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)
	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal(bodyBytes, &parsed), "response: %s", string(bodyBytes))
	return resp.StatusCode, parsed
}
