package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Centralink87/centralinkxyz/internal/auth"
	"github.com/Centralink87/centralinkxyz/internal/ledger"
	"github.com/Centralink87/centralinkxyz/internal/storage"
)

const adminEmail = "admin@example.com"

func setupTestAPI(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	t.Setenv("JWT_SECRET", "handlers-test-secret")
	t.Setenv("JWT_ISS", "")
	t.Setenv("JWT_AUD", "")

	v := validator.New()
	_ = v.RegisterValidation("requesttype", func(fl validator.FieldLevel) bool {
		_, err := ledger.ParseRequestType(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("cryptotype", func(fl validator.FieldLevel) bool {
		_, err := ledger.ParseCryptoType(fl.Field().String())
		return err == nil
	})

	issuer, err := auth.NewJWTIssuerFromEnv()
	require.NoError(t, err)

	store := storage.NewMemoryStore()
	log := zap.NewNop()
	h := &Handlers{Log: log, Store: store, V: v}
	ah := &AuthHandlers{Log: log, Users: store, V: v, Tokens: issuer, AdminEmails: []string{adminEmail}}

	r := gin.New()
	SetupRoutes(r, h, ah)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body: %s", w.Body.String())
	return out
}

func registerAndLogin(t *testing.T, r *gin.Engine, email string) string {
	t.Helper()
	reg := fmt.Sprintf(`{"first_name":"Tess","last_name":"Trader","email":%q,"password":"longenoughpw"}`, email)
	w := doJSON(t, r, http.MethodPost, "/v1/auth/register", "", reg)
	require.Equal(t, http.StatusCreated, w.Code, "register: %s", w.Body.String())

	login := fmt.Sprintf(`{"email":%q,"password":"longenoughpw"}`, email)
	w = doJSON(t, r, http.MethodPost, "/v1/auth/login", "", login)
	require.Equal(t, http.StatusOK, w.Code, "login: %s", w.Body.String())

	token, _ := decodeBody(t, w)["access_token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestUnauthenticatedGets401(t *testing.T) {
	r := setupTestAPI(t)
	w := doJSON(t, r, http.MethodGet, "/v1/requests", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateRequestForcedPending(t *testing.T) {
	r := setupTestAPI(t)
	token := registerAndLogin(t, r, "user@example.com")

	// A deposit never keeps a public address, and creation is always pending.
	w := doJSON(t, r, http.MethodPost, "/v1/requests", token,
		`{"type":"deposit","crypto_type":"btc","amount":"1.5","public_address":"0xsneaky"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	body := decodeBody(t, w)
	assert.Equal(t, false, body["is_validated"])
	assert.Nil(t, body["validated_at"])
	assert.Nil(t, body["public_address"])
}

func TestCreateWithdrawalRequiresAddress(t *testing.T) {
	r := setupTestAPI(t)
	token := registerAndLogin(t, r, "user@example.com")

	w := doJSON(t, r, http.MethodPost, "/v1/requests", token,
		`{"type":"withdrawal","crypto_type":"eth","amount":"2"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestAdminValidateIsIdempotent(t *testing.T) {
	r := setupTestAPI(t)
	userToken := registerAndLogin(t, r, "user@example.com")
	adminToken := registerAndLogin(t, r, adminEmail)

	w := doJSON(t, r, http.MethodPost, "/v1/requests", userToken,
		`{"type":"deposit","crypto_type":"btc","amount":"3"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	id := int64(decodeBody(t, w)["id"].(float64))

	w = doJSON(t, r, http.MethodPost, fmt.Sprintf("/v1/admin/requests/%d/validate", id), adminToken, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	first := decodeBody(t, w)
	require.Equal(t, true, first["is_validated"])
	require.NotNil(t, first["validated_at"])

	// Re-validation keeps the original timestamp.
	w = doJSON(t, r, http.MethodPost, fmt.Sprintf("/v1/admin/requests/%d/validate", id), adminToken, "")
	require.Equal(t, http.StatusOK, w.Code)
	second := decodeBody(t, w)
	assert.Equal(t, first["validated_at"], second["validated_at"])
}

func TestAdminRejectValidatedIsRefused(t *testing.T) {
	r := setupTestAPI(t)
	userToken := registerAndLogin(t, r, "user@example.com")
	adminToken := registerAndLogin(t, r, adminEmail)

	w := doJSON(t, r, http.MethodPost, "/v1/requests", userToken,
		`{"type":"deposit","crypto_type":"btc","amount":"3"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	id := int64(decodeBody(t, w)["id"].(float64))

	w = doJSON(t, r, http.MethodPost, fmt.Sprintf("/v1/admin/requests/%d/validate", id), adminToken, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPost, fmt.Sprintf("/v1/admin/requests/%d/reject", id), adminToken, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	// Still there.
	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/v1/requests/%d", id), userToken, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminRejectPendingDeletes(t *testing.T) {
	r := setupTestAPI(t)
	userToken := registerAndLogin(t, r, "user@example.com")
	adminToken := registerAndLogin(t, r, adminEmail)

	w := doJSON(t, r, http.MethodPost, "/v1/transactions", userToken,
		`{"entry_price":"100","amount":"1","crypto_type":"btc"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	id := int64(decodeBody(t, w)["id"].(float64))

	w = doJSON(t, r, http.MethodPost, fmt.Sprintf("/v1/admin/transactions/%d/reject", id), adminToken, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/v1/transactions/%d", id), userToken, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminEndpointsNeedAdminRole(t *testing.T) {
	r := setupTestAPI(t)
	userToken := registerAndLogin(t, r, "user@example.com")

	w := doJSON(t, r, http.MethodGet, "/v1/admin/pending/counts", userToken, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestOwnershipIsEnforced(t *testing.T) {
	r := setupTestAPI(t)
	ownerToken := registerAndLogin(t, r, "owner@example.com")
	strangerToken := registerAndLogin(t, r, "stranger@example.com")

	w := doJSON(t, r, http.MethodPost, "/v1/requests", ownerToken,
		`{"type":"deposit","crypto_type":"btc","amount":"3"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	id := int64(decodeBody(t, w)["id"].(float64))

	path := fmt.Sprintf("/v1/requests/%d", id)
	w = doJSON(t, r, http.MethodGet, path, strangerToken, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, r, http.MethodPut, path, strangerToken,
		`{"type":"deposit","crypto_type":"btc","amount":"9"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, r, http.MethodDelete, path, strangerToken, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCloseTransactionFlow(t *testing.T) {
	r := setupTestAPI(t)
	userToken := registerAndLogin(t, r, "user@example.com")
	adminToken := registerAndLogin(t, r, adminEmail)

	w := doJSON(t, r, http.MethodPost, "/v1/transactions", userToken,
		`{"entry_price":"100","amount":"2","crypto_type":"btc"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	id := int64(decodeBody(t, w)["id"].(float64))

	closePath := fmt.Sprintf("/v1/transactions/%d/close", id)

	// Cannot close before validation.
	w = doJSON(t, r, http.MethodPost, closePath, userToken, `{"exit_price":"150"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, r, http.MethodPost, fmt.Sprintf("/v1/admin/transactions/%d/validate", id), adminToken, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPost, closePath, userToken, `{"exit_price":"150"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decodeBody(t, w)
	assert.Equal(t, true, body["is_closed"])
	assert.Equal(t, "100", body["profit_loss"])
	assert.Equal(t, "50", body["profit_loss_percentage"])

	// A closed transaction stays closed.
	w = doJSON(t, r, http.MethodPost, closePath, userToken, `{"exit_price":"90"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestEditRefusedAfterValidation(t *testing.T) {
	r := setupTestAPI(t)
	userToken := registerAndLogin(t, r, "user@example.com")
	adminToken := registerAndLogin(t, r, adminEmail)

	w := doJSON(t, r, http.MethodPost, "/v1/transactions", userToken,
		`{"entry_price":"100","amount":"2","crypto_type":"btc"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	id := int64(decodeBody(t, w)["id"].(float64))

	path := fmt.Sprintf("/v1/transactions/%d", id)
	w = doJSON(t, r, http.MethodPut, path, userToken,
		`{"entry_price":"120","amount":"2","crypto_type":"btc"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "120", decodeBody(t, w)["entry_price"])

	w = doJSON(t, r, http.MethodPost, fmt.Sprintf("/v1/admin/transactions/%d/validate", id), adminToken, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPut, path, userToken,
		`{"entry_price":"130","amount":"2","crypto_type":"btc"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestTransactionStatsAndPnlSeries(t *testing.T) {
	r := setupTestAPI(t)
	userToken := registerAndLogin(t, r, "user@example.com")
	adminToken := registerAndLogin(t, r, adminEmail)

	mk := func(date, entry string) int64 {
		body := fmt.Sprintf(`{"entry_price":%q,"amount":"1","crypto_type":"btc","transaction_date":%q}`, entry, date)
		w := doJSON(t, r, http.MethodPost, "/v1/transactions", userToken, body)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		return int64(decodeBody(t, w)["id"].(float64))
	}
	validate := func(id int64) {
		w := doJSON(t, r, http.MethodPost, fmt.Sprintf("/v1/admin/transactions/%d/validate", id), adminToken, "")
		require.Equal(t, http.StatusOK, w.Code)
	}
	closeAt := func(id int64, exit string) {
		w := doJSON(t, r, http.MethodPost, fmt.Sprintf("/v1/transactions/%d/close", id), userToken,
			fmt.Sprintf(`{"exit_price":%q}`, exit))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	// Out-of-order dates: +10 on Jan 1, -4 on Jan 3, +6 on Jan 2.
	id1 := mk("2024-01-01T00:00:00Z", "10")
	id3 := mk("2024-01-03T00:00:00Z", "10")
	id2 := mk("2024-01-02T00:00:00Z", "10")
	for _, id := range []int64{id1, id2, id3} {
		validate(id)
	}
	closeAt(id1, "20")
	closeAt(id3, "6")
	closeAt(id2, "16")

	w := doJSON(t, r, http.MethodGet, "/v1/transactions", userToken, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp TransactionListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	require.Len(t, resp.PnlSeries, 3)
	assert.Equal(t, "10", resp.PnlSeries[0].CumulativePnl)
	assert.Equal(t, "16", resp.PnlSeries[1].CumulativePnl)
	assert.Equal(t, "12", resp.PnlSeries[2].CumulativePnl)

	assert.Equal(t, "30", resp.Stats.TotalInvested)
	assert.Equal(t, "12", resp.Stats.TotalProfitLoss)
	assert.Equal(t, 3, resp.Stats.ClosedCount)
}

func TestTransactionCryptoFilter(t *testing.T) {
	r := setupTestAPI(t)
	userToken := registerAndLogin(t, r, "user@example.com")

	for _, crypto := range []string{"btc", "eth", "btc"} {
		w := doJSON(t, r, http.MethodPost, "/v1/transactions", userToken,
			fmt.Sprintf(`{"entry_price":"10","amount":"1","crypto_type":%q}`, crypto))
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := doJSON(t, r, http.MethodGet, "/v1/transactions?crypto=btc", userToken, "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp TransactionListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Pending, 2)

	w = doJSON(t, r, http.MethodGet, "/v1/transactions?crypto=doge", userToken, "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestOverviewFunds(t *testing.T) {
	r := setupTestAPI(t)
	userToken := registerAndLogin(t, r, "user@example.com")
	adminToken := registerAndLogin(t, r, adminEmail)

	mk := func(body string) int64 {
		w := doJSON(t, r, http.MethodPost, "/v1/requests", userToken, body)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		return int64(decodeBody(t, w)["id"].(float64))
	}
	dep := mk(`{"type":"deposit","crypto_type":"btc","amount":"500"}`)
	wd := mk(`{"type":"withdrawal","crypto_type":"btc","amount":"120","public_address":"0xdest"}`)
	pendingDep := mk(`{"type":"deposit","crypto_type":"eth","amount":"999"}`)
	_ = pendingDep // stays unvalidated, must not count

	for _, id := range []int64{dep, wd} {
		w := doJSON(t, r, http.MethodPost, fmt.Sprintf("/v1/admin/requests/%d/validate", id), adminToken, "")
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := doJSON(t, r, http.MethodGet, "/v1/overview", userToken, "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp OverviewResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, "500", resp.TotalDeposits)
	assert.Equal(t, "120", resp.TotalWithdrawals)
	assert.Equal(t, "380", resp.AvailableFunds)
	assert.Len(t, resp.Requests, 2)
}
