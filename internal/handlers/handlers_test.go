package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/imrishuroy/landing-checkout/internal/orders"
	"github.com/imrishuroy/landing-checkout/internal/validation"
)

type brokenStore struct {
	*orders.MemoryStore
}

func (brokenStore) Create(ctx context.Context, o *orders.Order) error {
	return errors.New(`pq: relation "orders" does not exist`)
}

func (brokenStore) Health(ctx context.Context) (orders.HealthStatus, error) {
	return orders.HealthStatus{}, errors.New("dial tcp 10.0.0.5:5432: connect: connection refused")
}

func setupRouter(t *testing.T, store orders.Store) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rules := validation.Default()
	cfg := HandlerConfig{
		Orders: orders.NewService(store, validation.New(rules), 14900),
		Rules:  rules,
		Logger: zaptest.NewLogger(t),
	}
	r := gin.New()
	RegisterOrdersRoutes(r, cfg)
	RegisterHealthRoutes(r, cfg)
	RegisterRulesRoutes(r, cfg)
	return r
}

const annBody = `{"name":"Ann","email":"ann@x.com","phone":"+1 555-0100","address1":"221B Baker St","city":"London","state":"LN","country":"GB","pin":"NW1 6XE","qty":2}`

func postOrder(r http.Handler, body string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestCreateOrder_EndToEnd(t *testing.T) {
	store := orders.NewMemoryStore()
	r := setupRouter(t, store)

	w := postOrder(r, annBody, map[string]string{
		"User-Agent":      "checkout-test/1.0",
		"X-Forwarded-For": "198.51.100.4, 10.0.0.1",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode(t, w)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, 29800.0, body["total_cents"])
	assert.NotEmpty(t, body["id"])
	assert.NotEmpty(t, body["created_at"])

	stored, err := store.Get(context.Background(), body["id"].(string))
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "198.51.100.4", stored.IP)
	assert.Equal(t, "checkout-test/1.0", stored.UserAgent)
}

func TestCreateOrder_PeerAddressWithoutForwardedFor(t *testing.T) {
	store := orders.NewMemoryStore()
	r := setupRouter(t, store)

	w := postOrder(r, annBody, nil)
	require.Equal(t, http.StatusOK, w.Code)

	stored, err := store.Get(context.Background(), decode(t, w)["id"].(string))
	require.NoError(t, err)
	// httptest.NewRequest uses 192.0.2.1:1234 as the peer
	assert.Equal(t, "192.0.2.1", stored.IP)
}

func TestCreateOrder_ValidationErrors(t *testing.T) {
	store := orders.NewMemoryStore()
	r := setupRouter(t, store)

	w := postOrder(r, `{"name":"  ","email":"a b@c.com","phone":"12","address1":"x","city":"London","state":"LN","country":"IN","pin":"ABC123","qty":0}`, nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	body := decode(t, w)
	assert.Equal(t, false, body["ok"])
	errs := body["errors"].(map[string]any)
	assert.Equal(t, map[string]any{
		"name":     "Name is required",
		"email":    "Invalid email",
		"phone":    "Invalid phone",
		"address1": "Address line 1 required",
		"pin":      "Invalid postal code",
		"qty":      "Quantity 1–10",
	}, errs)
	assert.Equal(t, 0, store.Len())
}

func TestCreateOrder_EmptyBodyIsValidated(t *testing.T) {
	r := setupRouter(t, orders.NewMemoryStore())

	w := postOrder(r, "", nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	errs := decode(t, w)["errors"].(map[string]any)
	assert.Contains(t, errs, "name")
	assert.Contains(t, errs, "country")
	assert.NotContains(t, errs, "qty")
}

func TestCreateOrder_MalformedJSON(t *testing.T) {
	r := setupRouter(t, orders.NewMemoryStore())

	w := postOrder(r, `{"name":`, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, decode(t, w)["ok"])
}

func TestCreateOrder_ServerErrorIsOpaque(t *testing.T) {
	r := setupRouter(t, brokenStore{orders.NewMemoryStore()})

	w := postOrder(r, annBody, nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode(t, w)
	assert.Equal(t, map[string]any{"ok": false, "error": "Server error"}, body)
	assert.NotContains(t, w.Body.String(), "relation")
}

func TestHealthDB(t *testing.T) {
	r := setupRouter(t, orders.NewMemoryStore())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health/db", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "memory", body["version"])
	assert.NotEmpty(t, body["now"])
}

func TestHealthDB_Unreachable(t *testing.T) {
	r := setupRouter(t, brokenStore{orders.NewMemoryStore()})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health/db", nil))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["ok"])
	assert.NotEmpty(t, body["error"])
}

func TestRulesEndpoint(t *testing.T) {
	r := setupRouter(t, orders.NewMemoryStore())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/checkout/rules", nil))
	require.Equal(t, http.StatusOK, w.Code)

	rules, err := validation.ParseJSON(w.Body.Bytes())
	require.NoError(t, err)
	assert.True(t, rules.ValidPin("90210-1234", "US"))
	assert.Equal(t, 14900.0, decode(t, w)["unit_price_cents"])
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "[::1]:5555"
	assert.Equal(t, "::1", clientIP(req))

	req.Header.Set("X-Forwarded-For", " , 10.0.0.1")
	assert.Equal(t, "::1", clientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	assert.Equal(t, "203.0.113.9", clientIP(req))
}
