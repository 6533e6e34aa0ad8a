package v1_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harpreet-2146/FM-demo-sub001/internal/app/apptest"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/security"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/inventory"
	"github.com/harpreet-2146/FM-demo-sub001/internal/infrastructure/cache"
	v1 "github.com/harpreet-2146/FM-demo-sub001/internal/infrastructure/http/v1"
	"github.com/harpreet-2146/FM-demo-sub001/internal/infrastructure/http/v1/middleware"
)

type server struct {
	*apptest.Env
	router *gin.Engine
}

func newServer(t *testing.T) *server {
	t.Helper()
	env := apptest.New(t)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	router, err := v1.NewRouter(v1.RouterConfig{
		Services:    env.Services,
		Numerator:   env.Backend.Numerator,
		Idempotency: cache.NewIdempotencyStore(client, time.Hour),
		Version:     "test",
		Storage:     "memory",
	})
	require.NoError(t, err)
	return &server{Env: env, router: router}
}

func (s *server) do(t *testing.T, method, path, token string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *server) login(t *testing.T, email string) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    email,
		"password": apptest.Password,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		AccessToken string `json:"accessToken"`
	}
	decode(t, w, &resp)
	require.NotEmpty(t, resp.AccessToken)
	return resp.AccessToken
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

type errorBody struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details"`
}

func TestHealth(t *testing.T) {
	s := newServer(t)

	w := s.do(t, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/health/info", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"storage":"memory"`)
	assert.NotEmpty(t, w.Header().Get(middleware.HeaderRequestID))
}

func TestAuthRequired(t *testing.T) {
	s := newServer(t)

	tests := []struct {
		name   string
		header string
	}{
		{"missing", ""},
		{"malformed", "Token abc"},
		{"invalid", "Bearer not-a-jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/materials", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			s.router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			var body errorBody
			decode(t, w, &body)
			assert.Equal(t, "UNAUTHORIZED", body.Code)
		})
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	s := newServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "admin@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMaterialValidation(t *testing.T) {
	s := newServer(t)
	admin := s.login(t, "admin@example.com")

	valid := map[string]any{
		"code":           "PCM-500",
		"name":           "Paracetamol 500",
		"unitsPerPacket": 10,
		"mrpPerPacket":   "45.50",
		"hsnCode":        "300490",
		"gstRate":        "12",
		"commission":     map[string]string{"type": "PERCENTAGE", "value": "5"},
	}

	t.Run("created", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/v1/materials", admin, valid)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var m struct {
			ID      string `json:"id"`
			HSNCode string `json:"hsnCode"`
		}
		decode(t, w, &m)
		assert.Equal(t, "300490", m.HSNCode)

		w = s.do(t, http.MethodGet, "/api/v1/materials/PCM-500", admin, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	tests := []struct {
		name  string
		field string
		value any
		json  string
		tag   string
	}{
		{"bad hsn", "hsnCode", "12345", "HSNCode", "hsn"},
		{"negative mrp", "mrpPerPacket", "-1", "MRPPerPacket", "money"},
		{"three decimals", "mrpPerPacket", "1.005", "MRPPerPacket", "money"},
		{"zero units", "unitsPerPacket", 0, "UnitsPerPacket", "required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := make(map[string]any, len(valid))
			for k, v := range valid {
				req[k] = v
			}
			req["code"] = "X-" + tt.name
			req[tt.field] = tt.value

			w := s.do(t, http.MethodPost, "/api/v1/materials", admin, req)
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

			var body errorBody
			decode(t, w, &body)
			assert.Equal(t, "INVALID_ARGUMENT", body.Code)
			assert.Equal(t, map[string]any{tt.json: tt.tag}, body.Details["fields"])
		})
	}
}

func TestRoleGuards(t *testing.T) {
	s := newServer(t)
	retailer := s.User(t, security.RoleRetailer)
	token := s.login(t, retailer.Email)

	w := s.do(t, http.MethodGet, "/api/v1/users", token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/sequences/SRN", token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), retailer.Email)
}

func TestRequisitionOverHTTP(t *testing.T) {
	s := newServer(t)
	m := s.Material(t, apptest.MaterialSpec{UnitsPerPacket: 10})
	retailer := s.User(t, security.RoleRetailer)
	mfg := s.User(t, security.RoleManufacturer)
	s.Produce(t, mfg.Actor(), m, inventory.Q(5, 0))

	retailerToken := s.login(t, retailer.Email)
	adminToken := s.login(t, "admin@example.com")

	w := s.do(t, http.MethodPost, "/api/v1/srns", retailerToken, map[string]any{
		"lines": []map[string]any{{"materialId": m.ID.String(), "qty": map[string]int{"packets": 2, "looseUnits": 5}}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var doc struct {
		ID     string `json:"id"`
		Number string `json:"number"`
		Status string `json:"status"`
	}
	decode(t, w, &doc)
	assert.Equal(t, "DRAFT", doc.Status)

	w = s.do(t, http.MethodPost, "/api/v1/srns/"+doc.ID+"/submit", retailerToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/v1/srns/"+doc.ID+"/decision", retailerToken, map[string]any{"action": "REJECT"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/srns/"+doc.ID+"/decision", adminToken, map[string]any{
		"action":         "APPROVE",
		"manufacturerId": mfg.ID.String(),
		"lines":          []map[string]any{{"materialId": m.ID.String(), "qty": map[string]int{"packets": 2, "looseUnits": 5}}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &doc)
	assert.Equal(t, "APPROVED", doc.Status)

	w = s.do(t, http.MethodGet, "/api/v1/inventory/manufacturer?materialId="+m.ID.String(), adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"blockedPackets":2`)

	w = s.do(t, http.MethodGet, "/api/v1/srns?status=APPROVED", retailerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Items []struct {
			ID string `json:"id"`
		} `json:"items"`
		Limit int `json:"limit"`
	}
	decode(t, w, &list)
	require.Len(t, list.Items, 1)
	assert.Equal(t, doc.ID, list.Items[0].ID)
	assert.Equal(t, 50, list.Limit)

	w = s.do(t, http.MethodGet, "/api/v1/sequences/SRN", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"prefix":"SRN","value":1}`, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/v1/history/"+doc.ID, adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "SRN_APPROVED")
}

func TestIdempotentRetry(t *testing.T) {
	s := newServer(t)
	m := s.Material(t, apptest.MaterialSpec{})
	retailer := s.User(t, security.RoleRetailer)
	token := s.login(t, retailer.Email)

	body := map[string]any{
		"lines": []map[string]any{{"materialId": m.ID.String(), "qty": map[string]int{"packets": 1}}},
	}

	first := s.do(t, http.MethodPost, "/api/v1/srns", token, body, middleware.HeaderIdempotencyKey, "k-1")
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())

	again := s.do(t, http.MethodPost, "/api/v1/srns", token, body, middleware.HeaderIdempotencyKey, "k-1")
	assert.Equal(t, http.StatusCreated, again.Code)
	assert.Equal(t, first.Body.String(), again.Body.String())
	assert.Equal(t, "true", again.Header().Get("Idempotent-Replayed"))

	other := map[string]any{
		"note":  "different",
		"lines": body["lines"],
	}
	w := s.do(t, http.MethodPost, "/api/v1/srns", token, other, middleware.HeaderIdempotencyKey, "k-1")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/srns", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Items []json.RawMessage `json:"items"`
	}
	decode(t, w, &list)
	assert.Len(t, list.Items, 1)
}

func TestIdempotentRetryReplaysClientErrors(t *testing.T) {
	s := newServer(t)
	retailer := s.User(t, security.RoleRetailer)
	token := s.login(t, retailer.Email)

	body := map[string]any{"materialId": "00000000-0000-7000-8000-000000000000", "units": 1}
	first := s.do(t, http.MethodPost, "/api/v1/sales", token, body, middleware.HeaderIdempotencyKey, "sale-1")
	require.Equal(t, http.StatusNotFound, first.Code, first.Body.String())

	again := s.do(t, http.MethodPost, "/api/v1/sales", token, body, middleware.HeaderIdempotencyKey, "sale-1")
	assert.Equal(t, http.StatusNotFound, again.Code)
	assert.Equal(t, first.Body.String(), again.Body.String())
}

func TestAmountsRenderWithTwoDecimals(t *testing.T) {
	s := newServer(t)
	m := s.Material(t, apptest.MaterialSpec{UnitsPerPacket: 10, MRP: "100", GST: "18"})
	retailer := s.User(t, security.RoleRetailer)
	mfg := s.User(t, security.RoleManufacturer)
	receipt := s.Stock(t, retailer.Actor(), mfg.Actor(), m, inventory.Q(10, 0))

	adminToken := s.login(t, "admin@example.com")
	w := s.do(t, http.MethodPost, "/api/v1/invoices", adminToken, map[string]any{"grnId": receipt.ID.String()})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var inv struct {
		Number   string `json:"number"`
		Subtotal string `json:"subtotal"`
		GSTRate  string `json:"gstRate"`
		CGST     string `json:"cgst"`
		SGST     string `json:"sgst"`
		IGST     string `json:"igst"`
		Total    string `json:"total"`
		Items    []struct {
			UnitPrice string `json:"unitPrice"`
			LineTotal string `json:"lineTotal"`
		} `json:"items"`
	}
	decode(t, w, &inv)
	assert.Regexp(t, `^INV-\d{8}-\d{6}$`, inv.Number)
	assert.Equal(t, "1000.00", inv.Subtotal)
	assert.Equal(t, "18.00", inv.GSTRate)
	assert.Equal(t, "90.00", inv.CGST)
	assert.Equal(t, "90.00", inv.SGST)
	assert.Equal(t, "0.00", inv.IGST)
	assert.Equal(t, "1180.00", inv.Total)
	require.Len(t, inv.Items, 1)
	assert.Equal(t, "10.00", inv.Items[0].UnitPrice)
	assert.Equal(t, "1000.00", inv.Items[0].LineTotal)

	retailerToken := s.login(t, retailer.Email)
	w = s.do(t, http.MethodPost, "/api/v1/sales", retailerToken, map[string]any{"materialId": m.ID.String(), "units": 3})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var rec struct {
		Sale struct {
			UnitPrice string `json:"unitPrice"`
			Total     string `json:"total"`
		} `json:"sale"`
		Commission struct {
			Amount string `json:"amount"`
		} `json:"commission"`
	}
	decode(t, w, &rec)
	assert.Equal(t, "10.00", rec.Sale.UnitPrice)
	assert.Equal(t, "30.00", rec.Sale.Total)
	assert.Equal(t, "1.50", rec.Commission.Amount)

	w = s.do(t, http.MethodGet, "/api/v1/materials/"+m.ID.String(), adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"mrpPerPacket":"100.00"`)
	assert.Contains(t, w.Body.String(), `"gstRate":"18.00"`)
}
