package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"salesdesk/backend/internal/cache"
	"salesdesk/backend/internal/domain"
	"salesdesk/backend/internal/service"
	"salesdesk/backend/internal/store/memory"
)

func newTestHandler() http.Handler {
	svc := service.New(memory.New(), cache.NoopSummaryCache{}, zap.NewNop(), 30*time.Second)
	return New(svc, zap.NewNop(), "http://127.0.0.1:3000").Handler()
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dest any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dest); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func createTestClient(t *testing.T, handler http.Handler) domain.Client {
	t.Helper()

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/clients", map[string]any{
		"company":   "Padaria Central",
		"firstname": "Renata",
		"lastname":  "Silva",
		"email":     "renata@padariacentral.com",
		"credit":    100,
		"debt":      0,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create client: expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}

	var resp struct {
		Client domain.Client `json:"client"`
	}
	decodeBody(t, rec, &resp)
	if resp.Client.ID == "" {
		t.Fatalf("expected a store-assigned client id")
	}
	return resp.Client
}

func TestHealthz(t *testing.T) {
	handler := newTestHandler()
	rec := doJSON(t, handler, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestClientLifecycle(t *testing.T) {
	handler := newTestHandler()
	client := createTestClient(t, handler)

	rec := doJSON(t, handler, http.MethodPut, "/api/v1/clients/"+client.ID, map[string]any{
		"company":   "Padaria Central LTDA",
		"firstname": "Renata",
		"lastname":  "Silva",
		"email":     "renata@padariacentral.com",
		"credit":    80,
		"debt":      10,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update client: expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, handler, http.MethodDelete, "/api/v1/clients/"+client.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete client: expected 204, got %d", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/clients/"+client.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get deleted client: expected 404, got %d", rec.Code)
	}
}

func TestCreateClientValidationResponse(t *testing.T) {
	handler := newTestHandler()

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/clients", map[string]any{
		"company":   "",
		"firstname": "Renata",
		"lastname":  "Silva",
		"email":     "not-an-email",
		"credit":    0,
		"debt":      0,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var resp struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	decodeBody(t, rec, &resp)
	if _, ok := resp.Fields["company"]; !ok {
		t.Fatalf("expected company in fields, got %v", resp.Fields)
	}
	if _, ok := resp.Fields["email"]; !ok {
		t.Fatalf("expected email in fields, got %v", resp.Fields)
	}
}

func TestRegisterSaleAndDashboard(t *testing.T) {
	handler := newTestHandler()
	client := createTestClient(t, handler)

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/sales", map[string]any{
		"client_id":   client.ID,
		"description": "Monthly delivery",
		"value":       40,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register sale: expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}

	// The settlement consumed credit.
	rec = doJSON(t, handler, http.MethodGet, "/api/v1/clients/"+client.ID, nil)
	var clientResp struct {
		Client domain.Client `json:"client"`
	}
	decodeBody(t, rec, &clientResp)
	if !clientResp.Client.Credit.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("expected credit 60, got %s", clientResp.Client.Credit)
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/dashboard", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard: expected 200, got %d", rec.Code)
	}
	var summary domain.DashboardSummary
	decodeBody(t, rec, &summary)
	if !summary.TodayTotal.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("expected today total 40, got %s", summary.TodayTotal)
	}
	if len(summary.RecentSales) != 1 {
		t.Fatalf("expected 1 recent sale, got %d", len(summary.RecentSales))
	}
}

func TestRegisterSaleZeroValueRejected(t *testing.T) {
	handler := newTestHandler()
	client := createTestClient(t, handler)

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/sales", map[string]any{
		"client_id":   client.ID,
		"description": "Free sample",
		"value":       0,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d (%s)", rec.Code, rec.Body.String())
	}

	var resp struct {
		Fields map[string]string `json:"fields"`
	}
	decodeBody(t, rec, &resp)
	if _, ok := resp.Fields["value"]; !ok {
		t.Fatalf("expected value in fields, got %v", resp.Fields)
	}
}

func TestRecentSalesLimit(t *testing.T) {
	handler := newTestHandler()
	client := createTestClient(t, handler)

	for _, desc := range []string{"first", "second", "third"} {
		rec := doJSON(t, handler, http.MethodPost, "/api/v1/sales", map[string]any{
			"client_id":   client.ID,
			"description": desc,
			"value":       10,
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("register sale %q: expected 201, got %d", desc, rec.Code)
		}
	}

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/sales/recent?limit=2", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		Sales []domain.RecentSale `json:"sales"`
	}
	decodeBody(t, rec, &resp)
	if len(resp.Sales) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(resp.Sales))
	}
}

func TestDeleteUnknownSale(t *testing.T) {
	handler := newTestHandler()
	rec := doJSON(t, handler, http.MethodDelete, "/api/v1/sales/missing", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
