package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/brokerfees/internal/domain/dto"
	"github.com/guttosm/brokerfees/internal/domain/models"
	"github.com/guttosm/brokerfees/internal/fees"
	"github.com/guttosm/brokerfees/internal/service"
	"github.com/guttosm/brokerfees/internal/validation"
	"github.com/shopspring/decimal"
)

const runID = "7b0c8a43-54a6-4f5e-9d8f-9a1f0e2b3c4d"

// mockFeeService serves fees from the default registry and stubs history.
type mockFeeService struct {
	service.FeeService
	runs    []models.ValidationRun
	errs    []models.ValidationError
	histErr error
	limit   int
}

func (m *mockFeeService) RecentRuns(_ context.Context, limit int) ([]models.ValidationRun, error) {
	m.limit = limit
	return m.runs, m.histErr
}

func (m *mockFeeService) RunErrors(_ context.Context, _ string) ([]models.ValidationError, error) {
	return m.errs, m.histErr
}

var _ service.FeeService = (*mockFeeService)(nil)

func newMock() *mockFeeService {
	return &mockFeeService{FeeService: service.NewFeeService(fees.NewCalculator(fees.DefaultRegistry()), nil)}
}

func setupRouterWithMock(s service.FeeService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	calc := fees.NewCalculator(fees.DefaultRegistry())
	h := NewHandler(s, service.NewReconciler(validation.NewValidator(calc), 3))
	r := gin.New()
	v1 := r.Group("/api/v1")
	v1.GET("/fees", h.GetFee)
	v1.GET("/comparison", h.GetComparison)
	v1.GET("/personas", h.GetPersonas)
	v1.POST("/tables/validate", h.ValidateTable)
	v1.POST("/tables/patch", h.PatchTable)
	v1.POST("/tables/reconcile", h.ReconcileTables)
	v1.GET("/validations", h.ListValidations)
	v1.GET("/validations/:id/errors", h.GetValidationErrors)
	return r
}

func do(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGetFee_TableDriven(t *testing.T) {
	cases := []struct {
		name   string
		query  string
		status int
		assert func(t *testing.T, body []byte)
	}{
		{name: "missing broker", query: "/api/v1/fees?instrument=stocks&amount=100", status: http.StatusBadRequest},
		{name: "missing amount", query: "/api/v1/fees?broker=Bolero&instrument=stocks", status: http.StatusBadRequest},
		{name: "invalid amount", query: "/api/v1/fees?broker=Bolero&instrument=stocks&amount=abc", status: http.StatusBadRequest},
		{name: "negative amount", query: "/api/v1/fees?broker=Bolero&instrument=stocks&amount=-5", status: http.StatusBadRequest},
		{name: "no rule", query: "/api/v1/fees?broker=Revolut&instrument=bonds&amount=1000", status: http.StatusNotFound},
		{
			name:   "success with alias",
			query:  "/api/v1/fees?broker=keytrade&instrument=ETF&amount=50000",
			status: http.StatusOK,
			assert: func(t *testing.T, body []byte) {
				var out dto.FeeResponse
				if err := json.Unmarshal(body, &out); err != nil {
					t.Fatalf("invalid json: %v", err)
				}
				if out.Broker != "Keytrade Bank" || out.Instrument != "etfs" || out.Fee != 44.95 || out.Amount != 50000 {
					t.Fatalf("unexpected body: %+v", out)
				}
				if !strings.Contains(out.Explanation, "4 x EUR7.50") {
					t.Fatalf("unexpected explanation: %q", out.Explanation)
				}
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(setupRouterWithMock(newMock()), http.MethodGet, tc.query, "")
			if w.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, w.Code, w.Body.String())
			}
			if tc.assert != nil {
				tc.assert(t, w.Body.Bytes())
			}
		})
	}
}

func TestGetComparison(t *testing.T) {
	w := do(setupRouterWithMock(newMock()), http.MethodGet, "/api/v1/comparison?brokers=bolero,%20,degiro", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var out map[string]map[string]map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	stocks := out["euronext_brussels"]["stocks"]
	if len(stocks) != 2 {
		t.Fatalf("expected 2 brokers, got %v", stocks)
	}
	bolero := stocks["Bolero"].(map[string]any)
	if bolero["2500"] != 7.5 || bolero["50000"] != 50.0 {
		t.Fatalf("unexpected Bolero row: %v", bolero)
	}
}

func TestGetPersonas(t *testing.T) {
	w := do(setupRouterWithMock(newMock()), http.MethodGet, "/api/v1/personas", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var out []dto.PersonaRanking
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(out) != 3 || out[0].Key != "passive_investor" {
		t.Fatalf("unexpected personas: %+v", out)
	}
	if top := out[0].Brokers[0]; top.Broker != "Degiro Belgium" || top.TotalAnnual != 38.5 {
		t.Fatalf("unexpected cheapest passive broker: %+v", top)
	}
}

func TestValidateTable(t *testing.T) {
	cases := []struct {
		name      string
		body      string
		status    int
		wantValid bool
		checked   int
		errors    int
	}{
		{name: "malformed json", body: `{"euronext_brussels":`, status: http.StatusBadRequest},
		{name: "not an object", body: `[1,2]`, status: http.StatusBadRequest},
		{
			name:      "correct cells",
			body:      `{"euronext_brussels":{"stocks":{"Bolero":{"2500":"€7,50","5000":15}}}}`,
			status:    http.StatusOK,
			wantValid: true, checked: 2,
		},
		{
			name:    "wrong cell",
			body:    `{"euronext_brussels":{"stocks":[{"broker":"Bolero","2500":7.5,"5000":10}]}}`,
			status:  http.StatusOK,
			checked: 2, errors: 1,
		},
		{
			name:      "nothing checkable",
			body:      `{"euronext_brussels":{"options":{"Bolero":{"2500":1}}}}`,
			status:    http.StatusOK,
			wantValid: true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(setupRouterWithMock(newMock()), http.MethodPost, "/api/v1/tables/validate", tc.body)
			if w.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, w.Code, w.Body.String())
			}
			if tc.status != http.StatusOK {
				return
			}
			var out dto.ValidationResponse
			if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if out.Valid != tc.wantValid || out.Checked != tc.checked || len(out.Errors) != tc.errors {
				t.Fatalf("unexpected result: %+v", out)
			}
			if out.Checkable != (tc.checked > 0) {
				t.Fatalf("checkable=%v with checked=%d", out.Checkable, out.Checked)
			}
			if tc.errors > 0 {
				e := out.Errors[0]
				if e.Broker != "Bolero" || e.Amount != "5000" || e.Observed != 10 || e.Expected != 15 {
					t.Fatalf("unexpected error: %+v", e)
				}
				if !strings.Contains(out.Correction, "CORRECTIONS FROM PREVIOUS ATTEMPT") {
					t.Fatalf("missing correction text: %q", out.Correction)
				}
			}
		})
	}
}

func TestPatchTable(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		status  int
		patched int
	}{
		{name: "missing table", body: `{}`, status: http.StatusBadRequest},
		{
			name:    "validate then patch",
			body:    `{"table":{"euronext_brussels":{"stocks":{"Bolero":{"2500":7.5,"5000":10}}}}}`,
			status:  http.StatusOK,
			patched: 1,
		},
		{
			name: "explicit errors",
			body: `{"table":{"euronext_brussels":{"stocks":{"Bolero":{"5000":10}}}},
				"errors":[{"broker":"bolero","instrument":"aandelen","amount":"5000","observed":10,"expected":15}]}`,
			status:  http.StatusOK,
			patched: 1,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(setupRouterWithMock(newMock()), http.MethodPost, "/api/v1/tables/patch", tc.body)
			if w.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, w.Code, w.Body.String())
			}
			if tc.status != http.StatusOK {
				return
			}
			var out struct {
				Table   map[string]map[string]map[string]map[string]float64 `json:"table"`
				Patched int                                                 `json:"patched"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if out.Patched != tc.patched {
				t.Fatalf("patched=%d, want %d", out.Patched, tc.patched)
			}
			if got := out.Table["euronext_brussels"]["stocks"]["Bolero"]["5000"]; got != 15 {
				t.Fatalf("5000 cell = %v, want 15", got)
			}
		})
	}
}

func TestReconcileTables(t *testing.T) {
	wrong := `{"euronext_brussels":{"stocks":{"Bolero":{"2500":7.5,"5000":10}}}}`
	right := `{"euronext_brussels":{"stocks":{"Bolero":{"2500":7.5,"5000":15}}}}`
	cases := []struct {
		name     string
		body     string
		status   int
		outcome  string
		attempts int
		patched  int
	}{
		{name: "no candidates", body: `{"candidates":[]}`, status: http.StatusBadRequest},
		{name: "second attempt valid", body: `{"candidates":[` + wrong + `,` + right + `]}`, status: http.StatusOK, outcome: "valid", attempts: 2},
		{name: "patched after budget", body: `{"candidates":[` + wrong + `,` + wrong + `,` + wrong + `]}`, status: http.StatusOK, outcome: "patched", attempts: 3, patched: 1},
		{name: "replay runs dry then patched", body: `{"candidates":[` + wrong + `]}`, status: http.StatusOK, outcome: "patched", attempts: 3, patched: 1},
		{name: "unverified", body: `{"candidates":[{"euronext_brussels":{}}]}`, status: http.StatusOK, outcome: "unverified", attempts: 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(setupRouterWithMock(newMock()), http.MethodPost, "/api/v1/tables/reconcile", tc.body)
			if w.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, w.Code, w.Body.String())
			}
			if tc.status != http.StatusOK {
				return
			}
			var out dto.ReconcileResponse
			if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if out.Outcome != tc.outcome || out.Attempts != tc.attempts || out.Patched != tc.patched {
				t.Fatalf("unexpected reconciliation: %+v", out)
			}
			if tc.outcome == "valid" && len(out.Corrections) != 1 {
				t.Fatalf("expected one correction, got %d", len(out.Corrections))
			}
			if tc.outcome == "patched" && !out.Result.Valid {
				t.Fatalf("patched table should validate: %+v", out.Result)
			}
		})
	}
}

func TestListValidations(t *testing.T) {
	now := time.Date(2025, 9, 11, 10, 0, 0, 0, time.UTC)
	cases := []struct {
		name      string
		svc       *mockFeeService
		query     string
		status    int
		wantLimit int
	}{
		{name: "bad limit", svc: newMock(), query: "/api/v1/validations?limit=0", status: http.StatusBadRequest},
		{name: "limit too large", svc: newMock(), query: "/api/v1/validations?limit=1000", status: http.StatusBadRequest},
		{name: "history disabled", svc: func() *mockFeeService { m := newMock(); m.histErr = service.ErrNoStore; return m }(), query: "/api/v1/validations", status: http.StatusServiceUnavailable},
		{name: "db error", svc: func() *mockFeeService { m := newMock(); m.histErr = errors.New("db down"); return m }(), query: "/api/v1/validations", status: http.StatusInternalServerError},
		{
			name: "default limit",
			svc: func() *mockFeeService {
				m := newMock()
				m.runs = []models.ValidationRun{{ID: runID, Source: "api", Valid: true, Checked: 126, Passed: 126, CreatedAt: now}}
				return m
			}(),
			query: "/api/v1/validations", status: http.StatusOK, wantLimit: defaultRunsLimit,
		},
		{name: "explicit limit", svc: newMock(), query: "/api/v1/validations?limit=5", status: http.StatusOK, wantLimit: 5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(setupRouterWithMock(tc.svc), http.MethodGet, tc.query, "")
			if w.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, w.Code, w.Body.String())
			}
			if tc.status != http.StatusOK {
				return
			}
			if tc.svc.limit != tc.wantLimit {
				t.Fatalf("limit=%d, want %d", tc.svc.limit, tc.wantLimit)
			}
			var out []dto.ValidationRun
			if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if len(out) != len(tc.svc.runs) {
				t.Fatalf("got %d runs, want %d", len(out), len(tc.svc.runs))
			}
		})
	}
}

func TestGetValidationErrors(t *testing.T) {
	withErrs := newMock()
	withErrs.errs = []models.ValidationError{{
		Broker: "Bolero", Instrument: "stocks", Amount: "5000",
		Observed: decimal.NewFromInt(10), Expected: decimal.NewFromInt(15),
	}}
	disabled := newMock()
	disabled.histErr = service.ErrNoStore

	cases := []struct {
		name   string
		svc    *mockFeeService
		id     string
		status int
		count  int
	}{
		{name: "invalid id", svc: newMock(), id: "nope", status: http.StatusBadRequest},
		{name: "history disabled", svc: disabled, id: runID, status: http.StatusServiceUnavailable},
		{name: "unknown run is empty", svc: newMock(), id: runID, status: http.StatusOK, count: 0},
		{name: "errors returned", svc: withErrs, id: runID, status: http.StatusOK, count: 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(setupRouterWithMock(tc.svc), http.MethodGet, "/api/v1/validations/"+tc.id+"/errors", "")
			if w.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, w.Code, w.Body.String())
			}
			if tc.status != http.StatusOK {
				return
			}
			var out []dto.ValidationError
			if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if len(out) != tc.count {
				t.Fatalf("got %d errors, want %d", len(out), tc.count)
			}
		})
	}
}

func TestBrokerList(t *testing.T) {
	cases := map[string]int{"": 0, " , ": 0, "bolero": 1, "bolero, degiro ,,rebel": 3}
	for in, want := range cases {
		if got := len(brokerList(in)); got != want {
			t.Fatalf("brokerList(%q) has %d entries, want %d", in, got, want)
		}
	}
}
