package http

import (
	"net/http"
	"strings"
	"testing"
)

func TestInsightsSuccess(t *testing.T) {
	srv, pub := newTestServer(t)

	body := `{
		"transactions": [
			{"date": "2026-08-01", "reference": "SUPERMARKET ROW", "withdraw": 100, "deposit": 0, "category": "food"},
			{"date": "2026-08-02", "reference": "ACME PAYROLL", "withdraw": 0, "deposit": 2500, "category": "income"}
		],
		"monthly_budget": 500,
		"current_balance": 3000,
		"avg_daily_expense": 50
	}`
	rr := doRequest(t, srv, http.MethodPost, "/insights", body)
	if rr.Code != http.StatusOK {
		t.Fatalf("insights status=%d body=%s", rr.Code, rr.Body.String())
	}

	report := decodeBody(t, rr)
	if got := report["monthly_expense"]; got != 100.0 {
		t.Fatalf("monthly_expense=%v", got)
	}
	if got := report["budget_left"]; got != 400.0 {
		t.Fatalf("budget_left=%v", got)
	}
	if got := report["budget_status"]; got != "ok" {
		t.Fatalf("budget_status=%v", got)
	}
	if got := report["recommended_cushion"]; got != 1500.0 {
		t.Fatalf("recommended_cushion=%v", got)
	}
	if got := report["safety_pillow_status"]; got != "good" {
		t.Fatalf("safety_pillow_status=%v", got)
	}

	// The snapshot was persisted and announced for export.
	if pub.count() != 1 {
		t.Fatalf("expected 1 export message, got %d", pub.count())
	}
}

func TestInsightsDefaultBudget(t *testing.T) {
	srv, _ := newTestServer(t)

	// No monthly_budget in the body: the configured default (1000) applies.
	body := `{
		"transactions": [{"date": "2026-08-01", "reference": "x", "withdraw": 100, "deposit": 0}],
		"current_balance": 0,
		"avg_daily_expense": 0
	}`
	rr := doRequest(t, srv, http.MethodPost, "/insights", body)
	if rr.Code != http.StatusOK {
		t.Fatalf("insights status=%d body=%s", rr.Code, rr.Body.String())
	}
	report := decodeBody(t, rr)
	if got := report["monthly_budget"]; got != 1000.0 {
		t.Fatalf("monthly_budget=%v", got)
	}
}

func TestInsightsNormalizesCategories(t *testing.T) {
	srv, _ := newTestServer(t)

	// Blank categories fall back to the default inside the engine, without
	// the handler pre-normalizing.
	body := `{
		"transactions": [
			{"date": "2026-08-01", "reference": "CORNER SHOP", "withdraw": 40, "deposit": 0, "category": ""},
			{"date": "2026-08-02", "reference": "TRATTORIA", "withdraw": 60, "deposit": 0, "category": "food"}
		],
		"monthly_budget": 500
	}`
	rr := doRequest(t, srv, http.MethodPost, "/insights", body)
	if rr.Code != http.StatusOK {
		t.Fatalf("insights status=%d body=%s", rr.Code, rr.Body.String())
	}

	categories, ok := decodeBody(t, rr)["categories"].(map[string]any)
	if !ok {
		t.Fatalf("categories missing from report")
	}
	if got := categories["other"]; got != 40.0 {
		t.Fatalf("categories[other]=%v, want 40", got)
	}
	if got := categories["food"]; got != 60.0 {
		t.Fatalf("categories[food]=%v, want 60", got)
	}
}

func TestInsightsValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name     string
		body     string
		wantCode int
		wantErr  string
	}{
		{
			name:     "empty body",
			body:     "",
			wantCode: http.StatusBadRequest,
			wantErr:  "empty",
		},
		{
			name:     "invalid json",
			body:     `{"transactions": [`,
			wantCode: http.StatusBadRequest,
			wantErr:  "invalid JSON",
		},
		{
			name:     "negative budget",
			body:     `{"monthly_budget": -1}`,
			wantCode: http.StatusBadRequest,
			wantErr:  "monthly_budget",
		},
		{
			name:     "negative avg daily expense",
			body:     `{"avg_daily_expense": -0.5}`,
			wantCode: http.StatusBadRequest,
			wantErr:  "avg_daily_expense",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(t, srv, http.MethodPost, "/insights", tt.body)
			if rr.Code != tt.wantCode {
				t.Fatalf("status=%d, want %d", rr.Code, tt.wantCode)
			}
			if errMsg := decodeBody(t, rr)["error"].(string); !strings.Contains(errMsg, tt.wantErr) {
				t.Fatalf("error %q does not mention %q", errMsg, tt.wantErr)
			}
		})
	}
}

func TestInsightsNoTransactions(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := doRequest(t, srv, http.MethodPost, "/insights", `{"monthly_budget": 100}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("insights status=%d body=%s", rr.Code, rr.Body.String())
	}
	report := decodeBody(t, rr)
	if got := report["monthly_expense"]; got != 0.0 {
		t.Fatalf("monthly_expense=%v", got)
	}
	if got := report["budget_status"]; got != "ok" {
		t.Fatalf("budget_status=%v", got)
	}
}
