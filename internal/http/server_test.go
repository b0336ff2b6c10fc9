package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"finsight/internal/forecast"
	"finsight/internal/storage"
)

type fakePublisher struct {
	mu        sync.Mutex
	published []string
	err       error
}

func (p *fakePublisher) PublishReportExport(ctx context.Context, id string, version int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, id)
	return nil
}

func (p *fakePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.published)
}

// newTestServer builds a server backed by a temp-dir database and a small
// model artifact on disk.
func newTestServer(t *testing.T) (*Server, *fakePublisher) {
	t.Helper()

	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("create repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	modelPath := filepath.Join(t.TempDir(), "model.json")
	artifact := `{"last_balance": 1000, "daily_drift": -25.5}`
	if err := os.WriteFile(modelPath, []byte(artifact), 0644); err != nil {
		t.Fatalf("write model artifact: %v", err)
	}

	pub := &fakePublisher{}
	srv := NewServer(":0", Deps{
		Storage:              repo,
		Model:                forecast.NewModel(modelPath),
		Publisher:            pub,
		DefaultMonthlyBudget: 1000,
	})
	t.Cleanup(func() { srv.Shutdown(context.Background()) })

	return srv, pub
}

func doRequest(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
	return out
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := doRequest(t, srv, http.MethodGet, "/healthz", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("healthz status=%d", rr.Code)
	}
	body := decodeBody(t, rr)
	if body["status"] != "ok" {
		t.Fatalf("expected status ok, got %v", body["status"])
	}
	if _, ok := body["uptime"]; !ok {
		t.Fatalf("expected uptime in body: %v", body)
	}
}

func TestReadyz(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := doRequest(t, srv, http.MethodGet, "/readyz", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("readyz status=%d body=%s", rr.Code, rr.Body.String())
	}
	body := decodeBody(t, rr)
	checks, ok := body["checks"].(map[string]any)
	if !ok {
		t.Fatalf("expected checks object, got %v", body)
	}
	if checks["storage"] != "ok" {
		t.Fatalf("storage check=%v", checks["storage"])
	}
	if checks["forecast_model"] != "available" {
		t.Fatalf("forecast_model check=%v", checks["forecast_model"])
	}
}

func TestReadyzWithoutStorage(t *testing.T) {
	srv := NewServer(":0", Deps{})
	t.Cleanup(func() { srv.Shutdown(context.Background()) })

	rr := doRequest(t, srv, http.MethodGet, "/readyz", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("readyz status=%d", rr.Code)
	}
	checks := decodeBody(t, rr)["checks"].(map[string]any)
	if checks["storage"] != "disabled" {
		t.Fatalf("storage check=%v", checks["storage"])
	}
	if checks["forecast_model"] != "unavailable" {
		t.Fatalf("forecast_model check=%v", checks["forecast_model"])
	}
}

func TestMetrics(t *testing.T) {
	srv, _ := newTestServer(t)

	// Generate some traffic first.
	doRequest(t, srv, http.MethodGet, "/healthz", "")

	rr := doRequest(t, srv, http.MethodGet, "/metrics", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("metrics status=%d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("unexpected content type %q", ct)
	}
	for _, counter := range []string{
		"http_requests_total",
		"rate_limit_hits_total",
		"classifier_cache_hits_total",
		"reports_stored_total",
	} {
		if !strings.Contains(rr.Body.String(), counter) {
			t.Fatalf("metrics missing %s:\n%s", counter, rr.Body.String())
		}
	}
}

func TestSecurityHeadersApplied(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := doRequest(t, srv, http.MethodGet, "/healthz", "")
	if got := rr.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("X-Content-Type-Options=%q", got)
	}
	if got := rr.Header().Get("X-Frame-Options"); got == "" {
		t.Fatalf("expected X-Frame-Options header")
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := doRequest(t, srv, http.MethodGet, "/insights", "")
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}
