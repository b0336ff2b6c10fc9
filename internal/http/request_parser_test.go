package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestDecodeJSONBody(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name": "ok"}`))
	if err := decodeJSONBody(httptest.NewRecorder(), req, &dst); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dst.Name != "ok" {
		t.Fatalf("name=%q", dst.Name)
	}
}

func TestDecodeJSONBodyErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"empty", "", "empty"},
		{"malformed", "{", "invalid JSON"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var dst map[string]any
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			err := decodeJSONBody(httptest.NewRecorder(), req, &dst)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error=%v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestReadBodyRejectsOversized(t *testing.T) {
	big := strings.Repeat("a", maxBodyBytes+1)
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(big))
	if _, err := readBody(httptest.NewRecorder(), req); err == nil {
		t.Fatalf("expected error for oversized body")
	}
}

func TestParseForecastDays(t *testing.T) {
	tests := []struct {
		query   string
		want    int
		wantErr bool
	}{
		{"", 7, false},
		{"days=1", 1, false},
		{"days=90", 90, false},
		{"days=-3", 1, false},
		{"days=1000", 90, false},
		{"days=tomorrow", 0, true},
	}

	for _, tt := range tests {
		q, _ := url.ParseQuery(tt.query)
		got, err := parseForecastDays(q)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("%q: expected error", tt.query)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q: unexpected error %v", tt.query, err)
		}
		if got != tt.want {
			t.Fatalf("%q: got %d, want %d", tt.query, got, tt.want)
		}
	}
}
