package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestCORS_PreflightAnnouncesExactVerbs(t *testing.T) {
	h := Chain(okHandler(), WithCORS(http.MethodPost))

	req := httptest.NewRequest(http.MethodOptions, "/v1/reputation/domain", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); got != "POST, OPTIONS" {
		t.Fatalf("allow-methods = %q, want \"POST, OPTIONS\"", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("allow-origin = %q, want *", got)
	}
	if got := rec.Header().Get("Access-Control-Max-Age"); got != "86400" {
		t.Fatalf("max-age = %q, want 86400", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Headers"); got != "Content-Type, Authorization" {
		t.Fatalf("allow-headers = %q", got)
	}
}

func TestCORS_PreflightDoesNotReachHandler(t *testing.T) {
	reached := false
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		reached = true
	}), WithCORS(http.MethodPost))

	req := httptest.NewRequest(http.MethodOptions, "/v1/mfa/start", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)

	if reached {
		t.Fatal("preflight must be answered by the middleware")
	}
}

func TestCORS_ActualRequestGetsOriginHeaderOnly(t *testing.T) {
	h := Chain(okHandler(), WithCORS(http.MethodGet))

	req := httptest.NewRequest(http.MethodGet, "/v1/artifacts/1.0/x", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("allow-origin = %q, want *", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); got != "" {
		t.Fatalf("non-preflight should not carry allow-methods, got %q", got)
	}
}

func TestCORS_MultipleVerbs(t *testing.T) {
	h := Chain(okHandler(), WithCORS(http.MethodGet, http.MethodPost))

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Methods"); got != "GET, POST, OPTIONS" {
		t.Fatalf("allow-methods = %q", got)
	}
}
