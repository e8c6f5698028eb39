package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{"uuid", "/api/links/550e8400-e29b-41d4-a716-446655440000", "/api/links/:id"},
		{"upper-case uuid", "/api/keys/550E8400-E29B-41D4-A716-446655440000", "/api/keys/:id"},
		{"numeric", "/api/links/12345", "/api/links/:id"},
		{"slug untouched", "/abcXYZ1", "/abcXYZ1"},
		{"root", "/", "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizePath(tt.path); got != tt.want {
				t.Errorf("normalizePath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestMetricsMiddleware_UsesRoutePattern(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{slug}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusFound)
	})
	h := MetricsMiddleware(mux)

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "GET /{slug}", "302"))
	for _, slug := range []string{"/a1", "/b2", "/c3"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, slug, nil))
	}
	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "GET /{slug}", "302"))

	if after-before != 3 {
		t.Errorf("expected 3 requests under one pattern label, got %v", after-before)
	}
}
