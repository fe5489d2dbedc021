package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// contextRouter mounts handlers on the same route shape the API server uses.
func contextRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Route("/v1/context", func(r chi.Router) {
		r.Post("/", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"results":[],"total_results":0}`))
		})
		r.Get("/search", func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("q") == "" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			_, _ = w.Write([]byte(`{"items":[],"total":0}`))
		})
		r.Post("/prompt", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})
	})
	return r
}

func serve(r http.Handler, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, http.NoBody)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestMiddleware_LabelsContextSearch(t *testing.T) {
	r := contextRouter()
	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/v1/context/search", "200"))

	rr := serve(r, http.MethodGet, "/v1/context/search?q=TechCorp&top_k=2")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/v1/context/search", "200"))
	if after-before != 1 {
		t.Errorf("expected one search request counted, got %f", after-before)
	}
	if testutil.CollectAndCount(httpRequestDuration) == 0 {
		t.Error("expected ctxdex_http_request_duration_seconds to have observations")
	}
}

func TestMiddleware_QueryStringNotInLabel(t *testing.T) {
	r := contextRouter()
	serve(r, http.MethodGet, "/v1/context/search?q=founded")
	serve(r, http.MethodGet, "/v1/context/search?q=products")

	val := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/v1/context/search", "200"))
	if val < 2 {
		t.Errorf("expected both searches under one label, got %f", val)
	}
	if n := testutil.CollectAndCount(httpRequestsTotal); n == 0 {
		t.Fatal("expected ctxdex_http_requests_total series")
	}
}

func TestMiddleware_StatusCodes(t *testing.T) {
	r := contextRouter()

	tests := []struct {
		name    string
		method  string
		target  string
		pattern string
		status  string
	}{
		{"context request", http.MethodPost, "/v1/context", "/v1/context", "200"},
		{"search without q", http.MethodGet, "/v1/context/search", "/v1/context/search", "400"},
		{"prompt failure", http.MethodPost, "/v1/context/prompt", "/v1/context/prompt", "500"},
		{"health", http.MethodGet, "/health", "/health", "200"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(tc.method, tc.pattern, tc.status))
			serve(r, tc.method, tc.target)
			after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(tc.method, tc.pattern, tc.status))
			if after-before != 1 {
				t.Errorf("expected %s %s counted with status %s, delta %f", tc.method, tc.pattern, tc.status, after-before)
			}
		})
	}
}

func TestMiddleware_UnknownRouteSharesLabel(t *testing.T) {
	r := contextRouter()
	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "unknown", "404"))

	serve(r, http.MethodGet, "/v1/documents/1")
	serve(r, http.MethodGet, "/"+strings.Repeat("x", 64))

	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "unknown", "404"))
	if after-before != 2 {
		t.Errorf("expected unmatched paths under %q, delta %f", "unknown", after-before)
	}
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", "unknown"},
		{"/*", "unknown"},
		{"/", "/"},
		{"/v1/context/", "/v1/context"},
		{"/v1/context/search", "/v1/context/search"},
		{"/health", "/health"},
	}

	for _, tc := range tests {
		if got := normalizePath(tc.input); got != tc.expected {
			t.Errorf("normalizePath(%q) = %q, want %q", tc.input, got, tc.expected)
		}
	}
}
