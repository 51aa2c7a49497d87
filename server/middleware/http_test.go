package middleware_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kbukum/riv/logger"
	"github.com/kbukum/riv/server/middleware"
)

func TestRecovery_NoPanic(t *testing.T) {
	log := logger.NewNop()
	handler := middleware.Recovery(log)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", http.NoBody))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestRecovery_Panic(t *testing.T) {
	log := logger.NewNop()
	handler := middleware.Recovery(log)(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		panic("test panic")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/test", http.NoBody))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if body["error"] != "Internal server error" {
		t.Fatalf("unexpected error message: %s", body["error"])
	}
}

func TestRequestID_GeneratesID(t *testing.T) {
	handler := middleware.RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Handler should see the generated ID in request headers
		if r.Header.Get("X-Request-Id") == "" {
			t.Error("expected X-Request-Id in request headers")
		}
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", http.NoBody))

	if rr.Header().Get("X-Request-Id") == "" {
		t.Error("expected X-Request-Id in response headers")
	}
}

func TestRequestID_PreservesExisting(t *testing.T) {
	handler := middleware.RequestID()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", http.NoBody)
	req.Header.Set("X-Request-Id", "custom-id-123")
	handler.ServeHTTP(rr, req)

	if got := rr.Header().Get("X-Request-Id"); got != "custom-id-123" {
		t.Fatalf("expected custom-id-123, got %s", got)
	}
}

func TestCORS_SetHeaders(t *testing.T) {
	cfg := &middleware.CORSConfig{
		AllowedOrigins: []string{"https://example.com"},
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}
	handler := middleware.CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", http.NoBody)
	req.Header.Set("Origin", "https://example.com")
	handler.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://example.com" {
		t.Fatalf("expected https://example.com, got %s", got)
	}
	if got := rr.Header().Get("Access-Control-Expose-Headers"); got != middleware.HeaderRequestID {
		t.Fatalf("expected %s exposed, got %s", middleware.HeaderRequestID, got)
	}
	if got := rr.Header().Get("Vary"); got != "Origin" {
		t.Fatalf("expected Vary: Origin, got %s", got)
	}
}

func TestCORS_NoOrigin(t *testing.T) {
	handler := middleware.CORS(&middleware.CORSConfig{AllowedOrigins: []string{"*"}})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/api/v1/runs", http.NoBody))

	if rr.Code != http.StatusOK || rr.Header().Get("Access-Control-Allow-Origin") != "" || rr.Header().Get("Vary") != "" {
		t.Fatalf("same-origin request was decorated: %d %v", rr.Code, rr.Header())
	}
}

func TestCORS_Preflight(t *testing.T) {
	cfg := &middleware.CORSConfig{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST"},
		MaxAge:         600,
	}
	handler := middleware.CORS(cfg)(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		t.Error("handler should not be called for OPTIONS preflight")
	}))

	rr := httptest.NewRecorder()
	req := httptest.NewRequest("OPTIONS", "/api/v1/runs", http.NoBody)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for OPTIONS preflight, got %d", rr.Code)
	}
	if got := rr.Header().Get("Access-Control-Allow-Methods"); got != "GET, POST" {
		t.Fatalf("expected 'GET, POST', got %s", got)
	}
	if got := rr.Header().Get("Access-Control-Max-Age"); got != "600" {
		t.Fatalf("expected max age 600, got %s", got)
	}
}

func TestCORS_PreflightDenied(t *testing.T) {
	tests := []struct {
		name    string
		origins []string
	}{
		{"empty allowlist", nil},
		{"other origin", []string{"https://allowed.com"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := middleware.CORS(&middleware.CORSConfig{AllowedOrigins: tt.origins})(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
				t.Error("handler should not be called for a denied preflight")
			}))

			rr := httptest.NewRecorder()
			req := httptest.NewRequest("OPTIONS", "/api/v1/runs", http.NoBody)
			req.Header.Set("Origin", "https://evil.com")
			req.Header.Set("Access-Control-Request-Method", "POST")
			handler.ServeHTTP(rr, req)

			if rr.Code != http.StatusForbidden {
				t.Fatalf("expected 403, got %d", rr.Code)
			}
			if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "" {
				t.Fatalf("expected no CORS header, got %s", got)
			}
		})
	}
}

func TestCORSConfig_Validate(t *testing.T) {
	bad := middleware.CORSConfig{AllowedOrigins: []string{"*"}, AllowCredentials: true}
	if err := bad.Validate(); err == nil {
		t.Fatal("wildcard origin with credentials accepted")
	}
	good := middleware.CORSConfig{AllowedOrigins: []string{"https://app.example.com"}, AllowCredentials: true}
	if err := good.Validate(); err != nil {
		t.Fatalf("Validate = %v", err)
	}
}

func TestCORS_DisallowedOrigin(t *testing.T) {
	cfg := &middleware.CORSConfig{
		AllowedOrigins: []string{"https://allowed.com"},
	}
	handler := middleware.CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", http.NoBody)
	req.Header.Set("Origin", "https://evil.com")
	handler.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("expected no CORS header for disallowed origin, got %s", got)
	}
}

func TestCORS_Credentials(t *testing.T) {
	cfg := &middleware.CORSConfig{
		AllowedOrigins:   []string{"https://app.example.com"},
		AllowCredentials: true,
	}
	handler := middleware.CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", http.NoBody)
	req.Header.Set("Origin", "https://app.example.com")
	handler.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Fatalf("expected 'true', got %s", got)
	}
}

func TestRequestLogger_LogsRequest(t *testing.T) {
	log := logger.NewNop()
	handler := middleware.RequestLogger(log)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("POST", "/api/v1/runs", http.NoBody))

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rr.Code)
	}
}

func TestRequestLogger_SkipsHealth(t *testing.T) {
	log := logger.NewNop()
	called := false
	handler := middleware.RequestLogger(log)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/health", http.NoBody))

	if !called {
		t.Error("handler should still be called for health endpoints")
	}
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestBodySizeLimit_AppliesLimit(t *testing.T) {
	handler := middleware.BodySizeLimit("1KB")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		size int
		want int
	}{
		{10, http.StatusOK},
		{1000, http.StatusOK},
		{1001, http.StatusRequestEntityTooLarge},
	}
	for _, tc := range tests {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest("POST", "/api/v1/runs", strings.NewReader(strings.Repeat("x", tc.size))))
		if rr.Code != tc.want {
			t.Errorf("body of %d bytes: got %d, want %d", tc.size, rr.Code, tc.want)
		}
	}
}

func TestBodySizeLimit_InvalidSizeFallsBack(t *testing.T) {
	handler := middleware.BodySizeLimit("lots")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			t.Errorf("1MB body rejected under the 10MiB default: %v", err)
		}
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("POST", "/", strings.NewReader(strings.Repeat("x", 1<<20))))
}

func TestChain_Order(t *testing.T) {
	var order []string

	m1 := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "m1-before")
			next.ServeHTTP(w, r)
			order = append(order, "m1-after")
		})
	}
	m2 := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "m2-before")
			next.ServeHTTP(w, r)
			order = append(order, "m2-after")
		})
	}

	chain := middleware.Chain(m1, m2)
	handler := chain(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		order = append(order, "handler")
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", http.NoBody))

	expected := []string{"m1-before", "m2-before", "handler", "m2-after", "m1-after"}
	if len(order) != len(expected) {
		t.Fatalf("expected %d calls, got %d: %v", len(expected), len(order), order)
	}
	for i, v := range expected {
		if order[i] != v {
			t.Fatalf("position %d: expected %s, got %s (full: %v)", i, v, order[i], order)
		}
	}
}

type flushRecorder struct {
	http.ResponseWriter
	flushed bool
}

func (f *flushRecorder) Flush() { f.flushed = true }

func TestStatusWriter_Flush(t *testing.T) {
	fr := &flushRecorder{ResponseWriter: httptest.NewRecorder()}

	log := logger.NewNop()
	handler := middleware.RequestLogger(log)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		w.WriteHeader(http.StatusOK)
	}))

	handler.ServeHTTP(fr, httptest.NewRequest("GET", "/stream", http.NoBody))

	if !fr.flushed {
		t.Error("expected Flush to be delegated to underlying writer")
	}
}

func TestBodySizeLimit_RejectsDeclaredLength(t *testing.T) {
	called := false
	handler := middleware.BodySizeLimit("16B")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("POST", "/", strings.NewReader(strings.Repeat("x", 17))))
	if rr.Code != http.StatusRequestEntityTooLarge || called {
		t.Errorf("status = %d, handler called = %v", rr.Code, called)
	}
}
