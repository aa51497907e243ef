package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	v1 "github.com/ouyangqi017/Chubang/internal/api/v1"
	"github.com/ouyangqi017/Chubang/internal/auth"
	"github.com/ouyangqi017/Chubang/internal/dataset"
)

func newTestServer() *Server {
	h := v1.NewHandler(v1.Deps{
		Holder: dataset.NewHolder(),
		Auth:   auth.NewService(nil, "test-secret", time.Hour),
	})
	return NewServer(false, h)
}

func get(s *Server, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestServer_Routes(t *testing.T) {
	s := newTestServer()

	if w := get(s, "/healthz"); w.Code != http.StatusOK {
		t.Fatalf("healthz: %d", w.Code)
	}

	w := get(s, "/")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "<html") {
		t.Fatalf("index: %d", w.Code)
	}

	// SPA 路由回落到首页
	if w := get(s, "/dashboard/sales"); w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "<html") {
		t.Fatalf("spa fallback: %d", w.Code)
	}

	if w := get(s, "/api/nope"); w.Code != http.StatusNotFound || !strings.Contains(w.Body.String(), "error") {
		t.Fatalf("unknown api: %d %s", w.Code, w.Body.String())
	}

	if w := get(s, "/api/status"); w.Code != http.StatusUnauthorized {
		t.Fatalf("status without token: %d", w.Code)
	}
}

func TestServer_CORSPreflight(t *testing.T) {
	s := newTestServer()

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/api/dashboard", nil))
	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight: %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("missing CORS header")
	}
}
