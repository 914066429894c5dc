package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestChain_OrderIsOutsideIn(t *testing.T) {
	var order []string
	tag := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		order = append(order, "handler")
	}), tag("first"), tag("second"))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	want := []string{"first", "second", "handler"}
	if len(order) != len(want) {
		t.Fatalf("got %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("got %v, want %v", order, want)
		}
	}
}

func TestChain_NoMiddlewares(t *testing.T) {
	called := false
	h := Chain(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		called = true
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if !called {
		t.Error("handler not invoked")
	}
}

func TestRateLimitKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/codes", nil)
	req.Header.Set(APIKeyHeader, "key-1")
	if got := rateLimitKey(req); got != "api_key:key-1" {
		t.Errorf("got %q, want %q", got, "api_key:key-1")
	}

	req = httptest.NewRequest(http.MethodPost, "/api/codes", nil)
	req.RemoteAddr = "203.0.113.7:51234"
	if got := rateLimitKey(req); got != "ip:203.0.113.7" {
		t.Errorf("got %q, want %q", got, "ip:203.0.113.7")
	}

	req = httptest.NewRequest(http.MethodPost, "/api/codes", nil)
	req.RemoteAddr = ""
	if got := rateLimitKey(req); got != "ip:unknown" {
		t.Errorf("got %q, want %q", got, "ip:unknown")
	}
}
