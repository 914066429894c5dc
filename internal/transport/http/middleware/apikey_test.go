package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func passHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAPIKeyMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		configured []string
		header     string
		wantStatus int
	}{
		{"no keys configured runs open", nil, "", http.StatusOK},
		{"empty key slice runs open", []string{}, "", http.StatusOK},
		{"blank keys are ignored", []string{"", "  "}, "", http.StatusOK},
		{"valid key passes", []string{"dash-key-1", "dash-key-2"}, "dash-key-2", http.StatusOK},
		{"missing header rejected", []string{"dash-key-1"}, "", http.StatusUnauthorized},
		{"wrong key rejected", []string{"dash-key-1"}, "not-a-key", http.StatusUnauthorized},
		{"key is trimmed", []string{"dash-key-1"}, "  dash-key-1  ", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mw := APIKeyMiddleware(tt.configured)(passHandler())

			req := httptest.NewRequest(http.MethodPost, "/api/codes", nil)
			if tt.header != "" {
				req.Header.Set(APIKeyHeader, tt.header)
			}
			rec := httptest.NewRecorder()
			mw.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("got status %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}
