package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// CORSMiddleware adds CORS headers to responses using the rs/cors library.
// The dashboard frontend is served from a different origin.
func CORSMiddleware(next http.Handler) http.Handler {
	c := cors.New(cors.Options{
		// Allow all origins dynamically to support credentials
		AllowOriginFunc: func(origin string) bool {
			return true
		},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
			http.MethodHead,
		},
		AllowedHeaders: []string{
			"Content-Type",
			"Authorization",
			"X-API-Key",
			"Accept",
			"Origin",
			"X-Requested-With",
			"X-Correlation-Id",
			// OpenTelemetry headers
			"traceparent",
			"tracestate",
			"baggage",
		},
		AllowCredentials: true,
	})

	return c.Handler(next)
}
