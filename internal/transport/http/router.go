package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/GSMS-B/ProjectQR/internal/config"
	"github.com/GSMS-B/ProjectQR/internal/infrastructure/telemetry"
	"github.com/GSMS-B/ProjectQR/internal/processing/codes"
	"github.com/GSMS-B/ProjectQR/internal/processing/reports"
	"github.com/GSMS-B/ProjectQR/internal/processing/resolve"
	"github.com/GSMS-B/ProjectQR/internal/processing/scans"
	"github.com/GSMS-B/ProjectQR/internal/processing/security"
	"github.com/GSMS-B/ProjectQR/internal/transport/http/middleware"
	"github.com/GSMS-B/ProjectQR/pkg/httputils"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var spanNames = map[string]string{
	"GET /health":                     "health",
	"GET /metrics":                    "metrics",
	"POST /api/codes":                 "codes.create",
	"GET /api/codes/{code}":           "codes.get",
	"PATCH /api/codes/{code}":         "codes.edit",
	"DELETE /api/codes/{code}":        "codes.deactivate",
	"GET /api/codes/{code}/analytics": "codes.analytics",
	"GET /api/validate":               "codes.validate",
	"GET /api/codes/{code}/reports":   "reports.list",
	"GET /report/{code}":              "reports.page",
	"POST /api/report/{code}":         "reports.submit",
	"GET /preview/{code}":             "codes.preview",
	"GET /{code}":                     "codes.resolve",
}

// Dependencies bundles everything the router wires into handlers.
type Dependencies struct {
	Registry  *codes.Registry
	Analytics *scans.Analytics
	Verifier  security.Verifier
	Resolver  *resolve.Engine
	Reports   *reports.Service
	Limiter   *middleware.RedisFixedWindowLimiter
}

type RouterOptions struct {
	EnableCORS    bool
	EnableLogging bool
	EnableMetrics bool
}

func DefaultRouterOptions() RouterOptions {
	return RouterOptions{
		EnableCORS:    true,
		EnableLogging: true,
		EnableMetrics: true,
	}
}

func NewRouter(cfg *config.Config, deps Dependencies) http.Handler {
	return NewRouterWithOptions(cfg, deps, DefaultRouterOptions())
}

func NewRouterWithOptions(cfg *config.Config, deps Dependencies, opts RouterOptions) http.Handler {
	mux := http.NewServeMux()

	healthHandler := NewHealthHandler()
	codesHandler := NewCodesHandler(cfg, deps.Registry, deps.Analytics, deps.Verifier)
	redirectHandler := NewRedirectHandler(cfg, deps.Resolver)
	reportHandler := NewReportHandler(deps.Registry, deps.Reports)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		httputils.RespondJSON(w, http.StatusOK, map[string]string{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.Handle("GET /metrics", healthHandler.Metrics())

	managementMiddlewares := []func(http.Handler) http.Handler{
		middleware.APIKeyMiddleware(cfg.Security.APIKeys),
	}
	createMiddlewares := managementMiddlewares
	if deps.Limiter != nil {
		createMiddlewares = append(
			[]func(http.Handler) http.Handler{middleware.RateLimitMiddleware(deps.Limiter)},
			managementMiddlewares...,
		)
	}

	mux.Handle("POST /api/codes", middleware.Chain(
		http.HandlerFunc(codesHandler.Create),
		createMiddlewares...,
	))
	mux.Handle("GET /api/codes/{code}", middleware.Chain(
		http.HandlerFunc(codesHandler.Get),
		managementMiddlewares...,
	))
	mux.Handle("PATCH /api/codes/{code}", middleware.Chain(
		http.HandlerFunc(codesHandler.Edit),
		managementMiddlewares...,
	))
	mux.Handle("DELETE /api/codes/{code}", middleware.Chain(
		http.HandlerFunc(codesHandler.Deactivate),
		managementMiddlewares...,
	))
	mux.Handle("GET /api/codes/{code}/analytics", middleware.Chain(
		http.HandlerFunc(codesHandler.Analytics),
		managementMiddlewares...,
	))
	mux.Handle("GET /api/validate", middleware.Chain(
		http.HandlerFunc(codesHandler.Validate),
		managementMiddlewares...,
	))
	mux.Handle("GET /api/codes/{code}/reports", middleware.Chain(
		http.HandlerFunc(reportHandler.List),
		managementMiddlewares...,
	))

	mux.HandleFunc("GET /report/{code}", reportHandler.Page)
	mux.HandleFunc("POST /api/report/{code}", reportHandler.Submit)

	mux.HandleFunc("GET /preview/{code}", redirectHandler.Preview)
	mux.HandleFunc("GET /{code}", redirectHandler.Resolve)

	var innerHandler http.Handler = mux
	if opts.EnableCORS {
		innerHandler = middleware.CORSMiddleware(innerHandler)
	}
	if opts.EnableLogging {
		innerHandler = middleware.LoggingMiddleware(innerHandler)
	}
	if opts.EnableMetrics {
		innerHandler = middleware.MetricsMiddleware(innerHandler)
	}

	otelOptions := []otelhttp.Option{
		otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
			key := r.Method + " " + r.Pattern
			if name, ok := spanNames[key]; ok {
				return name
			}
			if r.Pattern != "" {
				return r.Pattern
			}
			path := strings.TrimSpace(r.URL.Path)
			if path == "" {
				path = "/"
			}
			return path
		}),
	}

	if telemetry.TracerProvider != nil {
		otelOptions = append(otelOptions, otelhttp.WithTracerProvider(telemetry.TracerProvider))
	}

	return otelhttp.NewHandler(innerHandler, cfg.App.Name, otelOptions...)
}
