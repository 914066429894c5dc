package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GSMS-B/ProjectQR/internal/config"
	"github.com/GSMS-B/ProjectQR/internal/infrastructure/db"
	"github.com/GSMS-B/ProjectQR/internal/infrastructure/logger"
	"github.com/GSMS-B/ProjectQR/internal/infrastructure/telemetry"
	"github.com/GSMS-B/ProjectQR/internal/processing/codes"
	"github.com/GSMS-B/ProjectQR/internal/processing/reports"
	"github.com/GSMS-B/ProjectQR/internal/processing/resolve"
	"github.com/GSMS-B/ProjectQR/internal/processing/scans"
	"github.com/GSMS-B/ProjectQR/internal/processing/security"
	"github.com/GSMS-B/ProjectQR/internal/providers"
	kafkaStorage "github.com/GSMS-B/ProjectQR/internal/storage/kafka"
	"github.com/GSMS-B/ProjectQR/internal/storage/mongo"
	redisStorage "github.com/GSMS-B/ProjectQR/internal/storage/redis"
	httpTransport "github.com/GSMS-B/ProjectQR/internal/transport/http"
	"github.com/GSMS-B/ProjectQR/internal/transport/http/middleware"
	"github.com/GSMS-B/ProjectQR/pkg/httpclient"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.App.Env, cfg.App.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("name", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("env", cfg.App.Env),
	)

	var shutdownTracer func(context.Context) error
	if cfg.OTel.Enabled {
		var err error
		shutdownTracer, err = telemetry.InitTracer(cfg.OTel.Endpoint, cfg.App.Name, cfg.App.Version)
		if err != nil {
			logger.Warn("Failed to initialize tracer, continuing without tracing", zap.Error(err))
		} else {
			logger.Info("OpenTelemetry tracer initialized", zap.String("endpoint", cfg.OTel.Endpoint))
		}
	}

	mongoConn, err := db.ConnectMongo(cfg.MongoDB.URI, cfg.MongoDB.Database)
	if err != nil {
		logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer func() { _ = mongoConn.Disconnect() }()

	recordsRepo, err := mongo.NewRecordsRepository(mongoConn)
	if err != nil {
		logger.Fatal("Failed to initialize records repository", zap.Error(err))
	}
	scansRepo, err := mongo.NewScansRepository(mongoConn)
	if err != nil {
		logger.Fatal("Failed to initialize scans repository", zap.Error(err))
	}
	reportsRepo, err := mongo.NewReportsRepository(mongoConn)
	if err != nil {
		logger.Fatal("Failed to initialize reports repository", zap.Error(err))
	}

	registry := codes.NewRegistry(recordsRepo, codes.NewCryptoGenerator(), cfg.Redirect.CodeLength)

	checkClient := httpclient.New(httpclient.Options{
		Timeout:     cfg.Security.CheckTimeout,
		MaxRetries:  2,
		MaxFailures: 5,
		OpenTimeout: 30 * time.Second,
	})

	engine := security.NewEngine(
		providers.NewSafeBrowsing(checkClient, cfg.Security.SafeBrowsingEndpoint, cfg.Security.SafeBrowsingAPIKey),
		providers.NewTLSProber(),
		providers.NewRDAPClient(checkClient, cfg.Security.RDAPEndpoint),
		cfg.Security.CheckTimeout,
	)
	verdictCache := security.NewCache(engine, cfg.Security.VerdictTTL)
	registry.OnDomainChange(verdictCache.Invalidate)

	var sink scans.Sink
	switch cfg.Scans.Sink {
	case "kafka":
		publisher := kafkaStorage.NewScanPublisher(cfg.Scans.KafkaBrokers, cfg.Scans.KafkaTopic)
		defer func() { _ = publisher.Close() }()
		sink = publisher
		logger.Info("Scan sink: kafka",
			zap.Strings("brokers", cfg.Scans.KafkaBrokers),
			zap.String("topic", cfg.Scans.KafkaTopic),
		)
	default:
		sink = mongo.NewStoreSink(scansRepo, recordsRepo)
		logger.Info("Scan sink: mongo")
	}

	geoClient := httpclient.New(httpclient.Options{
		Timeout:     3 * time.Second,
		MaxRetries:  1,
		MaxFailures: 5,
		OpenTimeout: 30 * time.Second,
	})
	recorder := scans.NewRecorder(sink, providers.NewGeoIPClient(geoClient, cfg.Security.GeoIPEndpoint), scans.RecorderOptions{
		QueueSize: cfg.Scans.QueueSize,
		Workers:   cfg.Scans.Workers,
	})
	defer recorder.Close()

	analytics := scans.NewAnalytics(scansRepo)
	resolver := resolve.NewEngine(registry, verdictCache, recorder)
	reportService := reports.NewService(reportsRepo)

	var limiter *middleware.RedisFixedWindowLimiter
	redisClient, err := redisStorage.Connect(redisStorage.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		logger.Warn("Failed to connect to Redis, create rate limiting disabled", zap.Error(err))
	} else {
		defer func() { _ = redisClient.Close() }()
		limiterStore := redisStorage.NewFixedWindowLimiter(redisClient, "rl:create", time.Minute)
		limiter = middleware.NewRedisFixedWindowLimiter(limiterStore, cfg.Security.CreateRatePerMinute)
	}

	router := httpTransport.NewRouter(cfg, httpTransport.Dependencies{
		Registry:  registry,
		Analytics: analytics,
		Verifier:  verdictCache,
		Resolver:  resolver,
		Reports:   reportService,
		Limiter:   limiter,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Closed once Shutdown has drained in-flight handlers. ListenAndServe
	// returns as soon as the listener closes, and the deferred
	// recorder.Close must not run while handlers may still record scans.
	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if shutdownTracer != nil {
			_ = shutdownTracer(shutdownCtx)
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", zap.Error(err))
		}
	}()

	logger.Info("Server starting",
		zap.String("port", cfg.Server.Port),
		zap.String("env", cfg.App.Env),
		zap.String("address", fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)),
	)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		logger.Fatal("Server error", zap.Error(err))
	}

	<-shutdownDone

	logger.Info("Server stopped gracefully")
}
