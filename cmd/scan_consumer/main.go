package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/GSMS-B/ProjectQR/internal/events"
	"github.com/GSMS-B/ProjectQR/internal/infrastructure/db"
	"github.com/GSMS-B/ProjectQR/internal/infrastructure/logger"
	"github.com/GSMS-B/ProjectQR/internal/infrastructure/telemetry"
	"github.com/GSMS-B/ProjectQR/internal/processing/scans"
	mongoStorage "github.com/GSMS-B/ProjectQR/internal/storage/mongo"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type config struct {
	appEnv        string
	appName       string
	appVersion    string
	logLevel      string
	otelEndpoint  string
	mongoURI      string
	mongoDatabase string

	kafkaBrokers []string
	kafkaTopic   string
	kafkaGroupID string

	fetchMaxWait   time.Duration
	operationTTL   time.Duration
	consumeBackoff time.Duration
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.appEnv, cfg.logLevel); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	shutdownTracer, err := telemetry.InitTracer(
		cfg.otelEndpoint,
		fmt.Sprintf("%s-scan-consumer", cfg.appName),
		cfg.appVersion,
	)
	if err != nil {
		logger.Warn("failed to initialize tracer, continuing without tracing", zap.Error(err))
		shutdownTracer = nil
	} else {
		logger.Info("OpenTelemetry tracer initialized",
			zap.String("endpoint", cfg.otelEndpoint),
			zap.String("service", fmt.Sprintf("%s-scan-consumer", cfg.appName)),
		)
	}
	defer func() {
		if shutdownTracer == nil {
			return
		}
		if err := shutdownTracer(context.Background()); err != nil {
			logger.Warn("failed to shutdown tracer", zap.Error(err))
		}
	}()

	mongoConn, err := db.ConnectMongo(cfg.mongoURI, cfg.mongoDatabase)
	if err != nil {
		logger.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	defer func() { _ = mongoConn.Disconnect() }()

	recordsRepo, err := mongoStorage.NewRecordsRepository(mongoConn)
	if err != nil {
		logger.Fatal("failed to initialize records repository", zap.Error(err))
	}
	scansRepo, err := mongoStorage.NewScansRepository(mongoConn)
	if err != nil {
		logger.Fatal("failed to initialize scans repository", zap.Error(err))
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.kafkaBrokers,
		Topic:       cfg.kafkaTopic,
		GroupID:     cfg.kafkaGroupID,
		MinBytes:    1,
		MaxBytes:    10e6,
		MaxWait:     cfg.fetchMaxWait,
		StartOffset: kafka.FirstOffset,
	})
	defer func() {
		if err := reader.Close(); err != nil {
			logger.Warn("failed to close kafka reader", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("scan consumer started",
		zap.Strings("kafka_brokers", cfg.kafkaBrokers),
		zap.String("kafka_topic", cfg.kafkaTopic),
		zap.String("kafka_group", cfg.kafkaGroupID),
	)

	tracer := otel.Tracer("scan-consumer")
	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				logger.Info("scan consumer stopping")
				return
			}
			logger.Error("failed to fetch kafka message", zap.Error(err))
			time.Sleep(cfg.consumeBackoff)
			continue
		}

		consumeCtx := contextFromKafkaHeaders(ctx, msg.Headers)
		consumeCtx, span := tracer.Start(
			consumeCtx,
			"kafka.consume.scan_recorded",
			trace.WithSpanKind(trace.SpanKindConsumer),
			trace.WithAttributes(
				attribute.String("messaging.system", "kafka"),
				attribute.String("messaging.destination.name", msg.Topic),
				attribute.String("messaging.operation", "process"),
				attribute.Int("messaging.kafka.partition", msg.Partition),
				attribute.Int64("messaging.kafka.offset", msg.Offset),
			),
		)

		if err := processMessage(consumeCtx, msg, scansRepo, recordsRepo, cfg.operationTTL); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "process scan event failed")
			logger.Error("failed to process scan event",
				zap.Error(err),
				zap.String("topic", msg.Topic),
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
			)
			span.End()
			time.Sleep(cfg.consumeBackoff)
			continue
		}

		if err := reader.CommitMessages(consumeCtx, msg); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "commit kafka offset failed")
			logger.Error("failed to commit kafka offset",
				zap.Error(err),
				zap.String("topic", msg.Topic),
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
			)
			span.End()
			time.Sleep(cfg.consumeBackoff)
			continue
		}

		span.End()
	}
}

func processMessage(
	ctx context.Context,
	msg kafka.Message,
	scansRepo *mongoStorage.ScansRepository,
	recordsRepo *mongoStorage.RecordsRepository,
	operationTTL time.Duration,
) error {
	var event events.ScanRecorded
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		logger.Warn("invalid scan event payload, skipping",
			zap.Error(err),
			zap.ByteString("payload", msg.Value),
		)
		return nil
	}
	if strings.TrimSpace(event.Code) == "" {
		logger.Warn("scan event missing code, skipping", zap.String("event_id", event.EventID))
		return nil
	}

	occurredAt := msg.Time.UTC()
	if strings.TrimSpace(event.OccurredAt) != "" {
		parsed, err := time.Parse(time.RFC3339Nano, event.OccurredAt)
		if err != nil {
			logger.Warn("invalid event occurredAt, using kafka timestamp",
				zap.Error(err),
				zap.String("event_id", event.EventID),
			)
		} else {
			occurredAt = parsed.UTC()
		}
	}

	opCtx, cancel := context.WithTimeout(ctx, operationTTL)
	defer cancel()

	scan := &scans.Event{
		ID:          event.EventID,
		Code:        event.Code,
		At:          occurredAt,
		IP:          event.IP,
		Country:     event.Country,
		CountryCode: event.CountryCode,
		City:        event.City,
		DeviceClass: scans.DeviceClass(event.DeviceClass),
		OS:          event.OS,
		Browser:     event.Browser,
		UserAgent:   event.UserAgent,
		Referrer:    event.Referrer,
	}
	if scan.DeviceClass == "" {
		scan.DeviceClass = scans.DeviceUnknown
	}

	if err := scansRepo.Append(opCtx, scan); err != nil {
		return err
	}

	if err := recordsRepo.IncScanCount(opCtx, event.Code); err != nil {
		// The event is stored; the counter is a denormalized convenience.
		logger.Warn("failed to bump scan counter",
			zap.Error(err),
			zap.String("event_id", event.EventID),
			zap.String("code", event.Code),
		)
	}

	return nil
}

func loadConfig() (config, error) {
	cfg := config{
		appEnv:         getEnv("APP_ENV", "production"),
		appName:        getEnv("APP_NAME", "qrsecure"),
		appVersion:     getEnv("APP_VERSION", "0.1.0"),
		logLevel:       getEnv("LOG_LEVEL", "info"),
		otelEndpoint:   getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://jaeger:4318"),
		mongoURI:       getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		mongoDatabase:  getEnv("MONGODB_DATABASE", "qrsecure"),
		kafkaBrokers:   splitCSV(getEnv("KAFKA_BROKERS", "kafka:9092")),
		kafkaTopic:     getEnv("KAFKA_SCAN_TOPIC", "scans.recorded"),
		kafkaGroupID:   getEnv("KAFKA_SCAN_GROUP_ID", "scan-analytics"),
		fetchMaxWait:   getEnvDuration("KAFKA_CONSUMER_MAX_WAIT", 500*time.Millisecond),
		operationTTL:   getEnvDuration("KAFKA_CONSUMER_OPERATION_TIMEOUT", 5*time.Second),
		consumeBackoff: getEnvDuration("KAFKA_CONSUMER_BACKOFF", 500*time.Millisecond),
	}

	if len(cfg.kafkaBrokers) == 0 {
		return config{}, fmt.Errorf("KAFKA_BROKERS must contain at least one broker")
	}
	if strings.TrimSpace(cfg.kafkaTopic) == "" {
		return config{}, fmt.Errorf("KAFKA_SCAN_TOPIC must not be empty")
	}
	if strings.TrimSpace(cfg.kafkaGroupID) == "" {
		return config{}, fmt.Errorf("KAFKA_SCAN_GROUP_ID must not be empty")
	}
	if cfg.operationTTL <= 0 {
		return config{}, fmt.Errorf("KAFKA_CONSUMER_OPERATION_TIMEOUT must be > 0")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func splitCSV(raw string) []string {
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

func contextFromKafkaHeaders(parent context.Context, headers []kafka.Header) context.Context {
	carrier := propagation.MapCarrier{}
	for _, header := range headers {
		key := strings.ToLower(strings.TrimSpace(header.Key))
		if key == "" {
			continue
		}
		carrier.Set(key, string(header.Value))
	}
	return otel.GetTextMapPropagator().Extract(parent, carrier)
}
