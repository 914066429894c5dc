package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Server   ServerConfig
	MongoDB  MongoDBConfig
	Redis    RedisConfig
	Redirect RedirectConfig
	Security SecurityConfig
	Scans    ScansConfig
	OTel     OTelConfig
}

type AppConfig struct {
	Name     string
	Version  string
	Env      string
	LogLevel string
}

type ServerConfig struct {
	Port string
	Host string
}

type MongoDBConfig struct {
	URI      string
	Database string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type RedirectConfig struct {
	BaseURL        string
	CodeLength     int
	RedirectStatus int // 301 or 302
}

type SecurityConfig struct {
	APIKeys             []string
	CreateRatePerMinute int

	VerdictTTL   time.Duration
	CheckTimeout time.Duration

	SafeBrowsingEndpoint string
	SafeBrowsingAPIKey   string
	RDAPEndpoint         string
	GeoIPEndpoint        string
}

type ScansConfig struct {
	QueueSize int
	Workers   int
	Sink      string // "mongo" or "kafka"

	KafkaBrokers []string
	KafkaTopic   string
	KafkaGroupID string
}

type OTelConfig struct {
	Enabled  bool
	Endpoint string
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found, using environment variables")
	}

	cfg := &Config{
		App: AppConfig{
			Name:     GetEnv("APP_NAME", "qrsecure"),
			Version:  GetEnv("APP_VERSION", "0.1.0"),
			Env:      GetEnv("APP_ENV", "development"),
			LogLevel: GetEnv("LOG_LEVEL", "info"),
		},
		Server: ServerConfig{
			Port: GetEnv("APP_PORT", "8080"),
			Host: GetEnv("APP_HOST", "localhost"),
		},
		MongoDB: MongoDBConfig{
			URI:      GetEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database: GetEnv("MONGODB_DATABASE", "qrsecure"),
		},
		Redis: RedisConfig{
			Addr:     GetEnv("REDIS_ADDR", "localhost:6379"),
			Password: GetEnv("REDIS_PASSWORD", ""),
			DB:       GetEnvInt("REDIS_DB", 0),
		},
		Redirect: RedirectConfig{
			BaseURL:        GetEnv("REDIRECT_BASE_URL", "http://localhost:8080"),
			CodeLength:     GetEnvInt("CODE_LENGTH", 6),
			RedirectStatus: GetEnvInt("REDIRECT_STATUS", 302),
		},
		Security: SecurityConfig{
			APIKeys:             SplitCSV(GetEnv("API_KEYS", "")),
			CreateRatePerMinute: GetEnvInt("CREATE_RATE_PER_MINUTE", 60),
			VerdictTTL:          GetEnvDuration("VERDICT_TTL", time.Hour),
			CheckTimeout:        GetEnvDuration("CHECK_TIMEOUT", 5*time.Second),

			SafeBrowsingEndpoint: GetEnv("SAFE_BROWSING_ENDPOINT", "https://safebrowsing.googleapis.com/v4/threatMatches:find"),
			SafeBrowsingAPIKey:   GetEnv("SAFE_BROWSING_API_KEY", ""),
			RDAPEndpoint:         GetEnv("RDAP_ENDPOINT", "https://rdap.org"),
			GeoIPEndpoint:        GetEnv("GEOIP_ENDPOINT", "http://ip-api.com/json"),
		},
		Scans: ScansConfig{
			QueueSize:    GetEnvInt("SCAN_QUEUE_SIZE", 10_000),
			Workers:      GetEnvInt("SCAN_WORKERS", 2),
			Sink:         GetEnv("SCAN_SINK", "mongo"),
			KafkaBrokers: SplitCSV(GetEnv("KAFKA_BROKERS", "")),
			KafkaTopic:   GetEnv("KAFKA_SCAN_TOPIC", "scans.recorded"),
			KafkaGroupID: GetEnv("KAFKA_SCAN_GROUP_ID", "scan-analytics"),
		},
		OTel: OTelConfig{
			Enabled:  GetEnvBool("OTEL_ENABLED", false),
			Endpoint: GetEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://localhost:4318"),
		},
	}

	if cfg.Redirect.RedirectStatus != 301 && cfg.Redirect.RedirectStatus != 302 {
		return nil, fmt.Errorf("REDIRECT_STATUS must be 301 or 302 (got %d)", cfg.Redirect.RedirectStatus)
	}
	if cfg.Redirect.CodeLength < 4 || cfg.Redirect.CodeLength > 32 {
		return nil, fmt.Errorf("CODE_LENGTH must be between 4 and 32 (got %d)", cfg.Redirect.CodeLength)
	}
	if cfg.Security.VerdictTTL <= 0 {
		return nil, fmt.Errorf("VERDICT_TTL must be > 0 (got %s)", cfg.Security.VerdictTTL)
	}
	if cfg.Security.CheckTimeout <= 0 {
		return nil, fmt.Errorf("CHECK_TIMEOUT must be > 0 (got %s)", cfg.Security.CheckTimeout)
	}
	if cfg.Scans.QueueSize <= 0 {
		return nil, fmt.Errorf("SCAN_QUEUE_SIZE must be > 0 (got %d)", cfg.Scans.QueueSize)
	}
	switch cfg.Scans.Sink {
	case "mongo", "kafka":
	default:
		return nil, fmt.Errorf("SCAN_SINK must be mongo or kafka (got %q)", cfg.Scans.Sink)
	}
	if cfg.Scans.Sink == "kafka" && len(cfg.Scans.KafkaBrokers) == 0 {
		return nil, fmt.Errorf("KAFKA_BROKERS must contain at least one broker when SCAN_SINK=kafka")
	}

	return cfg, nil
}
