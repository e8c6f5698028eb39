package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

type Config struct {
	App       AppConfig
	Server    ServerConfig
	Storage   StorageConfig
	MongoDB   MongoDBConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Shortener ShortenerConfig
	RateLimit RateLimitConfig
	Security  SecurityConfig
	OTel      OTelConfig
}

type AppConfig struct {
	Name       string
	Version    string
	Env        string
	LogLevel   string
	InstanceID string
}

type ServerConfig struct {
	Port            string
	Host            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	CORSOrigins     []string
}

type StorageConfig struct {
	Backend string // mongo, postgres or memory
	Timeout time.Duration
}

type MongoDBConfig struct {
	URI      string
	Database string
}

type PostgresConfig struct {
	DSN      string
	MaxConns int
}

type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	PoolSize int
}

type ShortenerConfig struct {
	// BaseURL prefixes short URLs. When empty the request host is used.
	BaseURL         string
	SlugLength      int
	RedirectStatus  int // 301 or 302
	NotFoundURL     string
	BlockedPatterns []string
	AsyncClicks     bool
	ClickTimeout    time.Duration
	MaxBodyBytes    int64
}

type RateLimitConfig struct {
	AuthenticatedMax    int
	AnonymousMax        int
	Window              time.Duration
	StoreTimeout        time.Duration
	BreakerFailures     int
	BreakerOpenTimeout  time.Duration
	FallbackSweepPeriod time.Duration
}

type SecurityConfig struct {
	// TrustProxyHeaders makes X-Forwarded-For / X-Real-IP the client
	// address. Enable only behind a proxy that overwrites them.
	TrustProxyHeaders bool
}

type OTelConfig struct {
	Enabled  bool
	Endpoint string
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found, using environment variables")
	}

	postgresDSN := GetEnv("POSTGRES_DSN", "")
	if postgresDSN == "" {
		postgresDSN = DefaultPostgresDSN()
	}

	cfg := &Config{
		App: AppConfig{
			Name:       GetEnv("APP_NAME", "slugs"),
			Version:    GetEnv("APP_VERSION", "0.1.0"),
			Env:        GetEnv("APP_ENV", "development"),
			LogLevel:   GetEnv("LOG_LEVEL", "info"),
			InstanceID: GetEnv("APP_INSTANCE_ID", DefaultInstanceID("slugs")),
		},
		Server: ServerConfig{
			Port:            GetEnv("APP_PORT", "8080"),
			Host:            GetEnv("APP_HOST", "localhost"),
			ReadTimeout:     GetEnvDuration("APP_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    GetEnvDuration("APP_WRITE_TIMEOUT", 10*time.Second),
			ShutdownTimeout: GetEnvDuration("APP_SHUTDOWN_TIMEOUT", 10*time.Second),
			CORSOrigins:     SplitCSV(GetEnv("APP_CORS_ORIGINS", "*")),
		},
		Storage: StorageConfig{
			Backend: GetEnv("STORAGE_BACKEND", BackendMongo),
			Timeout: GetEnvDuration("SHORTENER_STORE_TIMEOUT", 3*time.Second),
		},
		MongoDB: MongoDBConfig{
			URI:      GetEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database: GetEnv("MONGODB_DATABASE", "slugs"),
		},
		Postgres: PostgresConfig{
			DSN:      postgresDSN,
			MaxConns: GetEnvInt("DB_MAX_CONNS", 10),
		},
		Redis: RedisConfig{
			Enabled:  GetEnvBool("REDIS_ENABLED", true),
			Addr:     GetEnv("REDIS_ADDR", "localhost:6379"),
			Password: GetEnv("REDIS_PASSWORD", ""),
			DB:       GetEnvInt("REDIS_DB", 0),
			PoolSize: GetEnvInt("REDIS_POOL_SIZE", 10),
		},
		Shortener: ShortenerConfig{
			BaseURL:         GetEnv("SHORTENER_BASE_URL", ""),
			SlugLength:      GetEnvInt("SHORTENER_SLUG_LENGTH", 7),
			RedirectStatus:  GetEnvInt("SHORTENER_REDIRECT_STATUS", 302),
			NotFoundURL:     GetEnv("SHORTENER_NOT_FOUND_URL", ""),
			BlockedPatterns: SplitCSV(GetEnv("BLOCKED_PATTERNS", "")),
			AsyncClicks:     GetEnvBool("SHORTENER_ASYNC_CLICKS", false),
			ClickTimeout:    GetEnvDuration("SHORTENER_CLICK_TIMEOUT", 2*time.Second),
			MaxBodyBytes:    int64(GetEnvInt("SHORTENER_MAX_BODY_BYTES", 16<<10)),
		},
		RateLimit: RateLimitConfig{
			AuthenticatedMax:    GetEnvInt("RATE_LIMIT_AUTHENTICATED_MAX", 100),
			AnonymousMax:        GetEnvInt("RATE_LIMIT_ANONYMOUS_MAX", 10),
			Window:              GetEnvDuration("RATE_LIMIT_WINDOW", 10*time.Minute),
			StoreTimeout:        GetEnvDuration("RATE_LIMIT_STORE_TIMEOUT", 200*time.Millisecond),
			BreakerFailures:     GetEnvInt("RATE_LIMIT_BREAKER_FAILURES", 5),
			BreakerOpenTimeout:  GetEnvDuration("RATE_LIMIT_BREAKER_OPEN_TIMEOUT", 30*time.Second),
			FallbackSweepPeriod: GetEnvDuration("RATE_LIMIT_FALLBACK_SWEEP", time.Minute),
		},
		Security: SecurityConfig{
			TrustProxyHeaders: GetEnvBool("TRUST_PROXY_HEADERS", false),
		},
		OTel: OTelConfig{
			Enabled:  GetEnvBool("OTEL_ENABLED", false),
			Endpoint: GetEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://localhost:4318"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Backend {
	case BackendMongo, BackendPostgres, BackendMemory:
	default:
		return fmt.Errorf("STORAGE_BACKEND must be one of mongo, postgres, memory (got %q)", c.Storage.Backend)
	}
	if c.Shortener.RedirectStatus != 301 && c.Shortener.RedirectStatus != 302 {
		return fmt.Errorf("SHORTENER_REDIRECT_STATUS must be 301 or 302 (got %d)", c.Shortener.RedirectStatus)
	}
	if c.Shortener.SlugLength < 4 || c.Shortener.SlugLength > 32 {
		return fmt.Errorf("SHORTENER_SLUG_LENGTH must be between 4 and 32 (got %d)", c.Shortener.SlugLength)
	}
	if c.RateLimit.AuthenticatedMax <= 0 || c.RateLimit.AnonymousMax <= 0 {
		return fmt.Errorf("rate limit maximums must be positive (got %d/%d)",
			c.RateLimit.AuthenticatedMax, c.RateLimit.AnonymousMax)
	}
	if c.RateLimit.Window < time.Second {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be at least 1s (got %s)", c.RateLimit.Window)
	}
	if c.Storage.Timeout <= 0 {
		return fmt.Errorf("SHORTENER_STORE_TIMEOUT must be positive (got %s)", c.Storage.Timeout)
	}
	return nil
}
