// Package config loads process configuration from an optional YAML file with
// environment overrides. A .env file in the working directory is read first.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Catalog backends
const (
	BackendWorkbook = "workbook"
	BackendYAML     = "yaml"
	BackendPostgres = "postgres"
)

// Extractor providers
const (
	ProviderNone      = "none"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

const redacted = "***REDACTED***"

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Redis     RedisConfig     `yaml:"redis"`
	Extractor ExtractorConfig `yaml:"extractor"`
	Auth      AuthConfig      `yaml:"auth"`
	Access    AccessConfig    `yaml:"access"`
}

type ServerConfig struct {
	ListenAddr      string        `yaml:"listen_addr" env:"PROMOAVAIL_LISTEN_ADDR" env-default:":8080"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"PROMOAVAIL_SHUTDOWN_TIMEOUT" env-default:"5s"`
	RequestTimeout  time.Duration `yaml:"request_timeout" env:"PROMOAVAIL_REQUEST_TIMEOUT" env-default:"30s"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes" env:"PROMOAVAIL_MAX_UPLOAD_BYTES" env-default:"10485760"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"PROMOAVAIL_LOG_LEVEL" env-default:"info"` // "debug" | "info" | "warn" | "error"
	Pretty bool   `yaml:"pretty" env:"PROMOAVAIL_PRETTY_LOG" env-default:"true"`
}

// CatalogConfig selects where products and synonyms are curated.
type CatalogConfig struct {
	Backend        string        `yaml:"backend" env:"PROMOAVAIL_CATALOG_BACKEND" env-default:"workbook"`
	Path           string        `yaml:"path" env:"PROMOAVAIL_CATALOG_PATH" env-default:"catalog.xlsx"`
	DatabaseURL    string        `yaml:"-" env:"PROMOAVAIL_DATABASE_URL"` // secret, env only
	MaxConnections int32         `yaml:"max_connections" env:"PROMOAVAIL_DB_MAX_CONNECTIONS" env-default:"10"`
	ReloadInterval time.Duration `yaml:"reload_interval" env:"PROMOAVAIL_RELOAD_INTERVAL" env-default:"15m"`
	LoadTimeout    time.Duration `yaml:"load_timeout" env:"PROMOAVAIL_LOAD_TIMEOUT" env-default:"30s"`
}

// RedisConfig is optional: an empty Addr runs without mirror and extraction cache.
type RedisConfig struct {
	Addr             string        `yaml:"addr" env:"PROMOAVAIL_REDIS_ADDR"`
	User             string        `yaml:"user" env:"PROMOAVAIL_REDIS_USERNAME" env-default:"default"`
	Password         string        `yaml:"-" env:"PROMOAVAIL_REDIS_PASSWORD"`
	PasswordRequired bool          `yaml:"password_required" env:"PROMOAVAIL_REDIS_PASSWORD_REQUIRED" env-default:"false"`
	DB               int           `yaml:"db" env:"PROMOAVAIL_REDIS_DB" env-default:"0"`
	DialTimeout      time.Duration `yaml:"dial_timeout" env:"PROMOAVAIL_REDIS_DIAL_TIMEOUT" env-default:"5s"`
	ReadTimeout      time.Duration `yaml:"read_timeout" env:"PROMOAVAIL_REDIS_READ_TIMEOUT" env-default:"3s"`
	WriteTimeout     time.Duration `yaml:"write_timeout" env:"PROMOAVAIL_REDIS_WRITE_TIMEOUT" env-default:"3s"`
	PoolSize         int           `yaml:"pool_size" env:"PROMOAVAIL_REDIS_POOL_SIZE" env-default:"10"`
	ConnectTimeout   time.Duration `yaml:"connect_timeout" env:"PROMOAVAIL_REDIS_CONNECT_TIMEOUT" env-default:"10s"`
	RetryInterval    time.Duration `yaml:"retry_interval" env:"PROMOAVAIL_REDIS_RETRY_INTERVAL" env-default:"1s"`
	MaxWait          time.Duration `yaml:"max_wait" env:"PROMOAVAIL_REDIS_MAX_WAIT" env-default:"5s"`
	PingTimeout      time.Duration `yaml:"ping_timeout" env:"PROMOAVAIL_REDIS_PING_TIMEOUT" env-default:"2s"`
	WarnThreshold    int           `yaml:"warn_threshold" env:"PROMOAVAIL_REDIS_WARN_THRESHOLD" env-default:"3"`
	MirrorTTL        time.Duration `yaml:"mirror_ttl" env:"PROMOAVAIL_REDIS_MIRROR_TTL" env-default:"168h"`
	ExtractionTTL    time.Duration `yaml:"extraction_ttl" env:"PROMOAVAIL_REDIS_EXTRACTION_TTL" env-default:"24h"`
}

// Enabled reports whether a redis address was configured.
func (r RedisConfig) Enabled() bool { return r.Addr != "" }

// ExtractorConfig selects the language model used to parse customer messages.
type ExtractorConfig struct {
	Provider         string        `yaml:"provider" env:"PROMOAVAIL_EXTRACTOR" env-default:"none"`
	APIKey           string        `yaml:"-" env:"PROMOAVAIL_EXTRACTOR_API_KEY"`
	Endpoint         string        `yaml:"endpoint" env:"PROMOAVAIL_EXTRACTOR_ENDPOINT"`
	Model            string        `yaml:"model" env:"PROMOAVAIL_EXTRACTOR_MODEL"`
	MaxTokens        int           `yaml:"max_tokens" env:"PROMOAVAIL_EXTRACTOR_MAX_TOKENS" env-default:"512"`
	Timeout          time.Duration `yaml:"timeout" env:"PROMOAVAIL_EXTRACTOR_TIMEOUT" env-default:"5s"`
	BreakerThreshold int           `yaml:"breaker_threshold" env:"PROMOAVAIL_EXTRACTOR_BREAKER_THRESHOLD" env-default:"5"`
	BreakerReset     time.Duration `yaml:"breaker_reset" env:"PROMOAVAIL_EXTRACTOR_BREAKER_RESET" env-default:"30s"`
	RatePerSecond    float64       `yaml:"rate_per_second" env:"PROMOAVAIL_EXTRACTOR_RATE" env-default:"5"`
	Burst            int           `yaml:"burst" env:"PROMOAVAIL_EXTRACTOR_BURST" env-default:"10"`
}

// AuthConfig protects the API. With auth disabled every caller is anonymous.
type AuthConfig struct {
	Enabled   bool     `yaml:"enabled" env:"PROMOAVAIL_AUTH_ENABLED" env-default:"false"`
	JWTSecret string   `yaml:"-" env:"PROMOAVAIL_JWT_SECRET"`
	JWTIssuer string   `yaml:"jwt_issuer" env:"PROMOAVAIL_JWT_ISSUER"`
	APIKeys   []string `yaml:"-" env:"PROMOAVAIL_API_KEYS" env-separator:","`
	// AdminAPIKeys may call /api/admin routes
	AdminAPIKeys []string `yaml:"-" env:"PROMOAVAIL_ADMIN_API_KEYS" env-separator:","`
}

type AccessConfig struct {
	AllowedCIDRs  []string `yaml:"allowed_cidrs" env:"PROMOAVAIL_ALLOWED_CIDRS" env-separator:","`
	TrustProxy    bool     `yaml:"trust_proxy" env:"PROMOAVAIL_TRUST_PROXY" env-default:"false"`
	RatePerSecond float64  `yaml:"rate_per_second" env:"PROMOAVAIL_RATE_PER_SECOND" env-default:"10"`
	RateBurst     int      `yaml:"rate_burst" env:"PROMOAVAIL_RATE_BURST" env-default:"20"`
}

// Load reads the YAML file at path (or PROMOAVAIL_CONFIG when path is empty) and
// applies environment overrides. Without a file only the environment is read.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	if path == "" {
		path = os.Getenv("PROMOAVAIL_CONFIG")
	}

	cfg := &Config{}
	var err error
	if path != "" {
		err = cleanenv.ReadConfig(path, cfg)
	} else {
		err = cleanenv.ReadEnv(cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg.Access.AllowedCIDRs = splitAndTrim(cfg.Access.AllowedCIDRs)
	cfg.Auth.APIKeys = splitAndTrim(cfg.Auth.APIKeys)
	cfg.Auth.AdminAPIKeys = splitAndTrim(cfg.Auth.AdminAPIKeys)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.Log.Level == "debug" {
		log.Printf("[DEBUG] cfg: %+v\n", cfg.Redacted())
	}
	return cfg, nil
}

// MustLoad is Load for process startup: an impossible configuration is fatal.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(fmt.Sprintf("❌ FATAL: %v", err))
	}
	return cfg
}

// Validate rejects combinations the process cannot run with.
func (c *Config) Validate() error {
	var errs []error

	switch c.Catalog.Backend {
	case BackendWorkbook, BackendYAML:
		if c.Catalog.Path == "" {
			errs = append(errs, fmt.Errorf("PROMOAVAIL_CATALOG_PATH is required for the %s backend", c.Catalog.Backend))
		}
	case BackendPostgres:
		if c.Catalog.DatabaseURL == "" {
			errs = append(errs, errors.New("PROMOAVAIL_DATABASE_URL is required for the postgres backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown catalog backend %q", c.Catalog.Backend))
	}
	if c.Catalog.ReloadInterval <= 0 {
		errs = append(errs, errors.New("PROMOAVAIL_RELOAD_INTERVAL must be positive"))
	}

	switch c.Extractor.Provider {
	case ProviderNone:
	case ProviderOpenAI:
		// OpenAI-compatible local servers run without a key
		if c.Extractor.APIKey == "" && c.Extractor.Endpoint == "" {
			errs = append(errs, errors.New("PROMOAVAIL_EXTRACTOR_API_KEY or PROMOAVAIL_EXTRACTOR_ENDPOINT is required for openai"))
		}
	case ProviderAnthropic:
		if c.Extractor.APIKey == "" {
			errs = append(errs, errors.New("PROMOAVAIL_EXTRACTOR_API_KEY is required for anthropic"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown extractor provider %q", c.Extractor.Provider))
	}

	if c.Redis.Enabled() && c.Redis.PasswordRequired && c.Redis.Password == "" {
		errs = append(errs, errors.New("PROMOAVAIL_REDIS_PASSWORD is required when PROMOAVAIL_REDIS_PASSWORD_REQUIRED=true"))
	}

	if c.Auth.Enabled && c.Auth.JWTSecret == "" && len(c.Auth.APIKeys) == 0 && len(c.Auth.AdminAPIKeys) == 0 {
		errs = append(errs, errors.New("auth is enabled but neither PROMOAVAIL_JWT_SECRET nor API keys are set"))
	}

	return errors.Join(errs...)
}

// Redacted returns a copy safe to log.
func (c *Config) Redacted() Config {
	cp := *c
	if cp.Catalog.DatabaseURL != "" {
		cp.Catalog.DatabaseURL = redacted
	}
	if cp.Redis.Password != "" {
		cp.Redis.Password = redacted
	}
	if cp.Extractor.APIKey != "" {
		cp.Extractor.APIKey = redacted
	}
	if cp.Auth.JWTSecret != "" {
		cp.Auth.JWTSecret = redacted
	}
	if len(cp.Auth.APIKeys) > 0 {
		cp.Auth.APIKeys = []string{redacted}
	}
	if len(cp.Auth.AdminAPIKeys) > 0 {
		cp.Auth.AdminAPIKeys = []string{redacted}
	}
	return cp
}

func splitAndTrim(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	parts := make([]string, 0, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
