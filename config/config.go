// Package config loads the bundle service settings from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

// DefaultCORSOrigins are always allowed so the local storefront works out of the box.
var DefaultCORSOrigins = []string{"http://localhost:3000", "http://127.0.0.1:3000"}

// Config holds the complete application configuration.
type Config struct {
	Server   ServerConfig
	Pricing  PricingConfig
	Cache    CacheConfig
	Auth     AuthConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port        string        `envconfig:"PORT" default:"8080" validate:"required,numeric"`
	RateLimit   int           `envconfig:"RATE_LIMIT" default:"100" validate:"gte=0"`
	RateWindow  time.Duration `envconfig:"RATE_WINDOW" default:"1m"`
	CORSOrigins []string      `envconfig:"CORS_ORIGINS"`
	SwaggerUser string        `envconfig:"SWAGGER_USER"`
	SwaggerPass string        `envconfig:"SWAGGER_PASS"`
	// SecureCookies marks the cart session cookie as Secure.
	SecureCookies bool `envconfig:"SECURE_COOKIES" default:"false"`
}

// PricingConfig controls how bundle prices are split across cart lines.
type PricingConfig struct {
	// Decimals is the number of minor-unit digits used by the allocator.
	Decimals int    `envconfig:"PRICE_DECIMALS" default:"2" validate:"gte=0,lte=8"`
	Currency string `envconfig:"CURRENCY" default:"EUR" validate:"len=3,uppercase"`
}

// CacheConfig sizes the bundle definition and form caches.
type CacheConfig struct {
	Size int           `envconfig:"CACHE_SIZE" default:"1000" validate:"gte=0"`
	TTL  time.Duration `envconfig:"CACHE_TTL" default:"5m"`
}

type AuthConfig struct {
	// AdminAPIKeys guards the bundle and catalog authoring endpoints.
	AdminAPIKeys KeySet        `envconfig:"ADMIN_API_KEYS"`
	CSRFSecret   string        `envconfig:"CSRF_SECRET" default:"change-me-in-production" validate:"min=16"`
	CSRFTokenTTL time.Duration `envconfig:"CSRF_TOKEN_TTL" default:"12h" validate:"gt=0"`
}

// DatabaseConfig holds the MongoDB connection and its circuit breakers.
type DatabaseConfig struct {
	URI          string        `envconfig:"MONGODB_URI" default:"mongodb://localhost:27017" validate:"required_if=Enabled true"`
	DatabaseName string        `envconfig:"MONGODB_DATABASE" default:"bundle_service" validate:"required_if=Enabled true"`
	LogsTTL      time.Duration `envconfig:"MONGODB_LOGS_TTL" default:"720h"`
	Enabled      bool          `envconfig:"MONGODB_ENABLED" default:"false"`

	CircuitBreakerFailureThreshold int           `envconfig:"CIRCUIT_BREAKER_FAILURE_THRESHOLD" default:"5" validate:"gte=0"`
	CircuitBreakerSuccessThreshold int           `envconfig:"CIRCUIT_BREAKER_SUCCESS_THRESHOLD" default:"2" validate:"gte=0"`
	CircuitBreakerTimeout          time.Duration `envconfig:"CIRCUIT_BREAKER_TIMEOUT" default:"30s"`
}

// RedisConfig holds the cart session store. URL takes precedence over Address.
type RedisConfig struct {
	URL      string        `envconfig:"REDIS_URL"`
	Address  string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password string        `envconfig:"REDIS_PASSWORD"`
	DB       int           `envconfig:"REDIS_DB" default:"0" validate:"gte=0,lte=15"`
	Enabled  bool          `envconfig:"REDIS_ENABLED" default:"false"`
	CartTTL  time.Duration `envconfig:"CART_TTL" default:"48h" validate:"gte=0"`
}

type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Pretty bool   `envconfig:"LOG_PRETTY" default:"false"`
}

// KeySet is a comma separated list of API keys read from the environment.
type KeySet map[string]bool

// Decode implements envconfig.Decoder. Blank entries are skipped.
func (k *KeySet) Decode(value string) error {
	keys := KeySet{}
	for _, key := range strings.Split(value, ",") {
		if key = strings.TrimSpace(key); key != "" {
			keys[key] = true
		}
	}
	if len(keys) == 0 {
		keys = nil
	}
	*k = keys
	return nil
}

// Load reads the environment, applies defaults and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	cfg.Server.CORSOrigins = withDefaultOrigins(cfg.Server.CORSOrigins)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the value ranges declared on the config structs.
func (c Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func withDefaultOrigins(extra []string) []string {
	origins := append([]string(nil), DefaultCORSOrigins...)
	for _, origin := range extra {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}
