package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/anokye0712/ai-route-planner/core/db"
)

type Config struct {
	OTel      OTelConfig
	Extractor ExtractorConfig
	Dify      DifyConfig
	OpenAI    OpenAIConfig
	Geoapify  GeoapifyConfig
	Redis     RedisConfig
	Env       string
	Port      string
	// DefaultUserID is the caller identifier used when a request does not
	// supply one. Threaded into the planning service at construction.
	DefaultUserID string
	DB            db.Config
}

type OTelConfig struct {
	Endpoint       string
	Headers        string
	ServiceName    string
	ServiceVersion string
}

// ExtractorConfig selects which language-model service turns queries into
// structured plans.
type ExtractorConfig struct {
	Provider string // "dify" or "openai"
}

type DifyConfig struct {
	APIKey  string
	BaseURL string
}

type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

type GeoapifyConfig struct {
	APIKey  string
	BaseURL string
	// GeocodeConcurrency bounds the fan-out of geocoding calls within one
	// request. GeocodeRateLimit caps calls per second across requests.
	GeocodeConcurrency int
	GeocodeRateLimit   int
}

type RedisConfig struct {
	URL string
	// GeocodeCacheTTLHours controls how long geocoded coordinates stay
	// cached. Addresses move rarely; a week is the default.
	GeocodeCacheTTLHours int
}

const (
	ExtractorProviderDify   = "dify"
	ExtractorProviderOpenAI = "openai"
)

// Load loads configuration from environment variables. In development it
// first loads a .env file if one exists.
func Load() (Config, error) {
	if getEnv("APP_ENV", "development") == "development" {
		_ = godotenv.Load(".env")
	}

	cfg := Config{
		Env:           getEnv("APP_ENV", "development"),
		Port:          getEnv("PORT", "8080"),
		DefaultUserID: getEnv("DEFAULT_USER_ID", "default_user"),
		DB: db.Config{
			DSN:      getEnv("DATABASE_URL", ""),
			MaxConns: getEnvInt32("DB_MAX_CONNS", 10),
			MinConns: getEnvInt32("DB_MIN_CONNS", 2),
		},
		OTel: OTelConfig{
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:        getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "route-planner"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
		},
		Extractor: ExtractorConfig{
			Provider: getEnv("EXTRACTOR_PROVIDER", ExtractorProviderDify),
		},
		Dify: DifyConfig{
			APIKey:  getEnv("DIFY_API_KEY", ""),
			BaseURL: getEnv("DIFY_BASE_URL", "https://api.dify.ai/v1"),
		},
		OpenAI: OpenAIConfig{
			APIKey:  getEnv("OPENAI_API_KEY", ""),
			BaseURL: getEnv("OPENAI_BASE_URL", ""),
			Model:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		},
		Geoapify: GeoapifyConfig{
			APIKey:             getEnv("GEOAPIFY_API_KEY", ""),
			BaseURL:            getEnv("GEOAPIFY_BASE_URL", "https://api.geoapify.com"),
			GeocodeConcurrency: getEnvInt("GEOCODER_MAX_CONCURRENCY", 4),
			GeocodeRateLimit:   getEnvInt("GEOCODER_RATE_LIMIT", 5),
		},
		Redis: RedisConfig{
			URL:                  getEnv("REDIS_URL", ""),
			GeocodeCacheTTLHours: getEnvInt("GEOCODE_CACHE_TTL_HOURS", 168),
		},
	}

	if cfg.Geoapify.APIKey == "" {
		return Config{}, fmt.Errorf("GEOAPIFY_API_KEY is required")
	}

	switch cfg.Extractor.Provider {
	case ExtractorProviderDify:
		if cfg.Dify.APIKey == "" {
			return Config{}, fmt.Errorf("DIFY_API_KEY is required when EXTRACTOR_PROVIDER is dify")
		}
	case ExtractorProviderOpenAI:
		if cfg.OpenAI.APIKey == "" {
			return Config{}, fmt.Errorf("OPENAI_API_KEY is required when EXTRACTOR_PROVIDER is openai")
		}
	default:
		return Config{}, fmt.Errorf("unknown EXTRACTOR_PROVIDER %q", cfg.Extractor.Provider)
	}

	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c OTelConfig) Enabled() bool {
	return c.Endpoint != ""
}

func (c DifyConfig) Enabled() bool {
	return c.APIKey != ""
}

func (c OpenAIConfig) Enabled() bool {
	return c.APIKey != ""
}

func (c RedisConfig) Enabled() bool {
	return c.URL != ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt32(key string, fallback int32) int32 {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(i)
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}
