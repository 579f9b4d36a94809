package config

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/YES-Tech-Computer-Service-Ltd/WooAutoPrinter-sub017/internal/domain"
)

type Config struct {
	Port     string
	Env      string
	LogLevel string

	// Local store
	DBUrl             string
	DBMaxConns        int32
	DBMinConns        int32
	DBMaxConnIdleTime time.Duration

	// Remote order API
	APIBaseURL        string
	APIConsumerKey    string
	APIConsumerSecret string
	APITimeout        time.Duration
	OrderPageSize     int

	// Sync behaviour
	PollInterval       time.Duration
	RefreshMinInterval time.Duration // duplicate refresh calls inside this window coalesce
	OrderCacheTTL      time.Duration // single-order remote lookups

	// Staff API rate limiting
	RateLimitRPS   float64
	RateLimitBurst int

	// Comma-separated origins allowed to hit the staff API from a
	// browser, or "*".
	AllowedOrigin string
}

func LoadConfig() *Config {
	// A specific config file can be requested via env var; otherwise we
	// fall back to .env and then plain system env vars. Docker/prod
	// environments typically have no .env at all, so a load failure is
	// not fatal.
	configFile := os.Getenv("CONFIG_FILE")
	if configFile != "" {
		if err := godotenv.Load(configFile); err != nil {
			log.Printf("Warning: Failed to load config file '%s': %v", configFile, err)
		} else {
			log.Printf("Loaded configuration from %s", configFile)
		}
	} else {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found or error loading it, relying on system env vars")
		}
	}

	cfg := &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DBUrl:             getEnv("DB_DSN", ""),
		DBMaxConns:        getInt32Env("DB_MAX_CONNS", 20),
		DBMinConns:        getInt32Env("DB_MIN_CONNS", 2),
		DBMaxConnIdleTime: getDurationEnv("DB_MAX_CONN_IDLE_TIME", time.Minute*15),

		APIBaseURL:        getEnv("WOO_API_BASE_URL", ""),
		APIConsumerKey:    getEnv("WOO_CONSUMER_KEY", ""),
		APIConsumerSecret: getEnv("WOO_CONSUMER_SECRET", ""),
		APITimeout:        getDurationEnv("WOO_API_TIMEOUT", 30*time.Second),
		OrderPageSize:     getIntEnv("ORDER_PAGE_SIZE", 100),

		PollInterval:       getDurationEnv("POLL_INTERVAL", 30*time.Second),
		RefreshMinInterval: getDurationEnv("REFRESH_MIN_INTERVAL", time.Second),
		OrderCacheTTL:      getDurationEnv("ORDER_CACHE_TTL", 30*time.Second),

		RateLimitRPS:   getFloatEnv("RATE_LIMIT_RPS", 20),
		RateLimitBurst: getIntEnv("RATE_LIMIT_BURST", 40),

		AllowedOrigin: getEnv("ALLOWED_ORIGIN", "*"),
	}

	cfg.Validate()
	return cfg
}

func (c *Config) Validate() {
	if c.DBUrl == "" {
		log.Fatal("CRITICAL: DB_DSN environment variable is required")
	}
	if c.APIBaseURL == "" || c.APIConsumerKey == "" || c.APIConsumerSecret == "" {
		// Not fatal: the sync engine fails fast on an invalid config
		// without attempting a network call, and the staff UI surfaces
		// that. The store remains readable offline.
		log.Println("WARNING: remote API credentials incomplete, refresh operations will fail until configured")
	}
}

// APIConfig implements domain.Settings.
func (c *Config) APIConfig(_ context.Context) (domain.APIConfig, error) {
	return domain.APIConfig{
		BaseURL:        c.APIBaseURL,
		ConsumerKey:    c.APIConsumerKey,
		ConsumerSecret: c.APIConsumerSecret,
		Timeout:        c.APITimeout,
	}, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("Invalid duration for %s, using fallback", key)
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
		log.Printf("Invalid int for %s, using fallback", key)
	}
	return fallback
}

func getInt32Env(key string, fallback int32) int32 {
	if value, exists := os.LookupEnv(key); exists {
		if i, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(i)
		}
		log.Printf("Invalid int32 for %s, using fallback", key)
	}
	return fallback
}

func getFloatEnv(key string, fallback float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		log.Printf("Invalid float for %s, using fallback", key)
	}
	return fallback
}
