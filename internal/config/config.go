package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Transports accepted in SMSHUB_TRANSPORT.
const (
	TransportHTTP     = "http"
	TransportFastHTTP = "fasthttp"
)

type Config struct {
	App struct {
		Name     string
		Env      string
		LogLevel string
	}

	API struct {
		Host string
		Port string
	}

	DB struct {
		Host     string
		Port     int
		User     string
		Password string
		Name     string
		SSLMode  string
	}

	Redis struct {
		Addr     string
		Password string
		DB       int
	}

	SMSHub struct {
		APIKey    string
		Endpoint  string
		Transport string
		Timeout   time.Duration
	}

	Cache struct {
		PricesTTL  time.Duration
		BalanceTTL time.Duration
		StatusTTL  time.Duration
	}

	Scheduler struct {
		Interval     time.Duration
		BatchTimeout time.Duration
	}

	Worker struct {
		BatchSize            int
		MaxWorkers           int
		PerActivationTimeout time.Duration
	}
}

func New() *Config {
	_ = godotenv.Load()

	cfg := &Config{}

	// App
	cfg.App.Name = getEnv("APP_NAME", "smshub")
	cfg.App.Env = getEnv("APP_ENV", "development")
	cfg.App.LogLevel = getEnv("LOG_LEVEL", "info")

	// API
	cfg.API.Host = getEnv("API_HOST", "0.0.0.0")
	cfg.API.Port = getEnv("API_PORT", "8080")

	// DB
	cfg.DB.Host = getEnv("DB_HOST", "db")
	cfg.DB.Port = getInt("DB_PORT", 5432)
	cfg.DB.User = getEnv("DB_USER", "root")
	cfg.DB.Password = getEnv("DB_PASSWORD", "123456")
	cfg.DB.Name = getEnv("DB_NAME", "db_smshub")
	cfg.DB.SSLMode = getEnv("DB_SSLMODE", "disable")

	// Redis
	cfg.Redis.Addr = getEnv("REDIS_ADDR", "redis:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = getInt("REDIS_DB", 0)

	// SMSHub provider
	cfg.SMSHub.APIKey = getEnv("SMSHUB_API_KEY", "")
	cfg.SMSHub.Endpoint = getEnv("SMSHUB_ENDPOINT", "https://smshub.org/stubs/handler_api.php")
	cfg.SMSHub.Transport = strings.ToLower(getEnv("SMSHUB_TRANSPORT", TransportHTTP))
	cfg.SMSHub.Timeout = getDuration("SMSHUB_TIMEOUT", 10*time.Second)

	// Cache
	cfg.Cache.PricesTTL = getDuration("CACHE_PRICES_TTL", 5*time.Minute)
	cfg.Cache.BalanceTTL = getDuration("CACHE_BALANCE_TTL", 30*time.Second)
	cfg.Cache.StatusTTL = getDuration("CACHE_STATUS_TTL", 5*time.Second)

	// Scheduler
	cfg.Scheduler.Interval = getDuration("SCHEDULER_INTERVAL", 10*time.Second)
	cfg.Scheduler.BatchTimeout = getDuration("SCHEDULER_BATCH_TIMEOUT", 30*time.Second)

	// Worker / status polling
	cfg.Worker.BatchSize = getInt("ACTIVATION_BATCH_SIZE", 100)
	cfg.Worker.MaxWorkers = getInt("ACTIVATION_MAX_WORKERS", 4)
	cfg.Worker.PerActivationTimeout = getDuration("ACTIVATION_POLL_TIMEOUT", 5*time.Second)

	return cfg
}

// Validate checks the settings needed to talk to the provider.
func (c *Config) Validate() error {
	if c.SMSHub.APIKey == "" {
		return errors.New("SMSHUB_API_KEY is required")
	}
	switch c.SMSHub.Transport {
	case TransportHTTP, TransportFastHTTP:
	default:
		return fmt.Errorf("SMSHUB_TRANSPORT must be %q or %q, got %q",
			TransportHTTP, TransportFastHTTP, c.SMSHub.Transport)
	}
	return nil
}

// IsDevelopment reports whether the app runs in a local environment.
func (c *Config) IsDevelopment() bool {
	switch strings.ToLower(c.App.Env) {
	case "development", "dev", "local":
		return true
	}
	return isTruthy(os.Getenv("APP_DEBUG"))
}

func getEnv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}

func getInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host,
		c.DB.Port,
		c.DB.User,
		c.DB.Password,
		c.DB.Name,
		c.DB.SSLMode,
	)
}
