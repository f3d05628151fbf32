package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	PROD_STRING = "prod"

	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// Config holds all application configuration loaded from environment.
type Config struct {
	IsProduction      bool
	ProdOrigins       string
	HTTPAddr          string
	ShutdownTimeout   time.Duration
	StorageDriver     string
	DBDSN             string
	DBMaxConns        int
	RedisAddr         string
	CacheTTL          time.Duration
	JWTSecret         string
	JWTAccessTokenTTL time.Duration
	BcryptCost        int
	UploadDir         string
	MaxUploadBytes    int
	LogLevel          string
	LogFormat         string
}

// Load loads configuration from .env (optional) and environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("failed to load .env file: %v", err)
	}

	cfg := &Config{}
	var err error

	// Application environment (default: dev)
	cfg.IsProduction = getEnv("APP_ENV", "dev") == PROD_STRING
	cfg.ProdOrigins = getEnv("PROD_ORIGINS", "")
	if cfg.IsProduction && cfg.ProdOrigins == "" {
		return nil, fmt.Errorf("PROD_ORIGINS is required when APP_ENV=%s", PROD_STRING)
	}
	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":8080")

	cfg.ShutdownTimeout, err = getEnvAsDuration("SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}

	// Storage driver: in-memory by default, postgres requires DB_DSN
	cfg.StorageDriver = getEnv("STORAGE_DRIVER", StorageMemory)
	switch cfg.StorageDriver {
	case StorageMemory:
	case StoragePostgres:
		cfg.DBDSN = os.Getenv("DB_DSN")
		if cfg.DBDSN == "" {
			return nil, fmt.Errorf("DB_DSN is required when STORAGE_DRIVER=%s", StoragePostgres)
		}
		cfg.DBMaxConns, err = getEnvAsInt("DB_MAX_CONNS", 10)
		if err != nil {
			return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
		}
	default:
		return nil, fmt.Errorf("invalid STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	// Redis is optional; an in-process cache is used when empty
	cfg.RedisAddr = getEnv("REDIS_ADDR", "")
	cfg.CacheTTL, err = getEnvAsDuration("CACHE_TTL", time.Minute)
	if err != nil {
		return nil, err
	}

	// JWT secret is required for signing tokens
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	cfg.JWTAccessTokenTTL, err = getEnvAsDuration("JWT_ACCESS_TOKEN_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}

	// Bcrypt cost for password hashing (default: 12)
	cfg.BcryptCost, err = getEnvAsInt("BCRYPT_COST", 12)
	if err != nil {
		return nil, fmt.Errorf("invalid BCRYPT_COST: %w", err)
	}

	cfg.UploadDir = getEnv("UPLOAD_DIR", "./data")
	cfg.MaxUploadBytes, err = getEnvAsInt("MAX_UPLOAD_BYTES", 5<<20)
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_UPLOAD_BYTES: %w", err)
	}
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.LogFormat = getEnv("LOG_FORMAT", "json")

	return cfg, nil
}

// getEnv returns the value of the environment variable if set,
// otherwise returns the provided default value.
func getEnv(key, defaultValue string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer.
// It returns an error if the variable is set but is not a valid integer.
func getEnvAsInt(key string, defaultValue int) (int, error) {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue, nil
	}

	val, err := strconv.Atoi(valStr)
	if err != nil {
		return 0, fmt.Errorf("env %s value %q is not a valid integer: %w", key, valStr, err)
	}
	return val, nil
}

// getEnvAsDuration parses values such as "15m" or "1h".
func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue, nil
	}

	d, err := time.ParseDuration(valStr)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
