package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/teresa-solution/firm-management-service/internal/crypto"
	"github.com/teresa-solution/firm-management-service/internal/logger"
)

type Config struct {
	// Required: where the data lives and the key tenant tokens are signed with.
	DatabaseURL string
	AccessKey   string

	// Optional base64 AES-256 key for column encryption. Derived from
	// AccessKey when empty.
	EncryptionKey string

	HTTPPort int
	OpsPort  int
	GRPCPort int

	StoreCallTimeout time.Duration
	DBMaxConns       int32

	RedisAddr       string
	RedisPassword   string
	ProfileCacheTTL time.Duration

	SweepInterval time.Duration

	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

// Load reads the configuration from the environment. A .env file in the
// working directory is honoured but never overrides real variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	config := &Config{
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		AccessKey:     getEnv("ACCESS_KEY", ""),
		EncryptionKey: getEnv("ENCRYPTION_KEY", ""),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "console"),
		LogTimeFormat: getEnv("LOG_TIME_FORMAT", time.RFC3339),
		LogOutput:     getEnv("LOG_OUTPUT", "stdout"),
	}

	var err error
	if config.HTTPPort, err = getInt("HTTP_PORT", 8080); err != nil {
		return nil, err
	}
	if config.OpsPort, err = getInt("OPS_PORT", 8081); err != nil {
		return nil, err
	}
	if config.GRPCPort, err = getInt("GRPC_PORT", 50051); err != nil {
		return nil, err
	}
	maxConns, err := getInt("DB_MAX_CONNS", 10)
	if err != nil {
		return nil, err
	}
	config.DBMaxConns = int32(maxConns)
	if config.StoreCallTimeout, err = getDuration("STORE_CALL_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}
	if config.ProfileCacheTTL, err = getDuration("PROFILE_CACHE_TTL", 5*time.Minute); err != nil {
		return nil, err
	}
	if config.SweepInterval, err = getDuration("SWEEP_INTERVAL", time.Hour); err != nil {
		return nil, err
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return config, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.AccessKey == "" {
		return fmt.Errorf("ACCESS_KEY is required")
	}
	if c.StoreCallTimeout <= 0 {
		return fmt.Errorf("STORE_CALL_TIMEOUT must be positive")
	}
	if c.DBMaxConns <= 0 {
		return fmt.Errorf("DB_MAX_CONNS must be positive")
	}
	if c.EncryptionKey != "" {
		if _, err := c.ColumnKey(); err != nil {
			return err
		}
	}
	return nil
}

// ColumnKey returns the key used to encrypt sensitive columns.
func (c *Config) ColumnKey() ([]byte, error) {
	if c.EncryptionKey == "" {
		return crypto.DeriveKey(c.AccessKey), nil
	}
	key, err := base64.StdEncoding.DecodeString(c.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("ENCRYPTION_KEY must be base64: %w", err)
	}
	if len(key) != crypto.KeySize {
		return nil, fmt.Errorf("ENCRYPTION_KEY must decode to %d bytes", crypto.KeySize)
	}
	return key, nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return v, nil
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	return v, nil
}
