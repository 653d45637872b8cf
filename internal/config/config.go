package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr string
	DB       DBConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Auth     AuthConfig

	CORSOrigins     []string
	PaymentPolicy   string
	IdempotencyTTL  time.Duration
	ProductCacheTTL time.Duration
	RateLimit       float64
	RateBurst       int
}

type DBConfig struct {
	Host           string
	Port           string
	User           string
	Pass           string
	Name           string
	ConnectRetries int
}

type RedisConfig struct {
	Addr string
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

type AuthConfig struct {
	JWTSecret     string
	TokenTTL      time.Duration
	AdminUsername string
	AdminPassword string
}

// DSN returns the go-sql-driver/mysql data source name. parseTime is needed
// to scan DATETIME columns into time.Time.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&loc=UTC", c.User, c.Pass, c.Host, c.Port, c.Name)
}

// Load reads the configuration from the environment, falling back to
// defaults suitable for a local setup.
func Load() (*Config, error) {
	cfg := &Config{
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
		DB: DBConfig{
			Host: getEnv("DB_HOST", "127.0.0.1"),
			Port: getEnv("DB_PORT", "3306"),
			User: getEnv("DB_USER", "root"),
			Pass: os.Getenv("DB_PASS"),
			Name: getEnv("DB_NAME", "restaurant-db"),
		},
		Redis: RedisConfig{Addr: getEnv("REDIS_ADDR", "localhost:6379")},
		Kafka: KafkaConfig{
			Brokers: getKafkaBrokerURLs(),
			Topic:   getEnv("KAFKA_TOPIC", "serving-table-topic"),
			GroupID: getEnv("KAFKA_GROUP_ID", "kitchen-feed-group"),
		},
		Auth: AuthConfig{
			JWTSecret:     getEnv("JWT_SECRET", "secret"),
			AdminUsername: os.Getenv("ADMIN_USERNAME"),
			AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		},
		CORSOrigins:   splitList(getEnv("CORS_ORIGINS", "http://localhost:5173,http://localhost:5174")),
		PaymentPolicy: getEnv("PAYMENT_POLICY", "permissive"),
	}

	var err error
	if cfg.DB.ConnectRetries, err = strconv.Atoi(getEnv("DB_CONNECT_RETRIES", "10")); err != nil {
		return nil, fmt.Errorf("invalid DB_CONNECT_RETRIES: %w", err)
	}
	if cfg.Auth.TokenTTL, err = time.ParseDuration(getEnv("JWT_TTL", "3h")); err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL: %w", err)
	}
	if cfg.IdempotencyTTL, err = time.ParseDuration(getEnv("IDEMPOTENCY_TTL", "24h")); err != nil {
		return nil, fmt.Errorf("invalid IDEMPOTENCY_TTL: %w", err)
	}
	if cfg.ProductCacheTTL, err = time.ParseDuration(getEnv("PRODUCT_CACHE_TTL", "1m")); err != nil {
		return nil, fmt.Errorf("invalid PRODUCT_CACHE_TTL: %w", err)
	}
	if cfg.RateLimit, err = strconv.ParseFloat(getEnv("RATE_LIMIT", "10"), 64); err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT: %w", err)
	}
	if cfg.RateBurst, err = strconv.Atoi(getEnv("RATE_BURST", "30")); err != nil {
		return nil, fmt.Errorf("invalid RATE_BURST: %w", err)
	}

	switch cfg.PaymentPolicy {
	case "permissive", "strict":
	default:
		return nil, fmt.Errorf("invalid PAYMENT_POLICY %q: want permissive or strict", cfg.PaymentPolicy)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
