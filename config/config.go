package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DB       DBConfig
	Telegram TelegramConfig
	Report   ReportConfig
	Batch    BatchConfig
	Metrics  MetricsConfig
	LogLevel string
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

type TelegramConfig struct {
	Token   string
	AdminID int64 // owner chat, always treated as Admin
}

type ReportConfig struct {
	RefreshInterval time.Duration // 0 disables auto refresh
	Location        *time.Location
	Currency        string
	TopItems        int
}

type BatchConfig struct {
	Size   int
	MaxOps int // backend ceiling per batch
}

type MetricsConfig struct {
	Addr string // empty disables the endpoint
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	port, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("DB_PORT: %w", err)
	}
	var adminID int64
	if v := getEnv("ADMIN_ID", ""); v != "" {
		adminID, err = strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("ADMIN_ID: %w", err)
		}
	}
	interval, err := time.ParseDuration(getEnv("REFRESH_INTERVAL", "5m"))
	if err != nil {
		return nil, fmt.Errorf("REFRESH_INTERVAL: %w", err)
	}
	loc, err := time.LoadLocation(getEnv("TIMEZONE", "Local"))
	if err != nil {
		return nil, fmt.Errorf("TIMEZONE: %w", err)
	}
	topItems, err := strconv.Atoi(getEnv("TOP_ITEMS", "10"))
	if err != nil {
		return nil, fmt.Errorf("TOP_ITEMS: %w", err)
	}
	batchSize, err := strconv.Atoi(getEnv("BATCH_SIZE", "400"))
	if err != nil {
		return nil, fmt.Errorf("BATCH_SIZE: %w", err)
	}
	maxOps, err := strconv.Atoi(getEnv("BATCH_MAX_OPS", "500"))
	if err != nil {
		return nil, fmt.Errorf("BATCH_MAX_OPS: %w", err)
	}
	if batchSize <= 0 || maxOps <= 0 {
		return nil, fmt.Errorf("BATCH_SIZE and BATCH_MAX_OPS must be positive")
	}
	if batchSize > maxOps {
		return nil, fmt.Errorf("BATCH_SIZE %d exceeds BATCH_MAX_OPS %d", batchSize, maxOps)
	}

	return &Config{
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     port,
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "pos"),
		},
		Telegram: TelegramConfig{
			Token:   getEnv("TOKEN", ""),
			AdminID: adminID,
		},
		Report: ReportConfig{
			RefreshInterval: interval,
			Location:        loc,
			Currency:        getEnv("CURRENCY", "$"),
			TopItems:        topItems,
		},
		Batch: BatchConfig{
			Size:   batchSize,
			MaxOps: maxOps,
		},
		Metrics: MetricsConfig{
			Addr: metricsAddr(),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// metricsAddr keeps an explicitly empty METRICS_ADDR, which disables the endpoint.
func metricsAddr() string {
	if v, ok := os.LookupEnv("METRICS_ADDR"); ok {
		return v
	}
	return ":9090"
}
