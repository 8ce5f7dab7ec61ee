package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"

	PayloadMemory = "memory"
	PayloadAzure  = "azure"
	PayloadMinio  = "minio"
)

type Config struct {
	Host               string
	Port               string
	RequestTimeout     time.Duration
	AnalysisTimeout    time.Duration
	MaxRequestBodySize int64
	DetectionWorkers   int

	// Record store backend: memory or postgres.
	StoreBackend string
	PostgresDSN  string

	// Image payload store backend: memory, azure or minio.
	PayloadBackend string

	AzureAccountName string
	AzureAccountKey  string
	AzureContainer   string

	MinioEndpoint  string
	MinioRegion    string
	MinioBucket    string
	MinioAccessKey string
	MinioSecretKey string
	MinioUseSSL    bool
}

func (c *Config) ServerAddress() string {
	// Trim any whitespace from host and port
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

func LoadFromEnv() (*Config, error) {
	// Set defaults
	cfg := &Config{
		Host:               getEnvOrDefault("HOST", "0.0.0.0"),
		Port:               getEnvOrDefault("PORT", "8080"),
		RequestTimeout:     parseDurationOrDefault("REQUEST_TIMEOUT", 30*time.Second),
		AnalysisTimeout:    parseDurationOrDefault("ANALYSIS_TIMEOUT", 20*time.Second),
		MaxRequestBodySize: parseIntOrDefault("MAX_REQUEST_BODY_SIZE", 10*1024*1024), // 10MB
		DetectionWorkers:   int(parseIntOrDefault("DETECTION_WORKERS", 4)),
		StoreBackend:       getEnvOrDefault("STORE_BACKEND", StoreMemory),
		PostgresDSN:        os.Getenv("POSTGRES_DSN"),
		PayloadBackend:     getEnvOrDefault("PAYLOAD_STORE", PayloadMemory),
		AzureAccountName:   os.Getenv("AZURE_ACCOUNT_NAME"),
		AzureAccountKey:    os.Getenv("AZURE_ACCOUNT_KEY"),
		AzureContainer:     getEnvOrDefault("AZURE_CONTAINER", "dental-images"),
		MinioEndpoint:      os.Getenv("MINIO_ENDPOINT"),
		MinioRegion:        getEnvOrDefault("MINIO_REGION", "us-east-1"),
		MinioBucket:        getEnvOrDefault("MINIO_BUCKET", "dental-images"),
		MinioAccessKey:     os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey:     os.Getenv("MINIO_SECRET_KEY"),
		MinioUseSSL:        getEnvOrDefault("MINIO_USE_SSL", "false") == "true",
	}

	// Validate port is numeric and in range
	p, err := strconv.Atoi(strings.TrimSpace(cfg.Port))
	if err != nil || p < 1 || p > 65535 {
		return nil, fmt.Errorf("invalid PORT: %q", cfg.Port)
	}
	if cfg.MaxRequestBodySize <= 0 {
		return nil, fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", cfg.MaxRequestBodySize)
	}
	if cfg.RequestTimeout <= 0 || cfg.AnalysisTimeout <= 0 {
		return nil, fmt.Errorf("timeouts must be > 0 (got request=%s, analysis=%s)",
			cfg.RequestTimeout, cfg.AnalysisTimeout)
	}
	if cfg.DetectionWorkers <= 0 {
		return nil, fmt.Errorf("DETECTION_WORKERS must be > 0 (got %d)", cfg.DetectionWorkers)
	}
	switch cfg.StoreBackend {
	case StoreMemory:
	case StorePostgres:
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("POSTGRES_DSN is required when STORE_BACKEND=postgres")
		}
	default:
		return nil, fmt.Errorf("invalid STORE_BACKEND: %q", cfg.StoreBackend)
	}
	switch cfg.PayloadBackend {
	case PayloadMemory:
	case PayloadAzure:
		if cfg.AzureAccountName == "" || cfg.AzureAccountKey == "" {
			return nil, fmt.Errorf("AZURE_ACCOUNT_NAME and AZURE_ACCOUNT_KEY are required when PAYLOAD_STORE=azure")
		}
	case PayloadMinio:
		if cfg.MinioEndpoint == "" {
			return nil, fmt.Errorf("MINIO_ENDPOINT is required when PAYLOAD_STORE=minio")
		}
	default:
		return nil, fmt.Errorf("invalid PAYLOAD_STORE: %q", cfg.PayloadBackend)
	}
	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
