package config

import (
	"testing"
	"time"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("RequestTimeout = %v, want 30s", cfg.RequestTimeout)
	}
	if cfg.StoreBackend != StoreMemory {
		t.Errorf("StoreBackend = %q, want memory", cfg.StoreBackend)
	}
	if cfg.PayloadBackend != PayloadMemory {
		t.Errorf("PayloadBackend = %q, want memory", cfg.PayloadBackend)
	}
	if cfg.DetectionWorkers != 4 {
		t.Errorf("DetectionWorkers = %d, want 4", cfg.DetectionWorkers)
	}
}

func TestLoadFromEnv_Validation(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"non-numeric port", "PORT", "abc"},
		{"port out of range", "PORT", "70000"},
		{"unknown store backend", "STORE_BACKEND", "etcd"},
		{"postgres without dsn", "STORE_BACKEND", "postgres"},
		{"unknown payload backend", "PAYLOAD_STORE", "s3"},
		{"azure without credentials", "PAYLOAD_STORE", "azure"},
		{"minio without endpoint", "PAYLOAD_STORE", "minio"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := LoadFromEnv(); err == nil {
				t.Errorf("LoadFromEnv() with %s=%s error = nil, want error", tt.key, tt.value)
			}
		})
	}
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("REQUEST_TIMEOUT", "5s")
	t.Setenv("STORE_BACKEND", "postgres")
	t.Setenv("POSTGRES_DSN", "postgres://localhost/dental?sslmode=disable")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want 9090", cfg.Port)
	}
	if cfg.RequestTimeout != 5*time.Second {
		t.Errorf("RequestTimeout = %v, want 5s", cfg.RequestTimeout)
	}
	if cfg.StoreBackend != StorePostgres || cfg.PostgresDSN == "" {
		t.Errorf("postgres backend not applied: %q / %q", cfg.StoreBackend, cfg.PostgresDSN)
	}
}

func TestServerAddress(t *testing.T) {
	cfg := &Config{Host: " 0.0.0.0 ", Port: " 8080 "}
	if got := cfg.ServerAddress(); got != "0.0.0.0:8080" {
		t.Errorf("ServerAddress() = %q, want 0.0.0.0:8080", got)
	}
}
