package app

import (
	"testing"
	"time"
)

func TestDefaultProductConfig_Values(t *testing.T) {
	cfg := DefaultProductConfig()

	if cfg.HTTPAddr != ":5000" {
		t.Errorf("expected HTTPAddr :5000, got %s", cfg.HTTPAddr)
	}
	if cfg.MetricsAddr != ":9090" {
		t.Errorf("expected MetricsAddr :9090, got %s", cfg.MetricsAddr)
	}
	if cfg.GRPCHealthAddr != "" {
		t.Errorf("expected gRPC health to be disabled, got %s", cfg.GRPCHealthAddr)
	}
	if cfg.StorageDriver != StorageDriverFile {
		t.Errorf("expected StorageDriver %s, got %s", StorageDriverFile, cfg.StorageDriver)
	}
	if cfg.DataFile != "products.json" {
		t.Errorf("expected DataFile products.json, got %s", cfg.DataFile)
	}
	if cfg.EventsDriver != EventsDriverNone {
		t.Errorf("expected EventsDriver %s, got %s", EventsDriverNone, cfg.EventsDriver)
	}
	if !cfg.PostgresAutoMigrate {
		t.Error("expected PostgresAutoMigrate to be true")
	}
	if cfg.IdempotencyTTL != 24*time.Hour {
		t.Errorf("expected IdempotencyTTL 24h, got %s", cfg.IdempotencyTTL)
	}
	if cfg.IdempotencyCleanupInterval <= 0 {
		t.Error("expected IdempotencyCleanupInterval to be > 0")
	}
	if cfg.IdempotencyCleanupBatchSize <= 0 {
		t.Error("expected IdempotencyCleanupBatchSize to be > 0")
	}
}

func TestDefaultOrderConfig_Values(t *testing.T) {
	cfg := DefaultOrderConfig()

	if cfg.HTTPAddr != ":5001" {
		t.Errorf("expected HTTPAddr :5001, got %s", cfg.HTTPAddr)
	}
	if cfg.MetricsAddr == DefaultProductConfig().MetricsAddr {
		t.Error("expected order-service metrics addr to differ from product-service")
	}
	if cfg.DataFile != "orders.json" {
		t.Errorf("expected DataFile orders.json, got %s", cfg.DataFile)
	}
	if cfg.ProductServiceURL != "http://product:5000" {
		t.Errorf("unexpected ProductServiceURL: %s", cfg.ProductServiceURL)
	}
	if cfg.ProductServiceTimeout != 3*time.Second {
		t.Errorf("expected ProductServiceTimeout 3s, got %s", cfg.ProductServiceTimeout)
	}
	if cfg.ProductProbeInterval != 15*time.Second {
		t.Errorf("expected ProductProbeInterval 15s, got %s", cfg.ProductProbeInterval)
	}
	if cfg.ProductCacheRedisAddr != "" {
		t.Errorf("expected product cache to be disabled, got %s", cfg.ProductCacheRedisAddr)
	}
	if cfg.ProductCacheTTL != 5*time.Second {
		t.Errorf("expected ProductCacheTTL 5s, got %s", cfg.ProductCacheTTL)
	}
	if cfg.EnrichConcurrency != 4 {
		t.Errorf("expected EnrichConcurrency 4, got %d", cfg.EnrichConcurrency)
	}
}

func TestConfig_Copy(t *testing.T) {
	original := DefaultOrderConfig()
	copied := original

	copied.HTTPAddr = ":8080"
	copied.ProductServiceURL = "http://localhost:5000"

	if original.HTTPAddr != ":5001" {
		t.Error("original config was modified")
	}
	if original.ProductServiceURL != "http://product:5000" {
		t.Error("original product url was modified")
	}
}
