package app

import (
	"testing"
	"time"
)

func TestReadProductConfig_Defaults(t *testing.T) {
	cfg, warnings := ReadProductConfig(mapLookup(nil))

	if len(warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", warnings)
	}
	if cfg != DefaultProductConfig() {
		t.Fatalf("expected default config, got %#v", cfg)
	}
}

func TestReadOrderConfig_Defaults(t *testing.T) {
	cfg, warnings := ReadOrderConfig(mapLookup(nil))

	if len(warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", warnings)
	}
	if cfg != DefaultOrderConfig() {
		t.Fatalf("expected default config, got %#v", cfg)
	}
}

func TestReadOrderConfig_ValidOverrides(t *testing.T) {
	cfg, warnings := ReadOrderConfig(mapLookup(map[string]string{
		envHTTPAddr:                    "localhost:8001",
		envMetricsAddr:                 "localhost:9191",
		envGRPCHealthAddr:              ":50051",
		envStorageDriver:               " PoStGrEs ",
		envDataFile:                    "/data/orders.json",
		envPostgresDSN:                 " postgres://shop:shop@db:5432/shop?sslmode=disable ",
		envPostgresAutoMigrate:         "off",
		envEventsDriver:                "RabbitMQ",
		envKafkaBrokers:                "k1:9092,k2:9092",
		envRabbitMQURL:                 "amqp://user:pass@mq:5672/",
		envIdempotencyTTL:              "1h",
		envIdempotencyCleanupInterval:  "30m",
		envIdempotencyCleanupBatchSize: "123",
		envProductServiceURL:           "http://localhost:5000",
		envProductServiceTimeout:       "750ms",
		envProductProbeInterval:        "5s",
		envProductCacheRedisAddr:       "redis:6379",
		envProductCacheTTL:             "2s",
		envEnrichConcurrency:           "8",
	}))

	if len(warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", warnings)
	}

	if cfg.HTTPAddr != "localhost:8001" {
		t.Fatalf("unexpected http addr: %s", cfg.HTTPAddr)
	}
	if cfg.MetricsAddr != "localhost:9191" {
		t.Fatalf("unexpected metrics addr: %s", cfg.MetricsAddr)
	}
	if cfg.GRPCHealthAddr != ":50051" {
		t.Fatalf("unexpected grpc health addr: %s", cfg.GRPCHealthAddr)
	}
	if cfg.StorageDriver != StorageDriverPostgres {
		t.Fatalf("unexpected storage driver: %s", cfg.StorageDriver)
	}
	if cfg.DataFile != "/data/orders.json" {
		t.Fatalf("unexpected data file: %s", cfg.DataFile)
	}
	if cfg.PostgresDSN != "postgres://shop:shop@db:5432/shop?sslmode=disable" {
		t.Fatalf("unexpected postgres dsn: %s", cfg.PostgresDSN)
	}
	if cfg.PostgresAutoMigrate {
		t.Fatal("expected PostgresAutoMigrate=false")
	}
	if cfg.EventsDriver != EventsDriverRabbitMQ {
		t.Fatalf("unexpected events driver: %s", cfg.EventsDriver)
	}
	if cfg.KafkaBrokers != "k1:9092,k2:9092" {
		t.Fatalf("unexpected kafka brokers: %s", cfg.KafkaBrokers)
	}
	if cfg.RabbitMQURL != "amqp://user:pass@mq:5672/" {
		t.Fatalf("unexpected rabbitmq url: %s", cfg.RabbitMQURL)
	}
	if cfg.IdempotencyTTL != time.Hour {
		t.Fatalf("unexpected idempotency ttl: %s", cfg.IdempotencyTTL)
	}
	if cfg.IdempotencyCleanupInterval != 30*time.Minute {
		t.Fatalf("unexpected idempotency cleanup interval: %s", cfg.IdempotencyCleanupInterval)
	}
	if cfg.IdempotencyCleanupBatchSize != 123 {
		t.Fatalf("unexpected idempotency cleanup batch size: %d", cfg.IdempotencyCleanupBatchSize)
	}
	if cfg.ProductServiceURL != "http://localhost:5000" {
		t.Fatalf("unexpected product service url: %s", cfg.ProductServiceURL)
	}
	if cfg.ProductServiceTimeout != 750*time.Millisecond {
		t.Fatalf("unexpected product service timeout: %s", cfg.ProductServiceTimeout)
	}
	if cfg.ProductProbeInterval != 5*time.Second {
		t.Fatalf("unexpected probe interval: %s", cfg.ProductProbeInterval)
	}
	if cfg.ProductCacheRedisAddr != "redis:6379" {
		t.Fatalf("unexpected redis addr: %s", cfg.ProductCacheRedisAddr)
	}
	if cfg.ProductCacheTTL != 2*time.Second {
		t.Fatalf("unexpected cache ttl: %s", cfg.ProductCacheTTL)
	}
	if cfg.EnrichConcurrency != 8 {
		t.Fatalf("unexpected enrich concurrency: %d", cfg.EnrichConcurrency)
	}
}

func TestReadOrderConfig_InvalidValuesFallbackToDefaults(t *testing.T) {
	defaultCfg := DefaultOrderConfig()

	cfg, warnings := ReadOrderConfig(mapLookup(map[string]string{
		envStorageDriver:               "mongo",
		envEventsDriver:                "nats",
		envPostgresAutoMigrate:         "not-bool",
		envIdempotencyTTL:              "0s",
		envIdempotencyCleanupInterval:  "invalid",
		envIdempotencyCleanupBatchSize: "0",
		envProductServiceTimeout:       "-1s",
		envProductProbeInterval:        "soon",
		envProductCacheTTL:             "0",
		envEnrichConcurrency:           "bad",
	}))

	if len(warnings) != 10 {
		t.Fatalf("expected 10 warnings, got %d: %v", len(warnings), warnings)
	}
	if cfg != defaultCfg {
		t.Fatalf("expected defaults to be kept, got %#v", cfg)
	}
}

func TestReadProductConfig_BlankValuesAreIgnored(t *testing.T) {
	cfg, warnings := ReadProductConfig(mapLookup(map[string]string{
		envHTTPAddr:      "   ",
		envStorageDriver: "",
	}))

	if len(warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", warnings)
	}
	if cfg.HTTPAddr != ":5000" {
		t.Fatalf("expected default http addr, got %s", cfg.HTTPAddr)
	}
}

func TestParseBool(t *testing.T) {
	trueValue, err := parseBool(" YES ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !trueValue {
		t.Fatal("expected true result")
	}

	falseValue, err := parseBool("off")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if falseValue {
		t.Fatal("expected false result")
	}

	if _, err := parseBool("sometimes"); err == nil {
		t.Fatal("expected error for invalid bool value")
	}
}

func TestParseInt(t *testing.T) {
	value, err := parseInt(" 12 ", func(v int) bool { return v > 0 }, "must be > 0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != 12 {
		t.Fatalf("unexpected value: %d", value)
	}

	if _, err := parseInt("0", func(v int) bool { return v > 0 }, "must be > 0"); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestParseDuration(t *testing.T) {
	value, err := parseDuration(" 250ms ", func(v time.Duration) bool { return v >= 0 }, "must be >= 0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != 250*time.Millisecond {
		t.Fatalf("unexpected value: %s", value)
	}

	if _, err := parseDuration("-1ms", func(v time.Duration) bool { return v >= 0 }, "must be >= 0"); err == nil {
		t.Fatal("expected validation error")
	}
}

func mapLookup(values map[string]string) EnvLookup {
	return func(key string) (string, bool) {
		value, ok := values[key]
		return value, ok
	}
}
