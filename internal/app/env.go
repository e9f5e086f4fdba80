package app

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// EnvLookup — источник переменных окружения, обычно os.LookupEnv.
type EnvLookup func(string) (string, bool)

const (
	envHTTPAddr                    = "HTTP_ADDR"
	envMetricsAddr                 = "METRICS_ADDR"
	envGRPCHealthAddr              = "GRPC_HEALTH_ADDR"
	envStorageDriver               = "STORAGE_DRIVER"
	envDataFile                    = "DATA_FILE"
	envPostgresDSN                 = "POSTGRES_DSN"
	envPostgresAutoMigrate         = "POSTGRES_AUTO_MIGRATE"
	envEventsDriver                = "EVENTS_DRIVER"
	envKafkaBrokers                = "KAFKA_BROKERS"
	envRabbitMQURL                 = "RABBITMQ_URL"
	envIdempotencyTTL              = "IDEMPOTENCY_TTL"
	envIdempotencyCleanupInterval  = "IDEMPOTENCY_CLEANUP_INTERVAL"
	envIdempotencyCleanupBatchSize = "IDEMPOTENCY_CLEANUP_BATCH_SIZE"

	envProductServiceURL     = "PRODUCT_SERVICE_URL"
	envProductServiceTimeout = "PRODUCT_SERVICE_TIMEOUT"
	envProductProbeInterval  = "PRODUCT_PROBE_INTERVAL"
	envProductCacheRedisAddr = "PRODUCT_CACHE_REDIS_ADDR"
	envProductCacheTTL       = "PRODUCT_CACHE_TTL"
	envEnrichConcurrency     = "ENRICH_CONCURRENCY"
)

// ReadProductConfig накладывает переменные окружения на DefaultProductConfig.
// Некорректные значения оставляют значение по умолчанию и дают предупреждение.
func ReadProductConfig(lookup EnvLookup) (ProductConfig, []string) {
	cfg := DefaultProductConfig()
	warnings := readCommonConfig(lookup, &cfg.CommonConfig)
	return cfg, warnings
}

// ReadOrderConfig накладывает переменные окружения на DefaultOrderConfig.
func ReadOrderConfig(lookup EnvLookup) (OrderConfig, []string) {
	cfg := DefaultOrderConfig()
	warnings := readCommonConfig(lookup, &cfg.CommonConfig)

	if v, ok := lookupTrimmed(lookup, envProductServiceURL); ok {
		cfg.ProductServiceURL = v
	}
	if v, ok := lookupTrimmed(lookup, envProductCacheRedisAddr); ok {
		cfg.ProductCacheRedisAddr = v
	}

	positive := func(v time.Duration) bool { return v > 0 }
	if v, ok := lookupTrimmed(lookup, envProductServiceTimeout); ok {
		parsed, err := parseDuration(v, positive, "must be > 0")
		if err != nil {
			warnings = append(warnings, invalidValueWarning(envProductServiceTimeout, v, err))
		} else {
			cfg.ProductServiceTimeout = parsed
		}
	}
	if v, ok := lookupTrimmed(lookup, envProductProbeInterval); ok {
		parsed, err := parseDuration(v, positive, "must be > 0")
		if err != nil {
			warnings = append(warnings, invalidValueWarning(envProductProbeInterval, v, err))
		} else {
			cfg.ProductProbeInterval = parsed
		}
	}
	if v, ok := lookupTrimmed(lookup, envProductCacheTTL); ok {
		parsed, err := parseDuration(v, positive, "must be > 0")
		if err != nil {
			warnings = append(warnings, invalidValueWarning(envProductCacheTTL, v, err))
		} else {
			cfg.ProductCacheTTL = parsed
		}
	}
	if v, ok := lookupTrimmed(lookup, envEnrichConcurrency); ok {
		parsed, err := parseInt(v, func(n int) bool { return n > 0 }, "must be > 0")
		if err != nil {
			warnings = append(warnings, invalidValueWarning(envEnrichConcurrency, v, err))
		} else {
			cfg.EnrichConcurrency = parsed
		}
	}

	return cfg, warnings
}

func readCommonConfig(lookup EnvLookup, cfg *CommonConfig) []string {
	var warnings []string

	if v, ok := lookupTrimmed(lookup, envHTTPAddr); ok {
		cfg.HTTPAddr = v
	}
	if v, ok := lookupTrimmed(lookup, envMetricsAddr); ok {
		cfg.MetricsAddr = v
	}
	if v, ok := lookupTrimmed(lookup, envGRPCHealthAddr); ok {
		cfg.GRPCHealthAddr = v
	}
	if v, ok := lookupTrimmed(lookup, envDataFile); ok {
		cfg.DataFile = v
	}
	if v, ok := lookupTrimmed(lookup, envPostgresDSN); ok {
		cfg.PostgresDSN = v
	}
	if v, ok := lookupTrimmed(lookup, envKafkaBrokers); ok {
		cfg.KafkaBrokers = v
	}
	if v, ok := lookupTrimmed(lookup, envRabbitMQURL); ok {
		cfg.RabbitMQURL = v
	}

	if v, ok := lookupTrimmed(lookup, envStorageDriver); ok {
		switch driver := StorageDriver(strings.ToLower(v)); driver {
		case StorageDriverFile, StorageDriverMemory, StorageDriverPostgres:
			cfg.StorageDriver = driver
		default:
			warnings = append(warnings, fmt.Sprintf("unsupported %s=%q, using %s", envStorageDriver, v, cfg.StorageDriver))
		}
	}
	if v, ok := lookupTrimmed(lookup, envEventsDriver); ok {
		switch driver := EventsDriver(strings.ToLower(v)); driver {
		case EventsDriverNone, EventsDriverKafka, EventsDriverRabbitMQ:
			cfg.EventsDriver = driver
		default:
			warnings = append(warnings, fmt.Sprintf("unsupported %s=%q, using %s", envEventsDriver, v, cfg.EventsDriver))
		}
	}

	if v, ok := lookupTrimmed(lookup, envPostgresAutoMigrate); ok {
		parsed, err := parseBool(v)
		if err != nil {
			warnings = append(warnings, invalidValueWarning(envPostgresAutoMigrate, v, err))
		} else {
			cfg.PostgresAutoMigrate = parsed
		}
	}

	positive := func(v time.Duration) bool { return v > 0 }
	if v, ok := lookupTrimmed(lookup, envIdempotencyTTL); ok {
		parsed, err := parseDuration(v, positive, "must be > 0")
		if err != nil {
			warnings = append(warnings, invalidValueWarning(envIdempotencyTTL, v, err))
		} else {
			cfg.IdempotencyTTL = parsed
		}
	}
	if v, ok := lookupTrimmed(lookup, envIdempotencyCleanupInterval); ok {
		parsed, err := parseDuration(v, positive, "must be > 0")
		if err != nil {
			warnings = append(warnings, invalidValueWarning(envIdempotencyCleanupInterval, v, err))
		} else {
			cfg.IdempotencyCleanupInterval = parsed
		}
	}
	if v, ok := lookupTrimmed(lookup, envIdempotencyCleanupBatchSize); ok {
		parsed, err := parseInt(v, func(n int) bool { return n > 0 }, "must be > 0")
		if err != nil {
			warnings = append(warnings, invalidValueWarning(envIdempotencyCleanupBatchSize, v, err))
		} else {
			cfg.IdempotencyCleanupBatchSize = parsed
		}
	}

	return warnings
}

// lookupTrimmed возвращает значение без пробелов; пустое значение считается отсутствующим.
func lookupTrimmed(lookup EnvLookup, key string) (string, bool) {
	if lookup == nil {
		return "", false
	}
	v, ok := lookup(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func invalidValueWarning(key, value string, err error) string {
	return fmt.Sprintf("invalid %s=%q: %v, using default", key, value, err)
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "t", "true", "y", "yes", "on":
		return true, nil
	case "0", "f", "false", "n", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("not a boolean")
	}
}

func parseInt(s string, validate func(int) bool, msg string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if validate != nil && !validate(v) {
		return 0, fmt.Errorf("%s", msg)
	}
	return v, nil
}

func parseDuration(s string, validate func(time.Duration) bool, msg string) (time.Duration, error) {
	v, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if validate != nil && !validate(v) {
		return 0, fmt.Errorf("%s", msg)
	}
	return v, nil
}
