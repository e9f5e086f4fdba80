package app

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shoplab/internal/messaging"
)

func TestInitEvents_NoneUsesNoop(t *testing.T) {
	cfg := DefaultProductConfig().CommonConfig

	pub, closeFn := initEvents(cfg, prometheus.NewRegistry(), log.WithField("test", "events"))
	defer closeFn()

	if _, ok := pub.(messaging.Noop); !ok {
		t.Fatalf("expected messaging.Noop, got %T", pub)
	}
}

func TestInitEvents_UnsupportedDriverFallsBack(t *testing.T) {
	cfg := DefaultProductConfig().CommonConfig
	cfg.EventsDriver = "nats"

	pub, closeFn := initEvents(cfg, prometheus.NewRegistry(), log.WithField("test", "events"))
	defer closeFn()

	if _, ok := pub.(messaging.Noop); !ok {
		t.Fatalf("expected messaging.Noop, got %T", pub)
	}
}

func TestInitKafkaProducer_EmptyBrokers(t *testing.T) {
	producer, err := initKafkaProducer(" , ", log.WithField("test", "kafka"))

	if err == nil {
		t.Fatal("expected error for empty broker list")
	}
	if producer != nil {
		t.Error("expected nil producer for empty brokers")
	}
}

func TestInitKafkaProducer_InvalidBrokers(t *testing.T) {
	producer, err := initKafkaProducer("invalid-broker:9999", log.WithField("test", "kafka"))

	if err == nil {
		t.Error("expected error for invalid brokers")
	}
	if producer != nil {
		t.Error("expected nil producer on error")
	}
}

func TestClosePublisher_Nil(t *testing.T) {
	// Не должно паниковать.
	closePublisher(nil, "kafka", log.WithField("test", "events"))
}
