package app

import (
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shoplab/internal/domain"
	"github.com/vladislavdragonenkov/shoplab/internal/messaging"
	"github.com/vladislavdragonenkov/shoplab/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/shoplab/internal/messaging/rabbitmq"
	"github.com/vladislavdragonenkov/shoplab/internal/metrics"
)

type closablePublisher interface {
	domain.EventPublisher
	Close() error
}

// initEvents подключает транспорт событий. Недоступный брокер не мешает
// старту: сервис продолжает работу с messaging.Noop.
func initEvents(cfg CommonConfig, registerer prometheus.Registerer, logger *log.Entry) (domain.EventPublisher, func()) {
	noop := func() {}

	var (
		pub closablePublisher
		err error
	)
	switch cfg.EventsDriver {
	case EventsDriverKafka:
		pub, err = initKafkaProducer(cfg.KafkaBrokers, logger)
	case EventsDriverRabbitMQ:
		pub, err = initRabbitMQPublisher(cfg.RabbitMQURL, logger)
	case EventsDriverNone, "":
		return messaging.Noop{}, noop
	default:
		err = fmt.Errorf("unsupported events driver %q", cfg.EventsDriver)
	}
	if err != nil {
		logger.WithError(err).Warn("events disabled, continuing without change events")
		return messaging.Noop{}, noop
	}

	instrumented := messaging.NewInstrumented(pub, metrics.NewEventMetricsWithRegisterer(registerer), logger.WithField("events_driver", cfg.EventsDriver))
	return instrumented, func() { closePublisher(pub, string(cfg.EventsDriver), logger) }
}

// initKafkaProducer создаёт producer для брокеров через запятую.
func initKafkaProducer(brokers string, logger *log.Entry) (*kafka.Producer, error) {
	var brokerList []string
	for _, b := range strings.Split(brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokerList = append(brokerList, b)
		}
	}
	if len(brokerList) == 0 {
		return nil, fmt.Errorf("no kafka brokers configured")
	}

	producer, err := kafka.NewProducer(brokerList)
	if err != nil {
		return nil, err
	}

	logger.WithField("brokers", brokerList).Info("kafka producer initialized")
	return producer, nil
}

func initRabbitMQPublisher(url string, logger *log.Entry) (*rabbitmq.Publisher, error) {
	pub, err := rabbitmq.Dial(url)
	if err != nil {
		return nil, err
	}
	logger.WithField("exchange", rabbitmq.ExchangeName).Info("rabbitmq publisher initialized")
	return pub, nil
}

func closePublisher(pub closablePublisher, driver string, logger *log.Entry) {
	if pub == nil {
		return
	}
	if err := pub.Close(); err != nil {
		logger.WithError(err).WithField("events_driver", driver).Warn("failed to close event publisher")
		return
	}
	logger.WithField("events_driver", driver).Info("event publisher closed")
}
