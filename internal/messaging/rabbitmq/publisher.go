// Package rabbitmq публикует события об изменениях в topic exchange RabbitMQ.
package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shoplab/internal/domain"
)

const (
	ExchangeName = "shop.changes"
	ExchangeType = "topic"

	dialAttempts = 5
	dialBackoff  = 2 * time.Second
)

// Channel — часть *amqp.Channel, нужная издателю.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher реализует domain.EventPublisher поверх RabbitMQ.
type Publisher struct {
	conn   *amqp.Connection
	ch     Channel
	logger *log.Entry
}

// Dial подключается к RabbitMQ (несколько попыток на время старта брокера),
// открывает канал и объявляет exchange.
func Dial(url string) (*Publisher, error) {
	logger := log.WithField("component", "rabbitmq-publisher")

	var (
		conn *amqp.Connection
		err  error
	)
	for attempt := 1; attempt <= dialAttempts; attempt++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			break
		}
		logger.WithError(err).WithField("attempt", attempt).Warn("failed to connect to rabbitmq")
		if attempt < dialAttempts {
			time.Sleep(dialBackoff)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("could not connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("could not open channel: %w", err)
	}

	pub, err := NewPublisher(ch)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	pub.conn = conn
	return pub, nil
}

// NewPublisher объявляет exchange на канале ch.
func NewPublisher(ch Channel) (*Publisher, error) {
	if err := ch.ExchangeDeclare(
		ExchangeName, // name
		ExchangeType, // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	); err != nil {
		return nil, fmt.Errorf("could not declare exchange: %w", err)
	}

	return &Publisher{
		ch:     ch,
		logger: log.WithField("component", "rabbitmq-publisher"),
	}, nil
}

// RoutingKey возвращает ключ вида <service>.<event_type>, например order-service.order.created.
func RoutingKey(event domain.ChangeEvent) string {
	return event.Service + "." + string(event.Type)
}

func (p *Publisher) Publish(ctx context.Context, event domain.ChangeEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("could not marshal event: %w", err)
	}

	routingKey := RoutingKey(event)
	err = p.ch.PublishWithContext(ctx,
		ExchangeName, // exchange
		routingKey,   // routing key
		false,        // mandatory
		false,        // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    event.Type.Entity() + "-" + strconv.FormatInt(event.EntityID, 10),
			Timestamp:    event.OccurredAt,
			Type:         string(event.Type),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}

	p.logger.WithField("routing_key", routingKey).Debug("event published to rabbitmq")
	return nil
}

// Close закрывает канал и соединение.
func (p *Publisher) Close() error {
	err := p.ch.Close()
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

var _ domain.EventPublisher = (*Publisher)(nil)
