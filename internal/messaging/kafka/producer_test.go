package kafka

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/shoplab/internal/domain"
)

func TestProducer_Publish(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)
	producer := NewProducerWithClient(mockProducer)

	event := domain.NewChangeEvent("order-service", domain.EventOrderCreated, 42, domain.Order{ID: 42, CustomerName: "Guest"})

	mockProducer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		require.Equal(t, TopicOrderEvents, msg.Topic)

		key, err := msg.Key.Encode()
		require.NoError(t, err)
		require.Equal(t, "order-42", string(key))

		value, err := msg.Value.Encode()
		require.NoError(t, err)
		var decoded map[string]any
		require.NoError(t, json.Unmarshal(value, &decoded))
		require.Equal(t, "order.created", decoded["event_type"])
		require.Equal(t, float64(42), decoded["entity_id"])

		require.Len(t, msg.Headers, 2)
		require.Equal(t, "order.created", string(msg.Headers[0].Value))
		return nil
	})

	require.NoError(t, producer.Publish(context.Background(), event))
	require.NoError(t, producer.Close())
}

func TestProducer_Publish_Error(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)
	producer := NewProducerWithClient(mockProducer)

	mockProducer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	event := domain.NewChangeEvent("product-service", domain.EventProductDeleted, 3, nil)
	err := producer.Publish(context.Background(), event)
	require.ErrorIs(t, err, sarama.ErrOutOfBrokers)

	require.NoError(t, producer.Close())
}

func TestProducer_Publish_CanceledContext(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)
	producer := NewProducerWithClient(mockProducer)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := producer.Publish(ctx, domain.NewChangeEvent("product-service", domain.EventProductCreated, 1, nil))
	require.ErrorIs(t, err, context.Canceled)
	require.NoError(t, producer.Close())
}

func TestTopicFor(t *testing.T) {
	require.Equal(t, TopicProductEvents, TopicFor(domain.EventProductUpdated))
	require.Equal(t, TopicOrderEvents, TopicFor(domain.EventOrderDeleted))
}

func TestNewMessage_CustomTopic(t *testing.T) {
	event := domain.NewChangeEvent("product-service", domain.EventProductUpdated, 7, nil)

	msg, err := NewMessage("shop.replay", event)
	require.NoError(t, err)
	require.Equal(t, "shop.replay", msg.Topic)
	require.Equal(t, event.OccurredAt, msg.Timestamp)

	key, err := msg.Key.Encode()
	require.NoError(t, err)
	require.Equal(t, "product-7", string(key))
	require.Equal(t, HeaderService, string(msg.Headers[1].Key))
	require.Equal(t, "product-service", string(msg.Headers[1].Value))
}

func TestProducerConfig(t *testing.T) {
	cfg := ProducerConfig()
	require.True(t, cfg.Producer.Idempotent)
	require.True(t, cfg.Producer.Return.Successes)
	require.Equal(t, sarama.WaitForAll, cfg.Producer.RequiredAcks)
	require.Equal(t, 1, cfg.Net.MaxOpenRequests)
}
