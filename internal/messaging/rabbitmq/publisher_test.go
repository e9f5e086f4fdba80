package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/shoplab/internal/domain"
)

type published struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type fakeChannel struct {
	declared   []string
	published  []published
	declareErr error
	publishErr error
	closed     bool
}

func (c *fakeChannel) ExchangeDeclare(name, kind string, _, _, _, _ bool, _ amqp.Table) error {
	c.declared = append(c.declared, name+":"+kind)
	return c.declareErr
}

func (c *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	if c.publishErr != nil {
		return c.publishErr
	}
	c.published = append(c.published, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func (c *fakeChannel) Close() error {
	c.closed = true
	return nil
}

func TestPublisher_Publish(t *testing.T) {
	ch := &fakeChannel{}
	pub, err := NewPublisher(ch)
	require.NoError(t, err)
	require.Equal(t, []string{"shop.changes:topic"}, ch.declared)

	event := domain.NewChangeEvent("product-service", domain.EventProductUpdated, 2, domain.Product{ID: 2, Name: "Smartphone"})
	require.NoError(t, pub.Publish(context.Background(), event))

	require.Len(t, ch.published, 1)
	got := ch.published[0]
	require.Equal(t, ExchangeName, got.exchange)
	require.Equal(t, "product-service.product.updated", got.key)
	require.Equal(t, "application/json", got.msg.ContentType)
	require.Equal(t, "product-2", got.msg.MessageId)

	var decoded domain.ChangeEvent
	require.NoError(t, json.Unmarshal(got.msg.Body, &decoded))
	require.Equal(t, domain.EventProductUpdated, decoded.Type)
	require.Equal(t, int64(2), decoded.EntityID)

	require.NoError(t, pub.Close())
	require.True(t, ch.closed)
}

func TestPublisher_DeclareError(t *testing.T) {
	_, err := NewPublisher(&fakeChannel{declareErr: errors.New("access refused")})
	require.Error(t, err)
}

func TestPublisher_PublishError(t *testing.T) {
	ch := &fakeChannel{publishErr: amqp.ErrClosed}
	pub, err := NewPublisher(ch)
	require.NoError(t, err)

	err = pub.Publish(context.Background(), domain.NewChangeEvent("order-service", domain.EventOrderDeleted, 1, nil))
	require.ErrorIs(t, err, amqp.ErrClosed)
}
