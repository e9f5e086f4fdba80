package kafka

import (
	"strconv"

	"github.com/vladislavdragonenkov/shoplab/internal/domain"
)

// Topics для Kafka
const (
	TopicProductEvents = "shop.product.events"
	TopicOrderEvents   = "shop.order.events"
)

// Kafka headers
const (
	HeaderEventType = "x-event-type"
	HeaderService   = "x-service"
)

// TopicFor возвращает топик для события: товары и заказы пишутся раздельно.
func TopicFor(eventType domain.EventType) string {
	if eventType.Entity() == "product" {
		return TopicProductEvents
	}
	return TopicOrderEvents
}

// MessageKey возвращает ключ сообщения; события одной записи попадают в одну партицию.
func MessageKey(event domain.ChangeEvent) string {
	return event.Type.Entity() + "-" + strconv.FormatInt(event.EntityID, 10)
}
