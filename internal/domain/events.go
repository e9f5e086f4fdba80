package domain

import (
	"strings"
	"time"
)

// EventType — тип уведомления об изменении.
type EventType string

const (
	EventProductCreated EventType = "product.created"
	EventProductUpdated EventType = "product.updated"
	EventProductDeleted EventType = "product.deleted"

	EventOrderCreated EventType = "order.created"
	EventOrderUpdated EventType = "order.updated"
	EventOrderDeleted EventType = "order.deleted"
)

// Entity возвращает тип сущности из типа события ("product" или "order").
func (t EventType) Entity() string {
	entity, _, _ := strings.Cut(string(t), ".")
	return entity
}

// ChangeEvent — уведомление о зафиксированном изменении записи.
type ChangeEvent struct {
	Type       EventType `json:"event_type"`
	Service    string    `json:"service"`
	EntityID   int64     `json:"entity_id"`
	Payload    any       `json:"payload,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewChangeEvent создаёт событие с текущим временем в UTC.
func NewChangeEvent(service string, eventType EventType, entityID int64, payload any) ChangeEvent {
	return ChangeEvent{
		Type:       eventType,
		Service:    service,
		EntityID:   entityID,
		Payload:    payload,
		OccurredAt: time.Now().UTC(),
	}
}
