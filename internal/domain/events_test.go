package domain

import (
	"testing"
	"time"
)

func TestEventTypeEntity(t *testing.T) {
	cases := map[EventType]string{
		EventProductCreated: "product",
		EventOrderDeleted:   "order",
		EventType("bare"):   "bare",
	}
	for eventType, want := range cases {
		if got := eventType.Entity(); got != want {
			t.Errorf("%s.Entity() = %q, want %q", eventType, got, want)
		}
	}
}

func TestNewChangeEvent(t *testing.T) {
	event := NewChangeEvent("order-service", EventOrderCreated, 5, map[string]string{"k": "v"})

	if event.Service != "order-service" || event.EntityID != 5 || event.Type != EventOrderCreated {
		t.Fatalf("unexpected event: %+v", event)
	}
	if event.OccurredAt.IsZero() || time.Since(event.OccurredAt) > time.Second {
		t.Fatalf("unexpected timestamp: %v", event.OccurredAt)
	}
	if event.OccurredAt.Location() != time.UTC {
		t.Fatal("timestamp must be UTC")
	}
}
