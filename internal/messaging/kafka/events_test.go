package kafka

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fernandokenjii/desafio-database-relations/internal/domain"
)

func TestNewOrderEvent(t *testing.T) {
	event := NewOrderEvent(EventTypeOrderPlaced, "order-1", "customer-1", map[string]interface{}{
		"amount_minor": int64(1500),
	})

	require.NotNil(t, event)
	assert.Equal(t, EventTypeOrderPlaced, event.EventType)
	assert.Equal(t, "order-1", event.OrderID)
	assert.Equal(t, "customer-1", event.CustomerID)
	assert.False(t, event.Timestamp.IsZero())
}

func TestOrderEvent_JSONShape(t *testing.T) {
	event := NewOrderEvent(EventTypeStockCompensated, "", "customer-2", nil)

	raw, err := json.Marshal(event)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, "stock.compensated", decoded["event_type"])
	assert.Equal(t, "customer-2", decoded["customer_id"])
	// Пустые order_id и metadata не сериализуются.
	assert.NotContains(t, decoded, "order_id")
	assert.NotContains(t, decoded, "metadata")
}

func TestOutboxPublisher_NotInitialized(t *testing.T) {
	publisher := NewOutboxPublisher(nil, "")

	err := publisher.Publish(domain.OutboxMessage{
		ID:            "msg-1",
		AggregateType: "order",
		AggregateID:   "order-1",
		EventType:     "OrderPlaced",
		Payload:       []byte(`{"order_id":"order-1"}`),
	})
	require.Error(t, err)
}

func TestNewOutboxPublisher_DefaultTopic(t *testing.T) {
	publisher := NewOutboxPublisher(nil, "")

	topicPublisher, ok := publisher.(*OutboxTopicPublisher)
	require.True(t, ok)
	assert.Equal(t, TopicOrderEvents, topicPublisher.topic)
}
