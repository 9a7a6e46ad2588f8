package kafka

import "time"

// EventType определяет тип события заказа.
type EventType string

const (
	// События транзакции размещения
	EventTypeOrderPlaced      EventType = "order.placed"
	EventTypeOrderRejected    EventType = "order.rejected"
	EventTypeStockDecremented EventType = "stock.decremented"
	EventTypeStockCompensated EventType = "stock.compensated"
)

// Topics для Kafka
const (
	// TopicOrderEvents обслуживается исключительно outbox-воркером:
	// доставка заказовых событий идёт через transactional outbox.
	TopicOrderEvents = "orders.order.events"
	// TopicPlacementEvents — прямые уведомления транзакции размещения,
	// best-effort и без гарантий доставки outbox.
	TopicPlacementEvents = "orders.placement.events"
	TopicDeadLetterQueue = "orders.dlq" // Dead Letter Queue для сообщений outbox, исчерпавших retry
)

// OrderEvent представляет событие жизненного цикла заказа.
type OrderEvent struct {
	EventType  EventType              `json:"event_type"`
	OrderID    string                 `json:"order_id,omitempty"`
	CustomerID string                 `json:"customer_id"`
	Timestamp  time.Time              `json:"timestamp"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// NewOrderEvent создает новое событие заказа.
func NewOrderEvent(eventType EventType, orderID, customerID string, metadata map[string]interface{}) *OrderEvent {
	return &OrderEvent{
		EventType:  eventType,
		OrderID:    orderID,
		CustomerID: customerID,
		Timestamp:  time.Now().UTC(),
		Metadata:   metadata,
	}
}
