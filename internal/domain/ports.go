package domain

import "time"

// CustomerRepository описывает хранилище клиентов.
// Транзакция размещения использует только FindByID; Create и FindByEmail
// обслуживают регистрацию клиентов.
type CustomerRepository interface {
	// Create регистрирует клиента, присваивая идентификатор и метки времени.
	Create(customer Customer) (Customer, error)
	// FindByID возвращает клиента или ErrCustomerNotFound.
	FindByID(id string) (Customer, error)
	// FindByEmail возвращает клиента по email или ErrCustomerNotFound.
	FindByEmail(email string) (Customer, error)
}

// ProductRepository описывает каталог товаров.
type ProductRepository interface {
	// Create регистрирует товар, присваивая идентификатор и метки времени.
	Create(product ProductRecord) (ProductRecord, error)
	// FindByName возвращает товар по имени или ErrProductNotFound.
	FindByName(name string) (ProductRecord, error)
	// FindAllByIDs возвращает только найденные записи; отсутствие id в ответе
	// означает, что такого товара нет.
	FindAllByIDs(ids []string) ([]ProductRecord, error)
}

// InventoryAdjuster атомарно изменяет остатки товаров.
// Decrement обязан быть сериализуемым по каждой строке товара: проверка
// достаточности и списание выполняются как одна операция, и остаток никогда
// не уходит в минус. Батч применяется целиком или не применяется вовсе.
type InventoryAdjuster interface {
	// Decrement списывает остатки и возвращает записи после списания,
	// либо ErrInsufficientStock / ErrProductNotFound без каких-либо изменений.
	Decrement(items []StockAdjustment) ([]ProductRecord, error)
	// Increment возвращает остатки обратно (компенсация неудачного сохранения).
	Increment(items []StockAdjustment) error
}

// OrderRepository описывает хранилище заказов.
type OrderRepository interface {
	// Create сохраняет новый заказ, присваивая идентификатор и метку времени.
	Create(customerID string, items []OrderLineItem) (Order, error)
	// Get возвращает заказ по идентификатору или ErrOrderNotFound.
	Get(id string) (Order, error)
	// ListByCustomer возвращает заказы клиента с опциональным ограничением на количество.
	ListByCustomer(customerID string, limit int) ([]Order, error)
}

// OutboxPublisher публикует события из transactional outbox.
type OutboxPublisher interface {
	// Publish передаёт событие наружу; должен быть идемпотентным.
	Publish(event OutboxMessage) error
}

// OutboxRepository позволяет сохранять события для последующей публикации.
type OutboxRepository interface {
	Enqueue(msg OutboxMessage) (OutboxMessage, error)
	PullPending(limit int) ([]OutboxMessage, error)
	Stats() (OutboxStats, error)
	MarkSent(id string) error
	MarkFailed(id string) error
}

// IdempotencyRepository хранит состояние обработки запросов по idempotency-key.
type IdempotencyRepository interface {
	CreateProcessing(key, requestHash string, ttlAt time.Time) (IdempotencyRecord, error)
	Get(key string) (IdempotencyRecord, error)
	MarkDone(key string, responseBody []byte, httpStatus int) error
	MarkFailed(key string, responseBody []byte, httpStatus int) error
	DeleteExpired(before time.Time, limit int) (int, error)
}

// OutboxMessage хранит данные для публикуемого события.
type OutboxMessage struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// OutboxStats описывает текущее состояние backlog transactional outbox.
type OutboxStats struct {
	PendingCount    int
	OldestPendingAt time.Time
}
