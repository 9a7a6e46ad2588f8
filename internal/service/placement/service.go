package placement

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/fernandokenjii/desafio-database-relations/internal/domain"
	"github.com/fernandokenjii/desafio-database-relations/internal/messaging/kafka"
	"github.com/fernandokenjii/desafio-database-relations/internal/metrics"
)

// Причины отказов для метрик.
const (
	reasonInvalidCustomer    = "invalid_customer"
	reasonInvalidProduct     = "invalid_product"
	reasonInsufficientStock  = "insufficient_stock"
	reasonPersistenceFailure = "persistence_failure"
	reasonCompensationFailed = "compensation_failed"
	reasonLookupFailure      = "lookup_failure"
	reasonInvalidRequest     = "invalid_request"
)

// Service описывает транзакцию размещения заказа.
type Service interface {
	// Place проводит заказ целиком: валидация клиента и товаров, проверка
	// достаточности, атомарное списание остатков, снапшот цен и сохранение.
	// Ни один побочный эффект не наблюдаем, если возвращена ошибка.
	Place(customerID string, items []domain.LineItemRequest) (domain.Order, error)
}

// eventPublisher — прямая публикация событий в Kafka, вне outbox.
type eventPublisher interface {
	PublishEvent(topic, key string, event interface{}) error
}

// service реализует последовательность шагов размещения:
// клиент → каталог → достаточность → списание → сохранение.
type service struct {
	customers     domain.CustomerRepository
	products      domain.ProductRepository
	inventory     domain.InventoryAdjuster
	orders        domain.OrderRepository
	outbox        domain.OutboxRepository
	logger        *log.Entry
	metrics       *metrics.PlacementMetrics
	kafkaProducer eventPublisher // опциональный Kafka producer для event-driven архитектуры
}

// NewService создаёт рабочий экземпляр транзакции размещения.
func NewService(
	customers domain.CustomerRepository,
	products domain.ProductRepository,
	inventory domain.InventoryAdjuster,
	orders domain.OrderRepository,
	outbox domain.OutboxRepository,
	logger *log.Entry,
) Service {
	if logger == nil {
		logger = log.New().WithField("component", "placement")
	}
	return &service{
		customers: customers,
		products:  products,
		inventory: inventory,
		orders:    orders,
		outbox:    outbox,
		logger:    logger,
		metrics:   metrics.NewPlacementMetrics(),
	}
}

// NewServiceWithKafka создаёт транзакцию с Kafka producer для event-driven архитектуры.
func NewServiceWithKafka(
	customers domain.CustomerRepository,
	products domain.ProductRepository,
	inventory domain.InventoryAdjuster,
	orders domain.OrderRepository,
	outbox domain.OutboxRepository,
	kafkaProducer *kafka.Producer,
	logger *log.Entry,
) Service {
	if logger == nil {
		logger = log.New().WithField("component", "placement")
	}
	svc := &service{
		customers: customers,
		products:  products,
		inventory: inventory,
		orders:    orders,
		outbox:    outbox,
		logger:    logger,
		metrics:   metrics.NewPlacementMetrics(),
	}
	if kafkaProducer != nil {
		svc.kafkaProducer = kafkaProducer
	}
	return svc
}

// NewServiceWithoutMetrics создаёт транзакцию без метрик (для тестов).
func NewServiceWithoutMetrics(
	customers domain.CustomerRepository,
	products domain.ProductRepository,
	inventory domain.InventoryAdjuster,
	orders domain.OrderRepository,
	outbox domain.OutboxRepository,
	logger *log.Entry,
) Service {
	if logger == nil {
		logger = log.New().WithField("component", "placement")
	}
	return &service{
		customers: customers,
		products:  products,
		inventory: inventory,
		orders:    orders,
		outbox:    outbox,
		logger:    logger,
		metrics:   nil, // Отключаем метрики для тестов
	}
}

// Place выполняет транзакцию размещения. Списание остатков и сохранение
// заказа согласованы: при неудачном сохранении списание компенсируется.
func (s *service) Place(customerID string, items []domain.LineItemRequest) (domain.Order, error) {
	start := time.Now()
	if s.metrics != nil {
		s.metrics.RecordPlacementStarted()
	}
	defer func() {
		if s.metrics != nil {
			s.metrics.RecordPlacementDuration(time.Since(start))
		}
	}()

	if len(items) == 0 {
		return domain.Order{}, s.reject(reasonInvalidRequest, domain.ErrItemsRequired)
	}
	for i := range items {
		if errs := items[i].Validate(); len(errs) > 0 {
			return domain.Order{}, s.reject(reasonInvalidRequest, errs[0])
		}
	}

	// Шаг 1: клиент должен существовать.
	customer, err := s.customers.FindByID(customerID)
	if err != nil {
		if errors.Is(err, domain.ErrCustomerNotFound) {
			return domain.Order{}, s.reject(reasonInvalidCustomer,
				fmt.Errorf("%w: %s", domain.ErrInvalidCustomer, customerID))
		}
		return domain.Order{}, s.reject(reasonLookupFailure, fmt.Errorf("resolve customer: %w", err))
	}

	// Дубликаты product id в одном запросе суммируются до проверки
	// достаточности, чтобы построчные проверки не проходили против
	// одного и того же устаревшего остатка.
	merged := domain.MergeAdjustments(items)

	// Шаг 2: все упомянутые товары должны существовать.
	ids := make([]string, 0, len(merged))
	for _, adj := range merged {
		ids = append(ids, adj.ProductID)
	}
	records, err := s.products.FindAllByIDs(ids)
	if err != nil {
		return domain.Order{}, s.reject(reasonLookupFailure, fmt.Errorf("resolve products: %w", err))
	}
	snapshot := make(map[string]domain.ProductRecord, len(records))
	for _, rec := range records {
		snapshot[rec.ID] = rec
	}
	if len(snapshot) < len(ids) {
		missing := make([]string, 0, len(ids)-len(snapshot))
		for _, id := range ids {
			if _, ok := snapshot[id]; !ok {
				missing = append(missing, id)
			}
		}
		return domain.Order{}, s.reject(reasonInvalidProduct,
			fmt.Errorf("%w: %s", domain.ErrInvalidProduct, strings.Join(missing, ", ")))
	}

	// Шаг 3: быстрая проверка достаточности по pre-decrement снапшоту.
	// Авторитетной остаётся атомарная проверка внутри Decrement.
	for _, adj := range merged {
		if snapshot[adj.ProductID].AvailableQty < adj.Qty {
			return domain.Order{}, s.reject(reasonInsufficientStock,
				fmt.Errorf("%w: product %s", domain.ErrInsufficientStock, adj.ProductID))
		}
	}

	// Шаг 4: атомарное списание всего батча.
	if _, err := s.inventory.Decrement(merged); err != nil {
		switch {
		case domain.IsInsufficientStock(err):
			// Проиграна гонка с конкурентным размещением.
			return domain.Order{}, s.reject(reasonInsufficientStock, err)
		case errors.Is(err, domain.ErrProductNotFound):
			return domain.Order{}, s.reject(reasonInvalidProduct,
				fmt.Errorf("%w: %v", domain.ErrInvalidProduct, err))
		default:
			return domain.Order{}, s.reject(reasonPersistenceFailure,
				fmt.Errorf("%w: decrement stock: %v", domain.ErrPersistenceFailure, err))
		}
	}

	// Шаг 5: позиции строятся по ценам снапшота шага 2, а не по записям,
	// возвращённым списанием: те могли отразить конкурентное изменение цены.
	now := time.Now().UTC()
	lineItems := make([]domain.OrderLineItem, 0, len(items))
	var amount int64
	for _, line := range items {
		rec := snapshot[line.ProductID]
		lineItems = append(lineItems, domain.OrderLineItem{
			ID:         uuid.NewString(),
			ProductID:  line.ProductID,
			Qty:        line.Qty,
			PriceMinor: rec.PriceMinor,
			CreatedAt:  now,
		})
		amount += int64(line.Qty) * rec.PriceMinor
	}

	draft := domain.Order{
		CustomerID:  customer.ID,
		AmountMinor: amount,
		Items:       lineItems,
	}
	if errs := draft.ValidateInvariants(); len(errs) > 0 {
		// Списание уже применено, возвращаем остатки перед отказом.
		return domain.Order{}, s.compensate(merged, joinErrors(errs))
	}

	// Шаг 6: сохранение заказа; при неудаче списание компенсируется.
	order, err := s.orders.Create(customer.ID, lineItems)
	if err != nil {
		return domain.Order{}, s.compensate(merged, err)
	}

	if s.metrics != nil {
		s.metrics.RecordPlacementCompleted()
	}
	s.emitPlaced(order)

	return order, nil
}

// compensate восстанавливает остатки после неудачного сохранения заказа.
// Провал компенсации поднимается как отдельное условие: состояние склада
// рассинхронизировано и требует ручной сверки.
func (s *service) compensate(merged []domain.StockAdjustment, persistErr error) error {
	if incErr := s.inventory.Increment(merged); incErr != nil {
		s.logger.WithError(incErr).WithField("persist_error", persistErr.Error()).
			Error("stock compensation failed, manual reconciliation required")
		if s.metrics != nil {
			s.metrics.RecordCompensation("failed")
		}
		return s.reject(reasonCompensationFailed,
			fmt.Errorf("%w: %v (persist error: %v)", domain.ErrCompensationFailed, incErr, persistErr))
	}

	s.logger.WithError(persistErr).Warn("order persist failed, stock decrement compensated")
	if s.metrics != nil {
		s.metrics.RecordCompensation("ok")
	}
	return s.reject(reasonPersistenceFailure,
		fmt.Errorf("%w: %v", domain.ErrPersistenceFailure, persistErr))
}

// reject фиксирует отказ в метриках и возвращает ошибку вызывающему.
func (s *service) reject(reason string, err error) error {
	if s.metrics != nil {
		s.metrics.RecordPlacementRejected(reason)
	}
	return err
}

// emitPlaced ставит событие OrderPlaced в outbox и, при настроенном
// producer, публикует его в Kafka. Ошибки здесь не отменяют размещение.
func (s *service) emitPlaced(order domain.Order) {
	payload := map[string]interface{}{
		"order_id":     order.ID,
		"customer_id":  order.CustomerID,
		"amount_minor": order.AmountMinor,
		"items_count":  len(order.Items),
		"ts":           order.CreatedAt.Format(time.RFC3339Nano),
	}
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.WithError(err).WithField("order_id", order.ID).Error("marshal event failed")
		return
	}

	msg := domain.OutboxMessage{
		AggregateType: "order",
		AggregateID:   order.ID,
		EventType:     "OrderPlaced",
		Payload:       data,
	}
	if s.outbox != nil {
		if _, err := s.outbox.Enqueue(msg); err != nil {
			s.logger.WithError(err).WithField("order_id", order.ID).Error("enqueue event failed")
		} else if s.metrics != nil {
			s.metrics.RecordOutboxEvent()
		}
	}

	// Прямое уведомление уходит в отдельный topic: доставку в
	// TopicOrderEvents выполняет только outbox-воркер, иначе каждый
	// заказ публиковался бы туда дважды.
	if s.kafkaProducer != nil {
		event := kafka.NewOrderEvent(kafka.EventTypeOrderPlaced, order.ID, order.CustomerID, map[string]interface{}{
			"amount_minor": order.AmountMinor,
			"items_count":  len(order.Items),
		})
		if err := s.kafkaProducer.PublishEvent(kafka.TopicPlacementEvents, order.ID, event); err != nil {
			// Логируем ошибку, но не прерываем размещение - Kafka опциональный
			s.logger.WithError(err).WithField("order_id", order.ID).
				Warn("failed to publish placement event to kafka")
		}
	}
}

func joinErrors(errs []error) error {
	parts := make([]string, 0, len(errs))
	for _, err := range errs {
		parts = append(parts, err.Error())
	}
	return fmt.Errorf("order invariants violated: %s", strings.Join(parts, "; "))
}

var _ Service = (*service)(nil)
