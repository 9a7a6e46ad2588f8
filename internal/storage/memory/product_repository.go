package memory

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fernandokenjii/desafio-database-relations/internal/domain"
)

// productRepositoryInMemory реализует каталог и изменение остатков поверх
// одной блокировки: проверка достаточности и списание выполняются как одна
// критическая секция, поэтому конкурентные размещения сериализуются и
// остаток не может уйти в минус.
type productRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.ProductRecord
}

// NewProductRepository возвращает in-memory каталог, одновременно
// реализующий ProductRepository и InventoryAdjuster.
func NewProductRepository() *productRepositoryInMemory {
	return &productRepositoryInMemory{
		items: make(map[string]domain.ProductRecord),
	}
}

// Create регистрирует товар, отклоняя повторное использование имени.
func (r *productRepositoryInMemory) Create(product domain.ProductRecord) (domain.ProductRecord, error) {
	if errs := product.Validate(); len(errs) > 0 {
		return domain.ProductRecord{}, errs[0]
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.items {
		if existing.Name == product.Name {
			return domain.ProductRecord{}, domain.ErrProductNameTaken
		}
	}

	now := time.Now().UTC()
	if product.ID == "" {
		product.ID = uuid.NewString()
	}
	product.CreatedAt = now
	product.UpdatedAt = now

	r.items[product.ID] = product
	return product, nil
}

// FindByName возвращает товар по имени или ErrProductNotFound.
func (r *productRepositoryInMemory) FindByName(name string) (domain.ProductRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, product := range r.items {
		if product.Name == name {
			return product, nil
		}
	}
	return domain.ProductRecord{}, domain.ErrProductNotFound
}

// FindAllByIDs возвращает копии только найденных записей.
func (r *productRepositoryInMemory) FindAllByIDs(ids []string) ([]domain.ProductRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.ProductRecord, 0, len(ids))
	for _, id := range ids {
		if product, ok := r.items[id]; ok {
			result = append(result, product)
		}
	}
	return result, nil
}

// Decrement атомарно списывает остатки батча: сначала весь батч проверяется
// под блокировкой, и только потом применяется. Любая нехватка оставляет
// каталог нетронутым.
func (r *productRepositoryInMemory) Decrement(items []domain.StockAdjustment) ([]domain.ProductRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, adj := range items {
		if errs := adj.Validate(); len(errs) > 0 {
			return nil, errs[0]
		}
		product, ok := r.items[adj.ProductID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, adj.ProductID)
		}
		if product.AvailableQty < adj.Qty {
			return nil, fmt.Errorf("%w: product %s has %d, requested %d",
				domain.ErrInsufficientStock, adj.ProductID, product.AvailableQty, adj.Qty)
		}
	}

	now := time.Now().UTC()
	result := make([]domain.ProductRecord, 0, len(items))
	for _, adj := range items {
		product := r.items[adj.ProductID]
		product.AvailableQty -= adj.Qty
		product.UpdatedAt = now
		r.items[adj.ProductID] = product
		result = append(result, product)
	}
	return result, nil
}

// Increment возвращает остатки обратно (компенсация).
func (r *productRepositoryInMemory) Increment(items []domain.StockAdjustment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, adj := range items {
		if _, ok := r.items[adj.ProductID]; !ok {
			return fmt.Errorf("%w: %s", domain.ErrProductNotFound, adj.ProductID)
		}
	}

	now := time.Now().UTC()
	for _, adj := range items {
		product := r.items[adj.ProductID]
		product.AvailableQty += adj.Qty
		product.UpdatedAt = now
		r.items[adj.ProductID] = product
	}
	return nil
}

// SetPrice меняет цену каталога (используется в тестах неизменности цены заказа).
func (r *productRepositoryInMemory) SetPrice(id string, priceMinor int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.items[id]
	if !ok {
		return domain.ErrProductNotFound
	}
	product.PriceMinor = priceMinor
	product.UpdatedAt = time.Now().UTC()
	r.items[id] = product
	return nil
}

var (
	_ domain.ProductRepository = (*productRepositoryInMemory)(nil)
	_ domain.InventoryAdjuster = (*productRepositoryInMemory)(nil)
)
