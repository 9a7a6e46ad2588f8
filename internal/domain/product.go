package domain

import (
	"sort"
	"time"
)

// ProductRecord описывает товар каталога вместе с текущим остатком.
// Остаток изменяется только через InventoryAdjuster.
type ProductRecord struct {
	ID string
	// Name — внешнее имя товара, уникальное в каталоге.
	Name string
	// PriceMinor — цена за единицу в минимальных денежных единицах.
	PriceMinor int64
	// AvailableQty — доступный остаток; наблюдаемое значение никогда не отрицательно.
	AvailableQty int32
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Validate проверяет корректность полей товара при регистрации.
func (p *ProductRecord) Validate() []error {
	var errs []error

	if p.Name == "" {
		errs = append(errs, ErrProductNameRequired)
	}
	if p.PriceMinor < 0 {
		errs = append(errs, ErrProductPriceNegative)
	}
	if p.AvailableQty < 0 {
		errs = append(errs, ErrProductQtyNegative)
	}

	return errs
}

// StockAdjustment — одно изменение остатка конкретного товара.
type StockAdjustment struct {
	ProductID string
	Qty       int32
}

// Validate проверяет ключевые поля изменения остатка.
func (a *StockAdjustment) Validate() []error {
	var errs []error

	if a.ProductID == "" {
		errs = append(errs, ErrAdjustmentProductRequired)
	}
	if a.Qty <= 0 {
		errs = append(errs, ErrAdjustmentQtyInvalid)
	}

	return errs
}

// MergeAdjustments суммирует количества по одинаковым product id.
// Дубликаты в одном запросе схлопываются до одного изменения остатка,
// чтобы проверка достаточности выполнялась против суммарного количества,
// а не построчно против одного и того же снапшота.
func MergeAdjustments(items []LineItemRequest) []StockAdjustment {
	totals := make(map[string]int32, len(items))
	ids := make([]string, 0, len(items))
	for _, item := range items {
		if _, seen := totals[item.ProductID]; !seen {
			ids = append(ids, item.ProductID)
		}
		totals[item.ProductID] += item.Qty
	}

	// Канонический порядок по product id: конкурентные заказы блокируют
	// строки товаров в одной последовательности и не взаимоблокируются.
	sort.Strings(ids)

	merged := make([]StockAdjustment, 0, len(ids))
	for _, id := range ids {
		merged = append(merged, StockAdjustment{ProductID: id, Qty: totals[id]})
	}
	return merged
}
