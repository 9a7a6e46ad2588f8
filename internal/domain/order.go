package domain

import "time"

// LineItemRequest — одна строка запроса на размещение заказа.
// Не сохраняется напрямую; при успехе превращается в OrderLineItem.
type LineItemRequest struct {
	ProductID string
	Qty       int32
}

// Validate проверяет корректность строки запроса.
func (l *LineItemRequest) Validate() []error {
	var errs []error

	if l.ProductID == "" {
		errs = append(errs, ErrLineProductRequired)
	}
	if l.Qty <= 0 {
		errs = append(errs, ErrLineQtyInvalid)
	}

	return errs
}

// OrderLineItem представляет одну позицию сохранённого заказа.
// PriceMinor — копия цены каталога на момент подтверждения достаточности;
// последующие изменения каталога позицию не затрагивают.
type OrderLineItem struct {
	ID         string
	ProductID  string
	Qty        int32
	PriceMinor int64
	CreatedAt  time.Time
}

// Order агрегирует размещённый заказ и его позиции.
// Создаётся ровно один раз при успешном размещении и далее не мутируется.
type Order struct {
	ID          string
	CustomerID  string
	AmountMinor int64
	Items       []OrderLineItem
	CreatedAt   time.Time
}

// ValidateInvariants проверяет базовые инварианты заказа и возвращает список замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if o.CustomerID == "" {
		errs = append(errs, ErrCustomerRequired)
	}
	if len(o.Items) == 0 {
		errs = append(errs, ErrItemsRequired)
	}
	if o.AmountMinor < 0 {
		errs = append(errs, ErrAmountNegative)
	}

	// Сверяем сумму заказа с суммой позиций: qty * price.
	var calc int64
	for _, item := range o.Items {
		if item.ProductID == "" {
			errs = append(errs, ErrLineProductRequired)
		}
		if item.Qty <= 0 {
			errs = append(errs, ErrLineQtyInvalid)
		}
		if item.PriceMinor < 0 {
			errs = append(errs, ErrLinePriceInvalid)
		}
		calc += int64(item.Qty) * item.PriceMinor
	}
	if calc != o.AmountMinor {
		errs = append(errs, ErrAmountMismatch)
	}

	return errs
}
