package domain

import "errors"

// Терминальные ошибки транзакции размещения заказа.
var (
	// ErrInvalidCustomer — клиент с указанным идентификатором не найден.
	ErrInvalidCustomer = errors.New("invalid customer")
	// ErrInvalidProduct — хотя бы один товар из запроса отсутствует в каталоге.
	ErrInvalidProduct = errors.New("invalid product")
	// ErrInsufficientStock — остатка не хватает хотя бы по одной позиции.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrPersistenceFailure — заказ не удалось сохранить; списание остатка откатано.
	ErrPersistenceFailure = errors.New("order persistence failure")
	// ErrCompensationFailed — компенсирующее восстановление остатка не удалось;
	// состояние требует ручной сверки, автоматический retry небезопасен.
	ErrCompensationFailed = errors.New("stock compensation failed")
)

// Ошибки валидации доменных сущностей.
var (
	// Ошибка отсутствующего идентификатора клиента в заказе.
	ErrCustomerRequired = errors.New("customer_id is required")
	// Ошибка отсутствия хотя бы одной позиции в заказе.
	ErrItemsRequired = errors.New("order must contain at least one item")
	// Ошибка отрицательной суммы заказа.
	ErrAmountNegative = errors.New("amount_minor must be non-negative")
	// Ошибка несоответствия суммы заказа и сумм позиций.
	ErrAmountMismatch = errors.New("order amount does not match items sum")
	// Ошибка отсутствующего product id в строке запроса.
	ErrLineProductRequired = errors.New("line item product_id is required")
	// Ошибка некорректного количества в строке запроса (<= 0).
	ErrLineQtyInvalid = errors.New("line item qty must be greater than zero")
	// Ошибка отрицательной цены позиции.
	ErrLinePriceInvalid = errors.New("line item price must be non-negative")
	// Ошибка отсутствующего имени клиента.
	ErrCustomerNameRequired = errors.New("customer name is required")
	// Ошибка отсутствующего email клиента.
	ErrCustomerEmailRequired = errors.New("customer email is required")
	// ErrCustomerEmailTaken возвращается при регистрации с занятым email.
	ErrCustomerEmailTaken = errors.New("customer email already in use")
	// Ошибка отсутствующего имени товара.
	ErrProductNameRequired = errors.New("product name is required")
	// ErrProductNameTaken возвращается при регистрации товара с занятым именем.
	ErrProductNameTaken = errors.New("product name already in use")
	// Ошибка отрицательной цены товара.
	ErrProductPriceNegative = errors.New("product price must be non-negative")
	// Ошибка отрицательного остатка при регистрации товара.
	ErrProductQtyNegative = errors.New("product quantity must be non-negative")
	// Ошибка отсутствующего product id в изменении остатка.
	ErrAdjustmentProductRequired = errors.New("adjustment product_id is required")
	// Ошибка некорректного количества в изменении остатка.
	ErrAdjustmentQtyInvalid = errors.New("adjustment qty must be greater than zero")
)

// Ошибки хранилищ и инфраструктуры.
var (
	// ErrCustomerNotFound возвращается, если клиент не найден в репозитории.
	ErrCustomerNotFound = errors.New("customer not found")
	// ErrProductNotFound возвращается, если товар не найден в каталоге.
	ErrProductNotFound = errors.New("product not found")
	// ErrOrderNotFound возвращается, если заказ не найден в репозитории.
	ErrOrderNotFound = errors.New("order not found")
	// ErrOrderAlreadyExists сигнализирует о конфликте идентификаторов при сохранении.
	ErrOrderAlreadyExists = errors.New("order already exists")
	// ErrOutboxPublish — ошибка при публикации сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")
)

// Ошибки обработки idempotency-key.
var (
	ErrIdempotencyKeyRequired         = errors.New("idempotency key is required")
	ErrIdempotencyRequestHashRequired = errors.New("idempotency request hash is required")
	ErrIdempotencyKeyAlreadyExists    = errors.New("idempotency key already exists")
	ErrIdempotencyHashMismatch        = errors.New("idempotency key reused with different request")
	ErrIdempotencyKeyNotFound         = errors.New("idempotency key not found")
)

// IsInsufficientStock проверяет, является ли ошибка нехваткой остатка.
func IsInsufficientStock(err error) bool {
	return errors.Is(err, ErrInsufficientStock)
}

// IsCompensationFailed проверяет, является ли ошибка провалом компенсации.
func IsCompensationFailed(err error) bool {
	return errors.Is(err, ErrCompensationFailed)
}

// IsIdempotencyConflict проверяет, является ли ошибка конфликтом idempotency-key.
func IsIdempotencyConflict(err error) bool {
	return errors.Is(err, ErrIdempotencyKeyAlreadyExists) || errors.Is(err, ErrIdempotencyHashMismatch)
}
