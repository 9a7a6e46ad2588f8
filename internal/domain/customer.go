package domain

import "time"

// Customer представляет покупателя, от имени которого оформляются заказы.
// Для размещения заказа ядру важен только идентификатор; остальные поля
// принадлежат подсистеме клиентов.
type Customer struct {
	ID        string
	Name      string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate проверяет обязательные поля перед регистрацией клиента.
func (c *Customer) Validate() []error {
	var errs []error

	if c.Name == "" {
		errs = append(errs, ErrCustomerNameRequired)
	}
	if c.Email == "" {
		errs = append(errs, ErrCustomerEmailRequired)
	}

	return errs
}
