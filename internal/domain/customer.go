package domain

import "time"

// Customer — покупатель, от имени которого оформляются заказы.
type Customer struct {
	ID        string
	Name      string
	Email     string
	CreatedAt time.Time
}

// ValidateInvariants проверяет обязательные поля клиента.
// Уникальность и формат email не проверяются — это зона ответственности хранилища.
func (c *Customer) ValidateInvariants() []error {
	var errs []error

	if c.Name == "" {
		errs = append(errs, ErrCustomerNameRequired)
	}
	if c.Email == "" {
		errs = append(errs, ErrCustomerEmailRequired)
	}

	return errs
}
