package domain

import "time"

// OrderLineItem представляет одну позицию заказа.
type OrderLineItem struct {
	// ID позиции нужен для однозначной идентификации и аудита.
	ID string
	// ProductID — ссылка на товар каталога.
	ProductID string
	// Qty — купленное количество единиц товара.
	Qty int32
	// PriceMinor — цена за единицу, зафиксированная в момент оформления
	// заказа. Последующие изменения цены в каталоге на неё не влияют.
	PriceMinor int64
	// CreatedAt фиксирует момент добавления позиции в заказ.
	CreatedAt time.Time
}

// Order агрегирует заказ клиента и его позиции. После создания заказ
// не мутируется: операций обновления и отмены в этом сервисе нет.
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
		errs = append(errs, ErrCustomerIDRequired)
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
		if item.Qty <= 0 {
			errs = append(errs, ErrItemQtyInvalid)
		}
		if item.PriceMinor < 0 {
			errs = append(errs, ErrItemPriceInvalid)
		}
		calc += int64(item.Qty) * item.PriceMinor
	}
	if calc != o.AmountMinor {
		errs = append(errs, ErrAmountMismatch)
	}

	return errs
}
