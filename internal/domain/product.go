package domain

import "time"

// Product — позиция каталога. Товары создаются и пополняются вне
// сценария оформления заказа; для workflow это источник текущей цены
// и доступного остатка.
type Product struct {
	ID string
	// Name — человекочитаемое название товара.
	Name string
	// SKU — внешний артикул товара.
	SKU string
	// PriceMinor — текущая цена за единицу в минимальных денежных единицах.
	PriceMinor int64
	// Quantity — доступный остаток на складе, неотрицательный.
	Quantity  int32
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidateInvariants проверяет базовые инварианты товара.
func (p *Product) ValidateInvariants() []error {
	var errs []error

	if p.Name == "" {
		errs = append(errs, ErrProductNameRequired)
	}
	if p.PriceMinor < 0 {
		errs = append(errs, ErrItemPriceInvalid)
	}
	if p.Quantity < 0 {
		errs = append(errs, ErrProductQuantityInvalid)
	}

	return errs
}

// StockDecrement описывает списание остатка по одному товару.
// Хранилище применяет его условно: только если текущего остатка хватает.
type StockDecrement struct {
	ProductID string
	Qty       int32
}
