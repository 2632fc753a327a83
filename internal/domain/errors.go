package domain

import (
	"errors"
	"fmt"
)

var (
	// Ошибка отсутствующего идентификатора клиента в запросе заказа.
	ErrCustomerIDRequired = errors.New("customer_id is required")
	// Ошибка отсутствующего имени клиента.
	ErrCustomerNameRequired = errors.New("customer name is required")
	// Ошибка отсутствующего email клиента.
	ErrCustomerEmailRequired = errors.New("customer email is required")
	// Ошибка отсутствующего названия товара.
	ErrProductNameRequired = errors.New("product name is required")
	// Ошибка отрицательного остатка товара.
	ErrProductQuantityInvalid = errors.New("product quantity must be non-negative")
	// Ошибка отсутствия хотя бы одного товара в заказе.
	ErrItemsRequired = errors.New("order must contain at least one item")
	// Ошибка при некорректном количестве товара (<= 0).
	ErrItemQtyInvalid = errors.New("item qty must be greater than zero")
	// Ошибка, если цена позиции отрицательная.
	ErrItemPriceInvalid = errors.New("item price must be non-negative")
	// Ошибка отрицательной суммы заказа.
	ErrAmountNegative = errors.New("amount_minor must be non-negative")
	// Ошибка несоответствия суммы заказа и сумм позиций.
	ErrAmountMismatch = errors.New("order amount does not match items sum")

	// ErrCustomerNotFound возвращается, если клиент не найден в репозитории.
	ErrCustomerNotFound = errors.New("customer not found")
	// ErrProductsNotFound возвращается, когда ни один из запрошенных
	// товаров не найден в каталоге.
	ErrProductsNotFound = errors.New("products not found")
	// ErrOrderNotFound возвращается, если заказ не найден в репозитории.
	ErrOrderNotFound = errors.New("order not found")
	// ErrProductNotFound — базовая ошибка отсутствующего товара;
	// конкретный товар несёт ProductNotFoundError.
	ErrProductNotFound = errors.New("product not found")
	// ErrInsufficientStock — базовая ошибка нехватки остатка;
	// конкретная позиция несёт InsufficientStockError.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrAlreadyExists сигнализирует о попытке повторной вставки записи.
	ErrAlreadyExists = errors.New("record already exists")
	// ErrOutboxPublish — ошибка при публикации сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")
)

// ProductNotFoundError указывает на первый товар из запроса, которого
// нет в каталоге. Порядок обхода позиций запроса детерминирован.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

// Unwrap позволяет проверять ошибку через errors.Is(err, ErrProductNotFound).
func (e *ProductNotFoundError) Unwrap() error {
	return ErrProductNotFound
}

// InsufficientStockError указывает на первую позицию запроса, для
// которой запрошенное количество превышает доступный остаток.
type InsufficientStockError struct {
	ProductID string
	Requested int32
	Available int32
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("the quantity of %d is not available for the product %s", e.Requested, e.ProductID)
}

// Unwrap позволяет проверять ошибку через errors.Is(err, ErrInsufficientStock).
func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}

// IsNotFound проверяет, относится ли ошибка к классу "запись не найдена".
func IsNotFound(err error) bool {
	return errors.Is(err, ErrCustomerNotFound) ||
		errors.Is(err, ErrProductsNotFound) ||
		errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrOrderNotFound)
}

// IsInsufficientStock проверяет, является ли ошибка нехваткой остатка.
func IsInsufficientStock(err error) bool {
	return errors.Is(err, ErrInsufficientStock)
}

// IsValidation проверяет, вызвана ли ошибка некорректным входом запроса.
func IsValidation(err error) bool {
	return errors.Is(err, ErrCustomerIDRequired) ||
		errors.Is(err, ErrCustomerNameRequired) ||
		errors.Is(err, ErrCustomerEmailRequired) ||
		errors.Is(err, ErrProductNameRequired) ||
		errors.Is(err, ErrProductQuantityInvalid) ||
		errors.Is(err, ErrItemsRequired) ||
		errors.Is(err, ErrItemQtyInvalid) ||
		errors.Is(err, ErrItemPriceInvalid) ||
		errors.Is(err, ErrAmountNegative) ||
		errors.Is(err, ErrAmountMismatch)
}
