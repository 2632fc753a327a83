package kafka

import "time"

// EventType определяет тип события
type EventType string

const (
	// EventTypeOrderCreated публикуется после успешного оформления заказа.
	EventTypeOrderCreated EventType = "order.created"
	// EventTypeCustomerCreated публикуется после регистрации клиента.
	EventTypeCustomerCreated EventType = "customer.created"
	// EventTypeStockDecremented публикуется после списания остатков под заказ.
	EventTypeStockDecremented EventType = "stock.decremented"
)

// Topics для Kafka
const (
	TopicOrderEvents    = "commerce.order.events"
	TopicCustomerEvents = "commerce.customer.events"
	// TopicDeadLetterQueue принимает сообщения, которые не удалось
	// опубликовать после всех retry.
	TopicDeadLetterQueue = "commerce.dlq"
)

// Идентификаторы агрегатов в outbox-сообщениях.
const (
	AggregateOrder    = "order"
	AggregateCustomer = "customer"
)

// OrderLine — позиция заказа в составе события.
type OrderLine struct {
	ProductID  string `json:"product_id"`
	Qty        int32  `json:"qty"`
	PriceMinor int64  `json:"price_minor"`
}

// OrderCreatedEvent описывает успешно оформленный заказ.
type OrderCreatedEvent struct {
	OrderID     string      `json:"order_id"`
	CustomerID  string      `json:"customer_id"`
	AmountMinor int64       `json:"amount_minor"`
	Lines       []OrderLine `json:"lines"`
	CreatedAt   time.Time   `json:"created_at"`
}

// CustomerCreatedEvent описывает зарегистрированного клиента.
type CustomerCreatedEvent struct {
	CustomerID string    `json:"customer_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	CreatedAt  time.Time `json:"created_at"`
}
