package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/commerce/internal/domain"
	"github.com/vladislavdragonenkov/commerce/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/commerce/internal/metrics"
)

// RequestedItem — одна позиция запроса на оформление заказа.
type RequestedItem struct {
	ProductID string
	Qty       int32
}

// Service реализует сценарий оформления заказа: валидация клиента и
// товаров, фиксация цен, сохранение заказа и списание остатков.
type Service struct {
	customers domain.CustomerRepository
	products  domain.ProductRepository
	orders    domain.OrderRepository
	outbox    domain.OutboxRepository
	logger    *log.Entry
	metrics   *metrics.OrderMetrics
}

// NewService создаёт сервис заказов со всеми зависимостями.
func NewService(
	customers domain.CustomerRepository,
	products domain.ProductRepository,
	orders domain.OrderRepository,
	outbox domain.OutboxRepository,
	logger *log.Entry,
) *Service {
	svc := newService(customers, products, orders, outbox, logger)
	svc.metrics = metrics.NewOrderMetrics()
	return svc
}

// NewServiceWithoutMetrics создаёт сервис без метрик (для тестов).
func NewServiceWithoutMetrics(
	customers domain.CustomerRepository,
	products domain.ProductRepository,
	orders domain.OrderRepository,
	outbox domain.OutboxRepository,
	logger *log.Entry,
) *Service {
	return newService(customers, products, orders, outbox, logger)
}

func newService(
	customers domain.CustomerRepository,
	products domain.ProductRepository,
	orders domain.OrderRepository,
	outbox domain.OutboxRepository,
	logger *log.Entry,
) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "order-service")
	}
	return &Service{
		customers: customers,
		products:  products,
		orders:    orders,
		outbox:    outbox,
		logger:    logger,
	}
}

// PlaceOrder оформляет заказ клиента. Все проверки выполняются до первой
// записи: при любой ошибке валидации ни заказ, ни остатки не меняются.
// Ошибки про отсутствующий товар и нехватку остатка указывают на первую
// проблемную позицию в порядке следования позиций запроса.
func (s *Service) PlaceOrder(ctx context.Context, customerID string, items []RequestedItem) (domain.Order, error) {
	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.RecordPlaceOrderDuration(time.Since(start))
		}
	}()

	order, err := s.placeOrder(ctx, customerID, items)
	if err != nil {
		s.recordFailure(err)
		return domain.Order{}, err
	}

	if s.metrics != nil {
		var units int64
		for _, item := range order.Items {
			units += int64(item.Qty)
		}
		s.metrics.RecordOrderPlaced(len(order.Items), units)
	}
	return order, nil
}

func (s *Service) placeOrder(ctx context.Context, customerID string, items []RequestedItem) (domain.Order, error) {
	if customerID == "" {
		return domain.Order{}, domain.ErrCustomerIDRequired
	}
	if len(items) == 0 {
		return domain.Order{}, domain.ErrItemsRequired
	}
	for _, item := range items {
		if item.Qty <= 0 {
			return domain.Order{}, domain.ErrItemQtyInvalid
		}
	}
	if err := ctx.Err(); err != nil {
		return domain.Order{}, err
	}

	customer, err := s.customers.FindByID(customerID)
	if err != nil {
		if errors.Is(err, domain.ErrCustomerNotFound) {
			return domain.Order{}, domain.ErrCustomerNotFound
		}
		return domain.Order{}, fmt.Errorf("find customer: %w", err)
	}

	// Уникальные идентификаторы в порядке первого появления в запросе.
	ids := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if _, dup := seen[item.ProductID]; dup {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}

	resolved, err := s.products.FindAllByIDs(ids)
	if err != nil {
		return domain.Order{}, fmt.Errorf("find products: %w", err)
	}
	if len(resolved) == 0 {
		return domain.Order{}, domain.ErrProductsNotFound
	}

	byID := make(map[string]domain.Product, len(resolved))
	for _, product := range resolved {
		byID[product.ID] = product
	}

	// Первый отсутствующий товар в порядке позиций запроса.
	for _, item := range items {
		if _, ok := byID[item.ProductID]; !ok {
			return domain.Order{}, &domain.ProductNotFoundError{ProductID: item.ProductID}
		}
	}

	// Суммарное запрошенное количество по каждому товару: дубликаты
	// позиций схлопываются до одного списания.
	required := make(map[string]int32, len(ids))
	for _, item := range items {
		required[item.ProductID] += item.Qty
	}

	// Первая позиция запроса, по товару которой суммарного остатка не хватает.
	checked := make(map[string]struct{}, len(ids))
	for _, item := range items {
		if _, done := checked[item.ProductID]; done {
			continue
		}
		checked[item.ProductID] = struct{}{}

		product := byID[item.ProductID]
		if required[item.ProductID] > product.Quantity {
			return domain.Order{}, &domain.InsufficientStockError{
				ProductID: item.ProductID,
				Requested: required[item.ProductID],
				Available: product.Quantity,
			}
		}
	}

	// Фиксируем цены каталога на момент оформления.
	now := time.Now().UTC()
	lineItems := make([]domain.OrderLineItem, 0, len(items))
	var amountSum int64
	for _, item := range items {
		product := byID[item.ProductID]
		lineItems = append(lineItems, domain.OrderLineItem{
			ID:         uuid.NewString(),
			ProductID:  item.ProductID,
			Qty:        item.Qty,
			PriceMinor: product.PriceMinor,
			CreatedAt:  now,
		})
		amountSum += int64(item.Qty) * product.PriceMinor
	}

	order := domain.Order{
		ID:          uuid.NewString(),
		CustomerID:  customer.ID,
		AmountMinor: amountSum,
		Items:       lineItems,
		CreatedAt:   now,
	}

	if err := s.orders.Create(order); err != nil {
		s.logger.WithError(err).WithField("order_id", order.ID).Error("failed to create order")
		return domain.Order{}, fmt.Errorf("create order: %w", err)
	}

	decrements := make([]domain.StockDecrement, 0, len(ids))
	for _, id := range ids {
		decrements = append(decrements, domain.StockDecrement{ProductID: id, Qty: required[id]})
	}

	if err := s.products.DecrementStock(decrements); err != nil {
		// Кто-то успел выкупить остаток между валидацией и списанием.
		// Убираем заказ, чтобы не оставить частичное состояние.
		if delErr := s.orders.Delete(order.ID); delErr != nil {
			s.logger.WithError(delErr).WithField("order_id", order.ID).
				Error("failed to roll back order after stock decrement failure")
		}
		if domain.IsInsufficientStock(err) || domain.IsNotFound(err) {
			return domain.Order{}, err
		}
		return domain.Order{}, fmt.Errorf("decrement stock: %w", err)
	}

	s.enqueueOrderCreated(order)

	return order, nil
}

// GetOrder возвращает заказ по идентификатору.
func (s *Service) GetOrder(_ context.Context, id string) (domain.Order, error) {
	if id == "" {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return s.orders.Get(id)
}

// ListOrders возвращает заказы клиента.
func (s *Service) ListOrders(_ context.Context, customerID string, limit int) ([]domain.Order, error) {
	if customerID == "" {
		return nil, domain.ErrCustomerIDRequired
	}
	return s.orders.ListByCustomer(customerID, limit)
}

// enqueueOrderCreated ставит событие о заказе в outbox. Ошибка постановки
// не отменяет уже оформленный заказ.
func (s *Service) enqueueOrderCreated(order domain.Order) {
	if s.outbox == nil {
		return
	}

	lines := make([]kafka.OrderLine, 0, len(order.Items))
	for _, item := range order.Items {
		lines = append(lines, kafka.OrderLine{
			ProductID:  item.ProductID,
			Qty:        item.Qty,
			PriceMinor: item.PriceMinor,
		})
	}

	payload, err := json.Marshal(kafka.OrderCreatedEvent{
		OrderID:     order.ID,
		CustomerID:  order.CustomerID,
		AmountMinor: order.AmountMinor,
		Lines:       lines,
		CreatedAt:   order.CreatedAt,
	})
	if err != nil {
		s.logger.WithError(err).WithField("order_id", order.ID).Warn("failed to marshal order created event")
		return
	}

	if _, err := s.outbox.Enqueue(domain.OutboxMessage{
		AggregateType: kafka.AggregateOrder,
		AggregateID:   order.ID,
		EventType:     string(kafka.EventTypeOrderCreated),
		Payload:       payload,
	}); err != nil {
		s.logger.WithError(err).WithField("order_id", order.ID).Warn("failed to enqueue order created event")
	}
}

func (s *Service) recordFailure(err error) {
	if s.metrics == nil {
		return
	}

	switch {
	case errors.Is(err, domain.ErrCustomerNotFound):
		s.metrics.RecordOrderFailed(metrics.FailReasonCustomerNotFound)
	case errors.Is(err, domain.ErrProductsNotFound), errors.Is(err, domain.ErrProductNotFound):
		s.metrics.RecordOrderFailed(metrics.FailReasonProductNotFound)
	case domain.IsInsufficientStock(err):
		s.metrics.RecordOrderFailed(metrics.FailReasonInsufficientStock)
	case domain.IsValidation(err):
		s.metrics.RecordOrderFailed(metrics.FailReasonInvalidRequest)
	default:
		s.metrics.RecordOrderFailed(metrics.FailReasonInternal)
	}
}
