package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Причины отказа в оформлении заказа для метрик.
const (
	FailReasonCustomerNotFound  = "customer_not_found"
	FailReasonProductNotFound   = "product_not_found"
	FailReasonInsufficientStock = "insufficient_stock"
	FailReasonInvalidRequest    = "invalid_request"
	FailReasonInternal          = "internal"
)

// OrderMetrics содержит метрики сценария оформления заказа.
type OrderMetrics struct {
	// Счётчики операций
	ordersPlaced     prometheus.Counter
	ordersFailed     *prometheus.CounterVec
	customersCreated prometheus.Counter

	// Гистограммы
	placeOrderDuration prometheus.Histogram
	itemsPerOrder      prometheus.Histogram

	// Счётчик списанных единиц товара
	stockDecremented prometheus.Counter
}

// NewOrderMetrics создаёт метрики с регистрацией в default registry.
func NewOrderMetrics() *OrderMetrics {
	return newOrderMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newOrderMetricsWithRegisterer(registerer prometheus.Registerer) *OrderMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &OrderMetrics{
		ordersPlaced: registerCounter(registerer, prometheus.CounterOpts{
			Name: "commerce_orders_placed_total",
			Help: "Total number of successfully placed orders",
		}),
		ordersFailed: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "commerce_orders_failed_total",
			Help: "Total number of rejected order placements grouped by reason",
		}, []string{"reason"}),
		customersCreated: registerCounter(registerer, prometheus.CounterOpts{
			Name: "commerce_customers_created_total",
			Help: "Total number of created customers",
		}),
		placeOrderDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "commerce_place_order_duration_seconds",
			Help:    "Duration of the order placement workflow in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		itemsPerOrder: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "commerce_items_per_order",
			Help:    "Number of line items in placed orders",
			Buckets: []float64{1, 2, 3, 5, 8, 13, 21, 34},
		}),
		stockDecremented: registerCounter(registerer, prometheus.CounterOpts{
			Name: "commerce_stock_decremented_units_total",
			Help: "Total number of stock units decremented by placed orders",
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

// RecordOrderPlaced фиксирует успешно оформленный заказ.
func (m *OrderMetrics) RecordOrderPlaced(items int, decrementedUnits int64) {
	m.ordersPlaced.Inc()
	m.itemsPerOrder.Observe(float64(items))
	m.stockDecremented.Add(float64(decrementedUnits))
}

// RecordOrderFailed увеличивает счётчик отказов с указанием причины.
func (m *OrderMetrics) RecordOrderFailed(reason string) {
	m.ordersFailed.WithLabelValues(reason).Inc()
}

// RecordCustomerCreated увеличивает счётчик созданных клиентов.
func (m *OrderMetrics) RecordCustomerCreated() {
	m.customersCreated.Inc()
}

// RecordPlaceOrderDuration записывает длительность workflow.
func (m *OrderMetrics) RecordPlaceOrderDuration(duration time.Duration) {
	m.placeOrderDuration.Observe(duration.Seconds())
}
