package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestOrderMetrics_Record(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := newOrderMetricsWithRegisterer(registry)

	m.RecordOrderPlaced(2, 5)
	m.RecordOrderPlaced(1, 1)
	m.RecordOrderFailed(FailReasonInsufficientStock)
	m.RecordCustomerCreated()
	m.RecordPlaceOrderDuration(10 * time.Millisecond)

	if got := testutil.ToFloat64(m.ordersPlaced); got != 2 {
		t.Fatalf("expected 2 placed orders, got %v", got)
	}
	if got := testutil.ToFloat64(m.ordersFailed.WithLabelValues(FailReasonInsufficientStock)); got != 1 {
		t.Fatalf("expected 1 failed order, got %v", got)
	}
	if got := testutil.ToFloat64(m.customersCreated); got != 1 {
		t.Fatalf("expected 1 created customer, got %v", got)
	}
	if got := testutil.ToFloat64(m.stockDecremented); got != 6 {
		t.Fatalf("expected 6 decremented units, got %v", got)
	}
}

func TestOrderMetrics_DoubleRegistration(t *testing.T) {
	registry := prometheus.NewRegistry()

	// Повторная инициализация переиспользует уже зарегистрированные коллекторы.
	first := newOrderMetricsWithRegisterer(registry)
	second := newOrderMetricsWithRegisterer(registry)

	first.RecordOrderPlaced(1, 1)
	second.RecordOrderPlaced(1, 1)

	if got := testutil.ToFloat64(first.ordersPlaced); got != 2 {
		t.Fatalf("expected shared counter value 2, got %v", got)
	}
}
