package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/commerce/internal/domain"
)

func validOrder() domain.Order {
	now := time.Now().UTC()
	return domain.Order{
		ID:          "order-1",
		CustomerID:  "customer-1",
		AmountMinor: 3000,
		Items: []domain.OrderLineItem{
			{ID: "item-1", ProductID: "product-1", Qty: 3, PriceMinor: 1000, CreatedAt: now},
		},
		CreatedAt: now,
	}
}

func TestOrderValidateInvariants_Valid(t *testing.T) {
	order := validOrder()
	if errs := order.ValidateInvariants(); len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestOrderValidateInvariants_MissingCustomer(t *testing.T) {
	order := validOrder()
	order.CustomerID = ""

	errs := order.ValidateInvariants()
	if len(errs) == 0 {
		t.Fatal("expected validation errors")
	}
	if !errors.Is(errs[0], domain.ErrCustomerIDRequired) {
		t.Fatalf("expected ErrCustomerIDRequired, got %v", errs[0])
	}
}

func TestOrderValidateInvariants_NoItems(t *testing.T) {
	order := validOrder()
	order.Items = nil
	order.AmountMinor = 0

	errs := order.ValidateInvariants()
	if len(errs) != 1 || !errors.Is(errs[0], domain.ErrItemsRequired) {
		t.Fatalf("expected ErrItemsRequired, got %v", errs)
	}
}

func TestOrderValidateInvariants_AmountMismatch(t *testing.T) {
	order := validOrder()
	order.AmountMinor = 2999

	errs := order.ValidateInvariants()
	if len(errs) != 1 || !errors.Is(errs[0], domain.ErrAmountMismatch) {
		t.Fatalf("expected ErrAmountMismatch, got %v", errs)
	}
}

func TestOrderValidateInvariants_BadItemQty(t *testing.T) {
	order := validOrder()
	order.Items[0].Qty = 0
	order.AmountMinor = 0

	errs := order.ValidateInvariants()
	found := false
	for _, err := range errs {
		if errors.Is(err, domain.ErrItemQtyInvalid) {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected ErrItemQtyInvalid among %v", errs)
	}
}

func TestCustomerValidateInvariants(t *testing.T) {
	customer := domain.Customer{ID: "c-1", Name: "Ivan", Email: "ivan@example.com"}
	if errs := customer.ValidateInvariants(); len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}

	customer.Name = ""
	customer.Email = ""
	errs := customer.ValidateInvariants()
	if len(errs) != 2 {
		t.Fatalf("expected 2 errors, got %v", errs)
	}
	if !errors.Is(errs[0], domain.ErrCustomerNameRequired) {
		t.Fatalf("expected ErrCustomerNameRequired, got %v", errs[0])
	}
	if !errors.Is(errs[1], domain.ErrCustomerEmailRequired) {
		t.Fatalf("expected ErrCustomerEmailRequired, got %v", errs[1])
	}
}

func TestProductValidateInvariants(t *testing.T) {
	product := domain.Product{ID: "p-1", Name: "Widget", PriceMinor: 100, Quantity: 5}
	if errs := product.ValidateInvariants(); len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}

	product.Quantity = -1
	errs := product.ValidateInvariants()
	if len(errs) != 1 || !errors.Is(errs[0], domain.ErrProductQuantityInvalid) {
		t.Fatalf("expected ErrProductQuantityInvalid, got %v", errs)
	}
}
