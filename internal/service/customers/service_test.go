package customers_test

import (
	"context"
	"errors"
	"testing"

	"github.com/vladislavdragonenkov/commerce/internal/domain"
	"github.com/vladislavdragonenkov/commerce/internal/service/customers"
	"github.com/vladislavdragonenkov/commerce/internal/storage/memory"
)

func TestCreateCustomer(t *testing.T) {
	repo := memory.NewCustomerRepository()
	outbox := memory.NewOutboxRepository()
	svc := customers.NewServiceWithoutMetrics(repo, outbox, nil)

	customer, err := svc.CreateCustomer(context.Background(), "Ivan", "ivan@example.com")
	if err != nil {
		t.Fatalf("create customer failed: %v", err)
	}
	if customer.ID == "" {
		t.Fatal("expected generated customer id")
	}
	if customer.CreatedAt.IsZero() {
		t.Fatal("expected created_at to be set")
	}

	stored, err := repo.FindByID(customer.ID)
	if err != nil {
		t.Fatalf("customer must be persisted: %v", err)
	}
	if stored.Email != "ivan@example.com" {
		t.Fatalf("unexpected email %s", stored.Email)
	}

	pending, err := outbox.PullPending(10)
	if err != nil {
		t.Fatalf("pull pending failed: %v", err)
	}
	if len(pending) != 1 || pending[0].EventType != "customer.created" {
		t.Fatalf("expected customer.created outbox event, got %v", pending)
	}
}

func TestCreateCustomer_Validation(t *testing.T) {
	svc := customers.NewServiceWithoutMetrics(memory.NewCustomerRepository(), nil, nil)
	ctx := context.Background()

	if _, err := svc.CreateCustomer(ctx, "", "ivan@example.com"); !errors.Is(err, domain.ErrCustomerNameRequired) {
		t.Fatalf("expected ErrCustomerNameRequired, got %v", err)
	}
	if _, err := svc.CreateCustomer(ctx, "Ivan", ""); !errors.Is(err, domain.ErrCustomerEmailRequired) {
		t.Fatalf("expected ErrCustomerEmailRequired, got %v", err)
	}
}

func TestGetCustomer(t *testing.T) {
	repo := memory.NewCustomerRepository()
	svc := customers.NewServiceWithoutMetrics(repo, nil, nil)
	ctx := context.Background()

	created, err := svc.CreateCustomer(ctx, "Ivan", "ivan@example.com")
	if err != nil {
		t.Fatalf("create customer failed: %v", err)
	}

	got, err := svc.GetCustomer(ctx, created.ID)
	if err != nil {
		t.Fatalf("get customer failed: %v", err)
	}
	if got.Name != "Ivan" {
		t.Fatalf("unexpected name %s", got.Name)
	}

	if _, err := svc.GetCustomer(ctx, "missing"); !errors.Is(err, domain.ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}
	if _, err := svc.GetCustomer(ctx, ""); !errors.Is(err, domain.ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound for empty id, got %v", err)
	}
}
