package memory_test

import (
	"errors"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/commerce/internal/domain"
	"github.com/vladislavdragonenkov/commerce/internal/storage/memory"
)

func newProduct(id string, qty int32) domain.Product {
	now := time.Now().UTC()
	return domain.Product{
		ID:         id,
		Name:       "product " + id,
		SKU:        "sku-" + id,
		PriceMinor: 1000,
		Quantity:   qty,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestProductRepository_CreateFind(t *testing.T) {
	repo := memory.NewProductRepository()
	product := newProduct("p-1", 5)

	if err := repo.Create(product); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := repo.Create(product); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}

	stored, err := repo.FindByID("p-1")
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if stored.Quantity != 5 {
		t.Fatalf("expected quantity 5, got %d", stored.Quantity)
	}

	if _, err := repo.FindByID("missing"); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestProductRepository_FindAllByIDs(t *testing.T) {
	repo := memory.NewProductRepository()
	if err := repo.Create(newProduct("p-1", 5)); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := repo.Create(newProduct("p-2", 3)); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// Дубликаты схлопываются, отсутствующие ID не считаются ошибкой.
	found, err := repo.FindAllByIDs([]string{"p-1", "p-1", "missing", "p-2"})
	if err != nil {
		t.Fatalf("find all failed: %v", err)
	}
	if len(found) != 2 {
		t.Fatalf("expected 2 products, got %d", len(found))
	}
}

func TestProductRepository_DecrementStock(t *testing.T) {
	repo := memory.NewProductRepository()
	if err := repo.Create(newProduct("p-1", 5)); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	err := repo.DecrementStock([]domain.StockDecrement{{ProductID: "p-1", Qty: 3}})
	if err != nil {
		t.Fatalf("decrement failed: %v", err)
	}

	stored, err := repo.FindByID("p-1")
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if stored.Quantity != 2 {
		t.Fatalf("expected quantity 2, got %d", stored.Quantity)
	}
}

func TestProductRepository_DecrementStockInsufficient(t *testing.T) {
	repo := memory.NewProductRepository()
	if err := repo.Create(newProduct("p-1", 5)); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	err := repo.DecrementStock([]domain.StockDecrement{{ProductID: "p-1", Qty: 6}})
	if !domain.IsInsufficientStock(err) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}

	var stockErr *domain.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatal("expected InsufficientStockError")
	}
	if stockErr.Requested != 6 || stockErr.Available != 5 {
		t.Fatalf("unexpected error details: %+v", stockErr)
	}

	stored, err := repo.FindByID("p-1")
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if stored.Quantity != 5 {
		t.Fatalf("stock must be unchanged, got %d", stored.Quantity)
	}
}

func TestProductRepository_DecrementStockDuplicateProductInBatch(t *testing.T) {
	repo := memory.NewProductRepository()
	if err := repo.Create(newProduct("p-1", 5)); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// Два списания одного товара суммарно превышают остаток: батч отклоняется целиком.
	err := repo.DecrementStock([]domain.StockDecrement{
		{ProductID: "p-1", Qty: 3},
		{ProductID: "p-1", Qty: 3},
	})

	var stockErr *domain.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if stockErr.Requested != 3 || stockErr.Available != 2 {
		t.Fatalf("unexpected error details: %+v", stockErr)
	}

	stored, err := repo.FindByID("p-1")
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if stored.Quantity != 5 {
		t.Fatalf("stock must be unchanged, got %d", stored.Quantity)
	}

	// В пределах остатка повторы проходят и списываются оба.
	if err := repo.DecrementStock([]domain.StockDecrement{
		{ProductID: "p-1", Qty: 2},
		{ProductID: "p-1", Qty: 2},
	}); err != nil {
		t.Fatalf("decrement failed: %v", err)
	}
	stored, err = repo.FindByID("p-1")
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if stored.Quantity != 1 {
		t.Fatalf("expected quantity 1, got %d", stored.Quantity)
	}
}

func TestProductRepository_DecrementStockAllOrNothing(t *testing.T) {
	repo := memory.NewProductRepository()
	if err := repo.Create(newProduct("p-1", 5)); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := repo.Create(newProduct("p-2", 1)); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	err := repo.DecrementStock([]domain.StockDecrement{
		{ProductID: "p-1", Qty: 2},
		{ProductID: "p-2", Qty: 2},
	})
	if !domain.IsInsufficientStock(err) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}

	first, err := repo.FindByID("p-1")
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if first.Quantity != 5 {
		t.Fatalf("p-1 stock must be unchanged, got %d", first.Quantity)
	}
}

func TestProductRepository_Restock(t *testing.T) {
	repo := memory.NewProductRepository()
	if err := repo.Create(newProduct("p-1", 2)); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	product, err := repo.Restock("p-1", 3)
	if err != nil {
		t.Fatalf("restock failed: %v", err)
	}
	if product.Quantity != 5 {
		t.Fatalf("expected quantity 5, got %d", product.Quantity)
	}

	if _, err := repo.Restock("missing", 1); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}
