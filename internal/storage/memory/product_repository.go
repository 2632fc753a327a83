package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/vladislavdragonenkov/commerce/internal/domain"
)

// productRepositoryInMemory — in-memory реализация ProductRepository.
type productRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Product
}

// NewProductRepository возвращает in-memory каталог для локальной разработки и тестов.
func NewProductRepository() domain.ProductRepository {
	return &productRepositoryInMemory{
		items: make(map[string]domain.Product),
	}
}

// Create сохраняет новый товар, если ID ещё не занят.
func (r *productRepositoryInMemory) Create(product domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[product.ID]; exists {
		return domain.ErrAlreadyExists
	}
	r.items[product.ID] = product
	return nil
}

// FindByID возвращает товар или ErrProductNotFound, если его нет.
func (r *productRepositoryInMemory) FindByID(id string) (domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.items[id]
	if !ok {
		return domain.Product{}, &domain.ProductNotFoundError{ProductID: id}
	}
	return product, nil
}

// FindAllByIDs возвращает найденное подмножество товаров. Дубликаты во
// входном наборе схлопываются, отсутствующие ID молча пропускаются.
func (r *productRepositoryInMemory) FindAllByIDs(ids []string) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{}, len(ids))
	result := make([]domain.Product, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if product, ok := r.items[id]; ok {
			result = append(result, product)
		}
	}
	return result, nil
}

// List возвращает товары каталога, ограничивая выборку limit (если >0).
func (r *productRepositoryInMemory) List(limit int) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Product, 0, len(r.items))
	for _, product := range r.items {
		result = append(result, product)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}

	return result, nil
}

// DecrementStock условно списывает остатки: сначала проверяем все позиции
// под блокировкой, затем применяем. Либо списываются все позиции, либо ни одна.
// Повторы одного товара в батче проверяются против остатка за вычетом уже
// учтённых списаний, чтобы суммарное списание не увело остаток в минус.
func (r *productRepositoryInMemory) DecrementStock(decrements []domain.StockDecrement) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	remaining := make(map[string]int32, len(decrements))
	for _, dec := range decrements {
		available, seen := remaining[dec.ProductID]
		if !seen {
			product, ok := r.items[dec.ProductID]
			if !ok {
				return &domain.ProductNotFoundError{ProductID: dec.ProductID}
			}
			available = product.Quantity
		}
		if available < dec.Qty {
			return &domain.InsufficientStockError{
				ProductID: dec.ProductID,
				Requested: dec.Qty,
				Available: available,
			}
		}
		remaining[dec.ProductID] = available - dec.Qty
	}

	now := time.Now().UTC()
	for _, dec := range decrements {
		product := r.items[dec.ProductID]
		product.Quantity -= dec.Qty
		product.UpdatedAt = now
		r.items[dec.ProductID] = product
	}
	return nil
}

// Restock увеличивает остаток товара на qty единиц.
func (r *productRepositoryInMemory) Restock(id string, qty int32) (domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.items[id]
	if !ok {
		return domain.Product{}, &domain.ProductNotFoundError{ProductID: id}
	}
	product.Quantity += qty
	product.UpdatedAt = time.Now().UTC()
	r.items[id] = product
	return product, nil
}

var _ domain.ProductRepository = (*productRepositoryInMemory)(nil)
