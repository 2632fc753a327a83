package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/commerce/internal/domain"
)

// Service обслуживает каталог товаров. Это операционная поверхность
// для провизионирования: сценарий заказа каталог не мутирует, кроме
// списания остатков через ProductRepository.
type Service struct {
	products domain.ProductRepository
	logger   *log.Entry
}

// NewService создаёт сервис каталога.
func NewService(products domain.ProductRepository, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "catalog-service")
	}
	return &Service{products: products, logger: logger}
}

// CreateProduct добавляет товар в каталог.
func (s *Service) CreateProduct(_ context.Context, name, sku string, priceMinor int64, quantity int32) (domain.Product, error) {
	now := time.Now().UTC()
	product := domain.Product{
		ID:         uuid.NewString(),
		Name:       name,
		SKU:        sku,
		PriceMinor: priceMinor,
		Quantity:   quantity,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if errs := product.ValidateInvariants(); len(errs) > 0 {
		return domain.Product{}, errs[0]
	}

	if err := s.products.Create(product); err != nil {
		s.logger.WithError(err).Error("failed to create product")
		return domain.Product{}, err
	}

	return product, nil
}

// GetProduct возвращает товар по идентификатору.
func (s *Service) GetProduct(_ context.Context, id string) (domain.Product, error) {
	if id == "" {
		return domain.Product{}, &domain.ProductNotFoundError{ProductID: id}
	}
	return s.products.FindByID(id)
}

// ListProducts возвращает товары каталога.
func (s *Service) ListProducts(_ context.Context, limit int) ([]domain.Product, error) {
	return s.products.List(limit)
}

// Restock увеличивает остаток товара.
func (s *Service) Restock(_ context.Context, id string, qty int32) (domain.Product, error) {
	if qty <= 0 {
		return domain.Product{}, domain.ErrItemQtyInvalid
	}
	return s.products.Restock(id, qty)
}
