package customers

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/commerce/internal/domain"
	"github.com/vladislavdragonenkov/commerce/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/commerce/internal/metrics"
)

// Service — тонкий сервис клиентов: создание это прямой insert без
// бизнес-логики, никакой проверки уникальности здесь нет.
type Service struct {
	customers domain.CustomerRepository
	outbox    domain.OutboxRepository
	logger    *log.Entry
	metrics   *metrics.OrderMetrics
}

// NewService создаёт сервис клиентов.
func NewService(customers domain.CustomerRepository, outbox domain.OutboxRepository, logger *log.Entry) *Service {
	svc := newService(customers, outbox, logger)
	svc.metrics = metrics.NewOrderMetrics()
	return svc
}

// NewServiceWithoutMetrics создаёт сервис без метрик (для тестов).
func NewServiceWithoutMetrics(customers domain.CustomerRepository, outbox domain.OutboxRepository, logger *log.Entry) *Service {
	return newService(customers, outbox, logger)
}

func newService(customers domain.CustomerRepository, outbox domain.OutboxRepository, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "customer-service")
	}
	return &Service{
		customers: customers,
		outbox:    outbox,
		logger:    logger,
	}
}

// CreateCustomer регистрирует нового клиента.
func (s *Service) CreateCustomer(_ context.Context, name, email string) (domain.Customer, error) {
	customer := domain.Customer{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}

	if errs := customer.ValidateInvariants(); len(errs) > 0 {
		return domain.Customer{}, errs[0]
	}

	if err := s.customers.Create(customer); err != nil {
		s.logger.WithError(err).Error("failed to create customer")
		return domain.Customer{}, err
	}

	s.enqueueCustomerCreated(customer)
	if s.metrics != nil {
		s.metrics.RecordCustomerCreated()
	}

	return customer, nil
}

// GetCustomer возвращает клиента по идентификатору.
func (s *Service) GetCustomer(_ context.Context, id string) (domain.Customer, error) {
	if id == "" {
		return domain.Customer{}, domain.ErrCustomerNotFound
	}
	return s.customers.FindByID(id)
}

func (s *Service) enqueueCustomerCreated(customer domain.Customer) {
	if s.outbox == nil {
		return
	}

	payload, err := json.Marshal(kafka.CustomerCreatedEvent{
		CustomerID: customer.ID,
		Name:       customer.Name,
		Email:      customer.Email,
		CreatedAt:  customer.CreatedAt,
	})
	if err != nil {
		s.logger.WithError(err).WithField("customer_id", customer.ID).Warn("failed to marshal customer created event")
		return
	}

	if _, err := s.outbox.Enqueue(domain.OutboxMessage{
		AggregateType: kafka.AggregateCustomer,
		AggregateID:   customer.ID,
		EventType:     string(kafka.EventTypeCustomerCreated),
		Payload:       payload,
	}); err != nil {
		s.logger.WithError(err).WithField("customer_id", customer.ID).Warn("failed to enqueue customer created event")
	}
}
