package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/commerce/internal/domain"
	"github.com/vladislavdragonenkov/commerce/internal/idempotency"
	"github.com/vladislavdragonenkov/commerce/internal/service/catalog"
	"github.com/vladislavdragonenkov/commerce/internal/service/customers"
	"github.com/vladislavdragonenkov/commerce/internal/service/orders"
)

// Server — HTTP-поверхность сервиса: REST API поверх gin.
type Server struct {
	engine    *gin.Engine
	orders    *orders.Service
	customers *customers.Service
	catalog   *catalog.Service
	idem      idempotency.Store
	logger    *log.Entry
}

// NewServer создаёт HTTP-сервер и регистрирует маршруты.
func NewServer(
	orderSvc *orders.Service,
	customerSvc *customers.Service,
	catalogSvc *catalog.Service,
	idem idempotency.Store,
	logger *log.Entry,
) *Server {
	if logger == nil {
		logger = log.New().WithField("component", "httpapi")
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	s := &Server{
		engine:    r,
		orders:    orderSvc,
		customers: customerSvc,
		catalog:   catalogSvc,
		idem:      idem,
		logger:    logger,
	}
	s.registerRoutes()
	return s
}

// Engine возвращает gin engine (для httptest).
func (s *Server) Engine() *gin.Engine { return s.engine }

func (s *Server) registerRoutes() {
	v1 := s.engine.Group("/api/v1")
	{
		customers := v1.Group("/customers")
		customers.POST("", s.createCustomer)
		customers.GET(":id", s.getCustomer)

		orders := v1.Group("/orders")
		orders.POST("", s.withIdempotency(s.placeOrder))
		orders.GET(":id", s.getOrder)
		orders.GET("", s.listOrders)

		products := v1.Group("/products")
		products.POST("", s.createProduct)
		products.GET(":id", s.getProduct)
		products.GET("", s.listProducts)
		products.POST(":id/restock", s.restockProduct)
	}
}

func mapErrorToStatus(err error) int {
	switch {
	case domain.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict
	case domain.IsInsufficientStock(err):
		return http.StatusUnprocessableEntity
	case domain.IsValidation(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
