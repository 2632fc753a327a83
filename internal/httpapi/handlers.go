package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vladislavdragonenkov/commerce/internal/domain"
	"github.com/vladislavdragonenkov/commerce/internal/service/orders"
)

const (
	defaultListLimit = 100
	timeFormat       = time.RFC3339Nano
)

// Customer handlers
type createCustomerReq struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (s *Server) createCustomer(c *gin.Context) {
	var req createCustomerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	customer, err := s.customers.CreateCustomer(c.Request.Context(), req.Name, req.Email)
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, toCustomerResponse(customer))
}

func (s *Server) getCustomer(c *gin.Context) {
	customer, err := s.customers.GetCustomer(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, toCustomerResponse(customer))
}

// Order handlers
type placeOrderItemReq struct {
	ProductID string `json:"product_id"`
	Qty       int32  `json:"qty"`
}

type placeOrderReq struct {
	CustomerID string              `json:"customer_id"`
	Items      []placeOrderItemReq `json:"items"`
}

func (s *Server) placeOrder(c *gin.Context) {
	var req placeOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	items := make([]orders.RequestedItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, orders.RequestedItem{ProductID: item.ProductID, Qty: item.Qty})
	}

	order, err := s.orders.PlaceOrder(c.Request.Context(), req.CustomerID, items)
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, toOrderResponse(order))
}

func (s *Server) getOrder(c *gin.Context) {
	order, err := s.orders.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order))
}

func (s *Server) listOrders(c *gin.Context) {
	customerID := c.Query("customer_id")
	if customerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "customer_id query parameter is required"})
		return
	}

	list, err := s.orders.ListOrders(c.Request.Context(), customerID, parseLimit(c.Query("limit")))
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}

	responses := make([]orderResponse, 0, len(list))
	for _, order := range list {
		responses = append(responses, toOrderResponse(order))
	}
	c.JSON(http.StatusOK, gin.H{"orders": responses})
}

// Product handlers
type createProductReq struct {
	Name       string `json:"name"`
	SKU        string `json:"sku"`
	PriceMinor int64  `json:"price_minor"`
	Quantity   int32  `json:"quantity"`
}

func (s *Server) createProduct(c *gin.Context) {
	var req createProductReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	product, err := s.catalog.CreateProduct(c.Request.Context(), req.Name, req.SKU, req.PriceMinor, req.Quantity)
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, toProductResponse(product))
}

func (s *Server) getProduct(c *gin.Context) {
	product, err := s.catalog.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, toProductResponse(product))
}

func (s *Server) listProducts(c *gin.Context) {
	list, err := s.catalog.ListProducts(c.Request.Context(), parseLimit(c.Query("limit")))
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}

	responses := make([]productResponse, 0, len(list))
	for _, product := range list {
		responses = append(responses, toProductResponse(product))
	}
	c.JSON(http.StatusOK, gin.H{"products": responses})
}

type restockReq struct {
	Qty int32 `json:"qty"`
}

func (s *Server) restockProduct(c *gin.Context) {
	var req restockReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	product, err := s.catalog.Restock(c.Request.Context(), c.Param("id"), req.Qty)
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, toProductResponse(product))
}

func parseLimit(raw string) int {
	if raw == "" {
		return defaultListLimit
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return defaultListLimit
	}
	return limit
}

// Response DTOs
type customerResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}

type orderItemResponse struct {
	ID         string `json:"id"`
	ProductID  string `json:"product_id"`
	Qty        int32  `json:"qty"`
	PriceMinor int64  `json:"price_minor"`
}

type orderResponse struct {
	ID          string              `json:"id"`
	CustomerID  string              `json:"customer_id"`
	AmountMinor int64               `json:"amount_minor"`
	Items       []orderItemResponse `json:"items"`
	CreatedAt   string              `json:"created_at"`
}

type productResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	SKU        string `json:"sku,omitempty"`
	PriceMinor int64  `json:"price_minor"`
	Quantity   int32  `json:"quantity"`
	CreatedAt  string `json:"created_at"`
}

func toCustomerResponse(customer domain.Customer) customerResponse {
	return customerResponse{
		ID:        customer.ID,
		Name:      customer.Name,
		Email:     customer.Email,
		CreatedAt: customer.CreatedAt.Format(timeFormat),
	}
}

func toOrderResponse(order domain.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemResponse{
			ID:         item.ID,
			ProductID:  item.ProductID,
			Qty:        item.Qty,
			PriceMinor: item.PriceMinor,
		})
	}
	return orderResponse{
		ID:          order.ID,
		CustomerID:  order.CustomerID,
		AmountMinor: order.AmountMinor,
		Items:       items,
		CreatedAt:   order.CreatedAt.Format(timeFormat),
	}
}

func toProductResponse(product domain.Product) productResponse {
	return productResponse{
		ID:         product.ID,
		Name:       product.Name,
		SKU:        product.SKU,
		PriceMinor: product.PriceMinor,
		Quantity:   product.Quantity,
		CreatedAt:  product.CreatedAt.Format(timeFormat),
	}
}
