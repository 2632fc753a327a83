package httpapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/commerce/internal/domain"
	"github.com/vladislavdragonenkov/commerce/internal/httpapi"
	"github.com/vladislavdragonenkov/commerce/internal/idempotency"
	"github.com/vladislavdragonenkov/commerce/internal/service/catalog"
	"github.com/vladislavdragonenkov/commerce/internal/service/customers"
	"github.com/vladislavdragonenkov/commerce/internal/service/orders"
	"github.com/vladislavdragonenkov/commerce/internal/storage/memory"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	server   *httpapi.Server
	products domain.ProductRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	customerRepo := memory.NewCustomerRepository()
	productRepo := memory.NewProductRepository()
	orderRepo := memory.NewOrderRepository()
	outboxRepo := memory.NewOutboxRepository()

	now := time.Now().UTC()
	require.NoError(t, customerRepo.Create(domain.Customer{ID: "c-1", Name: "Ivan", Email: "ivan@example.com", CreatedAt: now}))
	require.NoError(t, productRepo.Create(domain.Product{ID: "p-1", Name: "Widget", PriceMinor: 1000, Quantity: 5, CreatedAt: now, UpdatedAt: now}))

	orderSvc := orders.NewServiceWithoutMetrics(customerRepo, productRepo, orderRepo, outboxRepo, nil)
	customerSvc := customers.NewServiceWithoutMetrics(customerRepo, outboxRepo, nil)
	catalogSvc := catalog.NewService(productRepo, nil)

	server := httpapi.NewServer(orderSvc, customerSvc, catalogSvc, idempotency.NewMemoryStore(time.Minute), nil)
	return &testEnv{server: server, products: productRepo}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	e.server.Engine().ServeHTTP(rec, req)
	return rec
}

func TestCreateCustomerEndpoint(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/customers", gin.H{"name": "Anna", "email": "anna@example.com"}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.ID)
	require.Equal(t, "Anna", resp.Name)

	rec = env.do(t, http.MethodGet, "/api/v1/customers/"+resp.ID, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateCustomerEndpoint_Validation(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/customers", gin.H{"name": "", "email": "a@b.c"}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlaceOrderEndpoint(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/orders", gin.H{
		"customer_id": "c-1",
		"items":       []gin.H{{"product_id": "p-1", "qty": 3}},
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		ID          string `json:"id"`
		AmountMinor int64  `json:"amount_minor"`
		Items       []struct {
			ProductID  string `json:"product_id"`
			Qty        int32  `json:"qty"`
			PriceMinor int64  `json:"price_minor"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.ID)
	require.Equal(t, int64(3000), resp.AmountMinor)
	require.Len(t, resp.Items, 1)
	require.Equal(t, int64(1000), resp.Items[0].PriceMinor)

	product, err := env.products.FindByID("p-1")
	require.NoError(t, err)
	require.Equal(t, int32(2), product.Quantity)

	rec = env.do(t, http.MethodGet, "/api/v1/orders/"+resp.ID, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestPlaceOrderEndpoint_Errors(t *testing.T) {
	env := newTestEnv(t)

	// Неизвестный клиент.
	rec := env.do(t, http.MethodPost, "/api/v1/orders", gin.H{
		"customer_id": "missing",
		"items":       []gin.H{{"product_id": "p-1", "qty": 1}},
	}, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	// Нехватка остатка.
	rec = env.do(t, http.MethodPost, "/api/v1/orders", gin.H{
		"customer_id": "c-1",
		"items":       []gin.H{{"product_id": "p-1", "qty": 6}},
	}, nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var errResp struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	require.Equal(t, "the quantity of 6 is not available for the product p-1", errResp.Error)

	// Пустой запрос.
	rec = env.do(t, http.MethodPost, "/api/v1/orders", gin.H{"customer_id": "c-1", "items": []gin.H{}}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListOrdersEndpoint_RequiresCustomerID(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/orders", nil, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/orders?customer_id=c-1", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestProductEndpoints(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/products", gin.H{
		"name": "Gadget", "sku": "sku-2", "price_minor": 250, "quantity": 10,
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = env.do(t, http.MethodGet, "/api/v1/products/"+created.ID, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/products/"+created.ID+"/restock", gin.H{"qty": 5}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var restocked struct {
		Quantity int32 `json:"quantity"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &restocked))
	require.Equal(t, int32(15), restocked.Quantity)

	rec = env.do(t, http.MethodGet, "/api/v1/products", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestPlaceOrderEndpoint_IdempotencyReplay(t *testing.T) {
	env := newTestEnv(t)
	body := gin.H{
		"customer_id": "c-1",
		"items":       []gin.H{{"product_id": "p-1", "qty": 2}},
	}
	headers := map[string]string{"Idempotency-Key": "req-1"}

	first := env.do(t, http.MethodPost, "/api/v1/orders", body, headers)
	require.Equal(t, http.StatusCreated, first.Code)

	second := env.do(t, http.MethodPost, "/api/v1/orders", body, headers)
	require.Equal(t, http.StatusCreated, second.Code)
	require.Equal(t, "true", second.Header().Get("Idempotency-Replayed"))
	require.Equal(t, first.Body.String(), second.Body.String())

	// Повтор не списал остаток второй раз.
	product, err := env.products.FindByID("p-1")
	require.NoError(t, err)
	require.Equal(t, int32(3), product.Quantity)
}

func TestPlaceOrderEndpoint_WithoutIdempotencyKey(t *testing.T) {
	env := newTestEnv(t)
	body := gin.H{
		"customer_id": "c-1",
		"items":       []gin.H{{"product_id": "p-1", "qty": 2}},
	}

	first := env.do(t, http.MethodPost, "/api/v1/orders", body, nil)
	require.Equal(t, http.StatusCreated, first.Code)

	// Без ключа каждый запрос оформляет отдельный заказ.
	second := env.do(t, http.MethodPost, "/api/v1/orders", body, nil)
	require.Equal(t, http.StatusCreated, second.Code)
	require.Empty(t, second.Header().Get("Idempotency-Replayed"))

	product, err := env.products.FindByID("p-1")
	require.NoError(t, err)
	require.Equal(t, int32(1), product.Quantity)
}
