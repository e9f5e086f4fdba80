package httpapi_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/shoplab/internal/domain"
	"github.com/vladislavdragonenkov/shoplab/internal/httpapi"
	"github.com/vladislavdragonenkov/shoplab/internal/service/catalog"
	"github.com/vladislavdragonenkov/shoplab/internal/storage/memory"
)

func quietLogger() *logrus.Entry {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(logger)
}

func newProductRouter(t *testing.T, opts ...httpapi.RouterOption) http.Handler {
	t.Helper()
	svc := catalog.NewService(memory.NewProductRepository(domain.DefaultProducts()...), catalog.WithLogger(quietLogger()))
	return httpapi.NewProductRouter(svc, append([]httpapi.RouterOption{httpapi.WithLogger(quietLogger())}, opts...)...)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, rec)["error"]
}

func TestProducts_ListSeeded(t *testing.T) {
	h := newProductRouter(t)

	rec := do(t, h, http.MethodGet, "/api/products", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	products := decode[[]domain.Product](t, rec)
	require.Len(t, products, 3)
	require.Equal(t, "Laptop", products[0].Name)
	require.Equal(t, 999.99, products[0].Price)
}

func TestProducts_CreateAssignsNextID(t *testing.T) {
	h := newProductRouter(t)

	rec := do(t, h, http.MethodPost, "/api/products", `{"name":"Tablet","price":299.99}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.JSONEq(t, `{"id":4,"name":"Tablet","price":299.99,"available":true}`, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/api/products", `{"name":"Mouse"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.JSONEq(t, `{"id":5,"name":"Mouse","price":0,"available":true}`, rec.Body.String())
}

func TestProducts_CreateInvalid(t *testing.T) {
	h := newProductRouter(t)

	for name, body := range map[string]string{
		"no name":     `{"price":1}`,
		"null name":   `{"name":null}`,
		"empty":       `{}`,
		"not json":    `name=Tablet`,
		"array":       `[{"name":"Tablet"}]`,
		"wrong types": `{"name":"Tablet","price":"cheap"}`,
	} {
		t.Run(name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/products", body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			require.Equal(t, "Invalid product data", errorMessage(t, rec))
		})
	}
}

func TestProducts_UpdateMergesFields(t *testing.T) {
	h := newProductRouter(t)

	rec := do(t, h, http.MethodPut, "/api/products/2", `{"available":false}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"id":2,"name":"Smartphone","price":499.99,"available":false}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/products/2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.False(t, decode[domain.Product](t, rec).Available)
}

func TestProducts_UpdateErrors(t *testing.T) {
	h := newProductRouter(t)

	rec := do(t, h, http.MethodPut, "/api/products/2", `{}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPut, "/api/products/42", `{"name":"Ghost"}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "Product not found", errorMessage(t, rec))
}

func TestProducts_NonIntegerIDIsNotFound(t *testing.T) {
	h := newProductRouter(t)

	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		rec := do(t, h, method, "/api/products/abc", "")
		require.Equal(t, http.StatusNotFound, rec.Code, method)
	}
}

func TestProducts_DeleteAndNoReuse(t *testing.T) {
	h := newProductRouter(t)

	rec := do(t, h, http.MethodDelete, "/api/products/3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"message":"Product 3 deleted successfully"}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/products/3", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/products", `{"name":"Tablet"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.EqualValues(t, 4, decode[domain.Product](t, rec).ID)
}

func TestProducts_DeleteMissingKeepsCollection(t *testing.T) {
	h := newProductRouter(t)

	rec := do(t, h, http.MethodDelete, "/api/products/9999", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/products", "")
	require.Len(t, decode[[]domain.Product](t, rec), 3)
}

func TestProducts_Health(t *testing.T) {
	h := newProductRouter(t)

	rec := do(t, h, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"healthy","service":"product-service"}`, rec.Body.String())
}

func TestRouter_RequestID(t *testing.T) {
	h := newProductRouter(t)

	rec := do(t, h, http.MethodGet, "/health", "")
	require.NotEmpty(t, rec.Header().Get(httpapi.HeaderRequestID))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(httpapi.HeaderRequestID, "req-1")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, "req-1", rec.Header().Get(httpapi.HeaderRequestID))
}
