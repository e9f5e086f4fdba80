package productclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/shoplab/internal/domain"
	"github.com/vladislavdragonenkov/shoplab/internal/metrics"
)

func newCatalogServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/products/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.PathValue("id") {
		case "1":
			fmt.Fprint(w, `{"id":1,"name":"Laptop","price":999.99,"available":true}`)
		case "5":
			fmt.Fprint(w, `{"id":5,"name":"Tablet","price":299.99,"available":false}`)
		case "7":
			fmt.Fprint(w, `{"id":7,"name":`)
		case "8":
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"error":"internal error"}`)
		default:
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"error":"Product not found"}`)
		}
	})
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"status":"healthy","service":"product-service"}`)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_GetProduct(t *testing.T) {
	srv := newCatalogServer(t)
	client := New(srv.URL+"/", time.Second, WithMetrics(metrics.NewCatalogMetricsWithRegisterer(prometheus.NewRegistry())))

	product, err := client.GetProduct(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, domain.Product{ID: 1, Name: "Laptop", Price: 999.99, Available: true}, product)

	product, err = client.GetProduct(context.Background(), 5)
	require.NoError(t, err)
	require.False(t, product.Available)
}

func TestClient_GetProduct_NonOKIsNotFound(t *testing.T) {
	srv := newCatalogServer(t)
	client := New(srv.URL, time.Second)

	for _, id := range []int64{999, 8} {
		_, err := client.GetProduct(context.Background(), id)
		require.ErrorIs(t, err, domain.ErrProductNotFound)
		require.EqualError(t, err, fmt.Sprintf("Product with ID %d not found", id))
	}
}

func TestClient_GetProduct_BadBodyIsUnavailable(t *testing.T) {
	srv := newCatalogServer(t)
	client := New(srv.URL, time.Second)

	_, err := client.GetProduct(context.Background(), 7)
	require.ErrorIs(t, err, domain.ErrServiceUnavailable)
}

func TestClient_GetProduct_ConnectionRefused(t *testing.T) {
	srv := newCatalogServer(t)
	url := srv.URL
	srv.Close()

	client := New(url, time.Second)
	_, err := client.GetProduct(context.Background(), 1)
	require.ErrorIs(t, err, domain.ErrServiceUnavailable)
	require.False(t, errors.Is(err, domain.ErrProductNotFound))
}

func TestClient_GetProduct_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	client := New(srv.URL, 50*time.Millisecond)
	started := time.Now()
	_, err := client.GetProduct(context.Background(), 1)
	require.ErrorIs(t, err, domain.ErrServiceUnavailable)
	require.Less(t, time.Since(started), 2*time.Second)
}

func TestClient_Health(t *testing.T) {
	srv := newCatalogServer(t)
	require.NoError(t, New(srv.URL, time.Second).Health(context.Background()))

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(down.Close)
	require.ErrorIs(t, New(down.URL, time.Second).Health(context.Background()), domain.ErrServiceUnavailable)
}

func TestNew_DefaultTimeout(t *testing.T) {
	client := New("http://product:5000", 0)
	require.Equal(t, DefaultTimeout, client.httpClient.Timeout)
	require.Equal(t, "http://product:5000", client.BaseURL())
}
