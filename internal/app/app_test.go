package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vladislavdragonenkov/shoplab/internal/domain"
	"github.com/vladislavdragonenkov/shoplab/internal/health"
)

func memoryProductConfig() ProductConfig {
	cfg := DefaultProductConfig()
	cfg.StorageDriver = StorageDriverMemory
	cfg.HTTPAddr = "127.0.0.1:0"
	cfg.MetricsAddr = "127.0.0.1:0"
	return cfg
}

func memoryOrderConfig(productURL string) OrderConfig {
	cfg := DefaultOrderConfig()
	cfg.StorageDriver = StorageDriverMemory
	cfg.HTTPAddr = "127.0.0.1:0"
	cfg.MetricsAddr = "127.0.0.1:0"
	cfg.ProductServiceURL = productURL
	cfg.ProductServiceTimeout = time.Second
	return cfg
}

func TestProcesses_OrderAgainstProductService(t *testing.T) {
	ctx := context.Background()

	products, err := newProductProcess(ctx, memoryProductConfig(), prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("build product process: %v", err)
	}
	defer products.close()

	productSrv := httptest.NewServer(products.handler)
	defer productSrv.Close()

	orders, err := newOrderProcess(ctx, memoryOrderConfig(productSrv.URL), prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("build order process: %v", err)
	}
	defer orders.close()

	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(`{"customer_name":"Ann","items":[{"product_id":1}]}`))
	rec := httptest.NewRecorder()
	orders.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var order domain.Order
	if err := json.Unmarshal(rec.Body.Bytes(), &order); err != nil {
		t.Fatalf("decode order: %v", err)
	}
	if order.Status != domain.OrderStatusPending || order.CustomerName != "Ann" {
		t.Fatalf("unexpected order: %#v", order)
	}

	resp := orders.health.Run(ctx)
	if resp.Status != health.StatusHealthy {
		t.Fatalf("expected healthy order-service, got %#v", resp)
	}
	if _, ok := resp.Checks["product-service"]; !ok {
		t.Fatal("expected product-service check")
	}
}

func TestOrderProcess_ProductServiceDownIsDegraded(t *testing.T) {
	ctx := context.Background()

	orders, err := newOrderProcess(ctx, memoryOrderConfig("http://127.0.0.1:1"), prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("build order process: %v", err)
	}
	defer orders.close()

	resp := orders.health.Run(ctx)
	if resp.Status != health.StatusDegraded {
		t.Fatalf("expected degraded, got %s", resp.Status)
	}

	rec := httptest.NewRecorder()
	orders.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from /health, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"product-service":"unavailable"`) {
		t.Fatalf("unexpected /health body: %s", rec.Body.String())
	}
}

func TestProductProcess_GRPCHealthEnabled(t *testing.T) {
	cfg := memoryProductConfig()
	cfg.GRPCHealthAddr = "127.0.0.1:0"

	p, err := newProductProcess(context.Background(), cfg, prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("build product process: %v", err)
	}
	defer p.close()

	if p.grpc == nil {
		t.Fatal("expected grpc health server")
	}
	if len(p.background) != 1 {
		t.Fatalf("expected idempotency sweeper only, got %d tasks", len(p.background))
	}
}

func TestRunProductService_GracefulShutdown(t *testing.T) {
	cfg := memoryProductConfig()
	cfg.GRPCHealthAddr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(150 * time.Millisecond)
		cancel()
	}()

	if err := RunProductService(ctx, cfg); err != nil {
		t.Fatalf("expected clean shutdown, got %v", err)
	}
}

func TestRunOrderService_InvalidStorageDriver(t *testing.T) {
	cfg := memoryOrderConfig("http://127.0.0.1:1")
	cfg.StorageDriver = "invalid-driver"

	err := RunOrderService(context.Background(), cfg)
	if err == nil || !strings.Contains(err.Error(), "unsupported storage driver") {
		t.Fatalf("expected unsupported storage driver error, got %v", err)
	}
}

func TestRunProductService_AddressInUse(t *testing.T) {
	port := findFreePort(t)
	cfg := memoryProductConfig()
	cfg.HTTPAddr = "127.0.0.1:" + strconv.Itoa(port)
	cfg.MetricsAddr = ""

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- RunProductService(ctx, cfg) }()
	waitForServer(t, cfg.HTTPAddr)

	if err := RunProductService(ctx, cfg); err == nil {
		t.Fatal("expected listen error for busy address")
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("expected clean shutdown, got %v", err)
	}
}
