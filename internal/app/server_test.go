package app

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shoplab/internal/health"
)

func TestStartMetricsServer_Endpoints(t *testing.T) {
	logger := log.WithField("test", "http")
	port := findFreePort(t)
	addr := fmt.Sprintf("127.0.0.1:%d", port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := startMetricsServer(ctx, addr, logger, health.NewHandler("product-service", "test"), prometheus.NewRegistry())
	if srv == nil {
		t.Fatal("startMetricsServer should not return nil")
	}
	waitForServer(t, addr)

	for path, want := range map[string]int{
		"/metrics": http.StatusOK,
		"/healthz": http.StatusOK,
		"/livez":   http.StatusOK,
		"/readyz":  http.StatusOK,
	} {
		resp, err := http.Get("http://" + addr + path)
		if err != nil {
			t.Fatalf("failed to get %s: %v", path, err)
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		if resp.StatusCode != want {
			t.Errorf("expected status %d for %s, got %d", want, path, resp.StatusCode)
		}
	}
}

func TestStartMetricsServer_EmptyAddr(t *testing.T) {
	srv := startMetricsServer(context.Background(), "", log.WithField("test", "http"), health.NewHandler("x", "test"), nil)
	if srv != nil {
		t.Fatal("expected no server for empty addr")
	}
}

func TestStartMetricsServer_Shutdown(t *testing.T) {
	port := findFreePort(t)
	addr := fmt.Sprintf("127.0.0.1:%d", port)

	ctx, cancel := context.WithCancel(context.Background())
	startMetricsServer(ctx, addr, log.WithField("test", "http-shutdown"), health.NewHandler("x", "test"), prometheus.NewRegistry())
	waitForServer(t, addr)

	cancel()
	time.Sleep(200 * time.Millisecond)

	if _, err := http.Get("http://" + addr + "/livez"); err == nil {
		t.Error("server should be stopped after context cancellation")
	}
}

func TestShutdownHTTP_Nil(t *testing.T) {
	// Не должно паниковать.
	shutdownHTTP(nil, log.WithField("test", "http"))
}

func TestProcess_CloseRunsInReverseOrder(t *testing.T) {
	var order []int
	p := &process{}
	p.addCloser(func() { order = append(order, 1) })
	p.addCloser(func() { order = append(order, 2) })

	p.close()

	if len(order) != 2 || order[0] != 2 || order[1] != 1 {
		t.Fatalf("unexpected close order: %v", order)
	}
}

// findFreePort находит свободный порт для тестов
func findFreePort(t *testing.T) int {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to find free port: %v", err)
	}
	defer listener.Close()

	return listener.Addr().(*net.TCPAddr).Port
}

func waitForServer(t *testing.T, addr string) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("tcp", addr, 100*time.Millisecond)
		if err == nil {
			_ = conn.Close()
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("server %s did not start", addr)
}
