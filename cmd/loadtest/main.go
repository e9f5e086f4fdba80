// Команда loadtest нагружает HTTP API order-service сценариями заказов.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const idempotencyHeader = "Idempotency-Key"

type loadMode string

const (
	modeCreate             loadMode = "create"
	modeCreateGet          loadMode = "create-get"
	modeCreateUpdateDelete loadMode = "create-update-delete"
)

type config struct {
	baseURL      string
	total        int
	totalSet     bool
	duration     time.Duration
	concurrency  int
	timeout      time.Duration
	mode         loadMode
	productIDs   []int64
	customerTag  string
	outputPath   string
	idempotent   bool
	updateStatus string
}

func parseConfig(args []string) (config, error) {
	var cfg config
	var modeValue, productsValue string

	fs := flag.NewFlagSet("loadtest", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&cfg.baseURL, "url", "http://localhost:5001", "order-service base URL")
	fs.IntVar(&cfg.total, "total", 400, "total scenarios to execute in count mode; in duration mode only used when explicitly set")
	fs.DurationVar(&cfg.duration, "duration", 0, "optional time-based run duration (e.g. 1m)")
	fs.IntVar(&cfg.concurrency, "concurrency", 20, "number of concurrent workers")
	fs.DurationVar(&cfg.timeout, "timeout", 5*time.Second, "per-request timeout")
	fs.StringVar(&modeValue, "mode", string(modeCreate), "load mode: create | create-get | create-update-delete")
	fs.StringVar(&productsValue, "products", "1,2,3", "comma-separated product ids placed into each order")
	fs.StringVar(&cfg.customerTag, "customer-tag", "load", "customer name prefix")
	fs.StringVar(&cfg.outputPath, "output", "", "optional JSON report output file path")
	fs.BoolVar(&cfg.idempotent, "idempotency", true, "send Idempotency-Key with every create")
	fs.StringVar(&cfg.updateStatus, "update-status", "shipped", "status written in create-update-delete mode")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "total" {
			cfg.totalSet = true
		}
	})

	mode, err := parseMode(modeValue)
	if err != nil {
		return cfg, err
	}
	cfg.mode = mode

	ids, err := parseProductIDs(productsValue)
	if err != nil {
		return cfg, err
	}
	cfg.productIDs = ids

	cfg.baseURL = strings.TrimRight(strings.TrimSpace(cfg.baseURL), "/")
	switch {
	case cfg.baseURL == "":
		return cfg, errors.New("url is required")
	case cfg.duration < 0:
		return cfg, errors.New("duration must be >= 0")
	case cfg.duration == 0 && cfg.total <= 0:
		return cfg, errors.New("total must be > 0 when duration is not set")
	case cfg.duration > 0 && cfg.totalSet && cfg.total <= 0:
		return cfg, errors.New("total must be > 0 when explicitly set with duration")
	case cfg.concurrency <= 0:
		return cfg, errors.New("concurrency must be > 0")
	case cfg.timeout <= 0:
		return cfg, errors.New("timeout must be > 0")
	case strings.TrimSpace(cfg.customerTag) == "":
		return cfg, errors.New("customer-tag is required")
	case cfg.mode == modeCreateUpdateDelete && strings.TrimSpace(cfg.updateStatus) == "":
		return cfg, errors.New("update-status is required")
	}

	return cfg, nil
}

func parseMode(value string) (loadMode, error) {
	switch loadMode(strings.TrimSpace(value)) {
	case modeCreate:
		return modeCreate, nil
	case modeCreateGet:
		return modeCreateGet, nil
	case modeCreateUpdateDelete:
		return modeCreateUpdateDelete, nil
	default:
		return "", fmt.Errorf("unsupported mode: %s", value)
	}
}

func parseProductIDs(value string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid product id %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, errors.New("at least one product id is required")
	}
	return ids, nil
}

func main() {
	cfg, err := parseConfig(os.Args[1:])
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result := run(ctx, cfg, &http.Client{})
	printReport(os.Stdout, result, cfg)
	if cfg.outputPath != "" {
		if err := writeJSONReport(cfg.outputPath, result); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "failed to write report: %v\n", err)
			os.Exit(1)
		}
	}

	if result.FailedScenarios > 0 {
		os.Exit(1)
	}
}

// run гоняет сценарии пулом воркеров и собирает отчёт.
func run(ctx context.Context, cfg config, httpClient *http.Client) report {
	startedAt := time.Now()
	runID := fmt.Sprintf("%d-%d", startedAt.UnixNano(), os.Getpid())
	col := newCollector()
	client := &orderClient{http: httpClient, baseURL: cfg.baseURL, timeout: cfg.timeout, col: col}

	jobs := make(chan int, cfg.concurrency*2)
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < cfg.concurrency; i++ {
		g.Go(func() error {
			for index := range jobs {
				_ = runScenario(gctx, client, cfg, index, runID)
			}
			return nil
		})
	}

	dispatchJobs(ctx, jobs, cfg)
	_ = g.Wait()

	return col.buildReport(startedAt, time.Since(startedAt))
}

func dispatchJobs(ctx context.Context, jobs chan<- int, cfg config) {
	defer close(jobs)

	var deadline <-chan time.Time
	if cfg.duration > 0 {
		timer := time.NewTimer(cfg.duration)
		defer timer.Stop()
		deadline = timer.C
	}

	for i := 0; ; i++ {
		if (cfg.duration <= 0 || cfg.totalSet) && i >= cfg.total {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-deadline:
			return
		case jobs <- i:
		}
	}
}

func runScenario(ctx context.Context, client *orderClient, cfg config, index int, runID string) (err error) {
	start := time.Now()
	defer func() {
		client.col.record(scenarioMetric, time.Since(start), scenarioStatus(err), err == nil)
	}()

	key := ""
	if cfg.idempotent {
		key = uuid.NewString()
	}
	customer := fmt.Sprintf("%s-%s-%d", cfg.customerTag, runID, index)

	id, err := client.createOrder(ctx, customer, cfg.productIDs, key)
	if err != nil {
		return err
	}

	switch cfg.mode {
	case modeCreateGet:
		return client.getOrder(ctx, id)
	case modeCreateUpdateDelete:
		if err := client.updateStatus(ctx, id, cfg.updateStatus); err != nil {
			return err
		}
		return client.deleteOrder(ctx, id)
	}
	return nil
}

// statusError хранит неожиданный HTTP-статус ответа.
type statusError struct {
	call   string
	status int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d", e.call, e.status)
}

func scenarioStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var se *statusError
	if errors.As(err, &se) {
		return se.status
	}
	return 0
}

type orderClient struct {
	http    *http.Client
	baseURL string
	timeout time.Duration
	col     *collector
}

func (c *orderClient) createOrder(ctx context.Context, customer string, productIDs []int64, key string) (int64, error) {
	items := make([]map[string]int64, 0, len(productIDs))
	for _, id := range productIDs {
		items = append(items, map[string]int64{"product_id": id})
	}
	payload := map[string]any{"customer_name": customer, "items": items}

	headers := map[string]string{}
	if key != "" {
		headers[idempotencyHeader] = key
	}

	body, err := c.do(ctx, "CreateOrder", http.MethodPost, "/api/orders", payload, headers, http.StatusCreated)
	if err != nil {
		return 0, err
	}

	var created struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		return 0, fmt.Errorf("decode created order: %w", err)
	}
	if created.ID <= 0 {
		return 0, errors.New("create response returned empty order id")
	}
	return created.ID, nil
}

func (c *orderClient) getOrder(ctx context.Context, id int64) error {
	_, err := c.do(ctx, "GetOrder", http.MethodGet, orderPath(id), nil, nil, http.StatusOK)
	return err
}

func (c *orderClient) updateStatus(ctx context.Context, id int64, status string) error {
	_, err := c.do(ctx, "UpdateOrder", http.MethodPut, orderPath(id), map[string]string{"status": status}, nil, http.StatusOK)
	return err
}

func (c *orderClient) deleteOrder(ctx context.Context, id int64) error {
	_, err := c.do(ctx, "DeleteOrder", http.MethodDelete, orderPath(id), nil, nil, http.StatusOK)
	return err
}

func orderPath(id int64) string {
	return "/api/orders/" + strconv.FormatInt(id, 10)
}

// do выполняет запрос и записывает его в коллектор.
func (c *orderClient) do(ctx context.Context, call, method, path string, payload any, headers map[string]string, want int) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for name, value := range headers {
		req.Header.Set(name, value)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.col.record(call, time.Since(start), 0, false)
		return nil, fmt.Errorf("%s: %w", call, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	c.col.record(call, time.Since(start), resp.StatusCode, err == nil && resp.StatusCode == want)
	if err != nil {
		return nil, fmt.Errorf("%s: read body: %w", call, err)
	}
	if resp.StatusCode != want {
		return nil, &statusError{call: call, status: resp.StatusCode}
	}
	return body, nil
}
