// Package productclient — HTTP-клиент order-service к product-service.
package productclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shoplab/internal/domain"
	"github.com/vladislavdragonenkov/shoplab/internal/metrics"
	"github.com/vladislavdragonenkov/shoplab/internal/version"
)

const (
	// DefaultTimeout ограничивает каждый запрос к product-service.
	DefaultTimeout = 3 * time.Second

	maxBodyBytes = 1 << 20
)

// Client реализует domain.ProductCatalog поверх REST API product-service.
// Повторных попыток нет.
type Client struct {
	baseURL    string
	httpClient *http.Client
	metrics    *metrics.CatalogMetrics
	logger     *log.Entry
}

// Option настраивает Client.
type Option func(*Client)

// WithHTTPClient подменяет http.Client (тесты, собственный транспорт).
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.httpClient = c
		}
	}
}

// WithMetrics включает учёт обращений.
func WithMetrics(m *metrics.CatalogMetrics) Option {
	return func(cl *Client) {
		cl.metrics = m
	}
}

// WithLogger задаёт логгер клиента.
func WithLogger(logger *log.Entry) Option {
	return func(cl *Client) {
		if logger != nil {
			cl.logger = logger
		}
	}
}

// New создаёт клиента для baseURL (например, http://product:5000).
// timeout <= 0 заменяется на DefaultTimeout.
func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     log.WithField("component", "product-client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL возвращает адрес product-service.
func (c *Client) BaseURL() string { return c.baseURL }

// GetProduct запрашивает GET /api/products/{id}. Любой статус кроме 200
// превращается в ошибку вида domain.ErrProductNotFound. Сетевые ошибки,
// таймаут и нечитаемое тело дают ошибку вида domain.ErrServiceUnavailable.
func (c *Client) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	started := time.Now()
	product, outcome, err := c.getProduct(ctx, id)
	c.metrics.ObserveLookup(outcome, time.Since(started))
	return product, err
}

func (c *Client) getProduct(ctx context.Context, id int64) (domain.Product, string, error) {
	url := c.baseURL + "/api/products/" + strconv.FormatInt(id, 10)

	resp, err := c.do(ctx, url)
	if err != nil {
		return domain.Product{}, metrics.LookupUnreachable, fmt.Errorf("%w: get product %d: %v", domain.ErrServiceUnavailable, id, err)
	}
	defer drain(resp.Body)

	if resp.StatusCode != http.StatusOK {
		c.logger.WithFields(log.Fields{
			"product_id": id,
			"status":     resp.StatusCode,
		}).Debug("product lookup returned non-200")
		return domain.Product{}, metrics.LookupNotFound, domain.ProductNotFoundError(id)
	}

	var product domain.Product
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&product); err != nil {
		return domain.Product{}, metrics.LookupUnreachable, fmt.Errorf("%w: decode product %d: %v", domain.ErrServiceUnavailable, id, err)
	}

	return product, metrics.LookupFound, nil
}

// Health запрашивает GET /health и ожидает 200.
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.do(ctx, c.baseURL+"/health")
	if err != nil {
		return fmt.Errorf("%w: product-service health: %v", domain.ErrServiceUnavailable, err)
	}
	defer drain(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: product-service health returned %d", domain.ErrServiceUnavailable, resp.StatusCode)
	}
	return nil
}

func (c *Client) do(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent("order-service"))
	return c.httpClient.Do(req)
}

func drain(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, maxBodyBytes))
	_ = body.Close()
}

var _ domain.ProductCatalog = (*Client)(nil)
