package remote

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/YES-Tech-Computer-Service-Ltd/WooAutoPrinter-sub017/internal/domain"
	"github.com/YES-Tech-Computer-Service-Ltd/WooAutoPrinter-sub017/pkg/cache"
	"github.com/YES-Tech-Computer-Service-Ltd/WooAutoPrinter-sub017/pkg/logger"
)

// Client talks to the remote order API (WooCommerce REST shape) and
// returns domain orders. It implements domain.OrderAPI.
type Client struct {
	http     *http.Client
	settings domain.Settings

	// Single-order GETs are cached briefly so detail lookups that race
	// with list refreshes do not hammer the remote.
	cache    cache.CacheService
	cacheTTL time.Duration
}

func NewClient(settings domain.Settings, c cache.CacheService, cacheTTL time.Duration) *Client {
	return &Client{
		http:     &http.Client{},
		settings: settings,
		cache:    c,
		cacheTTL: cacheTTL,
	}
}

func (c *Client) ListOrders(ctx context.Context, page, perPage int, status string) ([]domain.Order, error) {
	if status != "" && status != domain.OrderStatusAny && !domain.IsCanonicalStatus(status) {
		return nil, domain.NewAPIRejection(0, "invalid_status", fmt.Sprintf("status %q is not a valid api status", status))
	}

	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("per_page", strconv.Itoa(perPage))
	if status != "" {
		params.Set("status", status)
	}

	var wire []WireOrder
	if err := c.do(ctx, http.MethodGet, "/orders", params, nil, &wire); err != nil {
		return nil, err
	}

	orders := make([]domain.Order, len(wire))
	for i := range wire {
		orders[i] = wire[i].ToDomain()
	}
	return orders, nil
}

func (c *Client) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	key := orderCacheKey(id)
	if cached, ok := c.cache.Get(key); ok {
		if o, ok := cached.(domain.Order); ok {
			copied := o
			return &copied, nil
		}
	}

	var wire WireOrder
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/orders/%d", id), nil, nil, &wire); err != nil {
		return nil, err
	}

	order := wire.ToDomain()
	c.cache.Set(key, order, c.cacheTTL)
	return &order, nil
}

func (c *Client) UpdateOrder(ctx context.Context, id int64, fields map[string]any) (*domain.Order, error) {
	body, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encode update fields: %w", err)
	}

	var wire WireOrder
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/orders/%d", id), nil, body, &wire); err != nil {
		return nil, err
	}

	order := wire.ToDomain()
	c.cache.Set(orderCacheKey(id), order, c.cacheTTL)
	return &order, nil
}

// wireError is the structured error body the remote returns alongside
// non-2xx statuses.
type wireError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, body []byte, out any) error {
	cfg, err := c.settings.APIConfig(ctx)
	if err != nil {
		return fmt.Errorf("load api config: %w", err)
	}
	if !cfg.IsValid() {
		return domain.ErrConfigInvalid
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("consumer_key", cfg.ConsumerKey)
	params.Set("consumer_secret", cfg.ConsumerSecret)

	reqURL := cfg.BaseURL + path + "?" + params.Encode()
	requestID := uuid.New().String()[:8]

	reqCtx := ctx
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(reqCtx, method, reqURL, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		logger.Error().Err(err).Str("request_id", requestID).Str("method", method).Str("path", path).Msg("remote api transport failure")
		return domain.NewAPIUnavailable(err)
	}
	defer resp.Body.Close()

	logger.Debug().
		Str("request_id", requestID).
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration_ms", time.Since(start)).
		Msg("remote api call")

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.NewAPIUnavailable(err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return domain.ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var we wireError
		if jsonErr := json.Unmarshal(raw, &we); jsonErr == nil && we.Message != "" {
			return domain.NewAPIRejection(resp.StatusCode, we.Code, we.Message)
		}
		if resp.StatusCode >= 500 {
			return &domain.APIError{Kind: domain.ErrRemoteUnavailable, StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return domain.NewAPIRejection(resp.StatusCode, "", http.StatusText(resp.StatusCode))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return domain.NewAPIUnavailable(fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func orderCacheKey(id int64) string {
	return "remote:order:" + strconv.FormatInt(id, 10)
}
