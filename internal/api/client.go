package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"gitlab.ozon.dev/pupkingeorgij/orderdash/internal/metrics"
)

const (
	staffPath         = "/is-user-staff/"
	ordersPath        = "/orders/"
	orderLinesPath    = "/order-lines/"
	ordersPerDayPath  = "/orders-per-day/"
	mostBoughtPath    = "/most-bought-products/"
	csrfHeader        = "X-CSRFToken"
	sessionCookieName = "sessionid"
	csrfCookieName    = "csrftoken"
	defaultTimeout    = 10 * time.Second
)

type Options struct {
	BaseURL    string
	Timeout    time.Duration
	SessionID  string
	CSRFToken  string
	HTTPClient *http.Client
}

// Client talks to the order API. Session credentials are forwarded as-is;
// the client does not authenticate on its own.
type Client struct {
	baseURL    string
	httpClient *http.Client
	sessionID  string
	csrfToken  string
	logger     *zap.Logger
	orders     singleflight.Group
}

func New(opts Options, logger *zap.Logger) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: httpClient,
		sessionID:  opts.SessionID,
		csrfToken:  opts.CSRFToken,
		logger:     logger,
	}
}

func (c *Client) IsUserStaff(ctx context.Context) (bool, error) {
	var resp staffResponse
	if err := c.do(ctx, http.MethodGet, staffPath, "is_user_staff", nil, &resp); err != nil {
		return false, err
	}
	return resp.IsStaff, nil
}

// ListOrders fetches one page of orders. rawQuery is an already encoded query
// string without the leading '?'.
func (c *Client) ListOrders(ctx context.Context, rawQuery string) (*OrderListPage, error) {
	path := ordersPath
	if rawQuery != "" {
		path += "?" + rawQuery
	}

	var page OrderListPage
	if err := c.do(ctx, http.MethodGet, path, "list_orders", nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetOrder fetches a single order. Concurrent calls for the same id share one
// request; each caller still stops waiting when its own ctx is done.
func (c *Client) GetOrder(ctx context.Context, id int64) (*Order, error) {
	key := strconv.FormatInt(id, 10)
	ch := c.orders.DoChan(key, func() (interface{}, error) {
		var order Order
		if err := c.do(context.WithoutCancel(ctx), http.MethodGet, ordersPath+key, "get_order", nil, &order); err != nil {
			return nil, err
		}
		return &order, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		order := *res.Val.(*Order)
		return &order, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Client) UpdateOrderLine(ctx context.Context, id int64, status LineStatus) (*OrderLine, error) {
	path := orderLinesPath + strconv.FormatInt(id, 10)

	var line OrderLine
	if err := c.do(ctx, http.MethodPatch, path, "update_order_line", lineUpdateRequest{Status: status}, &line); err != nil {
		return nil, err
	}
	return &line, nil
}

func (c *Client) OrdersPerDay(ctx context.Context, period int) ([]DayCount, error) {
	var days []DayCount
	if err := c.do(ctx, http.MethodGet, ordersPerDayPath+strconv.Itoa(period), "orders_per_day", nil, &days); err != nil {
		return nil, err
	}
	return days, nil
}

func (c *Client) MostBoughtProducts(ctx context.Context, period int) ([]ProductCount, error) {
	var products []ProductCount
	if err := c.do(ctx, http.MethodGet, mostBoughtPath+strconv.Itoa(period), "most_bought_products", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Client) do(ctx context.Context, method, path, endpoint string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.authorize(req)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.APIRequestDuration.WithLabelValues(endpoint, "error").Observe(time.Since(start).Seconds())
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %s %s: %v", ErrNetwork, method, path, err)
	}
	defer resp.Body.Close()

	metrics.APIRequestDuration.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Observe(time.Since(start).Seconds())
	c.logger.Debug("api request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)),
	)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &HTTPError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			StatusText: statusText(resp),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %s %s: %v", ErrDecode, method, path, err)
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.sessionID != "" {
		req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: c.sessionID})
	}
	if c.csrfToken != "" {
		req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: c.csrfToken})
		if req.Method != http.MethodGet {
			req.Header.Set(csrfHeader, c.csrfToken)
		}
	}
}

func statusText(resp *http.Response) string {
	text := strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)+" ")
	if text == "" || text == resp.Status {
		return http.StatusText(resp.StatusCode)
	}
	return text
}
