// Package client содержит HTTP-клиент API статистики сделок для dealctl.
package client

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tempizhere/dealhub/internal/models"
	"go.uber.org/zap"
)

// Client вызывает эндпоинты /api/deals/{id}
type Client struct {
	http *resty.Client
}

// New создаёт клиента. Пустой token означает гостевую идентичность,
// которую сервер выдаст в куке.
func New(baseURL, token string, timeout time.Duration, logger *zap.Logger) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "dealctl/1.0")
	if token != "" {
		c.SetAuthToken(token)
	}

	c.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		logger.Debug("HTTP request", zap.String("method", req.Method), zap.String("url", req.URL))
		return nil
	})
	c.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		logger.Debug("HTTP response",
			zap.Int("status", resp.StatusCode()),
			zap.Duration("duration", resp.Time()))
		return nil
	})

	return &Client{http: c}
}

// do выполняет запрос и разбирает ответ в result
func (c *Client) do(ctx context.Context, method, dealID, action string, result interface{}) error {
	var failure models.ErrorResponse
	path := "/api/deals/" + url.PathEscape(dealID) + "/" + action
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(result).
		SetError(&failure).
		Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.IsError() {
		if failure.Error != "" {
			return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode(), failure.Error)
		}
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode())
	}
	return nil
}

// RecordView учитывает просмотр
func (c *Client) RecordView(ctx context.Context, dealID string) error {
	var out models.SuccessResponse
	return c.do(ctx, resty.MethodPost, dealID, "view", &out)
}

// RecordPurchaseClick учитывает клик «купить»
func (c *Client) RecordPurchaseClick(ctx context.Context, dealID string) (bool, error) {
	var out models.PurchaseClickResponse
	if err := c.do(ctx, resty.MethodPost, dealID, "purchase-click", &out); err != nil {
		return false, err
	}
	return out.Counted, nil
}

// ToggleLike переключает лайк
func (c *Client) ToggleLike(ctx context.Context, dealID string) (models.LikeResult, error) {
	var out models.LikeResult
	err := c.do(ctx, resty.MethodPost, dealID, "like", &out)
	return out, err
}

// GetStats возвращает сводную статистику
func (c *Client) GetStats(ctx context.Context, dealID string) (models.StatsView, error) {
	var out models.StatsView
	err := c.do(ctx, resty.MethodGet, dealID, "stats", &out)
	return out, err
}
