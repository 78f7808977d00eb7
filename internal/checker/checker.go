// Package checker проверяет занятость названия магазина на сервере
// с дебаунсом ввода.
package checker

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tempizhere/dealhub/internal/debounce"
	"github.com/tempizhere/dealhub/internal/models"
	"go.uber.org/zap"
)

const (
	checkNamePath  = "/api/stores/check-name"
	defaultTimeout = 5 * time.Second
)

// Result описывает итог проверки одного значения
type Result struct {
	Value  string
	Exists bool
	Err    error
}

type pendingCheck struct {
	value    string
	onResult func(Result)
}

// DuplicateChecker выполняет проверку названия не чаще одного раза за паузу ввода
type DuplicateChecker struct {
	client    *resty.Client
	debouncer *debounce.Debouncer[pendingCheck]
	logger    *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	closed atomic.Bool
}

// NewDuplicateChecker создаёт клиента к серверу baseURL
func NewDuplicateChecker(baseURL string, delay time.Duration, logger *zap.Logger) *DuplicateChecker {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(defaultTimeout).
		SetHeader("Accept", "application/json")

	client.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		logger.Debug("Duplicate check response",
			zap.String("url", resp.Request.URL),
			zap.Int("status", resp.StatusCode()),
			zap.Duration("duration", resp.Time()))
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	c := &DuplicateChecker{
		client: client,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
	c.debouncer = debounce.New(delay, c.run)
	return c
}

// Check выполняет один запрос к серверу
func (c *DuplicateChecker) Check(ctx context.Context, value string) (bool, error) {
	var (
		body    models.DuplicateCheckResponse
		failure models.ErrorResponse
	)
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("name", value).
		SetResult(&body).
		SetError(&failure).
		Get(checkNamePath)
	if err != nil {
		return false, fmt.Errorf("check name: %w", err)
	}
	if resp.IsError() {
		if failure.Error != "" {
			return false, fmt.Errorf("check name: status %d: %s", resp.StatusCode(), failure.Error)
		}
		return false, fmt.Errorf("check name: status %d", resp.StatusCode())
	}
	return body.Exists, nil
}

// ScheduleDuplicateCheck откладывает проверку value до паузы ввода.
// onResult вызывается асинхронно и только для последнего значения серии.
func (c *DuplicateChecker) ScheduleDuplicateCheck(value string, onResult func(Result)) {
	c.debouncer.Trigger(pendingCheck{value: value, onResult: onResult})
}

// Pending сообщает, ожидается ли проверка
func (c *DuplicateChecker) Pending() bool {
	return c.debouncer.Pending()
}

func (c *DuplicateChecker) run(p pendingCheck) {
	exists, err := c.Check(c.ctx, p.value)
	if err != nil {
		c.logger.Warn("Duplicate check failed", zap.String("value", p.value), zap.Error(err))
	}

	if c.closed.Load() || p.onResult == nil {
		return
	}
	p.onResult(Result{Value: p.value, Exists: exists, Err: err})
}

// Close отменяет ожидающую проверку и прерывает выполняющийся запрос.
// После Close onResult не вызывается. Close можно вызывать из onResult.
func (c *DuplicateChecker) Close() {
	c.closed.Store(true)
	c.debouncer.Stop()
	c.cancel()
}
