package app

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/tempizhere/dealhub/internal/middleware"
	"github.com/tempizhere/dealhub/internal/models"
)

// Metrics описывает то, что роутеру нужно от метрик
type Metrics interface {
	middleware.HTTPObserver
	middleware.RateLimitObserver
	Handler() http.Handler
}

// RouterOptions содержит зависимости HTTP-роутера
type RouterOptions struct {
	CookieTTL     time.Duration
	TrustedSubnet *middleware.TrustedSubnet
	// Limiter может быть nil: ограничение частоты отключено
	Limiter middleware.RateLimiter
	// Metrics может быть nil: /metrics не публикуется
	Metrics Metrics
}

// NewRouter собирает chi-роутер со всеми маршрутами API
func (a *App) NewRouter(opts RouterOptions) http.Handler {
	r := chi.NewRouter()
	if opts.Metrics != nil {
		r.Use(middleware.MetricsMiddleware(opts.Metrics))
	}
	r.Use(middleware.GzipMiddleware)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		a.writeJSONResponse(w, http.StatusNotFound, models.ErrorResponse{Error: "not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		a.writeJSONResponse(w, http.StatusMethodNotAllowed, models.ErrorResponse{Error: "method not allowed"})
	})

	logging := middleware.LoggingMiddleware(a.logger)
	r.With(logging).Get("/ping", a.HandlePing)
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	limited := func(next http.Handler) http.Handler { return next }
	if opts.Limiter != nil {
		var observer middleware.RateLimitObserver
		if opts.Metrics != nil {
			observer = opts.Metrics
		}
		limited = middleware.RateLimitMiddleware(opts.Limiter, observer, a.logger)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(a.svc, opts.CookieTTL, a.logger))
		r.Use(logging)

		r.Route("/deals/{id}", func(r chi.Router) {
			r.With(limited).Post("/view", a.HandleView)
			r.With(limited).Post("/purchase-click", a.HandlePurchaseClick)
			r.With(limited).Post("/like", a.HandleLike)
			r.With(limited).Post("/comments", a.HandleAddComment)
			r.Get("/stats", a.HandleStats)
		})

		r.Get("/stores/check-name", a.HandleCheckStoreName)
		r.With(limited).Post("/stores", a.HandleCreateStore)

		r.Route("/internal", func(r chi.Router) {
			r.Use(middleware.TrustedSubnetMiddleware(opts.TrustedSubnet, a.logger))
			r.Post("/comments/{id}/approve", a.HandleApproveComment)
			r.Delete("/deals/{id}/stats", a.HandlePurgeStats)
		})
	})

	return r
}
