package middleware

import (
	"net/http"
	"time"
)

// HTTPObserver принимает итог обработки HTTP-запроса
type HTTPObserver interface {
	ObserveHTTP(method, route string, status int, duration time.Duration)
}

// MetricsMiddleware передаёт метод, шаблон маршрута, статус и длительность в observer
func MetricsMiddleware(observer HTTPObserver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lw := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(lw, r)

			observer.ObserveHTTP(r.Method, routePattern(r), lw.statusCode, time.Since(start))
		})
	}
}
