package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

type recordedRequest struct {
	method, route string
	status        int
}

type fakeHTTPObserver struct {
	got []recordedRequest
}

func (f *fakeHTTPObserver) ObserveHTTP(method, route string, status int, _ time.Duration) {
	f.got = append(f.got, recordedRequest{method: method, route: route, status: status})
}

func TestMetricsMiddleware(t *testing.T) {
	obs := &fakeHTTPObserver{}
	r := chi.NewRouter()
	r.Use(MetricsMiddleware(obs))
	r.Get("/api/deals/{id}/stats", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"a", "b"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/deals/"+id+"/stats", nil))
	}

	// Меткой маршрута служит шаблон, а не конкретный путь
	assert.Equal(t, []recordedRequest{
		{method: "GET", route: "/api/deals/{id}/stats", status: http.StatusNotFound},
		{method: "GET", route: "/api/deals/{id}/stats", status: http.StatusNotFound},
	}, obs.got)
}
