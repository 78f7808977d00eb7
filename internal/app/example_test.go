package app_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/tempizhere/dealhub/internal/app"
	"github.com/tempizhere/dealhub/internal/models"
	"github.com/tempizhere/dealhub/internal/repository"
	"github.com/tempizhere/dealhub/internal/service"
	"go.uber.org/zap"
)

// newExampleRouter собирает роутер поверх in-memory хранилищ
func newExampleRouter() (http.Handler, *service.Service) {
	svc := service.NewService(
		repository.NewMemoryStatsRepository(),
		repository.NewMemoryCommentRepository(),
		repository.NewMemoryStoreRepository(),
		"example-secret",
		zap.NewNop(),
	)
	return app.NewApp(svc, nil, zap.NewNop()).NewRouter(app.RouterOptions{CookieTTL: time.Hour}), svc
}

// ExampleApp_HandleStats демонстрирует учёт событий и чтение статистики
func ExampleApp_HandleStats() {
	router, svc := newExampleRouter()
	token, _ := svc.GenerateJWT("user:alice")

	for _, path := range []string{"view", "view", "purchase-click", "like"} {
		req := httptest.NewRequest(http.MethodPost, "/api/deals/deal42/"+path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		router.ServeHTTP(httptest.NewRecorder(), req)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/deals/deal42/stats", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var stats models.StatsView
	_ = json.Unmarshal(w.Body.Bytes(), &stats)
	fmt.Printf("Статус код: %d\n", w.Code)
	fmt.Printf("Просмотры: %d, лайки: %d, клики: %d\n", stats.Views, stats.Likes, stats.PurchaseClicks)
	fmt.Printf("Лайкнули: %v\n", stats.LikedBy)

	// Output:
	// Статус код: 200
	// Просмотры: 2, лайки: 1, клики: 1
	// Лайкнули: [user:alice]
}

// ExampleApp_HandleLike демонстрирует переключение лайка
func ExampleApp_HandleLike() {
	router, svc := newExampleRouter()
	token, _ := svc.GenerateJWT("user:bob")

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/deals/deal42/like", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		fmt.Println(w.Body.String())
	}

	// Output:
	// {"liked":true,"likes":1}
	// {"liked":false,"likes":0}
}
