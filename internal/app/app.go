package app

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tempizhere/dealhub/internal/middleware"
	"github.com/tempizhere/dealhub/internal/models"
	"github.com/tempizhere/dealhub/internal/repository"
	"github.com/tempizhere/dealhub/internal/service"
	"go.uber.org/zap"
)

// maxBodyBytes ограничивает размер тела JSON-запросов
const maxBodyBytes = 64 << 10

// App содержит хендлеры и зависимости
type App struct {
	svc    *service.Service
	db     repository.Database
	logger *zap.Logger
}

// NewApp создаёт новое приложение
func NewApp(svc *service.Service, db repository.Database, logger *zap.Logger) *App {
	return &App{svc: svc, db: db, logger: logger}
}

// HandleView обрабатывает POST /api/deals/{id}/view
func (a *App) HandleView(w http.ResponseWriter, r *http.Request) {
	if err := a.svc.RecordView(r.Context(), chi.URLParam(r, "id")); err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSONResponse(w, http.StatusOK, models.SuccessResponse{Success: true})
}

// HandlePurchaseClick обрабатывает POST /api/deals/{id}/purchase-click
func (a *App) HandlePurchaseClick(w http.ResponseWriter, r *http.Request) {
	counted, err := a.svc.RecordPurchaseClick(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSONResponse(w, http.StatusOK, models.PurchaseClickResponse{Success: true, Counted: counted})
}

// HandleLike обрабатывает POST /api/deals/{id}/like
func (a *App) HandleLike(w http.ResponseWriter, r *http.Request) {
	actorKey, ok := middleware.GetActorKey(r)
	if !ok {
		a.writeJSONResponse(w, http.StatusUnauthorized, models.ErrorResponse{Error: "unauthorized"})
		return
	}
	res, err := a.svc.ToggleLike(r.Context(), chi.URLParam(r, "id"), actorKey)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSONResponse(w, http.StatusOK, res)
}

// HandleStats обрабатывает GET /api/deals/{id}/stats
func (a *App) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := a.svc.GetStats(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSONResponse(w, http.StatusOK, stats)
}

// HandleAddComment обрабатывает POST /api/deals/{id}/comments
func (a *App) HandleAddComment(w http.ResponseWriter, r *http.Request) {
	actorKey, ok := middleware.GetActorKey(r)
	if !ok {
		a.writeJSONResponse(w, http.StatusUnauthorized, models.ErrorResponse{Error: "unauthorized"})
		return
	}
	var req models.CommentRequest
	if !a.decodeJSON(w, r, &req) {
		return
	}
	comment, err := a.svc.AddComment(r.Context(), chi.URLParam(r, "id"), actorKey, req)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSONResponse(w, http.StatusCreated, comment)
}

// HandleApproveComment обрабатывает POST /api/internal/comments/{id}/approve
func (a *App) HandleApproveComment(w http.ResponseWriter, r *http.Request) {
	if err := a.svc.ApproveComment(r.Context(), chi.URLParam(r, "id")); err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSONResponse(w, http.StatusOK, models.SuccessResponse{Success: true})
}

// HandlePurgeStats обрабатывает DELETE /api/internal/deals/{id}/stats
func (a *App) HandlePurgeStats(w http.ResponseWriter, r *http.Request) {
	if err := a.svc.PurgeStats(r.Context(), chi.URLParam(r, "id")); err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSONResponse(w, http.StatusOK, models.SuccessResponse{Success: true})
}

// HandleCheckStoreName обрабатывает GET /api/stores/check-name?name=
func (a *App) HandleCheckStoreName(w http.ResponseWriter, r *http.Request) {
	exists, err := a.svc.CheckStoreName(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSONResponse(w, http.StatusOK, models.DuplicateCheckResponse{Exists: exists})
}

// HandleCreateStore обрабатывает POST /api/stores
func (a *App) HandleCreateStore(w http.ResponseWriter, r *http.Request) {
	actorKey, ok := middleware.GetActorKey(r)
	if !ok {
		a.writeJSONResponse(w, http.StatusUnauthorized, models.ErrorResponse{Error: "unauthorized"})
		return
	}
	var req models.StoreRequest
	if !a.decodeJSON(w, r, &req) {
		return
	}
	store, err := a.svc.CreateStore(r.Context(), req, actorKey)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSONResponse(w, http.StatusCreated, store)
}

// HandlePing обрабатывает GET /ping
func (a *App) HandlePing(w http.ResponseWriter, r *http.Request) {
	if a.db == nil {
		a.writeJSONResponse(w, http.StatusInternalServerError, models.ErrorResponse{Error: "database not configured"})
		return
	}
	if err := a.db.PingContext(r.Context()); err != nil {
		a.logger.Error("Database ping failed", zap.Error(err))
		a.writeJSONResponse(w, http.StatusInternalServerError, models.ErrorResponse{Error: "database connection failed"})
		return
	}
	w.WriteHeader(http.StatusOK)
}

// decodeJSON читает тело запроса; при ошибке сам отвечает 400
func (a *App) decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		a.writeJSONResponse(w, http.StatusBadRequest, models.ErrorResponse{Error: "invalid JSON"})
		return false
	}
	return true
}

// writeError сопоставляет ошибку сервиса HTTP-статусу.
// Текст внутренних ошибок наружу не передаётся.
func (a *App) writeError(w http.ResponseWriter, err error) {
	var (
		status  int
		message string
	)
	switch {
	case errors.Is(err, service.ErrValidation):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrNotFound):
		status, message = http.StatusNotFound, err.Error()
	case errors.Is(err, service.ErrStoreExists):
		status, message = http.StatusConflict, "store name already taken"
	default:
		status, message = http.StatusInternalServerError, "internal error"
	}
	a.writeJSONResponse(w, status, models.ErrorResponse{Success: false, Error: message})
}

// writeJSONResponse пишет JSON-ответ с проверкой ошибок
func (a *App) writeJSONResponse(w http.ResponseWriter, status int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		a.logger.Error("Failed to encode JSON", zap.Error(err))
		http.Error(w, "Failed to encode JSON", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		a.logger.Warn("Failed to write response", zap.Error(err))
	}
}
