package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tempizhere/dealhub/internal/models"
	"github.com/tempizhere/dealhub/internal/repository"
	"github.com/tempizhere/dealhub/internal/validator"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrNotFound означает, что запрошенная сущность отсутствует
	ErrNotFound = errors.New("not found")
	// ErrValidation означает некорректный идентификатор или тело запроса
	ErrValidation = errors.New("validation error")
	// ErrInternal означает сбой хранилища; причина только в логе
	ErrInternal = errors.New("internal error")
	// ErrStoreExists означает, что slug магазина уже занят
	ErrStoreExists = repository.ErrStoreExists
)

// Типы событий счётчиков
const (
	EventView          = "view"
	EventPurchaseClick = "purchase_click"
	EventLike          = "like"
	EventUnlike        = "unlike"
	EventPurge         = "purge"
)

// EventRecorder получает уведомления об изменении счётчиков
type EventRecorder interface {
	ObserveEvent(event string)
}

type noopRecorder struct{}

func (noopRecorder) ObserveEvent(string) {}

// Option настраивает Service
type Option func(*Service)

// WithEventRecorder подключает получателя событий (например, метрики)
func WithEventRecorder(r EventRecorder) Option {
	return func(s *Service) {
		if r != nil {
			s.events = r
		}
	}
}

// WithTokenTTL задаёт срок жизни выдаваемых JWT
func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.tokenTTL = ttl
		}
	}
}

// Service реализует логику счётчиков сделок, комментариев и магазинов
type Service struct {
	stats     repository.StatsRepository
	comments  repository.CommentRepository
	stores    repository.StoreRepository
	validate  *validator.Validator
	jwtSecret string
	tokenTTL  time.Duration
	events    EventRecorder
	logger    *zap.Logger
}

// NewService создаёт новый экземпляр Service
func NewService(
	stats repository.StatsRepository,
	comments repository.CommentRepository,
	stores repository.StoreRepository,
	jwtSecret string,
	logger *zap.Logger,
	opts ...Option,
) *Service {
	s := &Service{
		stats:     stats,
		comments:  comments,
		stores:    stores,
		validate:  validator.New(),
		jwtSecret: jwtSecret,
		tokenTTL:  24 * time.Hour,
		events:    noopRecorder{},
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// internal логирует причину и возвращает ErrInternal
func (s *Service) internal(op string, err error, fields ...zap.Field) error {
	s.logger.Error("Operation failed", append(fields, zap.String("op", op), zap.Error(err))...)
	return ErrInternal
}

func (s *Service) validateDealID(dealID string) error {
	if err := s.validate.ValidateVar(dealID, "required,dealid"); err != nil {
		return fmt.Errorf("%w: invalid deal id %q", ErrValidation, dealID)
	}
	return nil
}

func (s *Service) validateActorKey(actorKey string) error {
	if err := s.validate.ValidateVar(actorKey, "required,actorkey"); err != nil {
		return fmt.Errorf("%w: invalid actor key", ErrValidation)
	}
	return nil
}

// RecordView увеличивает счётчик просмотров сделки
func (s *Service) RecordView(ctx context.Context, dealID string) error {
	if err := s.validateDealID(dealID); err != nil {
		return err
	}
	if err := s.stats.IncrementViews(ctx, dealID); err != nil {
		return s.internal("record_view", err, zap.String("deal_id", dealID))
	}
	s.events.ObserveEvent(EventView)
	return nil
}

// RecordPurchaseClick увеличивает счётчик кликов «купить».
// counted совпадает с успешностью инкремента.
func (s *Service) RecordPurchaseClick(ctx context.Context, dealID string) (bool, error) {
	if err := s.validateDealID(dealID); err != nil {
		return false, err
	}
	if err := s.stats.IncrementPurchaseClicks(ctx, dealID); err != nil {
		return false, s.internal("record_purchase_click", err, zap.String("deal_id", dealID))
	}
	s.events.ObserveEvent(EventPurchaseClick)
	return true, nil
}

// ToggleLike ставит или снимает лайк актора
func (s *Service) ToggleLike(ctx context.Context, dealID, actorKey string) (models.LikeResult, error) {
	if err := s.validateDealID(dealID); err != nil {
		return models.LikeResult{}, err
	}
	if err := s.validateActorKey(actorKey); err != nil {
		return models.LikeResult{}, err
	}
	liked, likes, err := s.stats.ToggleLike(ctx, dealID, actorKey)
	if err != nil {
		return models.LikeResult{}, s.internal("toggle_like", err, zap.String("deal_id", dealID))
	}
	if liked {
		s.events.ObserveEvent(EventLike)
	} else {
		s.events.ObserveEvent(EventUnlike)
	}
	return models.LikeResult{Liked: liked, Likes: likes}, nil
}

// GetStats возвращает счётчики сделки и число одобренных комментариев.
// Оба чтения выполняются параллельно.
func (s *Service) GetStats(ctx context.Context, dealID string) (models.StatsView, error) {
	if err := s.validateDealID(dealID); err != nil {
		return models.StatsView{}, err
	}

	var (
		stats    models.DealStats
		comments int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats, err = s.stats.Get(gctx, dealID)
		return err
	})
	g.Go(func() error {
		var err error
		comments, err = s.comments.CountApproved(gctx, dealID)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.StatsView{}, s.internal("get_stats", err, zap.String("deal_id", dealID))
	}

	likedBy := stats.LikedBy
	if likedBy == nil {
		likedBy = []string{}
	}
	return models.StatsView{
		Views:          stats.Views,
		Likes:          stats.Likes,
		PurchaseClicks: stats.PurchaseClicks,
		Comments:       comments,
		LikedBy:        likedBy,
	}, nil
}

// PurgeStats удаляет счётчики, лайки и комментарии сделки
func (s *Service) PurgeStats(ctx context.Context, dealID string) error {
	if err := s.validateDealID(dealID); err != nil {
		return err
	}
	if err := s.stats.Delete(ctx, dealID); err != nil {
		return s.internal("purge_stats", err, zap.String("deal_id", dealID))
	}
	if err := s.comments.DeleteByDeal(ctx, dealID); err != nil {
		return s.internal("purge_comments", err, zap.String("deal_id", dealID))
	}
	s.events.ObserveEvent(EventPurge)
	s.logger.Info("Deal stats purged", zap.String("deal_id", dealID))
	return nil
}

// AddComment сохраняет неодобренный комментарий к сделке
func (s *Service) AddComment(ctx context.Context, dealID, actorKey string, req models.CommentRequest) (models.Comment, error) {
	if err := s.validateDealID(dealID); err != nil {
		return models.Comment{}, err
	}
	if err := s.validateActorKey(actorKey); err != nil {
		return models.Comment{}, err
	}
	req.Body = strings.TrimSpace(req.Body)
	if err := s.validate.ValidateStruct(req); err != nil {
		return models.Comment{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	comment := models.Comment{
		ID:        uuid.NewString(),
		DealID:    dealID,
		ActorKey:  actorKey,
		Body:      req.Body,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return models.Comment{}, s.internal("add_comment", err, zap.String("deal_id", dealID))
	}
	return comment, nil
}

// ApproveComment одобряет комментарий
func (s *Service) ApproveComment(ctx context.Context, id string) error {
	if err := s.validate.ValidateVar(id, "required,uuid"); err != nil {
		return fmt.Errorf("%w: invalid comment id", ErrValidation)
	}
	err := s.comments.Approve(ctx, id)
	switch {
	case errors.Is(err, repository.ErrCommentNotFound):
		return fmt.Errorf("comment %s: %w", id, ErrNotFound)
	case err != nil:
		return s.internal("approve_comment", err, zap.String("comment_id", id))
	}
	return nil
}

// Slugify приводит название магазина к slug: нижний регистр,
// обрезка пробелов, внутренние пробелы заменяются на «-»
func Slugify(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "-")
}

// CreateStore регистрирует магазин; занятый slug даёт ErrStoreExists
func (s *Service) CreateStore(ctx context.Context, req models.StoreRequest, ownerKey string) (models.Store, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validate.ValidateStruct(req); err != nil {
		return models.Store{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err := s.validateActorKey(ownerKey); err != nil {
		return models.Store{}, err
	}

	store := models.Store{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Slug:      Slugify(req.Name),
		OwnerKey:  ownerKey,
		CreatedAt: time.Now().UTC(),
	}
	err := s.stores.Create(ctx, store)
	switch {
	case errors.Is(err, repository.ErrStoreExists):
		return models.Store{}, fmt.Errorf("store %q: %w", store.Slug, ErrStoreExists)
	case err != nil:
		return models.Store{}, s.internal("create_store", err, zap.String("slug", store.Slug))
	}
	return store, nil
}

// CheckStoreName сообщает, занято ли название магазина
func (s *Service) CheckStoreName(ctx context.Context, name string) (bool, error) {
	name = strings.TrimSpace(name)
	if err := s.validate.ValidateStruct(models.StoreRequest{Name: name}); err != nil {
		return false, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	exists, err := s.stores.ExistsBySlug(ctx, Slugify(name))
	if err != nil {
		return false, s.internal("check_store_name", err, zap.String("name", name))
	}
	return exists, nil
}
