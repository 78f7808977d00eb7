package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/tempizhere/dealhub/internal/models"
)

// dealRecord хранит счётчики одной сделки
type dealRecord struct {
	views          int64
	purchaseClicks int64
	likedBy        map[string]struct{}
}

// MemoryStatsRepository реализует StatsRepository на map под мьютексом
type MemoryStatsRepository struct {
	mu    sync.Mutex
	deals map[string]*dealRecord
}

// NewMemoryStatsRepository создаёт новый экземпляр MemoryStatsRepository
func NewMemoryStatsRepository() *MemoryStatsRepository {
	return &MemoryStatsRepository{
		deals: make(map[string]*dealRecord),
	}
}

// record возвращает запись сделки, создавая её при отсутствии. Вызывать под mu.
func (r *MemoryStatsRepository) record(dealID string) *dealRecord {
	rec, ok := r.deals[dealID]
	if !ok {
		rec = &dealRecord{likedBy: make(map[string]struct{})}
		r.deals[dealID] = rec
	}
	return rec
}

// IncrementViews увеличивает счётчик просмотров
func (r *MemoryStatsRepository) IncrementViews(_ context.Context, dealID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.record(dealID).views++
	return nil
}

// IncrementPurchaseClicks увеличивает счётчик кликов «купить»
func (r *MemoryStatsRepository) IncrementPurchaseClicks(_ context.Context, dealID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.record(dealID).purchaseClicks++
	return nil
}

// ToggleLike переключает лайк актора
func (r *MemoryStatsRepository) ToggleLike(_ context.Context, dealID, actorKey string) (bool, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	liked := r.setLike(dealID, actorKey, nil)
	return liked, int64(len(r.deals[dealID].likedBy)), nil
}

// setLike меняет состояние лайка. want == nil означает переключение. Вызывать под mu.
func (r *MemoryStatsRepository) setLike(dealID, actorKey string, want *bool) bool {
	rec := r.record(dealID)
	_, has := rec.likedBy[actorKey]
	liked := !has
	if want != nil {
		liked = *want
	}
	if liked {
		rec.likedBy[actorKey] = struct{}{}
	} else {
		delete(rec.likedBy, actorKey)
	}
	return liked
}

// Get возвращает снимок счётчиков сделки
func (r *MemoryStatsRepository) Get(_ context.Context, dealID string) (models.DealStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := models.DealStats{DealID: dealID, LikedBy: []string{}}
	rec, ok := r.deals[dealID]
	if !ok {
		return stats, nil
	}
	stats.Views = rec.views
	stats.PurchaseClicks = rec.purchaseClicks
	for actor := range rec.likedBy {
		stats.LikedBy = append(stats.LikedBy, actor)
	}
	sort.Strings(stats.LikedBy)
	stats.Likes = int64(len(stats.LikedBy))
	return stats, nil
}

// Delete удаляет запись сделки
func (r *MemoryStatsRepository) Delete(_ context.Context, dealID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.deals, dealID)
	return nil
}

// Clear очищает хранилище
func (r *MemoryStatsRepository) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.deals = make(map[string]*dealRecord)
}

// MemoryCommentRepository реализует CommentRepository в памяти
type MemoryCommentRepository struct {
	mu       sync.RWMutex
	comments map[string]models.Comment
}

// NewMemoryCommentRepository создаёт новый экземпляр MemoryCommentRepository
func NewMemoryCommentRepository() *MemoryCommentRepository {
	return &MemoryCommentRepository{comments: make(map[string]models.Comment)}
}

// Create сохраняет комментарий
func (r *MemoryCommentRepository) Create(_ context.Context, comment models.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.comments[comment.ID] = comment
	return nil
}

// Approve одобряет комментарий
func (r *MemoryCommentRepository) Approve(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.comments[id]
	if !ok {
		return ErrCommentNotFound
	}
	c.Approved = true
	r.comments[id] = c
	return nil
}

// CountApproved считает одобренные комментарии сделки
func (r *MemoryCommentRepository) CountApproved(_ context.Context, dealID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, c := range r.comments {
		if c.DealID == dealID && c.Approved {
			n++
		}
	}
	return n, nil
}

// DeleteByDeal удаляет комментарии сделки
func (r *MemoryCommentRepository) DeleteByDeal(_ context.Context, dealID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, c := range r.comments {
		if c.DealID == dealID {
			delete(r.comments, id)
		}
	}
	return nil
}

// MemoryStoreRepository реализует StoreRepository в памяти
type MemoryStoreRepository struct {
	mu     sync.RWMutex
	bySlug map[string]models.Store
}

// NewMemoryStoreRepository создаёт новый экземпляр MemoryStoreRepository
func NewMemoryStoreRepository() *MemoryStoreRepository {
	return &MemoryStoreRepository{bySlug: make(map[string]models.Store)}
}

// Create сохраняет магазин
func (r *MemoryStoreRepository) Create(_ context.Context, store models.Store) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.bySlug[store.Slug]; exists {
		return ErrStoreExists
	}
	r.bySlug[store.Slug] = store
	return nil
}

// ExistsBySlug проверяет, занят ли slug
func (r *MemoryStoreRepository) ExistsBySlug(_ context.Context, slug string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.bySlug[slug]
	return exists, nil
}
