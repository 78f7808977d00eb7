package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/tempizhere/dealhub/internal/models"
	"go.uber.org/zap"
)

const (
	queryIncrementViews = `INSERT INTO deal_stats (deal_id, views) VALUES ($1, 1)
ON CONFLICT (deal_id) DO UPDATE SET views = deal_stats.views + 1, updated_at = CURRENT_TIMESTAMP`
	queryIncrementClicks = `INSERT INTO deal_stats (deal_id, purchase_clicks) VALUES ($1, 1)
ON CONFLICT (deal_id) DO UPDATE SET purchase_clicks = deal_stats.purchase_clicks + 1, updated_at = CURRENT_TIMESTAMP`
	queryEnsureStats = `INSERT INTO deal_stats (deal_id) VALUES ($1) ON CONFLICT (deal_id) DO NOTHING`
	queryLockStats   = `SELECT likes FROM deal_stats WHERE deal_id = $1 FOR UPDATE`
	queryDeleteLike  = `DELETE FROM deal_likes WHERE deal_id = $1 AND actor_key = $2`
	queryInsertLike = `INSERT INTO deal_likes (deal_id, actor_key) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	queryAdjustLikes = `INSERT INTO deal_stats (deal_id, likes) VALUES ($1, GREATEST($2, 0))
ON CONFLICT (deal_id) DO UPDATE SET likes = GREATEST(deal_stats.likes + $2, 0), updated_at = CURRENT_TIMESTAMP
RETURNING likes`
	querySelectStats  = `SELECT views, likes, purchase_clicks FROM deal_stats WHERE deal_id = $1`
	querySelectLikers = `SELECT actor_key FROM deal_likes WHERE deal_id = $1 ORDER BY actor_key`
	queryDeleteLikes  = `DELETE FROM deal_likes WHERE deal_id = $1`
	queryDeleteStats  = `DELETE FROM deal_stats WHERE deal_id = $1`

	queryInsertStore = `INSERT INTO stores (id, name, slug, owner_key, created_at) VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (slug) DO NOTHING`
	queryStoreExists = `SELECT EXISTS (SELECT 1 FROM stores WHERE slug = $1)`
)

// PostgresStatsRepository реализует StatsRepository с использованием PostgreSQL
type PostgresStatsRepository struct {
	db     Database
	logger *zap.Logger
}

// NewPostgresStatsRepository создаёт новый экземпляр PostgresStatsRepository
func NewPostgresStatsRepository(db Database, logger *zap.Logger) (*PostgresStatsRepository, error) {
	if db == nil {
		return nil, errors.New("database is not configured")
	}
	return &PostgresStatsRepository{db: db, logger: logger}, nil
}

// IncrementViews выполняет upsert с инкрементом views
func (r *PostgresStatsRepository) IncrementViews(ctx context.Context, dealID string) error {
	if _, err := r.db.ExecContext(ctx, queryIncrementViews, dealID); err != nil {
		r.logger.Error("Failed to increment views", zap.String("deal_id", dealID), zap.Error(err))
		return err
	}
	return nil
}

// IncrementPurchaseClicks выполняет upsert с инкрементом purchase_clicks
func (r *PostgresStatsRepository) IncrementPurchaseClicks(ctx context.Context, dealID string) error {
	if _, err := r.db.ExecContext(ctx, queryIncrementClicks, dealID); err != nil {
		r.logger.Error("Failed to increment purchase clicks", zap.String("deal_id", dealID), zap.Error(err))
		return err
	}
	return nil
}

// ToggleLike переключает лайк в одной транзакции.
// Первичный ключ (deal_id, actor_key) сериализует переключения одного актора,
// а строка deal_stats блокируется UPDATE до конца транзакции.
func (r *PostgresStatsRepository) ToggleLike(ctx context.Context, dealID, actorKey string) (bool, int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		r.logger.Error("Failed to start transaction", zap.Error(err))
		return false, 0, err
	}
	defer func() { _ = tx.Rollback() }()

	// Переключения по одной сделке выполняются по очереди
	if _, err = tx.ExecContext(ctx, queryEnsureStats, dealID); err != nil {
		r.logger.Error("Failed to ensure deal stats row", zap.String("deal_id", dealID), zap.Error(err))
		return false, 0, err
	}
	var current int64
	if err = tx.QueryRowContext(ctx, queryLockStats, dealID).Scan(&current); err != nil {
		r.logger.Error("Failed to lock deal stats row", zap.String("deal_id", dealID), zap.Error(err))
		return false, 0, err
	}

	res, err := tx.ExecContext(ctx, queryDeleteLike, dealID, actorKey)
	if err != nil {
		r.logger.Error("Failed to delete like", zap.String("deal_id", dealID), zap.Error(err))
		return false, 0, err
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return false, 0, err
	}

	liked := removed == 0
	delta := int64(-1)
	if liked {
		res, err = tx.ExecContext(ctx, queryInsertLike, dealID, actorKey)
		if err != nil {
			r.logger.Error("Failed to insert like", zap.String("deal_id", dealID), zap.Error(err))
			return false, 0, err
		}
		var inserted int64
		inserted, err = res.RowsAffected()
		if err != nil {
			return false, 0, err
		}
		// Параллельная вставка того же актора уже учтена
		delta = inserted
	}

	var likes int64
	if err := tx.QueryRowContext(ctx, queryAdjustLikes, dealID, delta).Scan(&likes); err != nil {
		r.logger.Error("Failed to adjust likes", zap.String("deal_id", dealID), zap.Error(err))
		return false, 0, err
	}
	if err := tx.Commit(); err != nil {
		r.logger.Error("Failed to commit transaction", zap.Error(err))
		return false, 0, err
	}
	return liked, likes, nil
}

// Get возвращает счётчики и список лайкнувших
func (r *PostgresStatsRepository) Get(ctx context.Context, dealID string) (models.DealStats, error) {
	stats := models.DealStats{DealID: dealID, LikedBy: []string{}}

	err := r.db.QueryRowContext(ctx, querySelectStats, dealID).Scan(&stats.Views, &stats.Likes, &stats.PurchaseClicks)
	if errors.Is(err, sql.ErrNoRows) {
		return stats, nil
	}
	if err != nil {
		r.logger.Error("Failed to get deal stats", zap.String("deal_id", dealID), zap.Error(err))
		return models.DealStats{}, err
	}

	rows, err := r.db.QueryContext(ctx, querySelectLikers, dealID)
	if err != nil {
		r.logger.Error("Failed to get deal likers", zap.String("deal_id", dealID), zap.Error(err))
		return models.DealStats{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var actor string
		if err := rows.Scan(&actor); err != nil {
			return models.DealStats{}, err
		}
		stats.LikedBy = append(stats.LikedBy, actor)
	}
	if err := rows.Err(); err != nil {
		return models.DealStats{}, err
	}
	return stats, nil
}

// Delete удаляет лайки и счётчики сделки
func (r *PostgresStatsRepository) Delete(ctx context.Context, dealID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		r.logger.Error("Failed to start transaction", zap.Error(err))
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, queryDeleteLikes, dealID); err != nil {
		r.logger.Error("Failed to delete deal likes", zap.String("deal_id", dealID), zap.Error(err))
		return err
	}
	if _, err := tx.ExecContext(ctx, queryDeleteStats, dealID); err != nil {
		r.logger.Error("Failed to delete deal stats", zap.String("deal_id", dealID), zap.Error(err))
		return err
	}
	return tx.Commit()
}

// PostgresStoreRepository реализует StoreRepository с использованием PostgreSQL
type PostgresStoreRepository struct {
	db     Database
	logger *zap.Logger
}

// NewPostgresStoreRepository создаёт новый экземпляр PostgresStoreRepository
func NewPostgresStoreRepository(db Database, logger *zap.Logger) (*PostgresStoreRepository, error) {
	if db == nil {
		return nil, errors.New("database is not configured")
	}
	return &PostgresStoreRepository{db: db, logger: logger}, nil
}

// Create сохраняет магазин; конфликт по slug даёт ErrStoreExists
func (r *PostgresStoreRepository) Create(ctx context.Context, store models.Store) error {
	res, err := r.db.ExecContext(ctx, queryInsertStore, store.ID, store.Name, store.Slug, store.OwnerKey, store.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to save store", zap.String("slug", store.Slug), zap.Error(err))
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		r.logger.Info("Store already exists", zap.String("slug", store.Slug))
		return ErrStoreExists
	}
	return nil
}

// ExistsBySlug проверяет, занят ли slug
func (r *PostgresStoreRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	var exists bool
	if err := r.db.QueryRowContext(ctx, queryStoreExists, slug).Scan(&exists); err != nil {
		r.logger.Error("Failed to check store slug", zap.String("slug", slug), zap.Error(err))
		return false, err
	}
	return exists, nil
}
