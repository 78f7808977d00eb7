package repository

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/tempizhere/dealhub/internal/models"
	"go.uber.org/zap"
)

// Поля хэша счётчиков
const (
	fieldViews          = "views"
	fieldLikes          = "likes"
	fieldPurchaseClicks = "purchase_clicks"
)

// luaToggleLike атомарно переключает лайк актора.
// KEYS[1]=хэш счётчиков, KEYS[2]=множество лайкнувших, ARGV[1]=ключ актора.
// Возвращает {1|0, likes}: 1 если лайк поставлен, 0 если снят.
const luaToggleLike = `
local statsKey = KEYS[1]
local likersKey = KEYS[2]
local actor = ARGV[1]

if redis.call('SISMEMBER', likersKey, actor) == 1 then
  redis.call('SREM', likersKey, actor)
  local n = redis.call('HINCRBY', statsKey, 'likes', -1)
  if n < 0 then
    redis.call('HSET', statsKey, 'likes', 0)
    n = 0
  end
  return {0, n}
end

redis.call('SADD', likersKey, actor)
return {1, redis.call('HINCRBY', statsKey, 'likes', 1)}
`

var toggleLikeScript = redis.NewScript(luaToggleLike)

// StatsKey возвращает ключ хэша счётчиков сделки
func StatsKey(dealID string) string {
	return fmt.Sprintf("dealhub:stats:%s", dealID)
}

// LikersKey возвращает ключ множества лайкнувших сделку
func LikersKey(dealID string) string {
	return fmt.Sprintf("dealhub:likes:%s", dealID)
}

// RedisStatsRepository реализует StatsRepository на Redis
type RedisStatsRepository struct {
	rdb    redis.UniversalClient
	logger *zap.Logger
}

// NewRedisStatsRepository создаёт новый экземпляр RedisStatsRepository
func NewRedisStatsRepository(rdb redis.UniversalClient, logger *zap.Logger) *RedisStatsRepository {
	return &RedisStatsRepository{rdb: rdb, logger: logger}
}

// IncrementViews увеличивает views через HINCRBY
func (r *RedisStatsRepository) IncrementViews(ctx context.Context, dealID string) error {
	if err := r.rdb.HIncrBy(ctx, StatsKey(dealID), fieldViews, 1).Err(); err != nil {
		r.logger.Error("Failed to increment views in redis", zap.String("deal_id", dealID), zap.Error(err))
		return err
	}
	return nil
}

// IncrementPurchaseClicks увеличивает purchase_clicks через HINCRBY
func (r *RedisStatsRepository) IncrementPurchaseClicks(ctx context.Context, dealID string) error {
	if err := r.rdb.HIncrBy(ctx, StatsKey(dealID), fieldPurchaseClicks, 1).Err(); err != nil {
		r.logger.Error("Failed to increment purchase clicks in redis", zap.String("deal_id", dealID), zap.Error(err))
		return err
	}
	return nil
}

// ToggleLike переключает лайк Lua-скриптом
func (r *RedisStatsRepository) ToggleLike(ctx context.Context, dealID, actorKey string) (bool, int64, error) {
	res, err := toggleLikeScript.Run(ctx, r.rdb, []string{StatsKey(dealID), LikersKey(dealID)}, actorKey).Int64Slice()
	if err != nil {
		r.logger.Error("Failed to toggle like in redis", zap.String("deal_id", dealID), zap.Error(err))
		return false, 0, err
	}
	if len(res) != 2 {
		return false, 0, fmt.Errorf("unexpected toggle like reply: %v", res)
	}
	return res[0] == 1, res[1], nil
}

// Get читает хэш и множество в одной транзакции MULTI/EXEC
func (r *RedisStatsRepository) Get(ctx context.Context, dealID string) (models.DealStats, error) {
	pipe := r.rdb.TxPipeline()
	hash := pipe.HGetAll(ctx, StatsKey(dealID))
	members := pipe.SMembers(ctx, LikersKey(dealID))
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		r.logger.Error("Failed to read deal stats from redis", zap.String("deal_id", dealID), zap.Error(err))
		return models.DealStats{}, err
	}

	stats := models.DealStats{DealID: dealID, LikedBy: []string{}}
	var err error
	for field, target := range map[string]*int64{
		fieldViews:          &stats.Views,
		fieldLikes:          &stats.Likes,
		fieldPurchaseClicks: &stats.PurchaseClicks,
	} {
		raw, ok := hash.Val()[field]
		if !ok {
			continue
		}
		if *target, err = strconv.ParseInt(raw, 10, 64); err != nil {
			return models.DealStats{}, fmt.Errorf("parse %s: %w", field, err)
		}
	}

	stats.LikedBy = append(stats.LikedBy, members.Val()...)
	sort.Strings(stats.LikedBy)
	return stats, nil
}

// Delete удаляет хэш и множество сделки
func (r *RedisStatsRepository) Delete(ctx context.Context, dealID string) error {
	if err := r.rdb.Del(ctx, StatsKey(dealID), LikersKey(dealID)).Err(); err != nil {
		r.logger.Error("Failed to delete deal stats in redis", zap.String("deal_id", dealID), zap.Error(err))
		return err
	}
	return nil
}
