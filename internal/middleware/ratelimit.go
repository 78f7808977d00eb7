package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RateLimiter решает, можно ли пропустить очередной запрос с ключом key
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RateLimitObserver получает уведомление об отклонённом запросе
type RateLimitObserver interface {
	ObserveRateLimited()
}

// maxLocalKeys задаёт порог, после которого простаивающие лимитеры вычищаются
const maxLocalKeys = 10000

type localEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// LocalLimiter ограничивает частоту запросов в пределах одного процесса
type LocalLimiter struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	idle    time.Duration
	entries map[string]*localEntry
}

// NewLocalLimiter допускает limit запросов за window на ключ
func NewLocalLimiter(limit int, window time.Duration) *LocalLimiter {
	every := rate.Inf
	if limit > 0 && window > 0 {
		every = rate.Every(window / time.Duration(limit))
	}
	return &LocalLimiter{
		limit:   every,
		burst:   limit,
		idle:    window,
		entries: make(map[string]*localEntry),
	}
}

// Allow реализует RateLimiter
func (l *LocalLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if len(l.entries) >= maxLocalKeys {
		for k, e := range l.entries {
			if now.Sub(e.lastSeen) > l.idle {
				delete(l.entries, k)
			}
		}
	}

	e, ok := l.entries[key]
	if !ok {
		e = &localEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.entries[key] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1), nil
}

// luaSlidingWindow реализует скользящее окно на отсортированном множестве.
// KEYS[1]=ключ окна, ARGV[1]=сейчас (мс), ARGV[2]=начало окна (мс),
// ARGV[3]=окно (мс), ARGV[4]=уникальный член, ARGV[5]=лимит.
// Возвращает число запросов в окне или -1 при превышении.
const luaSlidingWindow = `
local key = KEYS[1]
local now = tonumber(ARGV[1])
local windowStart = tonumber(ARGV[2])
local windowMs = tonumber(ARGV[3])
local member = ARGV[4]

redis.call('ZREMRANGEBYSCORE', key, '-inf', windowStart)

local count = redis.call('ZCARD', key)
if count < tonumber(ARGV[5]) then
  redis.call('ZADD', key, now, member)
  redis.call('PEXPIRE', key, windowMs)
  return count + 1
end
return -1
`

var slidingWindowScript = redis.NewScript(luaSlidingWindow)

// RedisLimiter реализует распределённый лимитер со скользящим окном в Redis
type RedisLimiter struct {
	rdb    redis.UniversalClient
	limit  int
	window time.Duration
	prefix string
}

// NewRedisLimiter допускает limit запросов за window на ключ для всех реплик
func NewRedisLimiter(rdb redis.UniversalClient, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		rdb:    rdb,
		limit:  limit,
		window: window,
		prefix: "dealhub:ratelimit:",
	}
}

// Allow реализует RateLimiter
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	now := time.Now()
	nowMs := now.UnixMilli()
	windowMs := l.window.Milliseconds()
	member := fmt.Sprintf("%d-%d", nowMs, now.UnixNano())

	res, err := slidingWindowScript.Run(ctx, l.rdb, []string{l.prefix + key},
		nowMs, nowMs-windowMs, windowMs, member, l.limit).Int()
	if err != nil {
		return false, err
	}
	return res >= 0, nil
}

// RateLimitMiddleware ограничивает частоту запросов актора.
// Запросы без предъявленного токена (актор не определён или гость выдан
// только что) считаются по IP клиента. Ошибка лимитера не блокирует запрос.
func RateLimitMiddleware(limiter RateLimiter, observer RateLimitObserver, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key, ok := GetActorKey(r)
			if !ok || IsNewGuest(r) {
				key = "ip:" + clientIP(r)
			}

			allowed, err := limiter.Allow(r.Context(), key)
			if err != nil {
				logger.Warn("Rate limiter unavailable, allowing request", zap.String("key", key), zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				if observer != nil {
					observer.ObserveRateLimited()
				}
				logger.Info("Request rate limited", zap.String("key", key), zap.String("uri", r.RequestURI))
				writeError(w, http.StatusTooManyRequests, "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP берёт адрес из X-Real-IP, иначе из RemoteAddr
func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
