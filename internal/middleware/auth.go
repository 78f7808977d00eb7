package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// CookieName содержит имя куки с JWT
const CookieName = "jwt_token"

// ActorKeyCtx для хранения ключа актора в контексте
type ActorKeyCtx struct{}

// newGuestCtx отмечает гостя, выпущенного в текущем запросе
type newGuestCtx struct{}

// TokenIssuer выпускает и проверяет токены акторов
type TokenIssuer interface {
	ParseJWT(token string) (string, error)
	GenerateJWT(actorKey string) (string, error)
	GenerateGuestKey() (string, error)
}

// AuthMiddleware определяет актора по куке jwt_token или заголовку Authorization.
// При отсутствии или невалидности токена выдаёт гостевую идентичность.
func AuthMiddleware(issuer TokenIssuer, cookieTTL time.Duration, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var (
				actorKey string
				newGuest bool
			)

			if token := tokenFromRequest(r); token != "" {
				key, err := issuer.ParseJWT(token)
				if err != nil {
					logger.Warn("Invalid JWT token", zap.Error(err))
				} else {
					actorKey = key
				}
			}

			if actorKey == "" {
				key, err := issuer.GenerateGuestKey()
				if err != nil {
					logger.Error("Failed to generate guest key", zap.Error(err))
					writeError(w, http.StatusInternalServerError, "internal error")
					return
				}
				token, err := issuer.GenerateJWT(key)
				if err != nil {
					logger.Error("Failed to sign guest token", zap.Error(err))
					writeError(w, http.StatusInternalServerError, "internal error")
					return
				}
				http.SetCookie(w, &http.Cookie{
					Name:     CookieName,
					Value:    token,
					Expires:  time.Now().Add(cookieTTL),
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
				actorKey = key
				newGuest = true
			}

			ctx := WithActorKey(r.Context(), actorKey)
			if newGuest {
				ctx = context.WithValue(ctx, newGuestCtx{}, true)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// tokenFromRequest берёт токен из куки, затем из заголовка Authorization
func tokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(CookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

// WithActorKey кладёт ключ актора в контекст
func WithActorKey(ctx context.Context, actorKey string) context.Context {
	return context.WithValue(ctx, ActorKeyCtx{}, actorKey)
}

// GetActorKey извлекает ключ актора из контекста запроса
func GetActorKey(r *http.Request) (string, bool) {
	key, ok := r.Context().Value(ActorKeyCtx{}).(string)
	return key, ok && key != ""
}

// IsNewGuest сообщает, что гостевая идентичность выдана этим же запросом
// и клиент ещё не предъявлял токен
func IsNewGuest(r *http.Request) bool {
	v, _ := r.Context().Value(newGuestCtx{}).(bool)
	return v
}
