package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// Префиксы ключей акторов
const (
	UserPrefix  = "user:"
	GuestPrefix = "guest:"
)

// ErrInvalidToken означает, что токен не прошёл проверку
var ErrInvalidToken = errors.New("invalid token")

// Claims содержит полезную нагрузку JWT
type Claims struct {
	jwt.RegisteredClaims
	ActorKey string `json:"actor_key"`
}

// GenerateGuestKey создаёт ключ гостя вида guest:<uuid>
func (s *Service) GenerateGuestKey() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return GuestPrefix + id.String(), nil
}

// GenerateJWT подписывает токен с ключом актора
func (s *Service) GenerateJWT(actorKey string) (string, error) {
	if err := s.validateActorKey(actorKey); err != nil {
		return "", err
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
		ActorKey: actorKey,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtSecret))
}

// ParseJWT проверяет токен и возвращает ключ актора
func (s *Service) ParseJWT(tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return "", ErrInvalidToken
	}
	if err := s.validateActorKey(claims.ActorKey); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims.ActorKey, nil
}

// TokenTTL возвращает срок жизни выдаваемых токенов
func (s *Service) TokenTTL() time.Duration {
	return s.tokenTTL
}
