// Package middleware содержит HTTP middleware для обработки запросов.
// Включает определение актора, логирование, сжатие ответов, ограничение
// частоты, метрики и проверку доверенных подсетей.
package middleware

import (
	"fmt"
	"net"
	"net/http"

	"go.uber.org/zap"
)

// TrustedSubnet проверяет принадлежность адреса доверенной подсети
type TrustedSubnet struct {
	network *net.IPNet
}

// NewTrustedSubnet разбирает CIDR; пустая строка даёт подсеть, запрещающую всё
func NewTrustedSubnet(cidr string) (*TrustedSubnet, error) {
	if cidr == "" {
		return &TrustedSubnet{}, nil
	}
	_, network, err := net.ParseCIDR(cidr)
	if err != nil {
		return nil, fmt.Errorf("invalid trusted subnet %q: %w", cidr, err)
	}
	return &TrustedSubnet{network: network}, nil
}

// Contains сообщает, входит ли адрес в подсеть
func (s *TrustedSubnet) Contains(addr string) bool {
	if s == nil || s.network == nil {
		return false
	}
	ip := net.ParseIP(addr)
	return ip != nil && s.network.Contains(ip)
}

// String возвращает CIDR подсети
func (s *TrustedSubnet) String() string {
	if s == nil || s.network == nil {
		return ""
	}
	return s.network.String()
}

// TrustedSubnetMiddleware пропускает только запросы с X-Real-IP из доверенной подсети
func TrustedSubnetMiddleware(subnet *TrustedSubnet, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientIP := r.Header.Get("X-Real-IP")
			if !subnet.Contains(clientIP) {
				logger.Warn("Access denied: IP not in trusted subnet",
					zap.String("method", r.Method),
					zap.String("uri", r.RequestURI),
					zap.String("client_ip", clientIP),
					zap.String("trusted_subnet", subnet.String()),
					zap.String("remote_addr", r.RemoteAddr))
				writeError(w, http.StatusForbidden, "access denied")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
