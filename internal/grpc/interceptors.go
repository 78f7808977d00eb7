package grpc

import (
	"context"
	"net"
	"strings"
	"time"

	"github.com/tempizhere/dealhub/internal/grpc/proto"
	"github.com/tempizhere/dealhub/internal/middleware"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

// contextKey определяет тип для ключей контекста
type contextKey string

const actorKeyCtx contextKey = "actorKey"

// GRPCObserver принимает итог каждого вызова
type GRPCObserver interface {
	ObserveGRPC(method, code string)
}

// publicMethods не требуют идентичности актора
var publicMethods = map[string]bool{
	proto.MethodPing:           true,
	proto.MethodGetStats:       true,
	proto.MethodCheckStoreName: true,
}

// trustedMethods доступны только из доверенной подсети
var trustedMethods = map[string]bool{
	proto.MethodPurgeStats: true,
}

// AuthInterceptor определяет актора по заголовку authorization.
// Без валидного токена выдаёт гостевой JWT в заголовке ответа.
func AuthInterceptor(issuer middleware.TokenIssuer, logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if publicMethods[info.FullMethod] || trustedMethods[info.FullMethod] {
			return handler(ctx, req)
		}

		var actorKey string
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if authHeaders := md.Get("authorization"); len(authHeaders) > 0 && strings.HasPrefix(authHeaders[0], "Bearer ") {
				key, err := issuer.ParseJWT(strings.TrimPrefix(authHeaders[0], "Bearer "))
				if err != nil {
					logger.Warn("Invalid JWT token", zap.Error(err))
				} else {
					actorKey = key
				}
			}
		}

		if actorKey == "" {
			key, err := issuer.GenerateGuestKey()
			if err != nil {
				logger.Error("Failed to generate guest key", zap.Error(err))
				return nil, status.Error(codes.Internal, "internal error")
			}
			token, err := issuer.GenerateJWT(key)
			if err != nil {
				logger.Error("Failed to sign guest token", zap.Error(err))
				return nil, status.Error(codes.Internal, "internal error")
			}
			if err := grpc.SetHeader(ctx, metadata.Pairs("authorization", "Bearer "+token)); err != nil {
				logger.Error("Failed to set response header", zap.Error(err))
			}
			logger.Debug("Issued guest token for gRPC", zap.String("actor_key", key))
			actorKey = key
		}

		return handler(context.WithValue(ctx, actorKeyCtx, actorKey), req)
	}
}

// TrustedSubnetInterceptor пропускает служебные методы только из доверенной подсети
func TrustedSubnetInterceptor(subnet *middleware.TrustedSubnet, logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if !trustedMethods[info.FullMethod] {
			return handler(ctx, req)
		}

		clientIP := peerIP(ctx)
		if !subnet.Contains(clientIP) {
			logger.Warn("Access denied from untrusted IP",
				zap.String("method", info.FullMethod),
				zap.String("ip", clientIP),
				zap.String("trusted_subnet", subnet.String()))
			return nil, status.Error(codes.PermissionDenied, "access denied")
		}
		return handler(ctx, req)
	}
}

// LoggingInterceptor логирует вызовы и передаёт код ответа в observer
func LoggingInterceptor(logger *zap.Logger, observer GRPCObserver) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()

		resp, err := handler(ctx, req)

		code := status.Code(err)
		if observer != nil {
			observer.ObserveGRPC(info.FullMethod, code.String())
		}

		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.String("client_ip", peerIP(ctx)),
			zap.String("status_code", code.String()),
			zap.Duration("duration", time.Since(start)),
		}
		if code == codes.Internal || code == codes.Unknown {
			logger.Warn("gRPC request", append(fields, zap.Error(err))...)
		} else {
			logger.Info("gRPC request", fields...)
		}

		return resp, err
	}
}

// peerIP возвращает IP клиента без порта
func peerIP(ctx context.Context) string {
	p, ok := peer.FromContext(ctx)
	if !ok || p.Addr == nil {
		return ""
	}
	if tcpAddr, ok := p.Addr.(*net.TCPAddr); ok {
		return tcpAddr.IP.String()
	}
	host, _, err := net.SplitHostPort(p.Addr.String())
	if err != nil {
		return p.Addr.String()
	}
	return host
}
