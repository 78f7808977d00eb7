// Package grpc содержит gRPC сервер статистики сделок
package grpc

import (
	"context"
	"errors"

	"github.com/tempizhere/dealhub/internal/grpc/proto"
	"github.com/tempizhere/dealhub/internal/middleware"
	"github.com/tempizhere/dealhub/internal/repository"
	"github.com/tempizhere/dealhub/internal/service"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Server реализует gRPC сервер статистики сделок
type Server struct {
	proto.UnimplementedDealStatsServiceServer
	svc    *service.Service
	db     repository.Database
	logger *zap.Logger
}

// NewServer создаёт новый gRPC сервер
func NewServer(svc *service.Service, db repository.Database, logger *zap.Logger) *Server {
	return &Server{
		svc:    svc,
		db:     db,
		logger: logger,
	}
}

// Options содержит зависимости интерцепторов
type Options struct {
	TrustedSubnet *middleware.TrustedSubnet
	// Observer может быть nil
	Observer GRPCObserver
}

// NewGRPCServer собирает grpc.Server с цепочкой интерцепторов и регистрирует сервис
func NewGRPCServer(s *Server, opts Options) *grpc.Server {
	gs := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			LoggingInterceptor(s.logger, opts.Observer),
			TrustedSubnetInterceptor(opts.TrustedSubnet, s.logger),
			AuthInterceptor(s.svc, s.logger),
		),
	)
	proto.RegisterDealStatsServiceServer(gs, s)
	return gs
}

// RecordView учитывает просмотр
func (s *Server) RecordView(ctx context.Context, req *proto.DealRequest) (*proto.RecordViewResponse, error) {
	if err := s.svc.RecordView(ctx, req.DealID); err != nil {
		return nil, s.mapError(err)
	}
	return &proto.RecordViewResponse{Success: true}, nil
}

// RecordPurchaseClick учитывает клик «купить»
func (s *Server) RecordPurchaseClick(ctx context.Context, req *proto.DealRequest) (*proto.RecordPurchaseClickResponse, error) {
	counted, err := s.svc.RecordPurchaseClick(ctx, req.DealID)
	if err != nil {
		return nil, s.mapError(err)
	}
	return &proto.RecordPurchaseClickResponse{Success: true, Counted: counted}, nil
}

// ToggleLike переключает лайк текущего актора
func (s *Server) ToggleLike(ctx context.Context, req *proto.DealRequest) (*proto.ToggleLikeResponse, error) {
	actorKey, err := getActorKeyFromContext(ctx)
	if err != nil {
		return nil, err
	}
	res, err := s.svc.ToggleLike(ctx, req.DealID, actorKey)
	if err != nil {
		return nil, s.mapError(err)
	}
	return &proto.ToggleLikeResponse{Liked: res.Liked, Likes: res.Likes}, nil
}

// GetStats возвращает сводную статистику сделки
func (s *Server) GetStats(ctx context.Context, req *proto.DealRequest) (*proto.GetStatsResponse, error) {
	stats, err := s.svc.GetStats(ctx, req.DealID)
	if err != nil {
		return nil, s.mapError(err)
	}
	return &proto.GetStatsResponse{
		Views:          stats.Views,
		Likes:          stats.Likes,
		PurchaseClicks: stats.PurchaseClicks,
		Comments:       stats.Comments,
		LikedBy:        stats.LikedBy,
	}, nil
}

// CheckStoreName проверяет, занято ли имя магазина
func (s *Server) CheckStoreName(ctx context.Context, req *proto.CheckStoreNameRequest) (*proto.CheckStoreNameResponse, error) {
	exists, err := s.svc.CheckStoreName(ctx, req.Name)
	if err != nil {
		return nil, s.mapError(err)
	}
	return &proto.CheckStoreNameResponse{Exists: exists}, nil
}

// PurgeStats удаляет статистику сделки
func (s *Server) PurgeStats(ctx context.Context, req *proto.DealRequest) (*proto.PurgeStatsResponse, error) {
	if err := s.svc.PurgeStats(ctx, req.DealID); err != nil {
		return nil, s.mapError(err)
	}
	return &proto.PurgeStatsResponse{Success: true}, nil
}

// Ping проверяет состояние сервиса
func (s *Server) Ping(ctx context.Context, _ *proto.PingRequest) (*proto.PingResponse, error) {
	if s.db == nil {
		return &proto.PingResponse{DatabaseAvailable: false}, nil
	}
	err := s.db.PingContext(ctx)
	return &proto.PingResponse{DatabaseAvailable: err == nil}, nil
}

// getActorKeyFromContext извлекает ключ актора из контекста
func getActorKeyFromContext(ctx context.Context) (string, error) {
	if actorKey, ok := ctx.Value(actorKeyCtx).(string); ok && actorKey != "" {
		return actorKey, nil
	}
	return "", status.Error(codes.Unauthenticated, "actor not authenticated")
}

// mapError преобразует ошибки бизнес-логики в gRPC статусы
func (s *Server) mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, service.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, service.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, service.ErrStoreExists):
		return status.Error(codes.AlreadyExists, "store name already taken")
	default:
		return status.Error(codes.Internal, "internal error")
	}
}
