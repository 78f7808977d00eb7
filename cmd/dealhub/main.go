// Command dealhub запускает HTTP и gRPC API статистики сделок.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tempizhere/dealhub/internal/app"
	"github.com/tempizhere/dealhub/internal/config"
	grpcserver "github.com/tempizhere/dealhub/internal/grpc"
	"github.com/tempizhere/dealhub/internal/log"
	"github.com/tempizhere/dealhub/internal/metrics"
	"github.com/tempizhere/dealhub/internal/middleware"
	"github.com/tempizhere/dealhub/internal/repository"
	"github.com/tempizhere/dealhub/internal/service"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/option"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		panic(err)
	}
}

func run() error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.NewConfig(os.Args[1:])
	if err != nil {
		return err
	}

	logger, err := log.NewLogger(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := buildStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer deps.close(logger)

	m := metrics.New()
	svc := service.NewService(deps.stats, deps.comments, deps.stores, cfg.JWTSecret, logger,
		service.WithEventRecorder(m),
		service.WithTokenTTL(cfg.CookieTTL),
	)

	subnet, err := middleware.NewTrustedSubnet(cfg.TrustedSubnet)
	if err != nil {
		return err
	}

	var limiter middleware.RateLimiter
	if cfg.RateLimit > 0 {
		if deps.redis != nil {
			limiter = middleware.NewRedisLimiter(deps.redis, cfg.RateLimit, cfg.RateWindow)
		} else {
			limiter = middleware.NewLocalLimiter(cfg.RateLimit, cfg.RateWindow)
		}
	}

	appInstance := app.NewApp(svc, deps.db, logger)
	httpServer := &http.Server{
		Addr: cfg.RunAddr,
		Handler: appInstance.NewRouter(app.RouterOptions{
			CookieTTL:     cfg.CookieTTL,
			TrustedSubnet: subnet,
			Limiter:       limiter,
			Metrics:       m,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	grpcServer := grpcserver.NewGRPCServer(
		grpcserver.NewServer(svc, deps.db, logger),
		grpcserver.Options{TrustedSubnet: subnet, Observer: m},
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting HTTP server", zap.String("address", cfg.RunAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	if cfg.GRPCAddr != "" {
		g.Go(func() error {
			lis, err := net.Listen("tcp", cfg.GRPCAddr)
			if err != nil {
				return fmt.Errorf("grpc listen: %w", err)
			}
			logger.Info("Starting gRPC server", zap.String("address", cfg.GRPCAddr))
			return grpcServer.Serve(lis)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		grpcServer.GracefulStop()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// storage содержит выбранные хранилища и их ресурсы
type storage struct {
	stats    repository.StatsRepository
	comments repository.CommentRepository
	stores   repository.StoreRepository
	db       repository.Database
	redis    *redis.Client
	closers  []func() error
}

func (s *storage) close(logger *zap.Logger) {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			logger.Warn("Failed to close storage", zap.Error(err))
		}
	}
}

// buildStorage выбирает хранилища по конфигурации.
// Счётчики: Firestore, Redis, PostgreSQL, файл, память в порядке приоритета.
func buildStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*storage, error) {
	s := &storage{}

	db, err := app.NewDB(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	if db != nil {
		s.db = db
		s.closers = append(s.closers, db.Close)
	}

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
		s.closers = append(s.closers, rdb.Close)
		if err := rdb.Ping(ctx).Err(); err != nil {
			s.close(logger)
			return nil, fmt.Errorf("redis: %w", err)
		}
		s.redis = rdb
	}

	switch {
	case cfg.FirestoreProjectID != "":
		var opts []option.ClientOption
		if cfg.FirestoreCredentials != "" {
			opts = append(opts, option.WithCredentialsFile(cfg.FirestoreCredentials))
		}
		repo, err := repository.NewFirestoreStatsRepository(ctx, cfg.FirestoreProjectID, logger, opts...)
		if err != nil {
			s.close(logger)
			return nil, fmt.Errorf("firestore: %w", err)
		}
		s.closers = append(s.closers, repo.Close)
		s.stats = repo
		logger.Info("Using Firestore stats storage", zap.String("project", cfg.FirestoreProjectID))
	case s.redis != nil:
		s.stats = repository.NewRedisStatsRepository(s.redis, logger)
		logger.Info("Using Redis stats storage", zap.String("address", cfg.RedisAddr))
	case s.db != nil:
		repo, err := repository.NewPostgresStatsRepository(s.db, logger)
		if err != nil {
			s.close(logger)
			return nil, err
		}
		s.stats = repo
		logger.Info("Using PostgreSQL stats storage")
	case cfg.FileStoragePath != "":
		repo, err := repository.NewFileStatsRepository(cfg.FileStoragePath, logger)
		if err != nil {
			s.close(logger)
			return nil, fmt.Errorf("file storage: %w", err)
		}
		s.closers = append(s.closers, repo.Close)
		s.stats = repo
		logger.Info("Using file stats storage", zap.String("path", cfg.FileStoragePath))
	default:
		s.stats = repository.NewMemoryStatsRepository()
		logger.Info("Using in-memory stats storage")
	}

	if cfg.DatabaseDSN != "" || cfg.CommentsDBPath != "" {
		dialector, err := repository.CommentsDialector(cfg.DatabaseDSN, cfg.CommentsDBPath)
		if err != nil {
			s.close(logger)
			return nil, err
		}
		repo, err := repository.NewGormCommentRepository(dialector, logger)
		if err != nil {
			s.close(logger)
			return nil, fmt.Errorf("comments: %w", err)
		}
		s.closers = append(s.closers, repo.Close)
		s.comments = repo
	} else {
		s.comments = repository.NewMemoryCommentRepository()
	}

	if s.db != nil {
		repo, err := repository.NewPostgresStoreRepository(s.db, logger)
		if err != nil {
			s.close(logger)
			return nil, err
		}
		s.stores = repo
	} else {
		s.stores = repository.NewMemoryStoreRepository()
	}

	return s, nil
}
