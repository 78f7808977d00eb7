package grpc

import (
	"context"
	"errors"
	"net"
	"strings"
	"sync"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tempizhere/dealhub/internal/grpc/proto"
	"github.com/tempizhere/dealhub/internal/middleware"
	"github.com/tempizhere/dealhub/internal/repository"
	"github.com/tempizhere/dealhub/internal/service"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// recordingObserver запоминает коды ответов
type recordingObserver struct {
	mu    sync.Mutex
	calls []string
}

func (o *recordingObserver) ObserveGRPC(method, code string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, method+" "+code)
}

func (o *recordingObserver) snapshot() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.calls...)
}

// startServer поднимает сервер на localhost и возвращает клиент
func startServer(t *testing.T, svc *service.Service, db repository.Database, cidr string, observer GRPCObserver) proto.DealStatsServiceClient {
	t.Helper()
	subnet, err := middleware.NewTrustedSubnet(cidr)
	require.NoError(t, err)

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	gs := NewGRPCServer(NewServer(svc, db, zap.NewNop()), Options{TrustedSubnet: subnet, Observer: observer})
	go func() { _ = gs.Serve(lis) }()
	t.Cleanup(gs.Stop)

	conn, err := grpc.NewClient(lis.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return proto.NewDealStatsServiceClient(conn)
}

func newMemoryService() *service.Service {
	return service.NewService(
		repository.NewMemoryStatsRepository(),
		repository.NewMemoryCommentRepository(),
		repository.NewMemoryStoreRepository(),
		"test-secret",
		zap.NewNop(),
	)
}

// withToken добавляет Bearer-токен в исходящие метаданные
func withToken(ctx context.Context, token string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+token)
}

func TestServer_Counters(t *testing.T) {
	ctx := context.Background()
	svc := newMemoryService()
	client := startServer(t, svc, nil, "", nil)

	token, err := svc.GenerateJWT("user:alice")
	require.NoError(t, err)
	authCtx := withToken(ctx, token)

	// Тест 1: Просмотры и клики
	_, err = client.RecordView(authCtx, &proto.DealRequest{DealID: "deal1"})
	require.NoError(t, err)
	click, err := client.RecordPurchaseClick(authCtx, &proto.DealRequest{DealID: "deal1"})
	require.NoError(t, err)
	assert.True(t, click.Counted)

	// Тест 2: Лайк привязан к актору из токена
	like, err := client.ToggleLike(authCtx, &proto.DealRequest{DealID: "deal1"})
	require.NoError(t, err)
	assert.Equal(t, &proto.ToggleLikeResponse{Liked: true, Likes: 1}, like)

	// Тест 3: Статистика доступна без токена
	stats, err := client.GetStats(ctx, &proto.DealRequest{DealID: "deal1"})
	require.NoError(t, err)
	assert.Equal(t, &proto.GetStatsResponse{
		Views:          1,
		Likes:          1,
		PurchaseClicks: 1,
		LikedBy:        []string{"user:alice"},
	}, stats)

	like, err = client.ToggleLike(authCtx, &proto.DealRequest{DealID: "deal1"})
	require.NoError(t, err)
	assert.Equal(t, &proto.ToggleLikeResponse{Liked: false, Likes: 0}, like)
}

func TestServer_GuestToken(t *testing.T) {
	ctx := context.Background()
	svc := newMemoryService()
	client := startServer(t, svc, nil, "", nil)

	var header metadata.MD
	_, err := client.ToggleLike(ctx, &proto.DealRequest{DealID: "deal1"}, grpc.Header(&header))
	require.NoError(t, err)

	auth := header.Get("authorization")
	require.Len(t, auth, 1, "guest token should be returned in header")
	actorKey, err := svc.ParseJWT(strings.TrimPrefix(auth[0], "Bearer "))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(actorKey, service.GuestPrefix))

	// Повторный вызов с выданным токеном снимает лайк
	like, err := client.ToggleLike(metadata.AppendToOutgoingContext(ctx, "authorization", auth[0]), &proto.DealRequest{DealID: "deal1"})
	require.NoError(t, err)
	assert.False(t, like.Liked)
}

func TestServer_Errors(t *testing.T) {
	ctx := context.Background()
	svc := newMemoryService()
	client := startServer(t, svc, nil, "", nil)

	tests := []struct {
		name         string
		call         func() error
		expectedCode codes.Code
	}{
		{
			name: "Invalid deal id",
			call: func() error {
				_, err := client.RecordView(ctx, &proto.DealRequest{DealID: "bad id"})
				return err
			},
			expectedCode: codes.InvalidArgument,
		},
		{
			name: "Empty store name",
			call: func() error {
				_, err := client.CheckStoreName(ctx, &proto.CheckStoreNameRequest{Name: " "})
				return err
			},
			expectedCode: codes.InvalidArgument,
		},
		{
			name: "Purge outside trusted subnet",
			call: func() error {
				_, err := client.PurgeStats(ctx, &proto.DealRequest{DealID: "deal1"})
				return err
			},
			expectedCode: codes.PermissionDenied,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			require.Error(t, err)
			assert.Equal(t, tt.expectedCode, status.Code(err))
		})
	}
}

func TestServer_PurgeTrusted(t *testing.T) {
	ctx := context.Background()
	svc := newMemoryService()
	observer := &recordingObserver{}
	client := startServer(t, svc, nil, "127.0.0.0/8", observer)

	_, err := client.RecordView(ctx, &proto.DealRequest{DealID: "deal1"})
	require.NoError(t, err)

	resp, err := client.PurgeStats(ctx, &proto.DealRequest{DealID: "deal1"})
	require.NoError(t, err)
	assert.True(t, resp.Success)

	stats, err := client.GetStats(ctx, &proto.DealRequest{DealID: "deal1"})
	require.NoError(t, err)
	assert.Zero(t, stats.Views)

	assert.Equal(t, []string{
		proto.MethodRecordView + " OK",
		proto.MethodPurgeStats + " OK",
		proto.MethodGetStats + " OK",
	}, observer.snapshot())
}

func TestServer_StorageFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	stats := repository.NewMockStatsRepository(ctrl)
	stats.EXPECT().IncrementViews(gomock.Any(), "deal1").Return(errors.New("connection refused"))

	svc := service.NewService(stats, repository.NewMemoryCommentRepository(), repository.NewMemoryStoreRepository(), "test-secret", zap.NewNop())
	client := startServer(t, svc, nil, "", nil)

	_, err := client.RecordView(context.Background(), &proto.DealRequest{DealID: "deal1"})
	require.Error(t, err)
	st, _ := status.FromError(err)
	assert.Equal(t, codes.Internal, st.Code())
	assert.Equal(t, "internal error", st.Message())
}

func TestServer_Ping(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// Тест 1: Без базы данных
	client := startServer(t, newMemoryService(), nil, "", nil)
	resp, err := client.Ping(ctx, &proto.PingRequest{})
	require.NoError(t, err)
	assert.False(t, resp.DatabaseAvailable)

	// Тест 2: База отвечает
	db := repository.NewMockDatabase(ctrl)
	db.EXPECT().PingContext(gomock.Any()).Return(nil)
	client = startServer(t, newMemoryService(), db, "", nil)
	resp, err = client.Ping(ctx, &proto.PingRequest{})
	require.NoError(t, err)
	assert.True(t, resp.DatabaseAvailable)
}

func TestUnimplementedServer(t *testing.T) {
	var srv proto.UnimplementedDealStatsServiceServer
	_, err := srv.GetStats(context.Background(), &proto.DealRequest{DealID: "deal1"})
	assert.Equal(t, codes.Unimplemented, status.Code(err))
}
