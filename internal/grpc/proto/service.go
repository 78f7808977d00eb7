package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ServiceName содержит полное имя gRPC сервиса
const ServiceName = "dealhub.v1.DealStatsService"

// Полные имена методов для интерцепторов
const (
	MethodRecordView          = "/" + ServiceName + "/RecordView"
	MethodRecordPurchaseClick = "/" + ServiceName + "/RecordPurchaseClick"
	MethodToggleLike          = "/" + ServiceName + "/ToggleLike"
	MethodGetStats            = "/" + ServiceName + "/GetStats"
	MethodCheckStoreName      = "/" + ServiceName + "/CheckStoreName"
	MethodPurgeStats          = "/" + ServiceName + "/PurgeStats"
	MethodPing                = "/" + ServiceName + "/Ping"
)

// DealStatsServiceServer представляет интерфейс gRPC сервиса
type DealStatsServiceServer interface {
	RecordView(ctx context.Context, req *DealRequest) (*RecordViewResponse, error)
	RecordPurchaseClick(ctx context.Context, req *DealRequest) (*RecordPurchaseClickResponse, error)
	ToggleLike(ctx context.Context, req *DealRequest) (*ToggleLikeResponse, error)
	GetStats(ctx context.Context, req *DealRequest) (*GetStatsResponse, error)
	CheckStoreName(ctx context.Context, req *CheckStoreNameRequest) (*CheckStoreNameResponse, error)
	PurgeStats(ctx context.Context, req *DealRequest) (*PurgeStatsResponse, error)
	Ping(ctx context.Context, req *PingRequest) (*PingResponse, error)
}

// UnimplementedDealStatsServiceServer отвечает Unimplemented на все методы
type UnimplementedDealStatsServiceServer struct{}

func (UnimplementedDealStatsServiceServer) RecordView(context.Context, *DealRequest) (*RecordViewResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method RecordView not implemented")
}

func (UnimplementedDealStatsServiceServer) RecordPurchaseClick(context.Context, *DealRequest) (*RecordPurchaseClickResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method RecordPurchaseClick not implemented")
}

func (UnimplementedDealStatsServiceServer) ToggleLike(context.Context, *DealRequest) (*ToggleLikeResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ToggleLike not implemented")
}

func (UnimplementedDealStatsServiceServer) GetStats(context.Context, *DealRequest) (*GetStatsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetStats not implemented")
}

func (UnimplementedDealStatsServiceServer) CheckStoreName(context.Context, *CheckStoreNameRequest) (*CheckStoreNameResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CheckStoreName not implemented")
}

func (UnimplementedDealStatsServiceServer) PurgeStats(context.Context, *DealRequest) (*PurgeStatsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method PurgeStats not implemented")
}

func (UnimplementedDealStatsServiceServer) Ping(context.Context, *PingRequest) (*PingResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Ping not implemented")
}

// unaryHandler строит обработчик метода с десериализацией запроса
func unaryHandler[Req any, Resp any](fullMethod string, call func(DealStatsServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(DealStatsServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(DealStatsServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ServiceDesc описывает сервис для grpc.Server
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DealStatsServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "RecordView", Handler: unaryHandler(MethodRecordView, DealStatsServiceServer.RecordView)},
		{MethodName: "RecordPurchaseClick", Handler: unaryHandler(MethodRecordPurchaseClick, DealStatsServiceServer.RecordPurchaseClick)},
		{MethodName: "ToggleLike", Handler: unaryHandler(MethodToggleLike, DealStatsServiceServer.ToggleLike)},
		{MethodName: "GetStats", Handler: unaryHandler(MethodGetStats, DealStatsServiceServer.GetStats)},
		{MethodName: "CheckStoreName", Handler: unaryHandler(MethodCheckStoreName, DealStatsServiceServer.CheckStoreName)},
		{MethodName: "PurgeStats", Handler: unaryHandler(MethodPurgeStats, DealStatsServiceServer.PurgeStats)},
		{MethodName: "Ping", Handler: unaryHandler(MethodPing, DealStatsServiceServer.Ping)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "dealhub/v1/deal_stats.proto",
}

// RegisterDealStatsServiceServer регистрирует реализацию сервиса в gRPC сервере
func RegisterDealStatsServiceServer(s grpc.ServiceRegistrar, srv DealStatsServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// DealStatsServiceClient представляет клиент сервиса
type DealStatsServiceClient interface {
	RecordView(ctx context.Context, in *DealRequest, opts ...grpc.CallOption) (*RecordViewResponse, error)
	RecordPurchaseClick(ctx context.Context, in *DealRequest, opts ...grpc.CallOption) (*RecordPurchaseClickResponse, error)
	ToggleLike(ctx context.Context, in *DealRequest, opts ...grpc.CallOption) (*ToggleLikeResponse, error)
	GetStats(ctx context.Context, in *DealRequest, opts ...grpc.CallOption) (*GetStatsResponse, error)
	CheckStoreName(ctx context.Context, in *CheckStoreNameRequest, opts ...grpc.CallOption) (*CheckStoreNameResponse, error)
	PurgeStats(ctx context.Context, in *DealRequest, opts ...grpc.CallOption) (*PurgeStatsResponse, error)
	Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error)
}

type dealStatsServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewDealStatsServiceClient создаёт клиент поверх соединения.
// Все вызовы идут с JSON-кодеком.
func NewDealStatsServiceClient(cc grpc.ClientConnInterface) DealStatsServiceClient {
	return &dealStatsServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in interface{}, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *dealStatsServiceClient) RecordView(ctx context.Context, in *DealRequest, opts ...grpc.CallOption) (*RecordViewResponse, error) {
	return invoke[RecordViewResponse](ctx, c.cc, MethodRecordView, in, opts)
}

func (c *dealStatsServiceClient) RecordPurchaseClick(ctx context.Context, in *DealRequest, opts ...grpc.CallOption) (*RecordPurchaseClickResponse, error) {
	return invoke[RecordPurchaseClickResponse](ctx, c.cc, MethodRecordPurchaseClick, in, opts)
}

func (c *dealStatsServiceClient) ToggleLike(ctx context.Context, in *DealRequest, opts ...grpc.CallOption) (*ToggleLikeResponse, error) {
	return invoke[ToggleLikeResponse](ctx, c.cc, MethodToggleLike, in, opts)
}

func (c *dealStatsServiceClient) GetStats(ctx context.Context, in *DealRequest, opts ...grpc.CallOption) (*GetStatsResponse, error) {
	return invoke[GetStatsResponse](ctx, c.cc, MethodGetStats, in, opts)
}

func (c *dealStatsServiceClient) CheckStoreName(ctx context.Context, in *CheckStoreNameRequest, opts ...grpc.CallOption) (*CheckStoreNameResponse, error) {
	return invoke[CheckStoreNameResponse](ctx, c.cc, MethodCheckStoreName, in, opts)
}

func (c *dealStatsServiceClient) PurgeStats(ctx context.Context, in *DealRequest, opts ...grpc.CallOption) (*PurgeStatsResponse, error) {
	return invoke[PurgeStatsResponse](ctx, c.cc, MethodPurgeStats, in, opts)
}

func (c *dealStatsServiceClient) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingResponse](ctx, c.cc, MethodPing, in, opts)
}
