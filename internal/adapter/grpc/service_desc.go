package grpc

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the fully qualified gRPC service name
const ServiceName = "patrimony.v1.PatrimonyService"

// PatrimonyServiceServer is the server API for the patrimony service
type PatrimonyServiceServer interface {
	CreateAsset(context.Context, *CreateAssetRequest) (*AssetResponse, error)
	GetAsset(context.Context, *GetAssetRequest) (*AssetResponse, error)
	ListAssets(context.Context, *ListAssetsRequest) (*ListAssetsResponse, error)
	GetAssetsByCategory(context.Context, *GetAssetsByCategoryRequest) (*GetAssetsByCategoryResponse, error)
	UpdateAsset(context.Context, *UpdateAssetRequest) (*AssetResponse, error)
	DeleteAsset(context.Context, *DeleteAssetRequest) (*DeleteAssetResponse, error)
	AddValuation(context.Context, *AddValuationRequest) (*AssetResponse, error)
	GetNetWorth(context.Context, *GetNetWorthRequest) (*NetWorthResponse, error)
	GetDistribution(context.Context, *GetDistributionRequest) (*DistributionResponse, error)
	GetEvolution(context.Context, *GetEvolutionRequest) (*EvolutionResponse, error)
	GetSummary(context.Context, *GetSummaryRequest) (*SummaryResponse, error)
}

// PatrimonyServiceDesc describes the service for grpc.Server.RegisterService
var PatrimonyServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PatrimonyServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod("CreateAsset", PatrimonyServiceServer.CreateAsset),
		unaryMethod("GetAsset", PatrimonyServiceServer.GetAsset),
		unaryMethod("ListAssets", PatrimonyServiceServer.ListAssets),
		unaryMethod("GetAssetsByCategory", PatrimonyServiceServer.GetAssetsByCategory),
		unaryMethod("UpdateAsset", PatrimonyServiceServer.UpdateAsset),
		unaryMethod("DeleteAsset", PatrimonyServiceServer.DeleteAsset),
		unaryMethod("AddValuation", PatrimonyServiceServer.AddValuation),
		unaryMethod("GetNetWorth", PatrimonyServiceServer.GetNetWorth),
		unaryMethod("GetDistribution", PatrimonyServiceServer.GetDistribution),
		unaryMethod("GetEvolution", PatrimonyServiceServer.GetEvolution),
		unaryMethod("GetSummary", PatrimonyServiceServer.GetSummary),
	},
	Streams: []grpc.StreamDesc{},
}

// RegisterPatrimonyServiceServer registers srv on s
func RegisterPatrimonyServiceServer(s grpc.ServiceRegistrar, srv PatrimonyServiceServer) {
	s.RegisterService(&PatrimonyServiceDesc, srv)
}

// FullMethod returns the path a client invokes for method
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// unaryMethod adapts a typed server method into a grpc.MethodDesc
func unaryMethod[Req, Resp any](name string, call func(PatrimonyServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(PatrimonyServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: FullMethod(name),
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(PatrimonyServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}
