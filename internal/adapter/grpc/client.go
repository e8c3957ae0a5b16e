package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// Client calls the patrimony service over a client connection using the JSON codec
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient creates a new patrimony service client
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// WithCaller attaches the API token and owner id the server's AuthInterceptor expects
func WithCaller(ctx context.Context, token, ownerID string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, AuthorizationHeader, token, OwnerHeader, ownerID)
}

func (c *Client) CreateAsset(ctx context.Context, in *CreateAssetRequest, opts ...grpc.CallOption) (*AssetResponse, error) {
	out := new(AssetResponse)
	if err := c.invoke(ctx, "CreateAsset", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetAsset(ctx context.Context, in *GetAssetRequest, opts ...grpc.CallOption) (*AssetResponse, error) {
	out := new(AssetResponse)
	if err := c.invoke(ctx, "GetAsset", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListAssets(ctx context.Context, in *ListAssetsRequest, opts ...grpc.CallOption) (*ListAssetsResponse, error) {
	out := new(ListAssetsResponse)
	if err := c.invoke(ctx, "ListAssets", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetAssetsByCategory(ctx context.Context, in *GetAssetsByCategoryRequest, opts ...grpc.CallOption) (*GetAssetsByCategoryResponse, error) {
	out := new(GetAssetsByCategoryResponse)
	if err := c.invoke(ctx, "GetAssetsByCategory", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UpdateAsset(ctx context.Context, in *UpdateAssetRequest, opts ...grpc.CallOption) (*AssetResponse, error) {
	out := new(AssetResponse)
	if err := c.invoke(ctx, "UpdateAsset", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) DeleteAsset(ctx context.Context, in *DeleteAssetRequest, opts ...grpc.CallOption) (*DeleteAssetResponse, error) {
	out := new(DeleteAssetResponse)
	if err := c.invoke(ctx, "DeleteAsset", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AddValuation(ctx context.Context, in *AddValuationRequest, opts ...grpc.CallOption) (*AssetResponse, error) {
	out := new(AssetResponse)
	if err := c.invoke(ctx, "AddValuation", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetNetWorth(ctx context.Context, in *GetNetWorthRequest, opts ...grpc.CallOption) (*NetWorthResponse, error) {
	out := new(NetWorthResponse)
	if err := c.invoke(ctx, "GetNetWorth", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetDistribution(ctx context.Context, in *GetDistributionRequest, opts ...grpc.CallOption) (*DistributionResponse, error) {
	out := new(DistributionResponse)
	if err := c.invoke(ctx, "GetDistribution", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetEvolution(ctx context.Context, in *GetEvolutionRequest, opts ...grpc.CallOption) (*EvolutionResponse, error) {
	out := new(EvolutionResponse)
	if err := c.invoke(ctx, "GetEvolution", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetSummary(ctx context.Context, in *GetSummaryRequest, opts ...grpc.CallOption) (*SummaryResponse, error) {
	out := new(SummaryResponse)
	if err := c.invoke(ctx, "GetSummary", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) invoke(ctx context.Context, method string, in, out any, opts ...grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	return c.cc.Invoke(ctx, FullMethod(method), in, out, opts...)
}
