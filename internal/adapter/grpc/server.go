package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/simaogato/patrimony-backend/internal/domain"
	"github.com/simaogato/patrimony-backend/internal/usecase/lifecycle"
	"github.com/simaogato/patrimony-backend/internal/usecase/patrimony"
)

// errNotOwner is returned when the caller touches an asset of another owner
var errNotOwner = errors.New("asset belongs to another owner")

// Server implements the PatrimonyService gRPC server
type Server struct {
	AssetService     *lifecycle.AssetService
	PatrimonyService *patrimony.PatrimonyService
}

// NewServer creates a new gRPC server instance
func NewServer(assetService *lifecycle.AssetService, patrimonyService *patrimony.PatrimonyService) *Server {
	return &Server{
		AssetService:     assetService,
		PatrimonyService: patrimonyService,
	}
}

var _ PatrimonyServiceServer = (*Server)(nil)

// CreateAsset handles the CreateAsset RPC
func (s *Server) CreateAsset(ctx context.Context, req *CreateAssetRequest) (*AssetResponse, error) {
	ownerID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	asset, err := wireAssetToDomain(req.Asset)
	if err != nil {
		return nil, mapError(err)
	}
	// The caller always owns what it creates
	asset.OwnerID = ownerID

	created, err := s.AssetService.Create(ctx, asset)
	if err != nil {
		return nil, mapError(err)
	}

	return &AssetResponse{Asset: domainAssetToWire(created)}, nil
}

// GetAsset handles the GetAsset RPC
func (s *Server) GetAsset(ctx context.Context, req *GetAssetRequest) (*AssetResponse, error) {
	asset, err := s.ownedAsset(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	return &AssetResponse{Asset: domainAssetToWire(asset)}, nil
}

// ListAssets handles the ListAssets RPC
func (s *Server) ListAssets(ctx context.Context, req *ListAssetsRequest) (*ListAssetsResponse, error) {
	ownerID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	// Parse optional filters
	var category domain.AssetCategory
	if req.Category != "" {
		if category, err = domain.ParseAssetCategory(req.Category); err != nil {
			return nil, mapError(err)
		}
	}
	var assetType domain.AssetType
	if req.Type != "" {
		if assetType, err = domain.ParseAssetType(req.Type); err != nil {
			return nil, mapError(err)
		}
	}

	assets, err := s.AssetService.List(ctx, ownerID)
	if err != nil {
		return nil, mapError(err)
	}

	out := make([]Asset, 0, len(assets))
	for _, a := range assets {
		if category != "" && a.Category != category {
			continue
		}
		if assetType != "" && a.Type != assetType {
			continue
		}
		out = append(out, domainAssetToWire(a))
	}
	return &ListAssetsResponse{Assets: out}, nil
}

// GetAssetsByCategory handles the GetAssetsByCategory RPC
func (s *Server) GetAssetsByCategory(ctx context.Context, req *GetAssetsByCategoryRequest) (*GetAssetsByCategoryResponse, error) {
	ownerID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	grouped, err := s.AssetService.AssetsByCategory(ctx, ownerID)
	if err != nil {
		return nil, mapError(err)
	}

	out := make(map[string][]Asset, len(grouped))
	for category, assets := range grouped {
		list := make([]Asset, 0, len(assets))
		for _, a := range assets {
			list = append(list, domainAssetToWire(a))
		}
		out[string(category)] = list
	}
	return &GetAssetsByCategoryResponse{Assets: out}, nil
}

// UpdateAsset handles the UpdateAsset RPC
func (s *Server) UpdateAsset(ctx context.Context, req *UpdateAssetRequest) (*AssetResponse, error) {
	if _, err := s.ownedAsset(ctx, req.Asset.ID); err != nil {
		return nil, err
	}

	asset, err := wireAssetToDomain(req.Asset)
	if err != nil {
		return nil, mapError(err)
	}

	updated, err := s.AssetService.Update(ctx, asset)
	if err != nil {
		return nil, mapError(err)
	}
	return &AssetResponse{Asset: domainAssetToWire(updated)}, nil
}

// DeleteAsset handles the DeleteAsset RPC
func (s *Server) DeleteAsset(ctx context.Context, req *DeleteAssetRequest) (*DeleteAssetResponse, error) {
	if _, err := s.ownedAsset(ctx, req.ID); err != nil {
		return nil, err
	}

	if err := s.AssetService.Delete(ctx, req.ID); err != nil {
		return nil, mapError(err)
	}
	return &DeleteAssetResponse{}, nil
}

// AddValuation handles the AddValuation RPC
func (s *Server) AddValuation(ctx context.Context, req *AddValuationRequest) (*AssetResponse, error) {
	if _, err := s.ownedAsset(ctx, req.AssetID); err != nil {
		return nil, err
	}

	updated, err := s.AssetService.AddValuation(ctx, req.AssetID, wireValuationToDomain(req.Valuation))
	if err != nil {
		return nil, mapError(err)
	}
	return &AssetResponse{Asset: domainAssetToWire(updated)}, nil
}

// GetNetWorth handles the GetNetWorth RPC
func (s *Server) GetNetWorth(ctx context.Context, req *GetNetWorthRequest) (*NetWorthResponse, error) {
	ownerID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	res, err := s.PatrimonyService.GetNetWorth(ctx, ownerID)
	if err != nil {
		return nil, mapError(err)
	}
	return netWorthToWire(res), nil
}

// GetDistribution handles the GetDistribution RPC
func (s *Server) GetDistribution(ctx context.Context, req *GetDistributionRequest) (*DistributionResponse, error) {
	ownerID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	res, err := s.PatrimonyService.GetDistribution(ctx, ownerID)
	if err != nil {
		return nil, mapError(err)
	}
	return distributionToWire(res), nil
}

// GetEvolution handles the GetEvolution RPC
func (s *Server) GetEvolution(ctx context.Context, req *GetEvolutionRequest) (*EvolutionResponse, error) {
	ownerID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	res, err := s.PatrimonyService.GetEvolution(ctx, ownerID, req.StartDate, req.EndDate)
	if err != nil {
		return nil, mapError(err)
	}
	return evolutionToWire(res), nil
}

// GetSummary handles the GetSummary RPC
func (s *Server) GetSummary(ctx context.Context, req *GetSummaryRequest) (*SummaryResponse, error) {
	ownerID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	res, err := s.PatrimonyService.GetSummary(ctx, ownerID)
	if err != nil {
		return nil, mapError(err)
	}
	return summaryToWire(res), nil
}

// ownedAsset loads an asset and checks it belongs to the caller
func (s *Server) ownedAsset(ctx context.Context, id string) (*domain.Asset, error) {
	ownerID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, status.Error(codes.InvalidArgument, "asset id is required")
	}

	asset, err := s.AssetService.Get(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	if asset.OwnerID != ownerID {
		return nil, mapError(errNotOwner)
	}
	return asset, nil
}

func callerID(ctx context.Context) (string, error) {
	ownerID, ok := OwnerFromContext(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "missing owner id")
	}
	return ownerID, nil
}

// mapError maps domain errors to gRPC status codes
func mapError(err error) error {
	if err == nil {
		return nil
	}

	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		return status.Errorf(codes.InvalidArgument, "%s", err.Error())
	case errors.Is(err, domain.ErrAssetNotFound):
		return status.Errorf(codes.NotFound, "%s", err.Error())
	case errors.Is(err, errNotOwner):
		return status.Errorf(codes.PermissionDenied, "%s", err.Error())
	case errors.Is(err, domain.ErrVersionConflict):
		return status.Errorf(codes.Aborted, "%s", err.Error())
	case errors.Is(err, context.Canceled):
		return status.Errorf(codes.Canceled, "%s", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Errorf(codes.DeadlineExceeded, "%s", err.Error())
	}

	// Default to Internal error for unknown errors
	return status.Errorf(codes.Internal, "%s", err.Error())
}
