package grpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/simaogato/patrimony-backend/internal/adapter/repository/memory"
	"github.com/simaogato/patrimony-backend/internal/domain"
	"github.com/simaogato/patrimony-backend/internal/metrics"
	"github.com/simaogato/patrimony-backend/internal/usecase/lifecycle"
	"github.com/simaogato/patrimony-backend/internal/usecase/patrimony"
)

const testToken = "test-token-123"

// startServer serves a memory-backed patrimony service over an in-process listener
func startServer(t *testing.T) *Client {
	t.Helper()

	repo := memory.NewAssetRepository()
	m := metrics.New(nil)
	log := zerolog.Nop()
	server := NewServer(
		lifecycle.NewAssetService(repo, m, log),
		patrimony.NewPatrimonyService(repo, m, log),
	)

	lis := bufconn.Listen(1 << 20)
	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(LoggingInterceptor(log, m), AuthInterceptor(testToken, PublicMethods...)),
	)
	RegisterPatrimonyServiceServer(grpcServer, server)
	RegisterHealth(grpcServer)
	go func() {
		_ = grpcServer.Serve(lis)
	}()
	t.Cleanup(grpcServer.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return NewClient(conn)
}

func as(owner string) context.Context {
	return WithCaller(context.Background(), testToken, owner)
}

func utc(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func amount(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func requireCode(t *testing.T, err error, code codes.Code) {
	t.Helper()
	require.Error(t, err)
	st, ok := status.FromError(err)
	require.True(t, ok, "error should be a gRPC status")
	assert.Equal(t, code, st.Code(), st.Message())
}

func TestServer_NetWorthAfterCreate(t *testing.T) {
	client := startServer(t)
	ctx := as("owner-1")

	created, err := client.CreateAsset(ctx, &CreateAssetRequest{Asset: Asset{
		Name:             "Savings",
		Type:             "BANK_ACCOUNT",
		Category:         "LIQUID",
		Currency:         "EUR",
		AcquisitionValue: amount("1000"),
		AcquisitionDate:  utc(2024, 1, 1),
	}})
	require.NoError(t, err)
	assert.NotEmpty(t, created.Asset.ID)
	assert.Equal(t, "owner-1", created.Asset.OwnerID)
	require.True(t, created.Asset.CurrentValue.Valid)
	assert.True(t, created.Asset.CurrentValue.Decimal.Equal(decimal.NewFromInt(1000)))
	require.Len(t, created.Asset.ValuationHistory, 1)
	assert.Equal(t, domain.SourceInitial, created.Asset.ValuationHistory[0].Source)

	_, err = client.CreateAsset(ctx, &CreateAssetRequest{Asset: Asset{
		Name:         "Credit card",
		Type:         "LOAN",
		Category:     "LIABILITY",
		Currency:     "EUR",
		CurrentValue: amount("200"),
	}})
	require.NoError(t, err)

	nw, err := client.GetNetWorth(ctx, &GetNetWorthRequest{})
	require.NoError(t, err)
	assert.True(t, nw.TotalAssets.Equal(decimal.NewFromInt(1000)))
	assert.True(t, nw.TotalLiabilities.Equal(decimal.NewFromInt(200)))
	assert.True(t, nw.NetWorth.Equal(decimal.NewFromInt(800)))

	other, err := client.GetNetWorth(as("owner-2"), &GetNetWorthRequest{})
	require.NoError(t, err)
	assert.True(t, other.NetWorth.IsZero())
}

func TestServer_EvolutionAndValuations(t *testing.T) {
	client := startServer(t)
	ctx := as("owner-1")

	created, err := client.CreateAsset(ctx, &CreateAssetRequest{Asset: Asset{
		Name:           "World ETF",
		Type:           "ETF",
		Category:       "INVESTMENT",
		Currency:       "EUR",
		CurrentValue:   amount("100"),
		LastUpdateDate: utc(2024, 1, 1),
	}})
	require.NoError(t, err)

	updated, err := client.AddValuation(ctx, &AddValuationRequest{
		AssetID: created.Asset.ID,
		Valuation: Valuation{
			Value:         decimal.NewFromInt(150),
			ValuationDate: utc(2024, 6, 1),
		},
	})
	require.NoError(t, err)
	assert.True(t, updated.Asset.CurrentValue.Decimal.Equal(decimal.NewFromInt(150)))
	require.Len(t, updated.Asset.ValuationHistory, 2)
	assert.Equal(t, domain.SourceManual, updated.Asset.ValuationHistory[1].Source)

	evo, err := client.GetEvolution(ctx, &GetEvolutionRequest{
		StartDate: utc(2024, 1, 1),
		EndDate:   utc(2024, 12, 1),
	})
	require.NoError(t, err)
	require.Len(t, evo.Points, 3)
	assert.True(t, evo.Points[0].NetWorth.Equal(decimal.NewFromInt(100)))
	assert.True(t, evo.Points[1].Date.Equal(*utc(2024, 6, 1)))
	assert.True(t, evo.Points[1].NetWorth.Equal(decimal.NewFromInt(150)))
	assert.True(t, evo.Points[2].Date.Equal(*utc(2024, 12, 1)))
	assert.True(t, evo.Points[2].NetWorth.Equal(decimal.NewFromInt(150)))
	require.NotNil(t, evo.TotalChangeAmount)
	assert.True(t, evo.TotalChangeAmount.Equal(decimal.NewFromInt(50)))
	require.NotNil(t, evo.TotalChangePercent)
	assert.True(t, evo.TotalChangePercent.Equal(decimal.NewFromInt(50)))

	_, err = client.GetEvolution(ctx, &GetEvolutionRequest{
		StartDate: utc(2024, 12, 1),
		EndDate:   utc(2024, 1, 1),
	})
	requireCode(t, err, codes.InvalidArgument)
}

func TestServer_UpdateListAndDistribution(t *testing.T) {
	client := startServer(t)
	ctx := as("owner-1")

	checking, err := client.CreateAsset(ctx, &CreateAssetRequest{Asset: Asset{
		Name: "Checking", Type: "BANK_ACCOUNT", Category: "LIQUID", Currency: "EUR", CurrentValue: amount("100"),
	}})
	require.NoError(t, err)
	_, err = client.CreateAsset(ctx, &CreateAssetRequest{Asset: Asset{
		Name: "Stocks", Type: "STOCK", Category: "INVESTMENT", Currency: "EUR", CurrentValue: amount("200"),
	}})
	require.NoError(t, err)

	next := checking.Asset
	next.CurrentValue = amount("300")
	next.Description = "main account"
	updated, err := client.UpdateAsset(ctx, &UpdateAssetRequest{Asset: next})
	require.NoError(t, err)
	assert.Equal(t, "main account", updated.Asset.Description)
	require.Len(t, updated.Asset.ValuationHistory, 2)
	assert.Equal(t, domain.SourceManualUpdate, updated.Asset.ValuationHistory[1].Source)

	// Resending the same payload carries an old version but records nothing new
	again, err := client.UpdateAsset(ctx, &UpdateAssetRequest{Asset: next})
	require.NoError(t, err)
	assert.Len(t, again.Asset.ValuationHistory, 2)

	liquid, err := client.ListAssets(ctx, &ListAssetsRequest{Category: "LIQUID"})
	require.NoError(t, err)
	require.Len(t, liquid.Assets, 1)
	assert.Equal(t, "Checking", liquid.Assets[0].Name)

	all, err := client.ListAssets(ctx, &ListAssetsRequest{})
	require.NoError(t, err)
	assert.Len(t, all.Assets, 2)

	grouped, err := client.GetAssetsByCategory(ctx, &GetAssetsByCategoryRequest{})
	require.NoError(t, err)
	assert.Len(t, grouped.Assets["LIQUID"], 1)
	assert.Len(t, grouped.Assets["INVESTMENT"], 1)

	dist, err := client.GetDistribution(ctx, &GetDistributionRequest{})
	require.NoError(t, err)
	assert.True(t, dist.TotalAssets.Equal(decimal.NewFromInt(500)))
	assert.True(t, dist.PercentageByCategory["LIQUID"].Equal(decimal.NewFromInt(60)))
	assert.True(t, dist.PercentageByType["STOCK"].Equal(decimal.NewFromInt(40)))

	summary, err := client.GetSummary(ctx, &GetSummaryRequest{})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalCount)
	assert.Equal(t, 1, summary.CountByCategory["INVESTMENT"])
	assert.True(t, summary.NetWorth.Equal(decimal.NewFromInt(500)))
}

func TestServer_Ownership(t *testing.T) {
	client := startServer(t)

	created, err := client.CreateAsset(as("owner-1"), &CreateAssetRequest{Asset: Asset{
		Name: "Flat", Type: "REAL_ESTATE", Category: "TANGIBLE", Currency: "EUR", CurrentValue: amount("250000"),
	}})
	require.NoError(t, err)
	id := created.Asset.ID

	intruder := as("owner-2")

	_, err = client.GetAsset(intruder, &GetAssetRequest{ID: id})
	requireCode(t, err, codes.PermissionDenied)

	_, err = client.AddValuation(intruder, &AddValuationRequest{AssetID: id, Valuation: Valuation{Value: decimal.NewFromInt(1)}})
	requireCode(t, err, codes.PermissionDenied)

	hijack := created.Asset
	hijack.Name = "Mine now"
	_, err = client.UpdateAsset(intruder, &UpdateAssetRequest{Asset: hijack})
	requireCode(t, err, codes.PermissionDenied)

	_, err = client.DeleteAsset(intruder, &DeleteAssetRequest{ID: id})
	requireCode(t, err, codes.PermissionDenied)

	got, err := client.GetAsset(as("owner-1"), &GetAssetRequest{ID: id})
	require.NoError(t, err)
	assert.Equal(t, "Flat", got.Asset.Name)

	_, err = client.DeleteAsset(as("owner-1"), &DeleteAssetRequest{ID: id})
	require.NoError(t, err)

	_, err = client.GetAsset(as("owner-1"), &GetAssetRequest{ID: id})
	requireCode(t, err, codes.NotFound)
}

func TestServer_RejectsBadInput(t *testing.T) {
	client := startServer(t)
	ctx := as("owner-1")

	tests := []struct {
		name  string
		asset Asset
	}{
		{"Lowercase type", Asset{Name: "A", Type: "stock", Category: "INVESTMENT", Currency: "EUR", CurrentValue: amount("1")}},
		{"Unknown category", Asset{Name: "A", Type: "STOCK", Category: "SHARES", Currency: "EUR", CurrentValue: amount("1")}},
		{"Negative value", Asset{Name: "A", Type: "STOCK", Category: "INVESTMENT", Currency: "EUR", CurrentValue: amount("-1")}},
		{"No value", Asset{Name: "A", Type: "STOCK", Category: "INVESTMENT", Currency: "EUR"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.CreateAsset(ctx, &CreateAssetRequest{Asset: tt.asset})
			requireCode(t, err, codes.InvalidArgument)
		})
	}

	_, err := client.GetAsset(ctx, &GetAssetRequest{})
	requireCode(t, err, codes.InvalidArgument)

	_, err = client.ListAssets(ctx, &ListAssetsRequest{Type: "NOPE"})
	requireCode(t, err, codes.InvalidArgument)
}

func TestServer_RequiresCredentials(t *testing.T) {
	client := startServer(t)

	_, err := client.GetNetWorth(context.Background(), &GetNetWorthRequest{})
	requireCode(t, err, codes.Unauthenticated)

	_, err = client.GetNetWorth(WithCaller(context.Background(), "wrong", "owner-1"), &GetNetWorthRequest{})
	requireCode(t, err, codes.Unauthenticated)
}

func TestServer_HealthIsPublic(t *testing.T) {
	client := startServer(t)
	health := healthpb.NewHealthClient(client.cc)

	resp, err := health.Check(context.Background(), &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())

	// Same call over the JSON codec
	resp, err = health.Check(context.Background(), &healthpb.HealthCheckRequest{}, grpc.CallContentSubtype(CodecName))
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}

func TestMapError(t *testing.T) {
	tests := []struct {
		err  error
		code codes.Code
	}{
		{domain.NewValidationError("name", "asset name cannot be empty"), codes.InvalidArgument},
		{fmt.Errorf("asset x: %w", domain.ErrAssetNotFound), codes.NotFound},
		{fmt.Errorf("save asset x: %w", domain.ErrVersionConflict), codes.Aborted},
		{errNotOwner, codes.PermissionDenied},
		{domain.NewPersistenceError("list assets", context.DeadlineExceeded), codes.DeadlineExceeded},
		{domain.NewPersistenceError("list assets", errors.New("connection refused")), codes.Internal},
	}
	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			assert.Equal(t, tt.code, status.Code(mapError(tt.err)))
		})
	}
	assert.NoError(t, mapError(nil))
}
