package grpc

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/simaogato/patrimony-backend/internal/domain"
	"github.com/simaogato/patrimony-backend/internal/usecase/patrimony"
)

// Decimals travel as JSON strings (shopspring's default encoding), times as RFC 3339.

// Valuation is the wire form of a valuation record
type Valuation struct {
	ID            string          `json:"id,omitempty"`
	AssetID       string          `json:"assetId,omitempty"`
	Value         decimal.Decimal `json:"value"`
	ValuationDate *time.Time      `json:"valuationDate,omitempty"`
	Currency      string          `json:"currency,omitempty"`
	Source        string          `json:"source,omitempty"`
}

// Asset is the wire form of an asset
type Asset struct {
	ID               string              `json:"id,omitempty"`
	OwnerID          string              `json:"ownerId,omitempty"`
	Name             string              `json:"name"`
	Description      string              `json:"description,omitempty"`
	Type             string              `json:"type"`
	Category         string              `json:"category"`
	Currency         string              `json:"currency"`
	CurrentValue     decimal.NullDecimal `json:"currentValue"`
	AcquisitionValue decimal.NullDecimal `json:"acquisitionValue"`
	AcquisitionDate  *time.Time          `json:"acquisitionDate,omitempty"`
	LastUpdateDate   *time.Time          `json:"lastUpdateDate,omitempty"`
	Attributes       map[string]string   `json:"attributes,omitempty"`
	ValuationHistory []Valuation         `json:"valuationHistory,omitempty"`
	Version          int64               `json:"version,omitempty"`
}

type CreateAssetRequest struct {
	Asset Asset `json:"asset"`
}

type GetAssetRequest struct {
	ID string `json:"id"`
}

// ListAssetsRequest optionally filters by category and type
type ListAssetsRequest struct {
	Category string `json:"category,omitempty"`
	Type     string `json:"type,omitempty"`
}

type ListAssetsResponse struct {
	Assets []Asset `json:"assets"`
}

type GetAssetsByCategoryRequest struct{}

type GetAssetsByCategoryResponse struct {
	Assets map[string][]Asset `json:"assets"`
}

// UpdateAssetRequest carries the full asset; its history is ignored
type UpdateAssetRequest struct {
	Asset Asset `json:"asset"`
}

type DeleteAssetRequest struct {
	ID string `json:"id"`
}

type DeleteAssetResponse struct{}

type AddValuationRequest struct {
	AssetID   string    `json:"assetId"`
	Valuation Valuation `json:"valuation"`
}

// AssetResponse wraps the asset returned by every mutating call
type AssetResponse struct {
	Asset Asset `json:"asset"`
}

type GetNetWorthRequest struct{}

type NetWorthResponse struct {
	TotalAssets      decimal.Decimal `json:"totalAssets"`
	TotalLiabilities decimal.Decimal `json:"totalLiabilities"`
	NetWorth         decimal.Decimal `json:"netWorth"`
	CalculatedAt     time.Time       `json:"calculatedAt"`
}

type GetDistributionRequest struct{}

type DistributionResponse struct {
	TotalAssets          decimal.Decimal            `json:"totalAssets"`
	AmountByCategory     map[string]decimal.Decimal `json:"amountByCategory"`
	PercentageByCategory map[string]decimal.Decimal `json:"percentageByCategory"`
	AmountByType         map[string]decimal.Decimal `json:"amountByType"`
	PercentageByType     map[string]decimal.Decimal `json:"percentageByType"`
	CalculatedAt         time.Time                  `json:"calculatedAt"`
}

// GetEvolutionRequest bounds are optional; see PatrimonyService.GetEvolution
type GetEvolutionRequest struct {
	StartDate *time.Time `json:"startDate,omitempty"`
	EndDate   *time.Time `json:"endDate,omitempty"`
}

type EvolutionPoint struct {
	Date             time.Time       `json:"date"`
	TotalAssets      decimal.Decimal `json:"totalAssets"`
	TotalLiabilities decimal.Decimal `json:"totalLiabilities"`
	NetWorth         decimal.Decimal `json:"netWorth"`
}

type EvolutionResponse struct {
	StartDate          time.Time        `json:"startDate"`
	EndDate            time.Time        `json:"endDate"`
	Points             []EvolutionPoint `json:"points"`
	TotalChangeAmount  *decimal.Decimal `json:"totalChangeAmount,omitempty"`
	TotalChangePercent *decimal.Decimal `json:"totalChangePercent,omitempty"`
}

type GetSummaryRequest struct{}

type SummaryResponse struct {
	TotalAssets      decimal.Decimal            `json:"totalAssets"`
	TotalLiabilities decimal.Decimal            `json:"totalLiabilities"`
	NetWorth         decimal.Decimal            `json:"netWorth"`
	AmountByCategory map[string]decimal.Decimal `json:"amountByCategory"`
	AmountByType     map[string]decimal.Decimal `json:"amountByType"`
	CountByCategory  map[string]int             `json:"countByCategory"`
	TotalCount       int                        `json:"totalCount"`
}

// domainAssetToWire converts a domain asset to its wire form
func domainAssetToWire(a *domain.Asset) Asset {
	out := Asset{
		ID:               a.ID,
		OwnerID:          a.OwnerID,
		Name:             a.Name,
		Description:      a.Description,
		Type:             string(a.Type),
		Category:         string(a.Category),
		Currency:         a.Currency,
		CurrentValue:     a.CurrentValue,
		AcquisitionValue: a.AcquisitionValue,
		AcquisitionDate:  a.AcquisitionDate,
		LastUpdateDate:   a.LastUpdateDate,
		Attributes:       a.Attributes,
		Version:          a.Version,
	}
	out.ValuationHistory = make([]Valuation, 0, len(a.ValuationHistory))
	for _, v := range a.ValuationHistory {
		date := v.ValuationDate
		out.ValuationHistory = append(out.ValuationHistory, Valuation{
			ID:            v.ID,
			AssetID:       v.AssetID,
			Value:         v.Value,
			ValuationDate: &date,
			Currency:      v.Currency,
			Source:        v.Source,
		})
	}
	return out
}

// wireAssetToDomain parses enum names; values are validated by the lifecycle service
func wireAssetToDomain(a Asset) (*domain.Asset, error) {
	assetType, err := domain.ParseAssetType(a.Type)
	if err != nil {
		return nil, err
	}
	category, err := domain.ParseAssetCategory(a.Category)
	if err != nil {
		return nil, err
	}

	out := &domain.Asset{
		ID:               a.ID,
		OwnerID:          a.OwnerID,
		Name:             a.Name,
		Description:      a.Description,
		Type:             assetType,
		Category:         category,
		Currency:         a.Currency,
		CurrentValue:     a.CurrentValue,
		AcquisitionValue: a.AcquisitionValue,
		AcquisitionDate:  a.AcquisitionDate,
		LastUpdateDate:   a.LastUpdateDate,
		Attributes:       a.Attributes,
		Version:          a.Version,
	}
	for _, v := range a.ValuationHistory {
		out.ValuationHistory = append(out.ValuationHistory, wireValuationToDomain(v))
	}
	return out, nil
}

func wireValuationToDomain(v Valuation) domain.Valuation {
	out := domain.Valuation{
		ID:       v.ID,
		AssetID:  v.AssetID,
		Value:    v.Value,
		Currency: v.Currency,
		Source:   v.Source,
	}
	if v.ValuationDate != nil {
		out.ValuationDate = *v.ValuationDate
	}
	return out
}

func netWorthToWire(r *patrimony.NetWorthResult) *NetWorthResponse {
	return &NetWorthResponse{
		TotalAssets:      r.TotalAssets,
		TotalLiabilities: r.TotalLiabilities,
		NetWorth:         r.NetWorth,
		CalculatedAt:     r.CalculatedAt,
	}
}

func distributionToWire(r *patrimony.DistributionResult) *DistributionResponse {
	return &DistributionResponse{
		TotalAssets:          r.TotalAssets,
		AmountByCategory:     categoryKeys(r.AmountByCategory),
		PercentageByCategory: categoryKeys(r.PercentageByCategory),
		AmountByType:         typeKeys(r.AmountByType),
		PercentageByType:     typeKeys(r.PercentageByType),
		CalculatedAt:         r.CalculatedAt,
	}
}

func evolutionToWire(r *patrimony.EvolutionResult) *EvolutionResponse {
	out := &EvolutionResponse{
		StartDate: r.StartDate,
		EndDate:   r.EndDate,
		Points:    make([]EvolutionPoint, 0, len(r.Points)),
	}
	for _, p := range r.Points {
		out.Points = append(out.Points, EvolutionPoint{
			Date:             p.Date,
			TotalAssets:      p.TotalAssets,
			TotalLiabilities: p.TotalLiabilities,
			NetWorth:         p.NetWorth,
		})
	}
	if r.TotalChangeAmount.Valid {
		amount := r.TotalChangeAmount.Decimal
		out.TotalChangeAmount = &amount
	}
	if r.TotalChangePercent.Valid {
		percent := r.TotalChangePercent.Decimal
		out.TotalChangePercent = &percent
	}
	return out
}

func summaryToWire(r *patrimony.SummaryResult) *SummaryResponse {
	counts := make(map[string]int, len(r.CountByCategory))
	for category, n := range r.CountByCategory {
		counts[string(category)] = n
	}
	return &SummaryResponse{
		TotalAssets:      r.TotalAssets,
		TotalLiabilities: r.TotalLiabilities,
		NetWorth:         r.NetWorth,
		AmountByCategory: categoryKeys(r.AmountByCategory),
		AmountByType:     typeKeys(r.AmountByType),
		CountByCategory:  counts,
		TotalCount:       r.TotalCount,
	}
}

func categoryKeys(in map[domain.AssetCategory]decimal.Decimal) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(in))
	for k, v := range in {
		out[string(k)] = v
	}
	return out
}

func typeKeys(in map[domain.AssetType]decimal.Decimal) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(in))
	for k, v := range in {
		out[string(k)] = v
	}
	return out
}
