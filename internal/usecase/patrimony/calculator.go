package patrimony

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/simaogato/patrimony-backend/internal/domain"
)

// PercentPrecision is the number of fractional digits kept in percentages
const PercentPrecision = 2

var hundred = decimal.NewFromInt(100)

// NetWorthResult represents the calculated net worth
type NetWorthResult struct {
	TotalAssets      decimal.Decimal
	TotalLiabilities decimal.Decimal
	NetWorth         decimal.Decimal
	CalculatedAt     time.Time
}

// DistributionResult represents how an owner's assets split across categories and types
type DistributionResult struct {
	TotalAssets          decimal.Decimal // liabilities excluded
	AmountByCategory     map[domain.AssetCategory]decimal.Decimal
	PercentageByCategory map[domain.AssetCategory]decimal.Decimal
	AmountByType         map[domain.AssetType]decimal.Decimal // liabilities excluded
	PercentageByType     map[domain.AssetType]decimal.Decimal
	CalculatedAt         time.Time
}

// EvolutionPoint is the reconstructed position at one observation date
type EvolutionPoint struct {
	Date             time.Time
	TotalAssets      decimal.Decimal
	TotalLiabilities decimal.Decimal
	NetWorth         decimal.Decimal
}

// EvolutionResult represents net worth over a date range
type EvolutionResult struct {
	StartDate          time.Time
	EndDate            time.Time
	Points             []EvolutionPoint
	TotalChangeAmount  decimal.NullDecimal // set with at least two points
	TotalChangePercent decimal.NullDecimal // set when the first net worth is positive
}

// SummaryResult represents counts and totals of an owner's assets
type SummaryResult struct {
	TotalAssets      decimal.Decimal
	TotalLiabilities decimal.Decimal
	NetWorth         decimal.Decimal
	AmountByCategory map[domain.AssetCategory]decimal.Decimal
	AmountByType     map[domain.AssetType]decimal.Decimal // liabilities included
	CountByCategory  map[domain.AssetCategory]int
	TotalCount       int
}

// sides accumulates values on each side of the balance sheet
type sides struct {
	assets      decimal.Decimal
	liabilities decimal.Decimal
}

func (s *sides) add(category domain.AssetCategory, value decimal.Decimal) {
	switch category.Side() {
	case domain.SideAsset:
		s.assets = s.assets.Add(value)
	case domain.SideLiability:
		s.liabilities = s.liabilities.Add(value)
	case domain.SideUnknown:
		// unknown categories never reach the store, ignore rather than guess
	}
}

func (s *sides) netWorth() decimal.Decimal {
	return s.assets.Sub(s.liabilities)
}

// CalculateNetWorth sums current values per side; assets without a current value are skipped
func CalculateNetWorth(assets []*domain.Asset, now time.Time) NetWorthResult {
	var totals sides
	for _, a := range assets {
		if !a.CurrentValue.Valid {
			continue
		}
		totals.add(a.Category, a.CurrentValue.Decimal)
	}

	return NetWorthResult{
		TotalAssets:      totals.assets,
		TotalLiabilities: totals.liabilities,
		NetWorth:         totals.netWorth(),
		CalculatedAt:     now,
	}
}

// CalculateDistribution sums current values by category and type and derives
// their share of total assets. No percentage is emitted when total assets is zero.
func CalculateDistribution(assets []*domain.Asset, now time.Time) DistributionResult {
	res := DistributionResult{
		TotalAssets:          decimal.Zero,
		AmountByCategory:     make(map[domain.AssetCategory]decimal.Decimal),
		PercentageByCategory: make(map[domain.AssetCategory]decimal.Decimal),
		AmountByType:         make(map[domain.AssetType]decimal.Decimal),
		PercentageByType:     make(map[domain.AssetType]decimal.Decimal),
		CalculatedAt:         now,
	}

	for _, a := range assets {
		if !a.CurrentValue.Valid {
			continue
		}
		value := a.CurrentValue.Decimal
		res.AmountByCategory[a.Category] = res.AmountByCategory[a.Category].Add(value)
		if a.Category.Side() == domain.SideAsset {
			res.TotalAssets = res.TotalAssets.Add(value)
			res.AmountByType[a.Type] = res.AmountByType[a.Type].Add(value)
		}
	}

	if res.TotalAssets.IsZero() {
		return res
	}

	for category, amount := range res.AmountByCategory {
		if category.Side() != domain.SideAsset {
			continue
		}
		res.PercentageByCategory[category] = Percentage(amount, res.TotalAssets)
	}
	for typ, amount := range res.AmountByType {
		res.PercentageByType[typ] = Percentage(amount, res.TotalAssets)
	}
	return res
}

// CalculateEvolution reconstructs the owner's position at every observation date in (start, end]
// plus start and end themselves
func CalculateEvolution(assets []*domain.Asset, start, end time.Time) EvolutionResult {
	res := EvolutionResult{
		StartDate: start,
		EndDate:   end,
	}

	dates := observationDates(assets, start, end)
	res.Points = make([]EvolutionPoint, 0, len(dates))
	for _, d := range dates {
		var totals sides
		for _, a := range assets {
			if value, ok := a.ValueAt(d); ok {
				totals.add(a.Category, value)
			}
		}
		res.Points = append(res.Points, EvolutionPoint{
			Date:             d,
			TotalAssets:      totals.assets,
			TotalLiabilities: totals.liabilities,
			NetWorth:         totals.netWorth(),
		})
	}

	if len(res.Points) < 2 {
		return res
	}

	first := res.Points[0].NetWorth
	last := res.Points[len(res.Points)-1].NetWorth
	change := last.Sub(first)
	res.TotalChangeAmount = decimal.NewNullDecimal(change)
	if first.IsPositive() {
		res.TotalChangePercent = decimal.NewNullDecimal(Percentage(change, first))
	}
	return res
}

// CalculateSummary counts and totals an owner's assets
func CalculateSummary(assets []*domain.Asset) SummaryResult {
	res := SummaryResult{
		AmountByCategory: make(map[domain.AssetCategory]decimal.Decimal),
		AmountByType:     make(map[domain.AssetType]decimal.Decimal),
		CountByCategory:  make(map[domain.AssetCategory]int),
		TotalCount:       len(assets),
	}

	var totals sides
	for _, a := range assets {
		res.CountByCategory[a.Category]++
		if !a.CurrentValue.Valid {
			continue
		}
		value := a.CurrentValue.Decimal
		totals.add(a.Category, value)
		res.AmountByCategory[a.Category] = res.AmountByCategory[a.Category].Add(value)
		res.AmountByType[a.Type] = res.AmountByType[a.Type].Add(value)
	}

	res.TotalAssets = totals.assets
	res.TotalLiabilities = totals.liabilities
	res.NetWorth = totals.netWorth()
	return res
}

// Percentage returns part*100/whole rounded half-up to PercentPrecision digits.
// whole must not be zero.
func Percentage(part, whole decimal.Decimal) decimal.Decimal {
	return part.Mul(hundred).DivRound(whole, PercentPrecision)
}

// observationDates returns the deduplicated, ascending dates at which to reconstruct
func observationDates(assets []*domain.Asset, start, end time.Time) []time.Time {
	seen := make(map[int64]bool)
	dates := make([]time.Time, 0)
	add := func(t time.Time) {
		key := t.UnixNano()
		if seen[key] {
			return
		}
		seen[key] = true
		dates = append(dates, t)
	}
	inRange := func(t time.Time) bool {
		return t.After(start) && !t.After(end)
	}

	for _, a := range assets {
		for _, v := range a.ValuationHistory {
			if inRange(v.ValuationDate) {
				add(v.ValuationDate)
			}
		}
		if a.AcquisitionDate != nil && inRange(*a.AcquisitionDate) {
			add(*a.AcquisitionDate)
		}
	}
	add(start)
	add(end)

	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}
