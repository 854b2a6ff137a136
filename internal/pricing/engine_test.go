package pricing

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bakhtovar-dev/backend-paxta/internal/grade"
)

func TestPriceSampleWeight(t *testing.T) {
	got, err := PriceSample(
		SampleInput{Quantity: 5, Color: grade.ColorSM, Leaf: 1, Staple: 34},
		BatchContext{Weight: 1000, SamplesCount: 10},
		80,
	)
	require.NoError(t, err)
	require.Equal(t, 500.0, got.Weight)
}

func TestPriceSampleFormula(t *testing.T) {
	quotation := 80.0
	got, err := PriceSample(
		SampleInput{Quantity: 5, Color: grade.ColorSM, Leaf: 1, Staple: 34},
		BatchContext{Weight: 1000, SamplesCount: 10},
		quotation,
	)
	require.NoError(t, err)

	// SM/1/34 carries a 405-hundredths premium.
	require.InDelta(t, 4.05, got.PremiumDiscount, 1e-12)

	base := (quotation + 4.05) * 22.0462
	wantUnit := base - base*0.035 - 60
	require.InDelta(t, wantUnit, got.UnitPrice, 1e-6)
	require.InDelta(t, (wantUnit*500)/1000, got.Amount, 1e-6)
}

func TestPriceSampleZeroSamplesCount(t *testing.T) {
	_, err := PriceSample(
		SampleInput{Quantity: 1, Color: grade.ColorSM, Leaf: 1, Staple: 34},
		BatchContext{Weight: 1000},
		80,
	)
	require.ErrorIs(t, err, ErrNoSamplesCount)
}

func TestPriceSampleInvalidGrade(t *testing.T) {
	_, err := PriceSample(
		SampleInput{Quantity: 1, Color: "XX", Leaf: 1, Staple: 34},
		BatchContext{Weight: 1000, SamplesCount: 10},
		80,
	)
	require.Error(t, err)
}

func TestBatchStatsWeightedAverages(t *testing.T) {
	samples := []PricedSample{
		{Quantity: 2, SamplePricing: SamplePricing{Weight: 200, PremiumDiscount: 4.0, UnitPrice: 1700, Amount: 340}},
		{Quantity: 3, SamplePricing: SamplePricing{Weight: 300, PremiumDiscount: -1.0, UnitPrice: 1500, Amount: 450}},
	}
	got := BatchStats(samples)
	require.Equal(t, 5, got.TotalSamples)
	require.InDelta(t, 500.0, got.TotalWeight, 1e-12)
	require.InDelta(t, 790.0, got.TotalAmount, 1e-12)
	require.InDelta(t, (4.0*2-1.0*3)/5, got.AvgPremiumDiscount, 1e-12)
	require.InDelta(t, (1700*200+1500*300)/500.0, got.AvgPrice, 1e-12)
}

func TestBatchStatsEmptyBatch(t *testing.T) {
	got := BatchStats(nil)
	require.Zero(t, got.TotalSamples)
	require.Zero(t, got.AvgPremiumDiscount)
	require.Zero(t, got.AvgPrice)
	require.NotPanics(t, func() { BatchStats([]PricedSample{}) })
}

func TestCalculationStats(t *testing.T) {
	batches := []BatchTotals{
		{
			Weight:     1000,
			BalesCount: 20,
			Samples: []PricedSample{
				{Quantity: 4, SamplePricing: SamplePricing{Weight: 400, UnitPrice: 1600, Amount: 640}},
			},
		},
		{
			Weight:     2000,
			BalesCount: 30,
			Samples: []PricedSample{
				{Quantity: 6, SamplePricing: SamplePricing{Weight: 600, UnitPrice: 1800, Amount: 1080}},
				{Quantity: 2, SamplePricing: SamplePricing{Weight: 200, UnitPrice: 1400, Amount: 280}},
			},
		},
	}
	got := CalculationStats(batches)
	require.Equal(t, 2, got.TotalBatches)
	require.InDelta(t, 3000.0, got.TotalWeight, 1e-12)
	require.Equal(t, 50, got.TotalBales)
	require.Equal(t, 12, got.TotalSamples)
	require.InDelta(t, 2000.0, got.TotalAmount, 1e-12)
	wantAvg := (1600*400.0 + 1800*600.0 + 1400*200.0) / 1200.0
	require.InDelta(t, wantAvg, got.AvgPrice, 1e-12)
}

func TestCalculationStatsEmpty(t *testing.T) {
	got := CalculationStats(nil)
	require.Zero(t, got.AvgPrice)
	require.Zero(t, got.TotalBatches)
}

func TestAggregationIdempotent(t *testing.T) {
	samples := []PricedSample{
		{Quantity: 2, SamplePricing: SamplePricing{Weight: 250, PremiumDiscount: 1.9, UnitPrice: 1650, Amount: 412.5}},
		{Quantity: 1, SamplePricing: SamplePricing{Weight: 125, PremiumDiscount: -0.2, UnitPrice: 1500, Amount: 187.5}},
	}
	first := BatchStats(samples)
	second := BatchStats(samples)
	require.Equal(t, first, second)

	batches := []BatchTotals{{Weight: 500, BalesCount: 10, Samples: samples}}
	require.Equal(t, CalculationStats(batches), CalculationStats(batches))
}
