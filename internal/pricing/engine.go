package pricing

import (
	"errors"

	"github.com/bakhtovar-dev/backend-paxta/internal/grade"
)

// Domain fixtures of the pricing formula. These are contractual constants,
// not tunables.
const (
	// CentsToUnitFactor converts cents per pound to the per-tonne currency basis.
	CentsToUnitFactor = 22.0462
	// DeductionRate is the fixed processing deduction applied to the converted price.
	DeductionRate = 0.035
	// PerUnitCharge is the fixed per-unit charge subtracted after deduction.
	PerUnitCharge = 60.0
)

// ErrNoSamplesCount is returned when a batch context declares zero samples.
var ErrNoSamplesCount = errors.New("pricing: batch samples count must be positive")

// SampleInput carries the grade inputs of a single sample.
type SampleInput struct {
	Quantity int
	Color    grade.ColorGrade
	Leaf     grade.LeafGrade
	Staple   grade.StapleLength
}

// BatchContext carries the batch-level declarations a sample is priced against.
type BatchContext struct {
	Weight       float64
	SamplesCount int
}

// SamplePricing holds the derived fields of a confirmed sample. No rounding
// is applied; two-decimal formatting is a presentation concern.
type SamplePricing struct {
	Weight          float64
	PremiumDiscount float64
	UnitPrice       float64
	Amount          float64
}

// PriceSample derives weight, premium/discount, unit price and amount for a
// sample given the owning batch's declarations and the market quotation in
// cents per pound.
func PriceSample(in SampleInput, b BatchContext, quotation float64) (SamplePricing, error) {
	if b.SamplesCount <= 0 {
		return SamplePricing{}, ErrNoSamplesCount
	}
	pd, err := grade.PremiumDiscount(in.Color, in.Leaf, in.Staple)
	if err != nil {
		return SamplePricing{}, err
	}
	weight := (b.Weight * float64(in.Quantity)) / float64(b.SamplesCount)
	base := (quotation + pd) * CentsToUnitFactor
	unit := base - base*DeductionRate - PerUnitCharge
	return SamplePricing{
		Weight:          weight,
		PremiumDiscount: pd,
		UnitPrice:       unit,
		Amount:          (unit * weight) / 1000,
	}, nil
}

// PricedSample pairs a sample's quantity with its derived pricing, the unit
// the aggregators fold over.
type PricedSample struct {
	Quantity int
	SamplePricing
}

// BatchSummary aggregates sample-level results within one batch.
type BatchSummary struct {
	TotalSamples       int     `json:"total_samples"`
	TotalWeight        float64 `json:"total_weight"`
	TotalAmount        float64 `json:"total_amount"`
	AvgPremiumDiscount float64 `json:"avg_premium_discount"`
	AvgPrice           float64 `json:"avg_price"`
}

// BatchStats folds the batch's priced samples into totals and weighted
// averages. An empty batch yields the zero summary rather than NaN.
func BatchStats(samples []PricedSample) BatchSummary {
	var out BatchSummary
	var pdWeighted, priceWeighted float64
	for _, s := range samples {
		out.TotalSamples += s.Quantity
		out.TotalWeight += s.Weight
		out.TotalAmount += s.Amount
		pdWeighted += s.PremiumDiscount * float64(s.Quantity)
		priceWeighted += s.UnitPrice * s.Weight
	}
	if out.TotalSamples > 0 {
		out.AvgPremiumDiscount = pdWeighted / float64(out.TotalSamples)
	}
	if out.TotalWeight > 0 {
		out.AvgPrice = priceWeighted / out.TotalWeight
	}
	return out
}

// BatchTotals is a batch as seen by the calculation-level aggregator:
// declared figures plus the priced samples.
type BatchTotals struct {
	Weight     float64
	BalesCount int
	Samples    []PricedSample
}

// CalculationSummary aggregates across all batches of a calculation.
// Declared weight and bale counts come off the batch records; sample
// totals flatten across every batch's samples.
type CalculationSummary struct {
	TotalBatches int     `json:"total_batches"`
	TotalWeight  float64 `json:"total_weight"`
	TotalBales   int     `json:"total_bales"`
	TotalSamples int     `json:"total_samples"`
	TotalAmount  float64 `json:"total_amount"`
	AvgPrice     float64 `json:"avg_price"`
}

// CalculationStats computes the grand totals for a calculation. AvgPrice is
// weighted by sample weight across all batches, guarded against an empty
// calculation.
func CalculationStats(batches []BatchTotals) CalculationSummary {
	out := CalculationSummary{TotalBatches: len(batches)}
	var sampleWeight, priceWeighted float64
	for _, b := range batches {
		out.TotalWeight += b.Weight
		out.TotalBales += b.BalesCount
		for _, s := range b.Samples {
			out.TotalSamples += s.Quantity
			out.TotalAmount += s.Amount
			sampleWeight += s.Weight
			priceWeighted += s.UnitPrice * s.Weight
		}
	}
	if sampleWeight > 0 {
		out.AvgPrice = priceWeighted / sampleWeight
	}
	return out
}
