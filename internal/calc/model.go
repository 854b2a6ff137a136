package calc

import (
	"time"

	"github.com/bakhtovar-dev/backend-paxta/internal/grade"
	"github.com/bakhtovar-dev/backend-paxta/internal/pricing"
)

// State tags a batch or sample as still being entered or as confirmed.
// Derived fields are only trustworthy on confirmed records.
type State string

// Entry states.
const (
	StateEditing   State = "editing"
	StateConfirmed State = "confirmed"
)

// Sample is a quality draw from a batch. Quantity is the portion of the
// batch's declared sample count this record represents. The derived fields
// are recomputed when the sample transitions to confirmed and hold stale or
// zero values before that.
type Sample struct {
	ID           string             `json:"id"`
	BatchID      string             `json:"batch_id"`
	Quantity     int                `json:"quantity"`
	ColorGrade   grade.ColorGrade   `json:"color_grade"`
	LeafGrade    grade.LeafGrade    `json:"leaf_grade"`
	StapleLength grade.StapleLength `json:"staple_length"`

	Weight          float64 `json:"weight"`
	PremiumDiscount float64 `json:"premium_discount"`
	UnitPrice       float64 `json:"unit_price"`
	Amount          float64 `json:"amount"`

	State State `json:"-"`
}

// Batch is a cotton lot for a harvest year with declared weight, bale and
// sample-count targets. SamplesCount is the total number of physical
// sub-samples expected across all Sample records.
type Batch struct {
	ID           string   `json:"id"`
	Year         int      `json:"year"`
	Code         string   `json:"batch_code"`
	Weight       float64  `json:"weight"`
	BalesCount   int      `json:"bales_count"`
	SamplesCount int      `json:"samples_count"`
	Samples      []Sample `json:"samples"`

	State State `json:"-"`
}

// QuantityUsed sums sample quantities, optionally excluding one sample id.
func (b *Batch) QuantityUsed(excludeSampleID string) int {
	sum := 0
	for _, s := range b.Samples {
		if s.ID == excludeSampleID {
			continue
		}
		sum += s.Quantity
	}
	return sum
}

// Remaining reports how many sample units can still be recorded.
func (b *Batch) Remaining() int {
	return b.SamplesCount - b.QuantityUsed("")
}

// Complete reports whether the recorded quantities have reached the
// declared sample count.
func (b *Batch) Complete() bool {
	return b.QuantityUsed("") >= b.SamplesCount
}

// PricedSamples converts the batch's samples into the aggregator's input.
func (b *Batch) PricedSamples() []pricing.PricedSample {
	out := make([]pricing.PricedSample, 0, len(b.Samples))
	for _, s := range b.Samples {
		out = append(out, pricing.PricedSample{
			Quantity: s.Quantity,
			SamplePricing: pricing.SamplePricing{
				Weight:          s.Weight,
				PremiumDiscount: s.PremiumDiscount,
				UnitPrice:       s.UnitPrice,
				Amount:          s.Amount,
			},
		})
	}
	return out
}

// Calculation is the top-level persisted unit: a named, timestamped
// collection of batches with their market parameters. Once saved it is
// immutable; the store exposes no update or delete.
type Calculation struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	CreatedAt     time.Time  `json:"created_at"`
	Quotation     float64    `json:"lce_quotation"`
	QuotationDate *time.Time `json:"quotation_date,omitempty"`
	DollarRate    *float64   `json:"dollar_rate,omitempty"`
	Batches       []Batch    `json:"batches"`
}

// BatchTotals adapts the calculation's batches for the grand-total
// aggregator.
func (c *Calculation) BatchTotals() []pricing.BatchTotals {
	out := make([]pricing.BatchTotals, 0, len(c.Batches))
	for i := range c.Batches {
		b := &c.Batches[i]
		out = append(out, pricing.BatchTotals{
			Weight:     b.Weight,
			BalesCount: b.BalesCount,
			Samples:    b.PricedSamples(),
		})
	}
	return out
}

// Summary is a list-view projection of a saved calculation.
type Summary struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	CreatedAt     time.Time  `json:"created_at"`
	QuotationDate *time.Time `json:"quotation_date,omitempty"`
	DollarRate    *float64   `json:"dollar_rate,omitempty"`
	BatchCount    int        `json:"batch_count"`
}
