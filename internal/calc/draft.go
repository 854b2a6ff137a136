package calc

import (
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/bakhtovar-dev/backend-paxta/internal/common"
	"github.com/bakhtovar-dev/backend-paxta/internal/grade"
	"github.com/bakhtovar-dev/backend-paxta/internal/pricing"
)

var batchCodeRe = regexp.MustCompile(`^\d{3}/\d{2}$`)

// Draft is the single-actor editing session for one calculation. Batches
// and samples move between editing and confirmed; pricing runs exactly
// once per sample, at the editing-to-confirmed transition.
type Draft struct {
	Quotation float64
	batches   []*Batch
	now       func() time.Time
}

// NewDraft opens an editing session against the given market quotation.
func NewDraft(quotation float64) *Draft {
	return &Draft{Quotation: quotation, now: time.Now}
}

// BatchFields carries the declared batch values entered by the user.
type BatchFields struct {
	Year         int
	Code         string
	Weight       float64
	BalesCount   int
	SamplesCount int
}

// SampleFields carries the sample values entered by the user.
type SampleFields struct {
	Quantity     int
	ColorGrade   grade.ColorGrade
	LeafGrade    grade.LeafGrade
	StapleLength grade.StapleLength
}

// AddBatch appends a new batch in editing state and returns it.
func (d *Draft) AddBatch() *Batch {
	b := &Batch{
		ID:    uuid.NewString(),
		Year:  d.now().Year(),
		State: StateEditing,
	}
	d.batches = append(d.batches, b)
	return b
}

// ConfirmBatch validates the entered fields and moves the batch to the
// confirmed state. On any violation the batch stays editing and the error
// carries field-level messages.
func (d *Draft) ConfirmBatch(batchID string, fields BatchFields) error {
	b, err := d.batch(batchID)
	if err != nil {
		return err
	}
	problems := map[string]string{}
	if fields.Year == 0 {
		problems["year"] = "year is required"
	} else if fields.Year < 1900 || fields.Year > d.now().Year() {
		problems["year"] = "year must be between 1900 and the current year"
	}
	if fields.Code == "" {
		problems["batch_code"] = "batch code is required"
	} else if !batchCodeRe.MatchString(fields.Code) {
		problems["batch_code"] = "batch code must match 000/00"
	}
	if fields.Weight <= 0 {
		problems["weight"] = "weight must be greater than 0"
	}
	if fields.BalesCount <= 0 {
		problems["bales_count"] = "bales count must be greater than 0"
	}
	if fields.SamplesCount <= 0 {
		problems["samples_count"] = "samples count must be greater than 0"
	}
	if len(problems) > 0 {
		return common.ValidationError("batch fields are invalid", problems)
	}
	if used := b.QuantityUsed(""); used > fields.SamplesCount {
		return common.CapacityError(
			fmt.Sprintf("declared samples count %d is below the %d already recorded", fields.SamplesCount, used),
			map[string]any{"batch_id": b.ID, "recorded": used},
		)
	}
	b.Year = fields.Year
	b.Code = fields.Code
	b.Weight = fields.Weight
	b.BalesCount = fields.BalesCount
	b.SamplesCount = fields.SamplesCount
	b.State = StateConfirmed
	return nil
}

// EditBatch puts a confirmed batch back into editing state.
func (d *Draft) EditBatch(batchID string) error {
	b, err := d.batch(batchID)
	if err != nil {
		return err
	}
	b.State = StateEditing
	return nil
}

// DeleteBatch removes a batch and all of its samples.
func (d *Draft) DeleteBatch(batchID string) error {
	for i, b := range d.batches {
		if b.ID == batchID {
			d.batches = append(d.batches[:i], d.batches[i+1:]...)
			return nil
		}
	}
	return common.NotFoundError("batch not found")
}

// AddSample appends a new editing sample to the batch. It is rejected when
// the batch has no remaining capacity; the batch must already be confirmed
// so that weight and samples count are trustworthy.
func (d *Draft) AddSample(batchID string) (*Sample, error) {
	b, err := d.batch(batchID)
	if err != nil {
		return nil, err
	}
	if b.State != StateConfirmed {
		return nil, common.ValidationError("confirm the batch before adding samples", nil)
	}
	if b.Remaining() <= 0 {
		return nil, common.CapacityError(
			"all declared samples are already recorded",
			map[string]any{"batch_id": b.ID, "samples_count": b.SamplesCount},
		)
	}
	s := Sample{
		ID:      uuid.NewString(),
		BatchID: b.ID,
		State:   StateEditing,
	}
	b.Samples = append(b.Samples, s)
	return &b.Samples[len(b.Samples)-1], nil
}

// ConfirmSample validates the entered fields, enforces the capacity
// invariant and, only when everything passes, computes the derived fields
// and moves the sample to the confirmed state. A rejected sample keeps its
// previous derived values and stays editable.
func (d *Draft) ConfirmSample(batchID, sampleID string, fields SampleFields) error {
	b, err := d.batch(batchID)
	if err != nil {
		return err
	}
	s, err := d.sample(b, sampleID)
	if err != nil {
		return err
	}
	problems := map[string]string{}
	if fields.Quantity <= 0 {
		problems["quantity"] = "quantity must be greater than 0"
	}
	if !fields.ColorGrade.Valid() {
		problems["color_grade"] = "color grade must be SM, MID or SLM"
	}
	if !fields.LeafGrade.Valid() {
		problems["leaf_grade"] = "leaf grade must be between 1 and 7"
	}
	if !fields.StapleLength.Valid() {
		problems["staple_length"] = "staple length must be between 32 and 37"
	}
	if len(problems) > 0 {
		return common.ValidationError("sample fields are invalid", problems)
	}
	available := b.SamplesCount - b.QuantityUsed(s.ID)
	if fields.Quantity > available {
		return common.CapacityError(
			fmt.Sprintf("quantity %d exceeds the %d still available", fields.Quantity, available),
			map[string]any{"batch_id": b.ID, "sample_id": s.ID, "available": available},
		)
	}
	priced, err := pricing.PriceSample(
		pricing.SampleInput{
			Quantity: fields.Quantity,
			Color:    fields.ColorGrade,
			Leaf:     fields.LeafGrade,
			Staple:   fields.StapleLength,
		},
		pricing.BatchContext{Weight: b.Weight, SamplesCount: b.SamplesCount},
		d.Quotation,
	)
	if err != nil {
		return common.ValidationError(err.Error(), nil)
	}
	s.Quantity = fields.Quantity
	s.ColorGrade = fields.ColorGrade
	s.LeafGrade = fields.LeafGrade
	s.StapleLength = fields.StapleLength
	s.Weight = priced.Weight
	s.PremiumDiscount = priced.PremiumDiscount
	s.UnitPrice = priced.UnitPrice
	s.Amount = priced.Amount
	s.State = StateConfirmed
	return nil
}

// EditSample puts a confirmed sample back into editing state.
func (d *Draft) EditSample(batchID, sampleID string) error {
	b, err := d.batch(batchID)
	if err != nil {
		return err
	}
	s, err := d.sample(b, sampleID)
	if err != nil {
		return err
	}
	s.State = StateEditing
	return nil
}

// DeleteSample removes a sample from its batch.
func (d *Draft) DeleteSample(batchID, sampleID string) error {
	b, err := d.batch(batchID)
	if err != nil {
		return err
	}
	for i := range b.Samples {
		if b.Samples[i].ID == sampleID {
			b.Samples = append(b.Samples[:i], b.Samples[i+1:]...)
			return nil
		}
	}
	return common.NotFoundError("sample not found")
}

// Batches returns the current batches. Confirmed-only aggregation should
// filter on State; the save gate guarantees no editing records remain.
func (d *Draft) Batches() []Batch {
	out := make([]Batch, 0, len(d.batches))
	for _, b := range d.batches {
		out = append(out, *b)
	}
	return out
}

// CheckSavePreconditions gates the draft-to-saved transition: no editing
// batch, no editing sample, and at least one sample in every batch. The
// returned error names the offending batches by code and year.
func (d *Draft) CheckSavePreconditions() error {
	if len(d.batches) == 0 {
		return common.PreconditionError("calculation has no batches", nil)
	}
	var editingBatches, editingSamples, emptyBatches []string
	for _, b := range d.batches {
		label := fmt.Sprintf("%s (%d)", b.Code, b.Year)
		if b.State == StateEditing {
			editingBatches = append(editingBatches, label)
		}
		for _, s := range b.Samples {
			if s.State == StateEditing {
				editingSamples = append(editingSamples, label)
				break
			}
		}
		if len(b.Samples) == 0 {
			emptyBatches = append(emptyBatches, label)
		}
	}
	if len(editingBatches) > 0 {
		return common.PreconditionError("confirm all batches before saving", map[string]any{"batches": editingBatches})
	}
	if len(editingSamples) > 0 {
		return common.PreconditionError("confirm all samples before saving", map[string]any{"batches": editingSamples})
	}
	if len(emptyBatches) > 0 {
		return common.PreconditionError("every batch needs at least one sample", map[string]any{"batches": emptyBatches})
	}
	return nil
}

func (d *Draft) batch(id string) (*Batch, error) {
	for _, b := range d.batches {
		if b.ID == id {
			return b, nil
		}
	}
	return nil, common.NotFoundError("batch not found")
}

func (d *Draft) sample(b *Batch, id string) (*Sample, error) {
	for i := range b.Samples {
		if b.Samples[i].ID == id {
			return &b.Samples[i], nil
		}
	}
	return nil, common.NotFoundError("sample not found")
}
