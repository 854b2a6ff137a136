package calc

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bakhtovar-dev/backend-paxta/internal/common"
	"github.com/bakhtovar-dev/backend-paxta/internal/grade"
)

func confirmedBatch(t *testing.T, d *Draft, fields BatchFields) *Batch {
	t.Helper()
	b := d.AddBatch()
	require.NoError(t, d.ConfirmBatch(b.ID, fields))
	return b
}

func defaultBatchFields() BatchFields {
	return BatchFields{Year: 2024, Code: "123/45", Weight: 1000, BalesCount: 20, SamplesCount: 10}
}

func confirmedSample(t *testing.T, d *Draft, batchID string, fields SampleFields) *Sample {
	t.Helper()
	s, err := d.AddSample(batchID)
	require.NoError(t, err)
	require.NoError(t, d.ConfirmSample(batchID, s.ID, fields))
	return s
}

func TestConfirmBatchValidation(t *testing.T) {
	cases := []struct {
		name   string
		fields BatchFields
		field  string
	}{
		{"missing year", BatchFields{Code: "123/45", Weight: 1, BalesCount: 1, SamplesCount: 1}, "year"},
		{"year too old", BatchFields{Year: 1899, Code: "123/45", Weight: 1, BalesCount: 1, SamplesCount: 1}, "year"},
		{"year in future", BatchFields{Year: time.Now().Year() + 1, Code: "123/45", Weight: 1, BalesCount: 1, SamplesCount: 1}, "year"},
		{"missing code", BatchFields{Year: 2024, Weight: 1, BalesCount: 1, SamplesCount: 1}, "batch_code"},
		{"bad code format", BatchFields{Year: 2024, Code: "12/345", Weight: 1, BalesCount: 1, SamplesCount: 1}, "batch_code"},
		{"zero weight", BatchFields{Year: 2024, Code: "123/45", BalesCount: 1, SamplesCount: 1}, "weight"},
		{"zero bales", BatchFields{Year: 2024, Code: "123/45", Weight: 1, SamplesCount: 1}, "bales_count"},
		{"zero samples count", BatchFields{Year: 2024, Code: "123/45", Weight: 1, BalesCount: 1}, "samples_count"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := NewDraft(80)
			b := d.AddBatch()
			err := d.ConfirmBatch(b.ID, tc.fields)
			var appErr *common.AppError
			require.ErrorAs(t, err, &appErr)
			require.Equal(t, common.CodeValidation, appErr.Code)
			require.Contains(t, appErr.Details.(map[string]string), tc.field)
			require.Equal(t, StateEditing, b.State)
		})
	}
}

func TestConfirmBatchSuccess(t *testing.T) {
	d := NewDraft(80)
	b := confirmedBatch(t, d, defaultBatchFields())
	require.Equal(t, StateConfirmed, b.State)
	require.Equal(t, "123/45", b.Code)
	require.Equal(t, 10, b.Remaining())
}

func TestAddSampleRequiresConfirmedBatch(t *testing.T) {
	d := NewDraft(80)
	b := d.AddBatch()
	_, err := d.AddSample(b.ID)
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, common.CodeValidation, appErr.Code)
}

func TestConfirmSamplePricesAtConfirmation(t *testing.T) {
	d := NewDraft(80)
	b := confirmedBatch(t, d, defaultBatchFields())

	s, err := d.AddSample(b.ID)
	require.NoError(t, err)
	require.Equal(t, StateEditing, s.State)
	require.Zero(t, s.Weight)
	require.Zero(t, s.UnitPrice)

	require.NoError(t, d.ConfirmSample(b.ID, s.ID, SampleFields{
		Quantity:     5,
		ColorGrade:   grade.ColorSM,
		LeafGrade:    1,
		StapleLength: 34,
	}))
	require.Equal(t, StateConfirmed, s.State)
	require.InDelta(t, 500.0, s.Weight, 1e-12)
	require.InDelta(t, 4.05, s.PremiumDiscount, 1e-12)

	base := (80 + 4.05) * 22.0462
	wantUnit := base - base*0.035 - 60
	require.InDelta(t, wantUnit, s.UnitPrice, 1e-9)
	require.InDelta(t, wantUnit*500/1000, s.Amount, 1e-9)
}

func TestConfirmSampleValidation(t *testing.T) {
	d := NewDraft(80)
	b := confirmedBatch(t, d, defaultBatchFields())
	s, err := d.AddSample(b.ID)
	require.NoError(t, err)

	err = d.ConfirmSample(b.ID, s.ID, SampleFields{Quantity: 0, ColorGrade: "XX", LeafGrade: 9, StapleLength: 31})
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, common.CodeValidation, appErr.Code)
	details := appErr.Details.(map[string]string)
	require.Contains(t, details, "quantity")
	require.Contains(t, details, "color_grade")
	require.Contains(t, details, "leaf_grade")
	require.Contains(t, details, "staple_length")
	require.Equal(t, StateEditing, s.State)
}

func TestCapacityInvariant(t *testing.T) {
	d := NewDraft(80)
	b := confirmedBatch(t, d, defaultBatchFields())

	confirmedSample(t, d, b.ID, SampleFields{Quantity: 6, ColorGrade: grade.ColorSM, LeafGrade: 1, StapleLength: 34})

	s2, err := d.AddSample(b.ID)
	require.NoError(t, err)
	err = d.ConfirmSample(b.ID, s2.ID, SampleFields{Quantity: 5, ColorGrade: grade.ColorMID, LeafGrade: 2, StapleLength: 33})
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, common.CodeCapacity, appErr.Code)
	require.Equal(t, StateEditing, s2.State)

	// Fits exactly into the remaining capacity.
	require.NoError(t, d.ConfirmSample(b.ID, s2.ID, SampleFields{Quantity: 4, ColorGrade: grade.ColorMID, LeafGrade: 2, StapleLength: 33}))
	require.True(t, b.Complete())
	require.Equal(t, 10, b.QuantityUsed(""))

	// A full batch rejects new samples outright.
	_, err = d.AddSample(b.ID)
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, common.CodeCapacity, appErr.Code)
}

func TestReconfirmSampleExcludesItself(t *testing.T) {
	d := NewDraft(80)
	b := confirmedBatch(t, d, defaultBatchFields())
	s := confirmedSample(t, d, b.ID, SampleFields{Quantity: 6, ColorGrade: grade.ColorSM, LeafGrade: 1, StapleLength: 34})
	confirmedSample(t, d, b.ID, SampleFields{Quantity: 4, ColorGrade: grade.ColorSLM, LeafGrade: 3, StapleLength: 35})

	// Re-editing the first sample frees its own quantity but not more.
	require.NoError(t, d.EditSample(b.ID, s.ID))
	err := d.ConfirmSample(b.ID, s.ID, SampleFields{Quantity: 7, ColorGrade: grade.ColorSM, LeafGrade: 1, StapleLength: 34})
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, common.CodeCapacity, appErr.Code)
	require.NoError(t, d.ConfirmSample(b.ID, s.ID, SampleFields{Quantity: 5, ColorGrade: grade.ColorSM, LeafGrade: 1, StapleLength: 34}))
	require.Equal(t, 9, b.QuantityUsed(""))
}

func TestConfirmBatchCannotShrinkBelowRecorded(t *testing.T) {
	d := NewDraft(80)
	b := confirmedBatch(t, d, defaultBatchFields())
	confirmedSample(t, d, b.ID, SampleFields{Quantity: 8, ColorGrade: grade.ColorSM, LeafGrade: 2, StapleLength: 33})

	require.NoError(t, d.EditBatch(b.ID))
	fields := defaultBatchFields()
	fields.SamplesCount = 5
	err := d.ConfirmBatch(b.ID, fields)
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, common.CodeCapacity, appErr.Code)
}

func TestDeleteSampleFreesCapacity(t *testing.T) {
	d := NewDraft(80)
	b := confirmedBatch(t, d, defaultBatchFields())
	s := confirmedSample(t, d, b.ID, SampleFields{Quantity: 10, ColorGrade: grade.ColorSM, LeafGrade: 1, StapleLength: 34})
	require.Equal(t, 0, b.Remaining())

	require.NoError(t, d.DeleteSample(b.ID, s.ID))
	require.Equal(t, 10, b.Remaining())
}

func TestSavePreconditions(t *testing.T) {
	t.Run("no batches", func(t *testing.T) {
		d := NewDraft(80)
		err := d.CheckSavePreconditions()
		var appErr *common.AppError
		require.ErrorAs(t, err, &appErr)
		require.Equal(t, common.CodePrecondition, appErr.Code)
	})

	t.Run("editing batch", func(t *testing.T) {
		d := NewDraft(80)
		d.AddBatch()
		err := d.CheckSavePreconditions()
		var appErr *common.AppError
		require.ErrorAs(t, err, &appErr)
		require.Equal(t, common.CodePrecondition, appErr.Code)
	})

	t.Run("editing sample", func(t *testing.T) {
		d := NewDraft(80)
		b := confirmedBatch(t, d, defaultBatchFields())
		_, err := d.AddSample(b.ID)
		require.NoError(t, err)
		err = d.CheckSavePreconditions()
		var appErr *common.AppError
		require.ErrorAs(t, err, &appErr)
		require.Equal(t, common.CodePrecondition, appErr.Code)
	})

	t.Run("batch without samples names the batch", func(t *testing.T) {
		d := NewDraft(80)
		confirmedBatch(t, d, defaultBatchFields())
		err := d.CheckSavePreconditions()
		var appErr *common.AppError
		require.ErrorAs(t, err, &appErr)
		require.Equal(t, common.CodePrecondition, appErr.Code)
		details := appErr.Details.(map[string]any)
		require.Contains(t, details["batches"], "123/45 (2024)")
	})

	t.Run("complete draft passes", func(t *testing.T) {
		d := NewDraft(80)
		b := confirmedBatch(t, d, defaultBatchFields())
		confirmedSample(t, d, b.ID, SampleFields{Quantity: 10, ColorGrade: grade.ColorSM, LeafGrade: 1, StapleLength: 34})
		require.NoError(t, d.CheckSavePreconditions())
	})
}

func TestDraftNotFoundErrors(t *testing.T) {
	d := NewDraft(80)
	var appErr *common.AppError

	require.True(t, errors.As(d.ConfirmBatch("missing", defaultBatchFields()), &appErr))
	require.Equal(t, common.CodeNotFound, appErr.Code)

	_, err := d.AddSample("missing")
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, common.CodeNotFound, appErr.Code)

	require.ErrorAs(t, d.DeleteBatch("missing"), &appErr)
	require.Equal(t, common.CodeNotFound, appErr.Code)
}
