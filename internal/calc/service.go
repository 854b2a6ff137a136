package calc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bakhtovar-dev/backend-paxta/internal/common"
	"github.com/bakhtovar-dev/backend-paxta/internal/grade"
	"github.com/bakhtovar-dev/backend-paxta/internal/obs"
	"github.com/bakhtovar-dev/backend-paxta/internal/pricing"
)

// Store is the persistence contract for calculations. Save must be atomic:
// either the calculation with all batches and samples persists, or nothing
// does.
type Store interface {
	Save(ctx context.Context, c *Calculation) error
	Get(ctx context.Context, id string) (*Calculation, error)
	List(ctx context.Context, limit, offset int32) ([]Summary, int64, error)
}

// SampleInput is the submitted form of one sample.
type SampleInput struct {
	Quantity     int    `json:"quantity" validate:"required,gt=0"`
	ColorGrade   string `json:"color_grade" validate:"required"`
	LeafGrade    int    `json:"leaf_grade" validate:"required"`
	StapleLength int    `json:"staple_length" validate:"required"`
}

// BatchInput is the submitted form of one batch with its samples.
type BatchInput struct {
	Year         int           `json:"year" validate:"required"`
	Code         string        `json:"batch_code" validate:"required"`
	Weight       float64       `json:"weight" validate:"required,gt=0"`
	BalesCount   int           `json:"bales_count" validate:"required,gt=0"`
	SamplesCount int           `json:"samples_count" validate:"required,gt=0"`
	Samples      []SampleInput `json:"samples" validate:"dive"`
}

// CalculationInput is the submitted form of a whole calculation.
type CalculationInput struct {
	Title         string       `json:"title"`
	Quotation     float64      `json:"lce_quotation" validate:"required,gt=0"`
	QuotationDate *time.Time   `json:"quotation_date"`
	DollarRate    *float64     `json:"dollar_rate" validate:"omitempty,gt=0"`
	Batches       []BatchInput `json:"batches" validate:"required,min=1,dive"`
}

// BatchView is a batch with its aggregated statistics attached.
type BatchView struct {
	Batch
	Stats pricing.BatchSummary `json:"stats"`
}

// View is the full API projection of a calculation: batches with their
// stats plus grand totals.
type View struct {
	ID            string                     `json:"id,omitempty"`
	Title         string                     `json:"title"`
	CreatedAt     time.Time                  `json:"created_at"`
	Quotation     float64                    `json:"lce_quotation"`
	QuotationDate *time.Time                 `json:"quotation_date,omitempty"`
	DollarRate    *float64                   `json:"dollar_rate,omitempty"`
	Batches       []BatchView                `json:"batches"`
	Totals        pricing.CalculationSummary `json:"totals"`
}

// ServiceConfig configures the calculation service.
type ServiceConfig struct {
	Store         Store
	Logger        zerolog.Logger
	PublicBaseURL string
}

// Service replays submitted calculations through the draft state machine,
// aggregates them and talks to the store.
type Service struct {
	store   Store
	logger  zerolog.Logger
	baseURL string
	now     func() time.Time
}

// NewService constructs a Service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Store == nil {
		return nil, errors.New("calc: store is required")
	}
	return &Service{
		store:   cfg.Store,
		logger:  cfg.Logger,
		baseURL: strings.TrimSuffix(cfg.PublicBaseURL, "/"),
		now:     time.Now,
	}, nil
}

// build replays the input through a fresh draft. Every batch and sample
// passes the same validation and capacity gates as interactive entry, and
// every sample is priced exactly once, at its confirmation.
func (s *Service) build(input CalculationInput) (*Calculation, *Draft, error) {
	d := NewDraft(input.Quotation)
	for i, bi := range input.Batches {
		b := d.AddBatch()
		if err := d.ConfirmBatch(b.ID, BatchFields{
			Year:         bi.Year,
			Code:         bi.Code,
			Weight:       bi.Weight,
			BalesCount:   bi.BalesCount,
			SamplesCount: bi.SamplesCount,
		}); err != nil {
			return nil, nil, batchIndexed(err, i)
		}
		for j, si := range bi.Samples {
			sm, err := d.AddSample(b.ID)
			if err != nil {
				return nil, nil, sampleIndexed(err, i, j)
			}
			if err := d.ConfirmSample(b.ID, sm.ID, SampleFields{
				Quantity:     si.Quantity,
				ColorGrade:   grade.ColorGrade(si.ColorGrade),
				LeafGrade:    grade.LeafGrade(si.LeafGrade),
				StapleLength: grade.StapleLength(si.StapleLength),
			}); err != nil {
				return nil, nil, sampleIndexed(err, i, j)
			}
		}
	}

	now := s.now()
	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = fmt.Sprintf("Расчет от %s", now.Format("02.01.2006 15:04"))
	}
	return &Calculation{
		ID:            uuid.NewString(),
		Title:         title,
		CreatedAt:     now,
		Quotation:     input.Quotation,
		QuotationDate: input.QuotationDate,
		DollarRate:    input.DollarRate,
		Batches:       d.Batches(),
	}, d, nil
}

// Preview prices and aggregates the input without persisting anything.
// Incomplete batches are allowed here; only Save enforces the gate.
func (s *Service) Preview(input CalculationInput) (*View, error) {
	c, _, err := s.build(input)
	if err != nil {
		return nil, err
	}
	v := s.view(c)
	v.ID = ""
	return v, nil
}

// Save replays, gates and atomically persists the calculation, returning
// the saved record and its retrieval URL.
func (s *Service) Save(ctx context.Context, input CalculationInput) (*Calculation, string, error) {
	c, d, err := s.build(input)
	if err != nil {
		return nil, "", err
	}
	if err := d.CheckSavePreconditions(); err != nil {
		return nil, "", err
	}
	if err := s.store.Save(ctx, c); err != nil {
		if obs.CalculationsSavedTotal != nil {
			obs.CalculationsSavedTotal.WithLabelValues("error").Inc()
		}
		s.logger.Error().Err(err).Str("calculation_id", c.ID).Msg("save calculation")
		if common.IsAppError(err) {
			return nil, "", err
		}
		return nil, "", common.PersistenceError("failed to save calculation", err)
	}
	if obs.CalculationsSavedTotal != nil {
		obs.CalculationsSavedTotal.WithLabelValues("ok").Inc()
	}
	s.logger.Info().
		Str("calculation_id", c.ID).
		Int("batches", len(c.Batches)).
		Msg("calculation saved")
	return c, s.URLFor(c.ID), nil
}

// Get loads a saved calculation and attaches batch and grand-total stats.
func (s *Service) Get(ctx context.Context, id string) (*View, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, common.NotFoundError("calculation not found")
	}
	c, err := s.store.Get(ctx, id)
	if err != nil {
		if common.IsAppError(err) {
			return nil, err
		}
		return nil, common.PersistenceError("failed to load calculation", err)
	}
	return s.view(c), nil
}

// List returns saved calculation summaries, newest first.
func (s *Service) List(ctx context.Context, page, perPage int) ([]Summary, int64, error) {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 20
	}
	offset := int32((page - 1) * perPage)
	rows, total, err := s.store.List(ctx, int32(perPage), offset)
	if err != nil {
		if common.IsAppError(err) {
			return nil, 0, err
		}
		return nil, 0, common.PersistenceError("failed to list calculations", err)
	}
	return rows, total, nil
}

// URLFor builds the public retrieval URL encoded into QR exports.
func (s *Service) URLFor(id string) string {
	return fmt.Sprintf("%s/calculations/%s", s.baseURL, id)
}

func (s *Service) view(c *Calculation) *View {
	batches := make([]BatchView, 0, len(c.Batches))
	for i := range c.Batches {
		batches = append(batches, BatchView{
			Batch: c.Batches[i],
			Stats: pricing.BatchStats(c.Batches[i].PricedSamples()),
		})
	}
	return &View{
		ID:            c.ID,
		Title:         c.Title,
		CreatedAt:     c.CreatedAt,
		Quotation:     c.Quotation,
		QuotationDate: c.QuotationDate,
		DollarRate:    c.DollarRate,
		Batches:       batches,
		Totals:        pricing.CalculationStats(c.BatchTotals()),
	}
}

func batchIndexed(err error, batch int) error {
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		detailed := *appErr
		detailed.Details = map[string]any{"batch_index": batch, "problems": appErr.Details}
		return &detailed
	}
	return err
}

func sampleIndexed(err error, batch, sample int) error {
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		detailed := *appErr
		detailed.Details = map[string]any{"batch_index": batch, "sample_index": sample, "problems": appErr.Details}
		return &detailed
	}
	return err
}
