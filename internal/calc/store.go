package calc

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bakhtovar-dev/backend-paxta/internal/common"
)

// PGStore persists calculations in Postgres across the calculations,
// batches and samples tables.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore constructs a store backed by the given pool.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// Save writes the calculation with all batches and samples in a single
// transaction, so a failed nested insert can never leave a partial record.
func (s *PGStore) Save(ctx context.Context, c *Calculation) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return common.PersistenceError("begin transaction", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	_, err = tx.Exec(ctx, `
		INSERT INTO calculations (id, title, lce_quotation, quotation_date, dollar_rate, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.Title, c.Quotation, c.QuotationDate, c.DollarRate, c.CreatedAt,
	)
	if err != nil {
		return common.PersistenceError("insert calculation", err)
	}

	for i := range c.Batches {
		b := &c.Batches[i]
		_, err = tx.Exec(ctx, `
			INSERT INTO batches (id, calculation_id, year, batch_code, weight, bales_count, samples_count, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			b.ID, c.ID, b.Year, b.Code, b.Weight, b.BalesCount, b.SamplesCount, i,
		)
		if err != nil {
			return common.PersistenceError("insert batch", err)
		}
		for j := range b.Samples {
			smp := &b.Samples[j]
			_, err = tx.Exec(ctx, `
				INSERT INTO samples (id, batch_id, quantity, color_grade, leaf_grade, staple_length,
					weight, premium_discount, unit_price, amount, position)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
				smp.ID, b.ID, smp.Quantity, string(smp.ColorGrade), int(smp.LeafGrade), int(smp.StapleLength),
				smp.Weight, smp.PremiumDiscount, smp.UnitPrice, smp.Amount, j,
			)
			if err != nil {
				return common.PersistenceError("insert sample", err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return common.PersistenceError("commit transaction", err)
	}
	return nil
}

// Get loads one calculation with its batches (year descending, then entry
// order) and samples (entry order).
func (s *PGStore) Get(ctx context.Context, id string) (*Calculation, error) {
	c := &Calculation{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, title, lce_quotation, quotation_date, dollar_rate, created_at
		FROM calculations WHERE id = $1`, id,
	).Scan(&c.ID, &c.Title, &c.Quotation, &c.QuotationDate, &c.DollarRate, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NotFoundError("calculation not found")
		}
		return nil, common.PersistenceError("load calculation", err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, year, batch_code, weight, bales_count, samples_count
		FROM batches WHERE calculation_id = $1
		ORDER BY year DESC, position ASC`, id,
	)
	if err != nil {
		return nil, common.PersistenceError("load batches", err)
	}
	byID := map[string]int{}
	for rows.Next() {
		var b Batch
		if err := rows.Scan(&b.ID, &b.Year, &b.Code, &b.Weight, &b.BalesCount, &b.SamplesCount); err != nil {
			rows.Close()
			return nil, common.PersistenceError("scan batch", err)
		}
		b.State = StateConfirmed
		byID[b.ID] = len(c.Batches)
		c.Batches = append(c.Batches, b)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, common.PersistenceError("load batches", err)
	}

	srows, err := s.pool.Query(ctx, `
		SELECT s.id, s.batch_id, s.quantity, s.color_grade, s.leaf_grade, s.staple_length,
			s.weight, s.premium_discount, s.unit_price, s.amount
		FROM samples s
		JOIN batches b ON b.id = s.batch_id
		WHERE b.calculation_id = $1
		ORDER BY s.position ASC`, id,
	)
	if err != nil {
		return nil, common.PersistenceError("load samples", err)
	}
	defer srows.Close()
	for srows.Next() {
		var smp Sample
		if err := srows.Scan(&smp.ID, &smp.BatchID, &smp.Quantity, &smp.ColorGrade, &smp.LeafGrade,
			&smp.StapleLength, &smp.Weight, &smp.PremiumDiscount, &smp.UnitPrice, &smp.Amount); err != nil {
			return nil, common.PersistenceError("scan sample", err)
		}
		smp.State = StateConfirmed
		if idx, ok := byID[smp.BatchID]; ok {
			c.Batches[idx].Samples = append(c.Batches[idx].Samples, smp)
		}
	}
	if err := srows.Err(); err != nil {
		return nil, common.PersistenceError("load samples", err)
	}
	return c, nil
}

// List returns calculation summaries ordered by creation time descending,
// with batch counts resolved in the same query.
func (s *PGStore) List(ctx context.Context, limit, offset int32) ([]Summary, int64, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT c.id, c.title, c.created_at, c.quotation_date, c.dollar_rate, COUNT(b.id)
		FROM calculations c
		LEFT JOIN batches b ON b.calculation_id = c.id
		GROUP BY c.id
		ORDER BY c.created_at DESC
		LIMIT $1 OFFSET $2`, limit, offset,
	)
	if err != nil {
		return nil, 0, common.PersistenceError("list calculations", err)
	}
	defer rows.Close()
	var out []Summary
	for rows.Next() {
		var sm Summary
		if err := rows.Scan(&sm.ID, &sm.Title, &sm.CreatedAt, &sm.QuotationDate, &sm.DollarRate, &sm.BatchCount); err != nil {
			return nil, 0, common.PersistenceError("scan calculation summary", err)
		}
		out = append(out, sm)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, common.PersistenceError("list calculations", err)
	}

	var total int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM calculations`).Scan(&total); err != nil {
		return nil, 0, common.PersistenceError("count calculations", err)
	}
	return out, total, nil
}
