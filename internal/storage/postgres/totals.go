package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jeovahfialho/txagg/internal/domain"
)

const TotalsTable = "daily_totals"

var totalsColumns = []string{"date", "total_amount"}

const createTotalsTable = `
	CREATE TABLE IF NOT EXISTS daily_totals (
		date         date    PRIMARY KEY,
		total_amount numeric NOT NULL
	)`

// TotalsPublisher replaces the content of daily_totals with the totals of a
// run. Readers never see a partially loaded table.
type TotalsPublisher struct {
	db *DB
}

func NewTotalsPublisher(db *DB) *TotalsPublisher {
	return &TotalsPublisher{db: db}
}

func (p *TotalsPublisher) Name() string {
	return "postgres"
}

func (p *TotalsPublisher) Publish(ctx context.Context, totals []domain.DailyTotal) error {
	if _, err := p.db.pool.Exec(ctx, createTotalsTable); err != nil {
		return fmt.Errorf("creating %s: %w", TotalsTable, err)
	}

	tx, err := p.db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM "+TotalsTable); err != nil {
		return fmt.Errorf("clearing %s: %w", TotalsTable, err)
	}

	copied, err := tx.CopyFrom(
		ctx,
		pgx.Identifier{TotalsTable},
		totalsColumns,
		&totalSource{totals: totals},
	)
	if err != nil {
		return fmt.Errorf("copying totals: %w", err)
	}
	if copied != int64(len(totals)) {
		return fmt.Errorf("copied %d of %d totals", copied, len(totals))
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing totals: %w", err)
	}
	return nil
}

type totalSource struct {
	totals []domain.DailyTotal
	index  int
}

func (ts *totalSource) Next() bool {
	ts.index++
	return ts.index <= len(ts.totals)
}

func (ts *totalSource) Values() ([]interface{}, error) {
	if ts.index > len(ts.totals) {
		return nil, nil
	}

	t := ts.totals[ts.index-1]
	return []interface{}{
		pgtype.Date{Time: t.Date.In(time.UTC), Valid: true},
		pgtype.Numeric{Int: t.TotalAmount.Coefficient(), Exp: t.TotalAmount.Exponent(), Valid: true},
	}, nil
}

func (ts *totalSource) Err() error {
	return nil
}
