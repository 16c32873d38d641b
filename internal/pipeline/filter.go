package pipeline

import (
	"context"

	"github.com/apache/beam/sdks/v2/go/pkg/beam"
	"github.com/apache/beam/sdks/v2/go/pkg/beam/register"
	"github.com/jeovahfialho/txagg/internal/domain"
)

func init() {
	register.DoFn3x0[context.Context, domain.Transaction, func(domain.Transaction)](&filterFn{})
}

// Filter keeps the transactions accepted by rule.
func Filter(s beam.Scope, rule domain.FilterRule, txs beam.PCollection) beam.PCollection {
	s = s.Scope("pipeline.Filter")
	return beam.ParDo(s, &filterFn{Rule: rule}, txs)
}

type filterFn struct {
	Rule domain.FilterRule `json:"rule"`
}

func (f *filterFn) ProcessElement(ctx context.Context, tx domain.Transaction, emit func(domain.Transaction)) {
	switch f.Rule.Check(tx) {
	case domain.Kept:
		rowsKept.Inc(ctx, 1)
		emit(tx)
	case domain.DroppedByAmount:
		rowsDroppedAmount.Inc(ctx, 1)
	case domain.DroppedByDate:
		rowsDroppedDate.Inc(ctx, 1)
	}
}
