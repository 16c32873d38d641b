package pipeline

import (
	"github.com/apache/beam/sdks/v2/go/pkg/beam"
	"github.com/apache/beam/sdks/v2/go/pkg/beam/register"
	"github.com/jeovahfialho/txagg/internal/domain"
	"github.com/jeovahfialho/txagg/internal/errhandling"
)

func init() {
	register.Function1x2(deriveDateFn)
}

// DeriveDates attaches the calendar date of its timestamp to every
// transaction. A timestamp that does not parse fails the pipeline with a
// data error.
func DeriveDates(s beam.Scope, txs beam.PCollection) beam.PCollection {
	s = s.Scope("pipeline.DeriveDates")
	return beam.ParDo(s, deriveDateFn, txs)
}

func deriveDateFn(tx domain.Transaction) (domain.DatedTransaction, error) {
	date, err := domain.DateOf(tx.Timestamp)
	if err != nil {
		return domain.DatedTransaction{}, errhandling.Data("derive date", err)
	}
	return domain.DatedTransaction{Transaction: tx, Date: date}, nil
}
