package pipeline

import (
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/apache/beam/sdks/v2/go/pkg/beam"
	"github.com/apache/beam/sdks/v2/go/pkg/beam/register"
	"github.com/jeovahfialho/txagg/internal/domain"
	"github.com/shopspring/decimal"
)

func init() {
	register.Function1x2(keyByDateFn)
	register.Function2x1(sumAmountsFn)
	register.Function2x2(toDailyTotalFn)
}

// Aggregate sums the amounts of a PCollection<domain.DatedTransaction> per
// date and returns a PCollection<domain.DailyTotal> with one element per
// distinct date. Element order is unspecified.
func Aggregate(s beam.Scope, dated beam.PCollection) beam.PCollection {
	s = s.Scope("pipeline.Aggregate")
	keyed := beam.ParDo(s, keyByDateFn, dated)
	summed := beam.CombinePerKey(s, sumAmountsFn, keyed)
	return beam.ParDo(s, toDailyTotalFn, summed)
}

// Dates are keyed by their ISO string so the key coder stays a plain string.
func keyByDateFn(dt domain.DatedTransaction) (string, decimal.Decimal) {
	return dt.Date.String(), dt.Amount
}

func sumAmountsFn(a, b decimal.Decimal) decimal.Decimal {
	return a.Add(b)
}

func toDailyTotalFn(date string, total decimal.Decimal) (domain.DailyTotal, error) {
	d, err := civil.ParseDate(date)
	if err != nil {
		return domain.DailyTotal{}, fmt.Errorf("invalid date key %q: %w", date, err)
	}
	return domain.DailyTotal{Date: d, TotalAmount: total}, nil
}
