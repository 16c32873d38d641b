package pipeline

import (
	"context"

	"github.com/apache/beam/sdks/v2/go/pkg/beam"
	"github.com/apache/beam/sdks/v2/go/pkg/beam/register"
	"github.com/jeovahfialho/txagg/internal/domain"
	"github.com/jeovahfialho/txagg/internal/storage/files"
)

func init() {
	register.DoFn3x1[context.Context, []byte, func(*domain.DailyTotal) bool, error](&writeCSVFn{})
	register.Iter1[domain.DailyTotal]()
}

// Write writes totals as a single CSV file at path. The writer is driven by
// an impulse so the file, header included, is produced even when totals is
// empty.
func Write(s beam.Scope, path string, totals beam.PCollection) {
	s = s.Scope("pipeline.Write")
	beam.ParDo0(s, &writeCSVFn{Path: path}, beam.Impulse(s), beam.SideInput{Input: totals})
}

type writeCSVFn struct {
	Path string `json:"path"`
}

func (f *writeCSVFn) ProcessElement(ctx context.Context, _ []byte, iter func(*domain.DailyTotal) bool) error {
	var totals []domain.DailyTotal
	var t domain.DailyTotal
	for iter(&t) {
		totals = append(totals, t)
	}

	if err := files.WriteTotals(ctx, f.Path, totals); err != nil {
		return err
	}
	datesWritten.Inc(ctx, int64(len(totals)))
	return nil
}
