// Package pipeline holds the Beam transforms of the aggregation job: read the
// transaction CSVs, filter, derive dates, sum per date and write the totals.
package pipeline

import (
	"context"

	"github.com/apache/beam/sdks/v2/go/pkg/beam"
	"github.com/apache/beam/sdks/v2/go/pkg/beam/register"
	"github.com/jeovahfialho/txagg/internal/domain"
	"github.com/jeovahfialho/txagg/internal/ingestion"
)

func init() {
	register.DoFn3x1[context.Context, string, func(domain.Transaction), error](&readCSVFn{})
	register.Emitter1[domain.Transaction]()
}

// Read parses every file in files into a PCollection<domain.Transaction>.
// The files are expected to have been probed already.
func Read(s beam.Scope, files []string) beam.PCollection {
	s = s.Scope("pipeline.Read")
	paths := beam.CreateList(s, files)
	return beam.ParDo(s, &readCSVFn{}, paths)
}

type readCSVFn struct {
	parser *ingestion.Parser
}

func (f *readCSVFn) Setup() {
	f.parser = ingestion.NewParser()
}

func (f *readCSVFn) ProcessElement(ctx context.Context, file string, emit func(domain.Transaction)) error {
	n, err := ingestion.ReadFile(ctx, f.parser, file, emit)
	rowsRead.Inc(ctx, n)
	return err
}
