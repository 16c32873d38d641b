package pipeline

import (
	"github.com/apache/beam/sdks/v2/go/pkg/beam"
)

// Namespace of every counter the pipeline reports.
const Namespace = "txagg"

var (
	rowsRead          = beam.NewCounter(Namespace, "rows_read")
	rowsKept          = beam.NewCounter(Namespace, "rows_kept")
	rowsDroppedAmount = beam.NewCounter(Namespace, "rows_dropped_amount")
	rowsDroppedDate   = beam.NewCounter(Namespace, "rows_dropped_date")
	datesWritten      = beam.NewCounter(Namespace, "dates_written")
)

// Counts are the pipeline counters summed over all steps.
type Counts struct {
	RowsRead          int64
	RowsKept          int64
	RowsDroppedAmount int64
	RowsDroppedDate   int64
	DatesWritten      int64
}

// CountsFrom extracts Counts from a pipeline result. Runners that report no
// metrics yield zero counts.
func CountsFrom(res beam.PipelineResult) Counts {
	var c Counts
	if res == nil {
		return c
	}

	for _, cr := range res.Metrics().AllMetrics().Counters() {
		if cr.Key.Namespace != Namespace {
			continue
		}
		switch cr.Key.Name {
		case "rows_read":
			c.RowsRead += cr.Result()
		case "rows_kept":
			c.RowsKept += cr.Result()
		case "rows_dropped_amount":
			c.RowsDroppedAmount += cr.Result()
		case "rows_dropped_date":
			c.RowsDroppedDate += cr.Result()
		case "dates_written":
			c.DatesWritten += cr.Result()
		}
	}
	return c
}
