package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/apache/beam/sdks/v2/go/pkg/beam"
	"github.com/google/uuid"
	"github.com/jeovahfialho/txagg/internal/config"
	"github.com/jeovahfialho/txagg/internal/domain"
	"github.com/jeovahfialho/txagg/internal/errhandling"
	"github.com/jeovahfialho/txagg/internal/ingestion"
	"github.com/jeovahfialho/txagg/internal/pipeline"
	"github.com/jeovahfialho/txagg/internal/storage/files"
	"github.com/jeovahfialho/txagg/pkg/logger"
	"github.com/jeovahfialho/txagg/pkg/metrics"
	"go.uber.org/zap"

	_ "github.com/apache/beam/sdks/v2/go/pkg/beam/runners/direct"
	_ "github.com/apache/beam/sdks/v2/go/pkg/beam/runners/prism"
)

// Publisher receives the committed totals of a successful run.
type Publisher interface {
	Name() string
	Publish(ctx context.Context, totals []domain.DailyTotal) error
}

type RunReport struct {
	RunID  string
	Input  string
	Files  []string
	Output string

	RowsRead          int64
	RowsKept          int64
	RowsDroppedAmount int64
	RowsDroppedDate   int64
	DatesWritten      int

	Duration time.Duration
}

type AggregationService struct {
	cfg        *config.Config
	publishers []Publisher
}

func NewAggregationService(cfg *config.Config, publishers ...Publisher) *AggregationService {
	return &AggregationService{
		cfg:        cfg,
		publishers: publishers,
	}
}

// Run aggregates the transactions matched by input into the configured output
// file. The output is either fully replaced or left untouched.
func (s *AggregationService) Run(ctx context.Context, input string) (*RunReport, error) {
	timer := metrics.NewTimer()
	runID := uuid.NewString()
	ctx = logger.WithRunID(ctx, runID)
	log := logger.WithContext(ctx)

	log.Info("Starting Application",
		zap.String("input", input),
		zap.String("output", s.cfg.OutputPath),
		zap.String("runner", s.cfg.Runner),
	)

	report := &RunReport{RunID: runID, Input: input, Output: s.cfg.OutputPath}
	err := s.run(ctx, log, report)
	report.Duration = timer.Elapsed()

	if err != nil {
		metrics.RecordRun("failure", report.Duration)
		return nil, err
	}
	metrics.RecordRun("success", report.Duration)

	log.Info("Application Complete",
		zap.Int64("rows_read", report.RowsRead),
		zap.Int64("rows_kept", report.RowsKept),
		zap.Int("dates_written", report.DatesWritten),
		zap.Duration("duration", report.Duration),
	)
	return report, nil
}

func (s *AggregationService) run(ctx context.Context, log *zap.Logger, report *RunReport) error {
	inputs, err := ingestion.Probe(ctx, report.Input)
	if err != nil {
		return err
	}
	report.Files = inputs

	staging, err := files.NewStaging(ctx, s.cfg.OutputPath, report.RunID)
	if err != nil {
		return err
	}
	defer func() {
		if err := staging.Close(ctx); err != nil {
			log.Warn("failed to remove staging file", zap.Error(err))
		}
	}()

	p, scope := beam.NewPipelineWithRoot()
	txs := pipeline.Read(scope, inputs)

	log.Info("Filtering Results", zap.Stringer("min_amount", s.cfg.MinAmount), zap.String("cutoff", s.cfg.CutoffDate))
	kept := pipeline.Filter(scope, s.cfg.FilterRule(), txs)

	log.Info("Converting Date")
	dated := pipeline.DeriveDates(scope, kept)

	log.Info("Aggregating Results")
	totals := pipeline.Aggregate(scope, dated)

	log.Info("Writing to CSV", zap.String("staging", staging.Path()))
	pipeline.Write(scope, staging.Path(), totals)

	res, err := beam.Run(ctx, s.cfg.Runner, p)
	if err != nil {
		return runError(ctx, err)
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("run canceled before commit: %w", err)
	}
	if err := staging.Commit(ctx); err != nil {
		return err
	}

	counts := pipeline.CountsFrom(res)
	report.RowsRead = counts.RowsRead
	report.RowsKept = counts.RowsKept
	report.RowsDroppedAmount = counts.RowsDroppedAmount
	report.RowsDroppedDate = counts.RowsDroppedDate
	metrics.RecordRows(counts.RowsKept, counts.RowsDroppedAmount, counts.RowsDroppedDate)

	written, err := files.ReadTotals(ctx, staging.Final())
	if err != nil {
		return errhandling.Output("read back output", err)
	}
	report.DatesWritten = len(written)
	metrics.DatesWritten.Set(float64(len(written)))

	return s.publish(ctx, log, written)
}

func (s *AggregationService) publish(ctx context.Context, log *zap.Logger, totals []domain.DailyTotal) error {
	for _, pub := range s.publishers {
		timer := metrics.NewTimer()
		err := pub.Publish(ctx, totals)
		if err != nil {
			metrics.RecordPublish(pub.Name(), "failure", timer.Elapsed())
			return errhandling.Output("publish "+pub.Name(), err)
		}
		metrics.RecordPublish(pub.Name(), "success", timer.Elapsed())
		log.Info("Published Results", zap.String("sink", pub.Name()), zap.Int("dates", len(totals)))
	}
	return nil
}

// runError keeps the kind of a failure raised inside the pipeline. Runner
// errors that carry no kind are returned unclassified.
func runError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil && errhandling.KindOf(err) == errhandling.KindUnknown {
		return fmt.Errorf("pipeline canceled: %w", ctxErr)
	}

	var classified *errhandling.Error
	if errors.As(err, &classified) {
		return err
	}
	if kind := errhandling.KindOf(err); kind != errhandling.KindUnknown {
		return &errhandling.Error{Kind: kind, Op: "run pipeline", Err: err}
	}
	return fmt.Errorf("running pipeline: %w", err)
}
