package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/apache/beam/sdks/v2/go/pkg/beam"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeovahfialho/txagg/internal/config"
	"github.com/jeovahfialho/txagg/internal/errhandling"
	"github.com/jeovahfialho/txagg/internal/service"
	"github.com/jeovahfialho/txagg/internal/storage/cache"
	"github.com/jeovahfialho/txagg/internal/storage/postgres"
	"github.com/jeovahfialho/txagg/pkg/logger"
	"github.com/jeovahfialho/txagg/pkg/metrics"
)

var version = "dev"

func main() {
	beam.Init()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "txagg <path>",
		Short: "Aggregate transaction amounts per day",
		Long: `Reads a transactions CSV (path, glob or gs:// / s3:// URI), keeps the rows
with transaction_amount above MIN_AMOUNT and timestamp at or after CUTOFF_DATE,
and writes the total amount per date to OUTPUT_PATH.`,
		Version:      version,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), args[0])
		},
	}
}

func run(parent context.Context, input string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := logger.Init(cfg.LogLevel, cfg.Development()); err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer logger.Close()

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	publishers, closeAll, err := connectPublishers(ctx, cfg)
	if err != nil {
		logger.Error("Application Failed", zap.String("kind", errhandling.KindOf(err).String()), zap.Error(err))
		return err
	}
	defer closeAll()

	svc := service.NewAggregationService(cfg, publishers...)
	_, err = svc.Run(ctx, input)
	if err != nil {
		logger.Error("Application Failed", zap.String("kind", errhandling.KindOf(err).String()), zap.Error(err))
	}

	flushMetrics(cfg)
	return err
}

// connectPublishers opens the optional sinks. A configured sink that cannot
// be reached fails the run before any work is done.
func connectPublishers(ctx context.Context, cfg *config.Config) ([]service.Publisher, func(), error) {
	var publishers []service.Publisher
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.DatabaseURL != "" {
		db, err := postgres.NewDB(ctx, cfg)
		if err != nil {
			return nil, nil, errhandling.Output("connect postgres", err)
		}
		closers = append(closers, db.Close)
		publishers = append(publishers, postgres.NewTotalsPublisher(db))
	}

	if cfg.RedisURL != "" {
		redisCache, err := cache.NewRedisCache(ctx, cfg)
		if err != nil {
			closeAll()
			return nil, nil, errhandling.Output("connect redis", err)
		}
		closers = append(closers, func() { _ = redisCache.Close() })
		publishers = append(publishers, cache.NewTotalsPublisher(redisCache))
	}

	return publishers, closeAll, nil
}

func flushMetrics(cfg *config.Config) {
	if cfg.MetricsFile != "" {
		if err := metrics.WriteTextfile(cfg.MetricsFile); err != nil {
			logger.Warn("failed to write metrics file", zap.String("path", cfg.MetricsFile), zap.Error(err))
		}
	}

	if cfg.PushgatewayURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := metrics.Push(ctx, cfg.PushgatewayURL); err != nil {
			logger.Warn("failed to push metrics", zap.String("url", cfg.PushgatewayURL), zap.Error(err))
		}
	}
}
