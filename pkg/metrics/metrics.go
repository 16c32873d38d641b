package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

const Job = "txagg"

var (
	RowsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "txagg_rows_processed_total",
		Help: "Total number of input rows by outcome",
	}, []string{"status"})

	DatesWritten = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "txagg_dates_written",
		Help: "Number of dates written by the last run",
	})

	RunDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "txagg_run_duration_seconds",
		Help:    "Duration of aggregation runs",
		Buckets: prometheus.DefBuckets,
	}, []string{"status"})

	Runs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "txagg_runs_total",
		Help: "Total number of aggregation runs by outcome",
	}, []string{"status"})

	PublishDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "txagg_publish_duration_seconds",
		Help:    "Duration of publishing totals to a sink",
		Buckets: prometheus.DefBuckets,
	}, []string{"sink", "status"})

	LastSuccess = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "txagg_last_success_timestamp_seconds",
		Help: "Unix time of the last successful run",
	})
)

// RecordRows adds the row outcomes of one run.
func RecordRows(kept, droppedAmount, droppedDate int64) {
	RowsProcessed.WithLabelValues("kept").Add(float64(kept))
	RowsProcessed.WithLabelValues("dropped_amount").Add(float64(droppedAmount))
	RowsProcessed.WithLabelValues("dropped_date").Add(float64(droppedDate))
}

func RecordRun(status string, duration time.Duration) {
	Runs.WithLabelValues(status).Inc()
	RunDuration.WithLabelValues(status).Observe(duration.Seconds())
	if status == "success" {
		LastSuccess.SetToCurrentTime()
	}
}

func RecordPublish(sink, status string, duration time.Duration) {
	PublishDuration.WithLabelValues(sink, status).Observe(duration.Seconds())
}

// WriteTextfile dumps the default registry in the node exporter textfile
// format.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}

// Push sends the default registry to a Pushgateway under Job.
func Push(ctx context.Context, url string) error {
	return push.New(url, Job).Gatherer(prometheus.DefaultGatherer).PushContext(ctx)
}

type Timer struct {
	start time.Time
}

func NewTimer() *Timer {
	return &Timer{
		start: time.Now(),
	}
}

func (t *Timer) Elapsed() time.Duration {
	return time.Since(t.start)
}
