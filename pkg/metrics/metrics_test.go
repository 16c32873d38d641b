package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordRows(t *testing.T) {
	before := testutil.ToFloat64(RowsProcessed.WithLabelValues("kept"))

	RecordRows(3, 1, 2)

	if got := testutil.ToFloat64(RowsProcessed.WithLabelValues("kept")) - before; got != 3 {
		t.Errorf("kept delta = %v, want 3", got)
	}
}

func TestRecordRun(t *testing.T) {
	before := testutil.ToFloat64(Runs.WithLabelValues("success"))

	RecordRun("success", 2*time.Second)

	if got := testutil.ToFloat64(Runs.WithLabelValues("success")) - before; got != 1 {
		t.Errorf("runs delta = %v, want 1", got)
	}
	if testutil.ToFloat64(LastSuccess) == 0 {
		t.Error("last success timestamp not set")
	}
}

func TestWriteTextfile(t *testing.T) {
	DatesWritten.Set(7)
	path := filepath.Join(t.TempDir(), "txagg.prom")

	if err := WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading textfile: %v", err)
	}
	if !strings.Contains(string(data), "txagg_dates_written 7") {
		t.Errorf("textfile missing dates gauge:\n%s", data)
	}
}

func TestPush(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	if err := Push(context.Background(), srv.URL); err != nil {
		t.Fatalf("Push() error = %v", err)
	}
	if gotPath != "/metrics/job/"+Job {
		t.Errorf("pushed to %q, want /metrics/job/%s", gotPath, Job)
	}
}

func TestTimer(t *testing.T) {
	timer := NewTimer()
	if timer.Elapsed() < 0 {
		t.Error("negative elapsed time")
	}
}
