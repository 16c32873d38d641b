package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/apache/beam/sdks/v2/go/pkg/beam/testing/ptest"
	"github.com/jeovahfialho/txagg/internal/errhandling"
)

func TestMain(m *testing.M) {
	ptest.MainWithDefault(m, "direct")
}

func TestRootCmdArgs(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no path", nil},
		{"two paths", []string{"a.csv", "b.csv"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newRootCmd()
			cmd.SetArgs(tt.args)
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetErr(&bytes.Buffer{})

			if err := cmd.Execute(); err == nil {
				t.Errorf("Execute(%v) error = nil, want error", tt.args)
			}
		})
	}
}

func TestRootCmdVersion(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--version"})
	cmd.SetOut(&out)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute(--version) error = %v", err)
	}
	if !strings.Contains(out.String(), version) {
		t.Errorf("version output %q does not contain %q", out.String(), version)
	}
}

func TestRootCmdRun(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "transactions.csv")
	output := filepath.Join(dir, "out", "results.csv")
	metricsFile := filepath.Join(dir, "txagg.prom")
	if err := os.WriteFile(input, []byte("timestamp,transaction_amount\n2010-01-01,25\n2010-01-01,30\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("OUTPUT_PATH", output)
	t.Setenv("METRICS_FILE", metricsFile)

	cmd := newRootCmd()
	cmd.SetArgs([]string{input})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if got, want := string(data), "date,total_amount\n2010-01-01,55\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
	if _, err := os.Stat(metricsFile); err != nil {
		t.Errorf("metrics file not written: %v", err)
	}
}

func TestRootCmdMissingInput(t *testing.T) {
	t.Setenv("OUTPUT_PATH", filepath.Join(t.TempDir(), "results.csv"))

	cmd := newRootCmd()
	cmd.SetArgs([]string{filepath.Join(t.TempDir(), "missing.csv")})

	err := cmd.Execute()
	if got := errhandling.KindOf(err); got != errhandling.KindInput {
		t.Errorf("KindOf(%v) = %v, want %v", err, got, errhandling.KindInput)
	}
}

func TestRootCmdInvalidConfig(t *testing.T) {
	t.Setenv("RUNNER", "spark")

	cmd := newRootCmd()
	cmd.SetArgs([]string{"input.csv"})
	if err := cmd.Execute(); err == nil {
		t.Error("Execute() with RUNNER=spark error = nil")
	}
}
