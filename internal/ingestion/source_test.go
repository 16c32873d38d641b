package ingestion

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/apache/beam/sdks/v2/go/pkg/beam/io/filesystem/memfs"
	"github.com/jeovahfialho/txagg/internal/domain"
	"github.com/jeovahfialho/txagg/internal/errhandling"
)

func writeFile(t *testing.T, dir, name, data string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestProbe(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	good := writeFile(t, dir, "a.csv", "transaction_amount,timestamp\n25,2010-01-01\n")
	writeFile(t, dir, "b.csv", "timestamp,transaction_amount,note\n")

	files, err := Probe(ctx, good)
	if err != nil {
		t.Fatalf("Probe(%q) error = %v", good, err)
	}
	if len(files) != 1 || files[0] != good {
		t.Errorf("Probe(%q) = %v, want [%s]", good, files, good)
	}

	files, err = Probe(ctx, filepath.Join(dir, "*.csv"))
	if err != nil {
		t.Fatalf("Probe(glob) error = %v", err)
	}
	if len(files) != 2 {
		t.Errorf("Probe(glob) matched %d files, want 2", len(files))
	}
}

func TestProbeErrors(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	empty := writeFile(t, dir, "empty.csv", "")
	noColumn := writeFile(t, dir, "nocol.csv", "amount,timestamp\n1,2010-01-01\n")

	tests := []struct {
		name    string
		pattern string
	}{
		{"blank", "  "},
		{"missing file", filepath.Join(dir, "missing.csv")},
		{"empty file", empty},
		{"missing column", noColumn},
		{"unknown scheme", "ftp://host/file.csv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Probe(ctx, tt.pattern)
			if err == nil {
				t.Fatalf("Probe(%q) error = nil, want input error", tt.pattern)
			}
			if got := errhandling.KindOf(err); got != errhandling.KindInput {
				t.Errorf("KindOf(%v) = %v, want input", err, got)
			}
		})
	}
}

func TestReadFileMemfs(t *testing.T) {
	const path = "memfs://ingestion/read.csv"
	memfs.Write(path, []byte("transaction_amount,timestamp\n25,2010-01-01\n30,2010-01-01\n"))

	var got []domain.Transaction
	n, err := ReadFile(context.Background(), NewParser(), path, func(tx domain.Transaction) {
		got = append(got, tx)
	})
	if err != nil {
		t.Fatalf("ReadFile(%q) error = %v", path, err)
	}
	if n != 2 || len(got) != 2 {
		t.Errorf("ReadFile(%q) = %d rows (%d emitted), want 2", path, n, len(got))
	}
}
