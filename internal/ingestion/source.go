package ingestion

import (
	"context"
	"fmt"
	"strings"

	"github.com/apache/beam/sdks/v2/go/pkg/beam/io/filesystem"
	"github.com/jeovahfialho/txagg/internal/domain"
	"github.com/jeovahfialho/txagg/internal/errhandling"

	_ "github.com/apache/beam/sdks/v2/go/pkg/beam/io/filesystem/gcs"
	_ "github.com/apache/beam/sdks/v2/go/pkg/beam/io/filesystem/local"
	_ "github.com/apache/beam/sdks/v2/go/pkg/beam/io/filesystem/s3"
)

// Probe expands pattern (a path, glob or URI) and checks that every match
// opens and starts with a usable header. It returns the matched files.
func Probe(ctx context.Context, pattern string) ([]string, error) {
	if strings.TrimSpace(pattern) == "" {
		return nil, errhandling.Inputf("probe input", "empty input path")
	}

	fs, err := filesystem.New(ctx, pattern)
	if err != nil {
		return nil, errhandling.Input("probe input", err)
	}
	defer fs.Close()

	files, err := fs.List(ctx, pattern)
	if err != nil {
		return nil, errhandling.Input("probe input", fmt.Errorf("listing %s: %w", pattern, err))
	}
	if len(files) == 0 {
		return nil, errhandling.Inputf("probe input", "no file matches %s", pattern)
	}

	parser := NewParser()
	for _, file := range files {
		if err := probeFile(ctx, fs, parser, file); err != nil {
			return nil, err
		}
	}

	return files, nil
}

func probeFile(ctx context.Context, fs filesystem.Interface, parser *Parser, file string) error {
	fd, err := fs.OpenRead(ctx, file)
	if err != nil {
		return errhandling.Input("probe input", fmt.Errorf("opening %s: %w", file, err))
	}
	defer fd.Close()

	if _, err := parser.ReadHeader(fd); err != nil {
		return errhandling.Input("probe input", fmt.Errorf("%s: %w", file, err))
	}
	return nil
}

// ReadFile opens file through the Beam filesystem and parses it.
func ReadFile(ctx context.Context, parser *Parser, file string, emit func(domain.Transaction)) (int64, error) {
	fs, err := filesystem.New(ctx, file)
	if err != nil {
		return 0, errhandling.Input("read csv", err)
	}
	defer fs.Close()

	fd, err := fs.OpenRead(ctx, file)
	if err != nil {
		return 0, errhandling.Input("read csv", fmt.Errorf("opening %s: %w", file, err))
	}
	defer fd.Close()

	return parser.ParseFile(ctx, fd, file, emit)
}
