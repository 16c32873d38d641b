package files

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/apache/beam/sdks/v2/go/pkg/beam/io/filesystem"
	"github.com/jeovahfialho/txagg/internal/errhandling"
)

// Staging is the temporary file a run writes before it is renamed onto the
// final output. Both live on the same filesystem.
type Staging struct {
	fs        filesystem.Interface
	final     string
	temp      string
	committed bool
}

// NewStaging prepares the staging file of run runID. Parent directories of a
// local final path are created.
func NewStaging(ctx context.Context, final, runID string) (*Staging, error) {
	if !strings.Contains(final, "://") {
		if err := os.MkdirAll(filepath.Dir(final), 0o755); err != nil {
			return nil, errhandling.Output("stage output", err)
		}
	}

	fsys, err := filesystem.New(ctx, final)
	if err != nil {
		return nil, errhandling.Output("stage output", err)
	}

	return &Staging{
		fs:    fsys,
		final: final,
		temp:  fmt.Sprintf("%s.%s.tmp", final, runID),
	}, nil
}

// Path is where the pipeline writes.
func (s *Staging) Path() string {
	return s.temp
}

// Final is the committed output path.
func (s *Staging) Final() string {
	return s.final
}

// Commit renames the staging file onto the final path, replacing it.
func (s *Staging) Commit(ctx context.Context) error {
	if err := filesystem.Rename(ctx, s.fs, s.temp, s.final); err != nil {
		return errhandling.Output("commit output", fmt.Errorf("renaming %s to %s: %w", s.temp, s.final, err))
	}
	s.committed = true
	return nil
}

// Close removes the staging file when the run did not commit and releases
// the filesystem. Safe to defer right after NewStaging.
func (s *Staging) Close(ctx context.Context) error {
	defer s.fs.Close()

	if s.committed {
		return nil
	}
	remover, ok := s.fs.(filesystem.Remover)
	if !ok {
		return nil
	}
	if err := remover.Remove(ctx, s.temp); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing %s: %w", s.temp, err)
	}
	return nil
}
