// Package files owns the output CSV: its encoding, the staging file the
// pipeline writes and the rename that publishes it.
package files

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/civil"
	"github.com/apache/beam/sdks/v2/go/pkg/beam/io/filesystem"
	"github.com/jeovahfialho/txagg/internal/domain"
	"github.com/jeovahfialho/txagg/internal/errhandling"
	"github.com/shopspring/decimal"
)

var header = []string{"date", "total_amount"}

// EncodeTotals writes the header and one line per total, in the given order.
func EncodeTotals(w io.Writer, totals []domain.DailyTotal) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, t := range totals {
		if err := cw.Write([]string{t.Date.String(), t.TotalAmount.String()}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// DecodeTotals reads a file produced by EncodeTotals.
func DecodeTotals(r io.Reader) ([]domain.DailyTotal, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(header)

	first, err := cr.Read()
	if err == io.EOF {
		return nil, errors.New("empty file, expected a header row")
	}
	if err != nil {
		return nil, err
	}
	if first[0] != header[0] || first[1] != header[1] {
		return nil, fmt.Errorf("unexpected header %v", first)
	}

	totals := []domain.DailyTotal{}
	for {
		record, err := cr.Read()
		if err == io.EOF {
			return totals, nil
		}
		if err != nil {
			return nil, err
		}

		date, err := civil.ParseDate(record[0])
		if err != nil {
			return nil, err
		}
		amount, err := decimal.NewFromString(record[1])
		if err != nil {
			return nil, err
		}
		totals = append(totals, domain.DailyTotal{Date: date, TotalAmount: amount})
	}
}

// WriteTotals sorts totals by date and writes them to path.
func WriteTotals(ctx context.Context, path string, totals []domain.DailyTotal) error {
	domain.SortDailyTotals(totals)

	fs, err := filesystem.New(ctx, path)
	if err != nil {
		return errhandling.Output("write csv", err)
	}
	defer fs.Close()

	fd, err := fs.OpenWrite(ctx, path)
	if err != nil {
		return errhandling.Output("write csv", fmt.Errorf("opening %s: %w", path, err))
	}

	buf := bufio.NewWriterSize(fd, 1<<20)
	if err := EncodeTotals(buf, totals); err != nil {
		fd.Close()
		return errhandling.Output("write csv", fmt.Errorf("writing %s: %w", path, err))
	}
	if err := buf.Flush(); err != nil {
		fd.Close()
		return errhandling.Output("write csv", fmt.Errorf("writing %s: %w", path, err))
	}
	if err := fd.Close(); err != nil {
		return errhandling.Output("write csv", fmt.Errorf("closing %s: %w", path, err))
	}
	return nil
}

// ReadTotals reads an output file back.
func ReadTotals(ctx context.Context, path string) ([]domain.DailyTotal, error) {
	fs, err := filesystem.New(ctx, path)
	if err != nil {
		return nil, err
	}
	defer fs.Close()

	fd, err := fs.OpenRead(ctx, path)
	if err != nil {
		return nil, err
	}
	defer fd.Close()

	totals, err := DecodeTotals(fd)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return totals, nil
}
