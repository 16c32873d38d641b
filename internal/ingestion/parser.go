package ingestion

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jeovahfialho/txagg/internal/domain"
	"github.com/jeovahfialho/txagg/internal/errhandling"
	"github.com/shopspring/decimal"
)

const (
	ColumnAmount    = "transaction_amount"
	ColumnTimestamp = "timestamp"
)

const utf8BOM = "\ufeff"

// Header holds the positions of the columns the job reads. Other columns are
// carried in the file but ignored.
type Header struct {
	Amount    int
	Timestamp int
	Width     int
}

// ParseHeader locates the required columns in a header record.
func ParseHeader(record []string) (Header, error) {
	h := Header{Amount: -1, Timestamp: -1, Width: len(record)}

	for i, name := range record {
		if i == 0 {
			name = strings.TrimPrefix(name, utf8BOM)
		}
		switch strings.TrimSpace(name) {
		case ColumnAmount:
			h.Amount = i
		case ColumnTimestamp:
			h.Timestamp = i
		}
	}

	var missing []string
	if h.Amount < 0 {
		missing = append(missing, ColumnAmount)
	}
	if h.Timestamp < 0 {
		missing = append(missing, ColumnTimestamp)
	}
	if len(missing) > 0 {
		return Header{}, fmt.Errorf("header %v is missing column(s) %s", record, strings.Join(missing, ", "))
	}

	return h, nil
}

type Parser struct {
	comma rune
}

func NewParser() *Parser {
	return &Parser{comma: ','}
}

func (p *Parser) newReader(r io.Reader) *csv.Reader {
	csvReader := csv.NewReader(r)
	csvReader.Comma = p.comma
	csvReader.ReuseRecord = true
	return csvReader
}

// ReadHeader reads and validates only the header of a CSV stream.
func (p *Parser) ReadHeader(r io.Reader) (Header, error) {
	return readHeader(p.newReader(r))
}

func readHeader(csvReader *csv.Reader) (Header, error) {
	record, err := csvReader.Read()
	if err == io.EOF {
		return Header{}, errors.New("empty file, expected a header row")
	}
	if err != nil {
		return Header{}, fmt.Errorf("reading header: %w", err)
	}
	return ParseHeader(record)
}

// ParseFile emits one Transaction per data row of a CSV stream and returns
// the number of rows emitted. source names the stream in error messages.
func (p *Parser) ParseFile(ctx context.Context, r io.Reader, source string, emit func(domain.Transaction)) (int64, error) {
	csvReader := p.newReader(r)

	header, err := readHeader(csvReader)
	if err != nil {
		return 0, errhandling.Input("read csv", fmt.Errorf("%s: %w", source, err))
	}

	var count int64
	for {
		if err := ctx.Err(); err != nil {
			return count, err
		}

		record, err := csvReader.Read()
		if err == io.EOF {
			return count, nil
		}
		if err != nil {
			return count, errhandling.Input("read csv", fmt.Errorf("%s: %w", source, err))
		}

		line, _ := csvReader.FieldPos(0)
		tx, err := header.parseRecord(record)
		if err != nil {
			return count, errhandling.Data("parse row", fmt.Errorf("%s line %d: %w", source, line, err))
		}

		emit(tx)
		count++
	}
}

func (h Header) parseRecord(record []string) (domain.Transaction, error) {
	raw := strings.TrimSpace(record[h.Amount])
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("%s %q is not a number", ColumnAmount, raw)
	}

	return domain.Transaction{
		Amount:    amount,
		Timestamp: record[h.Timestamp],
	}, nil
}
