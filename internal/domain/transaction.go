package domain

import (
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Transaction is one input row. Timestamp is kept as read so the cutoff
// comparison works on the raw text.
type Transaction struct {
	Amount    decimal.Decimal `json:"transaction_amount"`
	Timestamp string          `json:"timestamp"`
}

// DatedTransaction is a Transaction with its calendar date derived.
type DatedTransaction struct {
	Transaction
	Date civil.Date `json:"date"`
}

// Verdict is the outcome of checking a Transaction against a FilterRule.
type Verdict int

const (
	Kept Verdict = iota
	DroppedByAmount
	DroppedByDate
)

// FilterRule keeps rows with Amount > MinAmount and Timestamp >= Cutoff.
type FilterRule struct {
	MinAmount decimal.Decimal `json:"min_amount"`
	Cutoff    string          `json:"cutoff"`
}

func DefaultFilterRule() FilterRule {
	return FilterRule{
		MinAmount: decimal.NewFromInt(20),
		Cutoff:    "2010-01-01",
	}
}

// Check compares the raw timestamp string with the cutoff; it does not
// truncate to a date first, so "2010-01-01 00:00:00" passes a "2010-01-01"
// cutoff and "2009-12-31T23:59:59" does not.
func (r FilterRule) Check(tx Transaction) Verdict {
	if !tx.Amount.GreaterThan(r.MinAmount) {
		return DroppedByAmount
	}
	if tx.Timestamp < r.Cutoff {
		return DroppedByDate
	}
	return Kept
}

func (r FilterRule) Keep(tx Transaction) bool {
	return r.Check(tx) == Kept
}

var timestampLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	time.RFC3339,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05-0700",
	"2006-01-02 15:04:05 -0700",
	"2006-01-02T15:04:05-0700",
	"2006-01-02 15:04:05 MST",
	"2006-01-02T15:04:05 MST",
	"2006/01/02",
	"2006/01/02 15:04:05",
}

// ParseTimestamp accepts ISO-8601-like values. Fractional seconds are
// accepted after any layout with seconds.
func ParseTimestamp(value string) (time.Time, error) {
	s := strings.TrimSpace(value)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", value)
}

// DateOf truncates a timestamp to its calendar date in the timestamp's own
// offset.
func DateOf(value string) (civil.Date, error) {
	t, err := ParseTimestamp(value)
	if err != nil {
		return civil.Date{}, err
	}
	return civil.DateOf(t), nil
}
