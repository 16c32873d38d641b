package domain

import (
	"testing"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

func tx(amount, ts string) Transaction {
	return Transaction{Amount: decimal.RequireFromString(amount), Timestamp: ts}
}

func TestFilterRuleCheck(t *testing.T) {
	rule := DefaultFilterRule()

	tests := []struct {
		name string
		in   Transaction
		want Verdict
	}{
		{"kept", tx("25", "2010-01-01"), Kept},
		{"amount at threshold", tx("20", "2010-01-02"), DroppedByAmount},
		{"amount just above threshold", tx("20.01", "2010-01-02"), Kept},
		{"negative amount", tx("-50", "2012-05-05"), DroppedByAmount},
		{"before cutoff", tx("50", "2009-12-31"), DroppedByDate},
		{"cutoff with time of day", tx("50", "2010-01-01 00:00:00"), Kept},
		{"late time before cutoff", tx("50", "2009-12-31T23:59:59"), DroppedByDate},
		{"amount checked first", tx("10", "2009-12-31"), DroppedByAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rule.Check(tt.in); got != tt.want {
				t.Errorf("Check(%+v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestFilterRuleIdempotent(t *testing.T) {
	rule := DefaultFilterRule()
	rows := []Transaction{
		tx("25", "2010-01-01"),
		tx("15", "2010-01-02"),
		tx("30", "2010-01-01"),
		tx("50", "2009-12-31"),
		tx("21", "2015-06-30 12:00:00"),
	}

	once := keepAll(rule, rows)
	twice := keepAll(rule, once)

	if len(once) != len(twice) {
		t.Fatalf("filtering twice kept %d rows, once kept %d", len(twice), len(once))
	}
	for i := range once {
		if once[i] != twice[i] {
			t.Errorf("row %d changed: %+v != %+v", i, once[i], twice[i])
		}
	}
	for _, r := range once {
		if !r.Amount.GreaterThan(decimal.NewFromInt(20)) || r.Timestamp < "2010-01-01" {
			t.Errorf("row %+v violates the filter", r)
		}
	}
}

func keepAll(rule FilterRule, rows []Transaction) []Transaction {
	var out []Transaction
	for _, r := range rows {
		if rule.Keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func TestDateOf(t *testing.T) {
	tests := []struct {
		in   string
		want civil.Date
	}{
		{"2010-01-01", civil.Date{Year: 2010, Month: 1, Day: 1}},
		{"2010-01-01 23:59:59", civil.Date{Year: 2010, Month: 1, Day: 1}},
		{"2010-01-01T08:15:00", civil.Date{Year: 2010, Month: 1, Day: 1}},
		{"2010-01-01T08:15:00.123456", civil.Date{Year: 2010, Month: 1, Day: 1}},
		{"2010-01-01T23:30:00Z", civil.Date{Year: 2010, Month: 1, Day: 1}},
		// The offset is kept, not converted to UTC.
		{"2010-01-01T23:30:00-05:00", civil.Date{Year: 2010, Month: 1, Day: 1}},
		{"2010-01-01 23:30:00+0100", civil.Date{Year: 2010, Month: 1, Day: 1}},
		{"2017-03-18 14:09:16 UTC", civil.Date{Year: 2017, Month: 3, Day: 18}},
		{"2009-01-09 02:54:25.123 UTC", civil.Date{Year: 2009, Month: 1, Day: 9}},
		{"2017-03-18T23:59:59 UTC", civil.Date{Year: 2017, Month: 3, Day: 18}},
		{"2011-02-03 04:05", civil.Date{Year: 2011, Month: 2, Day: 3}},
		{"2011/02/03", civil.Date{Year: 2011, Month: 2, Day: 3}},
		{"  2012-12-12  ", civil.Date{Year: 2012, Month: 12, Day: 12}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := DateOf(tt.in)
			if err != nil {
				t.Fatalf("DateOf(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("DateOf(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestDateOfInvalid(t *testing.T) {
	for _, in := range []string{"not-a-date", "", "2010-13-01", "01/02/2010"} {
		if _, err := DateOf(in); err == nil {
			t.Errorf("DateOf(%q) error = nil, want error", in)
		}
	}
}

func TestSortDailyTotals(t *testing.T) {
	totals := []DailyTotal{
		{Date: civil.Date{Year: 2011, Month: 1, Day: 1}, TotalAmount: decimal.NewFromInt(1)},
		{Date: civil.Date{Year: 2010, Month: 12, Day: 31}, TotalAmount: decimal.NewFromInt(2)},
		{Date: civil.Date{Year: 2010, Month: 1, Day: 1}, TotalAmount: decimal.NewFromInt(3)},
	}

	SortDailyTotals(totals)

	for i := 1; i < len(totals); i++ {
		if !totals[i-1].Date.Before(totals[i].Date) {
			t.Fatalf("totals not ascending at %d: %v then %v", i, totals[i-1].Date, totals[i].Date)
		}
	}
}
