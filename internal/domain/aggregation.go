package domain

import (
	"sort"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// DailyTotal is the sum of transaction amounts for one calendar date.
type DailyTotal struct {
	Date        civil.Date      `json:"date"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// SortDailyTotals orders totals by ascending date.
func SortDailyTotals(totals []DailyTotal) {
	sort.Slice(totals, func(i, j int) bool {
		return totals[i].Date.Before(totals[j].Date)
	})
}
