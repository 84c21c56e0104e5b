// Package backtest implements the Magic Formula simulation engine: it
// replays an equal-weighted, periodically rebalanced portfolio over a
// historical window of daily closes, using only fundamentals that were
// available at each simulated decision time.
package backtest

import (
	"sort"
	"time"

	"alchemy/internal/domain"
)

// PriceTable is an immutable, indexed snapshot of daily closing prices.
// Lookups are by exact (ticker, date); there is no forward or back fill.
type PriceTable struct {
	closes map[priceKey]float64
	days   []time.Time // sorted distinct trading days
}

type priceKey struct {
	ticker string
	date   string // YYYYMMDD
}

// NewPriceTable builds a PriceTable from a slice of bars. At most one record
// per (ticker, date) is kept; later bars win.
func NewPriceTable(bars []domain.Bar) *PriceTable {
	t := &PriceTable{closes: make(map[priceKey]float64, len(bars))}

	seen := make(map[string]struct{})
	for _, b := range bars {
		day := domain.Day(b.Date)
		ds := domain.DateString(day)
		t.closes[priceKey{ticker: b.Ticker, date: ds}] = b.Close
		if _, ok := seen[ds]; !ok {
			seen[ds] = struct{}{}
			t.days = append(t.days, day)
		}
	}
	sort.Slice(t.days, func(i, j int) bool { return t.days[i].Before(t.days[j]) })
	return t
}

// CloseOn returns the closing price for ticker on the given calendar date.
// The second return value is false when no record exists for that exact date.
func (t *PriceTable) CloseOn(ticker string, date time.Time) (float64, bool) {
	p, ok := t.closes[priceKey{ticker: ticker, date: domain.DateString(date)}]
	return p, ok
}

// TradingDays returns the distinct dates with any price data in [start, end],
// ascending. An empty window yields an empty slice.
func (t *PriceTable) TradingDays(start, end time.Time) []time.Time {
	start, end = domain.Day(start), domain.Day(end)

	lo := sort.Search(len(t.days), func(i int) bool { return !t.days[i].Before(start) })
	hi := sort.Search(len(t.days), func(i int) bool { return t.days[i].After(end) })
	if lo >= hi {
		return nil
	}

	out := make([]time.Time, hi-lo)
	copy(out, t.days[lo:hi])
	return out
}

// FundamentalsTable is an immutable snapshot of fundamentals records indexed
// by fiscal year.
type FundamentalsTable struct {
	byYear map[int][]domain.Fundamentals
}

// NewFundamentalsTable builds a FundamentalsTable from a slice of records.
// Records within each year are kept in ticker order for reproducibility; a
// later record for the same (ticker, fiscal year) replaces an earlier one.
func NewFundamentalsTable(records []domain.Fundamentals) *FundamentalsTable {
	type key struct {
		ticker string
		year   int
	}
	dedup := make(map[key]domain.Fundamentals, len(records))
	for _, r := range records {
		dedup[key{r.Ticker, r.FiscalYear}] = r
	}

	t := &FundamentalsTable{byYear: make(map[int][]domain.Fundamentals)}
	for _, r := range dedup {
		t.byYear[r.FiscalYear] = append(t.byYear[r.FiscalYear], r)
	}
	for year := range t.byYear {
		rs := t.byYear[year]
		sort.Slice(rs, func(i, j int) bool { return rs[i].Ticker < rs[j].Ticker })
	}
	return t
}

// ForYear returns the records for the given fiscal year, in ticker order.
// Years with no data yield an empty slice.
func (t *FundamentalsTable) ForYear(year int) []domain.Fundamentals {
	return t.byYear[year]
}
