// Package domain defines the shared types consumed across the platform:
// daily price bars, annual fundamentals, and simulation output points.
package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Bar is a single daily OHLCV record for one ticker. Date is a calendar date
// normalized to midnight UTC; non-trading days simply have no Bar.
type Bar struct {
	Ticker string
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

// Fundamentals holds the derived ratios for one (ticker, fiscal year) pair.
// ROE and EVEBITDA are nil when the underlying accounting data was missing;
// the ranking engine excludes such records.
type Fundamentals struct {
	Ticker     string
	FiscalYear int
	ROE        *float64
	EVEBITDA   *float64
}

// ValuationPoint is one entry of the simulation output series: the total
// portfolio value (cash plus priced holdings) at the close of one trading day.
type ValuationPoint struct {
	Date       time.Time
	TotalValue decimal.Decimal
}

// RebalanceFrequency selects how often the portfolio is rebuilt.
type RebalanceFrequency string

// Supported rebalance frequencies.
const (
	RebalanceMonthly   RebalanceFrequency = "monthly"
	RebalanceQuarterly RebalanceFrequency = "quarterly"
	RebalanceAnnual    RebalanceFrequency = "annual"
)

// Valid reports whether f is one of the supported frequencies.
func (f RebalanceFrequency) Valid() bool {
	switch f {
	case RebalanceMonthly, RebalanceQuarterly, RebalanceAnnual:
		return true
	}
	return false
}

// dateLayout is the compact YYYYMMDD form used by the price table.
const dateLayout = "20060102"

// ParseDate parses a YYYYMMDD string into a UTC calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return t, nil
}

// DateString formats a calendar date in YYYYMMDD form.
func DateString(t time.Time) string {
	return t.Format(dateLayout)
}

// Day truncates t to a calendar date at midnight UTC.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Float64 returns a pointer to v. Convenience for building Fundamentals
// literals in tests and importers.
func Float64(v float64) *float64 {
	return &v
}
