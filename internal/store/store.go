// Package store defines storage interfaces for the pre-materialized price
// and fundamentals tables the simulation consumes, with SQLite and Parquet
// backed implementations.
package store

import (
	"context"
	"time"

	"alchemy/internal/domain"
)

// PriceStore supplies daily OHLCV bars. The simulation reads the full window
// once before it starts; there is no storage I/O inside the simulation loop.
type PriceStore interface {
	// WriteBars persists a batch of bars. Re-writing an existing
	// (ticker, date) pair is a no-op for equal data, an overwrite otherwise.
	WriteBars(ctx context.Context, bars []domain.Bar) error

	// ReadBars returns all bars for all tickers within [start, end],
	// ordered by date then ticker.
	ReadBars(ctx context.Context, start, end time.Time) ([]domain.Bar, error)

	// ListTickers returns all distinct tickers with bar data, sorted.
	ListTickers(ctx context.Context) ([]string, error)
}

// FundamentalsStore supplies per-fiscal-year fundamentals records.
type FundamentalsStore interface {
	// WriteFinancials upserts financial rows keyed by (ticker, fiscal year).
	WriteFinancials(ctx context.Context, rows []FinancialRow) error

	// ReadFundamentals returns the derived ratios for every stored
	// (ticker, fiscal year) pair.
	ReadFundamentals(ctx context.Context) ([]domain.Fundamentals, error)
}

// FinancialRow mirrors the financial_info table: derived ratios plus the raw
// accounting fields they were computed from. Nil means the source reported
// no value (stored as NULL).
type FinancialRow struct {
	Ticker             string
	FiscalYear         int
	ROE                *float64
	EVEBITDA           *float64
	MarketCap          *float64
	NetIncome          *float64
	TotalEquity        *float64
	OperatingIncome    *float64
	Depreciation       *float64
	Amortization       *float64
	TotalDebt          *float64
	CashAndEquivalents *float64
}
