package backtest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"alchemy/internal/domain"
)

// EmptyRankingPolicy decides what happens on a rebalance day when the
// ranking engine selects no tickers.
type EmptyRankingPolicy string

const (
	// LiquidateToCash sells all current holdings and leaves the portfolio
	// fully in cash until the next rebalance produces a selection.
	LiquidateToCash EmptyRankingPolicy = "liquidate"

	// RetainHoldings performs no liquidation and keeps the prior holdings
	// through the rebalance event.
	RetainHoldings EmptyRankingPolicy = "retain"
)

// Valid reports whether the policy is one of the supported values.
func (p EmptyRankingPolicy) Valid() bool {
	return p == LiquidateToCash || p == RetainHoldings
}

// Config holds the parameters of one simulation run. All fields are required
// and validated before any simulation step executes.
type Config struct {
	Start               time.Time
	End                 time.Time
	InitialCapital      decimal.Decimal
	NumStocks           int
	Frequency           domain.RebalanceFrequency
	TransactionCostRate decimal.Decimal
	EmptyRankingPolicy  EmptyRankingPolicy
}

// Validate checks the configuration and returns the first problem found.
func (c Config) Validate() error {
	if c.Start.IsZero() || c.End.IsZero() {
		return fmt.Errorf("start and end dates are required")
	}
	if domain.Day(c.End).Before(domain.Day(c.Start)) {
		return fmt.Errorf("end date %s precedes start date %s",
			domain.DateString(c.End), domain.DateString(c.Start))
	}
	if !c.InitialCapital.IsPositive() {
		return fmt.Errorf("initial capital must be positive, got %s", c.InitialCapital)
	}
	if c.NumStocks <= 0 {
		return fmt.Errorf("num stocks must be positive, got %d", c.NumStocks)
	}
	if !c.Frequency.Valid() {
		return fmt.Errorf("unsupported rebalance frequency %q", c.Frequency)
	}
	if c.TransactionCostRate.IsNegative() || c.TransactionCostRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("transaction cost rate must be in [0, 1), got %s", c.TransactionCostRate)
	}
	if !c.EmptyRankingPolicy.Valid() {
		return fmt.Errorf("unsupported empty ranking policy %q", c.EmptyRankingPolicy)
	}
	return nil
}

// RebalanceEvent records one executed rebalance: the trading day it ran on,
// the tickers selected, holdings abandoned unpriced at liquidation, and
// targets skipped unpriced at allocation.
type RebalanceEvent struct {
	Date      time.Time
	Selected  []string
	Abandoned []string
	Skipped   []string
}

// Engine replays a strategy over immutable price and fundamentals snapshots.
// A single Engine may serve concurrent Run calls: each run owns its own
// Portfolio and only reads the shared snapshots.
type Engine struct {
	prices       *PriceTable
	fundamentals *FundamentalsTable
	logger       *slog.Logger
}

// NewEngine creates an Engine over the given snapshots.
func NewEngine(prices *PriceTable, fundamentals *FundamentalsTable, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		prices:       prices,
		fundamentals: fundamentals,
		logger:       logger,
	}
}

// Run executes one simulation and returns the daily valuation series.
//
// Trading days are processed strictly in ascending order. On each day the
// engine first checks whether the day reaches the next rebalance anchor; if
// so it recomputes the ranking from fundamentals of the prior fiscal year
// (never a cached one, never the current year's) and drives the portfolio
// through liquidate-then-allocate at that day's closes. Every day ends with
// one appended ValuationPoint. An empty trading-day window returns an empty
// result, not an error.
func (e *Engine) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid backtest config: %w", err)
	}

	days := e.prices.TradingDays(cfg.Start, cfg.End)
	result := &Result{InitialCapital: cfg.InitialCapital}
	if len(days) == 0 {
		e.logger.Warn("no trading days in window",
			"start", domain.DateString(domain.Day(cfg.Start)),
			"end", domain.DateString(domain.Day(cfg.End)))
		return result, nil
	}

	portfolio := NewPortfolio(cfg.InitialCapital)

	// The zero time is the minimum representable date: the first trading
	// day always reaches the first anchor and triggers the initial
	// allocation.
	nextAnchor := NextAnchorAfter(time.Time{}, cfg.Frequency)

	for _, day := range days {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if !day.Before(nextAnchor) {
			event := e.rebalance(portfolio, day, cfg)
			result.Rebalances = append(result.Rebalances, event)
			nextAnchor = NextAnchorAfter(day, cfg.Frequency)
		}

		result.Points = append(result.Points, domain.ValuationPoint{
			Date:       day,
			TotalValue: portfolio.Value(day, e.prices),
		})
	}

	e.logger.Info("backtest complete",
		"trading_days", len(result.Points),
		"rebalances", len(result.Rebalances),
		"final_value", result.FinalValue().StringFixed(2))
	return result, nil
}

// rebalance executes one rebalance event on the given trading day.
func (e *Engine) rebalance(p *Portfolio, day time.Time, cfg Config) RebalanceEvent {
	event := RebalanceEvent{Date: day}

	// Point-in-time rule: decisions on day D may only see fundamentals of
	// fiscal year D−1.
	fiscalYear := day.Year() - 1
	event.Selected = Rank(e.fundamentals.ForYear(fiscalYear), cfg.NumStocks)

	if len(event.Selected) == 0 && cfg.EmptyRankingPolicy == RetainHoldings {
		e.logger.Warn("empty ranking, retaining prior holdings",
			"date", domain.DateString(day), "fiscal_year", fiscalYear)
		return event
	}

	event.Abandoned = p.Liquidate(day, e.prices, cfg.TransactionCostRate)
	for _, ticker := range event.Abandoned {
		e.logger.Warn("holding abandoned at zero value, no price on rebalance day",
			"ticker", ticker, "date", domain.DateString(day))
	}

	event.Skipped = p.Allocate(day, event.Selected, e.prices, cfg.TransactionCostRate)

	e.logger.Debug("rebalanced",
		"date", domain.DateString(day),
		"fiscal_year", fiscalYear,
		"selected", len(event.Selected),
		"skipped", len(event.Skipped),
		"cash", p.Cash().StringFixed(2))
	return event
}
