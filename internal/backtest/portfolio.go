package backtest

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Portfolio owns the cash balance and the current holdings of a single
// simulation run. It is mutated only by Liquidate and Allocate, which execute
// back-to-back on rebalance days, and its cash never goes negative: purchases
// are sized in whole shares against the cash actually available.
type Portfolio struct {
	cash     decimal.Decimal
	holdings map[string]decimal.Decimal // ticker → whole share count, always > 0
}

// NewPortfolio creates an empty portfolio holding initialCash.
func NewPortfolio(initialCash decimal.Decimal) *Portfolio {
	return &Portfolio{
		cash:     initialCash,
		holdings: make(map[string]decimal.Decimal),
	}
}

// Cash returns the current cash balance.
func (p *Portfolio) Cash() decimal.Decimal {
	return p.cash
}

// Holdings returns a copy of the current ticker → share count mapping.
func (p *Portfolio) Holdings() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(p.holdings))
	for t, s := range p.holdings {
		out[t] = s
	}
	return out
}

// Shares returns the share count held for ticker, zero if not held.
func (p *Portfolio) Shares(ticker string) decimal.Decimal {
	return p.holdings[ticker]
}

// Liquidate sells every holding with an available closing price on date,
// crediting shares × price × (1 − costRate) to cash, and clears all holdings.
// Holdings with no price on date are abandoned at zero recovered value; their
// tickers are returned so the caller can surface the loss.
func (p *Portfolio) Liquidate(date time.Time, prices *PriceTable, costRate decimal.Decimal) (abandoned []string) {
	if len(p.holdings) == 0 {
		return nil
	}

	sellFactor := decimal.NewFromInt(1).Sub(costRate)
	proceeds := decimal.Zero
	for ticker, shares := range p.holdings {
		price, ok := prices.CloseOn(ticker, date)
		if !ok {
			abandoned = append(abandoned, ticker)
			continue
		}
		proceeds = proceeds.Add(shares.Mul(decimal.NewFromFloat(price)))
	}
	p.cash = p.cash.Add(proceeds.Mul(sellFactor))
	p.holdings = make(map[string]decimal.Decimal)

	sort.Strings(abandoned)
	return abandoned
}

// Allocate splits the available cash evenly across the target tickers and
// buys whole shares of each one priced on date, deducting
// shares × price × (1 + costRate) from cash.
//
// The per-ticker budget divides by the full target count, not the count of
// tickers actually priced, so an unpriced target leaves its share of capital
// undeployed as residual cash. Unpriced or unaffordable targets are returned
// as skipped.
func (p *Portfolio) Allocate(date time.Time, targets []string, prices *PriceTable, costRate decimal.Decimal) (skipped []string) {
	if len(targets) == 0 || !p.cash.IsPositive() {
		return nil
	}

	// Truncating division keeps targetCount × capitalPerStock ≤ cash exactly.
	capitalPerStock, _ := p.cash.QuoRem(decimal.NewFromInt(int64(len(targets))), 16)
	buyFactor := decimal.NewFromInt(1).Add(costRate)

	for _, ticker := range targets {
		price, ok := prices.CloseOn(ticker, date)
		if !ok || price <= 0 {
			skipped = append(skipped, ticker)
			continue
		}

		unitCost := decimal.NewFromFloat(price).Mul(buyFactor)
		shares, _ := capitalPerStock.QuoRem(unitCost, 0)
		if !shares.IsPositive() {
			skipped = append(skipped, ticker)
			continue
		}

		p.holdings[ticker] = p.holdings[ticker].Add(shares)
		p.cash = p.cash.Sub(shares.Mul(unitCost))
	}
	return skipped
}

// Value returns cash plus the mark-to-market value of every holding with an
// available closing price on date. Unpriced holdings contribute nothing.
func (p *Portfolio) Value(date time.Time, prices *PriceTable) decimal.Decimal {
	total := p.cash
	for ticker, shares := range p.holdings {
		price, ok := prices.CloseOn(ticker, date)
		if !ok {
			continue
		}
		total = total.Add(shares.Mul(decimal.NewFromFloat(price)))
	}
	return total
}
