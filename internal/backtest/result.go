package backtest

import (
	"github.com/shopspring/decimal"

	"alchemy/internal/domain"
)

// Result is the output of one simulation run: an ordered, append-only series
// of daily valuations plus the rebalance events that produced it.
type Result struct {
	InitialCapital decimal.Decimal
	Points         []domain.ValuationPoint
	Rebalances     []RebalanceEvent
}

// FinalValue returns the last valuation in the series, or zero for an empty
// result.
func (r *Result) FinalValue() decimal.Decimal {
	if len(r.Points) == 0 {
		return decimal.Zero
	}
	return r.Points[len(r.Points)-1].TotalValue
}

// TotalReturn returns (final − initial) / initial as a fraction, or zero for
// an empty result.
func (r *Result) TotalReturn() decimal.Decimal {
	if len(r.Points) == 0 || !r.InitialCapital.IsPositive() {
		return decimal.Zero
	}
	return r.FinalValue().Sub(r.InitialCapital).Div(r.InitialCapital)
}

// MaxDrawdown returns the most negative decline from the running peak,
// (value − peak) / peak, over the series. The result is ≤ 0; an empty series
// yields zero.
func (r *Result) MaxDrawdown() decimal.Decimal {
	if len(r.Points) == 0 {
		return decimal.Zero
	}

	peak := r.Points[0].TotalValue
	maxDD := decimal.Zero
	for _, pt := range r.Points {
		if pt.TotalValue.GreaterThan(peak) {
			peak = pt.TotalValue
		}
		if !peak.IsPositive() {
			continue
		}
		dd := pt.TotalValue.Sub(peak).Div(peak)
		if dd.LessThan(maxDD) {
			maxDD = dd
		}
	}
	return maxDD
}
