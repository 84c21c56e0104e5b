// Package metrics derives the ranking ratios (ROE and EV/EBITDA) from raw
// accounting fields.
package metrics

// Inputs holds the raw accounting fields for one ticker and fiscal year.
// Nil means the value was not reported.
type Inputs struct {
	MarketCap          *float64
	NetIncome          *float64
	TotalEquity        *float64
	OperatingIncome    *float64
	Depreciation       *float64
	Amortization       *float64
	TotalDebt          *float64
	CashAndEquivalents *float64
}

// ROE returns return on equity as a percentage, or nil when net income or
// total equity is missing, or equity is not positive.
func ROE(in Inputs) *float64 {
	if in.NetIncome == nil || in.TotalEquity == nil || *in.TotalEquity <= 0 {
		return nil
	}
	v := *in.NetIncome / *in.TotalEquity * 100
	return &v
}

// EVEBITDA returns the enterprise-value-to-EBITDA ratio, or nil when any
// required input is missing or either EV or EBITDA is not positive.
// Depreciation and amortization default to zero when unreported.
func EVEBITDA(in Inputs) *float64 {
	if in.MarketCap == nil || in.TotalDebt == nil || in.CashAndEquivalents == nil || in.OperatingIncome == nil {
		return nil
	}
	ev := *in.MarketCap + *in.TotalDebt - *in.CashAndEquivalents
	ebitda := *in.OperatingIncome + orZero(in.Depreciation) + orZero(in.Amortization)
	if ev <= 0 || ebitda <= 0 {
		return nil
	}
	v := ev / ebitda
	return &v
}

func orZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
