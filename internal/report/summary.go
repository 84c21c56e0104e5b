package report

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"alchemy/internal/backtest"
)

var hundred = decimal.NewFromInt(100)

// FormatSummary returns a human-readable block with the derived performance
// metrics of a simulation run.
func FormatSummary(result *backtest.Result) string {
	var b strings.Builder

	if len(result.Points) == 0 {
		b.WriteString("No trading days in the requested window.\n")
		return b.String()
	}

	first := result.Points[0].Date
	last := result.Points[len(result.Points)-1].Date

	fmt.Fprintf(&b, "Period:          %s – %s (%d trading days)\n",
		first.Format("2006-01-02"), last.Format("2006-01-02"), len(result.Points))
	fmt.Fprintf(&b, "Rebalances:      %d\n", len(result.Rebalances))
	fmt.Fprintf(&b, "Initial capital: %s\n", result.InitialCapital.StringFixed(0))
	fmt.Fprintf(&b, "Final value:     %s\n", result.FinalValue().StringFixed(0))
	fmt.Fprintf(&b, "Total return:    %s%%\n", result.TotalReturn().Mul(hundred).StringFixed(2))
	fmt.Fprintf(&b, "Max drawdown:    %s%%\n", result.MaxDrawdown().Mul(hundred).StringFixed(2))

	return b.String()
}
