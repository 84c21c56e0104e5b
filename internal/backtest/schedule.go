package backtest

import (
	"time"

	"alchemy/internal/domain"
)

// NextAnchorAfter returns the first rebalance anchor strictly after the given
// date. Anchors are the first business day (Mon–Fri) of each month, quarter,
// or year depending on the frequency.
//
// The function is stateless: the driver passes the last rebalance date as
// state advances, which makes successive anchors strictly increasing. The
// zero time works as "minimum representable date", so the first eligible
// trading day of a simulation always triggers the initial allocation.
func NextAnchorAfter(last time.Time, freq domain.RebalanceFrequency) time.Time {
	last = domain.Day(last)

	start := periodStart(last, freq)
	for {
		anchor := firstBusinessDay(start)
		if anchor.After(last) {
			return anchor
		}
		start = nextPeriodStart(start, freq)
	}
}

// periodStart returns the first calendar day of the period containing d.
func periodStart(d time.Time, freq domain.RebalanceFrequency) time.Time {
	switch freq {
	case domain.RebalanceQuarterly:
		q := (int(d.Month()) - 1) / 3
		return time.Date(d.Year(), time.Month(q*3+1), 1, 0, 0, 0, 0, time.UTC)
	case domain.RebalanceAnnual:
		return time.Date(d.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	default: // monthly
		return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
}

// nextPeriodStart advances a period start date by one period.
func nextPeriodStart(start time.Time, freq domain.RebalanceFrequency) time.Time {
	switch freq {
	case domain.RebalanceQuarterly:
		return start.AddDate(0, 3, 0)
	case domain.RebalanceAnnual:
		return start.AddDate(1, 0, 0)
	default: // monthly
		return start.AddDate(0, 1, 0)
	}
}

// firstBusinessDay advances d to the next weekday if it falls on a weekend.
func firstBusinessDay(d time.Time) time.Time {
	for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
		d = d.AddDate(0, 0, 1)
	}
	return d
}
