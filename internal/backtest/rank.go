package backtest

import (
	"sort"

	"alchemy/internal/domain"
)

// Rank orders the given fundamentals records by the Magic Formula composite
// score and returns the first topN tickers.
//
// Records with a missing or non-positive ROE or EV/EBITDA are excluded: the
// strategy only targets profitable, positively-valued businesses. Each
// surviving record receives an ordinal rank by ROE descending and by
// EV/EBITDA ascending; ties within a dimension break by ticker so the result
// is deterministic. Lower combined rank is better.
//
// An empty filtered set yields an empty slice; fewer than topN survivors
// yield all of them.
func Rank(records []domain.Fundamentals, topN int) []string {
	if topN <= 0 {
		return nil
	}

	type candidate struct {
		ticker   string
		roe      float64
		evEbitda float64
		combined int
	}

	var cands []candidate
	for _, r := range records {
		if r.ROE == nil || r.EVEBITDA == nil {
			continue
		}
		if *r.ROE <= 0 || *r.EVEBITDA <= 0 {
			continue
		}
		cands = append(cands, candidate{ticker: r.Ticker, roe: *r.ROE, evEbitda: *r.EVEBITDA})
	}
	if len(cands) == 0 {
		return nil
	}

	// Rank by profitability: higher ROE ranks better.
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].roe != cands[j].roe {
			return cands[i].roe > cands[j].roe
		}
		return cands[i].ticker < cands[j].ticker
	})
	for i := range cands {
		cands[i].combined = i + 1
	}

	// Rank by valuation: lower EV/EBITDA ranks better.
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].evEbitda != cands[j].evEbitda {
			return cands[i].evEbitda < cands[j].evEbitda
		}
		return cands[i].ticker < cands[j].ticker
	})
	for i := range cands {
		cands[i].combined += i + 1
	}

	sort.Slice(cands, func(i, j int) bool {
		if cands[i].combined != cands[j].combined {
			return cands[i].combined < cands[j].combined
		}
		return cands[i].ticker < cands[j].ticker
	})

	if topN > len(cands) {
		topN = len(cands)
	}
	out := make([]string, topN)
	for i := 0; i < topN; i++ {
		out[i] = cands[i].ticker
	}
	return out
}
