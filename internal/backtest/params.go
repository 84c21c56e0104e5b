package backtest

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"alchemy/internal/domain"
)

// Settings is the string-typed form of Config as it appears in the
// configuration file. ParseSettings converts and validates it.
type Settings struct {
	StartDate           string // YYYY-MM-DD
	EndDate             string // YYYY-MM-DD
	InitialCapital      float64
	NumStocks           int
	RebalanceFrequency  string
	TransactionCostRate float64
	EmptyRankingPolicy  string
}

const settingsDateLayout = "2006-01-02"

// ParseSettings converts Settings into a validated Config.
func ParseSettings(s Settings) (Config, error) {
	start, err := time.Parse(settingsDateLayout, s.StartDate)
	if err != nil {
		return Config{}, fmt.Errorf("parsing start date %q: %w", s.StartDate, err)
	}
	end, err := time.Parse(settingsDateLayout, s.EndDate)
	if err != nil {
		return Config{}, fmt.Errorf("parsing end date %q: %w", s.EndDate, err)
	}

	cfg := Config{
		Start:               domain.Day(start),
		End:                 domain.Day(end),
		InitialCapital:      decimal.NewFromFloat(s.InitialCapital),
		NumStocks:           s.NumStocks,
		Frequency:           domain.RebalanceFrequency(s.RebalanceFrequency),
		TransactionCostRate: decimal.NewFromFloat(s.TransactionCostRate),
		EmptyRankingPolicy:  EmptyRankingPolicy(s.EmptyRankingPolicy),
	}
	if cfg.EmptyRankingPolicy == "" {
		cfg.EmptyRankingPolicy = LiquidateToCash
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
