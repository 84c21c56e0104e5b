package backtest

import (
	"testing"

	"alchemy/internal/domain"
)

func validSettings() Settings {
	return Settings{
		StartDate:           "2020-01-02",
		EndDate:             "2023-12-29",
		InitialCapital:      10_000_000,
		NumStocks:           20,
		RebalanceFrequency:  "quarterly",
		TransactionCostRate: 0.0025,
		EmptyRankingPolicy:  "liquidate",
	}
}

func TestParseSettings(t *testing.T) {
	cfg, err := ParseSettings(validSettings())
	if err != nil {
		t.Fatalf("ParseSettings: %v", err)
	}

	if !cfg.Start.Equal(date(2020, 1, 2)) {
		t.Errorf("Start = %v, want 2020-01-02", cfg.Start)
	}
	if !cfg.End.Equal(date(2023, 12, 29)) {
		t.Errorf("End = %v, want 2023-12-29", cfg.End)
	}
	if !cfg.InitialCapital.Equal(dec("10000000")) {
		t.Errorf("InitialCapital = %s, want 10000000", cfg.InitialCapital)
	}
	if cfg.Frequency != domain.RebalanceQuarterly {
		t.Errorf("Frequency = %q, want quarterly", cfg.Frequency)
	}
	if !cfg.TransactionCostRate.Equal(dec("0.0025")) {
		t.Errorf("TransactionCostRate = %s, want 0.0025", cfg.TransactionCostRate)
	}
	if cfg.EmptyRankingPolicy != LiquidateToCash {
		t.Errorf("EmptyRankingPolicy = %q, want liquidate", cfg.EmptyRankingPolicy)
	}
}

func TestParseSettingsDefaultsPolicy(t *testing.T) {
	s := validSettings()
	s.EmptyRankingPolicy = ""
	cfg, err := ParseSettings(s)
	if err != nil {
		t.Fatalf("ParseSettings: %v", err)
	}
	if cfg.EmptyRankingPolicy != LiquidateToCash {
		t.Errorf("EmptyRankingPolicy = %q, want default liquidate", cfg.EmptyRankingPolicy)
	}
}

func TestParseSettingsRejectsInvalid(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"bad start date", func(s *Settings) { s.StartDate = "01/02/2020" }},
		{"bad end date", func(s *Settings) { s.EndDate = "" }},
		{"inverted range", func(s *Settings) { s.StartDate, s.EndDate = s.EndDate, s.StartDate }},
		{"zero capital", func(s *Settings) { s.InitialCapital = 0 }},
		{"negative stocks", func(s *Settings) { s.NumStocks = -1 }},
		{"bad frequency", func(s *Settings) { s.RebalanceFrequency = "hourly" }},
		{"cost rate too high", func(s *Settings) { s.TransactionCostRate = 1.5 }},
		{"bad policy", func(s *Settings) { s.EmptyRankingPolicy = "maybe" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := validSettings()
			tc.mutate(&s)
			if _, err := ParseSettings(s); err == nil {
				t.Error("ParseSettings accepted invalid settings")
			}
		})
	}
}
