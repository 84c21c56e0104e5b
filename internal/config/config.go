package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for the alchemy backtester.
type Config struct {
	Storage  Storage  `yaml:"storage"`
	Logging  Logging  `yaml:"logging"`
	Backtest Backtest `yaml:"backtest"`
	Report   Report   `yaml:"report"`
}

// Storage holds paths for the pre-materialized price and fundamentals data.
type Storage struct {
	DataDir     string `yaml:"data_dir"`
	SQLitePath  string `yaml:"sqlite_path"`
	PriceSource string `yaml:"price_source"` // "sqlite" (default) or "parquet"
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Backtest holds the simulation parameters. Dates use the YYYY-MM-DD form;
// validation and conversion to engine parameters happens in the backtest
// package before any simulation step runs.
type Backtest struct {
	StartDate           string  `yaml:"start_date"`
	EndDate             string  `yaml:"end_date"`
	InitialCapital      float64 `yaml:"initial_capital"`
	NumStocks           int     `yaml:"num_stocks"`
	RebalanceFrequency  string  `yaml:"rebalance_frequency"` // monthly / quarterly / annual
	TransactionCostRate float64 `yaml:"transaction_cost_rate"`
	EmptyRankingPolicy  string  `yaml:"empty_ranking_policy"` // "liquidate" (default) or "retain"
}

// Report configures result presentation artifacts.
type Report struct {
	ChartPath string `yaml:"chart_path"`
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads the YAML configuration file at the given path, parses it into a
// Config struct, and then applies environment variable overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	return cfg, nil
}

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// applyDefaults fills the fields that have a sensible default when the YAML
// leaves them unset.
func applyDefaults(cfg *Config) {
	if cfg.Storage.PriceSource == "" {
		cfg.Storage.PriceSource = "sqlite"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Backtest.EmptyRankingPolicy == "" {
		cfg.Backtest.EmptyRankingPolicy = "liquidate"
	}
}
