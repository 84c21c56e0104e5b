// Runs a Magic Formula backtest over the locally stored price and
// fundamentals data and prints the resulting performance summary.
//
// Usage:
//
//	alchemy -config config/alchemy.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"alchemy/internal/backtest"
	"alchemy/internal/config"
	"alchemy/internal/report"
	"alchemy/internal/store"
	"alchemy/internal/util"
)

func main() {
	defaultConfig := "config/alchemy.yaml"
	if p := os.Getenv("ALCHEMY_CONFIG"); p != "" {
		defaultConfig = p
	}
	cfgPath := flag.String("config", defaultConfig, "path to the YAML configuration file")
	chartPath := flag.String("chart", "", "override the equity-curve output path (empty = use config)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.NewLogger(cfg.Logging.Level)
	util.SetDefault(logger)

	params, err := backtest.ParseSettings(backtest.Settings{
		StartDate:           cfg.Backtest.StartDate,
		EndDate:             cfg.Backtest.EndDate,
		InitialCapital:      cfg.Backtest.InitialCapital,
		NumStocks:           cfg.Backtest.NumStocks,
		RebalanceFrequency:  cfg.Backtest.RebalanceFrequency,
		TransactionCostRate: cfg.Backtest.TransactionCostRate,
		EmptyRankingPolicy:  cfg.Backtest.EmptyRankingPolicy,
	})
	if err != nil {
		log.Fatalf("invalid backtest settings: %v", err)
	}

	ctx := context.Background()

	sqlite, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
	if err != nil {
		log.Fatalf("failed to open sqlite store: %v", err)
	}
	defer sqlite.Close()

	var prices store.PriceStore = sqlite
	if cfg.Storage.PriceSource == "parquet" {
		prices = store.NewParquetStore(cfg.Storage.DataDir)
	}

	bars, err := prices.ReadBars(ctx, params.Start, params.End)
	if err != nil {
		log.Fatalf("failed to read price data: %v", err)
	}
	funds, err := sqlite.ReadFundamentals(ctx)
	if err != nil {
		log.Fatalf("failed to read fundamentals: %v", err)
	}
	logger.Info("data loaded", "bars", len(bars), "fundamentals", len(funds))

	engine := backtest.NewEngine(
		backtest.NewPriceTable(bars),
		backtest.NewFundamentalsTable(funds),
		logger,
	)
	result, err := engine.Run(ctx, params)
	if err != nil {
		log.Fatalf("backtest failed: %v", err)
	}

	fmt.Print(report.FormatSummary(result))

	out := cfg.Report.ChartPath
	if *chartPath != "" {
		out = *chartPath
	}
	if out != "" && len(result.Points) > 0 {
		if err := report.WriteEquityCurve(result, "Magic Formula Backtest", out); err != nil {
			log.Fatalf("failed to write equity curve: %v", err)
		}
		logger.Info("equity curve written", "path", out)
	}
}
