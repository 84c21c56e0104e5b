// Loads CSV exports into the local stores consumed by the backtest:
// daily price bars, annual financial statements, and stock names.
//
// Usage:
//
//	alchemy-import -config config/alchemy.yaml -prices prices.csv
//	alchemy-import -config config/alchemy.yaml -financials financials.csv -stocks stocks.csv
//
// Expected columns (header row required):
//
//	prices.csv:     ticker,date,open,high,low,close,volume   (date as YYYYMMDD)
//	financials.csv: ticker,business_year,roe,ev_ebitda,market_cap,net_income,
//	                total_equity,operating_income,depreciation,amortization,
//	                total_debt,cash_and_equivalents          (empty cell = NULL)
//	stocks.csv:     ticker,name
//
// When roe or ev_ebitda is left empty, the importer derives it from the raw
// accounting columns on the same row where possible.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"alchemy/internal/config"
	"alchemy/internal/domain"
	"alchemy/internal/metrics"
	"alchemy/internal/store"
	"alchemy/internal/util"
)

func main() {
	defaultConfig := "config/alchemy.yaml"
	if p := os.Getenv("ALCHEMY_CONFIG"); p != "" {
		defaultConfig = p
	}
	cfgPath := flag.String("config", defaultConfig, "path to the YAML configuration file")
	pricesCSV := flag.String("prices", "", "CSV file with daily price bars")
	financialsCSV := flag.String("financials", "", "CSV file with annual financial statements")
	stocksCSV := flag.String("stocks", "", "CSV file with ticker to name mappings")
	flag.Parse()

	if *pricesCSV == "" && *financialsCSV == "" && *stocksCSV == "" {
		flag.Usage()
		log.Fatal("nothing to import: pass at least one of -prices, -financials, -stocks")
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.NewLogger(cfg.Logging.Level)
	util.SetDefault(logger)

	ctx := context.Background()

	sqlite, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
	if err != nil {
		log.Fatalf("failed to open sqlite store: %v", err)
	}
	defer sqlite.Close()

	if *pricesCSV != "" {
		var prices store.PriceStore = sqlite
		if cfg.Storage.PriceSource == "parquet" {
			prices = store.NewParquetStore(cfg.Storage.DataDir)
		}
		n, err := importPrices(ctx, prices, *pricesCSV)
		if err != nil {
			log.Fatalf("failed to import prices: %v", err)
		}
		logger.Info("prices imported", "file", *pricesCSV, "bars", n)
	}

	if *financialsCSV != "" {
		n, err := importFinancials(ctx, sqlite, *financialsCSV)
		if err != nil {
			log.Fatalf("failed to import financials: %v", err)
		}
		logger.Info("financials imported", "file", *financialsCSV, "rows", n)
	}

	if *stocksCSV != "" {
		n, err := importStocks(ctx, sqlite, *stocksCSV)
		if err != nil {
			log.Fatalf("failed to import stock names: %v", err)
		}
		logger.Info("stock names imported", "file", *stocksCSV, "stocks", n)
	}
}

// ---------------------------------------------------------------------------
// CSV readers
// ---------------------------------------------------------------------------

func importPrices(ctx context.Context, dst store.PriceStore, path string) (int, error) {
	rows, err := readCSV(path, 7)
	if err != nil {
		return 0, err
	}

	bars := make([]domain.Bar, 0, len(rows))
	for i, row := range rows {
		date, err := domain.ParseDate(row[1])
		if err != nil {
			return 0, fmt.Errorf("row %d: %w", i+2, err)
		}
		open, err1 := strconv.ParseFloat(row[2], 64)
		high, err2 := strconv.ParseFloat(row[3], 64)
		low, err3 := strconv.ParseFloat(row[4], 64)
		cls, err4 := strconv.ParseFloat(row[5], 64)
		vol, err5 := strconv.ParseInt(row[6], 10, 64)
		for _, err := range []error{err1, err2, err3, err4, err5} {
			if err != nil {
				return 0, fmt.Errorf("row %d: %w", i+2, err)
			}
		}
		bars = append(bars, domain.Bar{
			Ticker: row[0],
			Date:   date,
			Open:   open,
			High:   high,
			Low:    low,
			Close:  cls,
			Volume: vol,
		})
	}

	if err := dst.WriteBars(ctx, bars); err != nil {
		return 0, err
	}
	return len(bars), nil
}

func importFinancials(ctx context.Context, dst store.FundamentalsStore, path string) (int, error) {
	rows, err := readCSV(path, 12)
	if err != nil {
		return 0, err
	}

	frows := make([]store.FinancialRow, 0, len(rows))
	for i, row := range rows {
		year, err := strconv.Atoi(row[1])
		if err != nil {
			return 0, fmt.Errorf("row %d: parsing business year: %w", i+2, err)
		}

		fields := make([]*float64, 10)
		for j := range fields {
			fields[j], err = optionalFloat(row[j+2])
			if err != nil {
				return 0, fmt.Errorf("row %d column %d: %w", i+2, j+3, err)
			}
		}

		fr := store.FinancialRow{
			Ticker:             row[0],
			FiscalYear:         year,
			ROE:                fields[0],
			EVEBITDA:           fields[1],
			MarketCap:          fields[2],
			NetIncome:          fields[3],
			TotalEquity:        fields[4],
			OperatingIncome:    fields[5],
			Depreciation:       fields[6],
			Amortization:       fields[7],
			TotalDebt:          fields[8],
			CashAndEquivalents: fields[9],
		}

		in := metrics.Inputs{
			MarketCap:          fr.MarketCap,
			NetIncome:          fr.NetIncome,
			TotalEquity:        fr.TotalEquity,
			OperatingIncome:    fr.OperatingIncome,
			Depreciation:       fr.Depreciation,
			Amortization:       fr.Amortization,
			TotalDebt:          fr.TotalDebt,
			CashAndEquivalents: fr.CashAndEquivalents,
		}
		if fr.ROE == nil {
			fr.ROE = metrics.ROE(in)
		}
		if fr.EVEBITDA == nil {
			fr.EVEBITDA = metrics.EVEBITDA(in)
		}

		frows = append(frows, fr)
	}

	if err := dst.WriteFinancials(ctx, frows); err != nil {
		return 0, err
	}
	return len(frows), nil
}

func importStocks(ctx context.Context, dst *store.SQLiteStore, path string) (int, error) {
	rows, err := readCSV(path, 2)
	if err != nil {
		return 0, err
	}

	names := make(map[string]string, len(rows))
	for _, row := range rows {
		names[row[0]] = row[1]
	}

	if err := dst.UpsertStocks(ctx, names); err != nil {
		return 0, err
	}
	return len(names), nil
}

// readCSV reads every record after the header row, requiring at least
// minCols columns per record.
func readCSV(path string, minCols int) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	if _, err := r.Read(); err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	var rows [][]string
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(row) < minCols {
			return nil, fmt.Errorf("row %d: got %d columns, want %d", len(rows)+2, len(row), minCols)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func optionalFloat(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
