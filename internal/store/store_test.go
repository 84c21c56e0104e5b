package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"alchemy/internal/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestSQLiteStoreBarsRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s, err := NewSQLiteStore(filepath.Join(dir, "stocks.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	defer s.Close()
	ctx := context.Background()

	bars := []domain.Bar{
		{Ticker: "005930", Date: date(2024, 1, 2), Open: 78000, High: 79500, Low: 77800, Close: 79000, Volume: 12000000},
		{Ticker: "005930", Date: date(2024, 1, 3), Open: 79000, High: 79200, Low: 77500, Close: 77700, Volume: 11000000},
		{Ticker: "000660", Date: date(2024, 1, 2), Open: 142000, High: 144000, Low: 141000, Close: 143500, Volume: 3000000},
	}
	if err := s.WriteBars(ctx, bars); err != nil {
		t.Fatalf("WriteBars: %v", err)
	}

	got, err := s.ReadBars(ctx, date(2024, 1, 1), date(2024, 12, 31))
	if err != nil {
		t.Fatalf("ReadBars: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("ReadBars returned %d bars, want 3", len(got))
	}
	// Ordered by date then ticker.
	if got[0].Ticker != "000660" || got[1].Ticker != "005930" {
		t.Errorf("first day order = [%s %s], want [000660 005930]", got[0].Ticker, got[1].Ticker)
	}
	if !got[2].Date.Equal(date(2024, 1, 3)) {
		t.Errorf("last bar date = %v, want 2024-01-03", got[2].Date)
	}
	if got[2].Close != 77700 {
		t.Errorf("last bar close = %v, want 77700", got[2].Close)
	}

	// Window filtering.
	got, err = s.ReadBars(ctx, date(2024, 1, 3), date(2024, 1, 3))
	if err != nil {
		t.Fatalf("ReadBars (narrow): %v", err)
	}
	if len(got) != 1 || got[0].Ticker != "005930" {
		t.Errorf("narrow window returned %v, want single 005930 bar", got)
	}
}

func TestSQLiteStoreBarsUpsert(t *testing.T) {
	dir := t.TempDir()
	s, err := NewSQLiteStore(filepath.Join(dir, "stocks.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	defer s.Close()
	ctx := context.Background()

	bar := domain.Bar{Ticker: "005930", Date: date(2024, 1, 2), Close: 79000, Volume: 100}
	if err := s.WriteBars(ctx, []domain.Bar{bar}); err != nil {
		t.Fatalf("WriteBars (first): %v", err)
	}

	// Rewrite the same (ticker, date) with a corrected close.
	bar.Close = 79100
	if err := s.WriteBars(ctx, []domain.Bar{bar}); err != nil {
		t.Fatalf("WriteBars (second): %v", err)
	}

	got, err := s.ReadBars(ctx, date(2024, 1, 1), date(2024, 1, 31))
	if err != nil {
		t.Fatalf("ReadBars: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("ReadBars returned %d bars after upsert, want 1", len(got))
	}
	if got[0].Close != 79100 {
		t.Errorf("upserted close = %v, want 79100", got[0].Close)
	}
}

func TestSQLiteStoreListTickers(t *testing.T) {
	dir := t.TempDir()
	s, err := NewSQLiteStore(filepath.Join(dir, "stocks.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	defer s.Close()
	ctx := context.Background()

	bars := []domain.Bar{
		{Ticker: "B", Date: date(2024, 1, 2), Close: 1},
		{Ticker: "A", Date: date(2024, 1, 2), Close: 1},
		{Ticker: "A", Date: date(2024, 1, 3), Close: 1},
	}
	if err := s.WriteBars(ctx, bars); err != nil {
		t.Fatalf("WriteBars: %v", err)
	}

	tickers, err := s.ListTickers(ctx)
	if err != nil {
		t.Fatalf("ListTickers: %v", err)
	}
	if len(tickers) != 2 || tickers[0] != "A" || tickers[1] != "B" {
		t.Errorf("ListTickers = %v, want [A B]", tickers)
	}
}

func TestSQLiteStoreFinancialsRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s, err := NewSQLiteStore(filepath.Join(dir, "stocks.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	defer s.Close()
	ctx := context.Background()

	rows := []FinancialRow{
		{
			Ticker:     "005930",
			FiscalYear: 2023,
			ROE:        domain.Float64(15.2),
			EVEBITDA:   domain.Float64(4.8),
			NetIncome:  domain.Float64(26_950_000_000_000),
		},
		{
			// Ratios missing: stored as NULL, surfaced as nil pointers.
			Ticker:     "000660",
			FiscalYear: 2023,
		},
	}
	if err := s.WriteFinancials(ctx, rows); err != nil {
		t.Fatalf("WriteFinancials: %v", err)
	}

	got, err := s.ReadFundamentals(ctx)
	if err != nil {
		t.Fatalf("ReadFundamentals: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ReadFundamentals returned %d records, want 2", len(got))
	}
	// Ordered by year then ticker.
	if got[0].Ticker != "000660" {
		t.Errorf("first record ticker = %q, want 000660", got[0].Ticker)
	}
	if got[0].ROE != nil || got[0].EVEBITDA != nil {
		t.Error("missing ratios should surface as nil pointers")
	}
	if got[1].ROE == nil || *got[1].ROE != 15.2 {
		t.Errorf("ROE = %v, want 15.2", got[1].ROE)
	}
	if got[1].EVEBITDA == nil || *got[1].EVEBITDA != 4.8 {
		t.Errorf("EVEBITDA = %v, want 4.8", got[1].EVEBITDA)
	}

	// Upsert replaces the existing row.
	rows[0].ROE = domain.Float64(16.0)
	if err := s.WriteFinancials(ctx, rows[:1]); err != nil {
		t.Fatalf("WriteFinancials (upsert): %v", err)
	}
	got, err = s.ReadFundamentals(ctx)
	if err != nil {
		t.Fatalf("ReadFundamentals (after upsert): %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("record count after upsert = %d, want 2", len(got))
	}
	if got[1].ROE == nil || *got[1].ROE != 16.0 {
		t.Errorf("ROE after upsert = %v, want 16.0", got[1].ROE)
	}
}

func TestSQLiteStoreStockNames(t *testing.T) {
	dir := t.TempDir()
	s, err := NewSQLiteStore(filepath.Join(dir, "stocks.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	defer s.Close()
	ctx := context.Background()

	if err := s.UpsertStocks(ctx, map[string]string{"005930": "Samsung Electronics"}); err != nil {
		t.Fatalf("UpsertStocks: %v", err)
	}

	name, err := s.StockName(ctx, "005930")
	if err != nil {
		t.Fatalf("StockName: %v", err)
	}
	if name != "Samsung Electronics" {
		t.Errorf("StockName = %q, want %q", name, "Samsung Electronics")
	}

	// Unknown tickers fall back to the ticker itself.
	name, err = s.StockName(ctx, "999999")
	if err != nil {
		t.Fatalf("StockName (unknown): %v", err)
	}
	if name != "999999" {
		t.Errorf("StockName (unknown) = %q, want %q", name, "999999")
	}
}

func TestParquetStorePath(t *testing.T) {
	ps := NewParquetStore("/data")

	bp := ps.barPath("aapl", 2024)
	want := filepath.Join("/data", "daily", "AAPL", "2024.parquet")
	if bp != want {
		t.Errorf("barPath mismatch:\n  got  %s\n  want %s", bp, want)
	}
}

func TestParquetStoreWriteReadBars(t *testing.T) {
	dir := t.TempDir()
	ps := NewParquetStore(dir)
	ctx := context.Background()

	bars := []domain.Bar{
		{Ticker: "AAPL", Date: date(2024, 1, 2), Open: 185.0, High: 186.5, Low: 184.0, Close: 185.5, Volume: 50000000},
		{Ticker: "AAPL", Date: date(2024, 1, 3), Open: 185.5, High: 187.0, Low: 185.0, Close: 186.0, Volume: 45000000},
		{Ticker: "MSFT", Date: date(2024, 1, 2), Open: 400.0, High: 405.0, Low: 399.0, Close: 403.0, Volume: 30000000},
	}
	if err := ps.WriteBars(ctx, bars); err != nil {
		t.Fatalf("WriteBars: %v", err)
	}

	got, err := ps.ReadBars(ctx, date(2024, 1, 1), date(2024, 12, 31))
	if err != nil {
		t.Fatalf("ReadBars: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("ReadBars returned %d bars, want 3", len(got))
	}
	// Ordered by date then ticker.
	if got[0].Ticker != "AAPL" || got[1].Ticker != "MSFT" || got[2].Ticker != "AAPL" {
		t.Errorf("order = [%s %s %s], want [AAPL MSFT AAPL]", got[0].Ticker, got[1].Ticker, got[2].Ticker)
	}
	if got[2].Close != 186.0 {
		t.Errorf("last bar Close = %v, want 186.0", got[2].Close)
	}
}

func TestParquetStoreMergeBars(t *testing.T) {
	dir := t.TempDir()
	ps := NewParquetStore(dir)
	ctx := context.Background()

	first := []domain.Bar{
		{Ticker: "MSFT", Date: date(2024, 3, 1), Open: 400.0, High: 405.0, Low: 399.0, Close: 403.0, Volume: 30000000},
	}
	if err := ps.WriteBars(ctx, first); err != nil {
		t.Fatalf("WriteBars (first): %v", err)
	}

	// Write another bar for the same ticker+year; should merge, not overwrite.
	second := []domain.Bar{
		{Ticker: "MSFT", Date: date(2024, 3, 4), Open: 403.0, High: 410.0, Low: 402.0, Close: 408.0, Volume: 35000000},
	}
	if err := ps.WriteBars(ctx, second); err != nil {
		t.Fatalf("WriteBars (second): %v", err)
	}

	got, err := ps.ReadBars(ctx, date(2024, 1, 1), date(2024, 12, 31))
	if err != nil {
		t.Fatalf("ReadBars: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ReadBars returned %d bars after merge, want 2", len(got))
	}
}

func TestParquetStoreListTickers(t *testing.T) {
	dir := t.TempDir()
	ps := NewParquetStore(dir)
	ctx := context.Background()

	bars := []domain.Bar{
		{Ticker: "GOOGL", Date: date(2024, 1, 2), Close: 140.5, Volume: 20000000},
		{Ticker: "AAPL", Date: date(2024, 1, 2), Close: 185.5, Volume: 50000000},
	}
	if err := ps.WriteBars(ctx, bars); err != nil {
		t.Fatalf("WriteBars: %v", err)
	}

	tickers, err := ps.ListTickers(ctx)
	if err != nil {
		t.Fatalf("ListTickers: %v", err)
	}
	if len(tickers) != 2 || tickers[0] != "AAPL" || tickers[1] != "GOOGL" {
		t.Errorf("ListTickers = %v, want [AAPL GOOGL]", tickers)
	}
}
