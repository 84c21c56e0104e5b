package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"alchemy/internal/domain"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// Compile-time interface checks.
var _ PriceStore = (*SQLiteStore)(nil)
var _ FundamentalsStore = (*SQLiteStore)(nil)

// SQLiteStore implements PriceStore and FundamentalsStore backed by a SQLite
// database holding the stocks, financial_info, and daily_charts tables.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath, ensures the
// schema exists, and returns a ready-to-use SQLiteStore.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating schema: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// migrate creates the tables when they do not exist yet.
func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS stocks (
			ticker TEXT PRIMARY KEY,
			name TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS financial_info (
			ticker TEXT, business_year INTEGER,
			roe REAL, ev_ebitda REAL,
			mac REAL, net_income REAL, total_equity REAL,
			operating_income REAL, depreciation REAL, amortization REAL,
			total_debt REAL, cash_and_equivalents REAL,
			PRIMARY KEY (ticker, business_year)
		)`,
		`CREATE TABLE IF NOT EXISTS daily_charts (
			ticker TEXT, date TEXT, open REAL, high REAL,
			low REAL, close REAL, volume INTEGER,
			PRIMARY KEY (ticker, date)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// PriceStore implementation
// ---------------------------------------------------------------------------

// WriteBars inserts bars into daily_charts, replacing any existing row for
// the same (ticker, date).
func (s *SQLiteStore) WriteBars(ctx context.Context, bars []domain.Bar) error {
	if len(bars) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO daily_charts (ticker, date, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, b := range bars {
		_, err := stmt.ExecContext(ctx,
			b.Ticker, domain.DateString(b.Date), b.Open, b.High, b.Low, b.Close, b.Volume)
		if err != nil {
			return fmt.Errorf("inserting bar %s/%s: %w", b.Ticker, domain.DateString(b.Date), err)
		}
	}
	return tx.Commit()
}

// ReadBars returns all bars in [start, end] across all tickers, ordered by
// date then ticker.
func (s *SQLiteStore) ReadBars(ctx context.Context, start, end time.Time) ([]domain.Bar, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ticker, date, open, high, low, close, volume
		FROM daily_charts
		WHERE date >= ? AND date <= ?
		ORDER BY date, ticker`,
		domain.DateString(start), domain.DateString(end))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bars []domain.Bar
	for rows.Next() {
		var b domain.Bar
		var dateStr string
		if err := rows.Scan(&b.Ticker, &dateStr, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, err
		}
		b.Date, err = domain.ParseDate(dateStr)
		if err != nil {
			return nil, err
		}
		bars = append(bars, b)
	}
	return bars, rows.Err()
}

// ListTickers returns all distinct tickers present in daily_charts.
func (s *SQLiteStore) ListTickers(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT ticker FROM daily_charts ORDER BY ticker`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickers []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		tickers = append(tickers, t)
	}
	return tickers, rows.Err()
}

// ---------------------------------------------------------------------------
// FundamentalsStore implementation
// ---------------------------------------------------------------------------

// WriteFinancials upserts financial rows keyed by (ticker, business_year).
func (s *SQLiteStore) WriteFinancials(ctx context.Context, frows []FinancialRow) error {
	if len(frows) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO financial_info (
			ticker, business_year, roe, ev_ebitda, mac, net_income, total_equity,
			operating_income, depreciation, amortization, total_debt, cash_and_equivalents
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range frows {
		_, err := stmt.ExecContext(ctx,
			r.Ticker, r.FiscalYear,
			nullable(r.ROE), nullable(r.EVEBITDA), nullable(r.MarketCap),
			nullable(r.NetIncome), nullable(r.TotalEquity), nullable(r.OperatingIncome),
			nullable(r.Depreciation), nullable(r.Amortization),
			nullable(r.TotalDebt), nullable(r.CashAndEquivalents))
		if err != nil {
			return fmt.Errorf("inserting financials %s/%d: %w", r.Ticker, r.FiscalYear, err)
		}
	}
	return tx.Commit()
}

// ReadFundamentals returns the derived ratios for every stored row.
func (s *SQLiteStore) ReadFundamentals(ctx context.Context) ([]domain.Fundamentals, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ticker, business_year, roe, ev_ebitda
		FROM financial_info
		ORDER BY business_year, ticker`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.Fundamentals
	for rows.Next() {
		var f domain.Fundamentals
		var roe, evEbitda sql.NullFloat64
		if err := rows.Scan(&f.Ticker, &f.FiscalYear, &roe, &evEbitda); err != nil {
			return nil, err
		}
		if roe.Valid {
			f.ROE = &roe.Float64
		}
		if evEbitda.Valid {
			f.EVEBITDA = &evEbitda.Float64
		}
		records = append(records, f)
	}
	return records, rows.Err()
}

// ---------------------------------------------------------------------------
// Stock names
// ---------------------------------------------------------------------------

// UpsertStocks inserts ticker → name mappings, keeping existing names.
func (s *SQLiteStore) UpsertStocks(ctx context.Context, names map[string]string) error {
	if len(names) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO stocks (ticker, name) VALUES (?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for ticker, name := range names {
		if _, err := stmt.ExecContext(ctx, ticker, name); err != nil {
			return fmt.Errorf("inserting stock %s: %w", ticker, err)
		}
	}
	return tx.Commit()
}

// StockName returns the display name for a ticker, or the ticker itself when
// no name is stored.
func (s *SQLiteStore) StockName(ctx context.Context, ticker string) (string, error) {
	var name string
	err := s.db.QueryRowContext(ctx, `SELECT name FROM stocks WHERE ticker = ?`, ticker).Scan(&name)
	if err == sql.ErrNoRows {
		return ticker, nil
	}
	if err != nil {
		return "", err
	}
	return name, nil
}

// nullable converts a *float64 to a driver-friendly value, mapping nil to
// SQL NULL.
func nullable(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
