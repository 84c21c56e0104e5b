package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"

	"alchemy/internal/domain"
)

// Compile-time interface check.
var _ PriceStore = (*ParquetStore)(nil)

// ParquetStore implements PriceStore using Parquet files on disk. It serves
// as an alternative price source for data sets exported in columnar form.
type ParquetStore struct {
	DataDir string
}

// NewParquetStore creates a new ParquetStore rooted at the given data directory.
func NewParquetStore(dataDir string) *ParquetStore {
	return &ParquetStore{DataDir: dataDir}
}

// BarRecord is the Parquet schema for daily bar data.
type BarRecord struct {
	Ticker    string  `parquet:"ticker"`
	Timestamp int64   `parquet:"timestamp,timestamp(millisecond)"` // Unix ms, midnight UTC
	Open      float64 `parquet:"open"`
	High      float64 `parquet:"high"`
	Low       float64 `parquet:"low"`
	Close     float64 `parquet:"close"`
	Volume    int64   `parquet:"volume"`
}

// WriteBars writes bar data to Parquet files organized by ticker and year.
// Each ticker+year combination produces a separate file at:
//
//	<DataDir>/daily/<TICKER>/<YYYY>.parquet
//
// Existing records for the same (ticker, date) are replaced.
func (s *ParquetStore) WriteBars(_ context.Context, bars []domain.Bar) error {
	if len(bars) == 0 {
		return nil
	}

	type key struct {
		ticker string
		year   int
	}
	groups := make(map[key][]BarRecord)
	for _, b := range bars {
		day := domain.Day(b.Date)
		k := key{ticker: b.Ticker, year: day.Year()}
		groups[k] = append(groups[k], BarRecord{
			Ticker:    b.Ticker,
			Timestamp: day.UnixMilli(),
			Open:      b.Open,
			High:      b.High,
			Low:       b.Low,
			Close:     b.Close,
			Volume:    b.Volume,
		})
	}

	for k, records := range groups {
		path := s.barPath(k.ticker, k.year)

		// Read existing records to merge.
		existing, _ := readParquetFile[BarRecord](path)
		merged := mergeBarRecords(existing, records)

		if err := writeParquetFile(path, merged); err != nil {
			return fmt.Errorf("writing bars for %s/%d: %w", k.ticker, k.year, err)
		}
	}
	return nil
}

// ReadBars reads all bars in [start, end] across every ticker directory.
// Results are ordered by date then ticker.
func (s *ParquetStore) ReadBars(ctx context.Context, start, end time.Time) ([]domain.Bar, error) {
	tickers, err := s.ListTickers(ctx)
	if err != nil {
		return nil, err
	}

	start, end = domain.Day(start), domain.Day(end)

	var bars []domain.Bar
	for _, ticker := range tickers {
		for year := start.Year(); year <= end.Year(); year++ {
			records, err := readParquetFile[BarRecord](s.barPath(ticker, year))
			if err != nil {
				// No file for this ticker/year.
				continue
			}
			for _, r := range records {
				day := domain.Day(time.UnixMilli(r.Timestamp).UTC())
				if day.Before(start) || day.After(end) {
					continue
				}
				bars = append(bars, domain.Bar{
					Ticker: r.Ticker,
					Date:   day,
					Open:   r.Open,
					High:   r.High,
					Low:    r.Low,
					Close:  r.Close,
					Volume: r.Volume,
				})
			}
		}
	}

	sort.Slice(bars, func(i, j int) bool {
		if !bars[i].Date.Equal(bars[j].Date) {
			return bars[i].Date.Before(bars[j].Date)
		}
		return bars[i].Ticker < bars[j].Ticker
	})
	return bars, nil
}

// ListTickers lists all tickers that have bar data.
func (s *ParquetStore) ListTickers(_ context.Context) ([]string, error) {
	dir := filepath.Join(s.DataDir, "daily")
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var tickers []string
	for _, e := range entries {
		if e.IsDir() {
			tickers = append(tickers, e.Name())
		}
	}
	sort.Strings(tickers)
	return tickers, nil
}

// barPath returns the filesystem path for a bar Parquet file.
// Layout: <dataDir>/daily/<TICKER>/<YYYY>.parquet
func (s *ParquetStore) barPath(ticker string, year int) string {
	return filepath.Join(s.DataDir, "daily", strings.ToUpper(ticker), fmt.Sprintf("%d.parquet", year))
}

// ---------------------------------------------------------------------------
// Parquet file helpers
// ---------------------------------------------------------------------------

func writeParquetFile[T any](path string, records []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return parquet.WriteFile(path, records)
}

func readParquetFile[T any](path string) ([]T, error) {
	rows, err := parquet.ReadFile[T](path)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// mergeBarRecords deduplicates bar records by (ticker, timestamp), preferring
// new records over existing ones. Results are sorted by timestamp.
func mergeBarRecords(existing, incoming []BarRecord) []BarRecord {
	type key struct {
		ticker string
		ts     int64
	}
	seen := make(map[key]BarRecord, len(existing)+len(incoming))
	for _, r := range existing {
		seen[key{r.Ticker, r.Timestamp}] = r
	}
	for _, r := range incoming {
		seen[key{r.Ticker, r.Timestamp}] = r
	}

	merged := make([]BarRecord, 0, len(seen))
	for _, r := range seen {
		merged = append(merged, r)
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Timestamp < merged[j].Timestamp
	})
	return merged
}
