// Package report renders simulation results: an equity-curve chart and a
// plain-text summary of the derived performance metrics.
package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/vicanso/go-charts/v2"

	"alchemy/internal/backtest"
)

// RenderEquityCurve renders the valuation series as a PNG line chart.
func RenderEquityCurve(result *backtest.Result, title string) ([]byte, error) {
	if len(result.Points) == 0 {
		return nil, fmt.Errorf("no valuation points to render")
	}

	values := make([]float64, len(result.Points))
	xLabels := make([]string, len(result.Points))
	for i, pt := range result.Points {
		values[i] = pt.TotalValue.InexactFloat64()
		if len(result.Points) <= 60 {
			xLabels[i] = pt.Date.Format("Jan 02")
		} else {
			xLabels[i] = pt.Date.Format("Jan '06")
		}
	}

	// Y-axis range with padding so the curve does not hug the frame.
	minVal, maxVal := values[0], values[0]
	for _, v := range values {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	padding := (maxVal - minVal) * 0.05
	if padding == 0 {
		padding = maxVal * 0.05
	}
	yMin := minVal - padding
	yMax := maxVal + padding

	subtitle := fmt.Sprintf("Return: %s%% | MaxDD: %s%%",
		result.TotalReturn().Mul(hundred).StringFixed(2),
		result.MaxDrawdown().Mul(hundred).StringFixed(2))

	splitNum := 6
	if len(xLabels) <= 30 {
		splitNum = len(xLabels) / 3
		if splitNum < 3 {
			splitNum = 3
		}
	}

	p, err := charts.LineRender(
		[][]float64{values},
		charts.TitleTextOptionFunc(title+"\n"+subtitle),
		charts.XAxisOptionFunc(charts.XAxisOption{
			Data:        xLabels,
			SplitNumber: splitNum,
			BoundaryGap: charts.FalseFlag(),
		}),
		charts.YAxisOptionFunc(charts.YAxisOption{
			Min:         &yMin,
			Max:         &yMax,
			DivideCount: 5,
		}),
		charts.ThemeOptionFunc(charts.ThemeLight),
	)
	if err != nil {
		return nil, fmt.Errorf("rendering chart: %w", err)
	}

	buf, err := p.Bytes()
	if err != nil {
		return nil, fmt.Errorf("encoding chart: %w", err)
	}
	return buf, nil
}

// WriteEquityCurve renders the chart and writes it to path, creating parent
// directories as needed.
func WriteEquityCurve(result *backtest.Result, title, path string) error {
	buf, err := RenderEquityCurve(result, title)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, buf, 0o644)
}
