package report

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/epidash/tbreport-cli/internal/regions"
	"github.com/epidash/tbreport-cli/internal/utils"
)

// ExportExcel writes the analyzer outputs as an XLSX workbook next to the
// HTML report: one sheet of summary statistics, one of regional aggregates
// and one of top countries.
func (r *Reporter) ExportExcel(path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", "Summary"); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := r.writeSummarySheet(f); err != nil {
		return err
	}
	if err := r.writeRegionalSheet(f); err != nil {
		return err
	}
	if err := r.writeTopCountriesSheet(f); err != nil {
		return err
	}

	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("mkdir output dir: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	slog.Info("workbook written", slog.String("path", path))
	return nil
}

func (r *Reporter) writeSummarySheet(f *excelize.File) error {
	headers := []string{"Metric", "Total", "Mean", "Median", "Std", "Min", "Max"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue("Summary", cell, h); err != nil {
			return fmt.Errorf("summary header: %w", err)
		}
	}
	stats := r.an.SummaryStatistics()
	metrics := make([]string, 0, len(stats))
	for m := range stats {
		metrics = append(metrics, m)
	}
	sort.Strings(metrics)
	for row, m := range metrics {
		s := stats[m]
		values := []any{m, s.Total, s.Mean, s.Median, s.Std, s.Min, s.Max}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue("Summary", cell, v); err != nil {
				return fmt.Errorf("summary row %s: %w", m, err)
			}
		}
	}
	return nil
}

func (r *Reporter) writeRegionalSheet(f *excelize.File) error {
	const sheet = "Regional"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("new sheet %s: %w", sheet, err)
	}
	headers := []string{"Region", "Cases Sum", "Cases Mean", "Count", "MDR Sum", "XDR Sum"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("regional header: %w", err)
		}
	}
	for row, rs := range r.an.RegionalSummary() {
		values := []any{regions.WHORegionName(rs.Region), rs.CasesSum, rs.CasesMean, rs.Count, rs.MDRSum, rs.XDRSum}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("regional row %s: %w", rs.Region, err)
			}
		}
	}
	return nil
}

func (r *Reporter) writeTopCountriesSheet(f *excelize.File) error {
	const sheet = "Top Countries"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("new sheet %s: %w", sheet, err)
	}
	for i, h := range []string{"Rank", "Country", "Total Cases"} {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("top countries header: %w", err)
		}
	}
	for row, ct := range r.an.TopCountries("pulm_labconf_new", r.topN) {
		values := []any{row + 1, ct.Country, ct.Value}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("top countries row %s: %w", ct.Country, err)
			}
		}
	}
	return nil
}
