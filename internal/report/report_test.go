package report

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/epidash/tbreport-cli/internal/dataset"
)

func processedTable(t *testing.T) *dataset.Table {
	t.Helper()
	tbl, err := dataset.FromRecords([][]string{
		{"country", "g_whoregion", "year", "pulm_labconf_new", "mdr_new", "xdr", "Region"},
		{"India", "SEA", "2020", "1000", "50", "5", "Asia"},
		{"India", "SEA", "2021", "1200", "60", "6", "Asia"},
		{"Brazil", "AMR", "2020", "400", "20", "2", "Americas"},
		{"Brazil", "AMR", "2021", "450", "25", "3", "Americas"},
		{"Nigeria", "AFR", "2020", "800", "40", "4", "Africa"},
		{"Nigeria", "AFR", "2021", "900", "45", "5", "Africa"},
	})
	if err != nil {
		t.Fatalf("FromRecords: %v", err)
	}
	return tbl
}

func TestGenerateFullReport(t *testing.T) {
	r := NewReporter(processedTable(t), 10)
	html, err := r.Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	doc := string(html)

	if !strings.Contains(doc, plotlyCDN) {
		t.Error("report missing plotly CDN script")
	}
	for _, id := range []string{"line", "bar", "pie", "correlation", "scatter", "boxplot", "regionBoxplot"} {
		if !strings.Contains(doc, `id="`+id+`"`) {
			t.Errorf("report missing chart container %q", id)
		}
		if !strings.Contains(doc, "Plotly.newPlot(\""+id+"\"") {
			t.Errorf("report missing bootstrap script for %q", id)
		}
	}
	if !strings.Contains(doc, "Total TB Cases") {
		t.Error("report missing stat cards")
	}
	if !strings.Contains(doc, "4,750") {
		t.Error("report missing formatted TB case total")
	}
	if !strings.Contains(doc, "2020-2021") {
		t.Error("report missing year range card")
	}
	if !strings.Contains(doc, r.RunID()) {
		t.Error("report missing run id in footer")
	}
}

func TestGenerateDegradesWithoutMetricColumns(t *testing.T) {
	tbl, err := dataset.FromRecords([][]string{
		{"country", "Region"},
		{"India", "Asia"},
		{"Brazil", "Americas"},
	})
	if err != nil {
		t.Fatalf("FromRecords: %v", err)
	}
	html, err := NewReporter(tbl, 10).Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	doc := string(html)

	if !strings.Contains(doc, "No data available for this chart") {
		t.Error("expected no-data placeholders")
	}
	if strings.Contains(doc, "Plotly.newPlot") {
		t.Error("no chart should render without metric columns")
	}
	if !strings.Contains(doc, "N/A") {
		t.Error("years card should fall back to N/A")
	}
}

func TestChartScriptShape(t *testing.T) {
	s := string(chartScript("line", `{"data":[]}`))
	if !strings.HasPrefix(s, "var lineFig = {") {
		t.Errorf("unexpected script prefix: %s", s)
	}
	if !strings.Contains(s, `Plotly.newPlot("line", lineFig.data, lineFig.layout);`) {
		t.Errorf("unexpected bootstrap call: %s", s)
	}
}

func TestExportExcel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tb_report.xlsx")
	r := NewReporter(processedTable(t), 2)
	if err := r.ExportExcel(path); err != nil {
		t.Fatalf("ExportExcel: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	for _, sheet := range []string{"Summary", "Regional", "Top Countries"} {
		if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
			t.Errorf("missing sheet %q", sheet)
		}
	}

	got, err := f.GetCellValue("Top Countries", "B2")
	if err != nil {
		t.Fatalf("GetCellValue: %v", err)
	}
	if got != "India" {
		t.Errorf("top country = %q, want India", got)
	}

	rows, err := f.GetRows("Top Countries")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 {
		t.Errorf("top countries rows = %d, want header plus two", len(rows))
	}
}
