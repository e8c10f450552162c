package dataset

import (
	"strings"
	"testing"
)

const sampleCSV = "country,year,g_whoregion,pulm_labconf_new,mdr_new\n" +
	"India,2020,SEA,100,5\n" +
	"India,2020,SEA,100,5\n" +
	"Brazil,2020,AMR,40,\n" +
	"Brazil,2021,AMR,55,2\n"

func mustRead(t *testing.T, csv string) *Table {
	t.Helper()
	tbl, err := ReadCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	return tbl
}

func TestReadCSVShapeAndTypes(t *testing.T) {
	tbl := mustRead(t, sampleCSV)
	if tbl.Rows() != 4 || tbl.Cols() != 5 {
		t.Fatalf("shape = %dx%d, want 4x5", tbl.Rows(), tbl.Cols())
	}
	num := tbl.NumericColumns()
	for _, want := range []string{"year", "pulm_labconf_new", "mdr_new"} {
		found := false
		for _, n := range num {
			if n == want {
				found = true
			}
		}
		if !found {
			t.Errorf("numeric columns %v missing %s", num, want)
		}
	}
	cat := tbl.CategoricalColumns()
	if len(cat) != 2 {
		t.Errorf("categorical columns = %v, want country and g_whoregion", cat)
	}
}

func TestDedupKeepsFirst(t *testing.T) {
	tbl := mustRead(t, sampleCSV)
	got, err := tbl.Dedup()
	if err != nil {
		t.Fatalf("Dedup: %v", err)
	}
	if got.Rows() != 3 {
		t.Fatalf("rows after dedup = %d, want 3", got.Rows())
	}
	// First row survives.
	head := got.Head(1)
	if head[0][0] != "India" || head[0][1] != "2020" {
		t.Errorf("first row = %v", head[0])
	}
	// No duplicates remain.
	seen := map[string]bool{}
	for _, row := range got.Head(got.Rows()) {
		key := strings.Join(row, "|")
		if seen[key] {
			t.Fatalf("duplicate row survived: %v", row)
		}
		seen[key] = true
	}
}

func TestDedupNoChangeReturnsSameTable(t *testing.T) {
	csv := "country,year\nIndia,2020\nBrazil,2021\n"
	tbl := mustRead(t, csv)
	got, err := tbl.Dedup()
	if err != nil {
		t.Fatalf("Dedup: %v", err)
	}
	if got.Rows() != 2 {
		t.Fatalf("rows = %d, want 2", got.Rows())
	}
}

func TestMissingCounts(t *testing.T) {
	tbl := mustRead(t, sampleCSV)
	miss := tbl.MissingCounts()
	if miss["mdr_new"] != 1 {
		t.Errorf("mdr_new missing = %d, want 1", miss["mdr_new"])
	}
	if miss["country"] != 0 || miss["pulm_labconf_new"] != 0 {
		t.Errorf("unexpected missing counts: %v", miss)
	}
}

func TestWithColumnAndUnique(t *testing.T) {
	tbl := mustRead(t, sampleCSV)
	got, err := tbl.WithColumn("Region", []string{"Asia", "Asia", "Americas", "Americas"})
	if err != nil {
		t.Fatalf("WithColumn: %v", err)
	}
	vals, ok := got.Strings("Region")
	if !ok || len(vals) != 4 || vals[0] != "Asia" {
		t.Fatalf("Region column = %v ok=%v", vals, ok)
	}
	if n := got.Unique("country"); n != 2 {
		t.Errorf("unique countries = %d, want 2", n)
	}
	// Length mismatch rejected.
	if _, err := tbl.WithColumn("Region", []string{"Asia"}); err == nil {
		t.Fatal("expected error for short column")
	}
}

func TestNumericMissingColumn(t *testing.T) {
	tbl := mustRead(t, sampleCSV)
	if _, ok := tbl.Numeric("no_such_column"); ok {
		t.Fatal("expected ok=false for absent column")
	}
	if _, ok := tbl.Strings("no_such_column"); ok {
		t.Fatal("expected ok=false for absent column")
	}
}
