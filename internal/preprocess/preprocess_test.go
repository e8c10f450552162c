package preprocess

import (
	"errors"
	"strings"
	"testing"

	"github.com/epidash/tbreport-cli/internal/dataset"
)

func mustTable(t *testing.T, csv string) *dataset.Table {
	t.Helper()
	tbl, err := dataset.ReadCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	return tbl
}

const rawCSV = "country,year,g_whoregion,pulm_labconf_new,mdr_new\n" +
	"India,2020,SEA,100,5\n" +
	"India,2020,SEA,100,5\n" + // exact duplicate
	"India,2021,SEA,150,\n" +
	"Brazil,2020,AMR,40,2\n" +
	"Brazil,2021,AMR,55,3\n" +
	"Australia,2020,WPR,10,1\n"

func TestPreprocessNilInput(t *testing.T) {
	if _, err := New(nil, 3).Preprocess(); !errors.Is(err, ErrNoData) {
		t.Fatalf("err = %v, want ErrNoData", err)
	}
}

func TestPreprocessRemovesDuplicates(t *testing.T) {
	p := New(mustTable(t, rawCSV), 3)
	out, err := p.Preprocess()
	if err != nil {
		t.Fatalf("Preprocess: %v", err)
	}
	if out.Rows() != 5 {
		t.Fatalf("rows = %d, want 5 after dedup", out.Rows())
	}
	seen := map[string]bool{}
	for _, row := range out.Head(out.Rows()) {
		key := strings.Join(row, "|")
		if seen[key] {
			t.Fatalf("duplicate row in output: %v", row)
		}
		seen[key] = true
	}
}

func TestPreprocessAddsRegionColumn(t *testing.T) {
	p := New(mustTable(t, rawCSV), 3)
	out, err := p.Preprocess()
	if err != nil {
		t.Fatalf("Preprocess: %v", err)
	}
	reg, ok := out.Strings("Region")
	if !ok {
		t.Fatal("Region column missing")
	}
	countries, _ := out.Strings("country")
	for i, c := range countries {
		want := ""
		switch c {
		case "India":
			want = "Asia"
		case "Brazil":
			want = "Americas"
		case "Australia":
			want = "Oceania" // catch-all, not a real Oceania list
		}
		if reg[i] != want {
			t.Errorf("row %d (%s): Region = %q, want %q", i, c, reg[i], want)
		}
	}
}

func TestPreprocessImputesAllNumericMissing(t *testing.T) {
	p := New(mustTable(t, rawCSV), 3)
	out, err := p.Preprocess()
	if err != nil {
		t.Fatalf("Preprocess: %v", err)
	}
	miss := out.MissingCounts()
	for _, col := range []string{"year", "pulm_labconf_new", "mdr_new"} {
		if miss[col] != 0 {
			t.Errorf("column %s still has %d missing values", col, miss[col])
		}
	}
	// Imputed value is a mean of observed neighbours, so it stays within
	// the observed range of the column.
	vals, ok := out.Numeric("mdr_new")
	if !ok {
		t.Fatal("mdr_new column missing")
	}
	for i, v := range vals {
		if v < 1 || v > 5 {
			t.Errorf("mdr_new[%d] = %v outside observed range [1,5]", i, v)
		}
	}
}

func TestPreprocessKeepsCategoricalsUnchanged(t *testing.T) {
	raw := mustTable(t, rawCSV)
	wantCountries, _ := raw.Strings("country")
	p := New(raw, 3)
	out, err := p.Preprocess()
	if err != nil {
		t.Fatalf("Preprocess: %v", err)
	}
	got, ok := out.Strings("country")
	if !ok {
		t.Fatal("country column missing")
	}
	// One duplicate row was dropped, so compare against the deduped raw.
	deduped, _ := raw.Dedup()
	wantCountries, _ = deduped.Strings("country")
	if len(got) != len(wantCountries) {
		t.Fatalf("country length = %d, want %d", len(got), len(wantCountries))
	}
	for i := range got {
		if got[i] != wantCountries[i] {
			t.Errorf("country[%d] = %q, want %q", i, got[i], wantCountries[i])
		}
	}
	whoreg, ok := out.Strings("g_whoregion")
	if !ok || whoreg[0] != "SEA" {
		t.Errorf("g_whoregion not carried through: %v ok=%v", whoreg, ok)
	}
}

func TestGetSummary(t *testing.T) {
	p := New(mustTable(t, rawCSV), 3)
	if _, err := p.Preprocess(); err != nil {
		t.Fatalf("Preprocess: %v", err)
	}
	s := p.GetSummary()
	if s.OriginalShape != [2]int{6, 5} {
		t.Errorf("original shape = %v", s.OriginalShape)
	}
	if s.FinalShape[0] != 5 {
		t.Errorf("final rows = %d, want 5", s.FinalShape[0])
	}
	if s.MissingBefore["mdr_new"] != 1 {
		t.Errorf("missing before = %v", s.MissingBefore)
	}
	if s.MissingAfter["mdr_new"] != 0 {
		t.Errorf("missing after = %v", s.MissingAfter)
	}
	if len(s.NumericalColumns) == 0 || len(s.CategoricalColumns) == 0 {
		t.Errorf("column split empty: %+v", s)
	}
}

func TestEncodeCategoricalsDropsReference(t *testing.T) {
	tbl := mustTable(t, "country,year\nA,1\nB,2\nC,3\nB,4\n")
	cols := encodeCategoricals(tbl, []string{"country"})
	// Three categories minus the reference leaves two indicator columns.
	if len(cols) != 2 {
		t.Fatalf("indicator columns = %d, want 2", len(cols))
	}
	// Reference category "A" encodes to all zeros.
	if cols[0][0] != 0 || cols[1][0] != 0 {
		t.Errorf("reference row not all-zero: %v %v", cols[0][0], cols[1][0])
	}
	// "B" hits the first kept indicator (sorted order: A dropped, B, C).
	if cols[0][1] != 1 || cols[0][3] != 1 || cols[1][2] != 1 {
		t.Errorf("indicators wrong: B=%v,%v C=%v", cols[0][1], cols[0][3], cols[1][2])
	}
}
