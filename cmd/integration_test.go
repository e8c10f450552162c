package cmd

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testCSV = `country,g_whoregion,year,pulm_labconf_new,mdr_new,xdr
India,SEA,2020,1000,50,5
India,SEA,2021,1200,60,6
Brazil,AMR,2020,400,20,2
Brazil,AMR,2021,450,,3
Nigeria,AFR,2020,800,40,4
`

// runCmd is a helper to execute the root command with args.
func runCmd(t *testing.T, args ...string) {
	t.Helper()
	// Reset sticky flags that may persist Changed state across invocations
	if fl := reportCmd.Flags().Lookup("force-reload"); fl != nil {
		_ = fl.Value.Set("false")
		fl.Changed = false
	}
	if fl := fetchCmd.Flags().Lookup("force"); fl != nil {
		_ = fl.Value.Set("false")
		fl.Changed = false
	}
	reportOutputPath = ""
	reportTopN = 0
	reportXLSX = false
	reportSummary = false
	reportForce = false
	fetchForce = false
	infoPreview = 0
	cfg = nil
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
}

// testEnv points HOME at a temp dir and serves the fixture CSV over a local
// HTTP server wired in through the environment.
func testEnv(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, testCSV)
	}))
	t.Cleanup(srv.Close)
	t.Setenv("TBREPORT_DATA_URL", srv.URL)
	t.Setenv("TBREPORT_CACHE_DIR", filepath.Join(home, "data"))
	t.Setenv("TBREPORT_OUTPUT_DIR", filepath.Join(home, "reports"))
	return home
}

func TestCLI_FetchWritesCache(t *testing.T) {
	home := testEnv(t)
	runCmd(t, "fetch")

	cachePath := filepath.Join(home, "data", "tb_data.csv")
	b, err := os.ReadFile(cachePath)
	if err != nil {
		t.Fatalf("cache not written: %v", err)
	}
	if string(b) != testCSV {
		t.Error("cache content differs from served CSV")
	}
}

func TestCLI_ReportEndToEnd(t *testing.T) {
	home := testEnv(t)
	out := filepath.Join(home, "reports", "out.html")
	runCmd(t, "report", "--output", out, "--top", "3", "--xlsx")

	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("report not written: %v", err)
	}
	doc := string(b)
	if !strings.Contains(doc, "TB Data Analysis Report") {
		t.Error("report missing title")
	}
	if !strings.Contains(doc, "cdn.plot.ly") {
		t.Error("report missing plotly script")
	}
	if _, err := os.Stat(filepath.Join(home, "reports", "out.xlsx")); err != nil {
		t.Errorf("workbook not written: %v", err)
	}
}

func TestCLI_ConfigSetRoundTrip(t *testing.T) {
	home := testEnv(t)
	runCmd(t, "config", "set", "top_n", "7")

	b, err := os.ReadFile(filepath.Join(home, ".tbreport", "config.yaml"))
	if err != nil {
		t.Fatalf("config not written: %v", err)
	}
	if !strings.Contains(string(b), "top_n: 7") {
		t.Errorf("config missing updated key:\n%s", b)
	}
}
