package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/epidash/tbreport-cli/internal/dataset"
	"github.com/epidash/tbreport-cli/internal/preprocess"
	"github.com/epidash/tbreport-cli/internal/report"
	"github.com/epidash/tbreport-cli/internal/utils"
)

var (
	reportOutputPath string
	reportTopN       int
	reportForce      bool
	reportXLSX       bool
	reportSummary    bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Run the full pipeline and write the HTML report",
	Long:  `Loads the dataset (cache or remote), deduplicates rows, assigns WHO regions, imputes missing numeric values, runs the analysis and writes a self-contained HTML report with all charts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		loader := dataset.NewLoader(c)
		raw, err := loader.Load(cmd.Context(), reportForce)
		if err != nil {
			return err
		}

		pre := preprocess.New(raw, c.KNNNeighbors)
		processed, err := pre.Preprocess()
		if err != nil {
			return err
		}
		if reportSummary {
			b, err := utils.PrettyJSON(pre.GetSummary())
			if err != nil {
				return err
			}
			fmt.Println(string(b))
		}

		topN := c.TopN
		if reportTopN > 0 {
			topN = reportTopN
		}
		outPath := c.ReportPath()
		if reportOutputPath != "" {
			outPath = reportOutputPath
		}

		rep := report.NewReporter(processed, topN)
		if err := rep.WriteFile(outPath); err != nil {
			return err
		}
		fmt.Printf("✓ Report written to %s\n", outPath)

		if reportXLSX {
			xlsxPath := strings.TrimSuffix(outPath, filepath.Ext(outPath)) + ".xlsx"
			if err := rep.ExportExcel(xlsxPath); err != nil {
				return err
			}
			fmt.Printf("✓ Workbook written to %s\n", xlsxPath)
		}
		return nil
	},
}

func init() {
	reportCmd.Flags().StringVarP(&reportOutputPath, "output", "o", "", "report output path (default from config)")
	reportCmd.Flags().IntVar(&reportTopN, "top", 0, "number of countries in the ranking chart (default from config)")
	reportCmd.Flags().BoolVar(&reportForce, "force-reload", false, "bypass the cache and re-download the dataset")
	reportCmd.Flags().BoolVar(&reportXLSX, "xlsx", false, "also export the analysis tables as an XLSX workbook")
	reportCmd.Flags().BoolVar(&reportSummary, "summary", false, "print the preprocessing summary as JSON")
	rootCmd.AddCommand(reportCmd)
}
