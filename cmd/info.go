package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/epidash/tbreport-cli/internal/dataset"
	"github.com/epidash/tbreport-cli/internal/utils"
)

var infoPreview int

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print dataset shape, dtypes and missing-value counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		loader := dataset.NewLoader(c)
		info, err := loader.Info(cmd.Context())
		if err != nil {
			return err
		}
		b, err := utils.PrettyJSON(info)
		if err != nil {
			return err
		}
		fmt.Println(string(b))

		if infoPreview > 0 {
			rows, err := loader.Preview(cmd.Context(), infoPreview)
			if err != nil {
				return err
			}
			fmt.Println()
			for _, row := range rows {
				fmt.Println(strings.Join(row, "\t"))
			}
		}
		return nil
	},
}

func init() {
	infoCmd.Flags().IntVar(&infoPreview, "preview", 0, "also print the first N rows")
	rootCmd.AddCommand(infoCmd)
}
