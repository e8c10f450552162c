package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/epidash/tbreport-cli/internal/dataset"
)

var fetchForce bool

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the TB dataset and cache it on disk",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		loader := dataset.NewLoader(c)
		t, err := loader.Load(cmd.Context(), fetchForce)
		if err != nil {
			return err
		}
		fmt.Printf("✓ Loaded %d rows, %d columns\n", t.Rows(), t.Cols())
		fmt.Printf("  Cache: %s\n", c.CachePath())
		return nil
	},
}

func init() {
	fetchCmd.Flags().BoolVar(&fetchForce, "force", false, "re-download even when a cached copy exists")
	rootCmd.AddCommand(fetchCmd)
}
