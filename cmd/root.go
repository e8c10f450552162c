package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	cfgpkg "github.com/epidash/tbreport-cli/internal/config"
	"github.com/epidash/tbreport-cli/internal/logging"
)

var (
	// Global flags (wired later to config/viper)
	cfgFile string
	debug   bool
	// HTTP flags (override config if set)
	flagHTTPTimeoutSec int

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "tbreport",
	Short: "tbreport: TB surveillance data analysis and reporting",
	Long:  `tbreport downloads WHO tuberculosis surveillance data, cleans and imputes it, runs the statistical analysis and renders a self-contained HTML report.`,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Initialize configuration before executing commands
	cobra.OnInitialize(loadConfig)
	// Persistent global flags available to all subcommands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.tbreport/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().IntVar(&flagHTTPTimeoutSec, "http-timeout", 0, "HTTP client timeout in seconds (overrides config)")
}

func loadConfig() {
	logging.Setup(debug)
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: allow running commands that don't need config
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		return
	}
	cfg = c

	// Apply CLI overrides if provided
	f := rootCmd.PersistentFlags()
	if f.Changed("http-timeout") && flagHTTPTimeoutSec > 0 {
		cfg.HTTPTimeoutSec = flagHTTPTimeoutSec
	}
}

// requireConfig guards commands that cannot run without a loaded config.
func requireConfig() (*cfgpkg.Global, error) {
	if cfg == nil {
		return nil, fmt.Errorf("no configuration loaded (see 'tbreport config init')")
	}
	return cfg, nil
}
