package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	cfgpkg "github.com/epidash/tbreport-cli/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set tbreport configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Println("No config loaded")
			return nil
		}
		fmt.Printf("data_url: %s\n", cfg.DataURL)
		fmt.Printf("cache_dir: %s\n", cfg.CacheDir)
		fmt.Printf("cache_file: %s\n", cfg.CacheFile)
		fmt.Printf("output_dir: %s\n", cfg.OutputDir)
		fmt.Printf("report_file: %s\n", cfg.ReportFile)
		fmt.Printf("top_n: %d\n", cfg.TopN)
		fmt.Printf("knn_neighbors: %d\n", cfg.KNNNeighbors)
		fmt.Printf("http_timeout_sec: %d\n", cfg.HTTPTimeoutSec)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		switch key {
		case "data_url":
			cfg.DataURL = val
		case "cache_dir":
			cfg.CacheDir = val
		case "cache_file":
			cfg.CacheFile = val
		case "output_dir":
			cfg.OutputDir = val
		case "report_file":
			cfg.ReportFile = val
		case "top_n":
			i, err := strconv.Atoi(val)
			if err != nil || i <= 0 {
				return fmt.Errorf("invalid int for top_n: %v", val)
			}
			cfg.TopN = i
		case "knn_neighbors":
			i, err := strconv.Atoi(val)
			if err != nil || i <= 0 {
				return fmt.Errorf("invalid int for knn_neighbors: %v", val)
			}
			cfg.KNNNeighbors = i
		case "http_timeout_sec":
			i, err := strconv.Atoi(val)
			if err != nil || i <= 0 {
				return fmt.Errorf("invalid int for http_timeout_sec: %v", val)
			}
			cfg.HTTPTimeoutSec = i
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Println("Saved config")
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the default settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := cfgpkg.Load(cfgFile)
		if err != nil {
			return err
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		fmt.Println("✓ Config written")
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
