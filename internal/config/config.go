package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// DefaultDataURL is the WHO TB notifications extract used when no override
// is configured.
const DefaultDataURL = "https://extranet.who.int/tme/generateCSV.asp?ds=notifications"

// Global configuration structure.
type Global struct {
	DataURL    string `mapstructure:"data_url" yaml:"data_url"`
	CacheDir   string `mapstructure:"cache_dir" yaml:"cache_dir"`
	CacheFile  string `mapstructure:"cache_file" yaml:"cache_file"`
	OutputDir  string `mapstructure:"output_dir" yaml:"output_dir"`
	ReportFile string `mapstructure:"report_file" yaml:"report_file"`

	// Analysis knobs
	TopN         int `mapstructure:"top_n" yaml:"top_n"`
	KNNNeighbors int `mapstructure:"knn_neighbors" yaml:"knn_neighbors"`

	// HTTP configuration (single attempt, no retries)
	HTTPTimeoutSec int `mapstructure:"http_timeout_sec" yaml:"http_timeout_sec"`
}

// CachePath returns the full path of the on-disk CSV cache.
func (c *Global) CachePath() string {
	return filepath.Join(c.CacheDir, c.CacheFile)
}

// ReportPath returns the full path of the HTML report output.
func (c *Global) ReportPath() string {
	return filepath.Join(c.OutputDir, c.ReportFile)
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.tbreport/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".tbreport")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("TBREPORT")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("data_url", DefaultDataURL)
	v.SetDefault("cache_dir", "data")
	v.SetDefault("cache_file", "tb_data.csv")
	v.SetDefault("output_dir", "reports")
	v.SetDefault("report_file", "tb_report.html")
	v.SetDefault("top_n", 10)
	v.SetDefault("knn_neighbors", 3)
	v.SetDefault("http_timeout_sec", 60)

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".tbreport")
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.KNNNeighbors <= 0 {
		c.KNNNeighbors = 3
	}
	return &c, nil
}
