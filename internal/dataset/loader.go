package dataset

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/epidash/tbreport-cli/internal/config"
	"github.com/epidash/tbreport-cli/internal/utils"
)

// Loader fetches the observation table from the local cache or the remote
// source, persisting the cache on first download. Once loaded the in-memory
// table is reused unless a reload is forced.
type Loader struct {
	cfg    *config.Global
	client *http.Client

	mu     sync.Mutex
	table  *Table
	loaded bool
}

// Info describes the loaded dataset.
type Info struct {
	Shape           [2]int            `json:"shape"`
	Columns         []string          `json:"columns"`
	DTypes          map[string]string `json:"dtypes"`
	MissingValues   map[string]int    `json:"missing_values"`
	UniqueCountries int               `json:"unique_countries"`
	YearRange       [2]int            `json:"year_range"`
}

// NewLoader builds a loader with an HTTP client honoring the configured
// timeout.
func NewLoader(cfg *config.Global) *Loader {
	return &Loader{
		cfg:    cfg,
		client: &http.Client{Timeout: time.Duration(cfg.HTTPTimeoutSec) * time.Second},
	}
}

// Load returns the observation table. Order of preference: in-memory table,
// on-disk cache, remote fetch (single attempt, cache persisted on success).
// force bypasses both caches. I/O and parse errors propagate unchanged.
func (l *Loader) Load(ctx context.Context, force bool) (*Table, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.loaded && !force {
		return l.table, nil
	}

	cachePath := l.cfg.CachePath()
	if !force {
		if _, err := os.Stat(cachePath); err == nil {
			slog.Info("loading data from cache", slog.String("path", cachePath))
			f, err := os.Open(cachePath)
			if err != nil {
				return nil, fmt.Errorf("open cache: %w", err)
			}
			defer f.Close()
			t, err := ReadCSV(f)
			if err != nil {
				return nil, err
			}
			l.table, l.loaded = t, true
			slog.Info("data loaded", slog.Int("rows", t.Rows()), slog.Int("cols", t.Cols()))
			return t, nil
		}
	}

	slog.Info("downloading data from source", slog.String("url", l.cfg.DataURL))
	body, err := l.fetch(ctx)
	if err != nil {
		return nil, err
	}
	if err := utils.EnsureDir(l.cfg.CacheDir); err != nil {
		return nil, fmt.Errorf("mkdir cache dir: %w", err)
	}
	if err := utils.SafeWriteFile(cachePath, body); err != nil {
		return nil, fmt.Errorf("write cache: %w", err)
	}
	t, err := ReadCSV(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	l.table, l.loaded = t, true
	slog.Info("data loaded", slog.Int("rows", t.Rows()), slog.Int("cols", t.Cols()))
	return t, nil
}

// fetch performs the single blocking download. No retries: a failure
// surfaces to the caller immediately.
func (l *Loader) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.cfg.DataURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch data: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch data: unexpected status %s", resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// Info loads the table if necessary and summarizes its shape, dtypes and
// missingness.
func (l *Loader) Info(ctx context.Context) (*Info, error) {
	t, err := l.Load(ctx, false)
	if err != nil {
		return nil, err
	}
	info := &Info{
		Shape:         [2]int{t.Rows(), t.Cols()},
		Columns:       t.Names(),
		DTypes:        make(map[string]string, t.Cols()),
		MissingValues: t.MissingCounts(),
	}
	types := t.df.Types()
	for i, n := range t.Names() {
		info.DTypes[n] = string(types[i])
	}
	if t.HasColumn("country") {
		info.UniqueCountries = t.Unique("country")
	}
	if years, ok := t.Numeric("year"); ok {
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, y := range years {
			if math.IsNaN(y) {
				continue
			}
			if y < lo {
				lo = y
			}
			if y > hi {
				hi = y
			}
		}
		if lo <= hi {
			info.YearRange = [2]int{int(lo), int(hi)}
		}
	}
	return info, nil
}

// Preview loads the table if necessary and returns up to n rows.
func (l *Loader) Preview(ctx context.Context, n int) ([][]string, error) {
	t, err := l.Load(ctx, false)
	if err != nil {
		return nil, err
	}
	return t.Head(n), nil
}
