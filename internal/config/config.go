package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config captures everything rowfinder needs to reach the backend.
type Config struct {
	APIURL           string
	PageSize         int
	RequestTimeout   time.Duration
	UploadTimeout    time.Duration
	SuggestDebounce  time.Duration
	ProgressInterval time.Duration
	LogFile          string
}

// MaxPageSize caps page_size from any source.
const MaxPageSize = 500

const (
	defaultConfigPath       = "~/.config/rowfinder/config.toml"
	defaultLogFile          = "~/.local/state/rowfinder/rowfinder.log"
	defaultAPIURL           = "http://127.0.0.1:8000"
	defaultPageSize         = 20
	defaultRequestTimeout   = 30 * time.Second
	defaultUploadTimeout    = 10 * time.Minute
	defaultSuggestDebounce  = 300 * time.Millisecond
	defaultProgressInterval = 500 * time.Millisecond
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		APIURL:           defaultAPIURL,
		PageSize:         defaultPageSize,
		RequestTimeout:   defaultRequestTimeout,
		UploadTimeout:    defaultUploadTimeout,
		SuggestDebounce:  defaultSuggestDebounce,
		ProgressInterval: defaultProgressInterval,
		LogFile:          mustExpand(defaultLogFile),
	}
}

// Load locates and parses the rowfinder config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		APIURL           string `toml:"api_url"`
		PageSize         int    `toml:"page_size"`
		RequestTimeout   string `toml:"request_timeout"`
		UploadTimeout    string `toml:"upload_timeout"`
		SuggestDebounce  string `toml:"suggest_debounce"`
		ProgressInterval string `toml:"progress_interval"`
		LogFile          string `toml:"log_file"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.APIURL); v != "" {
		cfg.APIURL = v
	}
	if raw.PageSize > 0 {
		cfg.PageSize = min(raw.PageSize, MaxPageSize)
	}

	durations := []struct {
		key   string
		value string
		dest  *time.Duration
	}{
		{"request_timeout", raw.RequestTimeout, &cfg.RequestTimeout},
		{"upload_timeout", raw.UploadTimeout, &cfg.UploadTimeout},
		{"suggest_debounce", raw.SuggestDebounce, &cfg.SuggestDebounce},
		{"progress_interval", raw.ProgressInterval, &cfg.ProgressInterval},
	}
	for _, d := range durations {
		if strings.TrimSpace(d.value) == "" {
			continue
		}
		parsed, err := time.ParseDuration(strings.TrimSpace(d.value))
		if err != nil {
			return Config{}, fmt.Errorf("parse config: %s: %w", d.key, err)
		}
		if parsed > 0 {
			*d.dest = parsed
		}
	}

	if v := strings.TrimSpace(raw.LogFile); v != "" {
		cfg.LogFile = mustExpand(v)
	}

	return cfg, nil
}

// WithAPIURL returns a copy of c pointing at url when url is non-empty.
func (c Config) WithAPIURL(url string) Config {
	if trimmed := strings.TrimSpace(url); trimmed != "" {
		c.APIURL = trimmed
	}
	return c
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
