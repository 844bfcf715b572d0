// Package models defines data structures for configuration, requests and
// extracted documentation.
package models

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "config.yaml"
	DefaultOutputDir  = "integrations"
	DefaultDBPath     = "integration-agent.db"
	DefaultCacheDir   = ".cache/pages"
	DefaultModel      = "gemini-2.5-flash"
	DefaultSheetRange = "A1:D100"
)

// DefaultTemperature is used when the config file does not set llm.temperature.
const DefaultTemperature float32 = 0.5

// ErrMissingAPIKey is returned by Validate when a credential a command needs is unset.
var ErrMissingAPIKey = errors.New("missing API key")

// SearchConfig is passed through to the search provider unmodified.
type SearchConfig struct {
	SearchDepth    string   `yaml:"search_depth" json:"search_depth"`
	MaxResults     int      `yaml:"max_results" json:"max_results"`
	IncludeDomains []string `yaml:"include_domains" json:"include_domains"`
	ExcludeDomains []string `yaml:"exclude_domains" json:"exclude_domains"`
	APIKey         string   `yaml:"api_key" json:"-"`
}

// WithDefaults returns a copy with unset options filled in.
func (c SearchConfig) WithDefaults() SearchConfig {
	if c.SearchDepth == "" {
		c.SearchDepth = "advanced"
	}
	if c.MaxResults <= 0 {
		c.MaxResults = 5
	}
	if c.IncludeDomains == nil {
		c.IncludeDomains = []string{".io", ".com", ".dev", ".org"}
	}
	if c.ExcludeDomains == nil {
		c.ExcludeDomains = []string{}
	}
	return c
}

// LLMConfig configures the text-completion provider.
type LLMConfig struct {
	Model             string   `yaml:"model"`
	Temperature       *float32 `yaml:"temperature"` // nil means DefaultTemperature
	RequestsPerSecond float64  `yaml:"requests_per_second"`
	Burst             int      `yaml:"burst"`
	APIKey            string   `yaml:"api_key"`
}

// SheetsConfig locates the spreadsheet used by the batch workflows.
type SheetsConfig struct {
	SpreadsheetID string `yaml:"spreadsheet_id"`
	Range         string `yaml:"range"`
	ClientID      string `yaml:"client_id"`
	ClientSecret  string `yaml:"client_secret"`
	RefreshToken  string `yaml:"refresh_token"`
}

// Config holds runtime configuration. Values come from config.yaml, then the
// environment, then CLI flags.
type Config struct {
	Search    SearchConfig  `yaml:"search"`
	LLM       LLMConfig     `yaml:"llm"`
	Sheets    SheetsConfig  `yaml:"sheets"`
	OutputDir string        `yaml:"output_dir"`
	DBPath    string        `yaml:"db_path"`
	CacheDir  string        `yaml:"cache_dir"`
	CacheTTL  time.Duration `yaml:"cache_ttl"`
	Workers   int           `yaml:"workers"`
}

// LoadConfig reads a YAML config file. A missing file is not an error; the
// defaults and environment are used instead.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	if path == "" {
		path = DefaultConfigPath
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

// applyEnv overrides file values with the environment variables that are set.
// GEMINI_API_KEY wins over GOOGLE_API_KEY.
func (c *Config) applyEnv() {
	setFromEnv(&c.Search.APIKey, "TAVILY_API_KEY")
	setFromEnv(&c.LLM.APIKey, "GOOGLE_API_KEY")
	setFromEnv(&c.LLM.APIKey, "GEMINI_API_KEY")
	setFromEnv(&c.Sheets.SpreadsheetID, "SPREADSHEET_ID")
	setFromEnv(&c.Sheets.ClientID, "GOOGLE_CLIENT_ID")
	setFromEnv(&c.Sheets.ClientSecret, "GOOGLE_CLIENT_SECRET")
	setFromEnv(&c.Sheets.RefreshToken, "GOOGLE_REFRESH_TOKEN")
}

func (c *Config) applyDefaults() {
	c.Search = c.Search.WithDefaults()
	setIfEmpty(&c.LLM.Model, DefaultModel)
	setIfEmpty(&c.OutputDir, DefaultOutputDir)
	setIfEmpty(&c.DBPath, DefaultDBPath)
	setIfEmpty(&c.CacheDir, DefaultCacheDir)
	setIfEmpty(&c.Sheets.Range, DefaultSheetRange)
	if c.LLM.Temperature == nil {
		t := DefaultTemperature
		c.LLM.Temperature = &t
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = 24 * time.Hour
	}
	if c.Workers <= 0 {
		c.Workers = 3
	}
}

// Requirement names a credential a command needs.
type Requirement int

const (
	NeedSearch Requirement = 1 << iota
	NeedLLM
	NeedSheets
)

// Validate checks that the credentials named by need are present.
func (c *Config) Validate(need Requirement) error {
	if need&NeedSearch != 0 && c.Search.APIKey == "" {
		return fmt.Errorf("%w: set TAVILY_API_KEY", ErrMissingAPIKey)
	}
	if need&NeedLLM != 0 && c.LLM.APIKey == "" {
		return fmt.Errorf("%w: set GEMINI_API_KEY", ErrMissingAPIKey)
	}
	if need&NeedSheets != 0 {
		if c.Sheets.SpreadsheetID == "" {
			return fmt.Errorf("%w: set SPREADSHEET_ID", ErrMissingAPIKey)
		}
		if c.Sheets.ClientID == "" || c.Sheets.ClientSecret == "" || c.Sheets.RefreshToken == "" {
			return fmt.Errorf("%w: set GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET and GOOGLE_REFRESH_TOKEN", ErrMissingAPIKey)
		}
	}
	return nil
}

func setFromEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setIfEmpty(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}
