package common

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/dtnitsch/integration-agent/models"
	"github.com/dtnitsch/integration-agent/pkg/db"
	"github.com/dtnitsch/integration-agent/pkg/llm"
	"github.com/dtnitsch/integration-agent/pkg/ranking"
	"github.com/dtnitsch/integration-agent/pkg/search"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

// NewLogger builds the JSON stderr logger for a command. --quiet keeps only
// errors and --verbose adds debug output.
func NewLogger(c *cli.Context) *slog.Logger {
	level := slog.LevelInfo
	switch {
	case c.Bool("quiet"):
		level = slog.LevelError
	case c.Bool("verbose"):
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// LoadConfig reads .env (when present), the config file and the global
// flag overrides, then checks the settings need requires.
func LoadConfig(c *cli.Context, need models.Requirement) (*models.Config, error) {
	_ = godotenv.Load()

	cfg, err := models.LoadConfig(c.String("config"))
	if err != nil {
		return nil, err
	}
	if c.IsSet("db") {
		cfg.DBPath = c.String("db")
	}
	if c.IsSet("output-dir") {
		cfg.OutputDir = c.String("output-dir")
	}
	if c.IsSet("workers") && c.Int("workers") > 0 {
		cfg.Workers = c.Int("workers")
	}
	if err := cfg.Validate(need); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NewSearcher builds the Tavily client from cfg.
func NewSearcher(cfg *models.Config, logger *slog.Logger) (*search.TavilyClient, error) {
	return search.NewTavilyClient(cfg.Search, logger)
}

// NewCompleter builds the Gemini client from cfg.
func NewCompleter(ctx context.Context, cfg *models.Config, logger *slog.Logger) (*llm.GeminiClient, error) {
	return llm.NewGeminiClient(ctx, cfg.LLM, logger)
}

// OpenHistory opens the run history database. History is best effort, so
// callers log and continue when it is unavailable.
func OpenHistory(cfg *models.Config, logger *slog.Logger) *db.DB {
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		logger.Warn("run history unavailable", "path", cfg.DBPath, "error", err)
		return nil
	}
	return database
}

// WriteOutput prints v to w as YAML (default) or indented JSON.
func WriteOutput(w io.Writer, format string, v interface{}) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(format) {
	case "json":
		data, err = json.MarshalIndent(v, "", "  ")
		if err == nil {
			data = append(data, '\n')
		}
	case "", "yaml":
		data, err = yaml.Marshal(v)
	default:
		return fmt.Errorf("unknown output format %q (use yaml or json)", format)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// SplitList splits a comma-separated flag value, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

var (
	markdownLink = regexp.MustCompile(`^\[.*?\]\((https?://[^\)]+)\)$`)
	validURL     = regexp.MustCompile(`^https?://[a-zA-Z0-9][-a-zA-Z0-9.]*[a-zA-Z0-9](:\d+)?(/[^\s]*)?$`)
)

// SanitizeURL cleans common copy-paste damage: surrounding whitespace,
// markdown links, and stray leading or trailing punctuation.
func SanitizeURL(rawURL string) string {
	cleaned := strings.TrimSpace(rawURL)
	if m := markdownLink.FindStringSubmatch(cleaned); len(m) > 1 {
		cleaned = m[1]
	}
	cleaned = strings.TrimRight(cleaned, `,.)}]"'>;`)
	cleaned = strings.TrimLeft(cleaned, `([<"'`)
	return strings.TrimSpace(cleaned)
}

// SanitizeAndValidateURLs returns the cleaned http(s) URLs and, separately,
// the raw inputs that are still invalid after cleaning.
func SanitizeAndValidateURLs(urls []string) ([]string, []string) {
	valid := make([]string, 0, len(urls))
	var invalid []string

	for _, rawURL := range urls {
		cleaned := SanitizeURL(rawURL)
		if !isFetchableURL(cleaned) {
			invalid = append(invalid, rawURL)
			continue
		}
		valid = append(valid, cleaned)
	}
	return valid, invalid
}

func isFetchableURL(s string) bool {
	if s == "" || strings.Contains(s, " ") || !validURL.MatchString(s) {
		return false
	}
	parsed, err := url.Parse(s)
	if err != nil || parsed.Host == "" {
		return false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}
	return !strings.ContainsAny(parsed.Host, "{}[]<>\"'")
}

// SearchRecords converts ranked results into history rows.
func SearchRecords(results []ranking.SearchResult) []db.SearchRecord {
	records := make([]db.SearchRecord, 0, len(results))
	for _, r := range results {
		records = append(records, db.SearchRecord{
			URL:             r.URL(),
			Score:           r.RelevanceScore(),
			IsDocumentation: r.IsDocumentation(),
		})
	}
	return records
}
