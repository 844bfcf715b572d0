package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dtnitsch/integration-agent/pkg/llm"
	"github.com/dtnitsch/integration-agent/pkg/search"
)

// typeDetectionTemperature keeps classification answers short and stable.
const typeDetectionTemperature = 0.1

// TypeDetector classifies a service into an integration type from its
// documentation.
type TypeDetector struct {
	searcher  search.Searcher
	completer llm.Completer
	logger    *slog.Logger
}

func NewTypeDetector(searcher search.Searcher, completer llm.Completer, logger *slog.Logger) *TypeDetector {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &TypeDetector{searcher: searcher, completer: completer, logger: logger}
}

// DetermineType searches for the service's integration docs and asks the
// model for the primary integration type.
func (d *TypeDetector) DetermineType(ctx context.Context, name, action string) (string, error) {
	query := fmt.Sprintf("%s API integration documentation", name)
	hits, err := d.searcher.Search(ctx, query)
	if err != nil {
		return "", fmt.Errorf("searching %q: %w", query, err)
	}

	out, err := d.completer.Complete(ctx, llm.Request{
		System:      typeDetectionSystemPrompt,
		Prompt:      typeDetectionPrompt(name, action, hits),
		Temperature: llm.Temperature(typeDetectionTemperature),
	})
	if err != nil {
		return "", fmt.Errorf("determining integration type for %s: %w", name, err)
	}

	detected := strings.TrimSpace(out)
	d.logger.Debug("integration type detected", "name", name, "type", detected, "hits", len(hits))
	return detected, nil
}
