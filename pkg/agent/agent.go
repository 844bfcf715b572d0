// Package agent orchestrates documentation search, requirement analysis and
// integration code generation for a service.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dtnitsch/integration-agent/models"
	"github.com/dtnitsch/integration-agent/pkg/llm"
	"github.com/dtnitsch/integration-agent/pkg/parser"
	"github.com/dtnitsch/integration-agent/pkg/ranking"
	"github.com/dtnitsch/integration-agent/pkg/search"
)

var (
	ErrAllQueriesFailed = errors.New("all documentation queries failed")
	ErrNoFetcher        = errors.New("agent has no page fetcher")
)

// section maps a heading searched for in model output to its key in
// parsed_sections.
type section struct {
	key     string
	heading string
}

var analysisSections = []section{
	{"authentication", "authentication"},
	{"endpoints", "endpoints"},
	{"rate_limits", "rate limits"},
	{"dependencies", "dependencies"},
	{"challenges", "challenges"},
}

var generationSections = []section{
	{"setup", "setup"},
	{"authentication", "authentication"},
	{"main_code", "main integration"},
	{"error_handling", "error handling"},
	{"examples", "examples"},
	{"testing", "testing"},
}

// Status is the outcome of CreateIntegration.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Analysis is the model's requirement analysis split into named sections.
type Analysis struct {
	Raw      string            `json:"raw_analysis" yaml:"raw_analysis"`
	Sections map[string]string `json:"parsed_sections" yaml:"parsed_sections"`
}

// Dependencies returns the dependencies section, if any.
func (a Analysis) Dependencies() string {
	return a.Sections["dependencies"]
}

// Generation is the generated integration, split into sections and parsed
// for code blocks, metadata and requirements.
type Generation struct {
	Raw      string             `json:"raw_generation" yaml:"raw_generation"`
	Sections map[string]string  `json:"parsed_sections" yaml:"parsed_sections"`
	Parsed   llm.ParsedResponse `json:"parsed" yaml:"parsed"`
}

// Result is the outcome of one CreateIntegration run. On error, the fields
// of the stages that completed are still set.
type Result struct {
	Status        Status                    `json:"status" yaml:"status"`
	Error         string                    `json:"error,omitempty" yaml:"error,omitempty"`
	Request       models.IntegrationRequest `json:"request" yaml:"request"`
	Sources       []ranking.SearchResult    `json:"documentation_sources" yaml:"documentation_sources"`
	Analysis      *Analysis                 `json:"analysis,omitempty" yaml:"analysis,omitempty"`
	Integration   *Generation               `json:"integration,omitempty" yaml:"integration,omitempty"`
	FailedQueries int                       `json:"failed_queries" yaml:"failed_queries"`
	Failures      []ranking.QueryFailure    `json:"failures,omitempty" yaml:"failures,omitempty"`
}

// PageFetcher downloads a page body.
type PageFetcher interface {
	Fetch(ctx context.Context, pageURL string) (string, error)
}

// Agent runs the integration pipeline.
type Agent struct {
	ranker    *ranking.Ranker
	completer llm.Completer
	fetcher   PageFetcher
	parser    *parser.Parser
	logger    *slog.Logger
}

type Option func(*Agent)

func WithLogger(logger *slog.Logger) Option {
	return func(a *Agent) { a.logger = logger }
}

// WithFetcher enables ParseDocumentation.
func WithFetcher(f PageFetcher) Option {
	return func(a *Agent) { a.fetcher = f }
}

func New(searcher search.Searcher, completer llm.Completer, opts ...Option) *Agent {
	a := &Agent{
		completer: completer,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = slog.New(slog.DiscardHandler)
	}
	a.ranker = ranking.NewRanker(searcher, ranking.KeywordScorer{}, a.logger)
	a.parser = parser.NewParser(a.logger)
	return a
}

// DocumentationQueries returns the search queries used to find
// documentation for req, in order.
func DocumentationQueries(req models.IntegrationRequest) []string {
	return []string{
		fmt.Sprintf("%s %s documentation", req.ServiceName, req.IntegrationType),
		fmt.Sprintf("%s API reference %s", req.ServiceName, req.IntegrationType),
		fmt.Sprintf("%s developer guides %s", req.ServiceName, req.IntegrationType),
	}
}

// FindDocumentation searches and ranks documentation for req.
func (a *Agent) FindDocumentation(ctx context.Context, req models.IntegrationRequest) ranking.Ranking {
	rc := ranking.RequestContext{ServiceName: req.ServiceName, IntegrationType: req.IntegrationType}
	return a.ranker.Rank(ctx, DocumentationQueries(req), rc)
}

// AnalyzeRequirements asks the model to analyze req against the top results.
func (a *Agent) AnalyzeRequirements(ctx context.Context, req models.IntegrationRequest, results []ranking.SearchResult) (Analysis, error) {
	prompt, err := analysisPrompt(req, results)
	if err != nil {
		return Analysis{}, err
	}
	content, err := a.completer.Complete(ctx, llm.Request{System: systemPrompt, Prompt: prompt})
	if err != nil {
		return Analysis{}, fmt.Errorf("analyzing requirements: %w", err)
	}
	return Analysis{Raw: content, Sections: splitSections(content, analysisSections)}, nil
}

// GenerateIntegration asks the model for integration code based on analysis.
func (a *Agent) GenerateIntegration(ctx context.Context, req models.IntegrationRequest, analysis Analysis) (Generation, error) {
	prompt, err := generationPrompt(req, analysis)
	if err != nil {
		return Generation{}, err
	}
	content, err := a.completer.Complete(ctx, llm.Request{System: systemPrompt, Prompt: prompt})
	if err != nil {
		return Generation{}, fmt.Errorf("generating integration: %w", err)
	}
	return Generation{
		Raw:      content,
		Sections: splitSections(content, generationSections),
		Parsed:   llm.ParseResponse(content),
	}, nil
}

// CreateIntegration runs search, analysis and generation for req. Errors are
// reported in the Result rather than returned.
func (a *Agent) CreateIntegration(ctx context.Context, req models.IntegrationRequest) Result {
	result := Result{Status: StatusSuccess, Request: req}

	fail := func(err error) Result {
		a.logger.Error("integration creation failed", "service", req.ServiceName, "error", err)
		result.Status = StatusError
		result.Error = err.Error()
		return result
	}

	req, err := req.Normalize()
	if err != nil {
		return fail(err)
	}
	result.Request = req
	a.logger.Info("creating integration", "service", req.ServiceName, "type", req.IntegrationType)

	ranked := a.FindDocumentation(ctx, req)
	result.Sources = ranked.Results
	result.FailedQueries = ranked.FailedQueries()
	result.Failures = ranked.Failures
	if result.FailedQueries == len(DocumentationQueries(req)) {
		return fail(fmt.Errorf("%w: %s", ErrAllQueriesFailed, ranked.Failures[0].Error))
	}
	a.logger.Info("documentation found", "sources", len(ranked.Results), "failed_queries", result.FailedQueries)

	analysis, err := a.AnalyzeRequirements(ctx, req, ranked.Results)
	if err != nil {
		return fail(err)
	}
	result.Analysis = &analysis

	generation, err := a.GenerateIntegration(ctx, req, analysis)
	if err != nil {
		return fail(err)
	}
	result.Integration = &generation

	a.logger.Info("integration generated", "service", req.ServiceName, "code_blocks", len(generation.Parsed.CodeBlocks))
	return result
}

// ParseDocumentation fetches pageURL and extracts it.
func (a *Agent) ParseDocumentation(ctx context.Context, pageURL string) (*models.Documentation, error) {
	if a.fetcher == nil {
		return nil, ErrNoFetcher
	}
	html, err := a.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", pageURL, err)
	}
	return a.parser.ParseWithMetadata(pageURL, html)
}

func splitSections(content string, sections []section) map[string]string {
	headings := make([]string, len(sections))
	for i, s := range sections {
		headings[i] = s.heading
	}
	out := make(map[string]string, len(sections))
	for _, s := range sections {
		out[s.key] = llm.ExtractSection(content, s.heading, headings)
	}
	return out
}
