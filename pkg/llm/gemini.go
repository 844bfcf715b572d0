package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dtnitsch/integration-agent/models"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

const maxAttempts = 3

// GeminiClient is a thin wrapper around the official genai client.
type GeminiClient struct {
	cli         *genai.Client
	model       string
	temperature float32
	limiter     *rate.Limiter
	logger      *slog.Logger
}

func NewGeminiClient(ctx context.Context, cfg models.LLMConfig, logger *slog.Logger) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: %w", models.ErrMissingAPIKey)
	}
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	model := cfg.Model
	if model == "" {
		model = models.DefaultModel
	}
	temperature := models.DefaultTemperature
	if cfg.Temperature != nil {
		temperature = *cfg.Temperature
	}

	return &GeminiClient{
		cli:         cli,
		model:       model,
		temperature: temperature,
		limiter:     limiter,
		logger:      logger,
	}, nil
}

func (g *GeminiClient) Name() string { return "Gemini:" + g.model }

// Complete sends req and returns the concatenated text of the first
// candidate. Failed calls are retried with exponential backoff.
func (g *GeminiClient) Complete(ctx context.Context, req Request) (string, error) {
	temperature := g.temperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}
	config := &genai.GenerateContentConfig{Temperature: genai.Ptr(temperature)}
	if req.System != "" {
		config.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}

	g.logger.Debug("llm request", "model", g.model, "bytes", len(req.Prompt))

	text, err := retry(ctx, g.limiter, backoff, func() (string, error) {
		resp, err := g.cli.Models.GenerateContent(ctx, g.model, genai.Text(req.Prompt), config)
		if err != nil {
			return "", err
		}
		if text := responseText(resp); text != "" {
			return text, nil
		}
		return "", ErrEmptyResponse
	}, g.logger.With("model", g.model))
	if err != nil {
		return "", fmt.Errorf("gemini %s: %w", g.model, err)
	}
	return text, nil
}

// backoff is the wait after failed attempt n (zero based).
func backoff(attempt int) time.Duration {
	return time.Duration(300*(1<<attempt)) * time.Millisecond
}

// retry runs call up to maxAttempts times. There is no wait after the final
// attempt.
func retry(ctx context.Context, limiter *rate.Limiter, wait func(int) time.Duration, call func() (string, error), logger *slog.Logger) (string, error) {
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		// Each attempt consumes a token.
		if err := limiter.Wait(ctx); err != nil {
			return "", err
		}

		text, err := call()
		if err == nil {
			return text, nil
		}
		lastErr = err
		logger.Warn("llm request failed", "attempt", attempt+1, "error", err)

		if attempt == maxAttempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(wait(attempt)):
		}
	}
	return "", lastErr
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			b.WriteString(part.Text)
		}
	}
	return b.String()
}
