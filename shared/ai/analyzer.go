package ai

import (
	"context"
	"fmt"

	"comment-insights/shared/config"
	"comment-insights/shared/logger"
	"comment-insights/shared/monitoring"

	"google.golang.org/genai"
)

// MentionAnalyzer asks a generative model which items the comments mention.
// Implementations return the raw reply, or "" when the model call fails or
// produces no text.
type MentionAnalyzer interface {
	AnalyzeComments(ctx context.Context, comments string) string
}

// New builds the analyzer for the configured provider.
func New(ctx context.Context, cfg *config.AIConfig) (MentionAnalyzer, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return NewOpenAIAnalyzer(cfg), nil
	case config.ProviderGemini, "":
		return NewGeminiAnalyzer(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
	}
}

// GeminiAnalyzer sends the extraction prompt to a Gemini model.
type GeminiAnalyzer struct {
	client  *genai.Client
	model   string
	subject string
}

// NewGeminiAnalyzer creates a Gemini API client. BaseURL, when set, replaces
// the default endpoint.
func NewGeminiAnalyzer(ctx context.Context, cfg *config.AIConfig) (*GeminiAnalyzer, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiAnalyzer{
		client:  client,
		model:   cfg.Model,
		subject: cfg.Subject,
	}, nil
}

// AnalyzeComments returns the model's raw reply, or "" on failure.
func (a *GeminiAnalyzer) AnalyzeComments(ctx context.Context, comments string) string {
	prompt := BuildMentionPrompt(a.subject, comments)

	result, err := a.client.Models.GenerateContent(ctx, a.model, genai.Text(prompt), nil)
	if err != nil {
		logger.Errorf("Error analyzing comments with %s: %v", a.model, err)
		monitoring.AnalyzerRequests.WithLabelValues(config.ProviderGemini, "error").Inc()
		return ""
	}

	text := result.Text()
	if text == "" {
		logger.Warnf("Empty response from %s, this could indicate content filtering or API issues", a.model)
		monitoring.AnalyzerRequests.WithLabelValues(config.ProviderGemini, "empty").Inc()
		return ""
	}

	monitoring.AnalyzerRequests.WithLabelValues(config.ProviderGemini, "ok").Inc()
	return text
}
