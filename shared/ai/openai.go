package ai

import (
	"context"

	"comment-insights/shared/config"
	"comment-insights/shared/logger"
	"comment-insights/shared/monitoring"

	"github.com/sashabaranov/go-openai"
)

// chatCompleter is the slice of the go-openai client the analyzer uses.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIAnalyzer talks to any OpenAI-compatible chat completion endpoint.
type OpenAIAnalyzer struct {
	client  chatCompleter
	model   string
	subject string
}

// NewOpenAIAnalyzer uses OpenAIBaseURL when set, api.openai.com otherwise.
func NewOpenAIAnalyzer(cfg *config.AIConfig) *OpenAIAnalyzer {
	clientCfg := openai.DefaultConfig(cfg.OpenAIAPIKey)
	if cfg.OpenAIBaseURL != "" {
		clientCfg.BaseURL = cfg.OpenAIBaseURL
	}

	return &OpenAIAnalyzer{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   cfg.Model,
		subject: cfg.Subject,
	}
}

// AnalyzeComments returns the first choice's content, or "" on failure.
func (a *OpenAIAnalyzer) AnalyzeComments(ctx context.Context, comments string) string {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: BuildMentionPrompt(a.subject, comments)},
		},
	})
	if err != nil {
		logger.Errorf("Error analyzing comments with %s: %v", a.model, err)
		monitoring.AnalyzerRequests.WithLabelValues(config.ProviderOpenAI, "error").Inc()
		return ""
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		logger.Warnf("Empty response from %s", a.model)
		monitoring.AnalyzerRequests.WithLabelValues(config.ProviderOpenAI, "empty").Inc()
		return ""
	}

	monitoring.AnalyzerRequests.WithLabelValues(config.ProviderOpenAI, "ok").Inc()
	return resp.Choices[0].Message.Content
}
