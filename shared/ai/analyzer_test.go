package ai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"comment-insights/shared/config"
)

const comments = "I want Hollow Knight\nmore Hollow Knight please\nCeleste too"

func TestBuildMentionPrompt(t *testing.T) {
	prompt := BuildMentionPrompt("video games", comments)

	assert.Contains(t, prompt, "Detect mentions of video games, even when they are misspelled")
	assert.Contains(t, prompt, "-Name (number of mentions)")
	assert.Contains(t, prompt, "Comments:\n"+comments+"\n")
	assert.True(t, strings.HasSuffix(prompt, "how many times each one was mentioned."))
}

// geminiServer fakes the generateContent endpoint and records the prompt it received.
func geminiServer(t *testing.T, status int, body string, gotPrompt *string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, ":generateContent") {
			http.NotFound(w, r)
			return
		}
		if gotPrompt != nil {
			var req struct {
				Contents []struct {
					Parts []struct {
						Text string `json:"text"`
					} `json:"parts"`
				} `json:"contents"`
			}
			data, _ := io.ReadAll(r.Body)
			if json.Unmarshal(data, &req) == nil && len(req.Contents) > 0 && len(req.Contents[0].Parts) > 0 {
				*gotPrompt = req.Contents[0].Parts[0].Text
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestGemini(t *testing.T, srv *httptest.Server) *GeminiAnalyzer {
	t.Helper()
	a, err := NewGeminiAnalyzer(context.Background(), &config.AIConfig{
		GeminiAPIKey: "test-key",
		BaseURL:      srv.URL + "/",
		Model:        "gemini-test",
		Subject:      "video games",
	})
	require.NoError(t, err)
	return a
}

func TestGeminiAnalyzeComments(t *testing.T) {
	var prompt string
	srv := geminiServer(t, http.StatusOK,
		`{"candidates":[{"content":{"role":"model","parts":[{"text":"-Hollow Knight (2)\n-Celeste (1)"}]},"finishReason":"STOP"}]}`,
		&prompt)

	got := newTestGemini(t, srv).AnalyzeComments(context.Background(), comments)

	assert.Equal(t, "-Hollow Knight (2)\n-Celeste (1)", got)
	assert.Contains(t, prompt, comments)
}

func TestGeminiAnalyzeCommentsFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"api error", http.StatusBadRequest, `{"error":{"code":400,"message":"bad request","status":"INVALID_ARGUMENT"}}`},
		{"no candidates", http.StatusOK, `{"candidates":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := geminiServer(t, tt.status, tt.body, nil)
			assert.Equal(t, "", newTestGemini(t, srv).AnalyzeComments(context.Background(), comments))
		})
	}
}

type mockChatCompleter struct {
	mock.Mock
}

func (m *mockChatCompleter) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(openai.ChatCompletionResponse), args.Error(1)
}

func TestOpenAIAnalyzeComments(t *testing.T) {
	m := &mockChatCompleter{}
	a := &OpenAIAnalyzer{client: m, model: "gpt-test", subject: "board games"}

	m.On("CreateChatCompletion", mock.Anything, mock.MatchedBy(func(req openai.ChatCompletionRequest) bool {
		return req.Model == "gpt-test" &&
			len(req.Messages) == 1 &&
			req.Messages[0].Role == openai.ChatMessageRoleUser &&
			strings.Contains(req.Messages[0].Content, "Detect mentions of board games") &&
			strings.Contains(req.Messages[0].Content, comments)
	})).Return(openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: "-Catan (3)"}},
		},
	}, nil)

	assert.Equal(t, "-Catan (3)", a.AnalyzeComments(context.Background(), comments))
	m.AssertExpectations(t)
}

func TestOpenAIAnalyzeCommentsFailures(t *testing.T) {
	t.Run("request error", func(t *testing.T) {
		m := &mockChatCompleter{}
		m.On("CreateChatCompletion", mock.Anything, mock.Anything).
			Return(openai.ChatCompletionResponse{}, errors.New("connection reset"))

		a := &OpenAIAnalyzer{client: m, model: "gpt-test", subject: "video games"}
		assert.Equal(t, "", a.AnalyzeComments(context.Background(), comments))
	})

	t.Run("no choices", func(t *testing.T) {
		m := &mockChatCompleter{}
		m.On("CreateChatCompletion", mock.Anything, mock.Anything).
			Return(openai.ChatCompletionResponse{}, nil)

		a := &OpenAIAnalyzer{client: m, model: "gpt-test", subject: "video games"}
		assert.Equal(t, "", a.AnalyzeComments(context.Background(), comments))
	})
}

func TestOpenAIAnalyzerBaseURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"-Hades (4)"},"finish_reason":"stop"}]}`)
	}))
	defer srv.Close()

	a := NewOpenAIAnalyzer(&config.AIConfig{
		OpenAIAPIKey:  "test-key",
		OpenAIBaseURL: srv.URL + "/v1",
		Model:         "gpt-test",
		Subject:       "video games",
	})

	assert.Equal(t, "-Hades (4)", a.AnalyzeComments(context.Background(), comments))
}

func TestNewSelectsProvider(t *testing.T) {
	a, err := New(context.Background(), &config.AIConfig{Provider: config.ProviderOpenAI, OpenAIAPIKey: "k", Model: "m"})
	require.NoError(t, err)
	assert.IsType(t, &OpenAIAnalyzer{}, a)

	a, err = New(context.Background(), &config.AIConfig{Provider: config.ProviderGemini, GeminiAPIKey: "k", Model: "m"})
	require.NoError(t, err)
	assert.IsType(t, &GeminiAnalyzer{}, a)

	_, err = New(context.Background(), &config.AIConfig{Provider: "llama"})
	assert.Error(t, err)
}
