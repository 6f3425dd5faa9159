package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

type Config struct {
	YouTube    YouTubeConfig    `yaml:"youtube"`
	AI         AIConfig         `yaml:"ai"`
	Run        RunConfig        `yaml:"run"`
	Ledger     LedgerConfig     `yaml:"ledger"`
	Logging    LoggingConfig    `yaml:"logging"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Schedule   string           `yaml:"schedule"`
}

type YouTubeConfig struct {
	APIKey       string `yaml:"api_key" env:"YOUTUBE_API_KEY"`
	ClientID     string `yaml:"client_id" env:"GOOGLE_CLIENT_ID"`
	ClientSecret string `yaml:"client_secret" env:"GOOGLE_CLIENT_SECRET"`
	TokenFile    string `yaml:"token_file"`
}

type AIConfig struct {
	Provider      string `yaml:"provider"`
	GeminiAPIKey  string `yaml:"gemini_api_key" env:"GEMINI_API_KEY"`
	OpenAIAPIKey  string `yaml:"openai_api_key" env:"OPENAI_API_KEY"`
	OpenAIBaseURL string `yaml:"openai_base_url"`
	// BaseURL overrides the Gemini endpoint, mostly for tests and proxies.
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
	Subject string `yaml:"subject"`
}

type RunConfig struct {
	VideoID        string   `yaml:"video_id" env:"VIDEO_ID"`
	MaxComments    int      `yaml:"max_comments"`
	PromptComments int      `yaml:"prompt_comments"`
	Queue          []string `yaml:"queue"`
}

type LedgerConfig struct {
	Path string `yaml:"path" env:"LEDGER_PATH"`
}

type LoggingConfig struct {
	Dir   string `yaml:"dir"`
	Level string `yaml:"level"`
}

type MonitoringConfig struct {
	HealthPort int `yaml:"health_port"`
}

// envFiles are loaded in order; variables already set are never overwritten.
var envFiles = []string{".env", "api_key_youtube.env", "api_key_gemini.env"}

func Load() (*Config, error) {
	for _, f := range envFiles {
		_ = godotenv.Load(f)
	}

	configFile := os.Getenv("CONFIG_FILE")
	explicit := configFile != ""
	if !explicit {
		configFile = "config.yaml"
	}

	var cfg Config
	data, err := os.ReadFile(configFile)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", configFile, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// env-only run
	default:
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyEnv() {
	if c.YouTube.APIKey == "" {
		c.YouTube.APIKey = os.Getenv("YOUTUBE_API_KEY")
	}
	if c.YouTube.ClientID == "" {
		c.YouTube.ClientID = os.Getenv("GOOGLE_CLIENT_ID")
	}
	if c.YouTube.ClientSecret == "" {
		c.YouTube.ClientSecret = os.Getenv("GOOGLE_CLIENT_SECRET")
	}
	if c.AI.GeminiAPIKey == "" {
		c.AI.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}
	if c.AI.OpenAIAPIKey == "" {
		c.AI.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	}
	// Explicit env wins for the per-run knobs so a single video can be
	// processed without editing config.yaml.
	if v := os.Getenv("VIDEO_ID"); v != "" {
		c.Run.VideoID = v
	}
	if v := os.Getenv("LEDGER_PATH"); v != "" {
		c.Ledger.Path = v
	}
}

func (c *Config) applyDefaults() {
	if c.AI.Provider == "" {
		c.AI.Provider = ProviderGemini
	}
	if c.AI.Model == "" {
		if c.AI.Provider == ProviderOpenAI {
			c.AI.Model = "gpt-4o-mini"
		} else {
			c.AI.Model = "gemini-2.5-flash"
		}
	}
	if c.AI.Subject == "" {
		c.AI.Subject = "video games"
	}
	if c.Run.VideoID == "" {
		c.Run.VideoID = "mm8c6kKK40c"
	}
	if c.Run.MaxComments <= 0 {
		c.Run.MaxComments = 200
	}
	if c.Run.PromptComments <= 0 {
		c.Run.PromptComments = 30
	}
	if c.Ledger.Path == "" {
		c.Ledger.Path = "mention_ledger.csv"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Monitoring.HealthPort == 0 {
		c.Monitoring.HealthPort = 8080
	}
	if c.Schedule == "" {
		c.Schedule = "@hourly"
	}
}

// Queue returns the videos the scheduler walks through. A config without an
// explicit queue processes the single configured video.
func (c *Config) Queue() []string {
	if len(c.Run.Queue) > 0 {
		return c.Run.Queue
	}
	return []string{c.Run.VideoID}
}

func (c *Config) validate() error {
	if c.YouTube.APIKey == "" && c.YouTube.TokenFile == "" {
		return fmt.Errorf("YouTube credentials are required (set YOUTUBE_API_KEY, youtube.api_key or youtube.token_file)")
	}
	if c.YouTube.APIKey == "" && (c.YouTube.ClientID == "" || c.YouTube.ClientSecret == "") {
		return fmt.Errorf("YouTube OAuth requires client_id and client_secret alongside token_file")
	}
	switch c.AI.Provider {
	case ProviderGemini:
		if c.AI.GeminiAPIKey == "" {
			return fmt.Errorf("Gemini API key is required (set GEMINI_API_KEY or ai.gemini_api_key)")
		}
	case ProviderOpenAI:
		if c.AI.OpenAIAPIKey == "" {
			return fmt.Errorf("OpenAI API key is required (set OPENAI_API_KEY or ai.openai_api_key)")
		}
	default:
		return fmt.Errorf("unknown ai.provider %q (expected %q or %q)", c.AI.Provider, ProviderGemini, ProviderOpenAI)
	}
	return nil
}
