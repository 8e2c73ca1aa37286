package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
)

type LLMProvider string

const (
	ProviderGemini LLMProvider = "gemini"
	ProviderOpenAI LLMProvider = "openai"
	ProviderYandex LLMProvider = "yandex"
)

type Config struct {
	// LLM settings
	LLMProvider      LLMProvider `env:"LLM_PROVIDER" envDefault:"gemini"`
	GoogleAPIKey     string      `env:"GOOGLE_API_KEY"`
	GeminiModel      string      `env:"GEMINI_MODEL" envDefault:"gemini-1.5-flash"`
	OpenAIAPIKey     string      `env:"OPENAI_API_KEY"`
	OpenAIBaseURL    string      `env:"OPENAI_BASE_URL"`
	OpenAIModel      string      `env:"OPENAI_MODEL" envDefault:"gpt-3.5-turbo"`
	YandexOAuthToken string      `env:"YANDEX_OAUTH_TOKEN"`
	YandexFolderID   string      `env:"YANDEX_FOLDER_ID"`

	// OpenRouter (optional)
	OpenRouterReferrer string `env:"OPENROUTER_REFERRER"`
	OpenRouterTitle    string `env:"OPENROUTER_TITLE"`

	// Telegram
	TelegramBotToken string  `env:"TELEGRAM_BOT_TOKEN"`
	MessageParseMode string  `env:"MESSAGE_PARSE_MODE"`
	AllowedUsers     []int64 `env:"ALLOWED_USERS" envSeparator:":"`
	AdminUserID      int64   `env:"ADMIN_USER"`

	// HTTP
	HTTPAddr string `env:"HTTP_ADDR"`

	// Storage
	ProductsFilePath  string `env:"PRODUCTS_FILE_PATH" envDefault:"products.json"`
	LogFilePath       string `env:"LOG_FILE_PATH" envDefault:"logs/events.jsonl"`
	AllowlistFilePath string `env:"ALLOWLIST_FILE_PATH" envDefault:"data/allowlist.json"`

	// Reports
	ReportCron string `env:"REPORT_CRON" envDefault:"0 21 * * *"`

	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"60s"`
}

// Load parses the process environment into a Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// Validate checks that at least one chat front-end is enabled and that the
// selected provider has its credentials.
func (c *Config) Validate() error {
	if c.TelegramBotToken == "" && c.HTTPAddr == "" {
		return errors.New("neither TELEGRAM_BOT_TOKEN nor HTTP_ADDR is set")
	}
	switch c.LLMProvider {
	case ProviderGemini:
		if c.GoogleAPIKey == "" {
			return errors.New("GOOGLE_API_KEY is required for the gemini provider")
		}
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return errors.New("OPENAI_API_KEY is required for the openai provider")
		}
	case ProviderYandex:
		if c.YandexOAuthToken == "" || c.YandexFolderID == "" {
			return errors.New("YANDEX_OAUTH_TOKEN and YANDEX_FOLDER_ID are required for the yandex provider")
		}
	default:
		return fmt.Errorf("unknown llm provider: %s", c.LLMProvider)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout)
	}
	return nil
}

// Model returns the model name configured for the selected provider.
func (c *Config) Model() string {
	switch c.LLMProvider {
	case ProviderGemini:
		return c.GeminiModel
	case ProviderOpenAI:
		return c.OpenAIModel
	default:
		return ""
	}
}
