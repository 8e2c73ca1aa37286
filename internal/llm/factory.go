package llm

import (
	"context"
	"fmt"
	"strings"

	"smart-store-agent/internal/config"
)

// Factory creates LLM clients with consistent logic
type Factory struct {
	GoogleAPIKey       string
	OpenaiAPIKey       string
	OpenaiBaseURL      string
	OpenRouterReferrer string
	OpenRouterTitle    string
	YandexOAuthToken   string
	YandexFolderID     string
}

func NewFactory(cfg *config.Config) *Factory {
	return &Factory{
		GoogleAPIKey:       cfg.GoogleAPIKey,
		OpenaiAPIKey:       cfg.OpenAIAPIKey,
		OpenaiBaseURL:      cfg.OpenAIBaseURL,
		OpenRouterReferrer: cfg.OpenRouterReferrer,
		OpenRouterTitle:    cfg.OpenRouterTitle,
		YandexOAuthToken:   cfg.YandexOAuthToken,
		YandexFolderID:     cfg.YandexFolderID,
	}
}

func (f *Factory) CreateClient(ctx context.Context, provider, model string) (Client, error) {
	switch config.LLMProvider(strings.ToLower(provider)) {
	case config.ProviderGemini:
		return NewGemini(ctx, f.GoogleAPIKey, model)
	case config.ProviderOpenAI:
		return NewOpenAI(f.OpenaiAPIKey, f.OpenaiBaseURL, model, f.OpenRouterReferrer, f.OpenRouterTitle), nil
	case config.ProviderYandex:
		return NewYandex(f.YandexOAuthToken, f.YandexFolderID)
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", provider)
	}
}
