package advice

import (
	"context"
	"fmt"
	"strings"

	"pocketledger/internal/advice/gemini"
	"pocketledger/internal/advice/openai"
)

// ProviderConfig selects and configures a provider.
type ProviderConfig struct {
	Name          string // gemini, openai or none
	GeminiAPIKey  string
	GeminiModel   string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string
}

// NewProvider builds the configured provider. A missing API key is not an
// error here: the returned provider reports ErrNotConfigured on use, so the
// rest of the application keeps working without advice.
func NewProvider(ctx context.Context, cfg ProviderConfig) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Name)) {
	case "gemini", "":
		if strings.TrimSpace(cfg.GeminiAPIKey) == "" {
			return Unconfigured("gemini"), nil
		}
		return gemini.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	case "openai":
		if strings.TrimSpace(cfg.OpenAIAPIKey) == "" {
			return Unconfigured("openai"), nil
		}
		return openai.New(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
	case "none":
		return Unconfigured("none"), nil
	default:
		return nil, fmt.Errorf("unknown advice provider %q", cfg.Name)
	}
}
