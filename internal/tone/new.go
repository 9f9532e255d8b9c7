package tone

import (
	"fmt"

	"github.com/jeanpaul/tonepad/internal/config"
	"github.com/jeanpaul/tonepad/internal/provider"
)

// New builds the Transformer selected by cfg.Backend.
func New(cfg config.ToneConfig) (Transformer, error) {
	switch cfg.Backend {
	case config.ToneHTTP, "":
		return NewHTTP(cfg.BaseURL, cfg.APIKey, cfg.Timeout), nil
	case config.ToneOpenAI:
		p := provider.NewOpenAI("openai", cfg.BaseURL, cfg.APIKey, cfg.Model)
		return NewLLM(provider.WithRetry(p, cfg.MaxRetries), cfg.Timeout), nil
	case config.ToneAnthropic:
		p := provider.NewAnthropic(cfg.APIKey, cfg.Model, cfg.BaseURL)
		return NewLLM(provider.WithRetry(p, cfg.MaxRetries), cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown tone backend %q", cfg.Backend)
	}
}
