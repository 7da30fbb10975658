package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/kevinraymond/homeschool/internal/logger"
	"github.com/kevinraymond/homeschool/internal/store"
)

// Options carries the optional collaborators wrapped around a provider.
type Options struct {
	EventRepo store.EventRepo
	Logger    *logger.Logger
	Cache     Cache
	CacheTTL  time.Duration
}

// NewBaseProvider creates the undecorated Provider selected by cfg.Provider.
func NewBaseProvider(ctx context.Context, cfg Config) (Provider, error) {
	var base Provider
	var err error

	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "ollama":
		base = NewOllamaProvider(cfg.Ollama)
	case "mock":
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}
	return base, nil
}

// NewProvider creates the configured Provider wrapped with deadline, retry,
// cache and logging middleware.
func NewProvider(ctx context.Context, cfg Config, opts Options) (Provider, error) {
	base, err := NewBaseProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if _, ok := base.(*MockProvider); ok {
		return base, nil
	}

	// caller → deadline → retry → cache → logging → base
	p := WithLogging(base, opts.EventRepo, opts.Logger)
	p = WithCache(p, opts.Cache, opts.CacheTTL)
	if cfg.Retry.MaxAttempts > 1 {
		p = WithRetry(p, cfg.Retry)
	}
	return WithDeadline(p, cfg.Timeout), nil
}
