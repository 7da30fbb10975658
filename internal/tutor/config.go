package tutor

import (
	"fmt"
	"time"

	"github.com/kevinraymond/homeschool/internal/llm"
)

// Mode selects the tutor backend.
type Mode string

const (
	ModeAuto  Mode = "auto"
	ModeLocal Mode = "local"
	ModeCloud Mode = "cloud"
)

// Config configures the tutor factory and both backends.
type Config struct {
	Mode Mode

	// LocalOnly keeps all inference on the local server. A local failure is
	// returned instead of falling back to the cloud.
	LocalOnly bool

	Local LocalConfig

	// Cloud selects and configures the hosted provider. Cloud.Provider
	// must name a hosted provider (anthropic, openai, gemini, openrouter)
	// or "mock".
	Cloud llm.Config

	CloudMaxTokens int

	// HintTemperature applies to hints and explanations; FeedbackTemperature
	// to answer feedback.
	HintTemperature     float64
	FeedbackTemperature float64
}

// LocalConfig configures the local inference server.
type LocalConfig struct {
	BaseURL   string
	Model     string
	Timeout   time.Duration
	MaxTokens int
}

// DefaultConfig returns the auto-mode configuration with the default
// local server and Anthropic as the cloud provider.
func DefaultConfig() Config {
	cloud := llm.DefaultConfig()
	cloud.Provider = "anthropic"
	return Config{
		Mode: ModeAuto,
		Local: LocalConfig{
			BaseURL:   llm.DefaultOllamaURL,
			Model:     llm.DefaultOllamaModel,
			Timeout:   30 * time.Second,
			MaxTokens: 150,
		},
		Cloud:               cloud,
		CloudMaxTokens:      200,
		HintTemperature:     0.7,
		FeedbackTemperature: 0.3,
	}
}

// Validate checks the mode and sampling settings. Credentials are checked
// by the cloud backend's Initialize.
func (c Config) Validate() error {
	switch c.Mode {
	case ModeAuto, ModeLocal, ModeCloud:
	default:
		return fmt.Errorf("unknown tutor mode: %q", c.Mode)
	}
	if c.LocalOnly && c.Mode == ModeCloud {
		return fmt.Errorf("tutor mode %q conflicts with local-only privacy mode", c.Mode)
	}
	for name, t := range map[string]float64{"hint": c.HintTemperature, "feedback": c.FeedbackTemperature} {
		if t < 0 || t > 1 {
			return fmt.Errorf("%s temperature %v out of range 0-1", name, t)
		}
	}
	return nil
}

func (c Config) ollama() llm.OllamaConfig {
	return llm.OllamaConfig{BaseURL: c.Local.BaseURL, Model: c.Local.Model, Timeout: c.Local.Timeout}
}
