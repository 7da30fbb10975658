package tutor

import (
	"context"
	"fmt"
	"sync"

	"github.com/kevinraymond/homeschool/internal/curriculum"
	"github.com/kevinraymond/homeschool/internal/llm"
)

// CloudTutor runs inference through a hosted model API.
type CloudTutor struct {
	engine
	cfg  Config
	opts options

	mu    sync.RWMutex
	ready bool
}

// NewCloudTutor creates a CloudTutor. The provider is built by Initialize.
func NewCloudTutor(cfg Config, opts ...Option) *CloudTutor {
	return &CloudTutor{
		engine: engine{
			backend:      ModelCloud,
			maxTokens:    cfg.CloudMaxTokens,
			hintTemp:     cfg.HintTemperature,
			feedbackTemp: cfg.FeedbackTemperature,
		},
		cfg:  cfg,
		opts: buildOptions(opts),
	}
}

// Initialize checks that credentials are present and builds the provider.
// No network call is made.
func (t *CloudTutor) Initialize(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	p := t.opts.cloudProvider
	if p == nil {
		if t.cfg.Cloud.Provider == "ollama" {
			return &InitializationError{Backend: ModelCloud, Err: fmt.Errorf("ollama is not a hosted provider")}
		}
		if err := t.cfg.Cloud.Validate(); err != nil {
			return &InitializationError{Backend: ModelCloud, Err: err}
		}
		base, err := llm.NewBaseProvider(ctx, t.cfg.Cloud)
		if err != nil {
			return &InitializationError{Backend: ModelCloud, Err: err}
		}
		p = base
	}

	t.provider = t.opts.decorate(p)
	t.ready = true
	return nil
}

func (t *CloudTutor) check() error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if !t.ready {
		return &NotInitializedError{Backend: ModelCloud}
	}
	return nil
}

func (t *CloudTutor) GenerateHint(ctx context.Context, tc Context, level int) (*Hint, error) {
	if err := t.check(); err != nil {
		return nil, err
	}
	h, err := t.hint(ctx, tc, level)
	if err != nil {
		return nil, &CloudInferenceError{Err: err}
	}
	return h, nil
}

func (t *CloudTutor) AssessAnswer(ctx context.Context, tc Context, answer string) (*Feedback, error) {
	if err := t.check(); err != nil {
		return nil, err
	}
	fb, err := t.assess(ctx, tc, answer)
	if err != nil {
		return nil, &CloudInferenceError{Err: err}
	}
	return fb, nil
}

func (t *CloudTutor) ExplainConcept(ctx context.Context, problem curriculum.Problem, studentAge int) (string, error) {
	if err := t.check(); err != nil {
		return "", err
	}
	s, err := t.explain(ctx, problem, studentAge)
	if err != nil {
		return "", &CloudInferenceError{Err: err}
	}
	return s, nil
}

func (t *CloudTutor) ModelInfo() ModelInfo {
	return ModelInfo{
		ModelType:      ModelCloud,
		ModelName:      t.modelName(),
		EstimatedSpeed: "fast",
	}
}

func (t *CloudTutor) modelName() string {
	if p := t.opts.cloudProvider; p != nil {
		return p.ModelID()
	}
	c := t.cfg.Cloud
	switch c.Provider {
	case "openai":
		return c.OpenAI.Model
	case "gemini":
		return c.Gemini.Model
	case "openrouter":
		return c.OpenRouter.Model
	case "anthropic":
		return c.Anthropic.Model
	default:
		return c.Provider
	}
}

func (t *CloudTutor) sealed() {}
