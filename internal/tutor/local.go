package tutor

import (
	"context"
	"sync/atomic"

	"github.com/kevinraymond/homeschool/internal/curriculum"
	"github.com/kevinraymond/homeschool/internal/llm"
)

const startServerHint = "start the local inference server with `ollama serve`"

// LocalTutor runs inference on a local Ollama server.
type LocalTutor struct {
	engine
	server *llm.OllamaProvider
	model  string
	ready  atomic.Bool
}

// NewLocalTutor creates a LocalTutor. It is unusable until Initialize
// succeeds.
func NewLocalTutor(cfg Config, opts ...Option) *LocalTutor {
	o := buildOptions(opts)
	server := llm.NewOllamaProvider(cfg.ollama())
	return &LocalTutor{
		engine: engine{
			backend:      ModelLocal,
			provider:     o.decorate(server),
			maxTokens:    cfg.Local.MaxTokens,
			hintTemp:     cfg.HintTemperature,
			feedbackTemp: cfg.FeedbackTemperature,
		},
		server: server,
		model:  server.ModelID(),
	}
}

// Initialize probes the server with a five second health check.
func (t *LocalTutor) Initialize(ctx context.Context) error {
	if err := t.server.HealthCheck(ctx); err != nil {
		return &InitializationError{Backend: ModelLocal, Hint: startServerHint, Err: err}
	}
	t.ready.Store(true)
	return nil
}

// Ready reports whether Initialize has succeeded.
func (t *LocalTutor) Ready() bool { return t.ready.Load() }

func (t *LocalTutor) GenerateHint(ctx context.Context, tc Context, level int) (*Hint, error) {
	if !t.Ready() {
		return nil, &NotInitializedError{Backend: ModelLocal}
	}
	return t.hint(ctx, tc, level)
}

func (t *LocalTutor) AssessAnswer(ctx context.Context, tc Context, answer string) (*Feedback, error) {
	if !t.Ready() {
		return nil, &NotInitializedError{Backend: ModelLocal}
	}
	return t.assess(ctx, tc, answer)
}

func (t *LocalTutor) ExplainConcept(ctx context.Context, problem curriculum.Problem, studentAge int) (string, error) {
	if !t.Ready() {
		return "", &NotInitializedError{Backend: ModelLocal}
	}
	return t.explain(ctx, problem, studentAge)
}

func (t *LocalTutor) ModelInfo() ModelInfo {
	return ModelInfo{
		ModelType:      ModelLocal,
		ModelName:      t.model,
		ModelSize:      "1B",
		EstimatedSpeed: "medium",
	}
}

func (t *LocalTutor) sealed() {}
