package tutor

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kevinraymond/homeschool/internal/curriculum"
	"github.com/kevinraymond/homeschool/internal/llm"
	"github.com/kevinraymond/homeschool/internal/logger"
)

func testContext() Context {
	return Context{
		Problem: curriculum.Problem{
			ID:            "add-1",
			Type:          "addition",
			Question:      "What is 5 + 3?",
			Options:       []string{"6", "7", "8", "9"},
			CorrectAnswer: "8",
			Difficulty:    0.5,
		},
		StudentAge:   8,
		StudentGrade: 3,
		Topic:        "addition",
	}
}

// fakeOllama records generate requests and answers with reply.
type fakeOllama struct {
	mu       sync.Mutex
	requests []map[string]any
	reply    string
	healthy  bool
}

func (f *fakeOllama) handler(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/api/tags":
		if !f.healthy {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"models":[{"name":"llama3.2:1b"}]}`))
	case "/api/generate":
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		f.requests = append(f.requests, body)
		f.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]any{"model": "llama3.2:1b", "response": f.reply, "done": true})
	default:
		http.NotFound(w, r)
	}
}

func localConfig(t *testing.T, f *fakeOllama) Config {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(f.handler))
	t.Cleanup(server.Close)
	cfg := DefaultConfig()
	cfg.Local.BaseURL = server.URL
	cfg.Local.Timeout = 2 * time.Second
	return cfg
}

func unreachableURL(t *testing.T) string {
	t.Helper()
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()
	return url
}

func TestLocalTutor_NotInitialized(t *testing.T) {
	tutor := NewLocalTutor(DefaultConfig())
	ctx := context.Background()

	var notInit *NotInitializedError
	_, err := tutor.GenerateHint(ctx, testContext(), 1)
	assert.ErrorAs(t, err, &notInit)
	_, err = tutor.AssessAnswer(ctx, testContext(), "8")
	assert.ErrorAs(t, err, &notInit)
	_, err = tutor.ExplainConcept(ctx, testContext().Problem, 8)
	assert.ErrorAs(t, err, &notInit)
}

func TestLocalTutor_Hint(t *testing.T) {
	f := &fakeOllama{healthy: true, reply: "  What happens if you count up 3 from 5?  "}
	tutor := NewLocalTutor(localConfig(t, f))
	require.NoError(t, tutor.Initialize(context.Background()))

	hint, err := tutor.GenerateHint(context.Background(), testContext(), 7)
	require.NoError(t, err)
	assert.Equal(t, "What happens if you count up 3 from 5?", hint.Text)
	assert.Equal(t, 3, hint.Level, "level is clamped")

	require.Len(t, f.requests, 1)
	req := f.requests[0]
	assert.Equal(t, "llama3.2:1b", req["model"])
	assert.Equal(t, false, req["stream"])
	assert.Contains(t, req["prompt"], "almost show them the answer")
	opts := req["options"].(map[string]any)
	assert.Equal(t, 0.7, opts["temperature"])
	assert.Equal(t, float64(150), opts["num_predict"])
}

func TestLocalTutor_AssessAnswer(t *testing.T) {
	f := &fakeOllama{healthy: true, reply: "Good try! Count again."}
	tutor := NewLocalTutor(localConfig(t, f))
	require.NoError(t, tutor.Initialize(context.Background()))

	fb, err := tutor.AssessAnswer(context.Background(), testContext(), " 7 ")
	require.NoError(t, err)
	assert.False(t, fb.IsCorrect)
	assert.Equal(t, NextRetry, fb.NextAction)
	assert.Equal(t, "💪 Keep trying!", fb.Encouragement)
	assert.Equal(t, "Good try! Count again.", fb.Text)

	opts := f.requests[0]["options"].(map[string]any)
	assert.Equal(t, 0.3, opts["temperature"])
	assert.Contains(t, f.requests[0]["prompt"], "This is incorrect.")

	fb, err = tutor.AssessAnswer(context.Background(), testContext(), "8")
	require.NoError(t, err)
	assert.True(t, fb.IsCorrect)
	assert.Equal(t, NextContinue, fb.NextAction)
	assert.Equal(t, "🎉 Great job!", fb.Encouragement)
}

func TestLocalTutor_CorrectnessIsLocal(t *testing.T) {
	// The model claiming otherwise never changes IsCorrect.
	f := &fakeOllama{healthy: true, reply: "That is wrong."}
	tutor := NewLocalTutor(localConfig(t, f))
	require.NoError(t, tutor.Initialize(context.Background()))

	ctx := testContext()
	ctx.Problem.CorrectAnswer = "Three Quarters"
	fb, err := tutor.AssessAnswer(context.Background(), ctx, "three   quarters")
	require.NoError(t, err)
	assert.True(t, fb.IsCorrect)
}

func TestLocalTutor_Explain(t *testing.T) {
	f := &fakeOllama{healthy: true, reply: "Imagine 5 apples and 3 more."}
	tutor := NewLocalTutor(localConfig(t, f))
	require.NoError(t, tutor.Initialize(context.Background()))

	text, err := tutor.ExplainConcept(context.Background(), testContext().Problem, 6)
	require.NoError(t, err)
	assert.Equal(t, "Imagine 5 apples and 3 more.", text)
	assert.Contains(t, f.requests[0]["prompt"], "6-year-old")
}

func TestLocalTutor_InitializeFailure(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Local.BaseURL = unreachableURL(t)
	tutor := NewLocalTutor(cfg)

	err := tutor.Initialize(context.Background())
	var initErr *InitializationError
	require.ErrorAs(t, err, &initErr)
	assert.Equal(t, ModelLocal, initErr.Backend)
	assert.Contains(t, err.Error(), "ollama serve")
	var conn *llm.ErrConnection
	assert.ErrorAs(t, err, &conn)
	assert.False(t, tutor.Ready())
}

func TestLocalTutor_BackendErrorPropagates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/tags" {
			w.Write([]byte(`{}`))
			return
		}
		http.Error(w, "model missing", http.StatusNotFound)
	}))
	t.Cleanup(server.Close)
	cfg := DefaultConfig()
	cfg.Local.BaseURL = server.URL

	tutor := NewLocalTutor(cfg)
	require.NoError(t, tutor.Initialize(context.Background()))
	_, err := tutor.GenerateHint(context.Background(), testContext(), 1)
	var apiErr *llm.ErrBackendAPI
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}

func TestLocalTutor_ModelInfo(t *testing.T) {
	info := NewLocalTutor(DefaultConfig()).ModelInfo()
	assert.Equal(t, ModelInfo{ModelType: ModelLocal, ModelName: "llama3.2:1b", ModelSize: "1B", EstimatedSpeed: "medium"}, info)
}

func TestCloudTutor_Flow(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Content: json.RawMessage("What do you get when you add 3 more?")},
		llm.MockResponse{Content: json.RawMessage("Fantastic! 5 + 3 is 8.")},
		llm.MockResponse{Content: json.RawMessage("Five toy cars plus three more makes eight.")},
	)
	tutor := NewCloudTutor(DefaultConfig(), WithCloudProvider(mock))

	_, err := tutor.GenerateHint(context.Background(), testContext(), 1)
	var notInit *NotInitializedError
	require.ErrorAs(t, err, &notInit)

	require.NoError(t, tutor.Initialize(context.Background()))

	hint, err := tutor.GenerateHint(context.Background(), testContext(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, hint.Level)

	fb, err := tutor.AssessAnswer(context.Background(), testContext(), "8")
	require.NoError(t, err)
	assert.True(t, fb.IsCorrect)

	text, err := tutor.ExplainConcept(context.Background(), testContext().Problem, 8)
	require.NoError(t, err)
	assert.Equal(t, "Five toy cars plus three more makes eight.", text)

	require.Equal(t, 3, mock.CallCount())
	assert.Equal(t, 0.7, mock.Calls[0].Temperature)
	assert.Equal(t, 0.3, mock.Calls[1].Temperature)
	assert.Equal(t, 0.7, mock.Calls[2].Temperature)
	for _, c := range mock.Calls {
		assert.Equal(t, 200, c.MaxTokens)
		assert.Nil(t, c.Schema)
		require.Len(t, c.Messages, 1)
		assert.Equal(t, llm.RoleUser, c.Messages[0].Role)
	}
	assert.True(t, strings.HasPrefix(mock.Calls[1].Messages[0].Content, "You are a tutor for a 8-year-old."))
}

func TestCloudTutor_ErrorsWrapped(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrRateLimit{Err: errors.New("slow down")}})
	tutor := NewCloudTutor(DefaultConfig(), WithCloudProvider(mock))
	require.NoError(t, tutor.Initialize(context.Background()))

	_, err := tutor.GenerateHint(context.Background(), testContext(), 2)
	var cloudErr *CloudInferenceError
	require.ErrorAs(t, err, &cloudErr)
	var rl *llm.ErrRateLimit
	assert.ErrorAs(t, err, &rl)
	assert.Equal(t, 1, mock.CallCount(), "cloud calls are not retried")
}

func TestCloudTutor_InitializeRequiresCredentials(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Cloud.Anthropic.APIKey = ""
	err := NewCloudTutor(cfg).Initialize(context.Background())
	var initErr *InitializationError
	require.ErrorAs(t, err, &initErr)
	assert.Equal(t, ModelCloud, initErr.Backend)

	cfg.Cloud.Anthropic.APIKey = "sk-test"
	assert.NoError(t, NewCloudTutor(cfg).Initialize(context.Background()))
}

func TestCloudTutor_ModelInfo(t *testing.T) {
	info := NewCloudTutor(DefaultConfig()).ModelInfo()
	assert.Equal(t, ModelCloud, info.ModelType)
	assert.Equal(t, "claude-3-haiku", info.ModelName)
	assert.Equal(t, "fast", info.EstimatedSpeed)
	assert.Empty(t, info.ModelSize)
}

func observed() (*logger.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return &logger.Logger{SugaredLogger: zap.New(core).Sugar()}, logs
}

func TestNew_AutoFallsBackToCloud(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Local.BaseURL = unreachableURL(t)
	log, logs := observed()

	tutor, err := New(context.Background(), cfg, WithCloudProvider(llm.NewMockProvider()), WithLogger(log))
	require.NoError(t, err)
	assert.Equal(t, ModelCloud, tutor.ModelInfo().ModelType)
	assert.Equal(t, 1, logs.FilterMessage("using cloud tutor (local not available)").Len())
}

func TestNew_LocalModeWarnsOnFallback(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Mode = ModeLocal
	cfg.Local.BaseURL = unreachableURL(t)
	log, logs := observed()

	tutor, err := New(context.Background(), cfg, WithCloudProvider(llm.NewMockProvider()), WithLogger(log))
	require.NoError(t, err)
	assert.Equal(t, ModelCloud, tutor.ModelInfo().ModelType)

	warnings := logs.FilterMessage("local tutor failed, falling back to cloud").All()
	require.Len(t, warnings, 1)
	assert.Equal(t, zap.WarnLevel, warnings[0].Level)
}

func TestNew_PrefersHealthyLocal(t *testing.T) {
	f := &fakeOllama{healthy: true}
	cfg := localConfig(t, f)
	mock := llm.NewMockProvider()

	tutor, err := New(context.Background(), cfg, WithCloudProvider(mock))
	require.NoError(t, err)
	assert.Equal(t, ModelLocal, tutor.ModelInfo().ModelType)
	assert.Equal(t, 0, mock.CallCount())
}

func TestNew_CloudModeIgnoresLocal(t *testing.T) {
	f := &fakeOllama{healthy: true}
	cfg := localConfig(t, f)
	cfg.Mode = ModeCloud

	tutor, err := New(context.Background(), cfg, WithCloudProvider(llm.NewMockProvider()))
	require.NoError(t, err)
	assert.Equal(t, ModelCloud, tutor.ModelInfo().ModelType)
}

func TestNew_CloudFailurePropagates(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Mode = ModeCloud
	cfg.Cloud.Anthropic.APIKey = ""

	_, err := New(context.Background(), cfg)
	var initErr *InitializationError
	require.ErrorAs(t, err, &initErr)
	assert.Equal(t, ModelCloud, initErr.Backend)
}

func TestNew_LocalOnlyNeverFallsBack(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LocalOnly = true
	cfg.Local.BaseURL = unreachableURL(t)

	_, err := New(context.Background(), cfg, WithCloudProvider(llm.NewMockProvider()))
	var initErr *InitializationError
	require.ErrorAs(t, err, &initErr)
	assert.Equal(t, ModelLocal, initErr.Backend)
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.Mode = "turbo"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Mode = ModeCloud
	cfg.LocalOnly = true
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.HintTemperature = 1.5
	assert.Error(t, cfg.Validate())
}

func TestFallbackHint(t *testing.T) {
	p := testContext().Problem
	assert.Equal(t, "Think about what the question is asking. Break it down step by step!", FallbackHint(p, 1).Text)
	assert.Contains(t, FallbackHint(p, 2).Text, "drawing a picture")
	assert.Equal(t, "The answer is close to 8. Can you figure out the exact number?", FallbackHint(p, 3).Text)
	assert.Equal(t, 1, FallbackHint(p, 0).Level)
	assert.Equal(t, 3, FallbackHint(p, 5).Level)
}

func TestEncouragement(t *testing.T) {
	assert.Equal(t, "🌟 Excellent! You got it on your own!", Encouragement(true, 0))
	assert.Equal(t, "👍 Great job! Nice problem solving!", Encouragement(true, 1))
	assert.Equal(t, "✨ You did it! Keep practicing!", Encouragement(true, 3))
	assert.Contains(t, Encouragement(false, 0), "Not quite")
}

func TestHintLabel(t *testing.T) {
	assert.Equal(t, "💡 Small Hint", HintLabel(1))
	assert.Equal(t, "🎯 Big Hint", HintLabel(3))
	assert.Equal(t, "💡 Hint", HintLabel(9))
}

func TestHintAndFeedback_OptionalFieldsOmitted(t *testing.T) {
	raw, err := json.Marshal(Hint{Text: "Count on from 7.", Level: 1})
	require.NoError(t, err)
	assert.JSONEq(t, `{"hint_text":"Count on from 7.","hint_level":1}`, string(raw))

	raw, err = json.Marshal(Hint{Text: "x", Level: 2, Suggestion: "Draw 7 dots."})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"suggestion":"Draw 7 dots."`)

	raw, err = json.Marshal(Feedback{IsCorrect: true, Text: "Yes!", Encouragement: encourageCorrect, NextAction: NextContinue})
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "explanation")

	raw, err = json.Marshal(Feedback{Explanation: "7 + 1 = 8", NextAction: NextMoveOn})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"explanation":"7 + 1 = 8"`)
	assert.Contains(t, string(raw), `"next_action":"move_on"`)
	assert.Equal(t, NextAction("hint"), NextHint)
}
