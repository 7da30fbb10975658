package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"
)

var geminiModels = map[string]string{
	"gemini-flash": "gemini-2.0-flash",
	"gemini-pro":   "gemini-2.0-pro",
}

// childSafety blocks anything above negligible harm in every category.
var childSafety = []*genai.SafetySetting{
	{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockLowAndAbove},
	{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockLowAndAbove},
	{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockLowAndAbove},
	{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockLowAndAbove},
}

// GeminiProvider implements Provider with the Gemini API. Every request
// carries childSafety.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiProvider creates a new Gemini provider.
func NewGeminiProvider(ctx context.Context, cfg GeminiConfig) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}

	return &GeminiProvider{client: client, model: resolveModel(cfg.Model, geminiModels)}, nil
}

func (p *GeminiProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	config := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(req.MaxTokens),
		SafetySettings:  childSafety,
	}
	if req.Temperature > 0 {
		config.Temperature = genai.Ptr(float32(req.Temperature))
	}
	if req.System != "" {
		config.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.Schema != nil {
		config.ResponseMIMEType = "application/json"
		config.ResponseSchema = geminiSchema(req.Schema.Definition)
	}

	result, err := p.client.Models.GenerateContent(ctx, p.model, geminiContents(req.Messages), config)
	if err != nil {
		return nil, mapGeminiError(err)
	}
	if blockedBySafety(result) {
		return nil, &ErrInvalidResponse{Err: fmt.Errorf("reply blocked by safety filter")}
	}

	finish := geminiFinish(result)
	raw := json.RawMessage(result.Text())
	switch {
	case finish == genai.FinishReasonMaxTokens && req.Schema != nil:
		return nil, &ErrMaxTokensExceeded{Content: raw}
	case len(raw) == 0:
		return nil, &ErrEmptyResponse{Model: p.model}
	}

	content, err := structuredContent(req.Schema, raw)
	if err != nil {
		return nil, err
	}

	resp := &Response{Content: content, Model: p.model, StopReason: "end"}
	if finish == genai.FinishReasonMaxTokens {
		resp.StopReason = "max_tokens"
	}
	if u := result.UsageMetadata; u != nil {
		resp.Usage = Usage{
			InputTokens:  int(u.PromptTokenCount),
			OutputTokens: int(u.CandidatesTokenCount),
			TotalTokens:  int(u.TotalTokenCount),
		}
	}
	return resp, nil
}

func (p *GeminiProvider) ModelID() string {
	return p.model
}

func geminiContents(msgs []Message) []*genai.Content {
	out := make([]*genai.Content, 0, len(msgs))
	for _, m := range msgs {
		role := genai.Role(genai.RoleUser)
		if m.Role == RoleAssistant {
			role = genai.RoleModel
		}
		out = append(out, genai.NewContentFromText(m.Content, role))
	}
	return out
}

var geminiTypes = map[string]genai.Type{
	"string":  genai.TypeString,
	"number":  genai.TypeNumber,
	"integer": genai.TypeInteger,
	"boolean": genai.TypeBoolean,
	"array":   genai.TypeArray,
	"object":  genai.TypeObject,
}

// geminiSchema converts the JSON Schema subset used by our prompts into a
// genai.Schema. Unknown types become strings.
func geminiSchema(def map[string]any) *genai.Schema {
	s := &genai.Schema{Type: genai.TypeString}
	if t, ok := geminiTypes[stringField(def, "type")]; ok {
		s.Type = t
	}
	s.Description = stringField(def, "description")

	if props, ok := def["properties"].(map[string]any); ok {
		s.Properties = make(map[string]*genai.Schema, len(props))
		for name, v := range props {
			if sub, ok := v.(map[string]any); ok {
				s.Properties[name] = geminiSchema(sub)
			}
		}
	}
	if items, ok := def["items"].(map[string]any); ok {
		s.Items = geminiSchema(items)
	}
	s.Required = stringList(def["required"])
	s.Enum = stringList(def["enum"])

	if v, ok := number(def["minimum"]); ok {
		s.Minimum = genai.Ptr(v)
	}
	if v, ok := number(def["maximum"]); ok {
		s.Maximum = genai.Ptr(v)
	}
	if v, ok := number(def["minItems"]); ok {
		s.MinItems = genai.Ptr(int64(v))
	}
	if v, ok := number(def["maxItems"]); ok {
		s.MaxItems = genai.Ptr(int64(v))
	}
	return s
}

func stringField(def map[string]any, key string) string {
	v, _ := def[key].(string)
	return v
}

func stringList(v any) []string {
	items, _ := v.([]any)
	var out []string
	for _, it := range items {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func geminiFinish(result *genai.GenerateContentResponse) genai.FinishReason {
	if len(result.Candidates) == 0 {
		return ""
	}
	return result.Candidates[0].FinishReason
}

func blockedBySafety(result *genai.GenerateContentResponse) bool {
	if result.PromptFeedback != nil && result.PromptFeedback.BlockReason != "" {
		return true
	}
	return geminiFinish(result) == genai.FinishReasonSafety
}

func mapGeminiError(err error) error {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return &ErrProviderUnavailable{Err: err}
	}
	switch apiErr.Code {
	case http.StatusTooManyRequests:
		return &ErrRateLimit{Err: err}
	case http.StatusUnauthorized, http.StatusForbidden:
		return &ErrBackendAPI{Status: apiErr.Code, Body: apiErr.Message}
	default:
		return &ErrProviderUnavailable{Err: err}
	}
}
