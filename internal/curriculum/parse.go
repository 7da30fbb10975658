package curriculum

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

// ParseLesson parses a YAML document whose top-level key is "lesson".
func ParseLesson(raw []byte) (*Lesson, error) {
	doc, err := decodeYAML("lesson", raw)
	if err != nil {
		return nil, err
	}
	return DecodeLesson(doc)
}

// ParseUnit parses a YAML document whose top-level key is "unit".
func ParseUnit(raw []byte) (*Unit, error) {
	doc, err := decodeYAML("unit", raw)
	if err != nil {
		return nil, err
	}
	return DecodeUnit(doc)
}

// ParseCurriculum parses a YAML document whose top-level key is "curriculum".
func ParseCurriculum(raw []byte) (*Curriculum, error) {
	doc, err := decodeYAML("curriculum", raw)
	if err != nil {
		return nil, err
	}
	return DecodeCurriculum(doc)
}

// DecodeLesson validates a pre-parsed mapping and converts it into a Lesson.
// The mapping may be the lesson body itself or a document wrapping it
// under a "lesson" key.
func DecodeLesson(doc map[string]any) (*Lesson, error) {
	var l Lesson
	if err := decode("lesson", doc, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

// DecodeUnit validates a pre-parsed mapping and converts it into a Unit.
func DecodeUnit(doc map[string]any) (*Unit, error) {
	var u Unit
	if err := decode("unit", doc, &u); err != nil {
		return nil, err
	}
	if u.Lessons == nil {
		u.Lessons = []string{}
	}
	return &u, nil
}

// DecodeCurriculum validates a pre-parsed mapping and converts it into a
// Curriculum.
func DecodeCurriculum(doc map[string]any) (*Curriculum, error) {
	var c Curriculum
	if err := decode("curriculum", doc, &c); err != nil {
		return nil, err
	}
	if c.Units == nil {
		c.Units = []string{}
	}
	return &c, nil
}

func decodeYAML(kind string, raw []byte) (map[string]any, error) {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, &ValidationError{Kind: kind, Violations: []string{fmt.Sprintf("malformed YAML: %v", err)}}
	}
	m, ok := normalize(doc).(map[string]any)
	if !ok {
		return nil, &ValidationError{Kind: kind, Violations: []string{"document is not a mapping"}}
	}
	body, ok := m[kind]
	if !ok {
		return nil, &ValidationError{Kind: kind, Violations: []string{fmt.Sprintf("missing top-level key %q", kind)}}
	}
	inner, ok := body.(map[string]any)
	if !ok {
		return nil, &ValidationError{Kind: kind, Violations: []string{fmt.Sprintf("top-level key %q is not a mapping", kind)}}
	}
	return inner, nil
}

// decode validates doc against the kind's schema and unmarshals it into out.
func decode(kind string, doc map[string]any, out any) error {
	if doc == nil {
		return &ValidationError{Kind: kind, Violations: []string{"document is empty"}}
	}
	if body, ok := doc[kind].(map[string]any); ok && len(doc) == 1 {
		doc = body
	}

	// Round-trip through JSON so numbers and nested mappings take the shapes
	// the schema validator expects.
	data, err := json.Marshal(normalize(doc))
	if err != nil {
		return &ValidationError{Kind: kind, Violations: []string{fmt.Sprintf("unencodable value: %v", err)}}
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return &ValidationError{Kind: kind, Violations: []string{fmt.Sprintf("invalid document: %v", err)}}
	}

	schema, err := compiledSchema(kind)
	if err != nil {
		return fmt.Errorf("%s schema: %w", kind, err)
	}
	if err := schema.Validate(inst); err != nil {
		var verr *jsonschema.ValidationError
		if !errors.As(err, &verr) {
			return &ValidationError{Kind: kind, Violations: []string{err.Error()}}
		}
		violations := leafMessages(verr)
		sort.Strings(violations)
		return &ValidationError{Kind: kind, Violations: violations}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return &ValidationError{Kind: kind, Violations: []string{err.Error()}}
	}
	return nil
}

// normalize converts YAML's map[any]any nodes into map[string]any so the
// tree can be marshaled as JSON.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalize(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalize(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalize(val)
		}
		return out
	default:
		return v
	}
}
