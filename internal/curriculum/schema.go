package curriculum

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

var gradeSchema = map[string]any{"type": "integer", "minimum": 0, "maximum": 12}

var stringList = map[string]any{"type": "array", "items": map[string]any{"type": "string"}}

var unitInterval = map[string]any{"type": "number", "minimum": 0, "maximum": 1}

var positiveInt = map[string]any{"type": "integer", "minimum": 1}

// whenType applies then to sections whose type equals t.
func whenType(t string, then map[string]any) map[string]any {
	return map[string]any{
		"if": map[string]any{
			"required":   []any{"type"},
			"properties": map[string]any{"type": map[string]any{"const": t}},
		},
		"then": then,
	}
}

var sectionSchema = map[string]any{
	"type":     "object",
	"required": []any{"type"},
	"properties": map[string]any{
		"type": map[string]any{
			"enum": []any{"video", "interactive", "practice", "assessment"},
		},
	},
	"allOf": []any{
		whenType("video", map[string]any{
			"required": []any{"duration", "content"},
			"properties": map[string]any{
				"duration": map[string]any{"type": "string"},
				"content": map[string]any{
					"type":     "object",
					"required": []any{"video_url"},
					"properties": map[string]any{
						"video_url":  map[string]any{"type": "string"},
						"transcript": map[string]any{"type": "string"},
						"subtitles":  map[string]any{"type": "boolean"},
					},
				},
			},
		}),
		whenType("interactive", map[string]any{
			"required": []any{"component"},
			"properties": map[string]any{
				"component": map[string]any{"type": "string"},
				"props":     map[string]any{"type": "object"},
			},
		}),
		whenType("practice", map[string]any{
			"required": []any{"problem_generator"},
			"properties": map[string]any{
				"problem_generator": map[string]any{
					"type":     "object",
					"required": []any{"type", "difficulty", "count"},
					"properties": map[string]any{
						"type":       map[string]any{"type": "string"},
						"difficulty": unitInterval,
						"count":      positiveInt,
						"adaptive":   map[string]any{"type": "boolean"},
					},
				},
			},
		}),
		whenType("assessment", map[string]any{
			"required": []any{"mastery_threshold", "problems"},
			"properties": map[string]any{
				"mastery_threshold": unitInterval,
				"problems":          positiveInt,
				"ai_tutor_enabled":  map[string]any{"type": "boolean"},
			},
		}),
	},
}

var lessonSchema = map[string]any{
	"type":     "object",
	"required": []any{"id", "title", "grade", "subject", "unit", "estimated_time", "sections"},
	"properties": map[string]any{
		"id":             map[string]any{"type": "string", "minLength": 1},
		"title":          map[string]any{"type": "string"},
		"grade":          gradeSchema,
		"subject":        map[string]any{"type": "string"},
		"unit":           map[string]any{"type": "string"},
		"prerequisites":  stringList,
		"teaches":        stringList,
		"estimated_time": map[string]any{"type": "string"},
		"sections":       map[string]any{"type": "array", "items": sectionSchema},
		"ai_tutor_config": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"system_prompt":                 map[string]any{"type": "string"},
				"socratic_mode":                 map[string]any{"type": "boolean"},
				"max_hints":                     map[string]any{"type": "integer", "minimum": 0},
				"difficulty_adjustment_enabled": map[string]any{"type": "boolean"},
			},
		},
	},
}

var unitSchema = map[string]any{
	"type":     "object",
	"required": []any{"id", "title", "grade", "subject", "description", "lessons", "estimated_total_time"},
	"properties": map[string]any{
		"id":                   map[string]any{"type": "string", "minLength": 1},
		"title":                map[string]any{"type": "string"},
		"grade":                gradeSchema,
		"subject":              map[string]any{"type": "string"},
		"description":          map[string]any{"type": "string"},
		"lessons":              stringList,
		"estimated_total_time": map[string]any{"type": "string"},
	},
}

var curriculumSchema = map[string]any{
	"type":     "object",
	"required": []any{"id", "subject", "grade", "title", "description", "units"},
	"properties": map[string]any{
		"id":          map[string]any{"type": "string", "minLength": 1},
		"subject":     map[string]any{"type": "string"},
		"grade":       gradeSchema,
		"title":       map[string]any{"type": "string"},
		"description": map[string]any{"type": "string"},
		"units":       stringList,
	},
}

var schemas = map[string]map[string]any{
	"lesson":     lessonSchema,
	"unit":       unitSchema,
	"curriculum": curriculumSchema,
}

// compiled caches compiled schemas by document kind.
var compiled sync.Map // map[string]*jsonschema.Schema

func compiledSchema(kind string) (*jsonschema.Schema, error) {
	if s, ok := compiled.Load(kind); ok {
		return s.(*jsonschema.Schema), nil
	}

	def, ok := schemas[kind]
	if !ok {
		return nil, fmt.Errorf("no schema for %q", kind)
	}
	defBytes, err := json.Marshal(def)
	if err != nil {
		return nil, fmt.Errorf("marshal %s schema: %w", kind, err)
	}
	var defParsed any
	if err := json.Unmarshal(defBytes, &defParsed); err != nil {
		return nil, fmt.Errorf("parse %s schema: %w", kind, err)
	}

	c := jsonschema.NewCompiler()
	url := fmt.Sprintf("schema://curriculum/%s.json", kind)
	if err := c.AddResource(url, defParsed); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	s, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile %s schema: %w", kind, err)
	}

	compiled.Store(kind, s)
	return s, nil
}

// leafMessages flattens a jsonschema error tree into one message per
// violated keyword.
func leafMessages(err *jsonschema.ValidationError) []string {
	if len(err.Causes) == 0 {
		return []string{err.Error()}
	}
	var out []string
	for _, c := range err.Causes {
		out = append(out, leafMessages(c)...)
	}
	return out
}
