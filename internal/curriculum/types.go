package curriculum

import (
	"encoding/json"
	"fmt"
	"time"
)

// Lesson is a single teachable unit of content. Lessons reference their unit
// by id and declare the concepts they require and grant.
type Lesson struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Grade         int            `json:"grade"`
	Subject       string         `json:"subject"`
	Unit          string         `json:"unit"`
	Prerequisites []string       `json:"prerequisites"`
	Teaches       []string       `json:"teaches"`
	EstimatedTime string         `json:"estimated_time"`
	Sections      []Section      `json:"sections"`
	AITutor       *AITutorConfig `json:"ai_tutor_config,omitempty"`
}

// AITutorConfig tunes how the tutor behaves inside a lesson.
type AITutorConfig struct {
	SystemPrompt                string `json:"system_prompt"`
	SocraticMode                bool   `json:"socratic_mode"`
	MaxHints                    int    `json:"max_hints"`
	DifficultyAdjustmentEnabled bool   `json:"difficulty_adjustment_enabled"`
}

// DefaultMaxHints is the hint budget per problem when a lesson does not
// override it.
const DefaultMaxHints = 3

func defaultAITutorConfig() AITutorConfig {
	return AITutorConfig{
		SocraticMode:                true,
		MaxHints:                    DefaultMaxHints,
		DifficultyAdjustmentEnabled: true,
	}
}

// MaxHints returns the lesson's hint budget.
func (l Lesson) MaxHints() int {
	if l.AITutor != nil {
		return l.AITutor.MaxHints
	}
	return DefaultMaxHints
}

// Unit groups lessons, referenced by id, in playback order.
type Unit struct {
	ID                 string   `json:"id"`
	Title              string   `json:"title"`
	Grade              int      `json:"grade"`
	Subject            string   `json:"subject"`
	Description        string   `json:"description"`
	Lessons            []string `json:"lessons"`
	EstimatedTotalTime string   `json:"estimated_total_time"`
}

// Curriculum is a full subject/grade plan made of unit ids.
type Curriculum struct {
	ID          string   `json:"id"`
	Subject     string   `json:"subject"`
	Grade       int      `json:"grade"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Units       []string `json:"units"`
}

// Problem is a generated practice item. Problems are immutable once built.
type Problem struct {
	ID            string   `json:"id"`
	Type          string   `json:"type"`
	Question      string   `json:"question"`
	Options       []string `json:"options,omitempty"`
	CorrectAnswer string   `json:"correct_answer"`
	Explanation   string   `json:"explanation"`
	Difficulty    float64  `json:"difficulty"`
}

// HasOption reports whether answer equals one of the options after
// normalization.
func (p Problem) HasOption(answer string) bool {
	for _, o := range p.Options {
		if AnswerMatches(o, answer) {
			return true
		}
	}
	return false
}

// Answer is one submission for a problem.
type Answer struct {
	ProblemID        string    `json:"problem_id"`
	StudentAnswer    string    `json:"student_answer"`
	IsCorrect        bool      `json:"is_correct"`
	TimeSpentSeconds int       `json:"time_spent_seconds"`
	HintsUsed        int       `json:"hints_used"`
	Timestamp        time.Time `json:"timestamp"`
}

// NewAnswer grades studentAnswer against problem and returns the record.
func NewAnswer(problem Problem, studentAnswer string, timeSpent time.Duration, hintsUsed int) Answer {
	secs := int(timeSpent.Seconds())
	if secs < 0 {
		secs = 0
	}
	if hintsUsed < 0 {
		hintsUsed = 0
	}
	return Answer{
		ProblemID:        problem.ID,
		StudentAnswer:    studentAnswer,
		IsCorrect:        AnswerMatches(problem.CorrectAnswer, studentAnswer),
		TimeSpentSeconds: secs,
		HintsUsed:        hintsUsed,
		Timestamp:        time.Now().UTC(),
	}
}

// UnmarshalJSON decodes a lesson, dispatching each section on its type and
// applying field defaults.
func (l *Lesson) UnmarshalJSON(data []byte) error {
	type alias Lesson
	var raw struct {
		alias
		Sections []json.RawMessage `json:"sections"`
		AITutor  json.RawMessage   `json:"ai_tutor_config"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*l = Lesson(raw.alias)
	if l.Prerequisites == nil {
		l.Prerequisites = []string{}
	}
	if l.Teaches == nil {
		l.Teaches = []string{}
	}

	l.Sections = make([]Section, 0, len(raw.Sections))
	for i, rs := range raw.Sections {
		s, err := decodeSection(rs)
		if err != nil {
			return fmt.Errorf("section %d: %w", i, err)
		}
		l.Sections = append(l.Sections, s)
	}

	l.AITutor = nil
	if len(raw.AITutor) > 0 && string(raw.AITutor) != "null" {
		cfg := defaultAITutorConfig()
		if err := json.Unmarshal(raw.AITutor, &cfg); err != nil {
			return fmt.Errorf("ai_tutor_config: %w", err)
		}
		l.AITutor = &cfg
	}
	return nil
}
