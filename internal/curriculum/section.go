package curriculum

import (
	"encoding/json"
	"fmt"
)

// SectionKind is the discriminant of a lesson section.
type SectionKind string

const (
	KindVideo       SectionKind = "video"
	KindInteractive SectionKind = "interactive"
	KindPractice    SectionKind = "practice"
	KindAssessment  SectionKind = "assessment"
)

// Section is one of VideoSection, InteractiveSection, PracticeSection or
// AssessmentSection. The set is closed.
type Section interface {
	Kind() SectionKind
	isSection()
}

// VideoSection plays a recorded explanation.
type VideoSection struct {
	Duration string       `json:"duration"`
	Content  VideoContent `json:"content"`
}

// VideoContent locates the video and its optional transcript.
type VideoContent struct {
	VideoURL   string `json:"video_url"`
	Transcript string `json:"transcript,omitempty"`
	Subtitles  bool   `json:"subtitles"`
}

// InteractiveSection mounts a named UI component with free-form props.
type InteractiveSection struct {
	Component string         `json:"component"`
	Props     map[string]any `json:"props,omitempty"`
}

// PracticeSection asks the problem generator for Count problems.
type PracticeSection struct {
	ProblemGenerator ProblemGeneratorSpec `json:"problem_generator"`
}

// ProblemGeneratorSpec selects a generator type and difficulty.
type ProblemGeneratorSpec struct {
	Type       string  `json:"type"`
	Difficulty float64 `json:"difficulty"`
	Count      int     `json:"count"`
	Adaptive   bool    `json:"adaptive"`
}

// AssessmentSection is the graded part of a lesson.
type AssessmentSection struct {
	MasteryThreshold float64 `json:"mastery_threshold"`
	Problems         int     `json:"problems"`
	AITutorEnabled   bool    `json:"ai_tutor_enabled"`
}

func (VideoSection) Kind() SectionKind       { return KindVideo }
func (InteractiveSection) Kind() SectionKind { return KindInteractive }
func (PracticeSection) Kind() SectionKind    { return KindPractice }
func (AssessmentSection) Kind() SectionKind  { return KindAssessment }

func (VideoSection) isSection()       {}
func (InteractiveSection) isSection() {}
func (PracticeSection) isSection()    {}
func (AssessmentSection) isSection()  {}

func (s VideoSection) MarshalJSON() ([]byte, error) {
	type alias VideoSection
	return json.Marshal(struct {
		Type SectionKind `json:"type"`
		alias
	}{KindVideo, alias(s)})
}

func (s InteractiveSection) MarshalJSON() ([]byte, error) {
	type alias InteractiveSection
	return json.Marshal(struct {
		Type SectionKind `json:"type"`
		alias
	}{KindInteractive, alias(s)})
}

func (s PracticeSection) MarshalJSON() ([]byte, error) {
	type alias PracticeSection
	return json.Marshal(struct {
		Type SectionKind `json:"type"`
		alias
	}{KindPractice, alias(s)})
}

func (s AssessmentSection) MarshalJSON() ([]byte, error) {
	type alias AssessmentSection
	return json.Marshal(struct {
		Type SectionKind `json:"type"`
		alias
	}{KindAssessment, alias(s)})
}

func decodeSection(raw json.RawMessage) (Section, error) {
	var head struct {
		Type SectionKind `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, err
	}

	switch head.Type {
	case KindVideo:
		s := VideoSection{Content: VideoContent{Subtitles: true}}
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return s, nil
	case KindInteractive:
		var s InteractiveSection
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return s, nil
	case KindPractice:
		var s PracticeSection
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return s, nil
	case KindAssessment:
		s := AssessmentSection{AITutorEnabled: true}
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown section type %q", head.Type)
	}
}

// PracticeSections returns the lesson's practice sections in order.
func (l Lesson) PracticeSections() []PracticeSection {
	var out []PracticeSection
	for _, s := range l.Sections {
		if p, ok := s.(PracticeSection); ok {
			out = append(out, p)
		}
	}
	return out
}

// AssessmentSections returns the lesson's assessment sections in order.
func (l Lesson) AssessmentSections() []AssessmentSection {
	var out []AssessmentSection
	for _, s := range l.Sections {
		if a, ok := s.(AssessmentSection); ok {
			out = append(out, a)
		}
	}
	return out
}
