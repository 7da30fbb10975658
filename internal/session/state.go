package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kevinraymond/homeschool/internal/curriculum"
	"github.com/kevinraymond/homeschool/internal/diagnosis"
	"github.com/kevinraymond/homeschool/internal/logger"
	"github.com/kevinraymond/homeschool/internal/problemgen"
	"github.com/kevinraymond/homeschool/internal/tutor"
)

// Phase represents the current phase of the session.
type Phase int

const (
	PhasePractice   Phase = iota // Serving practice problems
	PhaseAssessment              // Serving graded problems
	PhaseSummary                 // All problems answered or session ended
)

func (p Phase) String() string {
	switch p {
	case PhasePractice:
		return "practice"
	case PhaseAssessment:
		return "assessment"
	default:
		return "summary"
	}
}

// Fallback generator settings for assessment problems when the lesson has
// no practice section to copy them from.
const (
	defaultAssessmentType       = problemgen.TypeAddition
	defaultAssessmentDifficulty = 0.5
)

// Item is one problem in the session with everything the student did on it.
type Item struct {
	Problem    curriculum.Problem
	Assessment bool
	// HintsEnabled is false for assessment problems whose section disables
	// the tutor.
	HintsEnabled bool
	Answers      []curriculum.Answer
	Hints        []tutor.Hint
	// Diagnoses holds one label per wrong answer, in order.
	Diagnoses []diagnosis.Result
}

// HintsUsed is the number of hints requested so far.
func (it *Item) HintsUsed() int { return len(it.Hints) }

// Solved reports whether any answer was correct.
func (it *Item) Solved() bool {
	for _, a := range it.Answers {
		if a.IsCorrect {
			return true
		}
	}
	return false
}

// Last returns the most recent answer, or nil.
func (it *Item) Last() *curriculum.Answer {
	if len(it.Answers) == 0 {
		return nil
	}
	return &it.Answers[len(it.Answers)-1]
}

// LastDiagnosis returns the label of the most recent wrong answer, or nil.
func (it *Item) LastDiagnosis() *diagnosis.Result {
	if len(it.Diagnoses) == 0 {
		return nil
	}
	return &it.Diagnoses[len(it.Diagnoses)-1]
}

// Student is who is working through the session. Age and Grade feed the
// tutor prompts.
type Student struct {
	ID    string
	Age   int
	Grade int
}

// Session is the runtime state of one lesson attempt. It is safe for
// concurrent use.
type Session struct {
	ID        string
	Lesson    curriculum.Lesson
	Student   Student
	StartTime time.Time

	mu        sync.Mutex
	items     []*Item
	byID      map[string]*Item
	current   int
	threshold float64
	ended     time.Time

	tutor tutor.Tutor
	log   *logger.Logger
	now   func() time.Time
}

// Option configures a Session.
type Option func(*Session)

// WithTutor lets RequestHint and Feedback ask a model. Without it canned
// hints and encouragement are used.
func WithTutor(t tutor.Tutor) Option {
	return func(s *Session) { s.tutor = t }
}

// WithStudent sets the student working the session.
func WithStudent(st Student) Option {
	return func(s *Session) { s.Student = st }
}

// WithLogger sets the session logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// WithID overrides the generated session id, typically with the id of the
// persisted learning session row.
func WithID(id string) Option {
	return func(s *Session) {
		if id != "" {
			s.ID = id
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// New builds a session for lesson. Practice sections are generated in order,
// followed by the assessment problems. Assessment problems reuse the first
// practice section's generator type and difficulty.
func New(lesson curriculum.Lesson, gen *problemgen.Generator, opts ...Option) (*Session, error) {
	if gen == nil {
		gen = problemgen.NewGenerator(nil)
	}
	s := &Session{
		ID:        uuid.NewString(),
		Lesson:    lesson,
		Student:   Student{Grade: lesson.Grade},
		byID:      make(map[string]*Item),
		threshold: DefaultMasteryThreshold,
		log:       logger.Nop(),
		now:       time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	s.StartTime = s.now()
	grade := s.Student.Grade

	practice := lesson.PracticeSections()
	for _, sec := range practice {
		problems, err := gen.GenerateForSection(sec, grade)
		if err != nil {
			return nil, err
		}
		for _, p := range problems {
			s.add(&Item{Problem: p, HintsEnabled: true})
		}
	}

	typ, difficulty := defaultAssessmentType, defaultAssessmentDifficulty
	if len(practice) > 0 {
		typ = problemgen.ProblemType(practice[0].ProblemGenerator.Type)
		difficulty = practice[0].ProblemGenerator.Difficulty
	}
	for i, sec := range lesson.AssessmentSections() {
		if i == 0 {
			s.threshold = sec.MasteryThreshold
		}
		for j := 0; j < sec.Problems; j++ {
			p, err := gen.GenerateMathProblem(typ, difficulty, grade)
			if err != nil {
				return nil, err
			}
			s.add(&Item{Problem: *p, Assessment: true, HintsEnabled: sec.AITutorEnabled})
		}
	}

	s.log = s.log.With("session_id", s.ID, "lesson_id", lesson.ID)
	s.log.Debug("session created", "problems", len(s.items))
	return s, nil
}

func (s *Session) add(it *Item) {
	s.items = append(s.items, it)
	s.byID[it.Problem.ID] = it
}

// Items returns the session's items in serving order.
func (s *Session) Items() []*Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Item, len(s.items))
	copy(out, s.items)
	return out
}

// Item looks up a problem by id.
func (s *Session) Item(problemID string) (*Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.item(problemID)
}

func (s *Session) item(problemID string) (*Item, error) {
	it, ok := s.byID[problemID]
	if !ok {
		return nil, &UnknownProblemError{ProblemID: problemID}
	}
	return it, nil
}

// Current returns the item being worked on, or nil once every item has been
// passed.
func (s *Session) Current() *Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current >= len(s.items) {
		return nil
	}
	return s.items[s.current]
}

// Advance moves to the next item. It returns false when none are left.
func (s *Session) Advance() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current < len(s.items) {
		s.current++
	}
	return s.current < len(s.items)
}

// Position returns the 1-based index of the current item and the total.
func (s *Session) Position() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return min(s.current+1, len(s.items)), len(s.items)
}

// Phase reports where the session is.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ended.IsZero() || s.current >= len(s.items) {
		return PhaseSummary
	}
	if s.items[s.current].Assessment {
		return PhaseAssessment
	}
	return PhasePractice
}

// End stops the session clock. Later calls are no-ops.
func (s *Session) End() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended.IsZero() {
		s.ended = s.now()
	}
}

// Elapsed is the time since the session started, frozen by End.
func (s *Session) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	end := s.ended
	if end.IsZero() {
		end = s.now()
	}
	return end.Sub(s.StartTime)
}
