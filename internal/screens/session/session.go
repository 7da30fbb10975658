package session

import (
	"context"
	"errors"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/kevinraymond/homeschool/internal/curriculum"
	"github.com/kevinraymond/homeschool/internal/logger"
	"github.com/kevinraymond/homeschool/internal/problemgen"
	"github.com/kevinraymond/homeschool/internal/router"
	"github.com/kevinraymond/homeschool/internal/screen"
	sess "github.com/kevinraymond/homeschool/internal/session"
	"github.com/kevinraymond/homeschool/internal/tutor"
	"github.com/kevinraymond/homeschool/internal/ui/components"
	"github.com/kevinraymond/homeschool/internal/ui/layout"
)

// Recorder starts and finishes persisted sessions. *session.Recorder
// implements it.
type Recorder interface {
	Start(ctx context.Context, student sess.Student, lesson curriculum.Lesson, gen *problemgen.Generator, opts ...sess.Option) (*sess.Session, error)
	Finish(ctx context.Context, s *sess.Session) (*sess.Outcome, error)
}

// Deps are the collaborators of the practice screen. Tutor may be nil, in
// which case canned hints and encouragement are shown.
type Deps struct {
	Recorder  Recorder
	Generator *problemgen.Generator
	Tutor     tutor.Tutor
	Student   sess.Student
	Logger    *logger.Logger
}

// SessionScreen walks a student through one lesson.
type SessionScreen struct {
	deps   Deps
	lesson curriculum.Lesson
	state  *sess.Session

	item          *sess.Item
	mc            components.MultiChoice
	input         components.TextInput
	typed         bool
	questionStart time.Time

	hints       []tutor.Hint
	hintPending bool
	hintNote    string

	answered        bool
	lastCorrect     bool
	feedback        *tutor.Feedback
	feedbackPending bool

	showingQuit bool
	finishing   bool
	elapsed     time.Duration
	errMsg      string
}

var _ screen.Screen = (*SessionScreen)(nil)
var _ screen.KeyHintProvider = (*SessionScreen)(nil)

// New creates a practice screen for lesson.
func New(deps Deps, lesson curriculum.Lesson) *SessionScreen {
	if deps.Logger == nil {
		deps.Logger = logger.Nop()
	}
	return &SessionScreen{
		deps:   deps,
		lesson: lesson,
		input:  components.NewTextInput("Type your answer...", false, 32),
	}
}

func (s *SessionScreen) Init() tea.Cmd {
	return tea.Batch(s.startSession(), tickCmd())
}

func (s *SessionScreen) Title() string {
	return s.lesson.Title
}

func (s *SessionScreen) KeyHints() []layout.KeyHint {
	switch {
	case s.errMsg != "":
		return []layout.KeyHint{{Key: "any key", Description: "Back"}}
	case s.state == nil || s.item == nil || s.finishing:
		return nil
	case s.showingQuit:
		return []layout.KeyHint{
			{Key: "Y", Description: "End lesson"},
			{Key: "N", Description: "Keep going"},
		}
	case s.answered:
		hints := []layout.KeyHint{{Key: "Enter", Description: "Continue"}}
		if s.canRetry() {
			hints = append(hints, layout.KeyHint{Key: "R", Description: "Try again"})
		}
		return hints
	}
	hints := []layout.KeyHint{}
	if s.typed {
		hints = append(hints, layout.KeyHint{Key: "Enter", Description: "Submit"})
	} else {
		hints = append(hints, layout.KeyHint{Key: "1-4", Description: "Answer"})
	}
	if s.item.HintsEnabled {
		hints = append(hints, layout.KeyHint{Key: s.hintKey(), Description: "Hint"})
	}
	if len(s.item.Problem.Options) > 0 {
		hints = append(hints, layout.KeyHint{Key: "Tab", Description: "Type answer"})
	}
	return append(hints, layout.KeyHint{Key: "Esc", Description: "Quit"})
}

func (s *SessionScreen) View(width, height int) string {
	switch {
	case s.errMsg != "":
		return renderError(width, s.errMsg)
	case s.state == nil:
		return renderLoading(width, "Preparing your lesson...")
	case s.finishing:
		return renderLoading(width, "Saving your work...")
	case s.showingQuit:
		return renderQuitConfirm(width)
	}
	return s.renderQuestionView(width, height)
}

func (s *SessionScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case sessionStartedMsg:
		return s.handleStarted(msg)

	case timerTickMsg:
		if s.state == nil || s.finishing {
			return s, nil
		}
		s.elapsed = s.state.Elapsed()
		return s, tickCmd()

	case hintReadyMsg:
		return s.handleHint(msg)

	case feedbackReadyMsg:
		return s.handleFeedback(msg)

	case sessionEndMsg:
		return s.finish()

	case sessionFinishedMsg:
		return s.handleFinished(msg)

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if s.typed && !s.answered {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

// startSession creates the persisted session asynchronously.
func (s *SessionScreen) startSession() tea.Cmd {
	deps, lesson := s.deps, s.lesson
	return func() tea.Msg {
		opts := []sess.Option{sess.WithLogger(deps.Logger)}
		if deps.Tutor != nil {
			opts = append(opts, sess.WithTutor(deps.Tutor))
		}
		st, err := deps.Recorder.Start(context.Background(), deps.Student, lesson, deps.Generator, opts...)
		return sessionStartedMsg{Session: st, Err: err}
	}
}

func (s *SessionScreen) handleStarted(msg sessionStartedMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		s.errMsg = msg.Err.Error()
		return s, nil
	}
	s.state = msg.Session
	if len(s.state.Items()) == 0 {
		s.errMsg = "this lesson has no problems to practice"
		return s, nil
	}
	return s, s.loadItem()
}

// loadItem shows the session's current item, or ends the session when
// every item has been passed.
func (s *SessionScreen) loadItem() tea.Cmd {
	s.item = s.state.Current()
	if s.item == nil {
		return func() tea.Msg { return sessionEndMsg{} }
	}
	p := s.item.Problem
	s.hints = nil
	s.hintNote = ""
	s.hintPending = false
	s.resetAnswer()
	s.mc = components.NewMultiChoice(p.Options)
	s.typed = len(p.Options) == 0
	s.input = components.NewTextInput("Type your answer...", numericAnswer(p.CorrectAnswer), 32)
	return s.input.Model.Focus()
}

func (s *SessionScreen) resetAnswer() {
	s.answered = false
	s.lastCorrect = false
	s.feedback = nil
	s.feedbackPending = false
	s.questionStart = time.Now()
}

func (s *SessionScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.errMsg != "" {
		return s, router.Pop()
	}
	if s.state == nil || s.item == nil || s.finishing {
		return s, nil
	}

	if s.showingQuit {
		switch key {
		case "y", "Y":
			s.showingQuit = false
			return s, func() tea.Msg { return sessionEndMsg{} }
		case "n", "N", "esc":
			s.showingQuit = false
		}
		return s, nil
	}

	if key == "esc" {
		s.showingQuit = true
		return s, nil
	}

	if s.answered {
		switch key {
		case "r", "R":
			if s.canRetry() {
				s.retry()
			}
			return s, nil
		case "enter", "space", " ", "n":
			return s, s.next()
		}
		return s, nil
	}

	if key == "?" || (key == "h" && s.hintKey() == "h") {
		return s, s.requestHint()
	}

	if key == "tab" && len(s.item.Problem.Options) > 0 {
		s.typed = !s.typed
		if s.typed {
			return s, s.input.Model.Focus()
		}
		return s, nil
	}

	if s.typed {
		if key == "enter" {
			if answer := s.input.Value(); answer != "" {
				return s.submit(answer)
			}
			return s, nil
		}
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}

	s.mc, _ = s.mc.Update(msg)
	if s.mc.HasChosen() {
		return s.submit(s.mc.Value())
	}
	return s, nil
}

// hintKey is "h" unless the student is typing free text, where h is a
// letter of the answer.
func (s *SessionScreen) hintKey() string {
	if s.typed && !s.input.NumericOnly {
		return "?"
	}
	return "h"
}

// canRetry allows another attempt on practice problems the tutor wants
// retried.
func (s *SessionScreen) canRetry() bool {
	if s.item == nil || s.item.Assessment || s.lastCorrect || s.feedbackPending {
		return false
	}
	return s.feedback == nil || s.feedback.NextAction == tutor.NextRetry
}

func (s *SessionScreen) retry() {
	s.resetAnswer()
	s.mc.Reset()
	s.input.Reset()
}

// submit records answer and asks for feedback asynchronously.
func (s *SessionScreen) submit(answer string) (screen.Screen, tea.Cmd) {
	a, err := s.state.Submit(s.item.Problem.ID, answer, time.Since(s.questionStart))
	if err != nil {
		s.errMsg = err.Error()
		return s, nil
	}
	s.answered = true
	s.lastCorrect = a.IsCorrect
	s.input.Submit(a.IsCorrect)
	if a.IsCorrect || s.item.Assessment {
		s.mc.Reveal(s.correctIndex())
	}
	s.feedbackPending = true

	st, id := s.state, s.item.Problem.ID
	return s, func() tea.Msg {
		fb, err := st.Feedback(context.Background(), id)
		return feedbackReadyMsg{ProblemID: id, Feedback: fb, Err: err}
	}
}

func (s *SessionScreen) correctIndex() int {
	for i, o := range s.item.Problem.Options {
		if curriculum.AnswerMatches(s.item.Problem.CorrectAnswer, o) {
			return i
		}
	}
	return -1
}

func (s *SessionScreen) handleFeedback(msg feedbackReadyMsg) (screen.Screen, tea.Cmd) {
	if s.item == nil || msg.ProblemID != s.item.Problem.ID || !s.answered {
		return s, nil
	}
	s.feedbackPending = false
	if msg.Err != nil {
		s.deps.Logger.Warn("feedback failed", "problem_id", msg.ProblemID, "error", msg.Err)
		return s, nil
	}
	s.feedback = msg.Feedback
	if !s.canRetry() {
		s.mc.Reveal(s.correctIndex())
	}
	return s, nil
}

func (s *SessionScreen) requestHint() tea.Cmd {
	if s.hintPending || s.item == nil {
		return nil
	}
	s.hintPending = true
	s.hintNote = ""
	st, id := s.state, s.item.Problem.ID
	return func() tea.Msg {
		h, err := st.RequestHint(context.Background(), id)
		return hintReadyMsg{ProblemID: id, Hint: h, Err: err}
	}
}

func (s *SessionScreen) handleHint(msg hintReadyMsg) (screen.Screen, tea.Cmd) {
	if s.item == nil || msg.ProblemID != s.item.Problem.ID {
		return s, nil
	}
	s.hintPending = false
	switch {
	case errors.Is(msg.Err, sess.ErrHintLimit):
		s.hintNote = "That's all the hints for this one. You've got this!"
	case errors.Is(msg.Err, sess.ErrHintsDisabled):
		s.hintNote = "Hints are off during the quiz."
	case msg.Err != nil:
		s.hintNote = "Couldn't get a hint right now."
		s.deps.Logger.Warn("hint failed", "problem_id", msg.ProblemID, "error", msg.Err)
	default:
		s.hints = append(s.hints, *msg.Hint)
	}
	return s, nil
}

// next moves past the answered item.
func (s *SessionScreen) next() tea.Cmd {
	if !s.state.Advance() {
		return func() tea.Msg { return sessionEndMsg{} }
	}
	return s.loadItem()
}

// finish records the session and hands over to the summary screen.
func (s *SessionScreen) finish() (screen.Screen, tea.Cmd) {
	if s.state == nil {
		return s, router.Pop()
	}
	if s.finishing {
		return s, nil
	}
	s.finishing = true
	st, rec := s.state, s.deps.Recorder
	return s, func() tea.Msg {
		out, err := rec.Finish(context.Background(), st)
		return sessionFinishedMsg{Summary: sess.BuildSummary(st), Outcome: out, Err: err}
	}
}

func (s *SessionScreen) handleFinished(msg sessionFinishedMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		s.finishing = false
		s.errMsg = "could not save this lesson: " + msg.Err.Error()
		return s, nil
	}
	next := newSummaryScreenAdapter(msg.Summary, msg.Outcome)
	return s, router.Replace(next)
}

// numericAnswer reports whether answer only needs digits and number
// punctuation, so the typed input can filter other keys.
func numericAnswer(answer string) bool {
	if answer == "" {
		return false
	}
	return strings.Trim(answer, "0123456789/-. ") == ""
}

// tickCmd returns a 1-second tick command.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return timerTickMsg(t)
	})
}
