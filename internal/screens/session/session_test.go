package session

import (
	"context"
	"errors"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/kevinraymond/homeschool/internal/curriculum"
	"github.com/kevinraymond/homeschool/internal/problemgen"
	"github.com/kevinraymond/homeschool/internal/router"
	"github.com/kevinraymond/homeschool/internal/screen"
	sess "github.com/kevinraymond/homeschool/internal/session"
)

// fakeRecorder builds sessions in memory.
type fakeRecorder struct {
	startErr error
	started  *sess.Session
	finished int
}

func (f *fakeRecorder) Start(_ context.Context, student sess.Student, lesson curriculum.Lesson, gen *problemgen.Generator, opts ...sess.Option) (*sess.Session, error) {
	if f.startErr != nil {
		return nil, f.startErr
	}
	s, err := sess.New(lesson, gen, append(opts, sess.WithStudent(student))...)
	f.started = s
	return s, err
}

func (f *fakeRecorder) Finish(_ context.Context, s *sess.Session) (*sess.Outcome, error) {
	f.finished++
	s.End()
	return &sess.Outcome{Score: s.Score()}, nil
}

func testLesson() curriculum.Lesson {
	return curriculum.Lesson{
		ID:      "add-within-20",
		Title:   "Adding within 20",
		Grade:   1,
		Subject: "math",
		Teaches: []string{"addition-within-20"},
		Sections: []curriculum.Section{
			curriculum.PracticeSection{ProblemGenerator: curriculum.ProblemGeneratorSpec{
				Type: "addition", Difficulty: 0.3, Count: 2,
			}},
			curriculum.AssessmentSection{MasteryThreshold: 0.8, Problems: 1},
		},
	}
}

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func testSessionScreen(rec *fakeRecorder) *SessionScreen {
	return New(Deps{
		Recorder:  rec,
		Generator: problemgen.NewGenerator(problemgen.NewSeededSource(1, 2)),
		Student:   sess.Student{ID: "stu-1", Age: 7, Grade: 1},
	}, testLesson())
}

// startedScreen runs the start command synchronously.
func startedScreen(t *testing.T) (*SessionScreen, *fakeRecorder) {
	t.Helper()
	rec := &fakeRecorder{}
	s := testSessionScreen(rec)
	s.Update(s.startSession()())
	if s.state == nil || s.item == nil {
		t.Fatalf("session did not start: %q", s.errMsg)
	}
	return s, rec
}

func update(s *SessionScreen, msg tea.Msg) (*SessionScreen, tea.Cmd) {
	var scr screen.Screen = s
	scr, cmd := scr.Update(msg)
	return scr.(*SessionScreen), cmd
}

func correctKey(t *testing.T, s *SessionScreen) rune {
	t.Helper()
	i := s.correctIndex()
	if i < 0 {
		t.Fatalf("no option matches %q", s.item.Problem.CorrectAnswer)
	}
	return rune('1' + i)
}

func wrongKey(t *testing.T, s *SessionScreen) rune {
	t.Helper()
	i := s.correctIndex()
	if i < 0 {
		t.Fatalf("no option matches %q", s.item.Problem.CorrectAnswer)
	}
	return rune('1' + (i+1)%len(s.item.Problem.Options))
}

func TestSessionScreen_Title(t *testing.T) {
	s := testSessionScreen(&fakeRecorder{})
	if s.Title() != "Adding within 20" {
		t.Errorf("Title = %q, want %q", s.Title(), "Adding within 20")
	}
}

func TestSessionScreen_View_Loading(t *testing.T) {
	s := testSessionScreen(&fakeRecorder{})
	if view := s.View(80, 24); view == "" {
		t.Error("expected non-empty view for loading state")
	}
}

func TestSessionScreen_StartError(t *testing.T) {
	s := testSessionScreen(&fakeRecorder{startErr: errors.New("lesson not found")})
	s, _ = update(s, s.startSession()())

	if s.errMsg == "" {
		t.Fatal("expected error message")
	}
	_, cmd := update(s, keyPress('x'))
	if cmd == nil {
		t.Fatal("expected a command after dismissing the error")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected PopScreenMsg")
	}
}

func TestSessionScreen_MultipleChoiceCorrect(t *testing.T) {
	s, _ := startedScreen(t)

	s, cmd := update(s, keyPress(correctKey(t, s)))
	if !s.answered || !s.lastCorrect {
		t.Fatal("expected a correct answer to be recorded")
	}
	if cmd == nil {
		t.Fatal("expected a feedback command")
	}
	s, _ = update(s, cmd())
	if s.feedback == nil || !s.feedback.IsCorrect {
		t.Errorf("feedback = %+v, want correct feedback", s.feedback)
	}
	if s.canRetry() {
		t.Error("correct answers cannot be retried")
	}

	s, _ = update(s, specialKey(tea.KeyEnter))
	if pos, _ := s.state.Position(); pos != 2 {
		t.Errorf("position = %d, want 2", pos)
	}
	if s.answered {
		t.Error("expected the next problem to be unanswered")
	}
}

func TestSessionScreen_ArrowsAndEnter(t *testing.T) {
	s, _ := startedScreen(t)
	want := s.correctIndex()

	for i := 0; i < want; i++ {
		s, _ = update(s, specialKey(tea.KeyDown))
	}
	s, _ = update(s, specialKey(tea.KeyEnter))

	if !s.lastCorrect {
		t.Error("expected the option under the cursor to be submitted")
	}
}

func TestSessionScreen_PracticeRetry(t *testing.T) {
	s, _ := startedScreen(t)

	s, cmd := update(s, keyPress(wrongKey(t, s)))
	if s.lastCorrect {
		t.Fatal("expected a wrong answer")
	}
	s, _ = update(s, cmd())
	if !s.canRetry() {
		t.Fatal("expected retry to be offered for a practice problem")
	}
	if s.mc.Correct >= 0 {
		t.Error("expected the correct option to stay hidden before a retry")
	}

	s, _ = update(s, keyPress('r'))
	if s.answered {
		t.Fatal("expected retry to reopen the problem")
	}
	s, _ = update(s, keyPress(correctKey(t, s)))
	if !s.lastCorrect {
		t.Error("expected the retry to be graded")
	}
	if n := len(s.item.Answers); n != 2 {
		t.Errorf("answers = %d, want 2", n)
	}
}

func TestSessionScreen_TypedAnswer(t *testing.T) {
	s, _ := startedScreen(t)

	s, _ = update(s, specialKey(tea.KeyTab))
	if !s.typed {
		t.Fatal("expected tab to switch to typed mode")
	}

	// Numeric answers drop letters.
	s, _ = update(s, keyPress('a'))
	if s.input.Value() != "" {
		t.Errorf("input = %q, want empty", s.input.Value())
	}

	s.input.Model.SetValue(s.item.Problem.CorrectAnswer)
	s, cmd := update(s, specialKey(tea.KeyEnter))
	if !s.answered || !s.lastCorrect {
		t.Error("expected typed answer to be graded correct")
	}
	if cmd == nil {
		t.Error("expected a feedback command")
	}
}

func TestSessionScreen_EmptyTypedAnswerIgnored(t *testing.T) {
	s, _ := startedScreen(t)
	s, _ = update(s, specialKey(tea.KeyTab))

	s, cmd := update(s, specialKey(tea.KeyEnter))
	if s.answered || cmd != nil {
		t.Error("expected empty answer to be ignored")
	}
}

func TestSessionScreen_Hint(t *testing.T) {
	s, _ := startedScreen(t)

	s, cmd := update(s, keyPress('h'))
	if cmd == nil || !s.hintPending {
		t.Fatal("expected a pending hint request")
	}
	s, _ = update(s, cmd())

	if len(s.hints) != 1 {
		t.Fatalf("hints = %d, want 1", len(s.hints))
	}
	if s.hints[0].Level != 1 {
		t.Errorf("hint level = %d, want 1", s.hints[0].Level)
	}
	if s.hintPending {
		t.Error("expected hint request to be done")
	}
}

func TestSessionScreen_HintLimit(t *testing.T) {
	s, _ := startedScreen(t)

	for i := 0; i < curriculum.DefaultMaxHints; i++ {
		var cmd tea.Cmd
		s, cmd = update(s, keyPress('h'))
		s, _ = update(s, cmd())
	}
	s, cmd := update(s, keyPress('h'))
	s, _ = update(s, cmd())

	if len(s.hints) != curriculum.DefaultMaxHints {
		t.Errorf("hints = %d, want %d", len(s.hints), curriculum.DefaultMaxHints)
	}
	if s.hintNote == "" {
		t.Error("expected a note once the hint budget is used")
	}
}

func TestSessionScreen_QuizHintsDisabled(t *testing.T) {
	s, _ := startedScreen(t)

	// Skip the two practice problems.
	for i := 0; i < 2; i++ {
		s, _ = update(s, keyPress(correctKey(t, s)))
		s, _ = update(s, specialKey(tea.KeyEnter))
	}
	if s.state.Phase() != sess.PhaseAssessment {
		t.Fatalf("phase = %v, want assessment", s.state.Phase())
	}

	s, cmd := update(s, keyPress('h'))
	s, _ = update(s, cmd())
	if len(s.hints) != 0 || s.hintNote == "" {
		t.Error("expected hints to be refused during the quiz")
	}
}

func TestSessionScreen_QuitConfirm(t *testing.T) {
	s, _ := startedScreen(t)

	s, _ = update(s, specialKey(tea.KeyEscape))
	if !s.showingQuit {
		t.Fatal("expected quit confirmation dialog")
	}
	s, _ = update(s, keyPress('n'))
	if s.showingQuit {
		t.Error("expected quit confirmation to be dismissed")
	}
}

func TestSessionScreen_QuitRecordsSession(t *testing.T) {
	s, rec := startedScreen(t)

	s, _ = update(s, specialKey(tea.KeyEscape))
	s, cmd := update(s, keyPress('y'))
	if cmd == nil {
		t.Fatal("expected a command after quit confirmation")
	}
	s, cmd = update(s, cmd())
	if !s.finishing {
		t.Fatal("expected the session to be finishing")
	}
	msg := cmd()
	finished, ok := msg.(sessionFinishedMsg)
	if !ok {
		t.Fatalf("expected sessionFinishedMsg, got %T", msg)
	}
	if finished.Outcome.Score.Passed {
		t.Error("an unanswered quiz cannot pass")
	}
	_, cmd = update(s, finished)
	if _, ok := cmd().(router.ReplaceScreenMsg); !ok {
		t.Error("expected the summary to replace the practice screen")
	}
	if rec.finished != 1 {
		t.Errorf("finished = %d, want 1", rec.finished)
	}
}

func TestSessionScreen_CompleteLesson(t *testing.T) {
	s, rec := startedScreen(t)

	var cmd tea.Cmd
	for i := 0; i < 3; i++ {
		s, _ = update(s, keyPress(correctKey(t, s)))
		s, cmd = update(s, specialKey(tea.KeyEnter))
	}
	if cmd == nil {
		t.Fatal("expected the session to end after the last problem")
	}
	if _, ok := cmd().(sessionEndMsg); !ok {
		t.Fatal("expected sessionEndMsg")
	}
	s, cmd = update(s, sessionEndMsg{})
	finished := cmd().(sessionFinishedMsg)

	if !finished.Outcome.Score.Passed {
		t.Error("expected a perfect quiz to pass")
	}
	if finished.Summary.Result.ProblemsAttempted != 3 {
		t.Errorf("attempted = %d, want 3", finished.Summary.Result.ProblemsAttempted)
	}
	if rec.finished != 1 {
		t.Errorf("finished = %d, want 1", rec.finished)
	}
}

func TestSessionScreen_KeyHints(t *testing.T) {
	s, _ := startedScreen(t)

	if hints := s.KeyHints(); len(hints) == 0 {
		t.Error("expected non-empty key hints")
	}
	if view := s.View(80, 24); view == "" {
		t.Error("expected non-empty question view")
	}
}

func TestNumericAnswer(t *testing.T) {
	tests := []struct {
		answer string
		want   bool
	}{
		{"12", true},
		{"3/4", true},
		{"-2.5", true},
		{"noun", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := numericAnswer(tt.answer); got != tt.want {
			t.Errorf("numericAnswer(%q) = %v, want %v", tt.answer, got, tt.want)
		}
	}
}
