package router

import (
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/kevinraymond/homeschool/internal/screen"
)

type fakeScreen struct {
	title   string
	inits   int
	resumes int
	seen    []tea.Msg
}

func (s *fakeScreen) Init() tea.Cmd { s.inits++; return nil }
func (s *fakeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	s.seen = append(s.seen, msg)
	return s, nil
}
func (s *fakeScreen) View(int, int) string { return "view:" + s.title }
func (s *fakeScreen) Title() string        { return s.title }

// resumable reloads when uncovered.
type resumable struct{ fakeScreen }

func (s *resumable) Resume() tea.Cmd { s.resumes++; return nil }

// nav runs a navigation command through the router.
func nav(r *Router, cmd tea.Cmd) {
	r.Update(cmd())
}

func titles(r *Router) []string {
	out := make([]string, len(r.stack))
	for i, s := range r.stack {
		out[i] = s.Title()
	}
	return out
}

func TestNavigation(t *testing.T) {
	home := &resumable{fakeScreen{title: "home"}}
	lesson := &fakeScreen{title: "lesson"}
	summary := &fakeScreen{title: "summary"}
	r := New(home)

	nav(r, Push(lesson))
	if lesson.inits != 1 || r.Depth() != 2 {
		t.Fatalf("push: inits=%d depth=%d", lesson.inits, r.Depth())
	}

	nav(r, Replace(summary))
	if got := titles(r); len(got) != 2 || got[1] != "summary" {
		t.Fatalf("replace: stack = %v", got)
	}
	if summary.inits != 1 {
		t.Errorf("replace should init the new screen")
	}

	nav(r, PopToRoot())
	if r.Depth() != 1 || r.Active() != screen.Screen(home) {
		t.Fatalf("pop to root: stack = %v", titles(r))
	}
	if home.resumes != 1 {
		t.Errorf("home resumed %d times, want 1", home.resumes)
	}
}

func TestPop_ResumesUncovered(t *testing.T) {
	home := &resumable{fakeScreen{title: "home"}}
	r := New(home)
	nav(r, Push(&fakeScreen{title: "progress"}))
	nav(r, Pop())

	if r.Active().Title() != "home" || home.resumes != 1 {
		t.Fatalf("active=%q resumes=%d", r.Active().Title(), home.resumes)
	}
}

func TestPop_NeverEmptiesStack(t *testing.T) {
	home := &resumable{fakeScreen{title: "home"}}
	r := New(home)
	nav(r, Pop())
	nav(r, PopToRoot())

	if r.Depth() != 1 {
		t.Fatalf("depth = %d, want 1", r.Depth())
	}
	if home.resumes != 0 {
		t.Errorf("root should not resume when nothing was popped")
	}
}

func TestUpdate_ForwardsToActive(t *testing.T) {
	home := &fakeScreen{title: "home"}
	top := &fakeScreen{title: "top"}
	r := New(home)
	nav(r, Push(top))

	r.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	if len(top.seen) != 1 || len(home.seen) != 0 {
		t.Fatalf("top saw %d, home saw %d", len(top.seen), len(home.seen))
	}
	if r.View(80, 20) != "view:top" {
		t.Errorf("view = %q", r.View(80, 20))
	}
}

func TestEmptyRouter(t *testing.T) {
	r := &Router{}
	if r.Active() != nil || r.View(10, 10) != "" || r.Update(tea.WindowSizeMsg{}) != nil {
		t.Fatal("empty router should be inert")
	}
	nav(r, Replace(&fakeScreen{title: "only"}))
	if r.Depth() != 1 {
		t.Errorf("replace on empty router should push, depth = %d", r.Depth())
	}
}
