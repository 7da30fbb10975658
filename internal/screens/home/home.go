package home

import (
	"context"
	"errors"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/kevinraymond/homeschool/internal/curriculum"
	"github.com/kevinraymond/homeschool/internal/router"
	"github.com/kevinraymond/homeschool/internal/screen"
	"github.com/kevinraymond/homeschool/internal/screens/history"
	"github.com/kevinraymond/homeschool/internal/screens/progress"
	sessionscreen "github.com/kevinraymond/homeschool/internal/screens/session"
	sess "github.com/kevinraymond/homeschool/internal/session"
	"github.com/kevinraymond/homeschool/internal/store"
	"github.com/kevinraymond/homeschool/internal/ui/components"
	"github.com/kevinraymond/homeschool/internal/ui/layout"
	"github.com/kevinraymond/homeschool/internal/ui/theme"
)

// PlanBuilder suggests lessons. *session.Planner implements it.
type PlanBuilder interface {
	BuildPlan(ctx context.Context, studentID string, grade int, subject string) (*sess.Plan, error)
}

// Deps are the collaborators of the home screen.
type Deps struct {
	Student  store.Student
	Subject  string
	Planner  PlanBuilder
	Progress store.ProgressRepo
	Sessions store.SessionRepo
	Practice sessionscreen.Deps
}

// lastSession is what the dashboard shows about the latest lesson.
type lastSession struct {
	Accuracy  float64
	Struggled bool
}

// planLoadedMsg carries the recommended lessons and dashboard numbers.
type planLoadedMsg struct {
	Plan     *sess.Plan
	Mastered int
	Last     *lastSession
	Err      error
}

// HomeScreen lists the lessons recommended for the student.
type HomeScreen struct {
	deps     Deps
	plan     *sess.Plan
	loading  bool
	errMsg   string
	mastered int
	last     *lastSession
	menu     components.Menu
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.KeyHintProvider = (*HomeScreen)(nil)
var _ screen.Resumer = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(deps Deps) *HomeScreen {
	h := &HomeScreen{deps: deps, loading: true}
	h.menu = components.NewMenu(h.menuItems())
	return h
}

func (h *HomeScreen) Init() tea.Cmd {
	return h.loadPlan()
}

// Resume rebuilds the plan after a lesson or another screen closes.
func (h *HomeScreen) Resume() tea.Cmd {
	h.loading = true
	return h.loadPlan()
}

func (h *HomeScreen) loadPlan() tea.Cmd {
	deps := h.deps
	return func() tea.Msg {
		ctx := context.Background()
		st := deps.Student
		plan, err := deps.Planner.BuildPlan(ctx, st.ID, st.GradeLevel, deps.Subject)
		if err != nil {
			return planLoadedMsg{Err: err}
		}
		msg := planLoadedMsg{Plan: plan}

		mastered, err := deps.Progress.MasteredConcepts(ctx, st.ID, sess.DefaultMasteryThreshold)
		if err != nil {
			return planLoadedMsg{Err: err}
		}
		msg.Mastered = len(mastered)

		recent, err := deps.Sessions.RecentSessions(ctx, st.ID, 1)
		if err != nil {
			return planLoadedMsg{Err: err}
		}
		if len(recent) > 0 && recent[0].CompletedAt != nil {
			msg.Last = &lastSession{Accuracy: recent[0].Accuracy, Struggled: recent[0].StruggleDetected}
		}
		return msg
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case planLoadedMsg:
		h.loading = false
		if msg.Err != nil {
			h.errMsg = msg.Err.Error()
		} else {
			h.errMsg = ""
			h.plan = msg.Plan
			h.mastered = msg.Mastered
			h.last = msg.Last
		}
		h.menu = components.NewMenu(h.menuItems())
		return h, nil
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

// menuItems lists one entry per plan slot followed by the navigation
// entries.
func (h *HomeScreen) menuItems() []components.MenuItem {
	var items []components.MenuItem
	if h.plan != nil {
		for _, slot := range h.plan.Slots {
			lesson := slot.Lesson
			items = append(items, components.MenuItem{
				Label:    lesson.Title,
				Tag:      string(slot.Category),
				TagStyle: theme.CategoryColor(string(slot.Category)),
				Action:   h.startLesson(lesson),
			})
		}
	}

	deps := h.deps
	return append(items,
		components.MenuItem{Label: "PROGRESS", Action: func() tea.Cmd {
			return router.Push(progress.New(deps.Progress, deps.Student.ID, deps.Subject))
		}},
		components.MenuItem{Label: "HISTORY", Action: func() tea.Cmd {
			return router.Push(history.New(deps.Sessions, deps.Student.ID))
		}},
		components.MenuItem{Label: "EXIT", Action: func() tea.Cmd {
			return tea.Quit
		}},
	)
}

func (h *HomeScreen) startLesson(lesson curriculum.Lesson) func() tea.Cmd {
	practice := h.deps.Practice
	return func() tea.Cmd {
		return router.Push(sessionscreen.New(practice, lesson))
	}
}

func (h *HomeScreen) View(width, height int) string {
	compact := layout.IsCompactHeight(height + layout.HeaderHeight + layout.FooterHeight)
	cw := components.ContentWidth(width)

	var sections []string
	sections = append(sections, renderGreeting(h.deps.Student.FirstName, cw))
	if !compact {
		sections = append(sections, renderMascotBox(mascotFor(h.last), cw))
	}
	sections = append(sections, renderStatsBar(h.deps.Student.GradeLevel, h.mastered, h.last, cw, compact))

	switch {
	case h.loading:
		sections = append(sections, renderNote("Picking today's lessons...", cw, lipgloss.NewStyle().Foreground(theme.TextDim)))
	case h.errMsg != "":
		sections = append(sections, renderNote("Couldn't plan lessons: "+h.errMsg, cw, lipgloss.NewStyle().Foreground(theme.Error)))
	case h.plan == nil || len(h.plan.Slots) == 0:
		sections = append(sections, renderNote("No lessons available for "+h.subjectName()+" yet.", cw, lipgloss.NewStyle().Foreground(theme.TextDim)))
	}

	sections = append(sections, components.Card(h.menu.View(), cw, nil))

	return components.Frame(strings.Join(sections, "\n\n"), width, height)
}

func (h *HomeScreen) subjectName() string {
	if h.deps.Subject == "" {
		return "this subject"
	}
	return h.deps.Subject
}

func (h *HomeScreen) Title() string {
	if h.deps.Subject == "" {
		return "Home"
	}
	return "Home · " + h.deps.Subject
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

// ErrIncompleteDeps is returned by Validate when a collaborator is missing.
var ErrIncompleteDeps = errors.New("home: planner, repos and recorder are required")

// Validate checks that the deps can build a plan.
func (d Deps) Validate() error {
	if d.Planner == nil || d.Progress == nil || d.Sessions == nil || d.Practice.Recorder == nil {
		return ErrIncompleteDeps
	}
	return nil
}
