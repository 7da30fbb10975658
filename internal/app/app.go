// Package app wires the practice screens into a Bubble Tea program.
package app

import (
	"context"
	"errors"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/kevinraymond/homeschool/internal/logger"
	"github.com/kevinraymond/homeschool/internal/problemgen"
	"github.com/kevinraymond/homeschool/internal/router"
	"github.com/kevinraymond/homeschool/internal/screen"
	"github.com/kevinraymond/homeschool/internal/screens/home"
	sessionscreen "github.com/kevinraymond/homeschool/internal/screens/session"
	"github.com/kevinraymond/homeschool/internal/screens/welcome"
	sess "github.com/kevinraymond/homeschool/internal/session"
	"github.com/kevinraymond/homeschool/internal/store"
	"github.com/kevinraymond/homeschool/internal/tutor"
	"github.com/kevinraymond/homeschool/internal/ui/layout"
)

// Options configure the practice program. Tutor may be nil.
type Options struct {
	Student     store.Student
	Subject     string
	Planner     home.PlanBuilder
	Progress    store.ProgressRepo
	Sessions    store.SessionRepo
	Recorder    sessionscreen.Recorder
	Generator   *problemgen.Generator
	Tutor       tutor.Tutor
	Logger      *logger.Logger
	SkipWelcome bool
}

func (o Options) homeDeps() home.Deps {
	st := o.Student
	return home.Deps{
		Student:  st,
		Subject:  o.Subject,
		Planner:  o.Planner,
		Progress: o.Progress,
		Sessions: o.Sessions,
		Practice: sessionscreen.Deps{
			Recorder:  o.Recorder,
			Generator: o.Generator,
			Tutor:     o.Tutor,
			Student:   sess.Student{ID: st.ID, Age: st.Age, Grade: st.GradeLevel},
			Logger:    o.Logger,
		},
	}
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router  *router.Router
	student string
	width   int
	height  int
}

// newAppModel creates an AppModel starting at the welcome screen, or at
// home when SkipWelcome is set.
func newAppModel(opts Options) AppModel {
	deps := opts.homeDeps()
	var root screen.Screen = home.New(deps)
	if !opts.SkipWelcome {
		root = welcome.New(opts.Student.FirstName, func() screen.Screen { return home.New(deps) })
	}
	return AppModel{
		router:  router.New(root),
		student: opts.Student.FirstName,
	}
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Active().Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		// Esc belongs to the screens: the practice screen asks before
		// leaving a lesson.
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	header := layout.RenderHeader(title, m.student, m.width)

	var footerHints []layout.KeyHint
	if p, ok := active.(screen.KeyHintProvider); ok {
		footerHints = p.KeyHints()
	} else if m.router.Depth() > 1 {
		footerHints = []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	} else {
		footerHints = []layout.KeyHint{
			{Key: "any key", Description: "Continue"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}

	footer := layout.RenderFooter(footerHints, m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	frame := layout.RenderFrame(header, content, footer, m.width, m.height)

	v.SetContent(frame)
	return v
}

// Run starts the Bubble Tea program and blocks until the student quits or
// ctx is canceled.
func Run(ctx context.Context, opts Options) error {
	if err := opts.homeDeps().Validate(); err != nil {
		return err
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	p := tea.NewProgram(newAppModel(opts), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		opts.Logger.Error("tui exited", "error", err)
		return err
	}
	return nil
}
