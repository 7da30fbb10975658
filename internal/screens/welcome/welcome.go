package welcome

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/kevinraymond/homeschool/internal/router"
	"github.com/kevinraymond/homeschool/internal/screen"
	"github.com/kevinraymond/homeschool/internal/ui/theme"
)

const (
	tickInterval = 100 * time.Millisecond
	phase1End    = 500 * time.Millisecond
	phase2End    = 1500 * time.Millisecond
	totalDur     = 3000 * time.Millisecond
)

const owlArt = `   ,___,
   (O,O)
   /)_)
  ──"─"──`

// sparkle frames cycle around the owl
var sparkleFrames = []string{"★", "✦"}

type tickMsg time.Time

// WelcomeScreen greets the student before the home screen. Any key skips
// ahead.
type WelcomeScreen struct {
	name         string
	homeFactory  func() screen.Screen
	elapsed      time.Duration
	tickCount    int
	transitioned bool
}

var _ screen.Screen = (*WelcomeScreen)(nil)

// New creates a WelcomeScreen for the named student that will transition
// to the screen produced by homeFactory.
func New(name string, homeFactory func() screen.Screen) *WelcomeScreen {
	return &WelcomeScreen{
		name:        name,
		homeFactory: homeFactory,
	}
}

func (w *WelcomeScreen) Title() string {
	return ""
}

func (w *WelcomeScreen) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (w *WelcomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg.(type) {
	case tickMsg:
		if w.transitioned {
			return w, nil
		}
		if w.elapsed < totalDur {
			w.elapsed += tickInterval
		}
		w.tickCount++
		return w, tick()

	case tea.KeyPressMsg:
		return w, w.transition()
	}

	return w, nil
}

func (w *WelcomeScreen) transition() tea.Cmd {
	if w.transitioned {
		return nil
	}
	w.transitioned = true
	return router.Replace(w.homeFactory())
}

func (w *WelcomeScreen) View(width, height int) string {
	rendered := lipgloss.NewStyle().Foreground(theme.Primary).Render(owlArt)

	if w.elapsed >= phase1End {
		sparkle := sparkleFrames[w.tickCount%len(sparkleFrames)]
		s1 := lipgloss.NewStyle().Foreground(theme.Highlight).Render(sparkle)
		s2 := lipgloss.NewStyle().Foreground(theme.Secondary).Render(sparkle)

		lines := strings.Split(rendered, "\n")
		lines[0] = s1 + "  " + lines[0] + "  " + s2
		lines[len(lines)-1] = s2 + "  " + lines[len(lines)-1] + "  " + s1
		rendered = strings.Join(lines, "\n")
	}

	sections := []string{rendered}

	if w.elapsed >= phase2End {
		greeting := "Time to learn something new!"
		if w.name != "" {
			greeting = "Welcome back, " + w.name + "!"
		}
		sections = append(sections,
			"",
			RenderBanner(width),
			"",
			lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(greeting),
			"",
			lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).Render("press any key to continue"),
		)
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, strings.Join(sections, "\n"))
}
