// Package router keeps the stack of TUI screens. Screens navigate by
// returning the commands built by Push, Pop, Replace and PopToRoot.
package router

import (
	tea "charm.land/bubbletea/v2"

	"github.com/kevinraymond/homeschool/internal/screen"
)

type (
	PushScreenMsg    struct{ Screen screen.Screen }
	PopScreenMsg     struct{}
	ReplaceScreenMsg struct{ Screen screen.Screen }
	PopToRootMsg     struct{}
)

// Push opens s on top of the current screen.
func Push(s screen.Screen) tea.Cmd {
	return func() tea.Msg { return PushScreenMsg{Screen: s} }
}

// Pop returns to the previous screen.
func Pop() tea.Cmd {
	return func() tea.Msg { return PopScreenMsg{} }
}

// Replace swaps the current screen for s, e.g. a finished lesson for its
// summary.
func Replace(s screen.Screen) tea.Cmd {
	return func() tea.Msg { return ReplaceScreenMsg{Screen: s} }
}

// PopToRoot returns to the first screen.
func PopToRoot() tea.Cmd {
	return func() tea.Msg { return PopToRootMsg{} }
}

// Router owns the screen stack. The bottom screen is never popped.
// Screens implementing screen.Resumer are resumed when they are uncovered.
type Router struct {
	stack []screen.Screen
}

func New(root screen.Screen) *Router {
	return &Router{stack: []screen.Screen{root}}
}

func (r *Router) Active() screen.Screen {
	if len(r.stack) == 0 {
		return nil
	}
	return r.stack[len(r.stack)-1]
}

func (r *Router) Depth() int {
	return len(r.stack)
}

// Update applies navigation messages and forwards everything else to the
// active screen.
func (r *Router) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case PushScreenMsg:
		r.stack = append(r.stack, msg.Screen)
		return msg.Screen.Init()
	case ReplaceScreenMsg:
		if len(r.stack) == 0 {
			r.stack = append(r.stack, msg.Screen)
		} else {
			r.stack[len(r.stack)-1] = msg.Screen
		}
		return msg.Screen.Init()
	case PopScreenMsg:
		return r.truncate(len(r.stack) - 1)
	case PopToRootMsg:
		return r.truncate(1)
	}

	active := r.Active()
	if active == nil {
		return nil
	}
	next, cmd := active.Update(msg)
	r.stack[len(r.stack)-1] = next
	return cmd
}

// truncate shrinks the stack to depth, never below one screen, and resumes
// the uncovered screen.
func (r *Router) truncate(depth int) tea.Cmd {
	if depth < 1 || depth >= len(r.stack) {
		return nil
	}
	clear(r.stack[depth:])
	r.stack = r.stack[:depth]
	if rs, ok := r.Active().(screen.Resumer); ok {
		return rs.Resume()
	}
	return nil
}

func (r *Router) View(width, height int) string {
	if active := r.Active(); active != nil {
		return active.View(width, height)
	}
	return ""
}
