package home

import (
	"charm.land/lipgloss/v2"

	"github.com/kevinraymond/homeschool/internal/ui/theme"
)

// MascotVariant selects which owl to draw.
type MascotVariant int

const (
	MascotIdle        MascotVariant = iota // Default
	MascotCelebrating                      // Last lesson was passed
	MascotAlert                            // Last lesson was a struggle
)

const mascotIdle = ` ,___,
 (O,O)
 /)_)
──"─"──`

const mascotCelebrating = ` ,___,
 (^,^)  ★
 /)_)\
──"─"──`

const mascotAlert = ` ,___,
 (o,O)  ?
 /)_)
──"─"──`

// RenderMascot returns the owl art for the given variant.
func RenderMascot(v MascotVariant) string {
	art, fg := mascotIdle, theme.Primary
	switch v {
	case MascotCelebrating:
		art, fg = mascotCelebrating, theme.Highlight
	case MascotAlert:
		art, fg = mascotAlert, theme.Accent
	}
	return lipgloss.NewStyle().
		Foreground(fg).
		Render(art)
}

// mascotFor picks the owl's mood from the most recent session.
func mascotFor(last *lastSession) MascotVariant {
	switch {
	case last == nil:
		return MascotIdle
	case last.Struggled:
		return MascotAlert
	case last.Accuracy >= 0.8:
		return MascotCelebrating
	default:
		return MascotIdle
	}
}
