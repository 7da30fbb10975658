package welcome

import (
	"charm.land/lipgloss/v2"

	"github.com/kevinraymond/homeschool/internal/ui/theme"
)

const bannerArt = `╦ ╦╔═╗╔╦╗╔═╗╔═╗╔═╗╦ ╦╔═╗╔═╗╦  
╠═╣║ ║║║║║╣ ╚═╗║  ╠═╣║ ║║ ║║  
╩ ╩╚═╝╩ ╩╚═╝╚═╝╚═╝╩ ╩╚═╝╚═╝╩═╝`

const bannerCompact = "H O M E S C H O O L"

// RenderBanner returns the banner styled in the primary color. Terminals
// narrower than 40 columns get the compact form.
func RenderBanner(width int) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	if width < 40 {
		return style.Render(bannerCompact)
	}
	return style.Render(bannerArt)
}
