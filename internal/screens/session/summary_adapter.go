package session

import (
	"github.com/kevinraymond/homeschool/internal/screen"
	"github.com/kevinraymond/homeschool/internal/screens/summary"
	sess "github.com/kevinraymond/homeschool/internal/session"
)

// newSummaryScreenAdapter creates a summary screen from session data.
func newSummaryScreenAdapter(s *sess.Summary, out *sess.Outcome) screen.Screen {
	return summary.New(s, out)
}
