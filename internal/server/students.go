package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kevinraymond/homeschool/internal/session"
	"github.com/kevinraymond/homeschool/internal/store"
)

type progressNode struct {
	Concept         string  `json:"concept"`
	Subject         string  `json:"subject"`
	MasteryLevel    float64 `json:"mastery_level"`
	TotalAttempts   int     `json:"total_attempts"`
	TotalCorrect    int     `json:"total_correct"`
	DifficultyLevel float64 `json:"difficulty_level"`
	LastPracticed   string  `json:"last_practiced"`
	Mastered        bool    `json:"mastered"`
}

// GET /api/students/:id/progress?subject=
func (s *Server) studentProgress(c *gin.Context) {
	if s.deps.Students == nil || s.deps.Progress == nil {
		Error(c, http.StatusServiceUnavailable, "progress store unavailable")
		return
	}
	ctx := c.Request.Context()
	st, err := s.deps.Students.GetStudent(ctx, c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	nodes, err := s.deps.Progress.StudentProgress(ctx, st.ID, c.Query("subject"))
	if err != nil {
		s.fail(c, err)
		return
	}

	out := make([]progressNode, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, toProgressNode(n))
	}
	Success(c, gin.H{
		"student_id": st.ID,
		"first_name": st.FirstName,
		"grade":      st.GradeLevel,
		"concepts":   out,
	})
}

func toProgressNode(n store.ProgressNode) progressNode {
	return progressNode{
		Concept:         n.Concept,
		Subject:         n.Subject,
		MasteryLevel:    n.MasteryLevel,
		TotalAttempts:   n.TotalAttempts,
		TotalCorrect:    n.TotalCorrect,
		DifficultyLevel: n.DifficultyLevel,
		LastPracticed:   n.LastPracticed.UTC().Format("2006-01-02T15:04:05Z07:00"),
		Mastered:        n.MasteryLevel >= session.DefaultMasteryThreshold,
	}
}
