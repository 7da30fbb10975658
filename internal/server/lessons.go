package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kevinraymond/homeschool/internal/curriculum"
	"github.com/kevinraymond/homeschool/internal/problemgen"
	"github.com/kevinraymond/homeschool/internal/session"
)

// LessonSummary is a lesson without its sections.
type LessonSummary struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Grade         int      `json:"grade"`
	Subject       string   `json:"subject"`
	Unit          string   `json:"unit"`
	Prerequisites []string `json:"prerequisites"`
	Teaches       []string `json:"teaches"`
	EstimatedTime string   `json:"estimated_time"`
	Difficulty    float64  `json:"difficulty"`
}

func summarize(ls []curriculum.Lesson) []LessonSummary {
	out := make([]LessonSummary, 0, len(ls))
	for _, l := range ls {
		out = append(out, LessonSummary{
			ID:            l.ID,
			Title:         l.Title,
			Grade:         l.Grade,
			Subject:       l.Subject,
			Unit:          l.Unit,
			Prerequisites: l.Prerequisites,
			Teaches:       l.Teaches,
			EstimatedTime: l.EstimatedTime,
			Difficulty:    curriculum.CalculateLessonDifficulty(l),
		})
	}
	return out
}

// GET /api/lessons?grade=&subject=&unit=
func (s *Server) listLessons(c *gin.Context) {
	grade := -1
	if g := c.Query("grade"); g != "" {
		n, err := strconv.Atoi(g)
		if err != nil {
			BadRequest(c, fmt.Sprintf("invalid grade %q", g))
			return
		}
		grade = n
	}
	subject, unit := c.Query("subject"), c.Query("unit")

	var out []curriculum.Lesson
	for _, l := range s.deps.Catalog.Lessons() {
		if grade >= 0 && l.Grade != grade {
			continue
		}
		if subject != "" && l.Subject != subject {
			continue
		}
		if unit != "" && l.Unit != unit {
			continue
		}
		out = append(out, l)
	}
	Success(c, summarize(out))
}

// GET /api/lessons/:id
func (s *Server) getLesson(c *gin.Context) {
	l, ok := s.deps.Catalog.Lesson(c.Param("id"))
	if !ok {
		NotFound(c, fmt.Sprintf("lesson %q not found", c.Param("id")))
		return
	}
	Success(c, l)
}

// GET /api/lessons/:id/difficulty
func (s *Server) lessonDifficulty(c *gin.Context) {
	l, ok := s.deps.Catalog.Lesson(c.Param("id"))
	if !ok {
		NotFound(c, fmt.Sprintf("lesson %q not found", c.Param("id")))
		return
	}
	Success(c, gin.H{"lesson_id": l.ID, "difficulty": curriculum.CalculateLessonDifficulty(l)})
}

type recommendRequest struct {
	// StudentID, when set, reads mastered concepts from the progress store
	// and adds them to Mastered.
	StudentID string   `json:"student_id"`
	Mastered  []string `json:"mastered"`
	Grade     int      `json:"grade"`
	Subject   string   `json:"subject" binding:"required"`
}

// POST /api/lessons/recommend
func (s *Server) recommendLessons(c *gin.Context) {
	var req recommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	mastered := req.Mastered
	if req.StudentID != "" {
		if s.deps.Progress == nil {
			Error(c, http.StatusServiceUnavailable, "progress store unavailable")
			return
		}
		concepts, err := s.deps.Progress.MasteredConcepts(c.Request.Context(), req.StudentID, session.DefaultMasteryThreshold)
		if err != nil {
			s.fail(c, err)
			return
		}
		mastered = append(mastered, concepts...)
	}

	lessons := s.deps.Catalog.Recommend(curriculum.MasteredSet(mastered...), req.Grade, req.Subject)
	Success(c, summarize(lessons))
}

type problemsRequest struct {
	Type       string  `json:"type"`
	Topic      string  `json:"topic"`
	Difficulty float64 `json:"difficulty"`
	Grade      int     `json:"grade"`
	Count      int     `json:"count"`
}

// maxProblemsPerRequest bounds Count.
const maxProblemsPerRequest = 50

// POST /api/problems
//
// With a type the procedural generator is used. With only a topic the
// problem comes from the language model.
func (s *Server) generateProblems(c *gin.Context) {
	var req problemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	if req.Count <= 0 {
		req.Count = 1
	}
	if req.Count > maxProblemsPerRequest {
		BadRequest(c, fmt.Sprintf("count must be at most %d", maxProblemsPerRequest))
		return
	}
	if req.Difficulty < 0 || req.Difficulty > 1 {
		BadRequest(c, "difficulty must be between 0 and 1")
		return
	}

	out := make([]curriculum.Problem, 0, req.Count)
	switch {
	case req.Type != "":
		for range req.Count {
			p, err := s.deps.Generator.GenerateMathProblem(problemgen.ProblemType(req.Type), req.Difficulty, req.Grade)
			if err != nil {
				s.fail(c, err)
				return
			}
			out = append(out, *p)
		}
	case req.Topic != "":
		if s.deps.LLMGenerator == nil {
			Error(c, http.StatusServiceUnavailable, "topic problems need a language model")
			return
		}
		var prior []string
		for range req.Count {
			p, err := s.deps.LLMGenerator.Generate(c.Request.Context(), problemgen.GenerateInput{
				Topic:          req.Topic,
				Grade:          req.Grade,
				Difficulty:     req.Difficulty,
				PriorQuestions: prior,
			})
			if err != nil {
				s.fail(c, err)
				return
			}
			prior = append(prior, p.Question)
			out = append(out, *p)
		}
	default:
		BadRequest(c, "type or topic is required")
		return
	}
	Success(c, out)
}
