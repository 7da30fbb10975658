package server

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/kevinraymond/homeschool/internal/curriculum"
	"github.com/kevinraymond/homeschool/internal/llm"
	"github.com/kevinraymond/homeschool/internal/tutor"
)

type tutorRequest struct {
	StudentID        string              `json:"student_id"`
	Problem          curriculum.Problem  `json:"problem"`
	PreviousAttempts []curriculum.Answer `json:"previous_attempts"`
	StudentAge       int                 `json:"student_age"`
	StudentGrade     int                 `json:"student_grade"`
	Topic            string              `json:"topic"`
	HintLevel        int                 `json:"hint_level"`
	Answer           string              `json:"answer"`
}

func (r tutorRequest) context() tutor.Context {
	return tutor.Context{
		Problem:          r.Problem,
		PreviousAttempts: r.PreviousAttempts,
		StudentAge:       r.StudentAge,
		StudentGrade:     r.StudentGrade,
		Topic:            r.Topic,
	}
}

// ctx attributes tutor calls to the request's student when one is named.
func (r tutorRequest) ctx(c *gin.Context) context.Context {
	return llm.WithStudent(c.Request.Context(), r.StudentID)
}

// bindTutor decodes the request and checks a tutor is configured.
func (s *Server) bindTutor(c *gin.Context) (tutorRequest, bool) {
	var req tutorRequest
	if s.deps.Tutor == nil {
		s.fail(c, &tutor.NotInitializedError{})
		return req, false
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return req, false
	}
	if req.Problem.Question == "" {
		BadRequest(c, "problem.question is required")
		return req, false
	}
	return req, true
}

// POST /api/tutor/hint
func (s *Server) tutorHint(c *gin.Context) {
	req, ok := s.bindTutor(c)
	if !ok {
		return
	}
	if req.HintLevel == 0 {
		req.HintLevel = 1
	}
	h, err := s.deps.Tutor.GenerateHint(req.ctx(c), req.context(), req.HintLevel)
	if err != nil {
		s.fail(c, err)
		return
	}
	Success(c, h)
}

// POST /api/tutor/assess
func (s *Server) tutorAssess(c *gin.Context) {
	req, ok := s.bindTutor(c)
	if !ok {
		return
	}
	fb, err := s.deps.Tutor.AssessAnswer(req.ctx(c), req.context(), req.Answer)
	if err != nil {
		s.fail(c, err)
		return
	}
	Success(c, fb)
}

// POST /api/tutor/explain
func (s *Server) tutorExplain(c *gin.Context) {
	req, ok := s.bindTutor(c)
	if !ok {
		return
	}
	text, err := s.deps.Tutor.ExplainConcept(req.ctx(c), req.Problem, req.StudentAge)
	if err != nil {
		s.fail(c, err)
		return
	}
	Success(c, gin.H{"explanation": text})
}

// GET /api/tutor/info
func (s *Server) tutorInfo(c *gin.Context) {
	if s.deps.Tutor == nil {
		s.fail(c, &tutor.NotInitializedError{})
		return
	}
	Success(c, s.deps.Tutor.ModelInfo())
}
