package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kevinraymond/homeschool/internal/curriculum"
	"github.com/kevinraymond/homeschool/internal/llm"
	"github.com/kevinraymond/homeschool/internal/problemgen"
	"github.com/kevinraymond/homeschool/internal/store"
	"github.com/kevinraymond/homeschool/internal/tutor"
)

// Response is the envelope around every JSON reply.
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, Response{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

// StatusFor maps a domain error to its HTTP status.
func StatusFor(err error) int {
	var (
		curErr      *curriculum.ValidationError
		genErr      *problemgen.ValidationError
		unknownType *problemgen.UnknownTypeError
		notInit     *tutor.NotInitializedError
		initErr     *tutor.InitializationError
		cloudErr    *tutor.CloudInferenceError
	)
	switch {
	case errors.As(err, &curErr), errors.As(err, &genErr), errors.As(err, &unknownType):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &notInit), errors.As(err, &initErr):
		return http.StatusServiceUnavailable
	case errors.As(err, &cloudErr), llm.IsProviderFailure(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err with its mapped status. Internal errors are logged and
// their detail withheld.
func (s *Server) fail(c *gin.Context, err error) {
	code := StatusFor(err)
	if code == http.StatusInternalServerError {
		s.log.Error("internal server error", "path", c.FullPath(), "error", err)
		Error(c, code, "internal server error")
		return
	}
	Error(c, code, err.Error())
}
