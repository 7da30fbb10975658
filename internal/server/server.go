// Package server exposes the curriculum, problem generator and tutor over
// a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kevinraymond/homeschool/internal/curriculum"
	"github.com/kevinraymond/homeschool/internal/logger"
	"github.com/kevinraymond/homeschool/internal/metrics"
	"github.com/kevinraymond/homeschool/internal/problemgen"
	"github.com/kevinraymond/homeschool/internal/store"
	"github.com/kevinraymond/homeschool/internal/tutor"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Deps are the collaborators the handlers use. Tutor, LLMGenerator, the
// repos and DB may be nil; their endpoints then answer 503 or skip the
// check.
type Deps struct {
	Catalog      *curriculum.Catalog
	Generator    *problemgen.Generator
	LLMGenerator *problemgen.LLMGenerator
	Tutor        tutor.Tutor
	Students     store.StudentRepo
	Progress     store.ProgressRepo
	DB           Pinger
	Logger       *logger.Logger
}

// Options configures the HTTP listener.
type Options struct {
	Addr           string
	Mode           string // gin mode
	AllowedOrigins []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
}

type Server struct {
	Engine *gin.Engine
	deps   Deps
	opts   Options
	log    *logger.Logger
}

// New builds the router. Nothing listens until Run.
func New(deps Deps, opts Options) *Server {
	if deps.Catalog == nil {
		deps.Catalog = curriculum.NewCatalog()
	}
	if deps.Generator == nil {
		deps.Generator = problemgen.NewGenerator(nil)
	}
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}
	if opts.Mode != "" {
		gin.SetMode(opts.Mode)
	}
	metrics.Init()

	s := &Server{deps: deps, opts: opts, log: log.With("component", "server")}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(s.log))
	router.Use(CORS(opts.AllowedOrigins))
	router.Use(metrics.MetricsMiddleware())
	s.registerRoutes(router)
	s.Engine = router
	return s
}

func (s *Server) registerRoutes(router *gin.Engine) {
	router.GET("/healthz", s.health)
	router.GET("/metrics", metrics.PrometheusHandler())

	api := router.Group("/api")
	{
		api.GET("/lessons", s.listLessons)
		api.GET("/lessons/:id", s.getLesson)
		api.GET("/lessons/:id/difficulty", s.lessonDifficulty)
		api.POST("/lessons/recommend", s.recommendLessons)

		api.POST("/problems", s.generateProblems)

		api.POST("/tutor/hint", s.tutorHint)
		api.POST("/tutor/assess", s.tutorAssess)
		api.POST("/tutor/explain", s.tutorExplain)
		api.GET("/tutor/info", s.tutorInfo)

		api.GET("/students/:id/progress", s.studentProgress)
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.opts.Addr,
		Handler:      s.Engine,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", s.opts.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) health(c *gin.Context) {
	components := gin.H{}
	status := http.StatusOK

	if s.deps.DB != nil {
		if err := s.deps.DB.PingContext(c.Request.Context()); err != nil {
			components["database"] = "down"
			status = http.StatusServiceUnavailable
		} else {
			components["database"] = "up"
		}
	}
	if s.deps.Tutor != nil {
		components["tutor"] = string(s.deps.Tutor.ModelInfo().ModelType)
	} else {
		components["tutor"] = "unavailable"
	}
	components["lessons"] = len(s.deps.Catalog.Lessons())

	if status != http.StatusOK {
		c.JSON(status, Response{Code: status, Message: "degraded", Data: gin.H{"status": "degraded", "components": components}})
		return
	}
	Success(c, gin.H{"status": "ok", "components": components})
}
