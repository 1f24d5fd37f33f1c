// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package api serves generated content over HTTP: JSON routes for articles,
// assessments, and resource planning, a server-sent-event stream for
// assessment generation, and a secret-protected trigger for resource runs.
package api

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"go.uber.org/zap"

	"github.com/pdiddy/content-engine/internal/assessment"
	"github.com/pdiddy/content-engine/internal/pipeline"
	"github.com/pdiddy/content-engine/internal/resources"
	"github.com/pdiddy/content-engine/internal/scheduler"
	"github.com/pdiddy/content-engine/pkg/types"
)

type (
	// Store is the read side the routes need.
	Store interface {
		GetArticle(ctx context.Context, id string) (*types.Article, error)
		ListArticles(ctx context.Context, category string, limit int) ([]types.Article, error)
		GetAssessment(ctx context.Context, id string) (*types.Assessment, error)
		GetRubric(ctx context.Context, assessmentID string) (*types.Rubric, error)
		ListResources(ctx context.Context, category, subcategory string) ([]types.Resource, error)
	}

	ArticleGenerator interface {
		Generate(ctx context.Context, req pipeline.Request) (*types.Article, error)
	}

	AssessmentGenerator interface {
		Run(ctx context.Context, req assessment.Request, em assessment.Emitter) (*assessment.Result, error)
	}

	ResourcePlanner interface {
		Plan(ctx context.Context, batch int) (scheduler.Result, error)
	}

	ResourceRunner interface {
		Run(ctx context.Context, batch int) (resources.Summary, error)
	}

	Options struct {
		Address        string
		Debug          bool
		DisableReqLogs bool

		// CronSecret guards the resource trigger. Empty rejects every call.
		CronSecret string

		Store       Store
		Articles    ArticleGenerator
		Assessments AssessmentGenerator
		Planner     ResourcePlanner
		Runner      ResourceRunner
		Logger      *zap.Logger
	}

	Server interface {
		http.Handler
		Start() error
		Stop(context.Context) error
	}

	server struct {
		opts   *Options
		app    *echo.Echo
		logger *zap.Logger

		// nextBatch is the refresh page the trigger uses when the caller
		// does not name one.
		nextBatch atomic.Int64
	}
)

var _ Server = (*server)(nil)

// NewServer builds the HTTP server and registers every route.
func NewServer(opts *Options) Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &server{
		opts:   opts,
		app:    echo.New(),
		logger: logger.Named("api"),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	rv := newRequestValidator()

	s.app.HideBanner = true
	s.app.HidePort = true
	s.app.Debug = s.opts.Debug
	s.app.Validator = rv
	s.app.HTTPErrorHandler = newHTTPErrorHandler(s.logger, rv)

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
			LogMethod:  true,
			LogURI:     true,
			LogStatus:  true,
			LogLatency: true,
			LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
				s.logger.Info("request",
					zap.String("method", v.Method),
					zap.String("uri", v.URI),
					zap.Int("status", v.Status),
					zap.Duration("latency", v.Latency),
				)
				return nil
			},
		}))
	}
	// do not recover in debug mode
	if !s.opts.Debug {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.GET("/healthz", healthz)

	g := s.app.Group("/api")

	ag := g.Group("/articles")
	ag.POST("/generate", s.generateArticle)
	ag.GET("", s.listArticles)
	ag.GET("/:id", s.getArticle)

	sg := g.Group("/assessments")
	sg.POST("/generate", s.generateAssessment)
	sg.GET("/:id", s.getAssessment)
	sg.GET("/:id/rubric", s.getRubric)

	rg := g.Group("/resources")
	rg.GET("", s.listResources)
	rg.GET("/plan", s.planResources)

	cron := middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
		KeyLookup:  "header:" + echo.HeaderAuthorization,
		AuthScheme: "Bearer",
		Validator:  s.validCronKey,
	})
	g.POST("/cron/resources", s.triggerResources, cron)
}

func (s *server) validCronKey(key string, _ echo.Context) (bool, error) {
	secret := s.opts.CronSecret
	if secret == "" {
		return false, nil
	}
	return subtle.ConstantTimeCompare([]byte(key), []byte(secret)) == 1, nil
}

// Start listens on the configured address until Stop is called.
func (s *server) Start() error {
	s.logger.Info("listening", zap.String("address", s.opts.Address))
	if err := s.app.Start(s.opts.Address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
