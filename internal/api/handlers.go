// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/pdiddy/content-engine/internal/assessment"
	"github.com/pdiddy/content-engine/internal/pipeline"
)

const (
	maxListLimit = 200
	maxBatch     = 1 << 20
)

// rejected is the body returned when a draft never reached approval.
type rejected struct {
	Approved bool   `json:"approved"`
	Message  string `json:"message"`
}

// Articles

func (s *server) generateArticle(c echo.Context) error {
	req := new(pipeline.Request)
	if err := c.Bind(req); err != nil {
		return err
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	article, err := s.opts.Articles.Generate(c.Request().Context(), *req)
	if errors.Is(err, pipeline.ErrNotApproved) {
		return c.JSON(http.StatusOK, rejected{Approved: false, Message: err.Error()})
	}
	if err != nil {
		return errors.Wrap(err, "generating article")
	}
	return c.JSON(http.StatusCreated, article)
}

func (s *server) listArticles(c echo.Context) error {
	var category string
	limit := 50
	err := echo.QueryParamsBinder(c).
		String("category", &category).
		Int("limit", &limit).
		BindError()
	if err != nil {
		return err
	}
	if limit < 1 || limit > maxListLimit {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("limit must be between 1 and %d", maxListLimit))
	}

	articles, err := s.opts.Store.ListArticles(c.Request().Context(), category, limit)
	if err != nil {
		return errors.Wrap(err, "listing articles")
	}
	return c.JSON(http.StatusOK, articles)
}

func (s *server) getArticle(c echo.Context) error {
	article, err := s.opts.Store.GetArticle(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, article)
}

// Assessments

// generateAssessment streams progress as server-sent events, one JSON object
// per "data:" line. Request errors are answered with a normal JSON error
// before the stream opens; failures during the run arrive as an error event.
func (s *server) generateAssessment(c echo.Context) error {
	req := new(assessment.Request)
	if err := c.Bind(req); err != nil {
		return err
	}
	if err := c.Validate(req); err != nil {
		return err
	}
	if _, err := assessment.Validate(*req); err != nil {
		return err
	}

	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	w.Flush()

	emit := assessment.EmitterFunc(func(p assessment.Progress) {
		data, err := json.Marshal(p)
		if err != nil {
			s.logger.Error("encoding progress event", zap.Error(err))
			return
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			return
		}
		w.Flush()
	})

	res, err := s.opts.Assessments.Run(c.Request().Context(), *req, emit)
	if err != nil {
		s.logger.Warn("assessment stream ended with error", zap.Error(err))
		return nil
	}
	s.logger.Info("assessment streamed", zap.String("id", res.Assessment.ID))
	return nil
}

func (s *server) getAssessment(c echo.Context) error {
	a, err := s.opts.Store.GetAssessment(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

func (s *server) getRubric(c echo.Context) error {
	r, err := s.opts.Store.GetRubric(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, r)
}

// Resources

func (s *server) listResources(c echo.Context) error {
	var category, subcategory string
	err := echo.QueryParamsBinder(c).
		String("category", &category).
		String("subcategory", &subcategory).
		BindError()
	if err != nil {
		return err
	}
	res, err := s.opts.Store.ListResources(c.Request().Context(), category, subcategory)
	if err != nil {
		return errors.Wrap(err, "listing resources")
	}
	return c.JSON(http.StatusOK, res)
}

func (s *server) planResources(c echo.Context) error {
	var batch int
	if err := bindBatch(c, &batch); err != nil {
		return err
	}
	plan, err := s.opts.Planner.Plan(c.Request().Context(), batch)
	if err != nil {
		return errors.Wrap(err, "planning resources")
	}
	return c.JSON(http.StatusOK, plan)
}

// triggerResources runs one resource batch. Without a batch query parameter
// it continues from the page the previous trigger suggested.
func (s *server) triggerResources(c echo.Context) error {
	batch := int(s.nextBatch.Load())
	if err := bindBatch(c, &batch); err != nil {
		return err
	}

	sum, err := s.opts.Runner.Run(c.Request().Context(), batch)
	if err != nil {
		return errors.Wrap(err, "running resource batch")
	}
	s.nextBatch.Store(int64(sum.NextBatch))
	return c.JSON(http.StatusOK, sum)
}

// bindBatch reads the optional batch query parameter and checks its range.
func bindBatch(c echo.Context, batch *int) error {
	if err := echo.QueryParamsBinder(c).Int("batch", batch).BindError(); err != nil {
		return err
	}
	if *batch < 0 || *batch > maxBatch {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("batch must be between 0 and %d", maxBatch))
	}
	return nil
}
