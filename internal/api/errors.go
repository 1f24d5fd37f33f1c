// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/pdiddy/content-engine/internal/assessment"
	"github.com/pdiddy/content-engine/internal/pipeline"
	"github.com/pdiddy/content-engine/internal/resources"
	"github.com/pdiddy/content-engine/internal/store"
)

var errNotFound = echo.NewHTTPError(http.StatusNotFound, "not found")

// newHTTPErrorHandler returns an echo.HTTPErrorHandler that maps domain errors
// to status codes. Unrecognized errors are logged and answered with a
// generic 500.
func newHTTPErrorHandler(logger *zap.Logger, rv *requestValidator) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		var code int
		var message any

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case *echo.BindingError:
			code = origErr.Code
			message = echo.Map{"error": origErr.Message, "field": origErr.Field}
		case validator.ValidationErrors:
			code = http.StatusBadRequest
			message = rv.fieldErrors(origErr)
		default:
			switch {
			case errors.Is(err, store.ErrNotFound):
				code = http.StatusNotFound
				message = errNotFound.Message
			case errors.Is(err, pipeline.ErrInvalidRequest), errors.Is(err, assessment.ErrInvalidRequest):
				code = http.StatusBadRequest
				message = err.Error()
			case errors.Is(err, resources.ErrBusy):
				code = http.StatusConflict
				message = err.Error()
			default:
				code = http.StatusInternalServerError
				msg := http.StatusText(http.StatusInternalServerError)
				message = msg
				logger.Error(msg,
					zap.Error(err),
					zap.String("method", c.Request().Method),
					zap.String("path", c.Request().URL.Path),
				)
			}
		}

		if c.Echo().Debug {
			message = err.Error()
		}
		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		if !c.Response().Committed {
			if c.Request().Method == http.MethodHead {
				err = c.NoContent(code)
			} else {
				err = c.JSON(code, message)
			}
			if err != nil {
				logger.Error("writing error response", zap.Error(err))
			}
		}
	}
}
