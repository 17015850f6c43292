package apperror

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/movie-catalog/internal/model"
)

// Handler returns an echo.HTTPErrorHandler that writes every error as an
// envelope. Store errors are logged with their cause; Echo's own errors
// (unknown route, wrong method, oversized body) keep their status code.
func Handler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		env := model.Envelope{Status: model.StatusError, Message: http.StatusText(code)}

		var appErr *Error
		var httpErr *echo.HTTPError
		switch {
		case errors.As(err, &appErr):
			code = appErr.Code
			env = appErr.Envelope()
			if appErr.Kind == KindStore {
				log.Error("store call failed",
					zap.String("method", c.Request().Method),
					zap.String("route", c.Path()),
					zap.Error(appErr.Err),
				)
			}
		case errors.As(err, &httpErr):
			code = httpErr.Code
			env.Message = http.StatusText(code)
			if msg, ok := httpErr.Message.(string); ok && msg != "" {
				env.Message = msg
			}
		default:
			log.Error("unhandled error", zap.String("route", c.Path()), zap.Error(err))
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(code)
		} else {
			werr = c.JSONPretty(code, env, "  ")
		}
		if werr != nil {
			log.Warn("write error response", zap.Error(werr))
		}
	}
}
