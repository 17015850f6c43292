// Package handler maps HTTP requests onto repository calls and renders the
// results as response envelopes. Handlers return *apperror.Error values; the
// Echo error handler turns them into responses.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-catalog/internal/model"
)

// defaultQueryTimeout bounds store calls when no timeout was configured.
const defaultQueryTimeout = 5 * time.Second

// jsonIndent matches the two-space pretty printing of every response.
const jsonIndent = "  "

// queryContext derives the context used for the store calls of one request.
func queryContext(c echo.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = defaultQueryTimeout
	}
	return context.WithTimeout(c.Request().Context(), timeout)
}

// respondData writes a success envelope carrying rows.
func respondData(c echo.Context, code int, data any) error {
	return c.JSONPretty(code, model.Envelope{Status: model.StatusSuccess, Data: data}, jsonIndent)
}

// respondMessage writes a success envelope carrying a message.
func respondMessage(c echo.Context, code int, msg string) error {
	return c.JSONPretty(code, model.Envelope{Status: model.StatusSuccess, Message: msg}, jsonIndent)
}

// bindQuery binds query parameters regardless of the request method. Echo's
// Bind only reads the query string for GET, DELETE and HEAD.
func bindQuery(c echo.Context, dst any) error {
	return (&echo.DefaultBinder{}).BindQueryParams(c, dst)
}

// Info answers the root path with the service name.
func Info(c echo.Context) error {
	return c.JSONPretty(http.StatusOK, echo.Map{"info": "Movie Management System"}, jsonIndent)
}
