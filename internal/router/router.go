// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/iliyamo/movie-catalog/internal/apperror"
	"github.com/iliyamo/movie-catalog/internal/handler"
	"github.com/iliyamo/movie-catalog/internal/middleware"
	"github.com/iliyamo/movie-catalog/internal/utils"
)

// Setup installs the validator, the envelope error handler and the global
// middleware chain on e. Requests pass through, outermost first: recover,
// request id, request logging, metrics, open CORS, body limit, then the
// extra middleware (the rate limiter in production).
func Setup(e *echo.Echo, log *zap.Logger, extra ...echo.MiddlewareFunc) {
	e.HideBanner = true
	e.HidePort = true
	e.Validator = utils.NewRequestValidator()
	e.HTTPErrorHandler = apperror.Handler(log)

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(log))
	e.Use(middleware.Metrics())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"*"},
	}))
	e.Use(echomw.BodyLimit("50M"))
	e.Use(extra...)
}

// RegisterRoutes registers operational endpoints: service info, health and
// Prometheus metrics.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/", handler.Info)
	e.GET("/healthz", handler.Health(db))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// RegisterCatalog registers the movie, director and rating lookups.
func RegisterCatalog(e *echo.Echo, h *handler.CatalogHandler) {
	e.GET("/movies", h.ListMovies)
	e.GET("/movies/search", h.SearchMovies)
	e.GET("/movies/by-genre", h.MoviesByGenre)
	e.GET("/movies/ratings", h.MoviesByRating)
	e.GET("/directors/search", h.SearchDirectors)
	e.GET("/ratings/get", h.ListRatings)
}

// RegisterUsers registers user listing, creation and activation toggles.
func RegisterUsers(e *echo.Echo, h *handler.UserHandler) {
	g := e.Group("/users")
	g.GET("", h.ListUsers)
	g.GET("/active", h.ListActiveUsers)
	g.POST("/create", h.CreateUser)
	g.PATCH("/deactivate", h.DeactivateUser)
	g.PATCH("/activate", h.ActivateUser)
}
