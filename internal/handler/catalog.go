package handler

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-catalog/internal/apperror"
	"github.com/iliyamo/movie-catalog/internal/model"
)

// MovieFinder is implemented by *repository.MovieRepo.
type MovieFinder interface {
	SearchByTitle(ctx context.Context, title string) ([]model.MovieRow, error)
	ListAll(ctx context.Context) ([]model.MovieRow, error)
	SearchByGenre(ctx context.Context, name string) ([]model.GenreMovieRow, error)
	ListByMinRating(ctx context.Context, minRating float64) ([]model.MovieRatingRow, error)
}

// DirectorFinder is implemented by *repository.DirectorRepo.
type DirectorFinder interface {
	SearchByName(ctx context.Context, keyword string) ([]model.DirectorRow, error)
}

// RatingLister is implemented by *repository.RatingRepo.
type RatingLister interface {
	List(ctx context.Context, movieID uint64) ([]model.RatingRow, error)
}

// CatalogHandler serves the read-only movie, director and rating routes.
type CatalogHandler struct {
	Movies       MovieFinder
	Directors    DirectorFinder
	Ratings      RatingLister
	QueryTimeout time.Duration
}

// NewCatalogHandler panics if any dependency is nil.
func NewCatalogHandler(movies MovieFinder, directors DirectorFinder, ratings RatingLister, queryTimeout time.Duration) *CatalogHandler {
	if movies == nil || directors == nil || ratings == nil {
		panic("nil repository passed to NewCatalogHandler")
	}
	return &CatalogHandler{Movies: movies, Directors: directors, Ratings: ratings, QueryTimeout: queryTimeout}
}

type directorQuery struct {
	Keyword string `query:"keyword" validate:"required"`
}

type ratingsQuery struct {
	MovieID uint64 `query:"movie_id"`
}

// SearchMovies handles GET /movies/search?title=. An absent title matches
// every movie.
func (h *CatalogHandler) SearchMovies(c echo.Context) error {
	ctx, cancel := queryContext(c, h.QueryTimeout)
	defer cancel()

	rows, err := h.Movies.SearchByTitle(ctx, c.QueryParam("title"))
	if err != nil {
		return apperror.Store(err)
	}
	if len(rows) == 0 {
		return apperror.NotFound("No movies found")
	}
	return respondData(c, http.StatusOK, rows)
}

// MoviesByGenre handles GET /movies/by-genre?name=.
func (h *CatalogHandler) MoviesByGenre(c echo.Context) error {
	ctx, cancel := queryContext(c, h.QueryTimeout)
	defer cancel()

	rows, err := h.Movies.SearchByGenre(ctx, c.QueryParam("name"))
	if err != nil {
		return apperror.Store(err)
	}
	if len(rows) == 0 {
		return apperror.NotFound("No movies found for this genre")
	}
	return respondData(c, http.StatusOK, rows)
}

// ListMovies handles GET /movies. An empty catalog is still a 200.
func (h *CatalogHandler) ListMovies(c echo.Context) error {
	ctx, cancel := queryContext(c, h.QueryTimeout)
	defer cancel()

	rows, err := h.Movies.ListAll(ctx)
	if err != nil {
		return apperror.Store(err)
	}
	if rows == nil {
		rows = []model.MovieRow{}
	}
	return respondData(c, http.StatusOK, rows)
}

// MoviesByRating handles GET /movies/ratings?rating=. Only movies whose
// average rating is at least the given value are returned.
func (h *CatalogHandler) MoviesByRating(c echo.Context) error {
	minRating, verr := parseMinRating(c.QueryParam("rating"))
	if verr != nil {
		return verr
	}

	ctx, cancel := queryContext(c, h.QueryTimeout)
	defer cancel()

	rows, err := h.Movies.ListByMinRating(ctx, minRating)
	if err != nil {
		return apperror.Store(err)
	}
	if len(rows) == 0 {
		return apperror.NotFound("No movies found with the specified rating").WithStatus(model.StatusNotFound)
	}
	return respondData(c, http.StatusOK, rows)
}

// parseMinRating accepts a decimal number in [0,5], bounds included.
func parseMinRating(raw string) (float64, *apperror.Error) {
	v, err := strconv.ParseFloat(raw, 64)
	if raw == "" || err != nil {
		return 0, apperror.Validation("Rating query parameter is required")
	}
	if math.IsNaN(v) || v < 0 || v > 5 {
		return 0, apperror.Validation("Rating must be a float between 0 and 5")
	}
	return v, nil
}

// SearchDirectors handles GET /directors/search?keyword=.
func (h *CatalogHandler) SearchDirectors(c echo.Context) error {
	var q directorQuery
	if err := bindQuery(c, &q); err != nil {
		return apperror.Validation("Keyword is required")
	}
	if err := c.Validate(&q); err != nil {
		return apperror.Validation("Keyword is required")
	}

	ctx, cancel := queryContext(c, h.QueryTimeout)
	defer cancel()

	rows, err := h.Directors.SearchByName(ctx, q.Keyword)
	if err != nil {
		return apperror.Store(err)
	}
	if len(rows) == 0 {
		return apperror.NotFound("No directors found")
	}
	return respondData(c, http.StatusOK, rows)
}

// ListRatings handles GET /ratings/get with an optional movie_id filter.
func (h *CatalogHandler) ListRatings(c echo.Context) error {
	var q ratingsQuery
	if err := bindQuery(c, &q); err != nil {
		return apperror.Validation("movie_id must be a positive integer")
	}

	ctx, cancel := queryContext(c, h.QueryTimeout)
	defer cancel()

	rows, err := h.Ratings.List(ctx, q.MovieID)
	if err != nil {
		return apperror.Store(err)
	}
	if len(rows) == 0 {
		return apperror.NotFound("No ratings found")
	}
	return respondData(c, http.StatusOK, rows)
}
