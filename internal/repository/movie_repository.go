package repository

import (
	"context"

	"github.com/huandu/go-sqlbuilder"
	"github.com/pkg/errors"

	"github.com/iliyamo/movie-catalog/internal/model"
)

// MovieRepo runs the catalog queries over movies, their category and genres.
type MovieRepo struct {
	db Store
}

// NewMovieRepo constructs a MovieRepo with the provided store.
func NewMovieRepo(db Store) *MovieRepo {
	return &MovieRepo{db: db}
}

func movieSelect() *sqlbuilder.SelectBuilder {
	sb := flavor.NewSelectBuilder()
	sb.Select(
		"m.title",
		"m.release_year AS year",
		"m.duration",
		"m.summary",
		"c.name AS category",
	)
	sb.From("movies m")
	sb.Join("categorys c", "m.category_id = c.category_id")
	return sb
}

func searchByTitleQuery(title string) (string, []any) {
	sb := movieSelect()
	sb.Where(sb.Like("m.title", contains(title)))
	return sb.Build()
}

func listMoviesQuery() (string, []any) {
	return movieSelect().Build()
}

func searchByGenreQuery(name string) (string, []any) {
	sb := flavor.NewSelectBuilder()
	sb.Select("m.title", "m.release_year", "m.duration", "m.summary", "c.name AS category")
	sb.From("movies m")
	sb.Join("movie_genres mg", "m.movie_id = mg.movie_id")
	sb.Join("genres g", "mg.genre_id = g.genre_id")
	sb.Join("categorys c", "m.category_id = c.category_id")
	sb.Where(sb.Like("g.name", contains(name)))
	return sb.Build()
}

func minRatingQuery(minRating float64) (string, []any) {
	sb := flavor.NewSelectBuilder()
	sb.Select(
		"m.movie_id",
		"m.title",
		"ROUND(AVG(r.rating), 2) AS average_rating",
		"COUNT(r.user_id) AS user_count",
		"GROUP_CONCAT(DISTINCT g.name) AS genres",
		"c.name AS category",
	)
	sb.From("movies m")
	sb.Join("ratings r", "m.movie_id = r.movie_id")
	sb.Join("movie_genres mg", "m.movie_id = mg.movie_id")
	sb.Join("genres g", "mg.genre_id = g.genre_id")
	sb.Join("categorys c", "m.category_id = c.category_id")
	sb.GroupBy("m.movie_id", "m.title", "c.name")
	sb.Having(sb.GreaterEqualThan("average_rating", minRating))
	return sb.Build()
}

// SearchByTitle returns movies whose title contains title.
func (r *MovieRepo) SearchByTitle(ctx context.Context, title string) ([]model.MovieRow, error) {
	q, args := searchByTitleQuery(title)
	out := make([]model.MovieRow, 0)
	if err := r.db.SelectContext(ctx, &out, q, args...); err != nil {
		return nil, errors.Wrap(err, "search movies by title")
	}
	return out, nil
}

// ListAll returns every movie with its category.
func (r *MovieRepo) ListAll(ctx context.Context) ([]model.MovieRow, error) {
	q, args := listMoviesQuery()
	out := make([]model.MovieRow, 0)
	if err := r.db.SelectContext(ctx, &out, q, args...); err != nil {
		return nil, errors.Wrap(err, "list movies")
	}
	return out, nil
}

// SearchByGenre returns movies tagged with a genre whose name contains name.
// A movie appears once per matching genre.
func (r *MovieRepo) SearchByGenre(ctx context.Context, name string) ([]model.GenreMovieRow, error) {
	q, args := searchByGenreQuery(name)
	out := make([]model.GenreMovieRow, 0)
	if err := r.db.SelectContext(ctx, &out, q, args...); err != nil {
		return nil, errors.Wrap(err, "search movies by genre")
	}
	return out, nil
}

// ListByMinRating returns movies whose average rating is at least minRating.
// The caller is responsible for keeping minRating inside [0,5].
func (r *MovieRepo) ListByMinRating(ctx context.Context, minRating float64) ([]model.MovieRatingRow, error) {
	q, args := minRatingQuery(minRating)
	out := make([]model.MovieRatingRow, 0)
	if err := r.db.SelectContext(ctx, &out, q, args...); err != nil {
		return nil, errors.Wrap(err, "list movies by rating")
	}
	return out, nil
}
