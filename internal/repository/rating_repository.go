package repository

import (
	"context"

	"github.com/pkg/errors"

	"github.com/iliyamo/movie-catalog/internal/model"
)

// RatingRepo reads individual user ratings.
type RatingRepo struct {
	db Store
}

func NewRatingRepo(db Store) *RatingRepo {
	return &RatingRepo{db: db}
}

func listRatingsQuery(movieID uint64) (string, []any) {
	sb := flavor.NewSelectBuilder()
	sb.Select("r.user_id", "u.user_name", "r.movie_id", "m.title", "r.rating", "r.comment")
	sb.From("ratings r")
	sb.Join("users u", "r.user_id = u.user_id")
	sb.Join("movies m", "r.movie_id = m.movie_id")
	if movieID != 0 {
		sb.Where(sb.Equal("r.movie_id", movieID))
	}
	sb.OrderBy("r.movie_id", "r.user_id")
	return sb.Build()
}

// List returns ratings, restricted to one movie when movieID is non-zero.
func (r *RatingRepo) List(ctx context.Context, movieID uint64) ([]model.RatingRow, error) {
	q, args := listRatingsQuery(movieID)
	out := make([]model.RatingRow, 0)
	if err := r.db.SelectContext(ctx, &out, q, args...); err != nil {
		return nil, errors.Wrap(err, "list ratings")
	}
	return out, nil
}
