package repository

import (
	"context"

	"github.com/huandu/go-sqlbuilder"
	"github.com/pkg/errors"

	"github.com/iliyamo/movie-catalog/internal/model"
)

// DirectorRepo looks up directors and the movies they directed.
type DirectorRepo struct {
	db Store
}

func NewDirectorRepo(db Store) *DirectorRepo {
	return &DirectorRepo{db: db}
}

func searchDirectorsQuery(keyword string) (string, []any) {
	sb := flavor.NewSelectBuilder()
	sb.Select("d.director_id", "d.f_name", "d.l_name", "m.title")
	sb.From("directors d")
	sb.JoinWithOption(sqlbuilder.LeftJoin, "movie_directors md", "d.director_id = md.director_id")
	sb.JoinWithOption(sqlbuilder.LeftJoin, "movies m", "md.movie_id = m.movie_id")
	pattern := contains(keyword)
	sb.Where(sb.Or(
		sb.Like("d.f_name", pattern),
		sb.Like("d.l_name", pattern),
	))
	return sb.Build()
}

// SearchByName returns one row per (director, movie) pair for directors
// whose first or last name contains keyword. Case sensitivity follows the
// column collation.
func (r *DirectorRepo) SearchByName(ctx context.Context, keyword string) ([]model.DirectorRow, error) {
	q, args := searchDirectorsQuery(keyword)
	out := make([]model.DirectorRow, 0)
	if err := r.db.SelectContext(ctx, &out, q, args...); err != nil {
		return nil, errors.Wrap(err, "search directors")
	}
	return out, nil
}
