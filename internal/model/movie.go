package model

// MovieRow is a movie joined to its category, as returned by the title search
// and the full listing. Nullable columns are pointers so SQL NULL renders as
// JSON null.
type MovieRow struct {
	Title    string  `db:"title" json:"title"`
	Year     *int    `db:"year" json:"year"`
	Duration *int    `db:"duration" json:"duration"`
	Summary  *string `db:"summary" json:"summary"`
	Category *string `db:"category" json:"category"`
}

// GenreMovieRow is the genre search shape. The release year keeps its column
// name here rather than the "year" alias used by MovieRow.
type GenreMovieRow struct {
	Title       string  `db:"title" json:"title"`
	ReleaseYear *int    `db:"release_year" json:"release_year"`
	Duration    *int    `db:"duration" json:"duration"`
	Summary     *string `db:"summary" json:"summary"`
	Category    *string `db:"category" json:"category"`
}

// MovieRatingRow aggregates the ratings of one movie.
//
// Genres is the comma separated GROUP_CONCAT of distinct genre names.
type MovieRatingRow struct {
	MovieID       uint64  `db:"movie_id" json:"movie_id"`
	Title         string  `db:"title" json:"title"`
	AverageRating float64 `db:"average_rating" json:"average_rating"`
	UserCount     int64   `db:"user_count" json:"user_count"`
	Genres        *string `db:"genres" json:"genres"`
	Category      *string `db:"category" json:"category"`
}
