package model

// RatingRow is a single rating joined to the user who left it and the rated
// movie.
type RatingRow struct {
	UserID   uint64  `db:"user_id" json:"user_id"`
	UserName *string `db:"user_name" json:"user_name"`
	MovieID  uint64  `db:"movie_id" json:"movie_id"`
	Title    string  `db:"title" json:"title"`
	Rating   float64 `db:"rating" json:"rating"`
	Comment  *string `db:"comment" json:"comment"`
}
