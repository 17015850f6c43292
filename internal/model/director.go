package model

// DirectorRow is a director left-joined to one of their movies. Title is nil
// for directors without movies.
type DirectorRow struct {
	DirectorID uint64  `db:"director_id" json:"director_id"`
	FirstName  *string `db:"f_name" json:"f_name"`
	LastName   *string `db:"l_name" json:"l_name"`
	Title      *string `db:"title" json:"title"`
}
