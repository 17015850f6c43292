package model

// UserRow is a user as listed by the API. The password column is never
// selected. Name and email are nullable in the schema.
type UserRow struct {
	UserID   uint64  `db:"user_id" json:"user_id"`
	UserName *string `db:"user_name" json:"user_name"`
	Email    *string `db:"email" json:"email"`
	IsActive bool    `db:"is_active" json:"is_active"`
}

// UserContact is what the activation toggle reads before it writes.
type UserContact struct {
	UserName *string `db:"user_name"`
	Email    *string `db:"email"`
}

// Name returns the user name, or "" when it is NULL.
func (c UserContact) Name() string { return valueOrEmpty(c.UserName) }

// Address returns the email, or "" when it is NULL.
func (c UserContact) Address() string { return valueOrEmpty(c.Email) }

func valueOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// NewUser is the body accepted by user creation. Both JSON and urlencoded
// forms bind to it.
type NewUser struct {
	UserName string `json:"user_name" form:"user_name"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}
