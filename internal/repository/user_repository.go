package repository

import (
	"context"
	"database/sql"

	"github.com/go-sql-driver/mysql"
	"github.com/huandu/go-sqlbuilder"
	"github.com/pkg/errors"

	"github.com/iliyamo/movie-catalog/internal/model"
	"github.com/iliyamo/movie-catalog/internal/utils"
)

// UserRepo mirrors the 'users' table.
type UserRepo struct {
	db     Store
	hasher utils.PasswordHasher
}

func NewUserRepo(db Store, hasher utils.PasswordHasher) *UserRepo {
	return &UserRepo{db: db, hasher: hasher}
}

func userSelect() *sqlbuilder.SelectBuilder {
	sb := flavor.NewSelectBuilder()
	sb.Select("user_id", "user_name", "email", "is_active")
	sb.From("users")
	return sb
}

func listUsersQuery(activeOnly bool) (string, []any) {
	sb := userSelect()
	if activeOnly {
		sb.Where("is_active = TRUE")
	}
	return sb.Build()
}

func createUserQuery(u model.NewUser, passwordHash string) (string, []any) {
	ib := flavor.NewInsertBuilder()
	ib.InsertInto("users")
	ib.Cols("user_name", "email", "password", "is_active")
	ib.Values(u.UserName, u.Email, passwordHash, sqlbuilder.Raw("TRUE"))
	return ib.Build()
}

func contactQuery(id uint64) (string, []any) {
	sb := flavor.NewSelectBuilder()
	sb.Select("user_name", "email")
	sb.From("users")
	sb.Where(sb.Equal("user_id", id))
	return sb.Build()
}

func setActiveQuery(id uint64, active bool) (string, []any) {
	ub := flavor.NewUpdateBuilder()
	ub.Update("users")
	if active {
		ub.Set("is_active = TRUE")
	} else {
		ub.Set("is_active = FALSE")
	}
	ub.Where(ub.Equal("user_id", id))
	return ub.Build()
}

// ListAll returns every user without their password.
func (r *UserRepo) ListAll(ctx context.Context) ([]model.UserRow, error) {
	q, args := listUsersQuery(false)
	out := make([]model.UserRow, 0)
	if err := r.db.SelectContext(ctx, &out, q, args...); err != nil {
		return nil, errors.Wrap(err, "list users")
	}
	return out, nil
}

// ListActive returns users whose is_active flag is set.
func (r *UserRepo) ListActive(ctx context.Context) ([]model.UserRow, error) {
	q, args := listUsersQuery(true)
	out := make([]model.UserRow, 0)
	if err := r.db.SelectContext(ctx, &out, q, args...); err != nil {
		return nil, errors.Wrap(err, "list active users")
	}
	return out, nil
}

// Create inserts an active user and returns its ID. Uniqueness of name and
// email is left to the schema; a violation is reported as ErrDuplicateUser.
func (r *UserRepo) Create(ctx context.Context, u model.NewUser) (uint64, error) {
	hash, err := r.hasher.Hash(u.Password)
	if err != nil {
		return 0, errors.Wrap(err, "hash password")
	}
	q, args := createUserQuery(u, hash)
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		if isDuplicateKey(err) {
			return 0, errors.Wrap(ErrDuplicateUser, err.Error())
		}
		return 0, errors.Wrap(err, "insert user")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, errors.Wrap(err, "read inserted user id")
	}
	return uint64(id), nil
}

// isDuplicateKey reports MySQL error 1062 (ER_DUP_ENTRY).
func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}

// GetContact fetches the name and email of a user. It returns
// ErrUserNotFound when no row matches.
func (r *UserRepo) GetContact(ctx context.Context, id uint64) (model.UserContact, error) {
	q, args := contactQuery(id)
	var c model.UserContact
	if err := r.db.GetContext(ctx, &c, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.UserContact{}, ErrUserNotFound
		}
		return model.UserContact{}, errors.Wrap(err, "get user contact")
	}
	return c, nil
}

// SetActive writes the is_active flag unconditionally. Zero affected rows
// (unknown id, or the flag already had that value) is not an error.
func (r *UserRepo) SetActive(ctx context.Context, id uint64, active bool) error {
	q, args := setActiveQuery(id, active)
	if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
		return errors.Wrap(err, "update user activation")
	}
	return nil
}
