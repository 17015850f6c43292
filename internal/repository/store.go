package repository

import (
	"context"
	"database/sql"

	"github.com/huandu/go-sqlbuilder"
)

// Store is the subset of *sqlx.DB the repositories need. Keeping it small
// lets tests substitute an in-memory fake for the connection pool.
type Store interface {
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// flavor is the SQL dialect every builder in this package targets.
var flavor = sqlbuilder.MySQL

// contains wraps s in LIKE wildcards for substring matching.
func contains(s string) string {
	return "%" + s + "%"
}
