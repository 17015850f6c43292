// Package repository builds the parameterized statements behind every API
// route and runs them against a Store. Values supplied by clients only ever
// reach SQL as bound arguments.
package repository

import "errors"

// ErrUserNotFound is returned when a user id matches no row. Handlers
// translate it into an HTTP 404 response.
var ErrUserNotFound = errors.New("user not found")

// ErrDuplicateUser is returned when an insert violates a unique key on the
// users table.
var ErrDuplicateUser = errors.New("duplicate user")
