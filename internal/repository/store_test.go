package repository

import (
	"context"
	"database/sql"
	"reflect"
)

type call struct {
	query string
	args  []any
}

// fakeStore records every statement and answers from canned values.
type fakeStore struct {
	calls []call

	rows   any   // assigned to the SelectContext destination
	row    any   // assigned to the GetContext destination
	err    error // returned by every method when set
	getErr error // returned by GetContext only
	lastID int64
}

func (f *fakeStore) record(q string, args []any) {
	f.calls = append(f.calls, call{query: q, args: args})
}

func (f *fakeStore) SelectContext(_ context.Context, dest any, q string, args ...any) error {
	f.record(q, args)
	if f.err != nil {
		return f.err
	}
	if f.rows != nil {
		reflect.ValueOf(dest).Elem().Set(reflect.ValueOf(f.rows))
	}
	return nil
}

func (f *fakeStore) GetContext(_ context.Context, dest any, q string, args ...any) error {
	f.record(q, args)
	if f.err != nil {
		return f.err
	}
	if f.getErr != nil {
		return f.getErr
	}
	if f.row == nil {
		return sql.ErrNoRows
	}
	reflect.ValueOf(dest).Elem().Set(reflect.ValueOf(f.row))
	return nil
}

func (f *fakeStore) ExecContext(_ context.Context, q string, args ...any) (sql.Result, error) {
	f.record(q, args)
	if f.err != nil {
		return nil, f.err
	}
	return fakeResult{lastID: f.lastID, affected: 1}, nil
}

type fakeResult struct {
	lastID   int64
	affected int64
}

func (r fakeResult) LastInsertId() (int64, error) { return r.lastID, nil }
func (r fakeResult) RowsAffected() (int64, error) { return r.affected, nil }
