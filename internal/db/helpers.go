package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// QueryRower is satisfied by both *sql.DB and *sql.Tx.
type QueryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// NullIfEmpty helps store optional strings as NULL.
func NullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// HasTable checks the active schema (DATABASE()) for a table.
func HasTable(ctx context.Context, q QueryRower, table string) bool {
	var name sql.NullString
	err := q.QueryRowContext(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = DATABASE()
		  AND table_name = ?
		LIMIT 1
	`, table).Scan(&name)
	if err != nil {
		return false
	}
	return name.Valid && name.String != ""
}

// LookupRoutine checks the active schema for a stored function or procedure.
// A failed lookup is returned as an error, never as "absent".
func LookupRoutine(ctx context.Context, q QueryRower, routine string) (bool, error) {
	var name sql.NullString
	err := q.QueryRowContext(ctx, `
		SELECT routine_name
		FROM information_schema.routines
		WHERE routine_schema = DATABASE()
		  AND routine_name = ?
		LIMIT 1
	`, routine).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup routine %s: %w", routine, err)
	}
	return name.Valid && name.String != "", nil
}

// HasRoutine is LookupRoutine for callers that treat errors as absence.
func HasRoutine(ctx context.Context, q QueryRower, routine string) bool {
	ok, err := LookupRoutine(ctx, q, routine)
	return err == nil && ok
}
