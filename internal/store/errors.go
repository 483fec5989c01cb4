// Package store implements Postgres-backed access to the venue catalog,
// official sources, and the candidate sink, including the degraded-schema
// and timeout recovery behavior of the venue pager.
package store

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrorClass buckets backend failures into the recovery policies the pager
// understands. Everything the classifier cannot place is ClassOther.
type ErrorClass int

// Recognized error classes.
const (
	ClassOther ErrorClass = iota
	ClassSchemaNotReady
	ClassMissingColumn
	ClassStatementTimeout
)

// BackendError is the classified form of a backend failure. Column is set
// only for ClassMissingColumn.
type BackendError struct {
	Class  ErrorClass
	Column string
	Err    error
}

func (e BackendError) Error() string {
	return e.Err.Error()
}

func (e BackendError) Unwrap() error {
	return e.Err
}

var missingColumnRe = regexp.MustCompile(`column "?([A-Za-z0-9_.]+)"? does not exist`)

// ClassifyError maps a raw backend error onto the retry/degrade taxonomy.
// The string matching is confined here so the policies in the pager stay
// unit-testable without a live backend.
func ClassifyError(err error) BackendError {
	if err == nil {
		return BackendError{Class: ClassOther}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "42703": // undefined_column
			col := parseMissingColumn(pgErr.Message)
			return BackendError{Class: ClassMissingColumn, Column: col, Err: err}
		case "57014": // query_canceled (statement_timeout)
			return BackendError{Class: ClassStatementTimeout, Err: err}
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "does not exist") && strings.Contains(msg, "column"):
		return BackendError{Class: ClassMissingColumn, Column: parseMissingColumn(err.Error()), Err: err}
	case strings.Contains(msg, "schema cache") || strings.Contains(msg, "schema not ready") || strings.Contains(msg, "pgrst"):
		return BackendError{Class: ClassSchemaNotReady, Err: err}
	case errors.Is(err, context.DeadlineExceeded),
		strings.Contains(msg, "statement timeout"),
		strings.Contains(msg, "timeout"):
		return BackendError{Class: ClassStatementTimeout, Err: err}
	default:
		return BackendError{Class: ClassOther, Err: err}
	}
}

func parseMissingColumn(msg string) string {
	m := missingColumnRe.FindStringSubmatch(msg)
	if len(m) < 2 {
		return ""
	}
	// Errors may qualify the column ("venues.short_code"); keep the bare name.
	col := m[1]
	if i := strings.LastIndex(col, "."); i >= 0 {
		col = col[i+1:]
	}
	return col
}
