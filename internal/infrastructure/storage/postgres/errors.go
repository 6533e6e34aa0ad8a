package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/harpreet-2146/FM-demo-sub001/internal/core/apperror"
)

// SQLSTATE codes translated into application errors.
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
	checkViolation      = "23514"
)

// TranslateError maps constraint violations raised while writing entity to
// application errors. Other errors pass through unchanged.
func TranslateError(err error, entity string) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case uniqueViolation:
		return apperror.NewConflict(entity+" already exists").
			WithDetail("constraint", pgErr.ConstraintName).
			WithCause(err)
	case foreignKeyViolation:
		return apperror.NewInvalidArgument("referenced record does not exist").
			WithDetail("entity", entity).
			WithDetail("constraint", pgErr.ConstraintName).
			WithCause(err)
	case checkViolation:
		return apperror.NewInvariantViolation("%s violates %s: %w", entity, pgErr.ConstraintName, err)
	}
	return err
}

// IsNoRows reports whether err means the query matched nothing.
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
