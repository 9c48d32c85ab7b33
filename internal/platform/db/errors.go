package db

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/hospital/hms/internal/platform/apperr"
)

// Postgres SQLSTATE codes the repositories translate.
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
	checkViolation      = "23514"
	notNullViolation    = "23502"
)

// MapError translates store errors into the apperr taxonomy. entity names the
// row kind for not-found messages ("patient", "appointment").
func MapError(entity string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound(entity)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return apperr.Conflict(fmt.Sprintf("%s already exists", entity))
		case foreignKeyViolation:
			return apperr.Validation("%s references a record that does not exist", entity)
		case checkViolation, notNullViolation:
			return apperr.Validation("invalid %s: %s", entity, pgErr.Message)
		}
	}
	return fmt.Errorf("%s: %w", entity, err)
}

// IsUniqueViolation reports whether err is a Postgres unique constraint failure.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
