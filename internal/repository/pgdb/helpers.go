package pgdb

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE коды PostgreSQL
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

func postgresDuplicate(err error) bool {
	return hasPgCode(err, uniqueViolation)
}

func postgresForeignKey(err error) bool {
	return hasPgCode(err, foreignKeyViolation)
}

func hasPgCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
