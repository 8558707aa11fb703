package httperr

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const sqlStateExclusionViolation = "23P01"

// IsExclusionConflict reports whether err is a postgres exclusion
// constraint violation, raised when two active appointments overlap.
func IsExclusionConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == sqlStateExclusionViolation
	}
	return false
}
