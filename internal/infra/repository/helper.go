package repository

import (
	"errors"

	"seatwise/internal/infra"
	"seatwise/internal/pkg/pgconv"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgErrCodeUniqueViolation     = "23505"
	pgErrCodeForeignKeyViolation = "23503"
)

// classifyErr maps low-level pgx errors to RepositoryError kinds so callers
// never have to inspect pg error codes themselves.
func classifyErr(msg string, err error) error {
	switch {
	case pgconv.IsNoRows(err):
		return infra.WrapRepoErr(msg, err, infra.KindNotFound)
	case isPgCode(err, pgErrCodeUniqueViolation):
		return infra.WrapRepoErr(msg, err, infra.KindDuplicateKey)
	case isPgCode(err, pgErrCodeForeignKeyViolation):
		return infra.WrapRepoErr(msg, err, infra.KindConflict)
	default:
		return infra.WrapRepoErr(msg, err)
	}
}

func isPgCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
