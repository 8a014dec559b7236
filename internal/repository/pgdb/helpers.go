package pgdb

import (
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// postgresDuplicate сообщает, нарушено ли уникальное ограничение.
func postgresDuplicate(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// validID отсекает строки, которые PostgreSQL не примет как uuid.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
