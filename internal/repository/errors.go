package repository

import (
	"errors"

	"github.com/lib/pq"
)

// ErrDuplicate signals a unique-constraint violation on insert. Services
// map it to their conflict semantics.
var ErrDuplicate = errors.New("duplicate record")

// uniqueViolation is the Postgres unique_violation error code.
const uniqueViolation = pq.ErrorCode("23505")

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
