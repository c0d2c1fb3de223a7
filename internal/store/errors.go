package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

var (
	// ErrNotFound is returned when a lookup by id matches no row.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a write violates a unique or foreign key constraint.
	ErrConflict = errors.New("conflict")

	// ErrDuplicateOrderNumber is returned when a concurrent creation already
	// took the generated order number. Callers should retry the request.
	ErrDuplicateOrderNumber = errors.New("order number already taken, retry the request")
)

// PostgreSQL error codes
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

const orderNumberConstraint = "orders_order_number_key"

// ConstraintError carries the violated constraint for callers that want to
// turn it into a field error.
type ConstraintError struct {
	Constraint string
	Detail     string
	err        error
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("%s: constraint %s: %s", e.err, e.Constraint, e.Detail)
}

func (e *ConstraintError) Unwrap() error {
	return e.err
}

// translateError maps driver errors onto the package's sentinel errors.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}

	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	switch pqErr.Code {
	case pgUniqueViolation:
		if pqErr.Constraint == orderNumberConstraint {
			return ErrDuplicateOrderNumber
		}
		return &ConstraintError{Constraint: pqErr.Constraint, Detail: pqErr.Detail, err: ErrConflict}
	case pgForeignKeyViolation, pgCheckViolation:
		return &ConstraintError{Constraint: pqErr.Constraint, Detail: pqErr.Detail, err: ErrConflict}
	}
	return err
}

// expectAffected turns a write that matched no row into ErrNotFound.
func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
