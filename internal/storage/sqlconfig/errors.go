package sqlconfig

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

var (
	// ErrNotFound is returned when no live row matches the owner and id.
	ErrNotFound = errors.New("row not found")
	// ErrDuplicateOccurrence is returned when a template already produced a
	// transaction for the occurrence date, including one that was deleted since.
	ErrDuplicateOccurrence = errors.New("occurrence already materialized")
	// ErrConflict is returned when a row changed between the read an update was
	// computed from and the update itself.
	ErrConflict = errors.New("row changed concurrently")
)

const (
	uniqueViolation          = "23505"
	templateOccurrenceUnique = "transactions_template_occurrence_key"
)

func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation && pqErr.Constraint == templateOccurrenceUnique {
		return ErrDuplicateOccurrence
	}
	return err
}
