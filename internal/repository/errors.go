package repository

import (
	"errors"

	"github.com/lib/pq"
)

// ErrDuplicateRegistration is returned when a student already holds an active
// registration for the section.
var ErrDuplicateRegistration = errors.New("duplicate active registration")

// ErrSectionFull is returned when the conditional seat increment matched no row.
var ErrSectionFull = errors.New("section has no open seat")

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolation
	}
	return false
}
