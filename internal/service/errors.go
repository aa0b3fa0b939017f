package service

import (
	"errors"
	"net/http"
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// StatusError is a service failure with a user-visible detail message
// and the HTTP status it maps to.
type StatusError struct {
	Code   int
	Detail string
}

func (e *StatusError) Error() string {
	return e.Detail
}

func NewValidationError(detail string) *StatusError {
	return &StatusError{Code: http.StatusBadRequest, Detail: detail}
}

func NewConflictError(detail string) *StatusError {
	return &StatusError{Code: http.StatusBadRequest, Detail: detail}
}

func NewUnauthorizedError(detail string) *StatusError {
	return &StatusError{Code: http.StatusUnauthorized, Detail: detail}
}

func NewForbiddenError(detail string) *StatusError {
	return &StatusError{Code: http.StatusForbidden, Detail: detail}
}

func NewNotFoundError(detail string) *StatusError {
	return &StatusError{Code: http.StatusNotFound, Detail: detail}
}

func NewInternalError(detail string) *StatusError {
	return &StatusError{Code: http.StatusInternalServerError, Detail: detail}
}

// HTTPStatus extracts the status an error maps to, defaulting to 500.
func HTTPStatus(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code
	}
	return http.StatusInternalServerError
}

// isUniqueViolation reports whether err comes from a unique constraint.
// Insert races lose here instead of on the prior existence check, so the
// duplicate-key error must translate to the same conflict outcome.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return true
	}
	// sqlite (tests) reports constraint violations by message only
	return strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "duplicate key value")
}
