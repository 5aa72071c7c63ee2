// Copyright 2025 The VendorSearch Authors
// SPDX-License-Identifier: Apache-2.0

package vendors

import (
	"errors"
	"fmt"
	"net/http"
)

// SearchError is returned by the Service for rejected or failed searches.
type SearchError struct {
	Type    ErrorType
	Message string
	Err     error
}

// ErrorType classifies a SearchError.
type ErrorType int

const (
	// ErrorTypeUnknown unclassified failure.
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeValidation empty or oversized text input.
	ErrorTypeValidation
	// ErrorTypeOutOfRange coordinates outside the valid domain.
	ErrorTypeOutOfRange
	// ErrorTypeDataAccess the store is unreachable or a query failed.
	ErrorTypeDataAccess
)

func (t ErrorType) String() string {
	switch t {
	case ErrorTypeValidation:
		return "validation"
	case ErrorTypeOutOfRange:
		return "out_of_range"
	case ErrorTypeDataAccess:
		return "data_access"
	default:
		return "unknown"
	}
}

func (e *SearchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *SearchError) Unwrap() error {
	return e.Err
}

func validationError(msg string) *SearchError {
	return &SearchError{Type: ErrorTypeValidation, Message: msg}
}

func outOfRangeError(format string, args ...any) *SearchError {
	return &SearchError{Type: ErrorTypeOutOfRange, Message: fmt.Sprintf(format, args...)}
}

func dataAccessError(msg string, err error) *SearchError {
	return &SearchError{Type: ErrorTypeDataAccess, Message: msg, Err: err}
}

func errorType(err error) ErrorType {
	var searchErr *SearchError
	if errors.As(err, &searchErr) {
		return searchErr.Type
	}

	return ErrorTypeUnknown
}

// IsValidationError reports whether err rejects the caller's input, including
// out of range coordinates.
func IsValidationError(err error) bool {
	t := errorType(err)

	return t == ErrorTypeValidation || t == ErrorTypeOutOfRange
}

// IsOutOfRangeError reports whether err is caused by invalid coordinates.
func IsOutOfRangeError(err error) bool {
	return errorType(err) == ErrorTypeOutOfRange
}

// IsDataAccessError reports whether err comes from the underlying store.
func IsDataAccessError(err error) bool {
	return errorType(err) == ErrorTypeDataAccess
}

// HTTPStatus maps an error returned by the Service to an HTTP status code.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case IsValidationError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
