package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingField        = errors.New("missing field")
	ErrInvalidFormat       = errors.New("invalid format")
	ErrOutOfRange          = errors.New("out of range")
	ErrMalformedInput      = errors.New("malformed input")
	ErrExternalFetchFailed = errors.New("external fetch failed")
	ErrNotFound            = errors.New("report not found")
	ErrMissingReviewer     = errors.New("reviewer_id is required")
	ErrInvalidStatus       = errors.New("invalid status")
)

var errorCodes = []struct {
	err  error
	code string
}{
	{ErrMissingField, "MissingField"},
	{ErrInvalidFormat, "InvalidFormat"},
	{ErrOutOfRange, "OutOfRange"},
	{ErrMalformedInput, "MalformedInput"},
	{ErrExternalFetchFailed, "ExternalFetchFailed"},
	{ErrNotFound, "NotFound"},
	{ErrMissingReviewer, "MissingReviewer"},
	{ErrInvalidStatus, "InvalidStatus"},
}

// ErrorCode returns the taxonomy name of err, or "Internal" when err does not
// wrap any of the package sentinels.
func ErrorCode(err error) string {
	for _, c := range errorCodes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return "Internal"
}

// FieldError names one offending input field.
type FieldError struct {
	Field   string `json:"field"`
	Kind    error  `json:"-"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e FieldError) Unwrap() error {
	return e.Kind
}

// ValidationError collects every field rejected while validating one record.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Error()
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() []error {
	errs := make([]error, len(e.Fields))
	for i, f := range e.Fields {
		errs[i] = f
	}
	return errs
}

func (e *ValidationError) add(field string, kind error, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Kind: kind, Message: message})
}

// RowFailure describes one record rejected during batch or external ingestion.
// Row is 1-based.
type RowFailure struct {
	Row        int
	DomainName string
	Err        error
}

func (f RowFailure) Reason() string {
	return f.Err.Error()
}

func (f RowFailure) Code() string {
	return ErrorCode(f.Err)
}
