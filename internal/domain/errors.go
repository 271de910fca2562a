package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidFormat = errors.New("invalid file format")
	ErrValidation    = errors.New("validation failed")
	ErrNotFound      = errors.New("not found")
	ErrInvalidScope  = errors.New("invalid scope")
	ErrInvalidPhase  = errors.New("invalid phase")
	ErrStorage       = errors.New("storage error")
)

// RowError describes one rejected spreadsheet row. Row is the 1-based line
// of the uploaded file (the sheet row number for xlsx).
type RowError struct {
	Row    int    `json:"row"`
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e RowError) String() string {
	return fmt.Sprintf("row %d: %s %s", e.Row, e.Field, e.Reason)
}

type ValidationError struct {
	Rows []RowError
}

func (e *ValidationError) Error() string {
	if len(e.Rows) == 0 {
		return ErrValidation.Error()
	}
	parts := make([]string, 0, len(e.Rows))
	for i, r := range e.Rows {
		if i == 5 {
			parts = append(parts, fmt.Sprintf("and %d more", len(e.Rows)-i))
			break
		}
		parts = append(parts, r.String())
	}
	return fmt.Sprintf("%s: batch rejected: %s", ErrValidation, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

type storageError struct {
	op  string
	err error
}

func (e *storageError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.op, e.err)
}

func (e *storageError) Unwrap() []error {
	return []error{ErrStorage, e.err}
}

// StorageError tags err as a storage failure while keeping it inspectable.
func StorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &storageError{op: op, err: err}
}
