package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNoActivityRecords is returned when a batch has no flight activity.
	ErrNoActivityRecords = errors.New("no flight activity records in batch")

	// ErrNoHistoryRecords is returned when a batch has no loyalty history.
	ErrNoHistoryRecords = errors.New("no loyalty history records in batch")
)

// SchemaError is a fatal input-schema failure naming the offending column.
type SchemaError struct {
	Column string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema error on column %q: %s", e.Column, e.Reason)
}

// NewMissingColumnError reports a required column absent from the input.
func NewMissingColumnError(column string) error {
	return &SchemaError{Column: column, Reason: "required column is missing"}
}

// NewBadValueError reports an irrecoverable value in a required column.
func NewBadValueError(column string, row int, value string) error {
	return &SchemaError{
		Column: column,
		Reason: fmt.Sprintf("row %d has irrecoverable value %q", row, value),
	}
}
