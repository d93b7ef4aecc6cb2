// Package storage provides the SQLite persistence layer for transfer records.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/birrflow/birrflow/internal/model"
)

// Validation errors.
var (
	ErrNilContext       = errors.New("context cannot be nil")
	ErrEmptyString      = errors.New("string parameter cannot be empty")
	ErrNilParameter     = errors.New("parameter cannot be nil")
	ErrInvalidDateRange = errors.New("start date must be before end date")
	ErrInvalidRecord    = errors.New("invalid transfer record")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateRecord checks the fields the transfers table cannot accept empty.
func validateRecord(record *model.TransferRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record", ErrNilParameter)
	}
	if record.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidRecord)
	}
	if record.UserID == "" {
		return fmt.Errorf("%w: missing user ID", ErrInvalidRecord)
	}
	if record.Reference == "" {
		return fmt.Errorf("%w: missing reference", ErrInvalidRecord)
	}
	if record.BankName == "" {
		return fmt.Errorf("%w: missing bank name", ErrInvalidRecord)
	}
	if record.Amount <= 0 {
		return fmt.Errorf("%w: non-positive amount", ErrInvalidRecord)
	}
	if !record.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidRecord, record.Status)
	}
	if record.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidRecord)
	}
	return nil
}
