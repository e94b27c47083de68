package service

import (
	"errors"
	"fmt"

	"entregas/storage"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrForbidden           = errors.New("forbidden")
	ErrInvalidInput        = errors.New("invalid input")
	ErrConflict            = errors.New("conflict")
	ErrAlreadyExists       = errors.New("already exists")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrDriverNotApproved   = errors.New("driver not approved")
	ErrBlocked             = errors.New("profile blocked")
	ErrInvalidCredentials  = errors.New("invalid email or password")
)

// FieldError describes one rejected input field. It matches ErrInvalidInput.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *FieldError) Is(target error) bool {
	return target == ErrInvalidInput
}

func invalid(field, msg string) error {
	return &FieldError{Field: field, Message: msg}
}

// mapStorageErr translates storage sentinels into service sentinels.
func mapStorageErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrNotFound):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case errors.Is(err, storage.ErrConflict):
		return fmt.Errorf("%s: %w", op, ErrConflict)
	case errors.Is(err, storage.ErrDuplicate):
		return fmt.Errorf("%s: %w", op, ErrAlreadyExists)
	case errors.Is(err, storage.ErrInsufficientFunds):
		return fmt.Errorf("%s: %w", op, ErrInsufficientBalance)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
