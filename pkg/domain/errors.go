package domain

import (
	"errors"
	"fmt"
)

// Common domain errors
var (
	// ErrValidation is returned when the conversion form is incomplete or invalid
	ErrValidation = errors.New("validation error")
	// ErrTransport is returned when a request to the rates service fails
	ErrTransport = errors.New("rates service request failed")
	// ErrDataAbsent is returned when the rates service answered but lacked the requested entry
	ErrDataAbsent = errors.New("exchange rate data not available")
	// ErrPersistence is returned by store backends when reading or writing fails
	ErrPersistence = errors.New("persistence failure")
	// ErrConversionInFlight is returned when a conversion is requested while another one runs
	ErrConversionInFlight = errors.New("a conversion is already in progress")
	// ErrControllerClosed is returned when the controller was torn down before a request completed
	ErrControllerClosed = errors.New("controller closed")
)

// ValidationError describes a form field that failed validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is reports ErrValidation so callers can match with errors.Is.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// TransportError represents a failed call to the rates service.
type TransportError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// DataAbsentError means the response lacked the requested date or currency.
type DataAbsentError struct {
	Date     string
	Currency string
}

func (e *DataAbsentError) Error() string {
	if e.Currency == "" {
		return fmt.Sprintf("no exchange rates for %s", e.Date)
	}
	return fmt.Sprintf("no exchange rate for %s on %s", e.Currency, e.Date)
}

func (e *DataAbsentError) Is(target error) bool {
	return target == ErrDataAbsent
}

// PersistenceError wraps a store backend failure.
type PersistenceError struct {
	Op  string
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("store %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

// IsTransportError checks if an error is a TransportError
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
