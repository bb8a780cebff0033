package models

import (
	"errors"
	"fmt"
)

// ErrorType represents different categories of errors
type ErrorType int

const (
	ErrSchema ErrorType = iota
	ErrConfiguration
	ErrConstruction
	ErrLedger
	ErrFileOp
	ErrSigning
)

// ErrUnsupportedEncoding is wrapped by configuration errors raised when a
// document format cannot be serialized in the requested encoding.
var ErrUnsupportedEncoding = errors.New("unsupported encoding")

// String returns the string representation of ErrorType
func (e ErrorType) String() string {
	switch e {
	case ErrSchema:
		return "Schema"
	case ErrConfiguration:
		return "Configuration"
	case ErrConstruction:
		return "Construction"
	case ErrLedger:
		return "Ledger"
	case ErrFileOp:
		return "FileOp"
	case ErrSigning:
		return "Signing"
	default:
		return "Unknown"
	}
}

// SBOMError represents an error raised while turning a ledger record into an SBOM
type SBOMError struct {
	Type    ErrorType
	Subject string
	Err     error
}

// Error implements the error interface
func (e *SBOMError) Error() string {
	if e.Subject != "" {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Subject, e.Err)
	}
	return fmt.Sprintf("[%s] %v", e.Type, e.Err)
}

// Unwrap returns the wrapped error
func (e *SBOMError) Unwrap() error {
	return e.Err
}

// NewError builds an SBOMError with a formatted message.
func NewError(t ErrorType, subject, format string, args ...interface{}) error {
	return &SBOMError{Type: t, Subject: subject, Err: fmt.Errorf(format, args...)}
}

// IsType reports whether any error in err's chain is an SBOMError of type t.
func IsType(err error, t ErrorType) bool {
	var sErr *SBOMError
	if errors.As(err, &sErr) {
		if sErr.Type == t {
			return true
		}
		return IsType(sErr.Err, t)
	}
	return false
}
