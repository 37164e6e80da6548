package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Categories are the second segment of an error code.
const (
	CategoryArgs    = "ARGS"
	CategoryData    = "DATA"
	CategoryStorage = "STOR"
)

// DomainError is an error with a stable code, optionally bound to the
// storage key it concerns.
type DomainError struct {
	Code    string // e.g. "PV-DATA-4220"
	Message string
	Key     string // storage key, empty when not key specific
	Details string
	Cause   error
}

// New creates a DomainError.
func New(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// Error formats as `[CODE] message (key "k"): details: cause`.
func (e *DomainError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.Code, e.Message)
	if e.Key != "" {
		fmt.Fprintf(&b, " (key %q)", e.Key)
	}
	if e.Details != "" {
		b.WriteString(": " + e.Details)
	}
	if e.Cause != nil {
		b.WriteString(": " + e.Cause.Error())
	}
	return b.String()
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is matches any DomainError with the same code, so the exported
// sentinels match their keyed and wrapped copies.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && e.Code == t.Code
}

// Category returns the code's category, such as CategoryData.
func (e *DomainError) Category() string {
	parts := strings.SplitN(e.Code, "-", 3)
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

// WithKey returns a copy bound to key.
func (e *DomainError) WithKey(key string) *DomainError {
	c := *e
	c.Key = key
	return &c
}

// WithDetails returns a copy with details.
func (e *DomainError) WithDetails(details string) *DomainError {
	c := *e
	c.Details = details
	return &c
}

// Wrap returns a copy wrapping cause.
func (e *DomainError) Wrap(cause error) *DomainError {
	c := *e
	c.Cause = cause
	return &c
}

// CodeOf returns the code of the first DomainError in err's chain, or "".
func CodeOf(err error) string {
	if de, ok := as(err); ok {
		return de.Code
	}
	return ""
}

// KeyOf returns the storage key of the first DomainError in err's chain,
// or "".
func KeyOf(err error) string {
	if de, ok := as(err); ok {
		return de.Key
	}
	return ""
}

// CategoryOf returns the category of the first DomainError in err's
// chain, or "".
func CategoryOf(err error) string {
	if de, ok := as(err); ok {
		return de.Category()
	}
	return ""
}

func as(err error) (*DomainError, bool) {
	var de *DomainError
	ok := errors.As(err, &de)
	return de, ok
}

var (
	// ErrInvalidKey indicates an empty storage key.
	ErrInvalidKey = New("PV-ARGS-4000", "invalid storage key")
)

var (
	// ErrDeserialization indicates persisted bytes are not a valid encoding
	// of the store's value type.
	ErrDeserialization = New("PV-DATA-4220", "cannot decode persisted value")

	// ErrSerialization indicates a value could not be encoded.
	ErrSerialization = New("PV-DATA-4221", "cannot encode value")
)

var (
	// ErrPersistenceWrite indicates the backend rejected a write.
	ErrPersistenceWrite = New("PV-STOR-5000", "persistence write failed")

	// ErrPersistenceUnavailable indicates no usable backend is present.
	ErrPersistenceUnavailable = New("PV-STOR-5030", "persistence backend unavailable")

	// ErrStoreClosed indicates an operation on a closed store.
	ErrStoreClosed = New("PV-STOR-5031", "store closed")
)
