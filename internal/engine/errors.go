package engine

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMalformedInterval marks a time window with start >= end or off the hour grid.
	ErrMalformedInterval = errors.New("malformed interval")
	// ErrDegreeMismatch marks a group that lists a subject of another degree.
	ErrDegreeMismatch = errors.New("degree mismatch")
	// ErrInvalidCatalog marks any other structurally invalid snapshot.
	ErrInvalidCatalog = errors.New("invalid catalog")
	// ErrRejectedSchedule is returned when a solved schedule fails re-validation.
	ErrRejectedSchedule = errors.New("scheduler output rejected by validator")
)

// InputErrorKind classifies structural problems found while compiling a catalog.
type InputErrorKind string

const (
	KindMalformedInterval InputErrorKind = "MALFORMED_INTERVAL"
	KindMalformedShift    InputErrorKind = "MALFORMED_SHIFT"
	KindDuplicateID       InputErrorKind = "DUPLICATE_ID"
	KindUnknownReference  InputErrorKind = "UNKNOWN_REFERENCE"
	KindInvalidSubject    InputErrorKind = "INVALID_SUBJECT"
	KindDegreeMismatch    InputErrorKind = "DEGREE_MISMATCH"
)

// InputError is a hard failure raised before any search begins.
type InputError struct {
	Kind   InputErrorKind
	Entity string
	IDs    []string
	Detail string
}

func (e *InputError) Error() string {
	var b strings.Builder
	b.WriteString(strings.ToLower(strings.ReplaceAll(string(e.Kind), "_", " ")))
	if e.Entity != "" {
		fmt.Fprintf(&b, " in %s", e.Entity)
	}
	if len(e.IDs) > 0 {
		fmt.Fprintf(&b, " [%s]", strings.Join(e.IDs, ", "))
	}
	if e.Detail != "" {
		fmt.Fprintf(&b, ": %s", e.Detail)
	}
	return b.String()
}

// Unwrap exposes the sentinel matching the error kind.
func (e *InputError) Unwrap() error {
	switch e.Kind {
	case KindMalformedInterval, KindMalformedShift:
		return ErrMalformedInterval
	case KindDegreeMismatch:
		return ErrDegreeMismatch
	default:
		return ErrInvalidCatalog
	}
}

func inputError(kind InputErrorKind, entity, detail string, ids ...string) *InputError {
	return &InputError{Kind: kind, Entity: entity, IDs: ids, Detail: detail}
}
