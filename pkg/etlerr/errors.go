// Package etlerr classifies the failures of a regional ETL cycle.
//
// Components return *Error values tagged with a Kind. The orchestrator inspects
// the kind with KindOf to decide on compensation, logs the original cause, and
// then reports ErrRegionFailed to its caller.
package etlerr

import (
	"errors"
	"fmt"
)

// Kind identifies a class of ETL failure.
type Kind string

const (
	// KindRegionResolution means no endpoint could be resolved for the region.
	KindRegionResolution Kind = "region_resolution"
	// KindExtraction covers any other inventory API failure (auth, throttling, network).
	KindExtraction Kind = "extraction"
	// KindParsing means the raw inventory result is missing fields or has the wrong shape.
	KindParsing Kind = "parsing"
	// KindInternal means an unexpected fault while transforming instance data.
	KindInternal Kind = "internal"
	// KindPersistence means the snapshot could not be written.
	KindPersistence Kind = "persistence"
	// KindRegionList means the region list could not be read. Fatal for the run.
	KindRegionList Kind = "region_list"
	// KindUnknown is reported for errors that carry no Kind.
	KindUnknown Kind = "unknown"
)

// ErrRegionFailed is the uniform signal for a failed regional ETL cycle.
var ErrRegionFailed = errors.New("region ETL failed")

// Error is a classified ETL failure.
type Error struct {
	Kind   Kind
	Region string // empty for run-level failures
	Op     string // operation that failed, e.g. "describe instances"
	Err    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Kind, e.Op)
	if e.Region != "" {
		msg = fmt.Sprintf("[%s] region %s: %s", e.Kind, e.Region, e.Op)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for errors.Is and errors.As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a classified error.
func New(kind Kind, region, op string, err error) *Error {
	return &Error{
		Kind:   kind,
		Region: region,
		Op:     op,
		Err:    err,
	}
}

// Parsing is shorthand for New(KindParsing, ...).
func Parsing(region, op string, err error) *Error {
	return New(KindParsing, region, op, err)
}

// Internal is shorthand for New(KindInternal, ...).
func Internal(region, op string, err error) *Error {
	return New(KindInternal, region, op, err)
}

// Persistence is shorthand for New(KindPersistence, ...).
func Persistence(region, op string, err error) *Error {
	return New(KindPersistence, region, op, err)
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
