// Package errs defines the error taxonomy shared across the planning pipeline.
// Errors fall into three families: schema errors (the caller sent or the
// extractor produced something unusable), upstream errors (an external service
// failed after retries), and translation errors (we could not turn a valid
// plan into an optimizer request). HTTP handlers map each family to a status
// code; everything else wraps with fmt.Errorf("%w") as usual.
package errs

import (
	"errors"
	"fmt"
)

// Service names used in UpstreamError, also used as log fields.
const (
	ServiceExtractor = "extractor"
	ServiceGeocoder  = "geocoder"
	ServiceOptimizer = "optimizer"
	ServiceRouting   = "routing"
)

// SchemaError indicates the request payload or the extracted plan violates the
// plan schema. Always a client-visible 400.
type SchemaError struct {
	Reason string
	Err    error
}

func (e *SchemaError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("schema violation: %s: %v", e.Reason, e.Err)
	}
	return "schema violation: " + e.Reason
}

func (e *SchemaError) Unwrap() error { return e.Err }

// NewSchemaError wraps err (may be nil) with a human-readable reason.
func NewSchemaError(reason string, err error) *SchemaError {
	return &SchemaError{Reason: reason, Err: err}
}

// UpstreamError indicates an external dependency failed after the retry policy
// was exhausted. Service identifies which one. Maps to 502.
type UpstreamError struct {
	Service string
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s: %v", e.Service, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// NewUpstreamError tags err with the upstream service that produced it.
// If err is already an UpstreamError it is returned unchanged so the
// original service attribution survives layered wrapping.
func NewUpstreamError(service string, err error) error {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return err
	}
	return &UpstreamError{Service: service, Err: err}
}

// TranslationError indicates a structurally valid plan could not be turned
// into an optimizer request (for example an agent whose start address never
// geocoded). Maps to 500.
type TranslationError struct {
	Stage string
	Err   error
}

func (e *TranslationError) Error() string {
	return fmt.Sprintf("translating plan (%s): %v", e.Stage, e.Err)
}

func (e *TranslationError) Unwrap() error { return e.Err }

func NewTranslationError(stage string, err error) *TranslationError {
	return &TranslationError{Stage: stage, Err: err}
}

// IsSchema reports whether err is (or wraps) a SchemaError.
func IsSchema(err error) bool {
	var se *SchemaError
	return errors.As(err, &se)
}

// IsUpstream reports whether err is (or wraps) an UpstreamError, returning
// the offending service name when it is.
func IsUpstream(err error) (string, bool) {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.Service, true
	}
	return "", false
}
