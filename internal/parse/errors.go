package parse

import (
	"errors"
	"fmt"
)

// FailureKind distinguishes the terminal ways a parse can fail. Every
// failure the pipeline returns carries exactly one kind; nothing is ever
// downgraded to a partial result.
type FailureKind string

const (
	// KindValidationRejected: the input text is not a workout. User error,
	// not retryable, and guaranteed to have caused no side effects.
	KindValidationRejected FailureKind = "validation_rejected"

	// KindExtractionFailed: the oracle's structured output was unusable.
	KindExtractionFailed FailureKind = "extraction_failed"

	// KindResolutionFailed: a placeholder exercise name could not be matched
	// or created. The whole parse fails; an incomplete exercise reference is
	// never accepted.
	KindResolutionFailed FailureKind = "resolution_failed"

	// KindSchemaRepairExhausted: the syntax repair loop hit its iteration
	// cap without converging.
	KindSchemaRepairExhausted FailureKind = "schema_repair_exhausted"

	// KindSemanticRepairExhausted: the semantic repair loop hit its
	// iteration cap without converging.
	KindSemanticRepairExhausted FailureKind = "semantic_repair_exhausted"

	// KindPersistenceFailed: the transactional write was rolled back.
	KindPersistenceFailed FailureKind = "persistence_failed"
)

// ParseError is the terminal failure of one parse request.
type ParseError struct {
	Kind   FailureKind
	Reason string // user-facing explanation, may be empty
	Err    error  // underlying cause, may be nil
}

func (e *ParseError) Error() string {
	switch {
	case e.Reason != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Reason, e.Err)
	case e.Reason != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return string(e.Kind)
}

func (e *ParseError) Unwrap() error { return e.Err }

// failf builds a ParseError with a formatted reason.
func failf(kind FailureKind, err error, format string, args ...any) *ParseError {
	return &ParseError{Kind: kind, Reason: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the failure kind of err, or "" if err is not a ParseError.
func KindOf(err error) FailureKind {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}

// UserFacing reports whether the failure is the caller's fault (bad input)
// rather than an upstream or internal failure.
func UserFacing(err error) bool {
	return KindOf(err) == KindValidationRejected
}
