package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/keepaway/internal/ir"
)

// RegistryError represents an error detected while constructing or scoring
// a registry. There are no runtime errors during Step.
//
// RegistryError includes structured fields for diagnostics.
type RegistryError struct {
	// Code identifies the error category.
	Code RegistryErrorCode

	// Message is a human-readable description.
	Message string

	// WorkerID identifies the offending worker, when there is one.
	WorkerID ir.WorkerID

	// Count is the number of workers involved (for score errors).
	Count int

	// Details contains additional context.
	Details map[string]string
}

// RegistryErrorCode categorizes registry errors.
type RegistryErrorCode string

const (
	// ErrCodeDuplicateWorker indicates two specs declare the same worker ID.
	ErrCodeDuplicateWorker RegistryErrorCode = "DUPLICATE_WORKER"

	// ErrCodeMalformedSpec indicates IDs are not contiguous from zero, a
	// divisor is not positive, a target is unknown, or the rules are invalid.
	ErrCodeMalformedSpec RegistryErrorCode = "MALFORMED_SPEC"

	// ErrCodeInsufficientWorkers indicates a score was requested with fewer
	// than two workers.
	ErrCodeInsufficientWorkers RegistryErrorCode = "INSUFFICIENT_WORKERS"
)

// Error implements the error interface.
func (e *RegistryError) Error() string {
	switch e.Code {
	case ErrCodeInsufficientWorkers:
		return fmt.Sprintf("%s: %s (workers=%d)", e.Code, e.Message, e.Count)
	case ErrCodeDuplicateWorker, ErrCodeMalformedSpec:
		if _, ok := e.Details["worker"]; ok {
			return fmt.Sprintf("%s: %s (worker=%d)", e.Code, e.Message, e.WorkerID)
		}
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func hasCode(err error, code RegistryErrorCode) bool {
	var re *RegistryError
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}

// IsDuplicateWorkerError returns true if err is a duplicate worker error.
// Uses errors.As to handle wrapped errors.
func IsDuplicateWorkerError(err error) bool {
	return hasCode(err, ErrCodeDuplicateWorker)
}

// IsMalformedSpecError returns true if err is a malformed spec error.
// Uses errors.As to handle wrapped errors.
func IsMalformedSpecError(err error) bool {
	return hasCode(err, ErrCodeMalformedSpec)
}

// IsInsufficientWorkersError returns true if err is an insufficient workers
// error. Uses errors.As to handle wrapped errors.
func IsInsufficientWorkersError(err error) bool {
	return hasCode(err, ErrCodeInsufficientWorkers)
}

// NewDuplicateWorkerError creates a RegistryError for a repeated worker ID.
func NewDuplicateWorkerError(id ir.WorkerID) *RegistryError {
	return &RegistryError{
		Code:     ErrCodeDuplicateWorker,
		Message:  "worker id declared more than once",
		WorkerID: id,
		Details:  map[string]string{"worker": fmt.Sprintf("%d", id)},
	}
}

// NewMalformedSpecError creates a RegistryError for a spec that violates a
// construction invariant of the given worker.
func NewMalformedSpecError(id ir.WorkerID, message string) *RegistryError {
	return &RegistryError{
		Code:     ErrCodeMalformedSpec,
		Message:  message,
		WorkerID: id,
		Details:  map[string]string{"worker": fmt.Sprintf("%d", id)},
	}
}

// newSpecListError creates a malformed spec error that is not tied to one
// worker (e.g. the divisors' least common multiple overflows).
func newSpecListError(message string) *RegistryError {
	return &RegistryError{
		Code:    ErrCodeMalformedSpec,
		Message: message,
	}
}

// NewInsufficientWorkersError creates a RegistryError for scoring a registry
// with fewer than two workers.
func NewInsufficientWorkersError(count int) *RegistryError {
	return &RegistryError{
		Code:    ErrCodeInsufficientWorkers,
		Message: "score needs at least two workers",
		Count:   count,
		Details: map[string]string{"workers": fmt.Sprintf("%d", count)},
	}
}
