package compiler

import (
	"fmt"

	"github.com/roach88/keepaway/internal/ir"
)

// Validation error codes (E100-E199)
const (
	ErrDuplicateWorkerID = "E101" // two workers share an id
	ErrNonContiguousIDs  = "E102" // ids do not cover 0..N-1
	ErrInvalidDivisor    = "E103" // divisor is zero or negative
	ErrUnknownTarget     = "E104" // routing target is not a declared worker
	ErrNoWorkers         = "E105" // worker list is empty
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a parsed worker list and returns every problem found
// (does not fail-fast). Errors are ordered by spec position, then by the
// order of the checks below.
func Validate(specs []ir.WorkerSpec) []ValidationError {
	if len(specs) == 0 {
		return []ValidationError{{
			Field:   "workers",
			Message: "at least one worker is required",
			Code:    ErrNoWorkers,
		}}
	}

	var errs []ValidationError
	n := len(specs)
	declared := make(map[ir.WorkerID]bool, n)

	for i, spec := range specs {
		field := fmt.Sprintf("workers[%d]", i)

		// E101: duplicate id
		if declared[spec.ID] {
			errs = append(errs, ValidationError{
				Field:   field + ".id",
				Message: fmt.Sprintf("worker %d is declared more than once", spec.ID),
				Code:    ErrDuplicateWorkerID,
			})
		}
		declared[spec.ID] = true

		// E103: divisor must be positive
		if spec.Routing.Divisor <= 0 {
			errs = append(errs, ValidationError{
				Field:   field + ".divisor",
				Message: fmt.Sprintf("divisor must be positive, got %d", spec.Routing.Divisor),
				Code:    ErrInvalidDivisor,
			})
		}

		// E104: targets must name a worker in 0..N-1
		for _, target := range []struct {
			name string
			id   ir.WorkerID
		}{
			{"if_true", spec.Routing.IfTrue},
			{"if_false", spec.Routing.IfFalse},
		} {
			if target.id < 0 || int(target.id) >= n {
				errs = append(errs, ValidationError{
					Field:   field + "." + target.name,
					Message: fmt.Sprintf("target %d does not exist (workers are 0..%d)", target.id, n-1),
					Code:    ErrUnknownTarget,
				})
			}
		}
	}

	// E102: ids must be exactly 0..N-1
	if missing := missingIDs(declared, n); len(missing) > 0 {
		errs = append(errs, ValidationError{
			Field:   "workers",
			Message: fmt.Sprintf("worker ids must be contiguous from 0 to %d; missing %v", n-1, missing),
			Code:    ErrNonContiguousIDs,
		})
	}

	return errs
}

func missingIDs(declared map[ir.WorkerID]bool, n int) []int {
	var missing []int
	for id := 0; id < n; id++ {
		if !declared[ir.WorkerID(id)] {
			missing = append(missing, id)
		}
	}
	return missing
}
