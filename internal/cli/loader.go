package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"cuelang.org/go/cue/token"

	"github.com/roach88/keepaway/internal/compiler"
	"github.com/roach88/keepaway/internal/ir"
)

// LoadError represents an error that occurred while loading a worker file.
type LoadError struct {
	Code    string
	Message string
	Path    string
	Line    int       // notes line if available
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s: %s", e.Path, e.Line, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadWorkers reads a worker file and parses it by extension: .cue, .yaml
// and .yml are structured formats, anything else is the notes format.
// Errors are always *LoadError.
func LoadWorkers(path string) ([]ir.WorkerSpec, error) {
	specs, err := compiler.LoadFile(path)
	if err == nil {
		return specs, nil
	}

	if errors.Is(err, fs.ErrNotExist) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("worker file not found: %s", path), Path: path}
	}

	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return nil, &LoadError{
			Code:    MapFieldToErrorCode(compileErr.Field),
			Message: fmt.Sprintf("%s: %s", compileErr.Field, compileErr.Message),
			Path:    path,
			Line:    compileErr.Line,
			Pos:     compileErr.Pos,
		}
	}

	return nil, &LoadError{Code: ErrCodeReadFailed, Message: err.Error(), Path: path}
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeReadFailed  = "E002" // Worker file could not be read
	ErrCodeParseFailed = "E003" // Worker file could not be parsed
	ErrCodeOperation   = "E004" // Operation could not be parsed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeStoreFailed = "E006" // Run history store error
	ErrCodeWriteFailed = "E007" // File write error
	ErrCodeModulus     = "E008" // Divisor LCM or an operation overflows int64
)

// MapFieldToErrorCode maps a compiler error field to an error code.
func MapFieldToErrorCode(field string) string {
	switch {
	case field == "operation" || strings.HasSuffix(field, ".operation"):
		return ErrCodeOperation
	case field == "":
		return ErrCodeGeneric
	default:
		return ErrCodeParseFailed
	}
}
