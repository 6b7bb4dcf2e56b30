package compiler

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/keepaway/internal/ir"
)

// Format identifies a worker source format.
type Format string

const (
	FormatNotes Format = "notes"
	FormatCUE   Format = "cue"
	FormatYAML  Format = "yaml"
)

// FormatForPath picks the source format from a file extension.
// Anything that is not .cue, .yaml or .yml is read as notes.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cue":
		return FormatCUE
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatNotes
	}
}

// LoadFile reads and parses the worker specs in path. The specs are not
// validated.
func LoadFile(path string) ([]ir.WorkerSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read workers: %w", err)
	}
	return Parse(FormatForPath(path), path, data)
}

// Parse parses data in the given format. filename is used for CUE
// positions only.
func Parse(format Format, filename string, data []byte) ([]ir.WorkerSpec, error) {
	switch format {
	case FormatCUE:
		v := cuecontext.New().CompileBytes(data, cue.Filename(filename))
		return CompileWorkers(v)
	case FormatYAML:
		return DecodeYAML(data)
	case FormatNotes:
		return ParseNotes(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("unknown worker format %q", format)
	}
}
