package compiler

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/roach88/keepaway/internal/ir"
)

// WorkersFile is the YAML document shape: a top-level "workers" list.
type WorkersFile struct {
	Workers []WorkerEntry `yaml:"workers"`
}

// WorkerEntry is one worker in the flat YAML and CUE shape.
type WorkerEntry struct {
	ID        int     `yaml:"id"`
	Items     []int64 `yaml:"items"`
	Operation string  `yaml:"operation"`
	Divisor   int64   `yaml:"divisor"`
	IfTrue    int     `yaml:"if_true"`
	IfFalse   int     `yaml:"if_false"`
}

// DecodeYAML parses a YAML worker list. Unknown fields are rejected.
func DecodeYAML(data []byte) ([]ir.WorkerSpec, error) {
	var file WorkersFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &CompileError{Field: "workers", Message: "workers is required"}
		}
		return nil, &CompileError{Field: "yaml", Message: err.Error()}
	}
	if file.Workers == nil {
		return nil, &CompileError{Field: "workers", Message: "workers is required"}
	}

	return SpecsFromEntries(file.Workers)
}

// SpecsFromEntries converts decoded worker entries to specs. Only the
// operation strings can fail here; structural checks are left to Validate.
func SpecsFromEntries(entries []WorkerEntry) ([]ir.WorkerSpec, error) {
	specs := make([]ir.WorkerSpec, 0, len(entries))
	for i, w := range entries {
		spec, err := w.toSpec()
		if err != nil {
			return nil, &CompileError{
				Field:   fmt.Sprintf("workers[%d].operation", i),
				Message: err.Error(),
			}
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func (w WorkerEntry) toSpec() (ir.WorkerSpec, error) {
	rule, err := parseOperation(w.Operation)
	if err != nil {
		return ir.WorkerSpec{}, err
	}

	items := make([]ir.Item, len(w.Items))
	for i, v := range w.Items {
		items[i] = ir.Item(v)
	}

	return ir.WorkerSpec{
		ID:        ir.WorkerID(w.ID),
		Items:     items,
		Operation: rule,
		Routing: ir.RoutingRule{
			Divisor: ir.Item(w.Divisor),
			IfTrue:  ir.WorkerID(w.IfTrue),
			IfFalse: ir.WorkerID(w.IfFalse),
		},
	}, nil
}

// EncodeYAML renders specs in the shape DecodeYAML reads.
func EncodeYAML(specs []ir.WorkerSpec) ([]byte, error) {
	file := WorkersFile{Workers: make([]WorkerEntry, len(specs))}
	for i, s := range specs {
		items := make([]int64, len(s.Items))
		for j, v := range s.Items {
			items[j] = int64(v)
		}
		file.Workers[i] = WorkerEntry{
			ID:        int(s.ID),
			Items:     items,
			Operation: s.Operation.String(),
			Divisor:   int64(s.Routing.Divisor),
			IfTrue:    int(s.Routing.IfTrue),
			IfFalse:   int(s.Routing.IfFalse),
		}
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(file); err != nil {
		return nil, fmt.Errorf("encode workers: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode workers: %w", err)
	}
	return buf.Bytes(), nil
}
