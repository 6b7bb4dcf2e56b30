package compiler

import (
	"fmt"

	"cuelang.org/go/cue"

	"github.com/roach88/keepaway/internal/ir"
)

// CompileWorkers parses a CUE value holding a top-level "workers" list.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`workers: [{id: 0, items: [79, 98], operation: "old * 19",
//		divisor: 23, if_true: 2, if_false: 3}]`)
//	specs, err := CompileWorkers(v)
//
// "items" is optional and defaults to an empty queue; every other field is
// required. Floats are rejected wherever an integer is expected.
func CompileWorkers(v cue.Value) ([]ir.WorkerSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	workersVal := v.LookupPath(cue.ParsePath("workers"))
	if !workersVal.Exists() {
		return nil, &CompileError{
			Field:   "workers",
			Message: "workers is required",
			Pos:     v.Pos(),
		}
	}

	iter, err := workersVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var specs []ir.WorkerSpec
	for i := 0; iter.Next(); i++ {
		spec, err := compileWorker(iter.Value(), fmt.Sprintf("workers[%d]", i))
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func compileWorker(v cue.Value, path string) (ir.WorkerSpec, error) {
	var spec ir.WorkerSpec

	id, err := requiredInt(v, path, "id")
	if err != nil {
		return spec, err
	}
	spec.ID = ir.WorkerID(id)

	spec.Items, err = parseCUEItems(v, path)
	if err != nil {
		return spec, err
	}

	opVal := v.LookupPath(cue.ParsePath("operation"))
	if !opVal.Exists() {
		return spec, &CompileError{
			Field:   path + ".operation",
			Message: "operation is required",
			Pos:     v.Pos(),
		}
	}
	opStr, err := opVal.String()
	if err != nil {
		return spec, formatCUEError(err)
	}
	spec.Operation, err = parseOperation(opStr)
	if err != nil {
		return spec, &CompileError{
			Field:   path + ".operation",
			Message: err.Error(),
			Pos:     opVal.Pos(),
		}
	}

	divisor, err := requiredInt(v, path, "divisor")
	if err != nil {
		return spec, err
	}
	ifTrue, err := requiredInt(v, path, "if_true")
	if err != nil {
		return spec, err
	}
	ifFalse, err := requiredInt(v, path, "if_false")
	if err != nil {
		return spec, err
	}
	spec.Routing = ir.RoutingRule{
		Divisor: ir.Item(divisor),
		IfTrue:  ir.WorkerID(ifTrue),
		IfFalse: ir.WorkerID(ifFalse),
	}

	return spec, nil
}

func parseCUEItems(v cue.Value, path string) ([]ir.Item, error) {
	items := []ir.Item{}

	itemsVal := v.LookupPath(cue.ParsePath("items"))
	if !itemsVal.Exists() {
		return items, nil
	}

	iter, err := itemsVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for i := 0; iter.Next(); i++ {
		n, err := cueInt(iter.Value(), fmt.Sprintf("%s.items[%d]", path, i))
		if err != nil {
			return nil, err
		}
		items = append(items, ir.Item(n))
	}
	return items, nil
}

func requiredInt(v cue.Value, path, field string) (int64, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return 0, &CompileError{
			Field:   path + "." + field,
			Message: field + " is required",
			Pos:     v.Pos(),
		}
	}
	return cueInt(fv, path+"."+field)
}

func cueInt(v cue.Value, field string) (int64, error) {
	if k := v.IncompleteKind(); k != cue.IntKind {
		return 0, &CompileError{
			Field:   field,
			Message: fmt.Sprintf("must be an integer, got %v", k),
			Pos:     v.Pos(),
		}
	}
	n, err := v.Int64()
	if err != nil {
		return 0, formatCUEError(err)
	}
	return n, nil
}
