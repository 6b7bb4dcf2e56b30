package store

import (
	"fmt"
	"math"
	"strings"
)

// RunFilter selects stored runs. Zero-valued fields match every run; set
// fields are combined with AND.
type RunFilter struct {
	SpecHash string
	Mode     string
	Dampen   *bool
	MinScore *uint64
}

// predicate is one parameterized condition on the runs table.
type predicate struct {
	sql   string
	param any
}

// compile converts the filter to a WHERE clause fragment and its
// parameters. Values are never interpolated into the SQL text.
func (f RunFilter) compile() (string, []any, error) {
	var preds []predicate
	if f.SpecHash != "" {
		preds = append(preds, predicate{"spec_hash = ?", f.SpecHash})
	}
	if f.Mode != "" {
		preds = append(preds, predicate{"mode = ?", f.Mode})
	}
	if f.Dampen != nil {
		preds = append(preds, predicate{"dampen = ?", *f.Dampen})
	}
	if f.MinScore != nil {
		if *f.MinScore > math.MaxInt64 {
			return "", nil, fmt.Errorf("min score %d exceeds the storable range", *f.MinScore)
		}
		preds = append(preds, predicate{"score >= ?", int64(*f.MinScore)})
	}

	if len(preds) == 0 {
		return "1 = 1", nil, nil
	}

	parts := make([]string, len(preds))
	params := make([]any, len(preds))
	for i, p := range preds {
		parts[i] = p.sql
		params[i] = p.param
	}
	return strings.Join(parts, " AND "), params, nil
}

// query returns the full SELECT for the filter.
// Every run query ends in the same ORDER BY so listings are deterministic.
func (f RunFilter) query() (string, []any, error) {
	where, params, err := f.compile()
	if err != nil {
		return "", nil, err
	}
	return `SELECT ` + runColumns + ` FROM runs WHERE ` + where + ` ORDER BY ` + runOrder, params, nil
}
