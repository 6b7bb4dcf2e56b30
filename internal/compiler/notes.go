package compiler

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/roach88/keepaway/internal/ir"
)

type numberedLine struct {
	num  int
	text string
}

// ParseNotes reads worker specs in the notes format.
//
// Each worker is a block of six lines; blocks are separated by one or more
// blank lines. Leading indentation is ignored. The header and throw lines
// accept either "Monkey"/"monkey" or "Worker"/"worker". Specs are returned
// in the order they appear; ids are not checked here (see Validate).
func ParseNotes(r io.Reader) ([]ir.WorkerSpec, error) {
	blocks, err := splitBlocks(r)
	if err != nil {
		return nil, err
	}

	specs := make([]ir.WorkerSpec, 0, len(blocks))
	for _, block := range blocks {
		spec, err := parseBlock(block)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func splitBlocks(r io.Reader) ([][]numberedLine, error) {
	var blocks [][]numberedLine
	var current []numberedLine

	scanner := bufio.NewScanner(r)
	num := 0
	for scanner.Scan() {
		num++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			if len(current) > 0 {
				blocks = append(blocks, current)
				current = nil
			}
			continue
		}
		current = append(current, numberedLine{num: num, text: text})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read notes: %w", err)
	}
	if len(current) > 0 {
		blocks = append(blocks, current)
	}
	return blocks, nil
}

const notesBlockLines = 6

func parseBlock(block []numberedLine) (ir.WorkerSpec, error) {
	var spec ir.WorkerSpec

	if len(block) != notesBlockLines {
		return spec, &CompileError{
			Field:   "worker",
			Message: fmt.Sprintf("expected %d lines per worker, got %d", notesBlockLines, len(block)),
			Line:    block[0].num,
		}
	}

	id, err := parseHeader(block[0])
	if err != nil {
		return spec, err
	}
	spec.ID = id

	if spec.Items, err = parseItems(block[1]); err != nil {
		return spec, err
	}

	rest, err := expectPrefix(block[2], "operation", "Operation:")
	if err != nil {
		return spec, err
	}
	if spec.Operation, err = parseOperation(rest); err != nil {
		return spec, &CompileError{Field: "operation", Message: err.Error(), Line: block[2].num}
	}

	if spec.Routing.Divisor, err = parseDivisor(block[3]); err != nil {
		return spec, err
	}
	if spec.Routing.IfTrue, err = parseThrow(block[4], "if_true", "If true:"); err != nil {
		return spec, err
	}
	if spec.Routing.IfFalse, err = parseThrow(block[5], "if_false", "If false:"); err != nil {
		return spec, err
	}
	return spec, nil
}

func parseHeader(l numberedLine) (ir.WorkerID, error) {
	fields := strings.Fields(l.text)
	if len(fields) != 2 || !isWorkerNoun(fields[0]) || !strings.HasSuffix(fields[1], ":") {
		return 0, &CompileError{
			Field:   "id",
			Message: fmt.Sprintf("expected \"Monkey <n>:\" or \"Worker <n>:\", got %q", l.text),
			Line:    l.num,
		}
	}
	return parseWorkerID(strings.TrimSuffix(fields[1], ":"), "id", l.num)
}

func parseItems(l numberedLine) ([]ir.Item, error) {
	rest, err := expectPrefix(l, "items", "Starting items:")
	if err != nil {
		return nil, err
	}
	items := []ir.Item{}
	if rest == "" {
		return items, nil
	}
	for _, part := range strings.Split(rest, ",") {
		v, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, &CompileError{
				Field:   "items",
				Message: fmt.Sprintf("invalid item %q", strings.TrimSpace(part)),
				Line:    l.num,
			}
		}
		items = append(items, ir.Item(v))
	}
	return items, nil
}

func parseDivisor(l numberedLine) (ir.Item, error) {
	rest, err := expectPrefix(l, "divisor", "Test: divisible by")
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		return 0, &CompileError{
			Field:   "divisor",
			Message: fmt.Sprintf("invalid divisor %q", rest),
			Line:    l.num,
		}
	}
	return ir.Item(v), nil
}

func parseThrow(l numberedLine, field, prefix string) (ir.WorkerID, error) {
	rest, err := expectPrefix(l, field, prefix)
	if err != nil {
		return 0, err
	}
	fields := strings.Fields(rest)
	if len(fields) != 4 || fields[0] != "throw" || fields[1] != "to" || !isWorkerNoun(fields[2]) {
		return 0, &CompileError{
			Field:   field,
			Message: fmt.Sprintf("expected \"throw to monkey <n>\", got %q", rest),
			Line:    l.num,
		}
	}
	return parseWorkerID(fields[3], field, l.num)
}

func expectPrefix(l numberedLine, field, prefix string) (string, error) {
	rest, ok := strings.CutPrefix(l.text, prefix)
	if !ok {
		return "", &CompileError{
			Field:   field,
			Message: fmt.Sprintf("expected line starting with %q, got %q", prefix, l.text),
			Line:    l.num,
		}
	}
	return strings.TrimSpace(rest), nil
}

func parseWorkerID(s, field string, line int) (ir.WorkerID, error) {
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return 0, &CompileError{
			Field:   field,
			Message: fmt.Sprintf("invalid worker id %q", s),
			Line:    line,
		}
	}
	return ir.WorkerID(v), nil
}

func isWorkerNoun(s string) bool {
	switch s {
	case "Monkey", "monkey", "Worker", "worker":
		return true
	}
	return false
}

// ParseOperation parses an arithmetic rule. Both the full notes form
// "new = old * 19" and the bare "old * 19" are accepted.
func ParseOperation(s string) (ir.ArithmeticRule, error) {
	rule, err := parseOperation(s)
	if err != nil {
		return ir.ArithmeticRule{}, &CompileError{
			Field:   "operation",
			Message: err.Error(),
		}
	}
	return rule, nil
}

func parseOperation(s string) (ir.ArithmeticRule, error) {
	expr := strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(expr, "new"); ok {
		rest = strings.TrimSpace(rest)
		if rhs, ok := strings.CutPrefix(rest, "="); ok {
			expr = strings.TrimSpace(rhs)
		}
	}

	return ir.ParseArithmeticRule(expr)
}
