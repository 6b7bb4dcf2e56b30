package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// Operator is the binary function of an arithmetic rule.
type Operator int

const (
	// OpAdd adds the two operands.
	OpAdd Operator = iota + 1
	// OpMultiply multiplies the two operands.
	OpMultiply
)

// String returns the operator symbol.
func (o Operator) String() string {
	switch o {
	case OpAdd:
		return "+"
	case OpMultiply:
		return "*"
	default:
		return fmt.Sprintf("Operator(%d)", int(o))
	}
}

// ParseOperator parses "+" or "*".
func ParseOperator(s string) (Operator, error) {
	switch s {
	case "+":
		return OpAdd, nil
	case "*":
		return OpMultiply, nil
	default:
		return 0, fmt.Errorf("unknown operator %q: must be + or *", s)
	}
}

// OperandKind distinguishes the two operand variants.
type OperandKind int

const (
	// OperandOld resolves to the value being inspected.
	OperandOld OperandKind = iota + 1
	// OperandConst resolves to a fixed constant.
	OperandConst
)

// Operand is one side of an arithmetic rule: either the current value or a
// constant. Construct with Old() or Const(); the zero value is invalid.
type Operand struct {
	Kind  OperandKind
	Value Item // only meaningful for OperandConst
}

// Old returns the operand that resolves to the current value.
func Old() Operand {
	return Operand{Kind: OperandOld}
}

// Const returns a constant operand.
func Const(v Item) Operand {
	return Operand{Kind: OperandConst, Value: v}
}

// Resolve returns the operand's value given the current value.
func (o Operand) Resolve(old Item) Item {
	if o.Kind == OperandOld {
		return old
	}
	return o.Value
}

// String renders the operand as it appears in worker notes.
func (o Operand) String() string {
	if o.Kind == OperandOld {
		return "old"
	}
	return strconv.FormatInt(int64(o.Value), 10)
}

// ParseOperand parses "old" or a decimal integer.
func ParseOperand(s string) (Operand, error) {
	if s == "old" {
		return Old(), nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return Operand{}, fmt.Errorf("invalid operand %q: must be old or an integer", s)
	}
	return Const(Item(v)), nil
}

// ArithmeticRule computes a new value from the current one:
// Op(A.Resolve(old), B.Resolve(old)).
type ArithmeticRule struct {
	Op Operator
	A  Operand
	B  Operand
}

// Evaluate applies the rule. It is total: there is no division and no
// overflow check. The engine bounds inputs up front with CheckWidth.
func (r ArithmeticRule) Evaluate(old Item) Item {
	a := r.A.Resolve(old)
	b := r.B.Resolve(old)
	switch r.Op {
	case OpMultiply:
		return a * b
	default:
		return a + b
	}
}

// String renders the rule as "old * 19".
func (r ArithmeticRule) String() string {
	return fmt.Sprintf("%s %s %s", r.A, r.Op, r.B)
}

// ParseArithmeticRule parses the right-hand side of an operation line,
// e.g. "old * 19" or "old + old".
func ParseArithmeticRule(s string) (ArithmeticRule, error) {
	fields := strings.Fields(s)
	if len(fields) != 3 {
		return ArithmeticRule{}, fmt.Errorf("invalid operation %q: want <operand> <op> <operand>", s)
	}
	a, err := ParseOperand(fields[0])
	if err != nil {
		return ArithmeticRule{}, err
	}
	op, err := ParseOperator(fields[1])
	if err != nil {
		return ArithmeticRule{}, err
	}
	b, err := ParseOperand(fields[2])
	if err != nil {
		return ArithmeticRule{}, err
	}
	return ArithmeticRule{Op: op, A: a, B: b}, nil
}

// MarshalText encodes the rule as "old * 19" for JSON and YAML.
func (r ArithmeticRule) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText decodes the "old * 19" form.
func (r *ArithmeticRule) UnmarshalText(text []byte) error {
	parsed, err := ParseArithmeticRule(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// RoutingRule picks a target by divisibility of the transformed value.
type RoutingRule struct {
	// Divisor is positive by construction; the registry rejects anything else.
	Divisor Item     `json:"divisor" yaml:"divisor"`
	IfTrue  WorkerID `json:"if_true" yaml:"if_true"`
	IfFalse WorkerID `json:"if_false" yaml:"if_false"`
}

// TargetFor returns IfTrue when value is evenly divisible by Divisor,
// IfFalse otherwise.
func (r RoutingRule) TargetFor(value Item) WorkerID {
	if value%r.Divisor == 0 {
		return r.IfTrue
	}
	return r.IfFalse
}

// String renders the rule for diagnostics.
func (r RoutingRule) String() string {
	return fmt.Sprintf("divisible by %d ? %d : %d", r.Divisor, r.IfTrue, r.IfFalse)
}
