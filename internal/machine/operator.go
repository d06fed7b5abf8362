package machine

// Operator is a pending binary operation. OpEquals is accepted as an
// operator and behaves as "take the right-hand operand".
type Operator byte

const (
	OpAdd      Operator = '+'
	OpSubtract Operator = '-'
	OpMultiply Operator = '*'
	OpDivide   Operator = '/'
	OpEquals   Operator = '='
)

func (op Operator) String() string {
	return string(rune(op))
}

// ParseOperator maps "+", "-", "*", "/" and "=" to an Operator.
func ParseOperator(s string) (Operator, bool) {
	if len(s) != 1 {
		return 0, false
	}
	switch op := Operator(s[0]); op {
	case OpAdd, OpSubtract, OpMultiply, OpDivide, OpEquals:
		return op, true
	}
	return 0, false
}

// Apply folds b into a with op. There is no divide-by-zero guard: the
// result is whatever IEEE 754 produces. OpEquals and unknown operators
// return b unchanged.
func Apply(a, b float64, op Operator) float64 {
	switch op {
	case OpAdd:
		return a + b
	case OpSubtract:
		return a - b
	case OpMultiply:
		return a * b
	case OpDivide:
		return a / b
	default:
		return b
	}
}
