package machine

// CommandKind discriminates the button commands a Machine accepts.
type CommandKind uint8

const (
	KindDigit CommandKind = iota + 1
	KindDecimal
	KindClear
	KindOperate
	KindEvaluate
)

func (k CommandKind) String() string {
	switch k {
	case KindDigit:
		return "digit"
	case KindDecimal:
		return "decimal"
	case KindClear:
		return "clear"
	case KindOperate:
		return "operate"
	case KindEvaluate:
		return "evaluate"
	default:
		return "unknown"
	}
}

// Command is one button press. Digit is set for KindDigit, Op for KindOperate.
type Command struct {
	Kind  CommandKind
	Digit byte
	Op    Operator
}

// Digit presses the digit button d ('0'..'9').
func Digit(d byte) Command { return Command{Kind: KindDigit, Digit: d} }
func Decimal() Command { return Command{Kind: KindDecimal} }
func Clear() Command { return Command{Kind: KindClear} }
func Operate(op Operator) Command { return Command{Kind: KindOperate, Op: op} }
func Evaluate() Command { return Command{Kind: KindEvaluate} }

// String returns the ASCII key that produces the command.
func (c Command) String() string {
	switch c.Kind {
	case KindDigit:
		return string(rune(c.Digit))
	case KindDecimal:
		return "."
	case KindClear:
		return "C"
	case KindOperate:
		return c.Op.String()
	case KindEvaluate:
		return "="
	default:
		return "?"
	}
}

// Dispatch routes c to the matching transition. Unknown kinds are ignored.
func (m *Machine) Dispatch(c Command) {
	switch c.Kind {
	case KindDigit:
		m.EnterDigit(c.Digit)
	case KindDecimal:
		m.EnterDecimal()
	case KindClear:
		m.Clear()
	case KindOperate:
		m.SetOperation(c.Op)
	case KindEvaluate:
		m.Evaluate()
	}
}
