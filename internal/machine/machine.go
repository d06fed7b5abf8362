// Package machine implements the calculator's input and operation state
// machine: digit entry, decimal entry, clear, pending binary operations
// and evaluation. Operations chain left to right without precedence and
// never fail; non-finite results surface only as display text.
package machine

import "bytes"

// Phase is the conceptual state derived from the machine's fields.
type Phase string

const (
	PhaseIdle           Phase = "idle"
	PhaseOperandPending Phase = "operand_pending"
	PhaseResult         Phase = "result"
)

// pending holds the left-hand operand together with its operator, so an
// operator can never be pending without an operand.
type pending struct {
	operand float64
	op      Operator
}

// Machine is a single calculator instance. It is not safe for concurrent
// use; callers serialize presses. display grows in place so typing a digit
// costs amortized constant time however long the number gets.
type Machine struct {
	display []byte
	pending *pending
	waiting bool
}

// New returns a machine showing "0" with nothing pending.
func New() *Machine {
	return &Machine{display: []byte("0")}
}

// Display returns the text currently shown.
func (m *Machine) Display() string {
	return string(m.display)
}

func (m *Machine) show(s string) {
	m.display = append(m.display[:0], s...)
}

// EnterDigit types d. After an operator or evaluation the digit starts a
// fresh number; a lone "0" is replaced rather than extended. Bytes
// outside '0'..'9' are ignored.
func (m *Machine) EnterDigit(d byte) {
	if d < '0' || d > '9' {
		return
	}

	switch {
	case m.waiting:
		m.display = append(m.display[:0], d)
		m.waiting = false
	case len(m.display) == 1 && m.display[0] == '0':
		m.display[0] = d
	default:
		m.display = append(m.display, d)
	}
}

// EnterDecimal types a decimal point. At most one point is kept.
func (m *Machine) EnterDecimal() {
	if m.waiting {
		m.show("0.")
		m.waiting = false
		return
	}

	if bytes.IndexByte(m.display, '.') < 0 {
		m.display = append(m.display, '.')
	}
}

// Clear resets the machine to its initial state.
func (m *Machine) Clear() {
	m.show("0")
	m.pending = nil
	m.waiting = false
}

// SetOperation records op as the pending operator. If another operation
// is already pending it is folded first and the intermediate result is
// shown, so "1 + 2 *" displays 3.
func (m *Machine) SetOperation(op Operator) {
	input := ParseNumber(string(m.display))

	if m.pending == nil {
		m.pending = &pending{operand: input}
	} else {
		result := Apply(m.pending.operand, input, m.pending.op)
		m.show(FormatNumber(result))
		m.pending.operand = result
	}

	m.pending.op = op
	m.waiting = true
}

// Evaluate folds the pending operation into the display. Without a
// pending operation it does nothing.
func (m *Machine) Evaluate() {
	if m.pending == nil {
		return
	}

	input := ParseNumber(string(m.display))
	m.show(FormatNumber(Apply(m.pending.operand, input, m.pending.op)))
	m.pending = nil
	m.waiting = true
}

// Phase reports which conceptual state the machine is in.
func (m *Machine) Phase() Phase {
	switch {
	case m.pending != nil:
		return PhaseOperandPending
	case m.waiting:
		return PhaseResult
	default:
		return PhaseIdle
	}
}

// Snapshot is a read-only copy of the machine state. PreviousValue and
// Operation are empty when no operation is pending.
type Snapshot struct {
	Display           string
	Phase             Phase
	PreviousValue     string
	Operation         string
	WaitingForOperand bool
}

// Snapshot captures the current state.
func (m *Machine) Snapshot() Snapshot {
	s := Snapshot{
		Display:           string(m.display),
		Phase:             m.Phase(),
		WaitingForOperand: m.waiting,
	}
	if m.pending != nil {
		s.PreviousValue = FormatNumber(m.pending.operand)
		s.Operation = m.pending.op.String()
	}
	return s
}
