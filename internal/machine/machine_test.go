package machine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// press feeds ASCII keys to m: digits, ".", "C", operators and "=".
func press(t *testing.T, m *Machine, keys ...string) {
	t.Helper()
	for _, k := range keys {
		switch {
		case len(k) == 1 && k[0] >= '0' && k[0] <= '9':
			m.EnterDigit(k[0])
		case k == ".":
			m.EnterDecimal()
		case k == "C":
			m.Clear()
		case k == "=":
			m.Evaluate()
		default:
			op, ok := ParseOperator(k)
			require.True(t, ok, "unknown key %q", k)
			m.SetOperation(op)
		}
	}
}

func TestNewStartsIdleAtZero(t *testing.T) {
	m := New()

	assert.Equal(t, Snapshot{Display: "0", Phase: PhaseIdle}, m.Snapshot())
}

func TestEnterDigitConcatenates(t *testing.T) {
	tests := []struct {
		name string
		keys []string
		want string
	}{
		{name: "single", keys: []string{"7"}, want: "7"},
		{name: "leading zero replaced", keys: []string{"0", "5"}, want: "5"},
		{name: "repeated zeros", keys: []string{"0", "0", "0"}, want: "0"},
		{name: "many", keys: []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "0"}, want: "1234567890"},
		{name: "zero after nonzero", keys: []string{"1", "0", "0"}, want: "100"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := New()
			press(t, m, tc.keys...)
			assert.Equal(t, tc.want, m.Display())
		})
	}
}

func TestEnterDigitIgnoresNonDigits(t *testing.T) {
	m := New()
	m.EnterDigit('4')
	m.EnterDigit('x')
	m.EnterDigit('.')

	assert.Equal(t, "4", m.Display())
}

func TestEnterDigitHasNoLengthBound(t *testing.T) {
	m := New()
	for range 400 {
		m.EnterDigit('9')
	}

	require.Len(t, m.Display(), 400)

	m.SetOperation(OpAdd)
	m.EnterDigit('1')
	m.Evaluate()
	assert.Equal(t, "Infinity", m.Display())
}

func TestEnterDigitAppendsInPlace(t *testing.T) {
	m := New()
	for range 100_000 {
		m.EnterDigit('9')
	}

	allocs := testing.AllocsPerRun(1000, func() { m.EnterDigit('9') })
	assert.Zero(t, allocs)
	assert.Len(t, m.Display(), 100_000+1001)

	m.Clear()
	assert.Equal(t, "0", m.Display())
}

func TestEnterDecimal(t *testing.T) {
	t.Run("appends once", func(t *testing.T) {
		m := New()
		press(t, m, "1", ".", ".", "5", ".")
		assert.Equal(t, "1.5", m.Display())
	})

	t.Run("from initial zero", func(t *testing.T) {
		m := New()
		press(t, m, ".", "2")
		assert.Equal(t, "0.2", m.Display())
	})

	t.Run("starts fresh operand after operator", func(t *testing.T) {
		m := New()
		press(t, m, "9", "+", ".")
		assert.Equal(t, "0.", m.Display())
		assert.False(t, m.Snapshot().WaitingForOperand)

		press(t, m, "5", "=")
		assert.Equal(t, "9.5", m.Display())
	})

	t.Run("idempotent", func(t *testing.T) {
		m := New()
		m.EnterDecimal()
		m.EnterDecimal()
		assert.Equal(t, "0.", m.Display())
	})
}

func TestClearResetsFromAnyState(t *testing.T) {
	sequences := [][]string{
		{},
		{"4", "2"},
		{"4", "*"},
		{"4", "*", "3"},
		{"4", "*", "3", "="},
		{"7", "/", "0", "="},
		{"1", "."},
	}

	for _, keys := range sequences {
		m := New()
		press(t, m, keys...)
		m.Clear()
		assert.Equal(t, New().Snapshot(), m.Snapshot(), "after %v", keys)
	}
}

func TestScenarios(t *testing.T) {
	tests := []struct {
		name string
		keys []string
		want string
	}{
		{name: "addition", keys: []string{"5", "+", "3", "="}, want: "8"},
		{name: "left to right chaining", keys: []string{"1", "+", "2", "*", "3", "="}, want: "9"},
		{name: "no precedence", keys: []string{"2", "+", "3", "*", "4", "="}, want: "20"},
		{name: "subtraction below zero", keys: []string{"3", "-", "8", "="}, want: "-5"},
		{name: "fractional division", keys: []string{"1", "/", "4", "="}, want: "0.25"},
		{name: "float rounding shown verbatim", keys: []string{".", "1", "+", ".", "2", "="}, want: "0.30000000000000004"},
		{name: "division by zero", keys: []string{"7", "/", "0", "="}, want: "Infinity"},
		{name: "negative division by zero", keys: []string{"0", "-", "7", "/", "0", "="}, want: "-Infinity"},
		{name: "zero over zero", keys: []string{"0", "/", "0", "="}, want: "NaN"},
		{name: "operator replaces pending operator", keys: []string{"6", "+", "-"}, want: "12"},
		{name: "evaluate without operation", keys: []string{"4", "2", "="}, want: "42"},
		{name: "digit after result starts over", keys: []string{"2", "+", "2", "=", "7"}, want: "7"},
		{name: "operator after result continues", keys: []string{"2", "+", "2", "=", "*", "3", "="}, want: "12"},
		{name: "large result stays plain", keys: []string{"1", "0", "0", "0", "0", "0", "0", "0", "0", "0", "0", "*", "1", "0", "0", "0", "0", "0", "0", "0", "0", "0", "0", "="}, want: "100000000000000000000"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := New()
			press(t, m, tc.keys...)
			assert.Equal(t, tc.want, m.Display())
		})
	}
}

func TestRepeatedOperatorFoldsDisplayIntoItself(t *testing.T) {
	m := New()
	press(t, m, "5", "+", "+")

	s := m.Snapshot()
	assert.Equal(t, "10", s.Display)
	assert.Equal(t, "10", s.PreviousValue)
	assert.Equal(t, "+", s.Operation)
}

func TestEvaluateWithoutPendingIsNoop(t *testing.T) {
	m := New()
	press(t, m, "3", ".", "1")
	before := m.Snapshot()

	m.Evaluate()
	assert.Equal(t, before, m.Snapshot())

	m = New()
	m.Evaluate()
	assert.Equal(t, New().Snapshot(), m.Snapshot())
}

func TestOperatorThenEvaluateUsesFirstOperandTwice(t *testing.T) {
	for _, op := range []Operator{OpAdd, OpSubtract, OpMultiply, OpDivide} {
		t.Run(op.String(), func(t *testing.T) {
			m := New()
			press(t, m, "6")
			m.SetOperation(op)
			m.Evaluate()
			assert.Equal(t, FormatNumber(Apply(6, 6, op)), m.Display())
		})
	}
}

func TestPhaseTransitions(t *testing.T) {
	m := New()
	assert.Equal(t, PhaseIdle, m.Phase())

	press(t, m, "8")
	assert.Equal(t, PhaseIdle, m.Phase())

	press(t, m, "-")
	s := m.Snapshot()
	assert.Equal(t, PhaseOperandPending, s.Phase)
	assert.Equal(t, "8", s.PreviousValue)
	assert.Equal(t, "-", s.Operation)
	assert.True(t, s.WaitingForOperand)

	press(t, m, "3")
	assert.Equal(t, PhaseOperandPending, m.Phase())
	assert.False(t, m.Snapshot().WaitingForOperand)

	press(t, m, "=")
	s = m.Snapshot()
	assert.Equal(t, PhaseResult, s.Phase)
	assert.Equal(t, "5", s.Display)
	assert.Empty(t, s.PreviousValue)
	assert.Empty(t, s.Operation)

	press(t, m, "1")
	assert.Equal(t, PhaseIdle, m.Phase())
}

func TestNonFiniteResultsChain(t *testing.T) {
	m := New()
	press(t, m, "7", "/", "0", "+")

	s := m.Snapshot()
	assert.Equal(t, "Infinity", s.Display)
	assert.Equal(t, "Infinity", s.PreviousValue)

	press(t, m, "1", "=")
	assert.Equal(t, "Infinity", m.Display())
}

func TestDispatch(t *testing.T) {
	m := New()
	for _, c := range []Command{Digit('1'), Decimal(), Digit('5'), Operate(OpMultiply), Digit('4'), Evaluate()} {
		m.Dispatch(c)
	}
	assert.Equal(t, "6", m.Display())

	m.Dispatch(Clear())
	assert.Equal(t, New().Snapshot(), m.Snapshot())

	m.Dispatch(Command{})
	assert.Equal(t, New().Snapshot(), m.Snapshot())
}

func TestCommandString(t *testing.T) {
	assert.Equal(t, "7", Digit('7').String())
	assert.Equal(t, ".", Decimal().String())
	assert.Equal(t, "C", Clear().String())
	assert.Equal(t, "/", Operate(OpDivide).String())
	assert.Equal(t, "=", Evaluate().String())
	assert.Equal(t, "?", Command{}.String())
	assert.Equal(t, "operate", KindOperate.String())
}
