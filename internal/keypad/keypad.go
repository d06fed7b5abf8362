// Package keypad describes the calculator's button grid and maps button
// labels to machine commands.
package keypad

import (
	"errors"
	"fmt"
	"strings"

	"calculator-api/internal/machine"
)

// ErrUnknownKey is returned by Parse for labels that are not on the keypad.
var ErrUnknownKey = errors.New("unknown key")

// Kind groups buttons by the command they issue.
type Kind string

const (
	KindDigit    Kind = "digit"
	KindDecimal  Kind = "decimal"
	KindClear    Kind = "clear"
	KindOperator Kind = "operator"
	KindEvaluate Kind = "evaluate"
)

// Button is one cell of the grid. Label is what the button shows, Key the
// ASCII key clients send for it.
type Button struct {
	Label   string
	Key     string
	Kind    Kind
	ColSpan int
	RowSpan int
	Command machine.Command
}

// Layout is the grid, row by row. Spanned cells appear only in the row
// where the button starts.
type Layout struct {
	Columns int
	Rows    [][]Button
}

func digit(d byte) Button {
	return Button{Label: string(d), Key: string(d), Kind: KindDigit, ColSpan: 1, RowSpan: 1, Command: machine.Digit(d)}
}

func operator(label string, op machine.Operator) Button {
	return Button{Label: label, Key: op.String(), Kind: KindOperator, ColSpan: 1, RowSpan: 1, Command: machine.Operate(op)}
}

// Default returns the four-column widget layout:
//
//	C C ÷ ×
//	7 8 9 −
//	4 5 6 +
//	1 2 3 =
//	0 0 . =
func Default() Layout {
	return Layout{
		Columns: 4,
		Rows: [][]Button{
			{
				{Label: "C", Key: "C", Kind: KindClear, ColSpan: 2, RowSpan: 1, Command: machine.Clear()},
				operator("÷", machine.OpDivide),
				operator("×", machine.OpMultiply),
			},
			{digit('7'), digit('8'), digit('9'), operator("−", machine.OpSubtract)},
			{digit('4'), digit('5'), digit('6'), operator("+", machine.OpAdd)},
			{
				digit('1'), digit('2'), digit('3'),
				{Label: "=", Key: "=", Kind: KindEvaluate, ColSpan: 1, RowSpan: 2, Command: machine.Evaluate()},
			},
			{
				{Label: "0", Key: "0", Kind: KindDigit, ColSpan: 2, RowSpan: 1, Command: machine.Digit('0')},
				{Label: ".", Key: ".", Kind: KindDecimal, ColSpan: 1, RowSpan: 1, Command: machine.Decimal()},
			},
		},
	}
}

// Buttons returns every button in reading order.
func (l Layout) Buttons() []Button {
	var out []Button
	for _, row := range l.Rows {
		out = append(out, row...)
	}
	return out
}

// aliases covers the typographic labels and the letters people type for them.
var aliases = map[string]machine.Command{
	"c": machine.Clear(),
	"÷": machine.Operate(machine.OpDivide),
	"×": machine.Operate(machine.OpMultiply),
	"x": machine.Operate(machine.OpMultiply),
	"−": machine.Operate(machine.OpSubtract),
}

// Parse maps a button label or key to its command.
func Parse(label string) (machine.Command, error) {
	key := strings.TrimSpace(label)

	switch {
	case len(key) == 1 && key[0] >= '0' && key[0] <= '9':
		return machine.Digit(key[0]), nil
	case key == ".":
		return machine.Decimal(), nil
	case key == "C":
		return machine.Clear(), nil
	case key == "=":
		return machine.Evaluate(), nil
	}

	if op, ok := machine.ParseOperator(key); ok {
		return machine.Operate(op), nil
	}

	if cmd, ok := aliases[strings.ToLower(key)]; ok {
		return cmd, nil
	}

	return machine.Command{}, fmt.Errorf("%w: %q", ErrUnknownKey, label)
}

// ParseAll parses every label, stopping at the first unknown one.
func ParseAll(labels []string) ([]machine.Command, error) {
	cmds := make([]machine.Command, 0, len(labels))
	for i, label := range labels {
		cmd, err := Parse(label)
		if err != nil {
			return nil, fmt.Errorf("key %d: %w", i, err)
		}
		cmds = append(cmds, cmd)
	}
	return cmds, nil
}
