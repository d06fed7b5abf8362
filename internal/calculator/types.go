package calculator

import (
	"calculator-api/internal/keypad"
	"calculator-api/internal/machine"
)

// CalcRequest is the JSON body for binary operations (add, subtract, multiply, divide).
type CalcRequest struct {
	A float64 `json:"a"`
	B float64 `json:"b"`
}

// CalcResponse is the JSON response for binary operations. Result is the
// display text, so a division by zero answers "Infinity".
type CalcResponse struct {
	Operation string  `json:"operation"`
	A         float64 `json:"a"`
	B         float64 `json:"b"`
	Result    string  `json:"result"`
}

// StateResponse mirrors machine.Snapshot. Numbers are display text because
// JSON has no encoding for non-finite floats.
type StateResponse struct {
	Display           string `json:"display"`
	Phase             string `json:"phase"`
	PreviousValue     string `json:"previous_value,omitempty"`
	Operation         string `json:"operation,omitempty"`
	WaitingForOperand bool   `json:"waiting_for_operand"`
}

func newStateResponse(s machine.Snapshot) StateResponse {
	return StateResponse{
		Display:           s.Display,
		Phase:             string(s.Phase),
		PreviousValue:     s.PreviousValue,
		Operation:         s.Operation,
		WaitingForOperand: s.WaitingForOperand,
	}
}

// SessionResponse is returned by every session endpoint.
type SessionResponse struct {
	ID    string        `json:"id"`
	State StateResponse `json:"state"`
}

// PressRequest is the JSON body for POST /calculator/sessions/{id}/keys.
// Key, when set, is pressed before Keys.
type PressRequest struct {
	Key  string   `json:"key,omitempty"`
	Keys []string `json:"keys,omitempty"`
}

func (p PressRequest) labels() []string {
	if p.Key == "" {
		return p.Keys
	}
	return append([]string{p.Key}, p.Keys...)
}

// ReplayRequest is the JSON body for POST /calculator/replay.
type ReplayRequest struct {
	Keys []string `json:"keys"`
}

// ReplayStep records the display after one key.
type ReplayStep struct {
	Key     string `json:"key"`
	Display string `json:"display"`
}

// ReplayResponse is the JSON response for POST /calculator/replay.
type ReplayResponse struct {
	Steps   []ReplayStep  `json:"steps"`
	Display string        `json:"display"`
	State   StateResponse `json:"state"`
}

// ButtonResponse describes one keypad button.
type ButtonResponse struct {
	Label   string `json:"label"`
	Key     string `json:"key"`
	Kind    string `json:"kind"`
	ColSpan int    `json:"col_span"`
	RowSpan int    `json:"row_span"`
}

// KeypadResponse is the JSON response for GET /calculator/keypad.
type KeypadResponse struct {
	Columns int                `json:"columns"`
	Rows    [][]ButtonResponse `json:"rows"`
}

func newKeypadResponse(l keypad.Layout) KeypadResponse {
	resp := KeypadResponse{
		Columns: l.Columns,
		Rows:    make([][]ButtonResponse, 0, len(l.Rows)),
	}
	for _, row := range l.Rows {
		out := make([]ButtonResponse, 0, len(row))
		for _, b := range row {
			out = append(out, ButtonResponse{
				Label:   b.Label,
				Key:     b.Key,
				Kind:    string(b.Kind),
				ColSpan: b.ColSpan,
				RowSpan: b.RowSpan,
			})
		}
		resp.Rows = append(resp.Rows, out)
	}
	return resp
}
