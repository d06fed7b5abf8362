package machine

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// FormatNumber renders v the way the display shows results: shortest
// round-trip digits, plain notation for 1e-6 <= |v| < 1e21 and exponent
// notation outside that range, "Infinity", "-Infinity" and "NaN" for
// non-finite values. Negative zero renders as "0".
func FormatNumber(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	case v == 0:
		return "0"
	}

	abs := math.Abs(v)
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}

	// strconv pads the exponent to two digits ("1.5e-07").
	mantissa, exp, _ := strings.Cut(strconv.FormatFloat(v, 'e', -1, 64), "e")
	return mantissa + "e" + exp[:1] + strings.TrimLeft(exp[1:], "0")
}

// ParseNumber reads display text back into a float64. Digit strings too
// long for float64 saturate to ±Inf; anything unparseable is NaN.
func ParseNumber(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err == nil {
		return v
	}

	if errors.Is(err, strconv.ErrRange) {
		return v
	}
	return math.NaN()
}
