package calculator

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"calculator-api/internal/handlers"
	"calculator-api/internal/keypad"
	"calculator-api/internal/machine"
	"calculator-api/internal/observability"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// tracer is the calculator's dedicated OpenTelemetry tracer.
var tracer = otel.Tracer("calculator")

// ---------------------------------------------------------------------------
// Handlers: binary operations
// ---------------------------------------------------------------------------

// Add handles POST /calculator/add
func Add(w http.ResponseWriter, r *http.Request) {
	handleBinaryOp(w, r, "add", machine.OpAdd)
}

// Subtract handles POST /calculator/subtract
func Subtract(w http.ResponseWriter, r *http.Request) {
	handleBinaryOp(w, r, "subtract", machine.OpSubtract)
}

// Multiply handles POST /calculator/multiply
func Multiply(w http.ResponseWriter, r *http.Request) {
	handleBinaryOp(w, r, "multiply", machine.OpMultiply)
}

// Divide handles POST /calculator/divide. Dividing by zero is not an error:
// the result is "Infinity", "-Infinity" or "NaN", as on the display.
func Divide(w http.ResponseWriter, r *http.Request) {
	handleBinaryOp(w, r, "divide", machine.OpDivide)
}

// handleBinaryOp is the shared implementation for all binary calculator operations.
func handleBinaryOp(w http.ResponseWriter, r *http.Request, opName string, op machine.Operator) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)

	ctx, span := tracer.Start(ctx, fmt.Sprintf("calculator.%s", opName),
		trace.WithAttributes(
			attribute.String("calculator.operation", opName),
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	var req CalcRequest
	if err := decodeBody(w, r, &req); err != nil {
		msg, status := bodyError(err)
		observability.RecordError(ctx, span, logger, errorCounter, opName, msg, err, status, w)
		return
	}

	span.SetAttributes(
		attribute.Float64("calculator.operand.a", req.A),
		attribute.Float64("calculator.operand.b", req.B),
	)

	start := time.Now()
	result := machine.FormatNumber(machine.Apply(req.A, req.B, op))
	elapsed := sinceMillis(start)

	recordResult(ctx, opName, elapsed, result)

	span.AddEvent("computation.complete", trace.WithAttributes(
		attribute.String("result", result),
		attribute.Float64("duration_ms", elapsed),
	))
	span.SetAttributes(attribute.String("calculator.result", result))
	span.SetStatus(codes.Ok, "")

	logger.Info("calculator operation completed",
		zap.String("operation", opName),
		zap.Float64("a", req.A),
		zap.Float64("b", req.B),
		zap.String("result", result),
		zap.String("request_id", requestID),
		zap.Float64("duration_ms", elapsed),
	)

	handlers.WriteJSON(w, http.StatusOK, CalcResponse{
		Operation: opName,
		A:         req.A,
		B:         req.B,
		Result:    result,
	})
}

// ---------------------------------------------------------------------------
// Handler: key replay, one child span per key
// ---------------------------------------------------------------------------

// Replay handles POST /calculator/replay: presses a sequence of keys on a
// fresh machine and reports the display after each one.
func Replay(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)

	ctx, span := tracer.Start(ctx, "calculator.replay",
		trace.WithAttributes(
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	var req ReplayRequest
	if err := decodeBody(w, r, &req); err != nil {
		msg, status := bodyError(err)
		observability.RecordError(ctx, span, logger, errorCounter, "replay", msg, err, status, w)
		return
	}

	if len(req.Keys) == 0 {
		observability.RecordError(ctx, span, logger, errorCounter, "replay", "no keys provided", errors.New("keys array is empty"), http.StatusBadRequest, w)
		return
	}
	if err := checkKeyCount(len(req.Keys)); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "replay", "too many keys", err, http.StatusBadRequest, w)
		return
	}

	span.SetAttributes(attribute.Int("replay.keys_count", len(req.Keys)))

	m := machine.New()
	steps := make([]ReplayStep, 0, len(req.Keys))

	for i, key := range req.Keys {
		_, keySpan := tracer.Start(ctx, fmt.Sprintf("calculator.replay.key.%d", i),
			trace.WithAttributes(
				attribute.Int("replay.key.index", i),
				attribute.String("replay.key.label", key),
				attribute.String("replay.key.display_before", m.Display()),
			),
		)

		cmd, err := keypad.Parse(key)
		if err != nil {
			keySpan.RecordError(err)
			keySpan.SetStatus(codes.Error, err.Error())
			keySpan.End()

			observability.RecordError(ctx, span, logger, errorCounter, "replay",
				fmt.Sprintf("unknown key %q at index %d", key, i), err, http.StatusBadRequest, w)
			return
		}

		start := time.Now()
		m.Dispatch(cmd)
		elapsed := sinceMillis(start)

		attrs := metric.WithAttributes(attribute.String("kind", cmd.Kind.String()))
		keysCounter.Add(ctx, 1, attrs)
		opsHistogram.Record(ctx, elapsed, attrs)

		keySpan.SetAttributes(
			attribute.String("replay.key.kind", cmd.Kind.String()),
			attribute.String("replay.key.display_after", m.Display()),
		)
		keySpan.SetStatus(codes.Ok, "")
		keySpan.End()

		logger.Debug("replay key applied",
			zap.Int("index", i),
			zap.String("key", key),
			zap.String("display", m.Display()),
		)

		steps = append(steps, ReplayStep{Key: key, Display: m.Display()})
	}

	recordResult(ctx, "replay", 0, m.Display())

	span.AddEvent("replay.complete", trace.WithAttributes(
		attribute.String("display", m.Display()),
		attribute.Int("total_keys", len(req.Keys)),
	))
	span.SetStatus(codes.Ok, "")

	logger.Info("replay completed",
		zap.Int("keys", len(req.Keys)),
		zap.String("display", m.Display()),
		zap.String("request_id", requestID),
	)

	handlers.WriteJSON(w, http.StatusOK, ReplayResponse{
		Steps:   steps,
		Display: m.Display(),
		State:   newStateResponse(m.Snapshot()),
	})
}

// recordResult counts one operation and, when display holds a finite
// number, records it on the last-result gauge.
func recordResult(ctx context.Context, opName string, elapsedMs float64, display string) {
	attrs := metric.WithAttributes(attribute.String("operation", opName))
	opsCounter.Add(ctx, 1, attrs)
	if elapsedMs > 0 {
		opsHistogram.Record(ctx, elapsedMs, attrs)
	}

	if v := machine.ParseNumber(display); !math.IsNaN(v) && !math.IsInf(v, 0) {
		resultGauge.Record(ctx, v, attrs)
	}
}

func sinceMillis(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}
