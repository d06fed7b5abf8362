package calculator

import (
	"context"
	"errors"
	"net/http"
	"time"

	"calculator-api/internal/handlers"
	"calculator-api/internal/keypad"
	"calculator-api/internal/machine"
	"calculator-api/internal/observability"
	"calculator-api/internal/session"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Sessions serves the stateful widget endpoints. Each session owns one
// machine inside the store.
type Sessions struct {
	store *session.Store
}

func NewSessions(store *session.Store) *Sessions {
	return &Sessions{store: store}
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrCapacity):
		return http.StatusServiceUnavailable
	case errors.Is(err, keypad.ErrUnknownKey), errors.Is(err, errTooManyKeys):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Create handles POST /calculator/sessions
func (s *Sessions) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)

	ctx, span := tracer.Start(ctx, "calculator.session.create")
	defer span.End()

	id, state, err := s.store.Create()
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "session.create", "cannot create session", err, statusFor(err), w)
		return
	}

	span.SetAttributes(attribute.String("session.id", id))
	span.SetStatus(codes.Ok, "")

	logger.Info("session created",
		zap.String("session_id", id),
		zap.Int("active", s.store.Len()),
		zap.String("request_id", observability.RequestIDFromContext(ctx)),
	)

	handlers.WriteJSON(w, http.StatusCreated, SessionResponse{ID: id, State: newStateResponse(state)})
}

// Get handles GET /calculator/sessions/{id}
func (s *Sessions) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	id := chi.URLParam(r, "id")

	ctx, span := tracer.Start(ctx, "calculator.session.get",
		trace.WithAttributes(attribute.String("session.id", id)),
	)
	defer span.End()

	state, err := s.store.Get(id)
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "session.get", "session not found", err, statusFor(err), w)
		return
	}

	span.SetStatus(codes.Ok, "")
	handlers.WriteJSON(w, http.StatusOK, SessionResponse{ID: id, State: newStateResponse(state)})
}

// Press handles POST /calculator/sessions/{id}/keys. An unknown session is
// reported before the body is examined. All labels are parsed before any
// is applied, so a bad label leaves the session untouched.
func (s *Sessions) Press(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)
	id := chi.URLParam(r, "id")

	ctx, span := tracer.Start(ctx, "calculator.session.press",
		trace.WithAttributes(
			attribute.String("session.id", id),
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	if _, err := s.store.Get(id); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "session.press", "session not found", err, statusFor(err), w)
		return
	}

	var req PressRequest
	if err := decodeBody(w, r, &req); err != nil {
		msg, status := bodyError(err)
		observability.RecordError(ctx, span, logger, errorCounter, "session.press", msg, err, status, w)
		return
	}

	labels := req.labels()
	if len(labels) == 0 {
		observability.RecordError(ctx, span, logger, errorCounter, "session.press", "no keys provided", errors.New("key and keys are empty"), http.StatusBadRequest, w)
		return
	}
	if err := checkKeyCount(len(labels)); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "session.press", "too many keys", err, statusFor(err), w)
		return
	}

	cmds, err := keypad.ParseAll(labels)
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "session.press", err.Error(), err, statusFor(err), w)
		return
	}

	start := time.Now()
	state, err := s.store.Press(id, cmds...)
	elapsed := sinceMillis(start)
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "session.press", "session not found", err, statusFor(err), w)
		return
	}

	countKeys(ctx, cmds)
	recordResult(ctx, "press", elapsed, state.Display)

	span.SetAttributes(
		attribute.Int("session.keys_count", len(cmds)),
		attribute.String("session.display", state.Display),
		attribute.String("session.phase", string(state.Phase)),
	)
	span.SetStatus(codes.Ok, "")

	logger.Info("keys applied",
		zap.String("session_id", id),
		zap.Strings("keys", labels),
		zap.String("display", state.Display),
		zap.String("phase", string(state.Phase)),
		zap.String("request_id", requestID),
	)

	handlers.WriteJSON(w, http.StatusOK, SessionResponse{ID: id, State: newStateResponse(state)})
}

// Delete handles DELETE /calculator/sessions/{id}
func (s *Sessions) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	id := chi.URLParam(r, "id")

	ctx, span := tracer.Start(ctx, "calculator.session.delete",
		trace.WithAttributes(attribute.String("session.id", id)),
	)
	defer span.End()

	if err := s.store.Delete(id); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "session.delete", "session not found", err, statusFor(err), w)
		return
	}

	span.SetStatus(codes.Ok, "")
	logger.Info("session deleted",
		zap.String("session_id", id),
		zap.Int("active", s.store.Len()),
	)

	w.WriteHeader(http.StatusNoContent)
}

// Keypad handles GET /calculator/keypad
func Keypad(w http.ResponseWriter, r *http.Request) {
	handlers.WriteJSON(w, http.StatusOK, newKeypadResponse(keypad.Default()))
}

func countKeys(ctx context.Context, cmds []machine.Command) {
	for _, c := range cmds {
		keysCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", c.Kind.String())))
	}
}
