package calculator

import (
	"github.com/go-chi/chi/v5"

	"calculator-api/internal/session"
)

// RegisterRoutes mounts all calculator endpoints onto the given router
// under the /calculator prefix.
func RegisterRoutes(r chi.Router, store *session.Store) {
	sessions := NewSessions(store)

	r.Route("/calculator", func(r chi.Router) {
		r.Get("/keypad", Keypad)

		r.Post("/add", Add)
		r.Post("/subtract", Subtract)
		r.Post("/multiply", Multiply)
		r.Post("/divide", Divide)
		r.Post("/replay", Replay)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", sessions.Create)
			r.Get("/{id}", sessions.Get)
			r.Post("/{id}/keys", sessions.Press)
			r.Delete("/{id}", sessions.Delete)
		})
	})
}
