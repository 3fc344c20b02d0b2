package http

import (
	"context"
	"net/http"
	"time"

	applog "budget/internal/log"
)

const readinessTimeout = 5 * time.Second

type readiness struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(map[string]string{"status": "ok"}).Write(w)
}

// handleReady fails only when the store is unreachable. Events are best
// effort and only reported.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	out := readiness{Status: "ready", Checks: map[string]string{}}
	status := http.StatusOK

	if s.deps.Store != nil {
		if err := s.deps.Store.Ping(ctx); err != nil {
			applog.FromContext(r.Context()).WithComponent(applog.ComponentStorage).WarnContext(r.Context(),
				"Readiness check failed", applog.FieldError, err)
			out.Status, out.Checks["store"] = "unavailable", "error"
			status = http.StatusServiceUnavailable
		} else {
			out.Checks["store"] = "ok"
		}
	}

	switch {
	case s.deps.Events == nil:
		out.Checks["amqp"] = "disabled"
	case s.deps.Events.Healthy():
		out.Checks["amqp"] = "ok"
	default:
		out.Checks["amqp"] = "degraded"
	}

	NewJSONResponse().Status(status).Body(out).Write(w)
}
