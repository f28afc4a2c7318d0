// Package httptransport exposes the operator API: scanner controls, status,
// recent notifications and persisted results.
package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"idscan/pkg/platform/middleware/metadata"
	"idscan/pkg/platform/middleware/operator"
	"idscan/pkg/platform/middleware/requesttime"
	"idscan/pkg/platform/sentinel"
)

// RouterConfig wires the router's cross-cutting pieces.
type RouterConfig struct {
	// OperatorToken guards the control routes when non-empty.
	OperatorToken string
	// Metrics serves GET /metrics when set.
	Metrics http.Handler
	Logger  *slog.Logger
}

// NewRouter mounts h behind the shared middleware chain.
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(metadata.RequestID)
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)

	h.Register(r)
	r.Group(func(r chi.Router) {
		r.Use(operator.RequireToken(cfg.OperatorToken, logger))
		h.RegisterControls(r)
	})
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}
	return r
}

type errorResponse struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

// writeError translates scanner errors to HTTP responses with a JSON envelope.
func writeError(w http.ResponseWriter, err error) {
	status, code := http.StatusInternalServerError, "internal_error"
	switch {
	case errors.Is(err, sentinel.ErrDeviceNotConnected):
		status, code = http.StatusConflict, "device_not_connected"
	case errors.Is(err, sentinel.ErrReconnectSuppressed):
		status, code = http.StatusTooManyRequests, "reconnect_suppressed"
	case errors.Is(err, sentinel.ErrCoolingDown):
		status, code = http.StatusTooManyRequests, "cooling_down"
	case errors.Is(err, sentinel.ErrInvalidState), errors.Is(err, sentinel.ErrUnavailable):
		status, code = http.StatusServiceUnavailable, "unavailable"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status, code = http.StatusServiceUnavailable, "unavailable"
	}
	desc := ""
	if status != http.StatusInternalServerError {
		desc = err.Error()
	}
	writeErrorCode(w, status, code, desc)
}

func writeErrorCode(w http.ResponseWriter, status int, code, desc string) {
	writeJSON(w, status, errorResponse{Error: code, Description: desc})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
