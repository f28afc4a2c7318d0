package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/singleflight"

	"idscan/internal/notify"
	"idscan/internal/result"
	"idscan/internal/scan/orchestrator"
	"idscan/pkg/requestcontext"
)

// Scanner is the orchestrator surface the operator API drives.
type Scanner interface {
	Status() orchestrator.Status
	Trigger(ctx context.Context) error
	StartLoop(ctx context.Context) error
	StopLoop(ctx context.Context) error
	Reconnect(ctx context.Context) error
}

// EventSource returns the most recent notifications, oldest first.
type EventSource interface {
	Recent(n int) []notify.Event
}

// ResultIndex lists persisted results, newest first.
type ResultIndex interface {
	Recent(ctx context.Context, documentID string, limit int) ([]result.Record, error)
}

// HealthCheck reports a dependency failure as a non-nil error.
type HealthCheck func(ctx context.Context) error

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// Handler serves scanner controls and read-only views.
type Handler struct {
	scanner Scanner
	events  EventSource
	results ResultIndex
	checks  map[string]HealthCheck
	logger  *slog.Logger

	// reconnects coalesces concurrent operator reconnect requests into one
	// orchestrator call; every caller sees that call's result.
	reconnects singleflight.Group
}

type Option func(*Handler)

func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithEvents exposes GET /scanner/events.
func WithEvents(src EventSource) Option {
	return func(h *Handler) {
		h.events = src
	}
}

// WithResults exposes GET /scanner/results.
func WithResults(idx ResultIndex) Option {
	return func(h *Handler) {
		h.results = idx
	}
}

// WithHealthCheck adds a named dependency check to GET /health.
func WithHealthCheck(name string, check HealthCheck) Option {
	return func(h *Handler) {
		h.checks[name] = check
	}
}

func New(scanner Scanner, opts ...Option) *Handler {
	h := &Handler{
		scanner: scanner,
		checks:  make(map[string]HealthCheck),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts the read-only routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Get("/health", h.handleHealth)
	r.Get("/scanner/status", h.handleStatus)
	if h.events != nil {
		r.Get("/scanner/events", h.handleEvents)
	}
	if h.results != nil {
		r.Get("/scanner/results", h.handleResults)
	}
}

// RegisterControls mounts the mutating routes on r. Callers wrap r with the
// operator guard.
func (h *Handler) RegisterControls(r chi.Router) {
	r.Post("/scanner/loop/start", h.command("start_loop", h.scanner.StartLoop, http.StatusOK))
	r.Post("/scanner/loop/stop", h.command("stop_loop", h.scanner.StopLoop, http.StatusOK))
	r.Post("/scanner/trigger", h.command("trigger", h.scanner.Trigger, http.StatusAccepted))
	r.Post("/scanner/reconnect", h.command("reconnect", h.reconnect, http.StatusAccepted))
}

func (h *Handler) command(name string, fn func(context.Context) error, okStatus int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if err := fn(ctx); err != nil {
			h.logger.WarnContext(ctx, "scanner command rejected",
				"command", name,
				"request_id", requestcontext.RequestID(ctx),
				"client_ip", requestcontext.ClientIP(ctx),
				"error", err,
			)
			writeError(w, err)
			return
		}
		h.logger.InfoContext(ctx, "scanner command accepted",
			"command", name,
			"request_id", requestcontext.RequestID(ctx),
		)
		writeJSON(w, okStatus, h.scanner.Status())
	}
}

func (h *Handler) reconnect(ctx context.Context) error {
	_, err, _ := h.reconnects.Do("reconnect", func() (any, error) {
		return nil, h.scanner.Reconnect(context.WithoutCancel(ctx))
	})
	return err
}

func (h *Handler) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.scanner.Status())
}

type eventsResponse struct {
	Events []notify.Event `json:"events"`
}

func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}
	events := h.events.Recent(limit)
	if events == nil {
		events = []notify.Event{}
	}
	writeJSON(w, http.StatusOK, eventsResponse{Events: events})
}

type resultsResponse struct {
	Results []result.Record `json:"results"`
}

func (h *Handler) handleResults(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	records, err := h.results.Recent(ctx, r.URL.Query().Get("document_id"), limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "list scan results", "request_id", requestcontext.RequestID(ctx), "error", err)
		writeError(w, err)
		return
	}
	if records == nil {
		records = []result.Record{}
	}
	writeJSON(w, http.StatusOK, resultsResponse{Results: records})
}

type healthResponse struct {
	Status      string            `json:"status"`
	Connected   bool              `json:"connected"`
	LoopRunning bool              `json:"loop_running"`
	Checks      map[string]string `json:"checks,omitempty"`
	CheckedAt   time.Time         `json:"checked_at"`
}

// handleHealth reports the process as healthy while its dependencies answer.
// A disconnected device degrades the report but does not fail it.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	st := h.scanner.Status()
	resp := healthResponse{
		Status:      "ok",
		Connected:   st.Connected,
		LoopRunning: st.LoopRunning,
		CheckedAt:   requestcontext.Now(r.Context()),
	}
	if !st.Connected {
		resp.Status = "degraded"
	}
	code := http.StatusOK
	if len(h.checks) > 0 {
		resp.Checks = make(map[string]string, len(h.checks))
		for name, check := range h.checks {
			if err := check(r.Context()); err != nil {
				resp.Checks[name] = err.Error()
				resp.Status = "unhealthy"
				code = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
	}
	writeJSON(w, code, resp)
}

func parseLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultListLimit, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		writeErrorCode(w, http.StatusBadRequest, "bad_request", "limit must be a positive integer")
		return 0, false
	}
	return min(n, maxListLimit), true
}
