// Package orchestrator runs the scan cycle: it decides when an attempt may
// start, drives one attempt at a time through the device, and escalates
// repeated device timeouts into a reconnect or, at the threshold, a stopped
// loop awaiting the operator.
//
// All mutable state belongs to the control goroutine started by Run. Public
// methods post commands to it; Status reads a published snapshot.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"idscan/internal/device"
	"idscan/internal/document"
	"idscan/internal/notify"
	"idscan/internal/platform/metrics"
	"idscan/internal/result"
	"idscan/internal/scan/config"
	"idscan/pkg/platform/circuit"
	"idscan/pkg/platform/sentinel"
)

// Device is the deadline-bounded device boundary. *device.Client implements it.
type Device interface {
	Recreate() error
	Init(ctx context.Context) error
	Open(ctx context.Context, handle string) error
	Close(ctx context.Context) error
	ScanAuto(ctx context.Context, outputBase string) (device.ScanOutcome, error)
	DocumentType(ctx context.Context) (device.TypeInfo, bool, error)
	ReadMRZ(ctx context.Context) (string, bool, error)
	ReadFields(ctx context.Context, t document.Type) (document.Fields, bool, error)
	ResetState(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// Stager finds and removes the image files a scan leaves behind.
type Stager interface {
	Wait(ctx context.Context, base, suffix string, timeout time.Duration) (string, error)
	Discard(base string) error
}

// Stage is where the current attempt is in the cycle.
type Stage string

const (
	StageIdle          Stage = "idle"
	StageTriggered     Stage = "triggered"
	StageScanning      Stage = "scanning"
	StageAwaitingImage Stage = "awaiting_image"
	StageTypeDetect    Stage = "type_detect"
	StageExtracting    Stage = "extracting"
	StageValidating    Stage = "validating"
	StagePersisting    Stage = "persisting"
	StageNotified      Stage = "notified"
	StageRecovering    Stage = "recovering"
)

// Status is a point-in-time view of the orchestrator.
type Status struct {
	Connected           bool      `json:"connected"`
	LoopRunning         bool      `json:"loop_running"`
	Busy                bool      `json:"busy"`
	Stage               Stage     `json:"stage"`
	PendingTrigger      bool      `json:"pending_trigger"`
	ConsecutiveTimeouts int       `json:"consecutive_timeouts"`
	Advisory            bool      `json:"advisory"`
	BackoffUntil        time.Time `json:"backoff_until,omitzero"`
	LastFailureAt       time.Time `json:"last_failure_at,omitzero"`
	LastReconnectAt     time.Time `json:"last_reconnect_at,omitzero"`
	LastError           string    `json:"last_error,omitempty"`
	LastDocumentID      string    `json:"last_document_id,omitempty"`
}

// AdvisoryMessage is surfaced when repeated timeouts stop the loop.
const AdvisoryMessage = "too many scanner timeouts: remove the document and retry"

type jobKind int

const (
	jobNone jobKind = iota
	jobAttempt
	jobConnect
	jobReconnect
)

type commandKind int

const (
	cmdTick commandKind = iota
	cmdTrigger
	cmdStartLoop
	cmdStopLoop
	cmdConnect
	cmdReconnect
)

type command struct {
	kind  commandKind
	reply chan error
}

type jobReport struct {
	kind    jobKind
	attempt attemptReport
	err     error
}

// session is the long-lived device state. Only the control goroutine touches it.
type session struct {
	opened          bool
	timeouts        *circuit.Breaker
	lastFailureAt   time.Time
	lastReconnectAt time.Time
}

type Orchestrator struct {
	cfg       config.Config
	dev       Device
	stager    Stager
	persister result.Persister
	sink      notify.Sink
	metrics   *metrics.Metrics
	tracer    trace.Tracer
	logger    *slog.Logger
	clock     func() time.Time
	newStamp  func() string
	notifyTTL time.Duration

	cmds    chan command
	done    chan jobReport
	stopped chan struct{}
	started atomic.Bool
	status  atomic.Pointer[Status]
	stage   atomic.Value

	// control goroutine state
	ticker           *time.Ticker
	busy             jobKind
	pendingTrigger   bool
	pendingReconnect bool
	resumeLoop       bool
	clearTimeouts    bool
	backoffUntil     time.Time
	session          session
	lastErr          string
	lastDocumentID   string
}

type Option func(*Orchestrator)

func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(o *Orchestrator) {
		o.tracer = t
	}
}

// WithClock overrides time.Now for backoff and window arithmetic.
func WithClock(clock func() time.Time) Option {
	return func(o *Orchestrator) {
		if clock != nil {
			o.clock = clock
		}
	}
}

func WithStampFunc(fn func() string) Option {
	return func(o *Orchestrator) {
		if fn != nil {
			o.newStamp = fn
		}
	}
}

// WithNotifyTimeout bounds each status and outcome publication.
func WithNotifyTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.notifyTTL = d
		}
	}
}

func New(cfg config.Config, dev Device, stager Stager, persister result.Persister, sink notify.Sink, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cfg:       cfg.Clone(),
		dev:       dev,
		stager:    stager,
		persister: persister,
		sink:      sink,
		tracer:    otel.Tracer("idscan/scan/orchestrator"),
		logger:    slog.Default(),
		clock:     time.Now,
		newStamp:  uuid.NewString,
		notifyTTL: defaultNotifyTimeout,
		cmds:      make(chan command),
		done:      make(chan jobReport),
		stopped:   make(chan struct{}),
		session: session{
			timeouts: circuit.New("device-timeouts",
				circuit.WithFailureThreshold(cfg.TimeoutThreshold),
				circuit.WithSuccessThreshold(1),
			),
		},
	}
	for _, opt := range opts {
		opt(o)
	}
	o.stage.Store(StageIdle)
	o.publish()
	return o
}

// Status returns the latest snapshot. It never blocks on the control loop.
func (o *Orchestrator) Status() Status {
	s := *o.status.Load()
	s.Stage = o.stage.Load().(Stage)
	return s
}

// Tick runs one automatic-loop step: it starts an attempt unless one is in
// flight, the backoff window is open, or the device is closed.
func (o *Orchestrator) Tick(ctx context.Context) error {
	return o.post(ctx, cmdTick)
}

// Trigger starts a manual attempt now, or queues exactly one if an attempt is
// in flight. Inside the backoff window it returns sentinel.ErrCoolingDown.
func (o *Orchestrator) Trigger(ctx context.Context) error {
	return o.post(ctx, cmdTrigger)
}

// StartLoop starts the automatic loop and clears a timeout advisory.
func (o *Orchestrator) StartLoop(ctx context.Context) error {
	return o.post(ctx, cmdStartLoop)
}

func (o *Orchestrator) StopLoop(ctx context.Context) error {
	return o.post(ctx, cmdStopLoop)
}

// Connect starts the initial init and open sequence.
func (o *Orchestrator) Connect(ctx context.Context) error {
	return o.post(ctx, cmdConnect)
}

// Reconnect starts the recovery sequence on operator request. It returns
// sentinel.ErrReconnectSuppressed inside the suppression window.
func (o *Orchestrator) Reconnect(ctx context.Context) error {
	return o.post(ctx, cmdReconnect)
}

func (o *Orchestrator) post(ctx context.Context, kind commandKind) error {
	cmd := command{kind: kind, reply: make(chan error, 1)}
	select {
	case o.cmds <- cmd:
	case <-o.stopped:
		return fmt.Errorf("orchestrator stopped: %w", sentinel.ErrInvalidState)
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-cmd.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (o *Orchestrator) setStage(s Stage) {
	o.stage.Store(s)
}

func (o *Orchestrator) publish() {
	o.status.Store(&Status{
		Connected:           o.session.opened,
		LoopRunning:         o.ticker != nil,
		Busy:                o.busy != jobNone,
		PendingTrigger:      o.pendingTrigger,
		ConsecutiveTimeouts: o.session.timeouts.Failures(),
		Advisory:            o.session.timeouts.IsOpen(),
		BackoffUntil:        o.backoffUntil,
		LastFailureAt:       o.session.lastFailureAt,
		LastReconnectAt:     o.session.lastReconnectAt,
		LastError:           o.lastErr,
		LastDocumentID:      o.lastDocumentID,
	})
}
