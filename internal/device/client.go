package device

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"idscan/internal/document"
	"idscan/pkg/platform/sentinel"
)

// CallClass groups device calls that share a deadline.
type CallClass string

const (
	CallInit   CallClass = "init"
	CallOpen   CallClass = "open"
	CallClose  CallClass = "close"
	CallScan   CallClass = "scan"
	CallGetter CallClass = "getter"
)

// Timeouts are the per-class call deadlines.
type Timeouts struct {
	Init   time.Duration `yaml:"init"`
	Open   time.Duration `yaml:"open"`
	Close  time.Duration `yaml:"close"`
	Scan   time.Duration `yaml:"scan"`
	Getter time.Duration `yaml:"getter"`
}

func DefaultTimeouts() Timeouts {
	return Timeouts{
		Init:   5 * time.Second,
		Open:   3 * time.Second,
		Close:  2 * time.Second,
		Scan:   12 * time.Second,
		Getter: 1500 * time.Millisecond,
	}
}

func (t Timeouts) For(class CallClass) time.Duration {
	switch class {
	case CallInit:
		return t.Init
	case CallOpen:
		return t.Open
	case CallClose:
		return t.Close
	case CallScan:
		return t.Scan
	default:
		return t.Getter
	}
}

// Observer receives the latency and outcome of every device call.
type Observer interface {
	ObserveDeviceCall(class string, elapsed time.Duration, err error)
}

// Client issues deadline-bounded calls into the current Worker and can
// replace it when the native layer wedges. It is owned by one goroutine.
type Client struct {
	factory  Factory
	timeouts Timeouts
	observer Observer
	logger   *slog.Logger

	worker  *Worker
	retired []*Worker
}

type ClientOption func(*Client)

func WithTimeouts(t Timeouts) ClientOption {
	return func(c *Client) {
		c.timeouts = t
	}
}

func WithObserver(o Observer) ClientOption {
	return func(c *Client) {
		c.observer = o
	}
}

func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

func NewClient(factory Factory, opts ...ClientOption) *Client {
	c := &Client{
		factory:  factory,
		timeouts: DefaultTimeouts(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Recreate discards the current execution context, without waiting on any
// call it may be stuck in, and starts a new one around a fresh gateway.
func (c *Client) Recreate() error {
	if c.worker != nil {
		c.worker.Close()
		c.retired = append(c.retired, c.worker)
		c.worker = nil
	}
	c.prune()

	gw, err := c.factory()
	if err != nil {
		return fmt.Errorf("create gateway: %w: %v", sentinel.ErrLibraryLoad, err)
	}
	c.worker = NewWorker(gw)
	return nil
}

func (c *Client) prune() {
	live := c.retired[:0]
	for _, w := range c.retired {
		select {
		case <-w.Done():
		default:
			live = append(live, w)
		}
	}
	c.retired = live
}

// Shutdown closes the current context and waits, bounded by ctx, for every
// abandoned context to finish its last native call.
func (c *Client) Shutdown(ctx context.Context) error {
	if c.worker != nil {
		c.worker.Close()
		c.retired = append(c.retired, c.worker)
		c.worker = nil
	}
	for _, w := range c.retired {
		select {
		case <-w.Done():
		case <-ctx.Done():
			c.logger.WarnContext(ctx, "device contexts still wedged at shutdown", "count", len(c.retired))
			return ctx.Err()
		}
	}
	c.retired = nil
	return nil
}

func call[T any](ctx context.Context, c *Client, class CallClass, op string, fn func(Gateway) T) (T, error) {
	var zero T
	w := c.worker
	if w == nil {
		return zero, fmt.Errorf("%s: %w", op, sentinel.ErrContextClosed)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeouts.For(class))
	defer cancel()

	start := time.Now()
	v, err := w.Call(ctx, op, func(g Gateway) any { return fn(g) })
	if c.observer != nil {
		c.observer.ObserveDeviceCall(string(class), time.Since(start), err)
	}
	if err != nil {
		return zero, err
	}
	return v.(T), nil
}

func (c *Client) Init(ctx context.Context) error {
	ok, err := call(ctx, c, CallInit, "init", func(g Gateway) bool { return g.Init() })
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("init: %w", sentinel.ErrLibraryLoad)
	}
	return nil
}

func (c *Client) Open(ctx context.Context, handle string) error {
	ok, err := call(ctx, c, CallOpen, "open", func(g Gateway) bool { return g.Open(handle) })
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("open: %w", sentinel.ErrDeviceNotConnected)
	}
	return nil
}

func (c *Client) Close(ctx context.Context) error {
	_, err := call(ctx, c, CallClose, "close", func(g Gateway) struct{} {
		g.Close()
		return struct{}{}
	})
	return err
}

func (c *Client) ScanAuto(ctx context.Context, outputBase string) (ScanOutcome, error) {
	return call(ctx, c, CallScan, "scan_auto", func(g Gateway) ScanOutcome { return g.ScanAuto(outputBase) })
}

type typeReply struct {
	info TypeInfo
	ok   bool
}

func (c *Client) DocumentType(ctx context.Context) (TypeInfo, bool, error) {
	r, err := call(ctx, c, CallGetter, "document_type", func(g Gateway) typeReply {
		info, ok := g.DocumentType()
		return typeReply{info: info, ok: ok}
	})
	return r.info, r.ok, err
}

type textReply struct {
	text string
	ok   bool
}

func (c *Client) ReadMRZ(ctx context.Context) (string, bool, error) {
	r, err := call(ctx, c, CallGetter, "read_mrz", func(g Gateway) textReply {
		text, ok := g.ReadMRZ()
		return textReply{text: text, ok: ok}
	})
	return r.text, r.ok, err
}

type fieldsReply struct {
	fields document.Fields
	ok     bool
}

var getters = map[document.Type]func(Gateway) (document.Fields, bool){
	document.TypeIDCard:        Gateway.ReadIDCard,
	document.TypeDriverLicense: Gateway.ReadDriverLicense,
	document.TypeAlienCard:     Gateway.ReadAlienCard,
}

// ReadFields calls the OCR getter for card type t.
func (c *Client) ReadFields(ctx context.Context, t document.Type) (document.Fields, bool, error) {
	get, ok := getters[t]
	if !ok {
		return nil, false, fmt.Errorf("read fields for %s: %w", t, sentinel.ErrInvalidState)
	}
	r, err := call(ctx, c, CallGetter, "read_"+string(t), func(g Gateway) fieldsReply {
		fields, ok := get(g)
		return fieldsReply{fields: fields, ok: ok}
	})
	return r.fields, r.ok, err
}

func (c *Client) ResetState(ctx context.Context) error {
	_, err := call(ctx, c, CallGetter, "reset_state", func(g Gateway) struct{} {
		g.ResetState()
		return struct{}{}
	})
	return err
}
