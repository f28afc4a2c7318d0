package device

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"idscan/pkg/platform/sentinel"
)

type request struct {
	id uint64
	op string
	fn func(Gateway) any
}

type response struct {
	value any
	err   error
}

// Worker is the isolated execution context that owns one gateway. Requests are
// correlated by id through a pending table; callers wait on their own reply
// channel, so a wedged native call never blocks a caller past its deadline.
// Close rejects every outstanding request and abandons a wedged call: the
// gateway is destroyed on the worker goroutine once that call returns.
type Worker struct {
	gw       Gateway
	requests chan request
	closed   chan struct{}
	done     chan struct{}
	once     sync.Once

	mu      sync.Mutex
	pending map[uint64]chan response
	seq     atomic.Uint64
}

// NewWorker starts the execution context for gw.
func NewWorker(gw Gateway) *Worker {
	w := &Worker{
		gw:       gw,
		requests: make(chan request),
		closed:   make(chan struct{}),
		done:     make(chan struct{}),
		pending:  make(map[uint64]chan response),
	}
	go w.run()
	return w
}

func (w *Worker) run() {
	defer close(w.done)
	defer w.destroy()
	for {
		select {
		case <-w.closed:
			return
		case req := <-w.requests:
			select {
			case <-w.closed:
				return
			default:
			}
			w.resolve(req.id, w.invoke(req))
		}
	}
}

func (w *Worker) invoke(req request) (res response) {
	defer func() {
		if r := recover(); r != nil {
			res = response{err: fmt.Errorf("%s: native call panicked: %v", req.op, r)}
		}
	}()
	return response{value: req.fn(w.gw)}
}

func (w *Worker) destroy() {
	defer func() { _ = recover() }()
	w.gw.Destroy()
}

func (w *Worker) resolve(id uint64, res response) {
	w.mu.Lock()
	ch, ok := w.pending[id]
	delete(w.pending, id)
	w.mu.Unlock()
	if ok {
		ch <- res
	}
}

func (w *Worker) forget(id uint64) {
	w.mu.Lock()
	delete(w.pending, id)
	w.mu.Unlock()
}

// Call runs fn on the worker goroutine and waits for its reply or ctx.
func (w *Worker) Call(ctx context.Context, op string, fn func(Gateway) any) (any, error) {
	id := w.seq.Add(1)
	reply := make(chan response, 1)

	w.mu.Lock()
	if w.pending == nil {
		w.mu.Unlock()
		return nil, fmt.Errorf("%s: %w", op, sentinel.ErrContextClosed)
	}
	w.pending[id] = reply
	w.mu.Unlock()

	select {
	case w.requests <- request{id: id, op: op, fn: fn}:
	case <-ctx.Done():
		w.forget(id)
		return nil, callError(ctx, op)
	case <-w.closed:
		return nil, fmt.Errorf("%s: %w", op, sentinel.ErrContextClosed)
	}

	select {
	case res := <-reply:
		return res.value, res.err
	case <-ctx.Done():
		w.forget(id)
		return nil, callError(ctx, op)
	}
}

func callError(ctx context.Context, op string) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, sentinel.ErrTimeout)
	}
	return fmt.Errorf("%s: %w", op, ctx.Err())
}

// Close tears the context down without waiting for an in-flight call.
func (w *Worker) Close() {
	w.once.Do(func() {
		close(w.closed)
		w.mu.Lock()
		for id, ch := range w.pending {
			ch <- response{err: fmt.Errorf("request %d: %w", id, sentinel.ErrContextClosed)}
		}
		w.pending = nil
		w.mu.Unlock()
	})
}

// Done is closed once the worker goroutine has exited and the gateway is destroyed.
func (w *Worker) Done() <-chan struct{} {
	return w.done
}
