// Package staging waits for the image files the scanner driver writes after a
// scan. The driver may finish writing after ScanAuto returns, so artifacts are
// watched with fsnotify and, as a fallback, polled.
package staging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"idscan/pkg/platform/sentinel"
	pstrings "idscan/pkg/platform/strings"
)

// SecondarySuffix marks the infrared image.
const SecondarySuffix = "_IR"

var DefaultExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".tif"}

// Waiter locates staged artifacts.
type Waiter struct {
	exts   []string
	poll   time.Duration
	watch  bool
	logger *slog.Logger
}

type Option func(*Waiter)

// WithExtensions replaces the accepted image extensions. Case and a missing
// leading dot are tolerated.
func WithExtensions(exts ...string) Option {
	return func(w *Waiter) {
		if normalized := pstrings.Dedupe(exts, pstrings.Extension); len(normalized) > 0 {
			w.exts = normalized
		}
	}
}

func WithPollInterval(d time.Duration) Option {
	return func(w *Waiter) {
		if d > 0 {
			w.poll = d
		}
	}
}

// WithWatch toggles the fsnotify watcher; polling always runs.
func WithWatch(enabled bool) Option {
	return func(w *Waiter) {
		w.watch = enabled
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(w *Waiter) {
		w.logger = logger
	}
}

func New(opts ...Option) *Waiter {
	w := &Waiter{
		exts:   DefaultExtensions,
		poll:   100 * time.Millisecond,
		watch:  true,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Wait returns the path of base+suffix with any known extension once it exists
// and is non-empty. It fails with sentinel.ErrStagingIncomplete after timeout.
func (w *Waiter) Wait(ctx context.Context, base, suffix string, timeout time.Duration) (string, error) {
	stem := base + suffix
	if path, ok := w.lookup(stem); ok {
		return path, nil
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var events <-chan fsnotify.Event
	if w.watch {
		watcher, err := fsnotify.NewWatcher()
		if err == nil {
			defer watcher.Close()
			if err := watcher.Add(filepath.Dir(stem)); err == nil {
				events = watcher.Events
			} else {
				w.logger.DebugContext(ctx, "staging watch unavailable, polling", "error", err)
			}
		}
	}

	ticker := time.NewTicker(w.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if path, ok := w.lookup(stem); ok {
				return path, nil
			}
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return "", fmt.Errorf("%s after %s: %w", filepath.Base(stem), timeout, sentinel.ErrStagingIncomplete)
			}
			return "", ctx.Err()
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if !strings.HasPrefix(ev.Name, stem) {
				continue
			}
			if path, ok := w.lookup(stem); ok {
				return path, nil
			}
		case <-ticker.C:
			if path, ok := w.lookup(stem); ok {
				return path, nil
			}
		}
	}
}

func (w *Waiter) lookup(stem string) (string, bool) {
	for _, ext := range w.exts {
		path := stem + ext
		info, err := os.Stat(path)
		if err == nil && info.Mode().IsRegular() && info.Size() > 0 {
			return path, true
		}
	}
	return "", false
}

// Discard removes every artifact staged for base.
func (w *Waiter) Discard(base string) error {
	var errs []error
	for _, stem := range []string{base, base + SecondarySuffix} {
		for _, ext := range w.exts {
			err := os.Remove(stem + ext)
			if err != nil && !errors.Is(err, os.ErrNotExist) {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
