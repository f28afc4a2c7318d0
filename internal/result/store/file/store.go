// Package file persists results as flat files: the staged images moved next
// to a text transcript and, when structured fields exist, a JSON document.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"idscan/internal/document"
	"idscan/internal/result"
)

const timestampLayout = "20060102_150405"

// Store writes results under one output directory.
type Store struct {
	dir    string
	clock  func() time.Time
	logger *slog.Logger
}

type Option func(*Store)

func WithClock(clock func() time.Time) Option {
	return func(s *Store) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New creates dir if needed.
func New(dir string, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	s := &Store{dir: dir, clock: time.Now, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Name is the artifact base name for a document captured at t:
// <sanitized id>_<YYYYMMDD_HHMMSS>_<ms>.
func Name(documentID string, t time.Time) string {
	return fmt.Sprintf("%s_%s_%03d", document.SanitizeKey(documentID), t.Format(timestampLayout), t.Nanosecond()/int(time.Millisecond))
}

// Persist moves the staged images into the output directory and writes the
// transcript and parsed document beside them. On failure every artifact it
// wrote is removed, so a retry never finds a half-persisted result.
func (s *Store) Persist(ctx context.Context, r *document.Result) (rec result.Record, err error) {
	captured := r.CapturedAt
	if captured.IsZero() {
		captured = s.clock()
	}

	name, transcript, err := s.claim(Name(r.DocumentID, captured))
	if err != nil {
		return result.Record{}, err
	}
	written := []string{transcript.Name()}
	defer func() {
		if err != nil {
			s.remove(ctx, written)
			rec = result.Record{}
		}
	}()

	rec = result.Record{
		DocumentID:     r.DocumentID,
		Stamp:          r.Stamp,
		Type:           r.Type,
		Name:           name,
		TranscriptPath: transcript.Name(),
		CapturedAt:     captured,
	}

	_, werr := io.WriteString(transcript, r.Transcript())
	if cerr := transcript.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		return rec, fmt.Errorf("write transcript: %w", werr)
	}

	if r.PrimaryImage != "" {
		dst := filepath.Join(s.dir, name+filepath.Ext(r.PrimaryImage))
		if err := move(r.PrimaryImage, dst); err != nil {
			return rec, fmt.Errorf("store primary image: %w", err)
		}
		written = append(written, dst)
		rec.PrimaryPath = dst
	}
	if r.SecondaryImage != "" {
		dst := filepath.Join(s.dir, name+"_IR"+filepath.Ext(r.SecondaryImage))
		if err := move(r.SecondaryImage, dst); err != nil {
			// The infrared image is optional; keep the result.
			s.logger.WarnContext(ctx, "failed to store secondary image", "stamp", r.Stamp, "error", err)
		} else {
			written = append(written, dst)
			rec.SecondaryPath = dst
		}
	}

	if r.Parsed != nil {
		raw, err := json.MarshalIndent(r.Parsed, "", "  ")
		if err != nil {
			return rec, fmt.Errorf("encode parsed document: %w", err)
		}
		path := filepath.Join(s.dir, name+".json")
		tmp := path + ".tmp"
		written = append(written, tmp)
		if err := os.WriteFile(tmp, raw, 0o640); err != nil {
			return rec, fmt.Errorf("write parsed document: %w", err)
		}
		if err := os.Rename(tmp, path); err != nil {
			return rec, fmt.Errorf("write parsed document: %w", err)
		}
		rec.ParsedPath = path
	}

	s.logger.InfoContext(ctx, "result persisted",
		"stamp", r.Stamp,
		"document_id", r.DocumentID,
		"document_type", r.Type,
		"name", name,
	)
	return rec, nil
}

func (s *Store) remove(ctx context.Context, paths []string) {
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.logger.WarnContext(ctx, "failed to remove partial result", "path", p, "error", err)
		}
	}
}

// claim reserves a base name by exclusively creating its transcript file.
// Two documents captured in the same millisecond get a numeric suffix.
func (s *Store) claim(base string) (string, *os.File, error) {
	name := base
	for i := 1; ; i++ {
		f, err := os.OpenFile(filepath.Join(s.dir, name+".txt"), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
		if err == nil {
			return name, f, nil
		}
		if !errors.Is(err, os.ErrExist) || i > 100 {
			return "", nil, fmt.Errorf("create transcript: %w", err)
		}
		name = base + "-" + strconv.Itoa(i)
	}
}

// move renames src to dst, copying when they sit on different filesystems.
func move(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o640)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}
