// Package postgres indexes persisted results in PostgreSQL so operators can
// look up what was captured without walking the output directory.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/lib/pq"

	"idscan/internal/document"
	"idscan/internal/result"
	"idscan/pkg/platform/sentinel"
)

const schema = `
CREATE TABLE IF NOT EXISTS scan_results (
	stamp           TEXT PRIMARY KEY,
	document_id     TEXT NOT NULL,
	document_type   TEXT NOT NULL,
	name            TEXT NOT NULL,
	primary_path    TEXT NOT NULL DEFAULT '',
	secondary_path  TEXT NOT NULL DEFAULT '',
	transcript_path TEXT NOT NULL,
	parsed_path     TEXT NOT NULL DEFAULT '',
	captured_at     TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS scan_results_document_id_idx ON scan_results (document_id);
CREATE INDEX IF NOT EXISTS scan_results_captured_at_idx ON scan_results (captured_at DESC);
`

// Open connects to dsn through the lib/pq connector and verifies the
// connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	connector, err := pq.NewConnector(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	db := sql.OpenDB(connector)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}
	return db, nil
}

// Indexed decorates a Persister: after the wrapped store succeeds, the record
// is inserted into scan_results. An index failure is logged and does not fail
// the persist; the files are the source of truth.
type Indexed struct {
	next   result.Persister
	db     *sql.DB
	logger *slog.Logger
}

type Option func(*Indexed)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Indexed) {
		s.logger = logger
	}
}

func New(db *sql.DB, next result.Persister, opts ...Option) *Indexed {
	s := &Indexed{next: next, db: db, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EnsureSchema creates the index table if it does not exist.
func (s *Indexed) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure scan_results schema: %w", err)
	}
	return nil
}

func (s *Indexed) Persist(ctx context.Context, r *document.Result) (result.Record, error) {
	rec, err := s.next.Persist(ctx, r)
	if err != nil {
		return rec, err
	}
	if err := s.insert(ctx, rec); err != nil {
		s.logger.WarnContext(ctx, "failed to index result", "stamp", rec.Stamp, "error", err)
	}
	return rec, nil
}

func (s *Indexed) insert(ctx context.Context, rec result.Record) error {
	query := `
		INSERT INTO scan_results (stamp, document_id, document_type, name, primary_path,
			secondary_path, transcript_path, parsed_path, captured_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (stamp) DO NOTHING
	`
	_, err := s.db.ExecContext(ctx, query,
		rec.Stamp, rec.DocumentID, string(rec.Type), rec.Name, rec.PrimaryPath,
		rec.SecondaryPath, rec.TranscriptPath, rec.ParsedPath, rec.CapturedAt,
	)
	if err != nil {
		return fmt.Errorf("insert scan result: %w", err)
	}
	return nil
}

// Health pings the index database.
func (s *Indexed) Health(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: postgres ping: %w", sentinel.ErrUnavailable, err)
	}
	return nil
}

// Recent returns up to limit records, newest first. A non-empty documentID
// restricts the result to that document.
func (s *Indexed) Recent(ctx context.Context, documentID string, limit int) ([]result.Record, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT stamp, document_id, document_type, name, primary_path, secondary_path,
			transcript_path, parsed_path, captured_at
		FROM scan_results
		WHERE $1 = '' OR document_id = $1
		ORDER BY captured_at DESC
		LIMIT $2
	`, documentID, limit)
	if err != nil {
		return nil, fmt.Errorf("query scan results: %w", err)
	}
	defer rows.Close()

	var out []result.Record
	for rows.Next() {
		var rec result.Record
		var docType string
		if err := rows.Scan(&rec.Stamp, &rec.DocumentID, &docType, &rec.Name, &rec.PrimaryPath,
			&rec.SecondaryPath, &rec.TranscriptPath, &rec.ParsedPath, &rec.CapturedAt); err != nil {
			return nil, fmt.Errorf("scan result row: %w", err)
		}
		rec.Type = document.Type(docType)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scan results: %w", err)
	}
	return out, nil
}
