// Package result defines how a recognized scan is stored.
package result

import (
	"context"
	"time"

	"idscan/internal/document"
)

// Record locates the artifacts written for one persisted result.
type Record struct {
	DocumentID     string        `json:"document_id"`
	Stamp          string        `json:"stamp"`
	Type           document.Type `json:"document_type"`
	Name           string        `json:"name"`
	PrimaryPath    string        `json:"primary_path,omitempty"`
	SecondaryPath  string        `json:"secondary_path,omitempty"`
	TranscriptPath string        `json:"transcript_path"`
	ParsedPath     string        `json:"parsed_path,omitempty"`
	CapturedAt     time.Time     `json:"captured_at"`
}

// Persister stores a recognized result. Persist is called once per physical
// document presentation.
type Persister interface {
	Persist(ctx context.Context, r *document.Result) (Record, error)
}
