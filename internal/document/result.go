package document

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// TranscriptPlaceholder is written when a result carries neither MRZ nor fields.
const TranscriptPlaceholder = "(no text recognized)"

// Result is the outcome of one recognized scan attempt, handed to the
// persister and the notification sink.
type Result struct {
	Stamp          string    `json:"stamp"`
	DocumentID     string    `json:"document_id"`
	Type           Type      `json:"document_type"`
	Recognized     bool      `json:"recognized"`
	RawMRZ         string    `json:"raw_mrz,omitempty"`
	Fields         Fields    `json:"fields,omitempty"`
	Parsed         *Parsed   `json:"parsed,omitempty"`
	PrimaryImage   string    `json:"primary_image,omitempty"`
	SecondaryImage string    `json:"secondary_image,omitempty"`
	CapturedAt     time.Time `json:"captured_at"`
}

// Transcript renders the text stored next to the images: the raw MRZ when
// present, else a field dump, else a placeholder.
func (r *Result) Transcript() string {
	if strings.TrimSpace(r.RawMRZ) != "" {
		return r.RawMRZ
	}
	if len(r.Fields) == 0 {
		return TranscriptPlaceholder
	}

	keys := make([]string, 0, len(r.Fields))
	for k := range r.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	fmt.Fprintf(&b, "document_type: %s\n", r.Type)
	for _, k := range keys {
		fmt.Fprintf(&b, "%s: %s\n", k, r.Fields[k])
	}
	return b.String()
}
