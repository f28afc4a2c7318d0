// Package device fronts the native scanner library. The library is not
// reentrant and occasionally stops answering, so every call is funneled through
// a Worker that owns the gateway on a single goroutine, and the Client puts a
// deadline on each call.
package device

import (
	"idscan/internal/document"
)

// ScanKind is what the driver believes is on the glass after ScanAuto.
type ScanKind string

const (
	ScanPassport ScanKind = "passport"
	ScanCard     ScanKind = "card"
	ScanNone     ScanKind = "none"
)

// ScanOutcome is the driver's answer to ScanAuto. CardType is a driver type
// code hint for card scans; zero when absent.
type ScanOutcome struct {
	Success  bool
	Kind     ScanKind
	CardType int
}

// Present reports whether the scan captured a document.
func (o ScanOutcome) Present() bool {
	return o.Success && o.Kind != ScanNone && o.Kind != ""
}

// TypeInfo is the driver's document type classification.
type TypeInfo struct {
	Code int
	Name string
}

// Type maps the driver classification to a document type.
func (i TypeInfo) Type() document.Type {
	return document.TypeFromDevice(i.Code, i.Name)
}

// Gateway is the native scanner library. Implementations are driven from a
// single goroutine and never called concurrently.
type Gateway interface {
	Init() bool
	Open(handle string) bool
	Close()
	// ScanAuto captures the document and stages images at outputBase.<ext>
	// and, optionally, outputBase_IR.<ext>. Staging may finish after return.
	ScanAuto(outputBase string) ScanOutcome
	DocumentType() (TypeInfo, bool)
	ReadMRZ() (string, bool)
	ReadIDCard() (document.Fields, bool)
	ReadDriverLicense() (document.Fields, bool)
	ReadAlienCard() (document.Fields, bool)
	ResetState()
	Destroy()
}

// Factory loads a fresh gateway instance.
type Factory func() (Gateway, error)
