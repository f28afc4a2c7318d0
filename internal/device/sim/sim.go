// Package sim is a bench stand-in for the native scanner library. A document
// is "presented" by dropping present.json (plus the images it names) into the
// simulator directory; the next scan consumes it.
package sim

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"idscan/internal/device"
	"idscan/internal/document"
)

// PresentFile is the fixture a scan looks for.
const PresentFile = "present.json"

// Fixture describes the document on the glass.
type Fixture struct {
	Kind     device.ScanKind `json:"kind"`
	CardType int             `json:"card_type,omitempty"`
	TypeCode int             `json:"type_code"`
	TypeName string          `json:"type_name,omitempty"`
	MRZ      string          `json:"mrz,omitempty"`
	Fields   document.Fields `json:"fields,omitempty"`
	Image    string          `json:"image"`
	IRImage  string          `json:"ir_image,omitempty"`
}

// Gateway implements device.Gateway over a fixture directory.
type Gateway struct {
	dir    string
	logger *slog.Logger

	mu      sync.Mutex
	opened  bool
	current *Fixture
}

// New returns a factory producing simulators rooted at dir.
func New(dir string, logger *slog.Logger) device.Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return func() (device.Gateway, error) {
		if _, err := os.Stat(dir); err != nil {
			return nil, fmt.Errorf("simulator dir: %w", err)
		}
		return &Gateway{dir: dir, logger: logger}, nil
	}
}

func (g *Gateway) Init() bool {
	_, err := os.Stat(g.dir)
	return err == nil
}

func (g *Gateway) Open(handle string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.opened = true
	g.logger.Debug("simulator opened", "handle", handle)
	return true
}

func (g *Gateway) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.opened = false
}

func (g *Gateway) ScanAuto(outputBase string) device.ScanOutcome {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.opened {
		return device.ScanOutcome{}
	}

	path := filepath.Join(g.dir, PresentFile)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return device.ScanOutcome{Success: true, Kind: device.ScanNone}
	}
	if err != nil {
		g.logger.Warn("simulator fixture unreadable", "error", err)
		return device.ScanOutcome{}
	}

	var fx Fixture
	if err := json.Unmarshal(data, &fx); err != nil {
		g.logger.Warn("simulator fixture invalid", "error", err)
		return device.ScanOutcome{}
	}
	if err := os.Rename(path, path+".consumed"); err != nil {
		g.logger.Warn("simulator fixture not consumed", "error", err)
	}

	if fx.Image != "" {
		if err := g.stage(fx.Image, outputBase); err != nil {
			g.logger.Warn("simulator image not staged", "error", err)
		}
	}
	if fx.IRImage != "" {
		if err := g.stage(fx.IRImage, outputBase+"_IR"); err != nil {
			g.logger.Warn("simulator IR image not staged", "error", err)
		}
	}

	g.current = &fx
	return device.ScanOutcome{Success: true, Kind: fx.Kind, CardType: fx.CardType}
}

func (g *Gateway) stage(name, base string) error {
	src, err := os.Open(filepath.Join(g.dir, name))
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(base + filepath.Ext(name))
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}

func (g *Gateway) DocumentType() (device.TypeInfo, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.current == nil {
		return device.TypeInfo{}, false
	}
	return device.TypeInfo{Code: g.current.TypeCode, Name: g.current.TypeName}, true
}

func (g *Gateway) ReadMRZ() (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.current == nil || g.current.MRZ == "" {
		return "", false
	}
	return g.current.MRZ, true
}

func (g *Gateway) readFields() (document.Fields, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.current == nil || len(g.current.Fields) == 0 {
		return nil, false
	}
	out := make(document.Fields, len(g.current.Fields))
	for k, v := range g.current.Fields {
		out[k] = v
	}
	return out, true
}

func (g *Gateway) ReadIDCard() (document.Fields, bool)        { return g.readFields() }
func (g *Gateway) ReadDriverLicense() (document.Fields, bool) { return g.readFields() }
func (g *Gateway) ReadAlienCard() (document.Fields, bool)     { return g.readFields() }

func (g *Gateway) ResetState() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.current = nil
}

func (g *Gateway) Destroy() {
	g.ResetState()
}
