// Package config holds the scan-cycle tunables: deadlines, backoffs and retry
// budgets. Defaults match field-tested values; an optional YAML file overrides
// any subset of them.
package config

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"idscan/internal/device"
	"idscan/internal/document"
)

// Config tunes the orchestrator.
type Config struct {
	Handle       string        `yaml:"handle"`
	StagingDir   string        `yaml:"staging_dir"`
	TickInterval time.Duration `yaml:"tick_interval"`

	PrimaryWait   time.Duration `yaml:"primary_wait"`
	SecondaryWait time.Duration `yaml:"secondary_wait"`

	TypeDetectAttempts int           `yaml:"type_detect_attempts"`
	TypeDetectDelay    time.Duration `yaml:"type_detect_delay"`

	// OCRAttempts is the number of getter calls per card type before the
	// attempt is declared unrecognized.
	OCRAttempts   map[document.Type]int `yaml:"ocr_attempts"`
	OCRRetryDelay time.Duration         `yaml:"ocr_retry_delay"`

	// ProbeUnknownCards enables trying every card getter when the driver
	// cannot classify a card. Off by default: an unclassified card is dropped.
	ProbeUnknownCards bool          `yaml:"probe_unknown_cards"`
	ProbeRounds       int           `yaml:"probe_rounds"`
	ProbeDelay        time.Duration `yaml:"probe_delay"`

	FailureBackoff time.Duration `yaml:"failure_backoff"`
	Cooldown       time.Duration `yaml:"cooldown"`

	TimeoutThreshold int           `yaml:"timeout_threshold"`
	ReconnectWindow  time.Duration `yaml:"reconnect_window"`
	ReconnectPause   time.Duration `yaml:"reconnect_pause"`

	Device device.Timeouts `yaml:"device_timeouts"`
}

func DefaultConfig() Config {
	return Config{
		Handle:             "default",
		StagingDir:         os.TempDir(),
		TickInterval:       500 * time.Millisecond,
		PrimaryWait:        8 * time.Second,
		SecondaryWait:      1500 * time.Millisecond,
		TypeDetectAttempts: 3,
		TypeDetectDelay:    150 * time.Millisecond,
		OCRAttempts: map[document.Type]int{
			document.TypeIDCard:        2,
			document.TypeAlienCard:     2,
			document.TypeDriverLicense: 4,
		},
		OCRRetryDelay:    200 * time.Millisecond,
		ProbeRounds:      2,
		ProbeDelay:       150 * time.Millisecond,
		FailureBackoff:   2500 * time.Millisecond,
		Cooldown:         1300 * time.Millisecond,
		TimeoutThreshold: 3,
		ReconnectWindow:  3 * time.Second,
		ReconnectPause:   250 * time.Millisecond,
		Device:           device.DefaultTimeouts(),
	}
}

// Load reads path over DefaultConfig. An empty path yields the defaults.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read tuning file: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse tuning file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("tuning file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values the orchestrator cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.TickInterval <= 0 {
		errs = append(errs, errors.New("tick_interval must be positive"))
	}
	if c.PrimaryWait <= 0 {
		errs = append(errs, errors.New("primary_wait must be positive"))
	}
	if c.TypeDetectAttempts < 1 {
		errs = append(errs, errors.New("type_detect_attempts must be at least 1"))
	}
	if c.TimeoutThreshold < 1 {
		errs = append(errs, errors.New("timeout_threshold must be at least 1"))
	}
	if c.ProbeRounds < 1 {
		errs = append(errs, errors.New("probe_rounds must be at least 1"))
	}
	for t, n := range c.OCRAttempts {
		if !t.IsCard() {
			errs = append(errs, fmt.Errorf("ocr_attempts: %q is not a card type", t))
		} else if n < 1 {
			errs = append(errs, fmt.Errorf("ocr_attempts[%s] must be at least 1", t))
		}
	}
	for _, class := range []device.CallClass{device.CallInit, device.CallOpen, device.CallClose, device.CallScan, device.CallGetter} {
		if c.Device.For(class) <= 0 {
			errs = append(errs, fmt.Errorf("device_timeouts.%s must be positive", class))
		}
	}
	return errors.Join(errs...)
}

// OCRAttemptsFor returns the getter budget for card type t, at least one.
func (c Config) OCRAttemptsFor(t document.Type) int {
	if n := c.OCRAttempts[t]; n > 0 {
		return n
	}
	return 1
}

// Clone returns a copy that shares no map with c.
func (c Config) Clone() Config {
	c.OCRAttempts = maps.Clone(c.OCRAttempts)
	return c
}
