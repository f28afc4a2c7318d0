package validate

import (
	"context"
	"log/slog"
	"time"

	"idscan/internal/document"
)

// FieldReader reads the OCR fields of one card type from the device.
type FieldReader interface {
	ReadFields(ctx context.Context, t document.Type) (document.Fields, bool, error)
}

// ProbeResult is the first card type whose rule accepted its fields.
type ProbeResult struct {
	Type    document.Type
	Fields  document.Fields
	Verdict Verdict
}

// Probe identifies a card of unknown type by reading each card type in turn
// (ID card, driver license, alien card) and accepting the first that passes
// its rule. Calls are strictly sequential. A device error aborts the probe.
func Probe(ctx context.Context, reader FieldReader, rounds int, delay time.Duration, logger *slog.Logger) (ProbeResult, bool, error) {
	if logger == nil {
		logger = slog.Default()
	}
	for round := 1; round <= rounds; round++ {
		for _, t := range document.CardTypes {
			fields, ok, err := reader.ReadFields(ctx, t)
			if err != nil {
				return ProbeResult{}, false, err
			}
			if !ok {
				continue
			}
			if v := Check(t, fields); v.Accepted {
				logger.DebugContext(ctx, "probe matched card type",
					"document_type", t,
					"round", round,
					"reason", v.Reason,
				)
				return ProbeResult{Type: t, Fields: fields, Verdict: v}, true, nil
			}
		}
		if round < rounds {
			if err := sleep(ctx, delay); err != nil {
				return ProbeResult{}, false, err
			}
		}
	}
	return ProbeResult{}, false, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
