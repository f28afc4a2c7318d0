package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"idscan/internal/device"
	"idscan/internal/document"
	"idscan/internal/document/mrz"
	"idscan/internal/document/validate"
	"idscan/internal/notify"
	"idscan/internal/scan/staging"
	"idscan/pkg/platform/sentinel"
)

// Outcome classifies a finished attempt.
type Outcome string

const (
	OutcomeRecognized        Outcome = "recognized"
	OutcomeNoDocument        Outcome = "no_document"
	OutcomeUnrecognized      Outcome = "unrecognized"
	OutcomeTimeout           Outcome = "timeout"
	OutcomeStagingIncomplete Outcome = "staging_incomplete"
	OutcomeFailed            Outcome = "failed"
)

func classify(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeRecognized
	case errors.Is(err, sentinel.ErrNoDocument):
		return OutcomeNoDocument
	case errors.Is(err, sentinel.ErrTimeout):
		return OutcomeTimeout
	case errors.Is(err, sentinel.ErrStagingIncomplete):
		return OutcomeStagingIncomplete
	case errors.Is(err, sentinel.ErrRecognitionFailed):
		return OutcomeUnrecognized
	default:
		return OutcomeFailed
	}
}

// attempt is one scan of one presentation.
type attempt struct {
	stamp     string
	startedAt time.Time
	base      string

	primary   string
	secondary string

	docType        document.Type
	rawMRZ         string
	passportNumber string
	fields         document.Fields
	parsed         *document.Parsed
	persisted      bool
}

type attemptReport struct {
	stamp      string
	outcome    Outcome
	err        error
	documentID string
}

// attempt runs on its own goroutine while the control loop holds the busy
// flag, so it is the only user of the device until it returns.
func (o *Orchestrator) attempt(ctx context.Context, stamp string) attemptReport {
	ctx, span := o.tracer.Start(ctx, "scan.attempt", trace.WithAttributes(attribute.String("scan.stamp", stamp)))
	defer span.End()

	a := &attempt{
		stamp:     stamp,
		startedAt: o.clock(),
		base:      filepath.Join(o.cfg.StagingDir, "scan_"+stamp),
	}
	res, err := o.run(ctx, a)
	o.cleanup(ctx, a, err)

	rep := attemptReport{stamp: stamp, outcome: classify(err), err: err}
	if res != nil {
		rep.documentID = res.DocumentID
	}

	span.SetAttributes(
		attribute.String("scan.outcome", string(rep.outcome)),
		attribute.String("document.type", string(a.docType)),
	)
	if rep.outcome != OutcomeRecognized && rep.outcome != OutcomeNoDocument {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(rep.outcome))
	}

	log := o.logger.With("stamp", stamp, "outcome", rep.outcome, "duration", time.Since(a.startedAt))
	switch rep.outcome {
	case OutcomeNoDocument:
		log.DebugContext(ctx, "scan attempt finished")
	case OutcomeRecognized:
		log.InfoContext(ctx, "scan attempt finished", "document_type", a.docType, "document_id", rep.documentID)
	default:
		log.WarnContext(ctx, "scan attempt failed", "document_type", a.docType, "error", err)
	}
	return rep
}

func (o *Orchestrator) run(ctx context.Context, a *attempt) (*document.Result, error) {
	o.setStage(StageScanning)
	scan, err := o.dev.ScanAuto(ctx, a.base)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	if !scan.Present() {
		return nil, sentinel.ErrNoDocument
	}

	o.setStage(StageAwaitingImage)
	if a.primary, err = o.stager.Wait(ctx, a.base, "", o.cfg.PrimaryWait); err != nil {
		return nil, err
	}
	if a.secondary, err = o.stager.Wait(ctx, a.base, staging.SecondarySuffix, o.cfg.SecondaryWait); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		o.logger.DebugContext(ctx, "no secondary image", "stamp", a.stamp)
	}

	o.setStage(StageTypeDetect)
	if a.docType, err = o.detectType(ctx, scan); err != nil {
		return nil, err
	}

	o.setStage(StageExtracting)
	switch {
	case a.docType == document.TypePassport:
		err = o.readMRZ(ctx, a)
	case a.docType.IsCard():
		err = o.readCard(ctx, a)
	case o.cfg.ProbeUnknownCards:
		err = o.probeCard(ctx, a)
	default:
		// Card getters on an unclassified card corrupt the next attempt.
		err = fmt.Errorf("card type unresolved: %w", sentinel.ErrRecognitionFailed)
	}
	if err != nil {
		return nil, err
	}

	o.setStage(StageValidating)
	if !o.recognize(ctx, a) {
		return nil, fmt.Errorf("%s rejected: %w", a.docType, sentinel.ErrRecognitionFailed)
	}
	res := o.result(a)

	o.setStage(StagePersisting)
	rec, err := o.persister.Persist(ctx, res)
	if err != nil {
		return nil, fmt.Errorf("persist: %w", err)
	}
	a.persisted = true

	o.setStage(StageNotified)
	nctx, cancel := context.WithTimeout(ctx, o.notifyTTL)
	defer cancel()
	if err := o.sink.PublishOutcome(nctx, notify.OutcomeEvent{Result: *res, Record: rec}); err != nil {
		o.logger.WarnContext(ctx, "outcome notification failed", "stamp", a.stamp, "error", err)
	}
	return res, nil
}

// detectType asks the device for the document type, retrying while it
// reports nothing usable, then falls back to the hints from the scan.
func (o *Orchestrator) detectType(ctx context.Context, scan device.ScanOutcome) (document.Type, error) {
	for i := 1; i <= o.cfg.TypeDetectAttempts; i++ {
		info, ok, err := o.dev.DocumentType(ctx)
		if err != nil {
			return document.TypeUnknown, fmt.Errorf("document type: %w", err)
		}
		if t := info.Type(); ok && t.Known() {
			return t, nil
		}
		if i < o.cfg.TypeDetectAttempts {
			if err := sleep(ctx, o.cfg.TypeDetectDelay); err != nil {
				return document.TypeUnknown, err
			}
		}
	}
	if scan.Kind == device.ScanPassport {
		return document.TypePassport, nil
	}
	if t := document.TypeFromCode(scan.CardType); t.IsCard() {
		return t, nil
	}
	return document.TypeUnknown, nil
}

func (o *Orchestrator) readMRZ(ctx context.Context, a *attempt) error {
	raw, ok, err := o.dev.ReadMRZ(ctx)
	if err != nil {
		return fmt.Errorf("read mrz: %w", err)
	}
	if ok {
		a.rawMRZ = raw
	}
	return nil
}

// readCard calls the getter for the detected card type until its rule
// accepts the fields or the per-type budget runs out.
func (o *Orchestrator) readCard(ctx context.Context, a *attempt) error {
	budget := o.cfg.OCRAttemptsFor(a.docType)
	for i := 1; i <= budget; i++ {
		fields, ok, err := o.dev.ReadFields(ctx, a.docType)
		if err != nil {
			return fmt.Errorf("read %s: %w", a.docType, err)
		}
		if ok {
			a.fields = fields
			if validate.Check(a.docType, fields).Accepted {
				return nil
			}
		}
		if i < budget {
			if err := sleep(ctx, o.cfg.OCRRetryDelay); err != nil {
				return err
			}
		}
	}
	return nil
}

func (o *Orchestrator) probeCard(ctx context.Context, a *attempt) error {
	found, ok, err := validate.Probe(ctx, o.dev, o.cfg.ProbeRounds, o.cfg.ProbeDelay, o.logger)
	if err != nil {
		return fmt.Errorf("probe card type: %w", err)
	}
	if !ok {
		return fmt.Errorf("no card type matched: %w", sentinel.ErrRecognitionFailed)
	}
	a.docType = found.Type
	a.fields = found.Fields
	return nil
}

// recognize applies the acceptance rule and builds the parsed document.
func (o *Orchestrator) recognize(ctx context.Context, a *attempt) bool {
	if a.docType != document.TypePassport {
		if !validate.Check(a.docType, a.fields).Accepted {
			return false
		}
		if parsed, ok := document.FromFields(a.docType, a.fields); ok {
			a.parsed = &parsed
		}
		return true
	}

	if !validate.Passport(a.rawMRZ).Accepted {
		return false
	}
	if pn, err := mrz.ExtractPassportNumber(a.rawMRZ); err == nil {
		a.passportNumber = pn.Number
		if !pn.CheckValid {
			o.logger.WarnContext(ctx, "passport number check digit mismatch", "stamp", a.stamp)
		}
	}
	if p, ok := mrz.ParseFull(a.rawMRZ); ok {
		parsed := document.FromPassport(p)
		a.parsed = &parsed
		if !p.Checks.Valid() {
			o.logger.WarnContext(ctx, "mrz check digit mismatch", "stamp", a.stamp, "checks", p.Checks)
		}
	}
	return true
}

func (o *Orchestrator) result(a *attempt) *document.Result {
	id := document.DocumentID(a.passportNumber, a.parsed, a.docType, func() string {
		return "scan-" + a.stamp
	})
	return &document.Result{
		Stamp:          a.stamp,
		DocumentID:     document.SanitizeKey(id),
		Type:           a.docType,
		Recognized:     true,
		RawMRZ:         a.rawMRZ,
		Fields:         a.fields,
		Parsed:         a.parsed,
		PrimaryImage:   a.primary,
		SecondaryImage: a.secondary,
		CapturedAt:     a.startedAt,
	}
}

// cleanup removes whatever a failed attempt staged and clears device state
// after a rejected document. A wedged device is left to the reconnect.
func (o *Orchestrator) cleanup(ctx context.Context, a *attempt, err error) {
	if err == nil || a.persisted {
		return
	}
	if derr := o.stager.Discard(a.base); derr != nil {
		o.logger.WarnContext(ctx, "failed to discard staged images", "stamp", a.stamp, "error", derr)
	}
	if errors.Is(err, sentinel.ErrRecognitionFailed) {
		if rerr := o.dev.ResetState(ctx); rerr != nil {
			o.logger.WarnContext(ctx, "device state reset failed", "stamp", a.stamp, "error", rerr)
		}
	}
}

// establish runs the connection sequence. With closeFirst it first closes the
// current session, bounded and best effort, and pauses before recreating the
// execution context. A wedged call is abandoned, never awaited.
func (o *Orchestrator) establish(ctx context.Context, closeFirst bool) error {
	if closeFirst {
		if err := o.dev.Close(ctx); err != nil {
			o.logger.WarnContext(ctx, "close before reconnect failed", "error", err)
		}
		if err := sleep(ctx, o.cfg.ReconnectPause); err != nil {
			return err
		}
	}
	if err := o.dev.Recreate(); err != nil {
		return err
	}
	if err := o.dev.Init(ctx); err != nil {
		return err
	}
	return o.dev.Open(ctx, o.cfg.Handle)
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
