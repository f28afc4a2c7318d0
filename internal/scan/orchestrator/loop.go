package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"idscan/internal/notify"
	"idscan/pkg/platform/sentinel"
)

const (
	shutdownTimeout      = 5 * time.Second
	defaultNotifyTimeout = 2 * time.Second
)

// Run is the control goroutine. It returns once ctx is done, any in-flight
// job has finished and the device is released.
func (o *Orchestrator) Run(ctx context.Context) error {
	if !o.started.CompareAndSwap(false, true) {
		return fmt.Errorf("run called twice: %w", sentinel.ErrInvalidState)
	}
	defer close(o.stopped)

	for {
		var tick <-chan time.Time
		if o.ticker != nil {
			tick = o.ticker.C
		}

		select {
		case <-ctx.Done():
			o.shutdown()
			return nil
		case <-tick:
			o.tick(ctx)
		case cmd := <-o.cmds:
			err := o.handle(ctx, cmd.kind)
			o.publish()
			cmd.reply <- err
			continue
		case rep := <-o.done:
			o.finish(ctx, rep)
		}
		o.publish()
	}
}

func (o *Orchestrator) handle(ctx context.Context, kind commandKind) error {
	switch kind {
	case cmdTick:
		o.tick(ctx)
		return nil
	case cmdTrigger:
		return o.trigger(ctx)
	case cmdStartLoop:
		o.session.timeouts.Reset()
		o.startLoop()
		return nil
	case cmdStopLoop:
		o.stopLoop()
		return nil
	case cmdConnect:
		return o.startConnect(ctx)
	case cmdReconnect:
		// The timeout counter clears only once the operator's reconnect succeeds.
		if err := o.startReconnect(ctx); err != nil {
			return err
		}
		o.clearTimeouts = true
		return nil
	default:
		return fmt.Errorf("command %d: %w", kind, sentinel.ErrInvalidState)
	}
}

func (o *Orchestrator) tick(ctx context.Context) {
	if o.busy != jobNone || !o.session.opened || o.clock().Before(o.backoffUntil) {
		return
	}
	o.startAttempt(ctx)
}

func (o *Orchestrator) trigger(ctx context.Context) error {
	switch {
	case o.busy != jobNone:
		o.pendingTrigger = true
		return nil
	case !o.session.opened:
		return sentinel.ErrDeviceNotConnected
	case o.clock().Before(o.backoffUntil):
		return fmt.Errorf("until %s: %w", o.backoffUntil.Format(time.RFC3339Nano), sentinel.ErrCoolingDown)
	}
	o.startAttempt(ctx)
	return nil
}

func (o *Orchestrator) startLoop() {
	if o.ticker == nil {
		o.ticker = time.NewTicker(o.cfg.TickInterval)
		o.logger.Info("scan loop started", "interval", o.cfg.TickInterval)
	}
	o.metrics.SetLoopRunning(true)
}

func (o *Orchestrator) stopLoop() {
	if o.ticker != nil {
		o.ticker.Stop()
		o.ticker = nil
		o.logger.Info("scan loop stopped")
	}
	o.metrics.SetLoopRunning(false)
}

func (o *Orchestrator) startAttempt(ctx context.Context) {
	stamp := o.newStamp()
	o.busy = jobAttempt
	o.setStage(StageTriggered)
	go func() {
		o.done <- jobReport{kind: jobAttempt, attempt: o.attempt(ctx, stamp)}
	}()
}

func (o *Orchestrator) startConnect(ctx context.Context) error {
	if o.busy != jobNone {
		return fmt.Errorf("connect while busy: %w", sentinel.ErrInvalidState)
	}
	o.busy = jobConnect
	o.setStage(StageRecovering)
	go func() {
		o.done <- jobReport{kind: jobConnect, err: o.establish(ctx, false)}
	}()
	return nil
}

// startReconnect begins the recovery sequence unless one is running or queued,
// or the previous one started inside the suppression window. During an
// attempt the request is queued until the attempt completes.
func (o *Orchestrator) startReconnect(ctx context.Context) error {
	now := o.clock()
	inWindow := !o.session.lastReconnectAt.IsZero() && now.Sub(o.session.lastReconnectAt) < o.cfg.ReconnectWindow
	if o.busy == jobReconnect || o.busy == jobConnect || o.pendingReconnect || inWindow {
		o.metrics.IncReconnect("suppressed")
		o.logger.Info("reconnect suppressed", "last_reconnect_at", o.session.lastReconnectAt)
		return sentinel.ErrReconnectSuppressed
	}
	if o.busy == jobAttempt {
		o.pendingReconnect = true
		return nil
	}

	o.session.lastReconnectAt = now
	o.resumeLoop = o.ticker != nil
	o.stopLoop()
	o.session.opened = false
	o.metrics.SetConnected(false)
	o.busy = jobReconnect
	o.setStage(StageRecovering)
	o.logger.Info("reconnecting device", "resume_loop", o.resumeLoop)
	go func() {
		o.done <- jobReport{kind: jobReconnect, err: o.establish(ctx, true)}
	}()
	return nil
}

func (o *Orchestrator) finish(ctx context.Context, rep jobReport) {
	o.busy = jobNone
	o.setStage(StageIdle)

	switch rep.kind {
	case jobAttempt:
		o.finishAttempt(ctx, rep.attempt)
	case jobConnect, jobReconnect:
		o.finishRecovery(ctx, rep)
	}
	if o.busy != jobNone {
		return
	}

	switch {
	case o.pendingReconnect:
		o.pendingReconnect = false
		if err := o.startReconnect(ctx); err != nil {
			o.clearTimeouts = false
			if !errors.Is(err, sentinel.ErrReconnectSuppressed) {
				o.logger.WarnContext(ctx, "deferred reconnect failed to start", "error", err)
			}
		}
	case o.pendingTrigger:
		o.pendingTrigger = false
		if o.session.opened {
			o.startAttempt(ctx)
		}
	}
}

// finishAttempt is the single place an attempt's outcome turns into backoff,
// timeout accounting and escalation.
func (o *Orchestrator) finishAttempt(ctx context.Context, rep attemptReport) {
	now := o.clock()
	o.metrics.IncAttempt(string(rep.outcome))

	switch rep.outcome {
	case OutcomeNoDocument:
		o.session.timeouts.RecordSuccess()
		return
	case OutcomeRecognized:
		o.session.timeouts.RecordSuccess()
		o.backoffUntil = now.Add(o.cfg.Cooldown)
		o.lastDocumentID = rep.documentID
		o.lastErr = ""
		return
	}

	o.session.lastFailureAt = now
	o.backoffUntil = now.Add(o.cfg.FailureBackoff)
	o.lastErr = rep.err.Error()

	switch {
	case rep.outcome == OutcomeTimeout:
		_, change := o.session.timeouts.RecordFailure()
		switch {
		case change.Opened:
			o.stopLoop()
			o.metrics.IncAdvisory()
			o.logger.WarnContext(ctx, "scan loop stopped after repeated timeouts",
				"consecutive_timeouts", o.session.timeouts.Failures(),
			)
			o.notifyStatus(ctx, notify.StatusEvent{
				Connected: o.session.opened,
				Error:     AdvisoryMessage,
				Advisory:  true,
			})
		case o.session.timeouts.IsOpen():
			// Already escalated; wait for the operator.
		default:
			if err := o.startReconnect(ctx); err != nil && !errors.Is(err, sentinel.ErrReconnectSuppressed) {
				o.logger.WarnContext(ctx, "reconnect failed to start", "error", err)
			}
		}
	case errors.Is(rep.err, sentinel.ErrDeviceNotConnected), errors.Is(rep.err, sentinel.ErrContextClosed):
		o.session.opened = false
		o.metrics.SetConnected(false)
		o.notifyStatus(ctx, notify.StatusEvent{Connected: false, Error: rep.err.Error()})
	}
}

func (o *Orchestrator) finishRecovery(ctx context.Context, rep jobReport) {
	resume := rep.kind == jobReconnect && o.resumeLoop
	resetTimeouts := rep.kind == jobReconnect && o.clearTimeouts
	o.resumeLoop = false
	if rep.kind == jobReconnect {
		o.clearTimeouts = false
	}

	if rep.err != nil {
		o.session.opened = false
		o.lastErr = rep.err.Error()
		o.metrics.SetConnected(false)
		if rep.kind == jobReconnect {
			o.metrics.IncReconnect("failed")
		}
		o.logger.ErrorContext(ctx, "device connection failed", "error", rep.err)
		o.notifyStatus(ctx, notify.StatusEvent{Connected: false, Error: rep.err.Error()})
		return
	}

	o.session.opened = true
	o.metrics.SetConnected(true)
	if rep.kind == jobReconnect {
		o.metrics.IncReconnect("ok")
	}
	if resetTimeouts {
		o.session.timeouts.Reset()
	}
	o.logger.InfoContext(ctx, "device connected", "handle", o.cfg.Handle)
	o.notifyStatus(ctx, notify.StatusEvent{Connected: true})
	if resume {
		o.startLoop()
	}
}

func (o *Orchestrator) notifyStatus(ctx context.Context, ev notify.StatusEvent) {
	ctx, cancel := context.WithTimeout(ctx, o.notifyTTL)
	defer cancel()
	if err := o.sink.PublishStatus(ctx, ev); err != nil {
		o.logger.WarnContext(ctx, "status notification failed", "error", err)
	}
}

// shutdown waits for the in-flight job, which observes the cancelled
// context, then closes the device and waits for abandoned native calls.
func (o *Orchestrator) shutdown() {
	o.stopLoop()
	if o.busy != jobNone {
		<-o.done
		o.busy = jobNone
	}
	o.setStage(StageIdle)

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if o.session.opened {
		if err := o.dev.Close(ctx); err != nil {
			o.logger.WarnContext(ctx, "device close failed", "error", err)
		}
		o.session.opened = false
	}
	if err := o.dev.Shutdown(ctx); err != nil {
		o.logger.WarnContext(ctx, "device shutdown incomplete", "error", err)
	}
	o.metrics.SetConnected(false)
	o.publish()
}
