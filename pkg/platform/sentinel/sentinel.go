package sentinel

import "errors"

// Sentinel errors for scan-cycle facts. The device layer and the orchestrator
// return these (optionally wrapped) so callers classify failures with errors.Is
// instead of matching strings.
//
// They map onto the attempt failure taxonomy:
// - ErrDeviceNotConnected: precondition, surfaced immediately, never retried
// - ErrTimeout: a device call exceeded its deadline; counted toward escalation
// - ErrNoDocument: nothing on the glass; not a failure
// - ErrRecognitionFailed: extracted data rejected by heuristics
// - ErrStagingIncomplete: the primary image never materialized
// - ErrReconnectSuppressed: reconnect requested inside the suppression window
// - ErrCoolingDown: manual trigger inside the post-attempt backoff window
// - ErrContextClosed: the execution context owning native calls was torn down
// - ErrLibraryLoad: the native library refused to initialize
// - ErrUnavailable: a backing service (index, publisher) did not answer
var (
	ErrDeviceNotConnected  = errors.New("device not connected")
	ErrTimeout             = errors.New("operation timed out")
	ErrNoDocument          = errors.New("no document present")
	ErrRecognitionFailed   = errors.New("recognition failed")
	ErrStagingIncomplete   = errors.New("staging incomplete")
	ErrReconnectSuppressed = errors.New("reconnect suppressed")
	ErrCoolingDown         = errors.New("scan cooling down")
	ErrContextClosed       = errors.New("execution context closed")
	ErrLibraryLoad         = errors.New("native library load failed")
	ErrInvalidState        = errors.New("invalid state")
	ErrUnavailable         = errors.New("service unavailable")
)
