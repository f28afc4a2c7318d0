package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"idscan/pkg/platform/sentinel"
)

// Metrics holds the scanner's Prometheus metrics. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	// Attempts by outcome: recognized, unrecognized, no_document, timeout, failed
	Attempts *prometheus.CounterVec

	// Device call latency by call class and result
	DeviceCallDuration *prometheus.HistogramVec

	Timeouts   prometheus.Counter
	Reconnects *prometheus.CounterVec
	Advisories prometheus.Counter

	LoopRunning prometheus.Gauge
	Connected   prometheus.Gauge
}

// New registers the scanner metrics with reg. Tests pass a fresh registry.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Attempts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "idscan_scan_attempts_total",
			Help: "Scan attempts by outcome",
		}, []string{"outcome"}),

		DeviceCallDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "idscan_device_call_duration_seconds",
			Help:    "Duration of native device calls by call class",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 15},
		}, []string{"call", "result"}),

		Timeouts: f.NewCounter(prometheus.CounterOpts{
			Name: "idscan_device_timeouts_total",
			Help: "Device calls that exceeded their deadline",
		}),

		Reconnects: f.NewCounterVec(prometheus.CounterOpts{
			Name: "idscan_reconnects_total",
			Help: "Reconnect sequences by result (ok, failed, suppressed)",
		}, []string{"result"}),

		Advisories: f.NewCounter(prometheus.CounterOpts{
			Name: "idscan_timeout_advisories_total",
			Help: "Times the loop was stopped after repeated timeouts",
		}),

		LoopRunning: f.NewGauge(prometheus.GaugeOpts{
			Name: "idscan_loop_running",
			Help: "Automatic scan loop state (1=running)",
		}),

		Connected: f.NewGauge(prometheus.GaugeOpts{
			Name: "idscan_device_connected",
			Help: "Device session state (1=open)",
		}),
	}
}

// ObserveDeviceCall records one device call.
func (m *Metrics) ObserveDeviceCall(class string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	switch {
	case errors.Is(err, sentinel.ErrTimeout):
		result = "timeout"
		m.Timeouts.Inc()
	case err != nil:
		result = "error"
	}
	m.DeviceCallDuration.WithLabelValues(class, result).Observe(elapsed.Seconds())
}

func (m *Metrics) IncAttempt(outcome string) {
	if m != nil {
		m.Attempts.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) IncReconnect(result string) {
	if m != nil {
		m.Reconnects.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) IncAdvisory() {
	if m != nil {
		m.Advisories.Inc()
	}
}

func (m *Metrics) SetLoopRunning(running bool) {
	if m != nil {
		m.LoopRunning.Set(boolGauge(running))
	}
}

func (m *Metrics) SetConnected(connected bool) {
	if m != nil {
		m.Connected.Set(boolGauge(connected))
	}
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
