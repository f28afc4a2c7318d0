package metrics

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"idscan/pkg/platform/sentinel"
)

func TestMetrics(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveDeviceCall("scan", 20*time.Millisecond, nil)
	m.ObserveDeviceCall("getter", time.Second, fmt.Errorf("read_mrz: %w", sentinel.ErrTimeout))
	m.ObserveDeviceCall("open", time.Millisecond, errors.New("boom"))
	m.IncAttempt("recognized")
	m.IncAttempt("recognized")
	m.IncReconnect("suppressed")
	m.SetLoopRunning(true)
	m.SetConnected(false)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Timeouts))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Attempts.WithLabelValues("recognized")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Reconnects.WithLabelValues("suppressed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LoopRunning))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Connected))
	assert.Equal(t, 3, testutil.CollectAndCount(m.DeviceCallDuration))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveDeviceCall("scan", time.Second, nil)
		m.IncAttempt("failed")
		m.IncReconnect("ok")
		m.IncAdvisory()
		m.SetLoopRunning(true)
		m.SetConnected(true)
	})
}
