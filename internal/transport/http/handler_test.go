package httptransport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"idscan/internal/document"
	"idscan/internal/notify"
	"idscan/internal/result"
	"idscan/internal/scan/orchestrator"
	"idscan/internal/transport/http/mocks"
	"idscan/pkg/platform/middleware/metadata"
	"idscan/pkg/platform/middleware/operator"
	"idscan/pkg/platform/sentinel"
	"idscan/pkg/testutil"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks

type HandlerSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	scanner *mocks.MockScanner
	events  *mocks.MockEventSource
	results *mocks.MockResultIndex
	router  http.Handler
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.scanner = mocks.NewMockScanner(s.ctrl)
	s.events = mocks.NewMockEventSource(s.ctrl)
	s.results = mocks.NewMockResultIndex(s.ctrl)
	s.router = s.newRouter("")
}

func (s *HandlerSuite) newRouter(token string, opts ...Option) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	opts = append([]Option{WithLogger(logger), WithEvents(s.events), WithResults(s.results)}, opts...)
	h := New(s.scanner, opts...)
	return NewRouter(h, RouterConfig{
		OperatorToken: token,
		Logger:        logger,
		Metrics: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, "# metrics\n")
		}),
	})
}

func (s *HandlerSuite) TestStatus() {
	s.scanner.EXPECT().Status().Return(orchestrator.Status{
		Connected:   true,
		LoopRunning: true,
		Stage:       orchestrator.StageIdle,
	})

	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/scanner/status"))

	testutil.AssertStatusOK(s.T(), rr)
	st := testutil.UnmarshalResponse[orchestrator.Status](s.T(), rr)
	s.True(st.Connected)
	s.True(st.LoopRunning)
	s.Equal(orchestrator.StageIdle, st.Stage)
	s.NotEmpty(rr.Header().Get(metadata.RequestIDHeader))
}

func (s *HandlerSuite) TestControls() {
	tests := []struct {
		name   string
		path   string
		expect func() *gomock.Call
		want   int
	}{
		{"start loop", "/scanner/loop/start", func() *gomock.Call { return s.scanner.EXPECT().StartLoop(gomock.Any()) }, http.StatusOK},
		{"stop loop", "/scanner/loop/stop", func() *gomock.Call { return s.scanner.EXPECT().StopLoop(gomock.Any()) }, http.StatusOK},
		{"trigger", "/scanner/trigger", func() *gomock.Call { return s.scanner.EXPECT().Trigger(gomock.Any()) }, http.StatusAccepted},
		{"reconnect", "/scanner/reconnect", func() *gomock.Call { return s.scanner.EXPECT().Reconnect(gomock.Any()) }, http.StatusAccepted},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			tt.expect().Return(nil).Times(1)
			s.scanner.EXPECT().Status().Return(orchestrator.Status{Connected: true})

			rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodPost, tt.path))

			testutil.AssertStatus(s.T(), rr, tt.want)
			testutil.AssertJSONContains(s.T(), rr, "connected", true)
		})
	}
}

func (s *HandlerSuite) TestControlErrors() {
	tests := []struct {
		name string
		err  error
		want int
		code string
	}{
		{"not connected", fmt.Errorf("trigger: %w", sentinel.ErrDeviceNotConnected), http.StatusConflict, "device_not_connected"},
		{"cooling down", fmt.Errorf("until 2025-03-14T09:27:03Z: %w", sentinel.ErrCoolingDown), http.StatusTooManyRequests, "cooling_down"},
		{"orchestrator stopped", fmt.Errorf("orchestrator stopped: %w", sentinel.ErrInvalidState), http.StatusServiceUnavailable, "unavailable"},
		{"request cancelled", context.Canceled, http.StatusServiceUnavailable, "unavailable"},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.scanner.EXPECT().Trigger(gomock.Any()).Return(tt.err)

			rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodPost, "/scanner/trigger"))

			testutil.AssertStatusAndError(s.T(), rr, tt.want, tt.code)
		})
	}
}

func (s *HandlerSuite) TestReconnectSuppressed() {
	s.scanner.EXPECT().Reconnect(gomock.Any()).Return(sentinel.ErrReconnectSuppressed)

	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodPost, "/scanner/reconnect"))

	testutil.AssertStatusAndError(s.T(), rr, http.StatusTooManyRequests, "reconnect_suppressed")
}

func (s *HandlerSuite) TestControlsRequireOperatorToken() {
	router := s.newRouter("s3cret")

	s.Run("missing token", func() {
		rr := testutil.DoRequest(router, testutil.NewRequest(s.T(), http.MethodPost, "/scanner/trigger"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, "unauthorized")
	})

	s.Run("valid token", func() {
		s.scanner.EXPECT().Trigger(gomock.Any()).Return(nil)
		s.scanner.EXPECT().Status().Return(orchestrator.Status{})
		req := testutil.NewRequest(s.T(), http.MethodPost, "/scanner/trigger")
		req.Header.Set(operator.TokenHeader, "s3cret")

		rr := testutil.DoRequest(router, req)

		testutil.AssertStatus(s.T(), rr, http.StatusAccepted)
	})

	s.Run("reads stay open", func() {
		s.scanner.EXPECT().Status().Return(orchestrator.Status{})
		rr := testutil.DoRequest(router, testutil.NewRequest(s.T(), http.MethodGet, "/scanner/status"))
		testutil.AssertStatusOK(s.T(), rr)
	})
}

func (s *HandlerSuite) TestMethodNotAllowed() {
	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/scanner/trigger"))
	testutil.AssertStatus(s.T(), rr, http.StatusMethodNotAllowed)
}

func (s *HandlerSuite) TestEvents() {
	at := time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)
	s.events.EXPECT().Recent(10).Return([]notify.Event{
		{Kind: notify.KindStatus, At: at, Status: &notify.StatusEvent{Connected: true}},
	})

	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/scanner/events?limit=10"))

	testutil.AssertStatusOK(s.T(), rr)
	resp := testutil.UnmarshalResponse[eventsResponse](s.T(), rr)
	require.Len(s.T(), resp.Events, 1)
	s.Equal(notify.KindStatus, resp.Events[0].Kind)
	s.True(resp.Events[0].Status.Connected)
}

func (s *HandlerSuite) TestEventsLimit() {
	s.Run("defaults", func() {
		s.events.EXPECT().Recent(defaultListLimit).Return(nil)
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/scanner/events"))
		testutil.AssertStatusOK(s.T(), rr)
		resp := testutil.UnmarshalResponse[eventsResponse](s.T(), rr)
		s.NotNil(resp.Events)
		s.Empty(resp.Events)
	})

	s.Run("clamped", func() {
		s.events.EXPECT().Recent(maxListLimit).Return(nil)
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/scanner/events?limit=100000"))
		testutil.AssertStatusOK(s.T(), rr)
	})

	s.Run("rejected", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/scanner/events?limit=-1"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})
}

func (s *HandlerSuite) TestResults() {
	s.results.EXPECT().Recent(gomock.Any(), "M12345678", 5).Return([]result.Record{
		{DocumentID: "M12345678", Type: document.TypePassport, Name: "M12345678_20240502_100000_000"},
	}, nil)

	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/scanner/results?document_id=M12345678&limit=5"))

	testutil.AssertStatusOK(s.T(), rr)
	resp := testutil.UnmarshalResponse[resultsResponse](s.T(), rr)
	require.Len(s.T(), resp.Results, 1)
	s.Equal(document.TypePassport, resp.Results[0].Type)
}

func (s *HandlerSuite) TestResultsIndexDown() {
	s.results.EXPECT().Recent(gomock.Any(), "", defaultListLimit).
		Return(nil, fmt.Errorf("%w: postgres ping", sentinel.ErrUnavailable))

	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/scanner/results"))

	testutil.AssertStatusAndError(s.T(), rr, http.StatusServiceUnavailable, "unavailable")
}

func (s *HandlerSuite) TestHealth() {
	s.Run("connected", func() {
		s.scanner.EXPECT().Status().Return(orchestrator.Status{Connected: true, LoopRunning: true})
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/health"))
		testutil.AssertStatusOK(s.T(), rr)
		testutil.AssertJSONContains(s.T(), rr, "status", "ok")
	})

	s.Run("device disconnected degrades", func() {
		s.scanner.EXPECT().Status().Return(orchestrator.Status{})
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/health"))
		testutil.AssertStatusOK(s.T(), rr)
		testutil.AssertJSONContains(s.T(), rr, "status", "degraded")
	})

	s.Run("failing dependency", func() {
		router := s.newRouter("", WithHealthCheck("redis", func(context.Context) error {
			return sentinel.ErrUnavailable
		}))
		s.scanner.EXPECT().Status().Return(orchestrator.Status{Connected: true})
		rr := testutil.DoRequest(router, testutil.NewRequest(s.T(), http.MethodGet, "/health"))
		testutil.AssertStatus(s.T(), rr, http.StatusServiceUnavailable)
		testutil.AssertJSONContains(s.T(), rr, "status", "unhealthy")
	})
}

func (s *HandlerSuite) TestMetrics() {
	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/metrics"))
	testutil.AssertStatusOK(s.T(), rr)
	s.Contains(rr.Body.String(), "# metrics")
}

func TestOptionalRoutesAbsent(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := New(mocks.NewMockScanner(ctrl))
	router := NewRouter(h, RouterConfig{})

	for _, path := range []string{"/scanner/events", "/scanner/results", "/metrics"} {
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, path))
		assert.Equal(t, http.StatusNotFound, rr.Code, path)
	}
}

func TestConcurrentReconnectsShareOneCall(t *testing.T) {
	ctrl := gomock.NewController(t)
	scanner := mocks.NewMockScanner(ctrl)
	release := make(chan struct{})
	entered := make(chan struct{})
	scanner.EXPECT().Reconnect(gomock.Any()).DoAndReturn(func(context.Context) error {
		close(entered)
		<-release
		return nil
	}).Times(1)
	scanner.EXPECT().Status().Return(orchestrator.Status{}).Times(2)

	router := NewRouter(New(scanner), RouterConfig{})
	codes := make(chan int, 2)
	send := func() {
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodPost, "/scanner/reconnect"))
		codes <- rr.Code
	}

	go send()
	<-entered
	go send()
	// Let the second request reach the in-flight call before releasing it.
	time.Sleep(50 * time.Millisecond)
	close(release)

	assert.Equal(t, http.StatusAccepted, <-codes)
	assert.Equal(t, http.StatusAccepted, <-codes)
}
