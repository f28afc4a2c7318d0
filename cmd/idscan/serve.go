package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"idscan/internal/device"
	"idscan/internal/device/sim"
	"idscan/internal/notify"
	"idscan/internal/platform/config"
	"idscan/internal/platform/httpserver"
	"idscan/internal/platform/logger"
	"idscan/internal/platform/metrics"
	"idscan/internal/platform/redis"
	"idscan/internal/result"
	"idscan/internal/result/store/file"
	"idscan/internal/result/store/postgres"
	scanconfig "idscan/internal/scan/config"
	"idscan/internal/scan/orchestrator"
	"idscan/internal/scan/staging"
	httptransport "idscan/internal/transport/http"
	"idscan/pkg/platform/sentinel"
)

const (
	eventBufferSize = 256
	shutdownTimeout = 10 * time.Second
)

type serveFlags struct {
	simulateDir string
	tuningFile  string
	addr        string
}

func newServeCmd() *cobra.Command {
	var flags serveFlags
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the scan service and operator API",
		Long: `Connects to the scanner, runs the automatic scan loop and serves the
operator API. Process settings come from IDSCAN_* environment variables; scan
tunables come from the YAML file named by --tuning or IDSCAN_TUNING_FILE.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.FromEnv()
			if flags.simulateDir != "" {
				cfg.SimulateDir = flags.simulateDir
			}
			if flags.tuningFile != "" {
				cfg.TuningFile = flags.tuningFile
			}
			if flags.addr != "" {
				cfg.Addr = flags.addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logger.New(cfg.LogLevel, cfg.LogFormat))
		},
	}
	cmd.Flags().StringVar(&flags.simulateDir, "simulate", "", "drive the simulated scanner from this fixture directory")
	cmd.Flags().StringVar(&flags.tuningFile, "tuning", "", "YAML file with scan tunables")
	cmd.Flags().StringVar(&flags.addr, "addr", "", "operator API listen address")
	return cmd
}

func loadTuning(cfg config.Server) (scanconfig.Config, error) {
	tuning, err := scanconfig.Load(cfg.TuningFile)
	if err != nil {
		return scanconfig.Config{}, err
	}
	if cfg.DeviceHandle != "" {
		tuning.Handle = cfg.DeviceHandle
	}
	if cfg.StagingDir != "" {
		tuning.StagingDir = cfg.StagingDir
	}
	if err := tuning.Validate(); err != nil {
		return scanconfig.Config{}, fmt.Errorf("invalid tuning: %w", err)
	}
	return tuning, nil
}

// gatewayFactory selects the scanner backend. Only the simulator ships in
// this binary; vendor bindings register a Factory of their own.
func gatewayFactory(cfg config.Server, log *slog.Logger) (device.Factory, error) {
	if cfg.SimulateDir == "" {
		return nil, fmt.Errorf("no scanner backend configured (set IDSCAN_SIMULATE_DIR or --simulate): %w", sentinel.ErrLibraryLoad)
	}
	return sim.New(cfg.SimulateDir, log), nil
}

func serve(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	tuning, err := loadTuning(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(tuning.StagingDir, 0o755); err != nil {
		return fmt.Errorf("create staging dir: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	factory, err := gatewayFactory(cfg, log)
	if err != nil {
		return err
	}
	dev := device.NewClient(factory,
		device.WithTimeouts(tuning.Device),
		device.WithObserver(m),
		device.WithLogger(log),
	)

	files, err := file.New(cfg.OutputDir, file.WithLogger(log))
	if err != nil {
		return err
	}
	var persister result.Persister = files
	handlerOpts := []httptransport.Option{httptransport.WithLogger(log)}

	if cfg.PostgresDSN != "" {
		db, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return err
		}
		defer db.Close()
		idx := postgres.New(db, files, postgres.WithLogger(log))
		if err := idx.EnsureSchema(ctx); err != nil {
			return err
		}
		persister = idx
		handlerOpts = append(handlerOpts,
			httptransport.WithResults(idx),
			httptransport.WithHealthCheck("postgres", idx.Health),
		)
		log.Info("result index enabled")
	}

	events := notify.NewMemorySink(eventBufferSize)
	sinks := notify.Fanout{notify.NewLogSink(log), events}
	rc, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if rc != nil {
		defer rc.Close()
		sinks = append(sinks, notify.NewRedisSink(rc, cfg.Redis.Channel))
		handlerOpts = append(handlerOpts, httptransport.WithHealthCheck("redis", rc.Health))
		log.Info("redis notifications enabled", "channel", cfg.Redis.Channel)
	}
	handlerOpts = append(handlerOpts, httptransport.WithEvents(events))

	stager := staging.New(
		staging.WithExtensions(cfg.StagingExtensions...),
		staging.WithLogger(log),
	)
	orch := orchestrator.New(tuning, dev, stager, persister, sinks,
		orchestrator.WithLogger(log),
		orchestrator.WithMetrics(m),
	)

	router := httptransport.NewRouter(httptransport.New(orch, handlerOpts...), httptransport.RouterConfig{
		OperatorToken: cfg.OperatorToken,
		Metrics:       promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		Logger:        log,
	})
	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return orch.Run(gctx)
	})
	g.Go(func() error {
		if err := orch.Connect(gctx); err != nil {
			return fmt.Errorf("connect scanner: %w", err)
		}
		if cfg.AutoStart {
			return orch.StartLoop(gctx)
		}
		return nil
	})
	g.Go(func() error {
		log.Info("operator API listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error("idscan stopped", "error", err)
		return err
	}
	log.Info("idscan stopped")
	return nil
}
