package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"birdnest/internal/api"
	"birdnest/internal/feed"
	"birdnest/internal/infringement"
	"birdnest/internal/ndz"
	"birdnest/internal/pilot"
	"birdnest/internal/platform/config"
	"birdnest/internal/platform/httpserver"
	"birdnest/internal/platform/logger"
	"birdnest/internal/platform/metrics"
	"birdnest/internal/poller"
	"birdnest/internal/replay"
	"birdnest/internal/snapshot"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

// main wires the stores, the poller and the read API, then runs until
// SIGINT or SIGTERM. Business logic lives in the internal packages.
func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	mode, err := replay.ParseMode(cfg.Replay, cfg.Record)
	if err != nil {
		log.Error("invalid replay configuration", "error", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	infringements := infringement.NewStore(cfg.InfringementCapacity, cfg.InfringementTTL, infringement.WithMetrics(m))
	snapshots := snapshot.NewStore()

	engine, err := replay.NewEngine(replay.Config{
		Mode:     mode,
		Dir:      cfg.ReplayDir,
		Interval: cfg.PollInterval,
	}, infringements, replay.WithLogger(log), replay.WithMetrics(m))
	if err != nil {
		log.Error("failed to start replay engine", "error", err, "dir", cfg.ReplayDir)
		os.Exit(1)
	}

	client := feed.NewClient(cfg.DronesURL, cfg.PilotsURL, cfg.HTTPTimeout)
	pilots := pilot.NewCache(engine.Pilots(client), cfg.PilotCacheCapacity, pilot.WithMetrics(m))

	p := poller.New(
		engine.Drones(client),
		pilots,
		infringements,
		snapshots,
		ndz.Zone{CenterX: cfg.NDZCenterX, CenterY: cfg.NDZCenterY, Radius: cfg.NDZRadius},
		poller.WithInterval(cfg.PollInterval),
		poller.WithLogger(log),
		poller.WithMetrics(m),
		poller.WithRecorder(engine),
	)

	handler := api.NewHandler(infringements, snapshots, engine, version, log)
	srv := httpserver.New(cfg.Addr, api.NewRouter(handler, reg, log))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go p.Run(ctx)

	go func() {
		log.Info("starting birdnest",
			"addr", cfg.Addr,
			"version", version,
			"replay_status", string(engine.Status()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}
