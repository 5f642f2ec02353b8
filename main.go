// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/danielhkuo/class-pulse/auth"
	"github.com/danielhkuo/class-pulse/cliparse"
	"github.com/danielhkuo/class-pulse/db"
	"github.com/danielhkuo/class-pulse/event"
	"github.com/danielhkuo/class-pulse/metrics"
	"github.com/danielhkuo/class-pulse/poll"
	"github.com/danielhkuo/class-pulse/pubsub"
	"github.com/danielhkuo/class-pulse/router"
)

func main() {
	if err := cliparse.LoadDotEnv(".env"); err != nil {
		slog.Error("Error loading .env", "error", err)
		os.Exit(1)
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("Server closed")
}

func run(ctx context.Context, cfg cliparse.Config) error {
	// Connect to the archive
	dbConn, err := db.Open(ctx, cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer dbConn.Close()

	if err := db.CreateSchema(ctx, dbConn); err != nil {
		return err
	}
	store := db.NewStore(dbConn, cfg.DatabaseType)

	history, err := store.LoadHistory(ctx, cfg.HistoryLoadLimit)
	if err != nil {
		return err
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType, "archived_polls", len(history))

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	engineMetrics := metrics.NewEngineMetrics(reg, "classpulse")

	// Notification sinks
	hub := pubsub.NewHub(cfg.WSOrigins...)
	sinks := []poll.Notifier{hub}

	if len(cfg.KafkaBrokers) > 0 {
		kp := event.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer kp.Close()
		sinks = append(sinks, kp)
		slog.Info("Kafka sink enabled", "topic", cfg.KafkaTopic)
	}
	if cfg.RedisURL != "" {
		rp, err := event.NewRedisPublisher(ctx, cfg.RedisURL, cfg.RedisChannel)
		if err != nil {
			return err
		}
		defer rp.Close()
		sinks = append(sinks, rp)
		slog.Info("Redis sink enabled", "channel", cfg.RedisChannel)
	}

	broadcaster := poll.NewBroadcaster(cfg.NotifyBuffer, cfg.NotifyTimeout, sinks...)

	manager := poll.NewManager(
		poll.WithNotifier(broadcaster),
		poll.WithRecorder(engineMetrics),
		poll.WithArchive(store, cfg.ArchiveTimeout),
		poll.WithRules(poll.DefaultRules(cfg.ClarificationThreshold, cfg.MisconceptionThreshold)),
		poll.WithHistory(history),
	)

	mux := router.NewRouter(router.Deps{
		Manager:  manager,
		Live:     hub,
		Gatherer: reg,
	}, cfg)

	server := http.Server{
		Handler:           mux,
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return hub.Run(gctx) })
	g.Go(func() error { return broadcaster.Run(gctx) })
	g.Go(func() error {
		slog.Info("Listening", "port", cfg.Port, "session", cfg.SessionID)
		slog.Info("Instructor key", "admin_key", auth.GenerateAdminKey(cfg.SessionID, cfg.AdminKeySalt))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		// Wait for Ctrl-C signal or a failed component
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
