package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"crewwatch/internal/eventbus"
	"crewwatch/internal/httpapi"
	"crewwatch/internal/journal"
	"crewwatch/internal/logger"
	"crewwatch/internal/notify"
	"crewwatch/internal/poller"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Poll the realtime API and serve the control API (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}
}

func runServer(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("═══════════════════════════════════════════════════════════════════")
	logger.Info("🚀 CREWWATCH STARTING",
		zap.String("environment", cfg.Environment),
		zap.String("api", cfg.API.BaseURL),
	)
	logger.Info("═══════════════════════════════════════════════════════════════════")

	client, conn := newAPIClient()

	bus := eventbus.New(eventbus.WithReplay(cfg.EventBus.ReplayLast))
	scheduler := poller.New(client, bus,
		poller.WithThreshold(cfg.Poller.ErrorThreshold),
		poller.WithConnectivity(conn),
	)

	// Journal
	var tickJournal *journal.Journal
	if cfg.Journal.DatabaseURL != "" {
		db, err := journal.Connect(cfg.Journal.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := journal.Migrate(db); err != nil {
			return err
		}
		logger.Info("✅ journal migrations completed")

		tickJournal = journal.New(db)
		scheduler.Observe(tickJournal.Observe)
	} else {
		logger.Info("⚠️  DATABASE_URL not set - tick journal disabled")
	}

	// Push alerts
	if alerter := newAlerter(ctx); alerter != nil {
		scheduler.Observe(alerter.Observe)
		defer alerter.Wait()
	}

	eventbus.On(bus, eventbus.TopicError, func(ev poller.ErrorEvent) {
		logger.Debug("📍 error event",
			zap.String("kind", string(ev.Kind)),
			zap.String("message", ev.Message),
			zap.Int("consecutive_errors", ev.ConsecutiveErrors),
		)
	})

	scheduler.Start(ctx, cfg.Poller.Interval)
	defer scheduler.Stop()

	server := &http.Server{
		Addr: cfg.Server.ListenAddr(),
		Handler: httpapi.NewRouter(httpapi.Deps{
			Poller:      scheduler,
			Bus:         bus,
			Journal:     tickJournal,
			BaseContext: ctx,
			Interval:    cfg.Poller.Interval,
			JWTSecret:   cfg.API.JWTSecret,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("✅ control API listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		logger.Info("🛑 shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func newAlerter(ctx context.Context) *notify.Alerter {
	if len(cfg.Alerts.Tokens) == 0 {
		logger.Info("⚠️  CREWWATCH_ALERT_TOKENS not set - push alerts disabled")
		return nil
	}

	var (
		fcm *notify.FCMService
		err error
	)
	switch {
	case cfg.Alerts.CredentialsBase64 != "":
		fcm, err = notify.NewFCMServiceFromBase64(ctx, cfg.Alerts.CredentialsBase64)
	case cfg.Alerts.CredentialsFile != "":
		fcm, err = notify.NewFCMService(ctx, cfg.Alerts.CredentialsFile)
	default:
		logger.Info("⚠️  no Firebase credentials - push alerts disabled")
		return nil
	}
	if err != nil {
		logger.Warn("⚠️  failed to initialize FCM (push alerts disabled)", zap.Error(err))
		return nil
	}

	logger.Info("✅ Firebase Cloud Messaging initialized", zap.Int("tokens", len(cfg.Alerts.Tokens)))
	return notify.NewAlerter(fcm, cfg.Alerts.Tokens)
}
