package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/MikeSquared-Agency/parley/internal/api"
	"github.com/MikeSquared-Agency/parley/internal/hermes"
	"github.com/MikeSquared-Agency/parley/internal/observe"
	"github.com/MikeSquared-Agency/parley/internal/processor"
	"github.com/MikeSquared-Agency/parley/internal/session"
	"github.com/MikeSquared-Agency/parley/internal/store"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the session API and the NATS line processor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(parent context.Context) error {
	cfg := mustConfig()
	slog.Info("parley starting", "port", cfg.Port, "version", version)

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	table, err := loadTable(cfg.PatternsFile)
	if err != nil {
		return err
	}

	mp, shutdownMetrics, err := observe.InitProvider(ctx, cfg.ServiceName, version)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownMetrics(sctx); err != nil {
			slog.Warn("metrics shutdown failed", "error", err)
		}
	}()
	metrics, err := observe.NewMetrics(mp)
	if err != nil {
		return err
	}

	// Database (optional, enables report archiving)
	var archive processor.ReportArchive
	if cfg.DatabaseURL != "" {
		db, err := store.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.EnsureSchema(ctx); err != nil {
			return err
		}
		archive = db
		slog.Info("database connected")
	} else {
		slog.Warn("DATABASE_URL not set, report archiving disabled")
	}

	// NATS/Hermes (optional)
	var bus processor.Publisher
	var hermesClient *hermes.Client
	if cfg.NatsURL != "" {
		hermesClient, err = hermes.NewClient(ctx, cfg.NatsURL, cfg.NatsToken, slog.Default())
		if err != nil {
			return err
		}
		defer hermesClient.Close()
		bus = hermesClient
		slog.Info("NATS connected", "url", cfg.NatsURL)
	} else {
		slog.Warn("NATS_URL not set, running without event bus")
	}

	sessions := session.NewManager(table, metrics, slog.Default())
	proc := processor.New(sessions, archive, bus, metrics, slog.Default())

	if hermesClient != nil {
		if err := hermesClient.Subscribe(hermes.SubjectLineSubmitted, hermes.QueueGroup, proc.HandleLineSubmitted); err != nil {
			return err
		}
	}

	srv := api.NewServer(cfg.Port, cfg.APIToken, sessions, proc, metrics, slog.Default())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Run(gctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if hermesClient != nil {
		g.Go(func() error {
			<-gctx.Done()
			if err := hermesClient.Drain(); err != nil {
				slog.Warn("NATS drain failed", "error", err)
			}
			return nil
		})
	}

	slog.Info("parley ready", "port", cfg.Port)
	err = g.Wait()
	slog.Info("parley stopped")
	return err
}
