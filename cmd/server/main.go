package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/DoyleJ11/arena-hud/internal/config"
	"github.com/DoyleJ11/arena-hud/internal/gateway"
	"github.com/DoyleJ11/arena-hud/internal/httpapi"
	"github.com/DoyleJ11/arena-hud/internal/hub"
	"github.com/DoyleJ11/arena-hud/internal/journal"
	"github.com/DoyleJ11/arena-hud/internal/logging"
	"github.com/DoyleJ11/arena-hud/internal/session"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() (err error) {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		recorder session.Recorder = journal.Nop{}
		reader   journal.Reader   = journal.Nop{}
		writer   *journal.Writer
		store    *journal.Store
	)
	if cfg.JournalDSN != "" {
		store, err = journal.Open(cfg.JournalDSN)
		if err != nil {
			return err
		}
		defer func() { err = multierr.Append(err, store.Close()) }()
		writer = journal.NewWriter(store, journal.WriterConfig{Log: log})
		recorder, reader = writer, store
	} else {
		log.Info("journal disabled")
	}

	client := &http.Client{Timeout: cfg.GatewayTimeout}
	h := hub.NewHub(ctx, func(ctx context.Context, surface string) *session.Session {
		return session.New(ctx, session.Config{
			Surface:         surface,
			Gateway:         gateway.New(client, cfg.CallbackURL(surface), log),
			Journal:         recorder,
			FrameInterval:   cfg.FrameInterval,
			Cooldowns:       cfg.CooldownTable(),
			CooldownDefault: cfg.CooldownDefault,
			Log:             log,
		})
	}, log)
	for _, surface := range cfg.Surfaces {
		if _, err := h.Ensure(ctx, surface); err != nil {
			return fmt.Errorf("start surface %s: %w", surface, err)
		}
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.SetupRoutes(h, reader, log),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	if writer != nil {
		g.Go(func() error { return writer.Run(gctx) })
	}
	g.Go(func() error {
		log.Info("listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		h.Inbox() <- hub.ShutdownHub{}
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	return g.Wait()
}
