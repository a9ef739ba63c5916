package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/net/netutil"
	"golang.org/x/sync/errgroup"

	"github.com/dawntoweb/agency/internal/api"
	"github.com/dawntoweb/agency/internal/auth"
	"github.com/dawntoweb/agency/internal/config"
	"github.com/dawntoweb/agency/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the site backend (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

func newLogger(level string) *slog.Logger {
	logLevel := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}

func openStore(cfg config.Storage) (store.Store, error) {
	if cfg.Driver == "memory" {
		return store.NewMemStore(), nil
	}
	return store.Open(cfg.DataDir)
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	st, err := openStore(cfg.Storage)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Warn("closing storage", "error", err)
		}
	}()
	logger.Info("storage ready", "driver", cfg.Storage.Driver)

	sessions := auth.NewSessions(cfg.Session.TTL)
	authSvc := auth.NewService(st, sessions)
	handler := api.NewHandler(api.Deps{Store: st, Auth: authSvc, Logger: logger})

	ln, err := net.Listen("tcp", cfg.Server.Addr())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", cfg.Server.Addr(), err)
	}
	ln = netutil.LimitListener(ln, cfg.Server.MaxConns)

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		sessions.Sweep(gctx, cfg.Session.SweepInterval)
		return nil
	})

	g.Go(func() error {
		logger.Info("listening", "addr", cfg.Server.Addr())
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
