package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/conorfennell/studydeck/internal/scheduler"
	"github.com/conorfennell/studydeck/internal/web"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web server, and the periodic sync when an interval is set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			return serve(cmd.Context(), a)
		},
	}
}

func serve(ctx context.Context, a *app) error {
	handler, err := web.NewServer(a.db, a.tracker, a.syncer, a.logger.Named("web"), web.Options{
		NotificationDelay: a.cfg.Server.NotificationDelay,
	})
	if err != nil {
		return fmt.Errorf("web.NewServer() > %w", err)
	}

	if a.cfg.Sync.Interval > 0 {
		sched := scheduler.New(a.syncer, a.cfg.Sync.Interval, a.logger.Named("scheduler"))
		if err := sched.Start(ctx); err != nil {
			return fmt.Errorf("scheduler.Start() > %w", err)
		}
		defer sched.Stop()
	}

	srv := &http.Server{
		Addr:         a.cfg.Server.Addr,
		Handler:      h2c.NewHandler(handler, &http2.Server{}),
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("starting server", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}
