package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conorfennell/studydeck/internal/config"
	"github.com/conorfennell/studydeck/internal/gitsource"
	"github.com/conorfennell/studydeck/internal/logging"
	"github.com/conorfennell/studydeck/internal/progress"
	"github.com/conorfennell/studydeck/internal/storage"
	decksync "github.com/conorfennell/studydeck/internal/sync"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "studydeck",
		Short:         "Study and review flashcard decks",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(
		newServeCommand(),
		newSyncCommand(),
		newSourceCommand(),
		newImportCommand(),
		newProgressCommand(),
	)
	return root
}

// app bundles the dependencies every command shares.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	db      *storage.DB
	tracker *progress.Tracker
	syncer  *decksync.Syncer
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load("", cmd.Flags())
	if err != nil {
		return nil, fmt.Errorf("config.Load() > %w", err)
	}
	logger, err := logging.New(cfg.Env, cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("logging.New() > %w", err)
	}

	db, err := storage.Open(cfg.Database.Driver, cfg.Database.DSN, storage.Options{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("storage.Open() > %w", err)
	}
	logger.Debug("database opened", zap.String("driver", cfg.Database.Driver))

	fetcher := gitsource.NewFetcher(cfg.Sync.RetryAttempts, logger.Named("git"))
	return &app{
		cfg:     cfg,
		logger:  logger,
		db:      db,
		tracker: progress.NewTracker(db, db, logger.Named("progress")),
		syncer:  decksync.NewSyncer(db, fetcher, cfg.Sync.ReposDir, logger.Named("sync")),
	}, nil
}

func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		a.logger.Warn("failed to close database", zap.Error(err))
	}
	_ = a.logger.Sync()
}
