package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/spf13/cobra"

	httpadapter "github.com/couchcryptid/station-monitor/internal/adapter/http"
	"github.com/couchcryptid/station-monitor/internal/adapter/fsys"
	"github.com/couchcryptid/station-monitor/internal/observability"
	"github.com/couchcryptid/station-monitor/internal/pipeline"
)

type httpServer interface {
	Start() error
	Shutdown(ctx context.Context) error
}

type folderWatcher interface {
	Run(ctx context.Context) error
}

func newServeCommand(ctx *commandContext) *cobra.Command {
	var watchDir string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the monitor and renamer HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.services(observability.NewLogger)
			if err != nil {
				return err
			}
			defer svc.close()

			srv := httpadapter.NewServer(svc.cfg.HTTPAddr, svc.monitor, svc.archiver, svc.cfg.MaxUploadBytes, svc.logger)
			var watcher folderWatcher
			if watchDir != "" {
				watcher = pipeline.NewWatcher(svc.monitor, fsys.NewPathSource(watchDir), svc.clock, svc.cfg.WatchInterval, svc.logger, nil)
			}
			return runServe(cmd.Context(), srv, watcher, svc.cfg.ShutdownTimeout, svc.logger)
		},
	}

	cmd.Flags().StringVarP(&watchDir, "watch", "w", "", "Also rescan this folder whenever it changes")

	return cmd
}

// runServe serves until ctx ends or the server fails. watcher may be nil.
// It returns only after the watcher has stopped, so callers can release what
// the watcher publishes to.
func runServe(ctx context.Context, srv httpServer, watcher folderWatcher, shutdownTimeout time.Duration, logger *slog.Logger) error {
	runCtx, stop := context.WithCancel(ctx)
	defer stop()

	var wg sync.WaitGroup
	defer wg.Wait()

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	if watcher != nil {
		wg.Go(func() {
			if err := watcher.Run(runCtx); err != nil {
				logger.Error("watcher error", "error", err)
			}
		})
	}

	select {
	case <-runCtx.Done():
	case err := <-serveErr:
		logger.Error("http server error", "error", err)
		stop()
		return err
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	wg.Wait()
	logger.Info("shutdown complete")
	return nil
}
