package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/contact-finder/internal/api"
	"github.com/JakeFAU/contact-finder/internal/clock/system"
	"github.com/JakeFAU/contact-finder/internal/dispatcher"
	"github.com/JakeFAU/contact-finder/internal/id/uuid"
	queuememory "github.com/JakeFAU/contact-finder/internal/queue/memory"
	memorystorage "github.com/JakeFAU/contact-finder/internal/storage/memory"
	"github.com/JakeFAU/contact-finder/internal/worker"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Runs the upload, progress and download HTTP service",
		Long: `Starts the HTTP service. Uploaded spreadsheets are queued and processed
one at a time by a single worker; progress is polled from /progress and the
finished workbook is served from /download/{filename}.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}
	ctx, stop := context.WithCancel(cmd.Context())
	defer stop()
	cfg, logger := a.cfg, a.logger

	searcher, err := buildSearcher(cfg, logger)
	if err != nil {
		return err
	}
	defer searcher.Release()

	blobStore, closeBlobs, err := buildBlobStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeQuietly(logger, "blob store", closeBlobs)

	publisher, closePublisher, err := buildPublisher(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeQuietly(logger, "publisher", closePublisher)

	jobStore := memorystorage.NewJobStore()
	queue := queuememory.NewQueue(cfg.Queue.Depth)
	clock := system.New()

	w := worker.New(
		queue,
		jobStore,
		blobStore,
		publisher,
		searcher,
		clock,
		worker.Config{ResultPrefix: cfg.Storage.ResultPrefix, Topic: cfg.PubSub.TopicName},
		logger.Named("worker"),
	)
	dispatch := dispatcher.New(queue, w)

	apiServer := api.NewServer(jobStore, blobStore, dispatch, uuid.New(), clock, cfg, logger.Named("api"))
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	dispatched := make(chan struct{})
	go func() {
		defer close(dispatched)
		logger.Info("dispatcher started", zap.Strings("providers", searcher.Providers()))
		dispatch.Run(ctx)
	}()

	go func() {
		logger.Info("http server started", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
	queue.Close()
	select {
	case <-dispatched:
	case <-shutdownCtx.Done():
		logger.Warn("worker did not stop before shutdown timeout")
	}
	logger.Info("shutdown complete")
	return nil
}

func closeQuietly(logger *zap.Logger, what string, closeFn func() error) {
	if err := closeFn(); err != nil {
		logger.Warn("close failed", zap.String("component", what), zap.Error(err))
	}
}
