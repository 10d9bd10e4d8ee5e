package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httpDelivery "github.com/laxmi8801/data-extractor/internal/delivery/http"
	"github.com/laxmi8801/data-extractor/internal/infrastructure/store"
	"github.com/laxmi8801/data-extractor/internal/usecase"
)

const shutdownTimeout = 10 * time.Second

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the extract and product lookup HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		logger := zap.L()
		if servePort != "" {
			cfg.Server.Port = servePort
		}

		if err := cfg.ValidateStore(); err != nil {
			return err
		}
		extractor, err := newExtractor(ctx, cfg)
		if err != nil {
			return err
		}

		s, err := store.Open(ctx, cfg.Store, logger)
		if err != nil {
			return eris.Wrap(err, "serve: open store")
		}
		defer func() {
			if err := s.Close(context.Background()); err != nil {
				logger.Warn("store.close.failed", zap.Error(err))
			}
		}()

		ingestion := usecase.NewIngestionService(extractor, s, usecase.IngestionConfig{
			Concurrency: cfg.Ingest.Concurrency,
		}, logger)
		products := usecase.NewProductService(s)

		handler := httpDelivery.NewHandler(ingestion, products, logger)
		router := httpDelivery.SetupRouter(cfg, handler, logger)

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		errCh := make(chan error, 1)
		go func() {
			logger.Info("server.start",
				zap.String("addr", srv.Addr),
				zap.String("environment", cfg.Server.Environment),
				zap.String("provider", cfg.Inference.Provider),
				zap.String("store", cfg.Store.Driver),
			)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errCh <- eris.Wrap(err, "server listen")
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		logger.Info("server.shutdown")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return eris.Wrap(err, "server shutdown")
		}
		return <-errCh
	},
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
