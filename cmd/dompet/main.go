package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"dompet/internal/amqp"
	"dompet/internal/cli"
	apphttp "dompet/internal/http"
	"dompet/internal/log"
	"dompet/internal/period"
)

func main() {
	cfg, logger := cli.LoadAndValidateConfig()

	ctx, stop := cli.SignalContext()
	defer stop()

	res := cli.OpenBackend(ctx, logger, cfg)
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Failed to close backend", log.FieldError, err)
		}
	}()

	// Archive notifications are optional; without AMQP the worker picks up
	// unexported periods on its periodic sweep.
	var publisher period.EventPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
		defer client.Close()
		publisher = client
		logger.Info("AMQP publisher initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	periods := period.NewManager(res.Backend, logger, publisher)
	periods.SetDefaultLocale(cfg.DefaultLocale)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Options{
		Store:              res.Backend,
		Periods:            periods,
		Logger:             logger,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		TrustedProxies:     cfg.TrustedProxies,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting dompet server", "port", cfg.Port, "backend", cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server", log.FieldOperation, log.OpShutdown)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
