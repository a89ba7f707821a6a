// Command period-init prepares existing users for payday periods: it stores
// default settings and wraps transactions recorded before periods existed in
// an initial period. It is safe to run more than once.
package main

import (
	"os"
	"time"

	"dompet/internal/cli"
	"dompet/internal/log"
	"dompet/internal/period"
	"dompet/internal/services"
)

func main() {
	cfg, logger := cli.LoadAndValidateConfig()
	logger = logger.WithComponent(log.ComponentInit)

	ctx, stop := cli.SignalContext()
	defer stop()

	res := cli.OpenBackend(ctx, logger, cfg)
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Failed to close backend", log.FieldError, err)
		}
	}()

	periods := period.NewManager(res.Backend, logger, nil)
	periods.SetDefaultLocale(cfg.DefaultLocale)

	start := time.Now()
	sum, err := services.NewPeriodInitializer(res.Backend, periods, logger).Run(ctx, start)
	if err != nil {
		logger.Error("Period initialization failed", log.FieldError, err,
			"processed", sum.Processed)
		stop()
		_ = res.Cleanup()
		os.Exit(1)
	}

	logger.Info("Period initialization complete",
		"processed", sum.Processed,
		"skipped", sum.Skipped,
		"assigned", sum.Assigned,
		log.FieldDuration, time.Since(start).Milliseconds())
}
