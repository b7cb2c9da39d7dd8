package main

import (
	"context"
	"errors"
	"os"

	"burnrate/internal/amqp"
	"burnrate/internal/cli"
	"burnrate/internal/config"
	"burnrate/internal/worker"

	"golang.org/x/sync/errgroup"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	logger.Info("Starting burnrate-worker")

	cfg := cli.LoadAndValidateConfig(logger.Logger, (*config.Config).Validate)

	// The worker only reads the ledgers; it never publishes events.
	ledgerCfg := *cfg
	ledgerCfg.AMQPURL = ""
	factory, bcfg, be := cli.InitBackend(context.Background(), logger.Logger, &ledgerCfg)

	publisher, err := factory.CreatePublisher(context.Background(), bcfg)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", "error", err)
		os.Exit(1)
	}

	w := worker.NewRunwayWorker(be.Store, publisher, float64(cfg.RunwayAlertMonths))

	var consumer *amqp.Client
	if cfg.AMQPEnabled() {
		consumer, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
	} else {
		logger.Info("AMQP disabled - runway is checked on schedule only")
	}

	ctx, done := cli.GracefulShutdown(logger.Logger, cli.ShutdownTimeout, nil)

	scheduler, err := w.Schedule(ctx, cfg.RunwayCheckSchedule)
	if err != nil {
		logger.Error("Failed to schedule runway check", "error", err)
		os.Exit(1)
	}

	logger.Info("Performing startup runway check...")
	if _, err := w.CheckRunway(ctx); err != nil {
		logger.Error("Startup runway check failed", "error", err)
	}

	scheduler.Start()
	logger.Info("Runway check scheduled", "schedule", cfg.RunwayCheckSchedule, "alert_months", cfg.RunwayAlertMonths)

	var g errgroup.Group
	if consumer != nil {
		g.Go(func() error {
			err := consumer.ConsumeLedgerEvents(ctx, w.HandleLedgerEvent)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	cli.WaitForShutdown(ctx, done)

	logger.Info("Shutting down worker...")
	<-scheduler.Stop().Done()
	if err := g.Wait(); err != nil {
		logger.Error("Message consumption failed", "error", err)
	}
	if consumer != nil {
		if err := consumer.Close(); err != nil {
			logger.Error("AMQP close error", "error", err)
		}
	}
	if err := be.Cleanup(); err != nil {
		logger.Error("Backend cleanup error", "error", err)
	}
	logger.Info("Worker shutdown complete")
}
