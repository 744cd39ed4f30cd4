package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/magabrotheeeer/zenpress/internal/app/paymentconsumer"
	"github.com/magabrotheeeer/zenpress/internal/config"
	"github.com/magabrotheeeer/zenpress/internal/lib/sl"
)

func main() {
	cfg := config.MustLoad()
	logger := sl.New(cfg.Env, os.Stdout)

	logger.Info("starting payment consumer", slog.String("env", cfg.Env), slog.String("queue", cfg.RabbitMQ.PaymentsQueue))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := paymentconsumer.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize payment consumer", sl.Err(err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		logger.Error("payment consumer stopped with error", sl.Err(err))
		os.Exit(1)
	}

	logger.Info("payment consumer stopped gracefully")
}
