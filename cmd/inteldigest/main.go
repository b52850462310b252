package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"IntelDigest/internal/app"
	"IntelDigest/internal/config"
	"IntelDigest/internal/logging"
)

func main() {
	daemon := flag.Bool("cron", false, "run on the configured cron schedule instead of once")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	a, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("failed to assemble application", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *daemon {
		if err := a.Start(ctx); err != nil {
			logger.Error("scheduler exited", "error", err)
			os.Exit(1)
		}
		return
	}

	if err := a.Run(ctx); err != nil {
		logger.Error("digest run failed", "error", err)
		os.Exit(1)
	}
}
