package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Wang-tianhao/vibrant-accounts/internal/app"
	"github.com/Wang-tianhao/vibrant-accounts/internal/config"
	"github.com/Wang-tianhao/vibrant-accounts/internal/logging"
)

func main() {
	lc, err := config.ParseFlags("server", os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	cfg, err := config.Load(lc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Log, "accounts")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot start")
	}

	if err := a.Run(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server stopped with error")
	}
}
