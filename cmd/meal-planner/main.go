package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"meal-planner/internal/app"
	"meal-planner/internal/cli"
	"meal-planner/internal/cli/formatter"
	"meal-planner/internal/config"

	"github.com/mattn/go-isatty"
)

func main() {
	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := config.NewLogger(cfg.LogLevel, os.Stderr)

	fd := os.Stdout.Fd()
	formatter.SetPlain(!isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	err = cli.NewRootCmd(a).ExecuteContext(ctx)
	if cerr := a.Close(); cerr != nil {
		logger.Warn("closing application", "error", cerr)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, formatter.Error(err.Error()))
		os.Exit(1)
	}
}
