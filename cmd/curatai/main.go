package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/GoArmGo/CuratAI/internal/di"
)

func main() {
	mode := flag.String("mode", "cli", "Режим запуска: cli или worker")
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), "usage: curatai [-mode cli|worker] <command> [args]; run 'curatai help' for commands")
		flag.PrintDefaults()
	}
	flag.Parse()

	// bootstrap-логгер до загрузки конфигурации
	bootstrapLogger := slog.New(
		slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}),
	)

	ctx := context.Background()

	app, err := di.BuildApp(ctx, *mode)
	if err != nil {
		bootstrapLogger.Error("failed to build app", "mode", *mode, "error", err)
		os.Exit(1)
	}

	logger := app.LoggerIns()
	if err := app.Run(ctx, *mode, flag.Args()); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		logger.Error("command failed", "error", err)
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
