package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := LoadConfig(".env")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return 1
	}

	logger := NewLogger(cfg, os.Stderr)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	blobs, err := OpenBlobStore(ctx, cfg)
	if err != nil {
		// the schedule still works for this run, it just is not kept
		logger.Error("failed to open store, changes will not be saved", "driver", cfg.Store.Driver, "error", err)
		blobs = NewMemoryBlobStore()
	}
	defer blobs.Close()

	store := NewStore(NewPersistence(blobs), logger, WithSaveTimeout(time.Duration(cfg.Store.Timeout)*time.Second))
	defer store.Close()
	store.Load(ctx)

	app, err := NewApp(cfg, store, logger, os.Stdout)
	if err != nil {
		logger.Error("failed to start", "error", err)
		return 1
	}

	if err := SetupCommands(app).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	return 0
}
