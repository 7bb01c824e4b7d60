package main

import (
	"log/slog"
	"os"

	"studyrag/internal/cli"
	"studyrag/internal/logger"
)

func main() {
	// Initialize structured logger
	handler := logger.NewContextHandler(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(slog.New(handler))

	if err := cli.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}
