package main

import (
	"log/slog"
	"os"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	cli := NewCLI(logger)
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
