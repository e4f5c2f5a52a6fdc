package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/parley/internal/config"
	"github.com/MikeSquared-Agency/parley/internal/patterns"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "parley",
		Short:         "Dialogue analysis for screenwriters and novelists",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newAnalyzeCmd(), newReportsCmd())
	return root
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}

// loadTable returns the built-in patterns, extended by path when it is set.
func loadTable(path string) (*patterns.Table, error) {
	if path == "" {
		return patterns.Default(), nil
	}
	t, err := patterns.LoadFile(patterns.Default(), path)
	if err != nil {
		return nil, fmt.Errorf("load patterns: %w", err)
	}
	slog.Info("patterns loaded", "file", path)
	return t, nil
}

func mustConfig() config.Config {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)
	return cfg
}
