package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	app "github.com/rocketscienceinc/three-backend/internal"
	"github.com/rocketscienceinc/three-backend/internal/config"
)

const (
	configPathEnv     = "THREE_CONFIG"
	defaultConfigFile = "config.yml"
)

// main loads the config, builds the logger and serves the game until a stop signal.
func main() {
	defer func() {
		if err := recover(); err != nil {
			fmt.Fprintf(os.Stderr, "recovered from panic: %v\n", err)
			os.Exit(1)
		}
	}()

	path, err := configPath()
	if err != nil {
		panic(err)
	}

	conf := config.MustLoad(path)
	logger := initLogger(conf.LogLevel)

	logger.Info("starting three backend",
		"config", path,
		"httpPort", conf.HTTPPort,
		"socketPort", conf.SocketPort,
		"history", conf.SQLiteStoragePath,
	)

	if err = app.RunApp(logger, conf); err != nil {
		panic(fmt.Errorf("app run failed: %w", err))
	}
}

// configPath prefers THREE_CONFIG and falls back to config.yml in the working directory.
func configPath() (string, error) {
	if path := os.Getenv(configPathEnv); path != "" {
		return path, nil
	}

	baseDir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}

	return filepath.Join(baseDir, defaultConfigFile), nil
}

// initLogger builds a JSON logger; an unknown level falls back to info.
func initLogger(level string) *slog.Logger {
	var parsed slog.Level
	unknown := parsed.UnmarshalText([]byte(level)) != nil

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parsed}))
	if unknown {
		logger.Warn("unknown log level, using info", "level", level)
	}

	return logger
}
