package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/fwojciec/ragchat"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// options holds the persistent flags shared by every command.
type options struct {
	backendURL string
	logFile    string
	debug      bool
	file       string
	transcript string

	// environ replaces the process environment when non-nil.
	environ map[string]string
}

// resolveConfig reads BACKEND_URL from the environment and applies the
// --backend-url override. Env vars are read here and passed on as values.
func resolveConfig(flagURL string, environ map[string]string) (ragchat.Config, error) {
	var cfg ragchat.Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return ragchat.Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if flagURL != "" {
		cfg.BackendURL = flagURL
	}
	if err := cfg.Validate(); err != nil {
		return ragchat.Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func defaultLogPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".ragchat", "ragchat.log")
}

// newLogger builds a production zap logger writing JSON to path. minLevel
// applies unless debug is set.
func newLogger(path string, minLevel zapcore.Level, debug bool) (*zap.Logger, error) {
	if path != "stderr" && path != "stdout" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
	}
	config := zap.NewProductionConfig()
	config.OutputPaths = []string{path}
	config.ErrorOutputPaths = []string{path}
	config.Level = zap.NewAtomicLevelAt(minLevel)
	if debug {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}
	return logger, nil
}
