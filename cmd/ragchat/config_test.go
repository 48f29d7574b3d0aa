package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fwojciec/ragchat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestResolveConfig_FromEnvironment(t *testing.T) {
	t.Parallel()
	cfg, err := resolveConfig("", map[string]string{"BACKEND_URL": "http://localhost:5000"})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5000", cfg.BackendURL)
}

func TestResolveConfig_FlagOverridesEnvironment(t *testing.T) {
	t.Parallel()
	cfg, err := resolveConfig("https://rag.example.com", map[string]string{"BACKEND_URL": "http://localhost:5000"})
	require.NoError(t, err)
	assert.Equal(t, "https://rag.example.com", cfg.BackendURL)
}

func TestResolveConfig_Missing(t *testing.T) {
	t.Parallel()
	_, err := resolveConfig("", map[string]string{})
	require.ErrorIs(t, err, ragchat.ErrValidation)
	assert.Contains(t, err.Error(), "config:")
}

func TestResolveConfig_Invalid(t *testing.T) {
	t.Parallel()
	_, err := resolveConfig("ftp://files.example.com", map[string]string{})
	require.ErrorIs(t, err, ragchat.ErrValidation)
}

func TestNewLogger_WritesToFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "logs", "ragchat.log")

	logger, err := newLogger(path, zapcore.InfoLevel, false)
	require.NoError(t, err)
	logger.Debug("hidden")
	logger.Info("visible")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"visible"`)
	assert.NotContains(t, string(data), "hidden")
}

func TestNewLogger_DebugLowersLevel(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "ragchat.log")

	logger, err := newLogger(path, zapcore.ErrorLevel, true)
	require.NoError(t, err)
	logger.Debug("lifecycle")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "lifecycle")
}

func TestDefaultLogPath(t *testing.T) {
	t.Parallel()
	assert.True(t, strings.HasSuffix(defaultLogPath(), filepath.Join(".ragchat", "ragchat.log")))
}
