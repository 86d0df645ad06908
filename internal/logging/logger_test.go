package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		" warn": slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestNewWithOptions_JSONFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "tgadmin.log")
	logger, closer := NewWithOptions(slog.LevelInfo, Options{Format: "json", File: file, MaxSizeMB: 1})

	logger.Debug("hidden")
	logger.Info("saved", "error", "boom")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"saved"`)
	assert.Contains(t, string(data), `"err":"boom"`)
	assert.NotContains(t, string(data), "hidden")
}
