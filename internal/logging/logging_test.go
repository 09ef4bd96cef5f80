package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bomcost.log")

	logger, err := New(Config{Level: "debug", Format: "json", Output: path})
	require.NoError(t, err)

	logger.Warn("cost not set; skipping", zap.String("material", "Wood"))
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `"material":"Wood"`)
	require.Contains(t, string(data), `"level":"warn"`)
}

func TestUnknownLevelFallsBackToInfo(t *testing.T) {
	logger, err := New(Config{Level: "loud", Format: "json", Output: "stderr"})
	require.NoError(t, err)
	require.False(t, logger.Core().Enabled(zap.DebugLevel))
	require.True(t, logger.Core().Enabled(zap.InfoLevel))
}

func TestSetLoggerNil(t *testing.T) {
	prev := Logger
	t.Cleanup(func() { SetLogger(prev) })

	SetLogger(nil)
	require.NotNil(t, Logger)
	Warn("dropped")
}
