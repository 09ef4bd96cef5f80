package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bomcost/internal/errors"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.Equal(t, Default().Workspace.Backend, cfg.Workspace.Backend)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	for _, name := range []string{"bomcost.json", "bomcost.yaml", "bomcost.yml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)
			cfg := Default()
			cfg.Workspace.Name = "shop"
			cfg.Workspace.Backend = "file"
			cfg.Output.Precision = 3
			cfg.Logging.Level = "debug"
			require.NoError(t, cfg.Save(path))

			loaded, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, cfg, loaded)
		})
	}
}

func TestLoadPartialYAMLKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bomcost.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output:\n  default_format: json\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Output.DefaultFormat)
	assert.Equal(t, int32(2), cfg.Output.Precision)
	assert.Equal(t, "sqlite", cfg.Workspace.Backend)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"unknown backend", "c.json", `{"workspace":{"backend":"s3"}}`},
		{"memory backend", "c.yaml", "workspace:\n  backend: memory\n"},
		{"negative precision", "c.yaml", "output:\n  precision: -1\n"},
		{"malformed json", "c.json", `{"workspace":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))
			_, err := Load(path)
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.TypeConfig))
		})
	}
}
