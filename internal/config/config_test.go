package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filebatch/internal/reader"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout())
	assert.Equal(t, int64(100*1024*1024), cfg.Upload.MaxFileBytes)
	assert.Equal(t, reader.DataURL(), cfg.Read.DefaultFormat)
}

func TestLoadOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filebatch.toml")
	override := `
[Server]
Addr = ":9090"

[Read]
DefaultFormat = "text;charset=latin1"
`
	require.NoError(t, os.WriteFile(path, []byte(override), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, reader.Text("latin1"), cfg.Read.DefaultFormat)
	// Untouched sections keep their defaults.
	assert.Equal(t, int64(100*1024*1024), cfg.Upload.MaxFileBytes)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "empty addr", content: "[Server]\nAddr = \"\""},
		{name: "zero file size", content: "[Upload]\nMaxFileBytes = 0"},
		{name: "body smaller than file", content: "[Upload]\nMaxBodyBytes = 1"},
		{name: "unknown format", content: "[Read]\nDefaultFormat = \"yaml\""},
		{name: "not toml", content: "{\"Server\": {}}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.toml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}
