package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(Sources{Environ: map[string]string{}})
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
	assert.Empty(t, cfg.JournalPath)
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	cfg, err := Load(Sources{Environ: map[string]string{
		"NOTES_SIDECAR_APP_NAME":         "Notes Beta",
		"NOTES_SIDECAR_MAX_FOLDER_DEPTH": "8",
		"NOTES_SIDECAR_JOURNAL_PATH":     "/tmp/j.db",
	}})
	require.NoError(t, err)
	assert.Equal(t, "Notes Beta", cfg.AppName)
	assert.Equal(t, 8, cfg.MaxFolderDepth)
	assert.Equal(t, "/tmp/j.db", cfg.JournalPath)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoad_Precedence(t *testing.T) {
	path := writeYAML(t, "lock_dir: /from/file\nlog_level: info\napp_name: FileNotes\nmax_folder_depth: 5\n")

	cfg, err := Load(Sources{
		Flags: &Config{File: path, LogLevel: "debug"},
		Environ: map[string]string{
			"NOTES_SIDECAR_LOG_LEVEL": "error",
			"NOTES_SIDECAR_APP_NAME":  "EnvNotes",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel, "flag beats env and file")
	assert.Equal(t, "EnvNotes", cfg.AppName, "env beats file")
	assert.Equal(t, "/from/file", cfg.LockDir, "file beats defaults")
	assert.Equal(t, 5, cfg.MaxFolderDepth)
	assert.Equal(t, "/usr/bin/osascript", cfg.Osascript)
}

func TestLoad_ConfigPathFromEnv(t *testing.T) {
	path := writeYAML(t, "journal_path: /var/j.db\n")

	cfg, err := Load(Sources{Environ: map[string]string{"NOTES_SIDECAR_CONFIG": path}})
	require.NoError(t, err)
	assert.Equal(t, "/var/j.db", cfg.JournalPath)
}

func TestLoad_EmptyFile(t *testing.T) {
	path := writeYAML(t, "")

	cfg, err := Load(Sources{Flags: &Config{File: path}, Environ: map[string]string{}})
	require.NoError(t, err)
	assert.Equal(t, "Notes", cfg.AppName)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		src     Sources
		invalid bool
	}{
		{
			name: "missing file",
			src:  Sources{Flags: &Config{File: "/does/not/exist.yaml"}, Environ: map[string]string{}},
		},
		{
			name: "unknown key",
			src:  Sources{Flags: &Config{File: writeYAML(t, "lockdir: /x\n")}, Environ: map[string]string{}},
		},
		{
			name: "bad env number",
			src:  Sources{Environ: map[string]string{"NOTES_SIDECAR_MAX_FOLDER_DEPTH": "deep"}},
		},
		{
			name:    "negative depth",
			src:     Sources{Flags: &Config{MaxFolderDepth: -1}, Environ: map[string]string{}},
			invalid: true,
		},
		{
			name:    "bad log level",
			src:     Sources{Flags: &Config{LogLevel: "loud"}, Environ: map[string]string{}},
			invalid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(tt.src)
			require.Error(t, err)
			assert.Nil(t, cfg)
			if tt.invalid {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			}
		})
	}
}

func TestBuild_PropagatesBuilderError(t *testing.T) {
	b := newBuilder()
	b.err = assert.AnError

	cfg, err := b.build()
	assert.Nil(t, cfg)
	assert.ErrorIs(t, err, assert.AnError)
}
