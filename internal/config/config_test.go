package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	m, err := Load("")
	require.NoError(t, err)

	cfg := m.Config()
	require.Equal(t, "center-pdf@dawaltconley.github.io", cfg.ID)
	require.Equal(t, "resource://center-pdf/", cfg.RootURI)
	require.Equal(t, "info", cfg.Logging.Level)
	require.Empty(t, cfg.Stylesheet)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
version: 1.2.3
stylesheet: center-pdf.css
logging:
  level: debug
  format: json
`), 0o644))

	m, err := Load(path)
	require.NoError(t, err)

	cfg := m.Config()
	require.Equal(t, "1.2.3", cfg.Version)
	require.Equal(t, "center-pdf.css", cfg.Stylesheet)
	require.Equal(t, "debug", cfg.Logging.Level)
	require.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("CENTERPDF_LOGGING_LEVEL", "trace")

	m, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "trace", m.Config().Logging.Level)
}

func TestLoadRejectsBadVersion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: not-a-version\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsBadLogFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  format: xml\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestSchemaContainsTopLevelFields(t *testing.T) {
	out, err := Schema()
	require.NoError(t, err)

	for _, field := range []string{"id", "version", "root_uri", "stylesheet", "logging"} {
		require.Contains(t, string(out), field)
	}
}
