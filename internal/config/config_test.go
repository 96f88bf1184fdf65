package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "burnup.yml"))
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Chart.BufferDays)
	assert.Equal(t, 30, cfg.Chart.MinRangeDays)
	assert.Equal(t, 5, cfg.Annotations.GroupWindowDays)
	assert.Empty(t, cfg.Database.Path)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "burnup.yml")
	require.NoError(t, os.WriteFile(path, []byte("database:\n  path: /tmp/x.db\nchart:\n  buffer_days: 10\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/x.db", cfg.Database.Path)
	assert.Equal(t, 10, cfg.Chart.BufferDays)
	assert.Equal(t, 30, cfg.Chart.MinRangeDays, "unset field keeps its default")
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "burnup.yml")
	require.NoError(t, os.WriteFile(path, []byte("chart: [not a map"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestFromYAML_RejectsBadValues(t *testing.T) {
	_, err := FromYAML([]byte("annotations:\n  group_window_days: 0\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "group_window_days")

	_, err = FromYAML([]byte("chart:\n  buffer_days: -1\n"))
	require.Error(t, err)
}
