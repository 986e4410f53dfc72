package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arvindn/pagepool/internal/bufferpool"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pool.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig_ParsesFields(t *testing.T) {
	path := writeConfig(t, `
pool:
  data_file: data/test.db
  capacity: 32
  strategy: clock
log:
  level: debug
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "data/test.db", cfg.Pool.DataFile)
	require.Equal(t, 32, cfg.Pool.Capacity)
	require.Equal(t, "clock", cfg.Pool.Strategy)
	require.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadConfig_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
pool:
  data_file: data/test.db
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, 16, cfg.Pool.Capacity)
	require.Equal(t, "fifo", cfg.Pool.Strategy)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestParseStrategy(t *testing.T) {
	cases := map[string]bufferpool.Strategy{
		"fifo":  bufferpool.FIFO,
		"LRU":   bufferpool.LRU,
		"lru-k": bufferpool.LRUK,
		"clock": bufferpool.CLOCK,
	}
	for name, want := range cases {
		got, err := ParseStrategy(name)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestParseStrategy_Unknown(t *testing.T) {
	_, err := ParseStrategy("bogus")
	require.Error(t, err)
}
