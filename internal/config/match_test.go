package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultMatchConfig(t *testing.T) {
	cfg := DefaultMatchConfig()
	assert.Equal(t, 100, cfg.K)
	assert.Equal(t, 1000.0, cfg.MaxDistance)
	assert.Equal(t, 80.0, cfg.NameThreshold)
	assert.Equal(t, 256, cfg.Embedder.BatchSize)
	assert.NoError(t, cfg.Validate())
}

func TestLoadMatchConfig_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "match.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"k": 5, "max_distance_m": 250, "projection": "epsg3857"}`), 0o644))

	t.Setenv("POI_NAME_THRESHOLD", "85")
	t.Setenv("POI_NON_PRIMARY_TOKENS", "INC, LLC,,")

	cfg, err := LoadMatchConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.K)
	assert.Equal(t, 250.0, cfg.MaxDistance)
	assert.Equal(t, "epsg3857", cfg.Projection)
	assert.Equal(t, 85.0, cfg.NameThreshold)
	assert.Equal(t, []string{"INC", "LLC"}, cfg.NonPrimaryTokens)
}

func TestLoadMatchConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadMatchConfig(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.K)
}

func TestLoadMatchConfig_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"k": `), 0o644))

	_, err := LoadMatchConfig(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*MatchConfig)
	}{
		{"zero k", func(c *MatchConfig) { c.K = 0 }},
		{"negative distance", func(c *MatchConfig) { c.MaxDistance = -1 }},
		{"threshold above 100", func(c *MatchConfig) { c.NameThreshold = 101 }},
		{"unknown projection", func(c *MatchConfig) { c.Projection = "utm" }},
		{"ort without model", func(c *MatchConfig) { c.Embedder.Kind = "ort" }},
		{"zero batch", func(c *MatchConfig) { c.Embedder.BatchSize = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultMatchConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadEnvFrom(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("# comment\nPOI_TEST_A=alpha\nPOI_TEST_B=\"quoted\"\n"), 0o644))
	t.Setenv("POI_TEST_A", "")
	t.Setenv("POI_TEST_B", "preset")

	require.NoError(t, LoadEnvFrom(path))
	assert.Equal(t, "alpha", os.Getenv("POI_TEST_A"))
	assert.Equal(t, "preset", os.Getenv("POI_TEST_B"))
}
