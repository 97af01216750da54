package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 10, cfg.Org.DefaultMaxResults)
	assert.Equal(t, "gemini-embedding-001", cfg.LLM.EmbeddingModel)
	assert.NotEmpty(t, cfg.Store.DatabasePath)
}

func TestLoadMissingFileKeepsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Org.DefaultMaxResults, cfg.Org.DefaultMaxResults)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
org:
  default_max_results: 24
  title_template: "{{title}} in {{city}}, {{state}}"
  default_location: "store-99"
llm:
  model: custom-model
store:
  database_path: /tmp/alt.db
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 24, cfg.Org.DefaultMaxResults)
	assert.Equal(t, "store-99", cfg.Org.DefaultLocation)
	assert.Equal(t, "custom-model", cfg.LLM.Model)
	assert.Equal(t, "/tmp/alt.db", cfg.Store.DatabasePath)
	// Untouched sections keep defaults.
	assert.Equal(t, Default().Search.IndexPath, cfg.Search.IndexPath)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("org: [broken"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Run("GEMINI_API_KEY sets key", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "g-key")
		cfg := Default()
		cfg.applyEnvOverrides()
		assert.Equal(t, "g-key", cfg.LLM.APIKey)
	})

	t.Run("PAGESMITH_API_KEY wins over GEMINI_API_KEY", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "g-key")
		t.Setenv("PAGESMITH_API_KEY", "p-key")
		cfg := Default()
		cfg.applyEnvOverrides()
		assert.Equal(t, "p-key", cfg.LLM.APIKey)
	})

	t.Run("max results ignores junk", func(t *testing.T) {
		t.Setenv("PAGESMITH_MAX_RESULTS", "not-a-number")
		cfg := Default()
		cfg.applyEnvOverrides()
		assert.Equal(t, 10, cfg.Org.DefaultMaxResults)
	})

	t.Run("max results applies", func(t *testing.T) {
		t.Setenv("PAGESMITH_MAX_RESULTS", "30")
		cfg := Default()
		cfg.applyEnvOverrides()
		assert.Equal(t, 30, cfg.Org.DefaultMaxResults)
	})
}
