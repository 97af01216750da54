// Package config holds pagesmith configuration, loaded from YAML with
// environment overrides applied on top.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all pagesmith configuration.
type Config struct {
	// Org-level authoring settings.
	Org OrgConfig `yaml:"org"`

	// LLM configures the generation and embedding collaborators.
	LLM LLMConfig `yaml:"llm"`

	// Search configures the product search index.
	Search SearchConfig `yaml:"search"`

	// Store configures durable per-product content storage.
	Store StoreConfig `yaml:"store"`

	// Catalog configures the component catalog source.
	Catalog CatalogConfig `yaml:"catalog"`

	// Logging configures zap output.
	Logging LoggingConfig `yaml:"logging"`
}

// OrgConfig carries org-wide authoring defaults.
type OrgConfig struct {
	// DefaultMaxResults seeds SearchParameters.MaxResults for new assortment
	// blocks. Falls back to 10 when zero.
	DefaultMaxResults int `yaml:"default_max_results"`

	// TitleTemplate derives location-page titles, e.g.
	// "{{title}} in {{city}}, {{state}}". Empty means substitute into the
	// canonical title instead.
	TitleTemplate string `yaml:"title_template"`

	// DefaultLocation is the session's editing location id.
	DefaultLocation string `yaml:"default_location"`
}

// LLMConfig configures the Gemini collaborators.
type LLMConfig struct {
	APIKey         string `yaml:"api_key"`
	Model          string `yaml:"model"`
	EmbeddingModel string `yaml:"embedding_model"`
}

// SearchConfig configures the bleve product index.
type SearchConfig struct {
	IndexPath string `yaml:"index_path"`
}

// StoreConfig configures SQLite storage.
type StoreConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// CatalogConfig configures the component catalog file.
type CatalogConfig struct {
	Path string `yaml:"path"`
	// Watch reloads the catalog when the file changes on disk.
	Watch bool `yaml:"watch"`
}

// LoggingConfig configures zap.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Org: OrgConfig{
			DefaultMaxResults: 10,
		},
		LLM: LLMConfig{
			Model:          "gemini-2.5-flash",
			EmbeddingModel: "gemini-embedding-001",
		},
		Search: SearchConfig{
			IndexPath: ".pagesmith/products.bleve",
		},
		Store: StoreConfig{
			DatabasePath: ".pagesmith/pagesmith.db",
		},
		Catalog: CatalogConfig{
			Path: ".pagesmith/components.yaml",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads the YAML file at path over the defaults and applies env
// overrides. A missing file is not an error; defaults plus env apply.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides layers PAGESMITH_* (and GEMINI_API_KEY) environment
// variables over the loaded config. Env always wins over file values.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("PAGESMITH_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("PAGESMITH_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("PAGESMITH_EMBEDDING_MODEL"); v != "" {
		c.LLM.EmbeddingModel = v
	}
	if v := os.Getenv("PAGESMITH_INDEX_PATH"); v != "" {
		c.Search.IndexPath = v
	}
	if v := os.Getenv("PAGESMITH_DB_PATH"); v != "" {
		c.Store.DatabasePath = v
	}
	if v := os.Getenv("PAGESMITH_COMPONENTS"); v != "" {
		c.Catalog.Path = v
	}
	if v := os.Getenv("PAGESMITH_LOCATION"); v != "" {
		c.Org.DefaultLocation = v
	}
	if v := os.Getenv("PAGESMITH_MAX_RESULTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Org.DefaultMaxResults = n
		}
	}
	if v := os.Getenv("PAGESMITH_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}
