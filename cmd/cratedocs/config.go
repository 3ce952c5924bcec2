package main

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fwojciec/cratedocs"
)

// Config holds settings read from the environment.
type Config struct {
	Provider       string
	Model          string
	OpenAIKey      string
	OpenAIBase     string
	VoyageKey      string
	CostPerMillion float64
	DBPath         string // Empty selects ~/.cratedocs/cratedocs.db
	DatabaseURL    string
}

// LoadConfig reads configuration through getenv.
func LoadConfig(getenv func(string) string) (*Config, error) {
	c := &Config{
		Provider:       strings.TrimSpace(getenv("EMBEDDING_PROVIDER")),
		Model:          strings.TrimSpace(getenv("EMBEDDING_MODEL")),
		OpenAIKey:      getenv("OPENAI_API_KEY"),
		OpenAIBase:     getenv("OPENAI_API_BASE"),
		VoyageKey:      getenv("VOYAGE_API_KEY"),
		CostPerMillion: cratedocs.DefaultCostPerMillion,
		DBPath:         getenv("CRATEDOCS_DB"),
		DatabaseURL:    getenv("DATABASE_URL"),
	}

	if v := strings.TrimSpace(getenv("EMBEDDING_COST_PER_MILLION")); v != "" {
		cost, err := strconv.ParseFloat(v, 64)
		if err != nil || cost <= 0 {
			return nil, cratedocs.Errorf(cratedocs.ECONFIG, "invalid EMBEDDING_COST_PER_MILLION: %q", v)
		}
		c.CostPerMillion = cost
	}

	return c, nil
}

// EmbeddingConfig returns the provider configuration. An unsupported
// provider is reported as ECONFIG.
func (c *Config) EmbeddingConfig() (cratedocs.EmbeddingConfig, error) {
	kind, err := cratedocs.ParseProviderKind(c.Provider)
	if err != nil {
		return cratedocs.EmbeddingConfig{}, err
	}
	cfg := cratedocs.EmbeddingConfig{Provider: kind, Model: c.Model}
	switch kind {
	case cratedocs.ProviderVoyage:
		cfg.APIKey = c.VoyageKey
	default:
		cfg.APIKey = c.OpenAIKey
		cfg.APIBase = c.OpenAIBase
	}
	return cfg, cfg.Validate()
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "cratedocs.db"
	}
	dir := filepath.Join(home, ".cratedocs")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "cratedocs.db")
}
