package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// #region config

// Config is the application configuration. Values come from an optional
// YAML file with env-var fallbacks for secrets.
type Config struct {
	DBPath string `yaml:"db_path"`

	API struct {
		BaseURL    string `yaml:"base_url"`
		KeyEnv     string `yaml:"key_env"`
		ChatModel  string `yaml:"chat_model"`
		EmbedModel string `yaml:"embed_model"`
	} `yaml:"api"`

	Debate struct {
		Rounds         int `yaml:"rounds"`
		LedgerCapacity int `yaml:"ledger_capacity"`
	} `yaml:"debate"`

	Retrieval struct {
		TopK     int `yaml:"top_k"`
		MaxWords int `yaml:"chunk_max_words"`
	} `yaml:"retrieval"`

	PolicyPath string `yaml:"policy_path"` // optional scoring policy override
}

// #endregion

// #region defaults

// Default returns the built-in configuration.
func Default() Config {
	var c Config
	c.DBPath = "courtroom.db"
	c.API.BaseURL = "https://openrouter.ai/api/v1"
	c.API.KeyEnv = "OPENROUTER_API_KEY"
	c.API.ChatModel = "meta-llama/llama-3.1-8b-instruct"
	c.API.EmbedModel = "text-embedding-3-small"
	c.Debate.Rounds = 1
	c.Debate.LedgerCapacity = 5
	c.Retrieval.TopK = 5
	c.Retrieval.MaxWords = 180
	return c
}

// #endregion

// #region load

// Load reads the config file at path over the defaults. A missing path
// returns the defaults unchanged.
func Load(path string) (Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return c, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return c, fmt.Errorf("parse config: %w", err)
	}
	return c, nil
}

// APIKey resolves the configured key env var.
func (c Config) APIKey() string {
	return os.Getenv(c.API.KeyEnv)
}

// #endregion
