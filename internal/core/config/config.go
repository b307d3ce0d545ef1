// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-08-10
// Last Modified: 2026-08-19

// Package config handles loading CardVault configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultCollection is the Qdrant collection all card points live in. One
// collection holds every point of this kind; commands and the web server use
// this name unless the config or QDRANT_COLLECTION overrides it.
const DefaultCollection = "cards"

// Config is the root configuration structure.
type Config struct {
	// Qdrant configures the vector database connection.
	Qdrant QdrantConfig `yaml:"qdrant"`

	// Embedding configures the embedding provider.
	Embedding EmbeddingConfig `yaml:"embedding"`

	// Workflow is a preset workflow name (e.g., "card-ingest").
	Workflow string `yaml:"workflow,omitempty"`

	// Steps is a custom list of pipeline steps (overrides workflow).
	Steps []string `yaml:"steps,omitempty"`

	// Server configures the HTTP API.
	Server ServerConfig `yaml:"server"`
}

// QdrantConfig holds Qdrant connection settings.
type QdrantConfig struct {
	URL        string `yaml:"url"`
	APIKey     string `yaml:"api_key"`
	Collection string `yaml:"collection"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider string `yaml:"provider"`
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model,omitempty"`

	// Dimensions overrides the model-inferred vector size when creating the
	// collection. Leave zero to use the embedder's own value.
	Dimensions int `yaml:"dimensions,omitempty"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// Defaults returns a config populated with default values only. Commands fall
// back to this when no config file is present.
func Defaults() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads a config file from the given path and expands environment variables.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return parseRaw(data)
}

// parseRaw parses config bytes, expanding environment variables first.
func parseRaw(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()

	return &cfg, nil
}

// FindConfigPath searches for a config file in standard locations.
func FindConfigPath(explicit string) string {
	if explicit != "" {
		if _, err := os.Stat(explicit); err == nil {
			return explicit
		}
		return ""
	}

	// Search in common locations
	candidates := []string{
		".cardvault.yaml",
		".cardvault.yml",
		"cardvault.yaml",
		filepath.Join(".config", "cardvault", "config.yaml"),
	}

	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			abs, _ := filepath.Abs(c)
			return abs
		}
	}

	return ""
}

// applyDefaults sets default values for unset fields.
func (c *Config) applyDefaults() {
	if c.Qdrant.URL == "" {
		c.Qdrant.URL = "localhost:6334"
	}
	if c.Qdrant.Collection == "" {
		c.Qdrant.Collection = DefaultCollection
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "gemini"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
}
