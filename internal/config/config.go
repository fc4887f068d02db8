// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads the system's immutable, process-wide configuration.
// Config is constructed once at startup and passed explicitly to every
// component constructor — there is no package-level singleton.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// StoreTransport selects how the Catalog Store is reached.
type StoreTransport string

const (
	TransportDirect   StoreTransport = "direct"
	TransportMediated StoreTransport = "mediated"
)

// ANNBackend selects the approximate-nearest-neighbor index used for the
// semantic candidate set.
type ANNBackend string

const (
	ANNBackendPGVector  ANNBackend = "pgvector"
	ANNBackendWeaviate  ANNBackend = "weaviate"
)

// HybridWeights are the semantic/lexical blend weights of the Hybrid
// Retriever, resolved once at construction time (spec §4.2).
type HybridWeights struct {
	Semantic float64 `yaml:"semantic"`
	Lexical  float64 `yaml:"lexical"`
}

// RoleConfig mirrors the teacher's provider role split: a "main" model used
// for the Supervisor's final answers and a "router" model used only when
// the deterministic/BM25 router escalates to the LLM Oracle.
type RoleConfig struct {
	Main   ProviderConfig `yaml:"main"`
	Router ProviderConfig `yaml:"router"`
}

// ProviderConfig describes one LLM or embedding provider endpoint. APIKey
// is populated from an environment variable, never from the YAML file, and
// is never logged (see internal/llmoracle's use of memguard).
type ProviderConfig struct {
	Provider string `yaml:"provider"` // "anthropic" | "openai"
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url,omitempty"`
	APIKey   string `yaml:"-"`
}

// Config is the complete, validated, immutable configuration for one
// running instance. Construct via Load; never mutate after that.
type Config struct {
	EmbeddingDim          int            `yaml:"embedding_dim"`
	EmbeddingServiceURL   string         `yaml:"embedding_service_url"`
	EmbeddingModel        string         `yaml:"embedding_model"`
	HybridWeights         HybridWeights  `yaml:"hybrid_weights"`
	CandidateMultiplier   int            `yaml:"candidate_multiplier"`
	CandidateMinimum      int            `yaml:"candidate_minimum"`
	MaxToolCalls          int            `yaml:"max_tool_calls"`
	TurnDeadlineMS        int            `yaml:"turn_deadline_ms"`
	TaxRate               float64        `yaml:"tax_rate"`
	FreeShippingThreshold float64        `yaml:"free_shipping_threshold"`
	FlatShipping          float64        `yaml:"flat_shipping"`
	StoreTransport        StoreTransport `yaml:"store_transport"`
	ANNBackend            ANNBackend     `yaml:"ann_backend"`
	WeaviateScheme        string         `yaml:"weaviate_scheme,omitempty"`
	WeaviateHost          string         `yaml:"weaviate_host,omitempty"`
	WeaviateClassName     string         `yaml:"weaviate_class_name,omitempty"`
	MCPServerAddr         string         `yaml:"mcp_server_addr,omitempty"`
	RoutingCacheDir       string         `yaml:"routing_cache_dir,omitempty"`
	Roles                 RoleConfig     `yaml:"roles"`
	RouterEscalationThreshold float64    `yaml:"router_escalation_threshold"`
}

// Default returns the configuration with every default named in spec §6.
func Default() *Config {
	return &Config{
		EmbeddingDim:              1024,
		EmbeddingServiceURL:       "http://localhost:11434/api/embed",
		EmbeddingModel:            "nomic-embed-text-v2-moe",
		HybridWeights:             HybridWeights{Semantic: 0.7, Lexical: 0.3},
		CandidateMultiplier:       4,
		CandidateMinimum:          50,
		MaxToolCalls:              5,
		TurnDeadlineMS:            30000,
		TaxRate:                   0.085,
		FreeShippingThreshold:     75.00,
		FlatShipping:              7.99,
		StoreTransport:            TransportDirect,
		ANNBackend:                ANNBackendPGVector,
		WeaviateScheme:            "http",
		WeaviateHost:              "localhost:8080",
		WeaviateClassName:         "Product",
		RouterEscalationThreshold: 0.7,
		Roles: RoleConfig{
			Main:   ProviderConfig{Provider: "anthropic", Model: "claude-sonnet-4-5"},
			Router: ProviderConfig{Provider: "anthropic", Model: "claude-haiku-4-5"},
		},
	}
}

// Load reads a YAML file at path, applies environment-variable overrides
// for secrets, and validates the result. Fields absent from the file keep
// the value Default() gave them, since the file is unmarshalled on top of
// Default().
func Load(path string) (*Config, error) {
	cfg := Default()

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: invalid: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides resolves provider API keys from the environment. Keys
// are never read from or written to the YAML file and never logged — see
// internal/redact's String for the posture this mirrors.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		if cfg.Roles.Main.Provider == "anthropic" {
			cfg.Roles.Main.APIKey = v
		}
		if cfg.Roles.Router.Provider == "anthropic" {
			cfg.Roles.Router.APIKey = v
		}
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		if cfg.Roles.Main.Provider == "openai" {
			cfg.Roles.Main.APIKey = v
		}
		if cfg.Roles.Router.Provider == "openai" {
			cfg.Roles.Router.APIKey = v
		}
	}
	if v := os.Getenv("EMBEDDING_SERVICE_URL"); v != "" {
		cfg.EmbeddingServiceURL = v
	}
	if v := os.Getenv("EMBEDDING_MODEL"); v != "" {
		cfg.EmbeddingModel = v
	}
}

// Validate checks the invariants spec §6 requires of configuration.
func (c *Config) Validate() error {
	const epsilon = 1e-9
	sum := c.HybridWeights.Semantic + c.HybridWeights.Lexical
	if sum < 1.0-epsilon || sum > 1.0+epsilon {
		return fmt.Errorf("hybrid_weights must sum to 1.0, got %v", sum)
	}
	if c.CandidateMultiplier < 1 {
		return fmt.Errorf("candidate_multiplier must be >= 1, got %d", c.CandidateMultiplier)
	}
	if c.EmbeddingDim <= 0 {
		return fmt.Errorf("embedding_dim must be positive, got %d", c.EmbeddingDim)
	}
	if c.MaxToolCalls < 1 {
		return fmt.Errorf("max_tool_calls must be >= 1, got %d", c.MaxToolCalls)
	}
	if c.StoreTransport != TransportDirect && c.StoreTransport != TransportMediated {
		return fmt.Errorf("store_transport must be %q or %q, got %q", TransportDirect, TransportMediated, c.StoreTransport)
	}
	return nil
}
