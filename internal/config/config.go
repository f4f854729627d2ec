// Package config resolves the outreach home directory and loads the optional
// config.yaml (send caps, quiet hours, channel providers, drafting backend).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// CapsConfig is the default rate/compliance policy applied to new schedules.
type CapsConfig struct {
	QuietStartHour int `yaml:"quiet_start_hour"`
	QuietEndHour   int `yaml:"quiet_end_hour"`
	MaxPerChannel  int `yaml:"max_per_channel"`
	DomainGapDays  int `yaml:"domain_gap_days"`
}

// ProviderConfig is one channel transport provider (HTTP endpoint + key).
type ProviderConfig struct {
	URL    string `yaml:"url"`
	APIKey string `yaml:"api_key"`
	From   string `yaml:"from,omitempty"`
}

// LLMConfig configures the optional drafting backend (OpenAI-compatible API).
// When unset the composer uses its deterministic template fallback.
type LLMConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
}

// Config is the parsed config.yaml.
type Config struct {
	Caps      CapsConfig                `yaml:"caps"`
	Providers map[string]ProviderConfig `yaml:"providers"` // keyed by channel name
	LLM       LLMConfig                 `yaml:"llm"`
	Languages []string                  `yaml:"languages"` // supported outreach languages (BCP 47-ish, lowercased)
}

// Default returns the built-in config used when no config.yaml exists.
func Default() Config {
	return Config{
		Caps: CapsConfig{
			QuietStartHour: 20,
			QuietEndHour:   8,
			MaxPerChannel:  3,
			DomainGapDays:  3,
		},
		Languages: []string{"en", "no", "sv", "da", "de"},
	}
}

// Load reads home/config.yaml, applying defaults for anything unset.
// A missing file is not an error; env vars fill in LLM settings last
// (OUTREACH_LLM_URL, OPENAI_API_KEY, OUTREACH_LLM_MODEL).
func Load(home string) (Config, error) {
	cfg := Default()
	path := filepath.Join(home, "config.yaml")
	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// fall through to env
	case err != nil:
		return cfg, err
	default:
		var file Config
		if err := yaml.Unmarshal(b, &file); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
		mergeConfig(&cfg, file)
	}

	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = os.Getenv("OUTREACH_LLM_URL")
	}
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = os.Getenv("OUTREACH_LLM_MODEL")
	}
	return cfg, nil
}

func mergeConfig(dst *Config, src Config) {
	if src.Caps.QuietStartHour != 0 || src.Caps.QuietEndHour != 0 {
		dst.Caps.QuietStartHour = src.Caps.QuietStartHour
		dst.Caps.QuietEndHour = src.Caps.QuietEndHour
	}
	if src.Caps.MaxPerChannel > 0 {
		dst.Caps.MaxPerChannel = src.Caps.MaxPerChannel
	}
	if src.Caps.DomainGapDays > 0 {
		dst.Caps.DomainGapDays = src.Caps.DomainGapDays
	}
	if len(src.Providers) > 0 {
		dst.Providers = src.Providers
	}
	if src.LLM.BaseURL != "" {
		dst.LLM = src.LLM
	}
	if len(src.Languages) > 0 {
		dst.Languages = src.Languages
	}
}
