// Package config manages the persisted tasklog configuration and its
// three-layer resolution: built-in defaults, the config file, and an
// optional inline JSON override.
package config

import (
	"encoding/json"
	"fmt"

	"tasklog/internal/apperr"
	"tasklog/internal/duration"
	"tasklog/internal/storage"
	pkgconfig "tasklog/pkg/config"
)

// FileName is the config file name under the base directory.
const FileName = "config.json"

// Config holds the chat-completion endpoint settings and the default
// recency window. All fields are optional on disk; unset fields fall
// through to the layer below.
type Config struct {
	BaseURL string             `json:"baseURL,omitempty"`
	APIKey  string             `json:"apiKey,omitempty"`
	Model   string             `json:"model,omitempty"`
	Recency *duration.Duration `json:"recency,omitempty"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Recency != nil {
		if err := c.Recency.Validate(); err != nil {
			return fmt.Errorf("recency: %w", err)
		}
	}
	return nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		BaseURL: "http://localhost:11434/v1",
		Model:   "llama3.2:latest",
		Recency: &duration.Duration{Count: 1, Unit: duration.UnitDay},
	}
}

// merge overlays set fields of over onto c, field by field.
func (c *Config) merge(over *Config) {
	if over == nil {
		return
	}
	if over.BaseURL != "" {
		c.BaseURL = over.BaseURL
	}
	if over.APIKey != "" {
		c.APIKey = over.APIKey
	}
	if over.Model != "" {
		c.Model = over.Model
	}
	if over.Recency != nil {
		c.Recency = over.Recency
	}
}

// Store persists the configuration under the base directory.
type Store struct {
	fs storage.Provider
}

// NewStore creates a config store over the given provider.
func NewStore(fs storage.Provider) *Store {
	return &Store{fs: fs}
}

// Load reads and validates the stored config file without applying
// defaults or overrides.
func (s *Store) Load() (*Config, error) {
	ok, err := s.fs.Exists(FileName)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.NotFoundf("config file not found; run init first")
	}
	data, err := s.fs.Read(FileName)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := pkgconfig.Unmarshal(data, &cfg); err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, err, "invalid config file")
	}
	return &cfg, nil
}

// Resolve merges built-in defaults, the stored file, and an optional inline
// JSON override string, in increasing precedence.
func (s *Store) Resolve(overrideJSON string) (*Config, error) {
	stored, err := s.Load()
	if err != nil {
		return nil, err
	}

	cfg := Default()
	cfg.merge(stored)

	if overrideJSON != "" {
		var over Config
		if err := pkgconfig.Unmarshal([]byte(overrideJSON), &over); err != nil {
			return nil, apperr.Wrap(apperr.KindValidation, err, "invalid config override")
		}
		cfg.merge(&over)
	}
	return cfg, nil
}

// Save serializes cfg as pretty-printed JSON and overwrites the file.
func (s *Store) Save(cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return s.fs.Write(FileName, append(data, '\n'))
}

// Reset overwrites the config file with the built-in defaults.
func (s *Store) Reset() error {
	return s.Save(Default())
}

// Set validates key, stores val (parsing recency through the duration
// parser), and saves the file.
func (s *Store) Set(key, val string) error {
	cfg, err := s.Load()
	if err != nil {
		return err
	}
	switch key {
	case "baseURL":
		cfg.BaseURL = val
	case "apiKey":
		cfg.APIKey = val
	case "model":
		cfg.Model = val
	case "recency":
		d, err := duration.Parse(val)
		if err != nil {
			return err
		}
		cfg.Recency = &d
	default:
		return apperr.Validationf("unknown config key %q (known: baseURL, apiKey, model, recency)", key)
	}
	return s.Save(cfg)
}
