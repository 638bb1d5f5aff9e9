// Package config provides JSON-based configuration loading with environment
// variable expansion and strict field checking.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// Validator is an interface for configuration validation.
type Validator interface {
	Validate() error
}

// Unmarshal decodes JSON into target after expanding environment variables.
// Unknown fields are rejected. If target implements Validator it is validated.
func Unmarshal[T any](data []byte, target *T) error {
	expanded := os.ExpandEnv(string(data))

	dec := json.NewDecoder(bytes.NewReader([]byte(expanded)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	if validator, ok := any(target).(Validator); ok {
		if err := validator.Validate(); err != nil {
			return fmt.Errorf("config validation failed: %w", err)
		}
	}

	return nil
}

// Load loads configuration from a JSON file.
func Load[T any](filename string, target *T) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", filename, err)
	}
	if err := Unmarshal(data, target); err != nil {
		return fmt.Errorf("config file %s: %w", filename, err)
	}
	return nil
}
