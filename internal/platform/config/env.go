package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// ParseEnvFrom loads configuration from an explicit environment snapshot
// instead of the process environment. A nil map falls back to ParseEnv.
func ParseEnvFrom(target any, environ map[string]string) error {
	if environ == nil {
		return ParseEnv(target)
	}
	if err := env.ParseWithOptions(target, env.Options{Environment: environ}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
