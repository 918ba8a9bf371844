package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// parseEnv overlays cfg with RIDELINK_-prefixed environment variables.
// Variables that are not set leave the current value untouched.
func parseEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: "RIDELINK_"}); err != nil {
		return fmt.Errorf("parsing environment: %w", err)
	}
	return nil
}
