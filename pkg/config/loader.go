// Package config reads configuration structs from environment variables.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Load fills cfg from the process environment using `env` struct tags.
// Fields tagged required fail the load when the variable is unset, so a
// misconfigured deployment dies at startup instead of at first use.
//
//	type Config struct {
//	    HTTPPort  int      `env:"HTTP_PORT" envDefault:"8080"`
//	    JWTSecret string   `env:"JWT_SECRET,required"`
//	    Origins   []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
//	}
func Load(cfg any) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}
