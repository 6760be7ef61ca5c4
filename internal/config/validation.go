package config

import (
	"fmt"
	"net"
	"slices"

	"github.com/rs/zerolog"

	"github.com/LeJamon/programtest/internal/storage/accountstore"
)

// ValidateConfig performs validation on the complete configuration.
func ValidateConfig(config *Config) error {
	if err := validateServerConfig(&config.Server); err != nil {
		return fmt.Errorf("server config validation failed: %w", err)
	}
	if err := validateLogConfig(&config.Log); err != nil {
		return fmt.Errorf("log config validation failed: %w", err)
	}
	if err := config.Genesis.Validate(); err != nil {
		return fmt.Errorf("genesis validation failed: %w", err)
	}
	if err := validateStoreConfig(&config.Store); err != nil {
		return fmt.Errorf("store validation failed: %w", err)
	}
	if _, err := config.seeds(); err != nil {
		return fmt.Errorf("initial state validation failed: %w", err)
	}
	return nil
}

func validateServerConfig(s *ServerConfig) error {
	if s.Listen == "" {
		return fmt.Errorf("listen address is required")
	}
	if _, _, err := net.SplitHostPort(s.Listen); err != nil {
		return fmt.Errorf("invalid listen address %q: %w", s.Listen, err)
	}
	if s.RequestTimeout < 0 {
		return fmt.Errorf("request_timeout must not be negative")
	}
	if s.ShutdownTimeout < 0 {
		return fmt.Errorf("shutdown_timeout must not be negative")
	}
	return nil
}

func validateLogConfig(l *LogConfig) error {
	if _, err := zerolog.ParseLevel(l.Level); err != nil {
		return fmt.Errorf("invalid level %q: %w", l.Level, err)
	}
	if l.Format != "console" && l.Format != "json" {
		return fmt.Errorf("invalid format %q (supported: console, json)", l.Format)
	}
	return nil
}

func validateStoreConfig(s *accountstore.Config) error {
	if !slices.Contains(accountstore.AvailableBackends(), s.Backend) {
		return fmt.Errorf("%w: %q (available: %v)", accountstore.ErrUnsupportedBackend, s.Backend, accountstore.AvailableBackends())
	}
	if s.Backend != "memory" && s.Path == "" {
		return fmt.Errorf("backend %q requires a path", s.Backend)
	}
	if s.CacheSize < 0 {
		return fmt.Errorf("cache_size must not be negative")
	}
	return nil
}
