package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides: PROGRAMTEST_SERVER_LISTEN sets
// server.listen.
const EnvPrefix = "PROGRAMTEST"

// LoadConfig loads configuration from multiple sources in priority order:
// 1. Default values
// 2. Configuration file, when path is not empty
// 3. Environment variables (PROGRAMTEST_ prefix)
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	// 1. Defaults
	setDefaults(v)

	// 2. Configuration file
	if path != "" {
		if err := loadMainConfig(v, path); err != nil {
			return nil, fmt.Errorf("failed to load main config: %w", err)
		}
	}

	// 3. Environment
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 4. Unmarshal
	var config Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToTimeHookFunc(time.RFC3339),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&config, hook); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.configPath = path

	// 5. Validate
	if err := ValidateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// loadMainConfig reads the configuration file. Its format follows the
// extension: toml, yaml or json.
func loadMainConfig(v *viper.Viper, configPath string) error {
	v.SetConfigFile(configPath)

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return fmt.Errorf("config file does not exist: %s", configPath)
	}
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}
	return nil
}

// SaveExampleConfig writes an example configuration file.
func SaveExampleConfig(configPath string) error {
	v := viper.New()
	for key, value := range generateExampleConfig() {
		v.Set(key, value)
	}

	v.SetConfigFile(configPath)
	if err := v.WriteConfig(); err != nil {
		return fmt.Errorf("failed to write example config: %w", err)
	}
	return nil
}

func generateExampleConfig() map[string]any {
	return map[string]any{
		"server.listen":           DefaultListen,
		"server.request_timeout":  "30s",
		"server.shutdown_timeout": "5s",

		"log.level":  "info",
		"log.format": "console",

		"genesis.ticks_per_slot":         64,
		"genesis.target_tick_duration":   "6.25ms",
		"genesis.slots_per_epoch":        432000,
		"genesis.creation_time":          "2022-01-01T00:00:00Z",
		"genesis.lamports_per_signature": 5000,

		"store.backend":    "pebble",
		"store.path":       "./ledger",
		"store.cache_size": 4096,
		"store.compress":   true,

		"keypairs": []string{"alice", "bob"},
	}
}
