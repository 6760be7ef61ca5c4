// Package config loads the configuration of the local ledger server.
package config

import (
	"time"

	"github.com/LeJamon/programtest/internal/core/genesis"
	"github.com/LeJamon/programtest/internal/storage/accountstore"
)

// Config represents the complete server configuration.
type Config struct {
	// 1. Server section
	Server ServerConfig `toml:"server" mapstructure:"server"`

	// 2. Logging
	Log LogConfig `toml:"log" mapstructure:"log"`

	// 3. Ledger
	Genesis genesis.Config      `toml:"genesis" mapstructure:"genesis"`
	Store   accountstore.Config `toml:"store" mapstructure:"store"`

	// 4. Initial state, seeded in this order before the ledger starts
	Keypairs      []string           `toml:"keypairs" mapstructure:"keypairs"`
	Accounts      []AccountSeed      `toml:"accounts" mapstructure:"accounts"`
	Mints         []MintSeed         `toml:"mints" mapstructure:"mints"`
	TokenAccounts []TokenAccountSeed `toml:"token_accounts" mapstructure:"token_accounts"`

	configPath string `toml:"-" mapstructure:"-"`
}

// ServerConfig configures the JSON-RPC listener.
type ServerConfig struct {
	Listen          string        `toml:"listen" mapstructure:"listen"`
	RequestTimeout  time.Duration `toml:"request_timeout" mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	// Level is a zerolog level name.
	Level string `toml:"level" mapstructure:"level"`

	// Format is "console" or "json".
	Format string `toml:"format" mapstructure:"format"`
}

// AccountSeed is a raw account. Data is base64; DataFile names a file
// holding the raw bytes instead, relative to the configuration file.
type AccountSeed struct {
	Address    string `toml:"address" mapstructure:"address"`
	Owner      string `toml:"owner" mapstructure:"owner"`
	Lamports   uint64 `toml:"lamports" mapstructure:"lamports"`
	Data       string `toml:"data" mapstructure:"data"`
	DataFile   string `toml:"data_file" mapstructure:"data_file"`
	Executable bool   `toml:"executable" mapstructure:"executable"`
}

// MintSeed is an initialized token mint. Authorities are optional.
type MintSeed struct {
	Address         string `toml:"address" mapstructure:"address"`
	Authority       string `toml:"authority" mapstructure:"authority"`
	FreezeAuthority string `toml:"freeze_authority" mapstructure:"freeze_authority"`
	Supply          uint64 `toml:"supply" mapstructure:"supply"`
	Decimals        uint8  `toml:"decimals" mapstructure:"decimals"`
}

// TokenAccountSeed is an initialized token account. Without an address it is
// the owner's associated token account.
type TokenAccountSeed struct {
	Address string `toml:"address" mapstructure:"address"`
	Mint    string `toml:"mint" mapstructure:"mint"`
	Owner   string `toml:"owner" mapstructure:"owner"`
	Amount  uint64 `toml:"amount" mapstructure:"amount"`
}

// GetConfigPath returns the file the configuration was read from, if any.
func (c *Config) GetConfigPath() string {
	return c.configPath
}
