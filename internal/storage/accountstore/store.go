// Package accountstore persists account records keyed by address.
//
// Two backends are registered: "memory", a map guarded by a mutex, and
// "pebble", an on-disk store with an LRU read cache and LZ4 compression of
// large account data.
package accountstore

import (
	"fmt"
	"sort"
	"sync"

	"github.com/gagliardetto/solana-go"

	"github.com/LeJamon/programtest/internal/core/account"
)

// Store holds account records.
type Store interface {
	// Name identifies the backend.
	Name() string

	// Get returns a copy of the account at key, or ErrNotFound.
	Get(key solana.PublicKey) (*account.Account, error)

	// Put stores a copy of acct at key, replacing any previous record.
	Put(key solana.PublicKey, acct *account.Account) error

	// Delete removes the record at key. Deleting a missing key is not an error.
	Delete(key solana.PublicKey) error

	// ForEach calls fn for every record in key order until fn returns an error.
	ForEach(fn func(key solana.PublicKey, acct *account.Account) error) error

	// Close releases the backend. Further calls fail with ErrClosed.
	Close() error
}

// Config selects and parameterizes a backend.
type Config struct {
	// Backend is a registered backend name.
	Backend string `mapstructure:"backend"`

	// Path is the directory of on-disk backends.
	Path string `mapstructure:"path"`

	// CacheSize is the number of decoded records kept in memory by on-disk
	// backends.
	CacheSize int `mapstructure:"cache_size"`

	// Compress enables LZ4 compression of account data.
	Compress bool `mapstructure:"compress"`
}

// DefaultConfig returns an in-memory configuration.
func DefaultConfig() Config {
	return Config{
		Backend:   "memory",
		CacheSize: 4096,
		Compress:  true,
	}
}

// Factory builds a store from a configuration.
type Factory func(cfg Config) (Store, error)

var (
	backendMu        sync.RWMutex
	backendFactories = make(map[string]Factory)
)

// RegisterBackend makes a backend available to Open.
func RegisterBackend(name string, factory Factory) {
	backendMu.Lock()
	defer backendMu.Unlock()
	backendFactories[name] = factory
}

// Open creates the store cfg names.
func Open(cfg Config) (Store, error) {
	backendMu.RLock()
	factory, ok := backendFactories[cfg.Backend]
	backendMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedBackend, cfg.Backend)
	}
	return factory(cfg)
}

// AvailableBackends returns the registered backend names, sorted.
func AvailableBackends() []string {
	backendMu.RLock()
	defer backendMu.RUnlock()

	names := make([]string, 0, len(backendFactories))
	for name := range backendFactories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	RegisterBackend("memory", func(Config) (Store, error) { return NewMemory(), nil })
	RegisterBackend("pebble", func(cfg Config) (Store, error) { return NewPebble(cfg) })
}
