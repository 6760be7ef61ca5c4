package accountstore

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/pebble"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/gagliardetto/solana-go"

	"github.com/LeJamon/programtest/internal/core/account"
)

// Pebble is an on-disk Store backed by PebbleDB. Decoded records are kept in
// an LRU cache so repeated reads of hot accounts skip decompression.
type Pebble struct {
	db       *pebble.DB
	path     string
	compress bool
	cache    *lru.Cache[solana.PublicKey, *account.Account]

	// guards db against use after Close
	mu     sync.RWMutex
	closed atomic.Bool
}

// NewPebble opens (creating if needed) a pebble store at cfg.Path.
func NewPebble(cfg Config) (*Pebble, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("pebble store: path is required")
	}
	if err := os.MkdirAll(cfg.Path, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", cfg.Path, err)
	}

	db, err := pebble.Open(cfg.Path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open pebble database at %s: %w", cfg.Path, err)
	}

	size := cfg.CacheSize
	if size <= 0 {
		size = DefaultConfig().CacheSize
	}
	cache, err := lru.New[solana.PublicKey, *account.Account](size)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create account cache: %w", err)
	}

	return &Pebble{db: db, path: cfg.Path, compress: cfg.Compress, cache: cache}, nil
}

func (p *Pebble) Name() string { return fmt.Sprintf("pebble(%s)", p.path) }

func (p *Pebble) Get(key solana.PublicKey) (*account.Account, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed.Load() {
		return nil, newError("get", p.Name(), key, ErrClosed)
	}

	if acct, ok := p.cache.Get(key); ok {
		return acct.Clone(), nil
	}

	raw, closer, err := p.db.Get(key[:])
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, newError("get", p.Name(), key, err)
	}
	acct, err := decodeRecord(raw)
	closer.Close()
	if err != nil {
		return nil, newError("get", p.Name(), key, err)
	}

	p.cache.Add(key, acct)
	return acct.Clone(), nil
}

func (p *Pebble) Put(key solana.PublicKey, acct *account.Account) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed.Load() {
		return newError("put", p.Name(), key, ErrClosed)
	}

	raw, err := encodeRecord(acct, p.compress)
	if err != nil {
		return newError("put", p.Name(), key, err)
	}
	if err := p.db.Set(key[:], raw, pebble.Sync); err != nil {
		p.cache.Remove(key)
		return newError("put", p.Name(), key, err)
	}
	p.cache.Add(key, acct.Clone())
	return nil
}

func (p *Pebble) Delete(key solana.PublicKey) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed.Load() {
		return newError("delete", p.Name(), key, ErrClosed)
	}

	p.cache.Remove(key)
	if err := p.db.Delete(key[:], pebble.Sync); err != nil {
		return newError("delete", p.Name(), key, err)
	}
	return nil
}

func (p *Pebble) ForEach(fn func(key solana.PublicKey, acct *account.Account) error) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed.Load() {
		return newError("iterate", p.Name(), solana.PublicKey{}, ErrClosed)
	}

	iter, err := p.db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return newError("iterate", p.Name(), solana.PublicKey{}, err)
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		if len(iter.Key()) != solana.PublicKeyLength {
			continue
		}
		key := solana.PublicKeyFromBytes(iter.Key())
		acct, err := decodeRecord(iter.Value())
		if err != nil {
			return newError("iterate", p.Name(), key, err)
		}
		if err := fn(key, acct); err != nil {
			return err
		}
	}
	return iter.Error()
}

// Close flushes and closes the database.
func (p *Pebble) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	p.cache.Purge()
	if err := p.db.Close(); err != nil {
		return newError("close", p.Name(), solana.PublicKey{}, err)
	}
	return nil
}
