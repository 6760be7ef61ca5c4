package accountstore

import (
	"bytes"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/gagliardetto/solana-go"

	"github.com/LeJamon/programtest/internal/core/account"
)

// Memory is an in-memory Store. It is the default backend for tests.
type Memory struct {
	mu     sync.RWMutex
	data   map[solana.PublicKey]*account.Account
	closed atomic.Bool
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[solana.PublicKey]*account.Account)}
}

func (m *Memory) Name() string { return "memory" }

func (m *Memory) Get(key solana.PublicKey) (*account.Account, error) {
	if m.closed.Load() {
		return nil, newError("get", m.Name(), key, ErrClosed)
	}
	m.mu.RLock()
	acct, ok := m.data[key]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return acct.Clone(), nil
}

func (m *Memory) Put(key solana.PublicKey, acct *account.Account) error {
	if m.closed.Load() {
		return newError("put", m.Name(), key, ErrClosed)
	}
	m.mu.Lock()
	m.data[key] = acct.Clone()
	m.mu.Unlock()
	return nil
}

func (m *Memory) Delete(key solana.PublicKey) error {
	if m.closed.Load() {
		return newError("delete", m.Name(), key, ErrClosed)
	}
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()
	return nil
}

func (m *Memory) ForEach(fn func(key solana.PublicKey, acct *account.Account) error) error {
	if m.closed.Load() {
		return newError("iterate", m.Name(), solana.PublicKey{}, ErrClosed)
	}

	m.mu.RLock()
	keys := make([]solana.PublicKey, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	snapshot := make(map[solana.PublicKey]*account.Account, len(m.data))
	for _, k := range keys {
		snapshot[k] = m.data[k].Clone()
	}
	m.mu.RUnlock()

	sort.Slice(keys, func(i, j int) bool { return bytes.Compare(keys[i][:], keys[j][:]) < 0 })
	for _, k := range keys {
		if err := fn(k, snapshot[k]); err != nil {
			return err
		}
	}
	return nil
}

// Close drops all records.
func (m *Memory) Close() error {
	if !m.closed.CompareAndSwap(false, true) {
		return nil
	}
	m.mu.Lock()
	m.data = make(map[solana.PublicKey]*account.Account)
	m.mu.Unlock()
	return nil
}
