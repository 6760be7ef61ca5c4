package accountstore

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

var (
	// ErrNotFound indicates that no record exists for the key.
	ErrNotFound = errors.New("account not found")

	// ErrClosed indicates that the store has been closed.
	ErrClosed = errors.New("store is closed")

	// ErrDataCorrupt indicates that a stored record could not be decoded.
	ErrDataCorrupt = errors.New("data corruption detected")

	// ErrUnsupportedBackend indicates an unknown backend name.
	ErrUnsupportedBackend = errors.New("unsupported backend")
)

// StoreError wraps a backend failure with the operation and key involved.
type StoreError struct {
	Op      string
	Backend string
	Key     solana.PublicKey
	Cause   error
}

func (e *StoreError) Error() string {
	if e.Key.IsZero() {
		return fmt.Sprintf("accountstore %s on %s: %v", e.Op, e.Backend, e.Cause)
	}
	return fmt.Sprintf("accountstore %s on %s for %s: %v", e.Op, e.Backend, e.Key, e.Cause)
}

func (e *StoreError) Unwrap() error { return e.Cause }

func newError(op, backend string, key solana.PublicKey, cause error) *StoreError {
	return &StoreError{Op: op, Backend: backend, Key: key, Cause: cause}
}
