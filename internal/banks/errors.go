package banks

import (
	"errors"
	"fmt"
)

var (
	// ErrAccountNotFound is returned when a fetched account does not exist.
	ErrAccountNotFound = errors.New("account not found")

	// ErrDeserializeFailed is returned when account data does not decode
	// into the requested type.
	ErrDeserializeFailed = errors.New("failed to deserialize account data")
)

// ClientError wraps a failure of a call into the ledger.
type ClientError struct {
	Op  string
	Err error
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("banks client %s: %v", e.Op, e.Err)
}

func (e *ClientError) Unwrap() error { return e.Err }

// Wrap returns err as a *ClientError for op. It returns nil for a nil err
// and leaves errors that already are a *ClientError unchanged.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var ce *ClientError
	if errors.As(err, &ce) {
		return err
	}
	return &ClientError{Op: op, Err: err}
}
