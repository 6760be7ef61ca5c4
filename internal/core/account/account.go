// Package account defines the ledger-resident account record.
package account

import (
	"bytes"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// MaxPermittedDataLength is the largest data size an account may hold.
const MaxPermittedDataLength = 10 * 1024 * 1024

// Account is a single ledger-resident account.
type Account struct {
	// Owner is the program allowed to modify Data and debit Lamports.
	Owner solana.PublicKey

	// Lamports is the account balance.
	Lamports uint64

	// Data is the account state, interpreted by Owner.
	Data []byte

	// Executable marks program accounts.
	Executable bool

	// RentEpoch is the next epoch rent is due.
	RentEpoch uint64
}

// Keyed is an account together with its address.
type Keyed struct {
	Address solana.PublicKey
	Account *Account
}

// New returns an empty, system-owned account as the runtime sees an
// address that has never been written.
func New() *Account {
	return &Account{Owner: solana.SystemProgramID}
}

// Clone returns a deep copy of the account.
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	c := *a
	if a.Data != nil {
		c.Data = make([]byte, len(a.Data))
		copy(c.Data, a.Data)
	}
	return &c
}

// IsEmpty reports whether the account is indistinguishable from one that
// was never created.
func (a *Account) IsEmpty() bool {
	return a.Lamports == 0 && len(a.Data) == 0 && !a.Executable &&
		(a.Owner.IsZero() || a.Owner.Equals(solana.SystemProgramID))
}

// Equal reports whether two accounts hold the same state.
func (a *Account) Equal(b *Account) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Owner.Equals(b.Owner) &&
		a.Lamports == b.Lamports &&
		a.Executable == b.Executable &&
		a.RentEpoch == b.RentEpoch &&
		bytes.Equal(a.Data, b.Data)
}

// String implements the Stringer interface for debugging.
func (a *Account) String() string {
	return fmt.Sprintf("Account{owner=%s lamports=%d data=%d bytes executable=%t}",
		a.Owner, a.Lamports, len(a.Data), a.Executable)
}
