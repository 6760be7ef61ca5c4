// Package banks is the client boundary between test helpers and a running
// ledger. Every method is a suspension point: it may block on the ledger
// and honours ctx cancellation.
package banks

//go:generate mockgen -destination=mock/client.go -package=mock github.com/LeJamon/programtest/internal/banks Client,Warper

import (
	"context"

	"github.com/gagliardetto/solana-go"

	"github.com/LeJamon/programtest/internal/core/account"
	"github.com/LeJamon/programtest/internal/core/rent"
	"github.com/LeJamon/programtest/internal/core/sysvar"
)

// Client talks to a live ledger.
type Client interface {
	// LatestBlockhash returns the blockhash new transactions should use.
	LatestBlockhash(ctx context.Context) (solana.Hash, error)

	// ProcessTransaction submits tx and waits for it to be committed.
	ProcessTransaction(ctx context.Context, tx *solana.Transaction) error

	// GetAccount returns the account at addr, or nil if it does not exist.
	GetAccount(ctx context.Context, addr solana.PublicKey) (*account.Account, error)

	// GetClock returns the clock sysvar.
	GetClock(ctx context.Context) (sysvar.Clock, error)

	// GetRent returns the rent sysvar.
	GetRent(ctx context.Context) (rent.Rent, error)
}

// Warper moves a ledger's clock. Only test ledgers implement it.
type Warper interface {
	// SetClock overwrites the clock sysvar.
	SetClock(ctx context.Context, c sysvar.Clock) error

	// WarpToSlot jumps the ledger forward to slot.
	WarpToSlot(ctx context.Context, slot uint64) error
}

// Scanner lists ledger accounts by owning program.
type Scanner interface {
	// GetProgramAccounts returns the accounts owned by owner, in address
	// order.
	GetProgramAccounts(ctx context.Context, owner solana.PublicKey) ([]account.Keyed, error)
}
