package banks

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/LeJamon/programtest/internal/core/account"
	"github.com/LeJamon/programtest/internal/core/bank"
	"github.com/LeJamon/programtest/internal/core/rent"
	"github.com/LeJamon/programtest/internal/core/sysvar"
)

// Local is a Client and Warper over an in-process bank.
type Local struct {
	bank *bank.Bank
}

var (
	_ Client  = (*Local)(nil)
	_ Warper  = (*Local)(nil)
	_ Scanner = (*Local)(nil)
)

// NewLocal returns a client for b.
func NewLocal(b *bank.Bank) *Local {
	return &Local{bank: b}
}

// Bank returns the underlying bank.
func (l *Local) Bank() *bank.Bank { return l.bank }

func (l *Local) LatestBlockhash(ctx context.Context) (solana.Hash, error) {
	if err := ctx.Err(); err != nil {
		return solana.Hash{}, Wrap("get latest blockhash", err)
	}
	h, err := l.bank.LatestBlockhash()
	return h, Wrap("get latest blockhash", err)
}

func (l *Local) ProcessTransaction(ctx context.Context, tx *solana.Transaction) error {
	return Wrap("process transaction", l.bank.ProcessTransaction(ctx, tx))
}

func (l *Local) GetAccount(ctx context.Context, addr solana.PublicKey) (*account.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, Wrap("get account", err)
	}
	acct, err := l.bank.Account(addr)
	if err != nil {
		return nil, Wrap("get account", fmt.Errorf("%s: %w", addr, err))
	}
	return acct, nil
}

func (l *Local) GetProgramAccounts(ctx context.Context, owner solana.PublicKey) ([]account.Keyed, error) {
	if err := ctx.Err(); err != nil {
		return nil, Wrap("get program accounts", err)
	}
	accts, err := l.bank.AccountsByOwner(owner)
	return accts, Wrap("get program accounts", err)
}

func (l *Local) GetClock(ctx context.Context) (sysvar.Clock, error) {
	if err := ctx.Err(); err != nil {
		return sysvar.Clock{}, Wrap("get clock", err)
	}
	c, err := l.bank.Clock()
	return c, Wrap("get clock", err)
}

func (l *Local) GetRent(ctx context.Context) (rent.Rent, error) {
	if err := ctx.Err(); err != nil {
		return rent.Rent{}, Wrap("get rent", err)
	}
	return l.bank.Rent(), nil
}

func (l *Local) SetClock(ctx context.Context, c sysvar.Clock) error {
	if err := ctx.Err(); err != nil {
		return Wrap("set clock", err)
	}
	return Wrap("set clock", l.bank.SetClock(c))
}

func (l *Local) WarpToSlot(ctx context.Context, slot uint64) error {
	if err := ctx.Err(); err != nil {
		return Wrap("warp to slot", err)
	}
	return Wrap("warp to slot", l.bank.WarpToSlot(slot))
}
