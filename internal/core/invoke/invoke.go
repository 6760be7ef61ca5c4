// Package invoke is the contract between the bank and the builtin programs
// it executes. A Context holds the accounts loaded for one transaction;
// programs read and mutate them through it.
package invoke

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/LeJamon/programtest/internal/core/account"
	"github.com/LeJamon/programtest/internal/core/rent"
	"github.com/LeJamon/programtest/internal/core/sysvar"
)

// AccountRef is one account passed to an instruction.
type AccountRef struct {
	Key        solana.PublicKey
	IsSigner   bool
	IsWritable bool
}

// Instruction is a resolved instruction ready for execution.
type Instruction struct {
	ProgramID solana.PublicKey
	Accounts  []AccountRef
	Data      []byte
}

// Account returns the i-th account key or ErrNotEnoughAccountKeys.
func (ix Instruction) Account(i int) (AccountRef, error) {
	if i < 0 || i >= len(ix.Accounts) {
		return AccountRef{}, fmt.Errorf("%w: need index %d, have %d", ErrNotEnoughAccountKeys, i, len(ix.Accounts))
	}
	return ix.Accounts[i], nil
}

// FromInstruction resolves a client-side instruction without going through a
// compiled message. Signer and writable flags are taken from its metas.
func FromInstruction(ix solana.Instruction) (Instruction, error) {
	data, err := ix.Data()
	if err != nil {
		return Instruction{}, fmt.Errorf("%w: %v", ErrInvalidInstructionData, err)
	}
	out := Instruction{ProgramID: ix.ProgramID(), Data: data}
	for _, m := range ix.Accounts() {
		out.Accounts = append(out.Accounts, AccountRef{Key: m.PublicKey, IsSigner: m.IsSigner, IsWritable: m.IsWritable})
	}
	return out, nil
}

// Program is a builtin program the bank can dispatch instructions to.
type Program interface {
	// ID is the program address.
	ID() solana.PublicKey

	// Process executes one instruction against ctx.
	Process(ctx *Context, ix Instruction) error
}

type loaded struct {
	acct     *account.Account
	signer   bool
	writable bool
}

// Context holds the accounts of a transaction while it executes.
type Context struct {
	rent     rent.Rent
	clock    sysvar.Clock
	accounts map[solana.PublicKey]*loaded
	order    []solana.PublicKey
}

// NewContext returns an empty context.
func NewContext(r rent.Rent, clock sysvar.Clock) *Context {
	return &Context{
		rent:     r,
		clock:    clock,
		accounts: make(map[solana.PublicKey]*loaded),
	}
}

// Load adds an account to the context. A nil account is loaded as an empty
// system-owned account.
func (c *Context) Load(key solana.PublicKey, acct *account.Account, signer, writable bool) {
	if acct == nil {
		acct = account.New()
	}
	if l, ok := c.accounts[key]; ok {
		l.signer = l.signer || signer
		l.writable = l.writable || writable
		return
	}
	c.accounts[key] = &loaded{acct: acct, signer: signer, writable: writable}
	c.order = append(c.order, key)
}

// Rent returns the rent parameters in effect.
func (c *Context) Rent() rent.Rent { return c.rent }

// Clock returns the clock in effect.
func (c *Context) Clock() sysvar.Clock { return c.clock }

// IsSigner reports whether key signed the transaction.
func (c *Context) IsSigner(key solana.PublicKey) bool {
	l, ok := c.accounts[key]
	return ok && l.signer
}

// IsWritable reports whether the transaction marked key writable.
func (c *Context) IsWritable(key solana.PublicKey) bool {
	l, ok := c.accounts[key]
	return ok && l.writable
}

// Get returns a read-only view of the account at key.
func (c *Context) Get(key solana.PublicKey) (*account.Account, error) {
	l, ok := c.accounts[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s not loaded", ErrNotEnoughAccountKeys, key)
	}
	return l.acct, nil
}

// Mutable returns the account at key for modification. It fails when the
// transaction did not mark the account writable.
func (c *Context) Mutable(key solana.PublicKey) (*account.Account, error) {
	l, ok := c.accounts[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s not loaded", ErrNotEnoughAccountKeys, key)
	}
	if !l.writable {
		return nil, fmt.Errorf("%w: %s", ErrReadonlyAccount, key)
	}
	return l.acct, nil
}

// RequireSigner fails with ErrMissingRequiredSignature unless key signed.
func (c *Context) RequireSigner(key solana.PublicKey) error {
	if !c.IsSigner(key) {
		return fmt.Errorf("%w: %s", ErrMissingRequiredSignature, key)
	}
	return nil
}

// Writable returns the keys of all writable accounts in load order.
func (c *Context) Writable() []solana.PublicKey {
	var keys []solana.PublicKey
	for _, k := range c.order {
		if c.accounts[k].writable {
			keys = append(keys, k)
		}
	}
	return keys
}

// Snapshot returns deep copies of all loaded accounts.
func (c *Context) Snapshot() map[solana.PublicKey]*account.Account {
	out := make(map[solana.PublicKey]*account.Account, len(c.accounts))
	for k, l := range c.accounts {
		out[k] = l.acct.Clone()
	}
	return out
}

// Restore replaces loaded accounts with a snapshot taken earlier.
func (c *Context) Restore(snap map[solana.PublicKey]*account.Account) {
	for k, a := range snap {
		if l, ok := c.accounts[k]; ok {
			l.acct = a.Clone()
		}
	}
}
