package token

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/LeJamon/programtest/internal/codec/record"
	"github.com/LeJamon/programtest/internal/core/account"
	"github.com/LeJamon/programtest/internal/core/invoke"
)

// Program executes token instructions.
type Program struct{}

// New returns the token program.
func New() *Program { return &Program{} }

func (*Program) ID() solana.PublicKey { return ProgramID }

func (p *Program) Process(ctx *invoke.Context, ix invoke.Instruction) error {
	d, err := decode(ix.Data)
	if err != nil {
		return err
	}
	keys := make([]solana.PublicKey, len(ix.Accounts))
	for i, a := range ix.Accounts {
		keys[i] = a.Key
	}
	need := func(n int) error {
		if len(keys) < n {
			return fmt.Errorf("%w: %s needs %d accounts, got %d", invoke.ErrNotEnoughAccountKeys, d.Type, n, len(keys))
		}
		return nil
	}

	switch d.Type {
	case InstructionInitializeMint:
		if err := need(1); err != nil {
			return err
		}
		return initializeMint(ctx, keys[0], d.MintAuthority, d.FreezeAuthority, d.Decimals)
	case InstructionInitializeAccount:
		if err := need(3); err != nil {
			return err
		}
		return InitializeAccountState(ctx, keys[0], keys[1], keys[2])
	case InstructionTransfer:
		if err := need(3); err != nil {
			return err
		}
		return transfer(ctx, keys[0], keys[1], keys[2], d.Amount)
	case InstructionMintTo:
		if err := need(3); err != nil {
			return err
		}
		return mintTo(ctx, keys[0], keys[1], keys[2], d.Amount)
	case InstructionBurn:
		if err := need(3); err != nil {
			return err
		}
		return burn(ctx, keys[0], keys[1], keys[2], d.Amount)
	}
	return fmt.Errorf("%w: %s", invoke.ErrInvalidInstructionData, d.Type)
}

func initializeMint(ctx *invoke.Context, key, authority solana.PublicKey, freeze *solana.PublicKey, decimals uint8) error {
	acct, err := ownedMutable(ctx, key)
	if err != nil {
		return err
	}
	if len(acct.Data) != MintSize {
		return fmt.Errorf("%w: mint %s has %d bytes", invoke.ErrInvalidAccountData, key, len(acct.Data))
	}
	var m Mint
	if err := record.Unpack(acct.Data, &m); err != nil {
		return fmt.Errorf("%w: %v", invoke.ErrInvalidAccountData, err)
	}
	if m.IsInitialized {
		return fmt.Errorf("%w: mint %s", invoke.ErrAlreadyInitialized, key)
	}
	if !ctx.Rent().IsExempt(acct.Lamports, len(acct.Data)) {
		return fmt.Errorf("%w: mint %s", ErrNotRentExempt, key)
	}

	m = Mint{MintAuthority: &authority, Decimals: decimals, IsInitialized: true, FreezeAuthority: freeze}
	acct.Data = record.Pack(m)
	return nil
}

// InitializeAccountState turns an allocated, token-owned account into an
// initialized token account. It is shared with the associated token account
// program, which creates and initializes in one instruction.
func InitializeAccountState(ctx *invoke.Context, key, mint, owner solana.PublicKey) error {
	acct, err := ownedMutable(ctx, key)
	if err != nil {
		return err
	}
	if len(acct.Data) != AccountSize {
		return fmt.Errorf("%w: token account %s has %d bytes", invoke.ErrInvalidAccountData, key, len(acct.Data))
	}
	var ta Account
	if err := record.Unpack(acct.Data, &ta); err != nil {
		return fmt.Errorf("%w: %v", invoke.ErrInvalidAccountData, err)
	}
	if ta.IsInitialized() {
		return fmt.Errorf("%w: token account %s", invoke.ErrAlreadyInitialized, key)
	}
	if !ctx.Rent().IsExempt(acct.Lamports, len(acct.Data)) {
		return fmt.Errorf("%w: token account %s", ErrNotRentExempt, key)
	}
	if _, err := loadMint(ctx, mint); err != nil {
		return err
	}

	ta = Account{Mint: mint, Owner: owner, State: AccountStateInitialized}
	acct.Data = record.Pack(ta)
	return nil
}

func mintTo(ctx *invoke.Context, mintKey, destKey, authority solana.PublicKey, amount uint64) error {
	dest, destAcct, err := loadAccountMutable(ctx, destKey)
	if err != nil {
		return err
	}
	if dest.IsFrozen() {
		return fmt.Errorf("%w: %s", ErrAccountFrozen, destKey)
	}
	if !dest.Mint.Equals(mintKey) {
		return fmt.Errorf("%w: %s holds %s", ErrMintMismatch, destKey, dest.Mint)
	}

	mintAcct, err := ownedMutable(ctx, mintKey)
	if err != nil {
		return err
	}
	m, err := loadMint(ctx, mintKey)
	if err != nil {
		return err
	}
	if m.MintAuthority == nil {
		return ErrFixedSupply
	}
	if err := checkOwner(ctx, *m.MintAuthority, authority); err != nil {
		return err
	}

	if m.Supply+amount < m.Supply || dest.Amount+amount < dest.Amount {
		return ErrOverflow
	}
	m.Supply += amount
	dest.Amount += amount
	mintAcct.Data = record.Pack(m)
	destAcct.Data = record.Pack(dest)
	return nil
}

func transfer(ctx *invoke.Context, srcKey, dstKey, owner solana.PublicKey, amount uint64) error {
	src, srcAcct, err := loadAccountMutable(ctx, srcKey)
	if err != nil {
		return err
	}
	dst, dstAcct, err := loadAccountMutable(ctx, dstKey)
	if err != nil {
		return err
	}
	if src.IsFrozen() || dst.IsFrozen() {
		return ErrAccountFrozen
	}
	if !src.Mint.Equals(dst.Mint) {
		return ErrMintMismatch
	}
	if src.Amount < amount {
		return fmt.Errorf("%w: %s holds %d, needs %d", ErrInsufficientFunds, srcKey, src.Amount, amount)
	}
	if err := checkOwner(ctx, src.Owner, owner); err != nil {
		return err
	}
	if srcKey.Equals(dstKey) {
		return nil
	}
	if dst.Amount+amount < dst.Amount {
		return ErrOverflow
	}
	src.Amount -= amount
	dst.Amount += amount
	srcAcct.Data = record.Pack(src)
	dstAcct.Data = record.Pack(dst)
	return nil
}

func burn(ctx *invoke.Context, acctKey, mintKey, owner solana.PublicKey, amount uint64) error {
	ta, acct, err := loadAccountMutable(ctx, acctKey)
	if err != nil {
		return err
	}
	if ta.IsFrozen() {
		return fmt.Errorf("%w: %s", ErrAccountFrozen, acctKey)
	}
	if !ta.Mint.Equals(mintKey) {
		return ErrMintMismatch
	}
	if err := checkOwner(ctx, ta.Owner, owner); err != nil {
		return err
	}
	if ta.Amount < amount {
		return fmt.Errorf("%w: %s holds %d, needs %d", ErrInsufficientFunds, acctKey, ta.Amount, amount)
	}
	mintAcct, err := ownedMutable(ctx, mintKey)
	if err != nil {
		return err
	}
	m, err := loadMint(ctx, mintKey)
	if err != nil {
		return err
	}
	ta.Amount -= amount
	m.Supply -= amount
	acct.Data = record.Pack(ta)
	mintAcct.Data = record.Pack(m)
	return nil
}

func checkOwner(ctx *invoke.Context, expected, actual solana.PublicKey) error {
	if !expected.Equals(actual) {
		return fmt.Errorf("%w: expected %s, got %s", ErrOwnerMismatch, expected, actual)
	}
	return ctx.RequireSigner(actual)
}

func ownedMutable(ctx *invoke.Context, key solana.PublicKey) (*account.Account, error) {
	acct, err := ctx.Mutable(key)
	if err != nil {
		return nil, err
	}
	if !acct.Owner.Equals(ProgramID) {
		return nil, fmt.Errorf("%w: %s is owned by %s", invoke.ErrIncorrectProgramID, key, acct.Owner)
	}
	return acct, nil
}

func loadMint(ctx *invoke.Context, key solana.PublicKey) (Mint, error) {
	var m Mint
	acct, err := ctx.Get(key)
	if err != nil {
		return m, err
	}
	if !acct.Owner.Equals(ProgramID) {
		return m, fmt.Errorf("%w: %s is owned by %s", invoke.ErrIncorrectProgramID, key, acct.Owner)
	}
	if err := record.Unpack(acct.Data, &m); err != nil {
		return m, fmt.Errorf("%w: %s: %v", ErrInvalidMint, key, err)
	}
	if !m.IsInitialized {
		return m, fmt.Errorf("%w: %s is not initialized", ErrInvalidMint, key)
	}
	return m, nil
}

func loadAccountMutable(ctx *invoke.Context, key solana.PublicKey) (Account, *account.Account, error) {
	var ta Account
	acct, err := ownedMutable(ctx, key)
	if err != nil {
		return ta, nil, err
	}
	if err := record.Unpack(acct.Data, &ta); err != nil {
		return ta, nil, fmt.Errorf("%w: %s: %v", invoke.ErrInvalidAccountData, key, err)
	}
	if !ta.IsInitialized() {
		return ta, nil, fmt.Errorf("%w: %s", invoke.ErrUninitializedAccount, key)
	}
	return ta, acct, nil
}
