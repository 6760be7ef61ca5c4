package system

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/LeJamon/programtest/internal/core/account"
	"github.com/LeJamon/programtest/internal/core/invoke"
)

// Program executes system instructions.
type Program struct{}

// New returns the system program.
func New() *Program { return &Program{} }

func (*Program) ID() solana.PublicKey { return ProgramID }

func (p *Program) Process(ctx *invoke.Context, ix invoke.Instruction) error {
	d, err := decode(ix.Data)
	if err != nil {
		return err
	}

	switch d.Type {
	case InstructionCreateAccount:
		from, to, err := twoAccounts(ix)
		if err != nil {
			return err
		}
		return createAccount(ctx, from, to, d.Lamports, d.Space, d.Owner)
	case InstructionTransfer:
		from, to, err := twoAccounts(ix)
		if err != nil {
			return err
		}
		return transfer(ctx, from, to, d.Lamports)
	case InstructionAssign:
		ref, err := ix.Account(0)
		if err != nil {
			return err
		}
		return assign(ctx, ref.Key, d.Owner)
	case InstructionAllocate:
		ref, err := ix.Account(0)
		if err != nil {
			return err
		}
		return allocate(ctx, ref.Key, d.Space)
	}
	return fmt.Errorf("%w: %s", invoke.ErrInvalidInstructionData, d.Type)
}

func twoAccounts(ix invoke.Instruction) (solana.PublicKey, solana.PublicKey, error) {
	from, err := ix.Account(0)
	if err != nil {
		return solana.PublicKey{}, solana.PublicKey{}, err
	}
	to, err := ix.Account(1)
	if err != nil {
		return solana.PublicKey{}, solana.PublicKey{}, err
	}
	return from.Key, to.Key, nil
}

// createAccount requires the funder to be a signer holding no data. The
// funder's owner is not checked: seeded keypairs own themselves.
func createAccount(ctx *invoke.Context, from, to solana.PublicKey, lamports, space uint64, owner solana.PublicKey) error {
	if err := ctx.RequireSigner(from); err != nil {
		return err
	}
	if err := ctx.RequireSigner(to); err != nil {
		return err
	}

	target, err := ctx.Mutable(to)
	if err != nil {
		return err
	}
	if target.Lamports > 0 || len(target.Data) > 0 || !systemOwned(target) {
		return fmt.Errorf("%w: %s", invoke.ErrAccountAlreadyInUse, to)
	}
	if space > account.MaxPermittedDataLength {
		return fmt.Errorf("%w: space %d exceeds %d", invoke.ErrInvalidArgument, space, account.MaxPermittedDataLength)
	}

	if err := debit(ctx, from, lamports); err != nil {
		return err
	}
	target.Lamports = lamports
	target.Data = make([]byte, space)
	target.Owner = owner
	return nil
}

func transfer(ctx *invoke.Context, from, to solana.PublicKey, lamports uint64) error {
	if err := ctx.RequireSigner(from); err != nil {
		return err
	}
	dst, err := ctx.Mutable(to)
	if err != nil {
		return err
	}
	if dst.Lamports+lamports < dst.Lamports {
		return invoke.ErrArithmeticOverflow
	}
	if err := debit(ctx, from, lamports); err != nil {
		return err
	}
	dst.Lamports += lamports
	return nil
}

func debit(ctx *invoke.Context, from solana.PublicKey, lamports uint64) error {
	src, err := ctx.Mutable(from)
	if err != nil {
		return err
	}
	if len(src.Data) > 0 {
		return fmt.Errorf("%w: funding account %s carries data", invoke.ErrInvalidArgument, from)
	}
	if src.Lamports < lamports {
		return fmt.Errorf("%w: %s has %d, needs %d", invoke.ErrInsufficientFunds, from, src.Lamports, lamports)
	}
	src.Lamports -= lamports
	return nil
}

func assign(ctx *invoke.Context, key, owner solana.PublicKey) error {
	if err := ctx.RequireSigner(key); err != nil {
		return err
	}
	acct, err := ctx.Mutable(key)
	if err != nil {
		return err
	}
	if acct.Owner.Equals(owner) {
		return nil
	}
	if !systemOwned(acct) {
		return fmt.Errorf("%w: %s is owned by %s", invoke.ErrIncorrectProgramID, key, acct.Owner)
	}
	acct.Owner = owner
	return nil
}

func allocate(ctx *invoke.Context, key solana.PublicKey, space uint64) error {
	if err := ctx.RequireSigner(key); err != nil {
		return err
	}
	acct, err := ctx.Mutable(key)
	if err != nil {
		return err
	}
	if len(acct.Data) > 0 || !systemOwned(acct) {
		return fmt.Errorf("%w: %s", invoke.ErrAccountAlreadyInUse, key)
	}
	if space > account.MaxPermittedDataLength {
		return fmt.Errorf("%w: space %d exceeds %d", invoke.ErrInvalidArgument, space, account.MaxPermittedDataLength)
	}
	acct.Data = make([]byte, space)
	return nil
}

func systemOwned(a *account.Account) bool {
	return a.Owner.IsZero() || a.Owner.Equals(ProgramID)
}
