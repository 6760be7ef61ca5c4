// Package ata derives associated token account addresses and implements the
// program that creates them.
package ata

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/LeJamon/programtest/internal/codec/record"
	"github.com/LeJamon/programtest/internal/core/invoke"
	"github.com/LeJamon/programtest/internal/core/programs/system"
	"github.com/LeJamon/programtest/internal/core/programs/token"
)

// ProgramID is the address of the associated token account program.
var ProgramID = solana.SPLAssociatedTokenAccountProgramID

const (
	instructionCreate           byte = 0
	instructionCreateIdempotent byte = 1
)

// Derive returns the associated token account of owner for mint. It panics
// if no off-curve address exists, which does not happen in practice.
func Derive(owner, mint solana.PublicKey) solana.PublicKey {
	addr, _, err := solana.FindProgramAddress([][]byte{
		owner[:],
		token.ProgramID[:],
		mint[:],
	}, ProgramID)
	if err != nil {
		panic(fmt.Sprintf("ata: derive %s/%s: %v", owner, mint, err))
	}
	return addr
}

// Create builds the instruction creating the associated token account of
// owner for mint, funded by payer.
func Create(payer, owner, mint solana.PublicKey) solana.Instruction {
	return build(instructionCreate, payer, owner, mint)
}

// CreateIdempotent is Create that succeeds when the account already exists
// with the expected mint and owner.
func CreateIdempotent(payer, owner, mint solana.PublicKey) solana.Instruction {
	return build(instructionCreateIdempotent, payer, owner, mint)
}

func build(kind byte, payer, owner, mint solana.PublicKey) solana.Instruction {
	return solana.NewInstruction(ProgramID, solana.AccountMetaSlice{
		{PublicKey: payer, IsSigner: true, IsWritable: true},
		{PublicKey: Derive(owner, mint), IsWritable: true},
		{PublicKey: owner},
		{PublicKey: mint},
		{PublicKey: system.ProgramID},
		{PublicKey: token.ProgramID},
	}, []byte{kind})
}

// Program executes associated token account instructions.
type Program struct{}

// New returns the associated token account program.
func New() *Program { return &Program{} }

func (*Program) ID() solana.PublicKey { return ProgramID }

func (p *Program) Process(ctx *invoke.Context, ix invoke.Instruction) error {
	idempotent := false
	switch {
	case len(ix.Data) == 0 || (len(ix.Data) == 1 && ix.Data[0] == instructionCreate):
	case len(ix.Data) == 1 && ix.Data[0] == instructionCreateIdempotent:
		idempotent = true
	default:
		return fmt.Errorf("%w: associated token account instruction %x", invoke.ErrInvalidInstructionData, ix.Data)
	}
	if len(ix.Accounts) < 4 {
		return fmt.Errorf("%w: need 4 accounts, got %d", invoke.ErrNotEnoughAccountKeys, len(ix.Accounts))
	}
	payer, addr, owner, mint := ix.Accounts[0].Key, ix.Accounts[1].Key, ix.Accounts[2].Key, ix.Accounts[3].Key

	if expected := Derive(owner, mint); !expected.Equals(addr) {
		return fmt.Errorf("%w: %s is not the associated account of %s for %s", invoke.ErrInvalidSeeds, addr, owner, mint)
	}

	existing, err := ctx.Get(addr)
	if err != nil {
		return err
	}
	if idempotent && existing.Owner.Equals(token.ProgramID) {
		var ta token.Account
		if err := record.Unpack(existing.Data, &ta); err == nil && ta.Mint.Equals(mint) && ta.Owner.Equals(owner) {
			return nil
		}
		return fmt.Errorf("%w: %s", invoke.ErrInvalidAccountData, addr)
	}

	if err := fund(ctx, payer, addr); err != nil {
		return err
	}
	return token.InitializeAccountState(ctx, addr, mint, owner)
}

// fund tops the derived address up to the rent-exempt minimum, then
// allocates and assigns it to the token program.
func fund(ctx *invoke.Context, payer, addr solana.PublicKey) error {
	if err := ctx.RequireSigner(payer); err != nil {
		return err
	}
	target, err := ctx.Mutable(addr)
	if err != nil {
		return err
	}
	if len(target.Data) > 0 || !(target.Owner.IsZero() || target.Owner.Equals(system.ProgramID)) {
		return fmt.Errorf("%w: %s", invoke.ErrAccountAlreadyInUse, addr)
	}

	required := ctx.Rent().MinimumBalance(token.AccountSize)
	if target.Lamports < required {
		src, err := ctx.Mutable(payer)
		if err != nil {
			return err
		}
		need := required - target.Lamports
		if src.Lamports < need {
			return fmt.Errorf("%w: payer %s has %d, needs %d", invoke.ErrInsufficientFunds, payer, src.Lamports, need)
		}
		src.Lamports -= need
		target.Lamports = required
	}

	target.Data = make([]byte, token.AccountSize)
	target.Owner = token.ProgramID
	return nil
}
