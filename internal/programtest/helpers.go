package programtest

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/LeJamon/programtest/internal/banks"
	"github.com/LeJamon/programtest/internal/codec/record"
	"github.com/LeJamon/programtest/internal/core/account"
	"github.com/LeJamon/programtest/internal/core/programs/ata"
	"github.com/LeJamon/programtest/internal/core/programs/system"
	"github.com/LeJamon/programtest/internal/core/programs/token"
)

// TransactionFromInstructions fetches the latest blockhash and returns ixs
// as a transaction paid by payer and signed by payer and signers. Every
// account an instruction marks as signer must be among them.
func TransactionFromInstructions(ctx context.Context, c banks.Client, ixs []solana.Instruction, payer solana.PrivateKey, signers ...solana.PrivateKey) (*solana.Transaction, error) {
	blockhash, err := c.LatestBlockhash(ctx)
	if err != nil {
		return nil, banks.Wrap("get latest blockhash", err)
	}

	tx, err := solana.NewTransaction(ixs, blockhash, solana.TransactionPayer(payer.PublicKey()))
	if err != nil {
		return nil, fmt.Errorf("build transaction: %w", err)
	}

	keys := append(signerSet{payer}, signers...)
	if _, err := tx.Sign(keys.get); err != nil {
		return nil, fmt.Errorf("sign transaction: %w", err)
	}
	return tx, nil
}

func processInstructions(ctx context.Context, c banks.Client, ixs []solana.Instruction, payer solana.PrivateKey, signers ...solana.PrivateKey) error {
	tx, err := TransactionFromInstructions(ctx, c, ixs, payer, signers...)
	if err != nil {
		return err
	}
	return banks.Wrap("process transaction", c.ProcessTransaction(ctx, tx))
}

// GetAccount fetches the account at addr, failing with
// banks.ErrAccountNotFound when it does not exist.
func GetAccount(ctx context.Context, c banks.Client, addr solana.PublicKey) (*account.Account, error) {
	acct, err := c.GetAccount(ctx, addr)
	if err != nil {
		return nil, banks.Wrap("get account", err)
	}
	if acct == nil {
		return nil, fmt.Errorf("%w: %s", banks.ErrAccountNotFound, addr)
	}
	return acct, nil
}

func getAccountWith[T any](ctx context.Context, c banks.Client, addr solana.PublicKey, codec record.Codec) (T, error) {
	var zero T
	acct, err := GetAccount(ctx, c, addr)
	if err != nil {
		return zero, err
	}
	v, err := record.Decode[T](codec, acct.Data)
	if err != nil {
		return zero, fmt.Errorf("%w: %s as %s: %w", banks.ErrDeserializeFailed, addr, codec.Name(), err)
	}
	return v, nil
}

// GetAccountWithBorsh fetches the account at addr and decodes its data as a
// Borsh-encoded T.
func GetAccountWithBorsh[T any](ctx context.Context, c banks.Client, addr solana.PublicKey) (T, error) {
	return getAccountWith[T](ctx, c, addr, record.Borsh)
}

// GetAccountWithAnchor fetches the account at addr and decodes its data as a
// discriminator-tagged T.
func GetAccountWithAnchor[T record.Discriminated](ctx context.Context, c banks.Client, addr solana.PublicKey) (T, error) {
	return getAccountWith[T](ctx, c, addr, record.Anchor)
}

// GetAccountWithPackable fetches the account at addr and decodes its data as
// a fixed-layout T.
func GetAccountWithPackable[T any, P interface {
	*T
	record.Unpacker
}](ctx context.Context, c banks.Client, addr solana.PublicKey) (T, error) {
	return getAccountWith[T](ctx, c, addr, record.Packed)
}

// GetTokenBalance returns the amount held by the token account at addr.
func GetTokenBalance(ctx context.Context, c banks.Client, addr solana.PublicKey) (uint64, error) {
	ta, err := GetAccountWithPackable[token.Account](ctx, c, addr)
	if err != nil {
		return 0, err
	}
	return ta.Amount, nil
}

// CreateAccount creates the account to, funded by from with lamports,
// holding space bytes and owned by owner.
func CreateAccount(ctx context.Context, c banks.Client, from, to solana.PrivateKey, lamports, space uint64, owner solana.PublicKey) error {
	ix := system.CreateAccount(from.PublicKey(), to.PublicKey(), lamports, space, owner)
	return processInstructions(ctx, c, []solana.Instruction{ix}, from, to)
}

// Transfer moves lamports from from to to.
func Transfer(ctx context.Context, c banks.Client, from solana.PrivateKey, to solana.PublicKey, lamports uint64) error {
	ix := system.Transfer(from.PublicKey(), to, lamports)
	return processInstructions(ctx, c, []solana.Instruction{ix}, from)
}

// CreateTokenMint creates and initializes mint. Creation and initialization
// are separate transactions; the second fetches its own blockhash.
func CreateTokenMint(ctx context.Context, c banks.Client, mint solana.PrivateKey, authority solana.PublicKey, freezeAuthority *solana.PublicKey, decimals uint8, payer solana.PrivateKey) error {
	r, err := c.GetRent(ctx)
	if err != nil {
		return banks.Wrap("get rent", err)
	}

	create := system.CreateAccount(payer.PublicKey(), mint.PublicKey(), r.MinimumBalance(token.MintSize), token.MintSize, token.ProgramID)
	if err := processInstructions(ctx, c, []solana.Instruction{create}, payer, mint); err != nil {
		return err
	}

	initialize := token.InitializeMint(mint.PublicKey(), authority, freezeAuthority, decimals)
	return processInstructions(ctx, c, []solana.Instruction{initialize}, payer)
}

// CreateTokenAccount creates and initializes acct to hold tokens of mint on
// behalf of authority.
func CreateTokenAccount(ctx context.Context, c banks.Client, acct solana.PrivateKey, authority, mint solana.PublicKey, payer solana.PrivateKey) error {
	r, err := c.GetRent(ctx)
	if err != nil {
		return banks.Wrap("get rent", err)
	}

	create := system.CreateAccount(payer.PublicKey(), acct.PublicKey(), r.MinimumBalance(token.AccountSize), token.AccountSize, token.ProgramID)
	if err := processInstructions(ctx, c, []solana.Instruction{create}, payer, acct); err != nil {
		return err
	}

	initialize := token.InitializeAccount(acct.PublicKey(), mint, authority)
	return processInstructions(ctx, c, []solana.Instruction{initialize}, payer)
}

// CreateAssociatedTokenAccount creates the associated token account of
// authority for mint and returns its address.
func CreateAssociatedTokenAccount(ctx context.Context, c banks.Client, authority, mint solana.PublicKey, payer solana.PrivateKey) (solana.PublicKey, error) {
	ix := ata.Create(payer.PublicKey(), authority, mint)
	if err := processInstructions(ctx, c, []solana.Instruction{ix}, payer); err != nil {
		return solana.PublicKey{}, err
	}
	return ata.Derive(authority, mint), nil
}

// MintTo mints amount tokens of mint into dest, signed by the mint
// authority.
func MintTo(ctx context.Context, c banks.Client, mint, dest solana.PublicKey, authority solana.PrivateKey, amount uint64, payer solana.PrivateKey) error {
	ix := token.MintTo(mint, dest, authority.PublicKey(), amount)
	return processInstructions(ctx, c, []solana.Instruction{ix}, payer, authority)
}

// TransferTokens moves amount tokens between two token accounts of the same
// mint.
func TransferTokens(ctx context.Context, c banks.Client, source, dest solana.PublicKey, owner solana.PrivateKey, amount uint64, payer solana.PrivateKey) error {
	ix := token.Transfer(source, dest, owner.PublicKey(), amount)
	return processInstructions(ctx, c, []solana.Instruction{ix}, payer, owner)
}
