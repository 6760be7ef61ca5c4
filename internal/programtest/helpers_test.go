package programtest

import (
	"context"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/programtest/internal/banks"
	"github.com/LeJamon/programtest/internal/banks/mock"
	"github.com/LeJamon/programtest/internal/core/bank"
	"github.com/LeJamon/programtest/internal/core/invoke"
	"github.com/LeJamon/programtest/internal/core/programs/ata"
	"github.com/LeJamon/programtest/internal/core/programs/system"
	"github.com/LeJamon/programtest/internal/core/programs/token"
	"github.com/LeJamon/programtest/internal/core/rent"
)

func TestTokenLifecycle(t *testing.T) {
	ctx := context.Background()
	pt := New()
	accounts := pt.GenerateAccounts(3)
	env := start(t, pt)

	mint := NewKeypair("lifecycle-mint")
	require.NoError(t, CreateTokenMint(ctx, env.Banks, mint, accounts[0].PublicKey(), nil, 2, env.Payer))

	m, err := GetAccountWithPackable[token.Mint](ctx, env.Banks, mint.PublicKey())
	require.NoError(t, err)
	assert.True(t, m.IsInitialized)
	assert.Equal(t, uint8(2), m.Decimals)
	assert.Equal(t, uint64(0), m.Supply)
	require.NotNil(t, m.MintAuthority)
	assert.Equal(t, accounts[0].PublicKey(), *m.MintAuthority)
	RequireRentExempt(t, env, mint.PublicKey())

	ataAddr, err := CreateAssociatedTokenAccount(ctx, env.Banks, accounts[1].PublicKey(), mint.PublicKey(), env.Payer)
	require.NoError(t, err)
	assert.Equal(t, ata.Derive(accounts[1].PublicKey(), mint.PublicKey()), ataAddr)

	require.NoError(t, MintTo(ctx, env.Banks, mint.PublicKey(), ataAddr, accounts[0], 500, env.Payer))

	ta, err := GetAccountWithPackable[token.Account](ctx, env.Banks, ataAddr)
	require.NoError(t, err)
	assert.Equal(t, uint64(500), ta.Amount)
	assert.Equal(t, mint.PublicKey(), ta.Mint)
	assert.Equal(t, accounts[1].PublicKey(), ta.Owner)

	other := NewKeypair("lifecycle-token")
	require.NoError(t, CreateTokenAccount(ctx, env.Banks, other, accounts[2].PublicKey(), mint.PublicKey(), env.Payer))
	require.NoError(t, TransferTokens(ctx, env.Banks, ataAddr, other.PublicKey(), accounts[1], 200, env.Payer))

	RequireTokenBalance(t, env, ataAddr, 300)
	RequireTokenBalance(t, env, other.PublicKey(), 200)

	m, err = GetAccountWithPackable[token.Mint](ctx, env.Banks, mint.PublicKey())
	require.NoError(t, err)
	assert.Equal(t, uint64(500), m.Supply)
}

func TestCreateHelpersTwice(t *testing.T) {
	mint := NewKeypair("seeded-mint").PublicKey()

	tests := []struct {
		name   string
		create func(ctx context.Context, env *Context, authority solana.PrivateKey) error
	}{
		{
			name: "account",
			create: func(ctx context.Context, env *Context, _ solana.PrivateKey) error {
				lamports := env.Genesis.Rent.MinimumBalance(8)
				return CreateAccount(ctx, env.Banks, env.Payer, NewKeypair("twice-account"), lamports, 8, system.ProgramID)
			},
		},
		{
			name: "token mint",
			create: func(ctx context.Context, env *Context, authority solana.PrivateKey) error {
				return CreateTokenMint(ctx, env.Banks, NewKeypair("twice-mint"), authority.PublicKey(), nil, 0, env.Payer)
			},
		},
		{
			name: "token account",
			create: func(ctx context.Context, env *Context, authority solana.PrivateKey) error {
				return CreateTokenAccount(ctx, env.Banks, NewKeypair("twice-token"), authority.PublicKey(), mint, env.Payer)
			},
		},
		{
			name: "associated token account",
			create: func(ctx context.Context, env *Context, authority solana.PrivateKey) error {
				_, err := CreateAssociatedTokenAccount(ctx, env.Banks, authority.PublicKey(), mint, env.Payer)
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			pt := New()
			authority := pt.GenerateAccounts(1)[0]
			pt.AddTokenMint(mint, nil, 0, 0, nil)
			env := start(t, pt)

			require.NoError(t, tt.create(ctx, env, authority))

			err := tt.create(ctx, env, authority)
			require.ErrorIs(t, err, invoke.ErrAccountAlreadyInUse)

			var ce *banks.ClientError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, "process transaction", ce.Op)

			var te *bank.TransactionError
			require.ErrorAs(t, err, &te)
			assert.Equal(t, 0, te.Index)
		})
	}
}

func TestMintToWrongAuthority(t *testing.T) {
	ctx := context.Background()
	pt := New()
	accounts := pt.GenerateAccounts(2)
	mint := NewKeypair("mint").PublicKey()
	authority := accounts[0].PublicKey()
	pt.AddTokenMint(mint, &authority, 0, 0, nil)
	dest := pt.AddAssociatedTokenAccount(accounts[1].PublicKey(), mint, 0)
	env := start(t, pt)

	err := MintTo(ctx, env.Banks, mint, dest, accounts[1], 10, env.Payer)
	require.ErrorIs(t, err, token.ErrOwnerMismatch)
	RequireTokenBalance(t, env, dest, 0)
}

func TestCreateAccountAndTransfer(t *testing.T) {
	ctx := context.Background()
	pt := New()
	accounts := pt.GenerateAccounts(2)
	env := start(t, pt)
	fee := env.Genesis.LamportsPerSignature

	owner := NewKeypair("program").PublicKey()
	created := NewKeypair("created")
	lamports := env.Genesis.Rent.MinimumBalance(10)
	AssertLamportsChange(t, env, env.Payer.PublicKey(), -int64(lamports+2*fee), func() {
		require.NoError(t, CreateAccount(ctx, env.Banks, env.Payer, created, lamports, 10, owner))
	})
	RequireAccountOwner(t, env, created.PublicKey(), owner)
	RequireLamports(t, env, created.PublicKey(), lamports)

	AssertLamportsChange(t, env, accounts[1].PublicKey(), 1_000, func() {
		require.NoError(t, Transfer(ctx, env.Banks, accounts[0], accounts[1].PublicKey(), 1_000))
	})
	RequireLamports(t, env, accounts[0].PublicKey(), DefaultAccountLamports-1_000-fee)

	fresh := NewKeypair("fresh").PublicKey()
	RequireAccountNotExists(t, env, fresh)
	require.NoError(t, Transfer(ctx, env.Banks, accounts[0], fresh, 5_000))
	RequireAccountExists(t, env, fresh)
	RequireAccountOwner(t, env, fresh, system.ProgramID)
}

func TestProcessRequiresSigners(t *testing.T) {
	pt := New()
	from := pt.GenerateAccounts(1)[0]
	env := start(t, pt)

	ix := system.Transfer(from.PublicKey(), env.Payer.PublicKey(), 1)
	err := env.Process(context.Background(), []solana.Instruction{ix})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sign transaction")

	require.NoError(t, env.Process(context.Background(), []solana.Instruction{ix}, from))
}

func TestProcessPropagatesClientErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	client := mock.NewMockClient(ctrl)
	payer := NewKeypair("payer")
	ix := system.Transfer(payer.PublicKey(), NewKeypair("to").PublicKey(), 1)
	boom := errors.New("connection reset")

	t.Run("blockhash", func(t *testing.T) {
		client.EXPECT().LatestBlockhash(gomock.Any()).Return(solana.Hash{}, boom)

		err := processInstructions(ctx, client, []solana.Instruction{ix}, payer)
		require.ErrorIs(t, err, boom)
		var ce *banks.ClientError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, "get latest blockhash", ce.Op)
	})

	t.Run("process", func(t *testing.T) {
		client.EXPECT().LatestBlockhash(gomock.Any()).Return(solana.Hash{1}, nil)
		client.EXPECT().ProcessTransaction(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, tx *solana.Transaction) error {
				assert.Equal(t, solana.Hash{1}, tx.Message.RecentBlockhash)
				assert.Len(t, tx.Signatures, 1)
				return bank.ErrBlockhashNotFound
			})

		err := processInstructions(ctx, client, []solana.Instruction{ix}, payer)
		require.ErrorIs(t, err, bank.ErrBlockhashNotFound)
		var ce *banks.ClientError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, "process transaction", ce.Op)
	})

	t.Run("rent", func(t *testing.T) {
		client.EXPECT().GetRent(gomock.Any()).Return(rent.Rent{}, boom)

		err := CreateTokenMint(ctx, client, NewKeypair("m"), payer.PublicKey(), nil, 0, payer)
		require.ErrorIs(t, err, boom)
	})

	t.Run("get account", func(t *testing.T) {
		addr := NewKeypair("acct").PublicKey()
		client.EXPECT().GetAccount(gomock.Any(), addr).Return(nil, boom)
		_, err := GetTokenBalance(ctx, client, addr)
		require.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, banks.ErrAccountNotFound)

		client.EXPECT().GetAccount(gomock.Any(), addr).Return(nil, nil)
		_, err = GetTokenBalance(ctx, client, addr)
		require.ErrorIs(t, err, banks.ErrAccountNotFound)
	})
}

func TestTransactionFromInstructions(t *testing.T) {
	pt := New()
	accounts := pt.GenerateAccounts(2)
	env := start(t, pt)
	ctx := context.Background()

	ix := system.Transfer(accounts[1].PublicKey(), accounts[0].PublicKey(), 10)
	tx, err := TransactionFromInstructions(ctx, env.Banks, []solana.Instruction{ix}, accounts[0], accounts[1])
	require.NoError(t, err)
	assert.Equal(t, accounts[0].PublicKey(), tx.Message.AccountKeys[0])
	assert.Len(t, tx.Signatures, 2)

	h, err := env.LatestBlockhash(ctx)
	require.NoError(t, err)
	assert.Equal(t, h, tx.Message.RecentBlockhash)

	require.NoError(t, env.Banks.ProcessTransaction(ctx, tx))
	err = env.Banks.ProcessTransaction(ctx, tx)
	require.ErrorIs(t, err, bank.ErrAlreadyProcessed)
}
