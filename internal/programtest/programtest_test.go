package programtest

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/programtest/internal/banks"
	"github.com/LeJamon/programtest/internal/codec/record"
	"github.com/LeJamon/programtest/internal/core/account"
	"github.com/LeJamon/programtest/internal/core/bank"
	"github.com/LeJamon/programtest/internal/core/genesis"
	"github.com/LeJamon/programtest/internal/core/programs/ata"
	"github.com/LeJamon/programtest/internal/core/programs/token"
	"github.com/LeJamon/programtest/internal/storage/accountstore"
)

type vault struct {
	Authority solana.PublicKey
	Balance   uint64
	Bump      uint8
}

func (vault) Discriminator() record.Discriminator { return record.AccountDiscriminator("Vault") }

type escrow struct {
	Maker  solana.PublicKey
	Amount uint64
	Bump   uint8
}

func (escrow) Discriminator() record.Discriminator { return record.AccountDiscriminator("Escrow") }

type gameConfig struct {
	Name    string
	Rounds  uint32
	Enabled bool
}

func start(t *testing.T, pt *ProgramTest) *Context {
	t.Helper()
	env, err := pt.Start(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = env.Close() })
	return env
}

func TestGenerateAccounts(t *testing.T) {
	pt := New()
	keys := pt.GenerateAccounts(3)
	require.Len(t, keys, 3)
	env := start(t, pt)

	for _, k := range keys {
		RequireLamports(t, env, k.PublicKey(), DefaultAccountLamports)
		RequireAccountOwner(t, env, k.PublicKey(), k.PublicKey())
	}
	assert.NotEqual(t, keys[0].PublicKey(), keys[1].PublicKey())
	assert.Equal(t, uint64(1_000_000_000_000), DefaultAccountLamports)
}

func TestAddAccountWithLamports(t *testing.T) {
	pt := New()
	addr := NewKeypair("funded").PublicKey()
	owner := NewKeypair("owner").PublicKey()
	pt.AddAccountWithLamports(addr, owner, 12345)
	env := start(t, pt)

	acct, err := GetAccount(context.Background(), env.Banks, addr)
	require.NoError(t, err)
	assert.Equal(t, uint64(12345), acct.Lamports)
	assert.Equal(t, owner, acct.Owner)
	assert.Empty(t, acct.Data)
	assert.False(t, acct.Executable)
}

func TestAddAccountWithDataIsRentExempt(t *testing.T) {
	pt := New()
	owner := NewKeypair("program").PublicKey()
	sizes := []int{0, 1, 82, 165, 1024}
	addrs := make([]solana.PublicKey, len(sizes))
	for i, n := range sizes {
		addrs[i] = NewRandomKeypair().PublicKey()
		pt.AddAccountWithData(addrs[i], owner, make([]byte, n), i == 0)
	}
	env := start(t, pt)

	for i, n := range sizes {
		acct, err := GetAccount(context.Background(), env.Banks, addrs[i])
		require.NoError(t, err)
		assert.Equal(t, env.Genesis.Rent.MinimumBalance(n), acct.Lamports, "size %d", n)
		assert.Len(t, acct.Data, n)
		assert.Equal(t, i == 0, acct.Executable)
		RequireRentExempt(t, env, addrs[i])
	}
}

func TestSeededRecordsRoundTrip(t *testing.T) {
	ctx := context.Background()
	pt := New()
	owner := NewKeypair("program").PublicKey()
	authority := NewKeypair("authority").PublicKey()

	mintAddr := NewKeypair("mint").PublicKey()
	pt.AddTokenMint(mintAddr, &authority, 1_000, 6, nil)

	tokenAddr := NewKeypair("token").PublicKey()
	pt.AddTokenAccount(tokenAddr, mintAddr, authority, 250)

	borshAddr := NewKeypair("config").PublicKey()
	cfg := gameConfig{Name: "blitz", Rounds: 12, Enabled: true}
	pt.AddAccountWithBorsh(borshAddr, owner, cfg)

	anchorAddr := NewKeypair("vault").PublicKey()
	v := vault{Authority: authority, Balance: 99, Bump: 254}
	pt.AddAccountWithAnchor(anchorAddr, owner, v, false)

	env := start(t, pt)

	m, err := GetAccountWithPackable[token.Mint](ctx, env.Banks, mintAddr)
	require.NoError(t, err)
	assert.Equal(t, token.Mint{MintAuthority: &authority, Supply: 1_000, Decimals: 6, IsInitialized: true}, m)
	RequireAccountOwner(t, env, mintAddr, token.ProgramID)

	ta, err := GetAccountWithPackable[token.Account](ctx, env.Banks, tokenAddr)
	require.NoError(t, err)
	assert.Equal(t, mintAddr, ta.Mint)
	assert.Equal(t, authority, ta.Owner)
	assert.Equal(t, uint64(250), ta.Amount)
	RequireTokenBalance(t, env, tokenAddr, 250)

	gotCfg, err := GetAccountWithBorsh[gameConfig](ctx, env.Banks, borshAddr)
	require.NoError(t, err)
	assert.Equal(t, cfg, gotCfg)

	gotVault, err := GetAccountWithAnchor[vault](ctx, env.Banks, anchorAddr)
	require.NoError(t, err)
	assert.Equal(t, v, gotVault)

	for _, addr := range []solana.PublicKey{mintAddr, tokenAddr, borshAddr, anchorAddr} {
		RequireRentExempt(t, env, addr)
	}
}

func TestAnchorDiscriminatorMismatch(t *testing.T) {
	pt := New()
	addr := NewKeypair("vault").PublicKey()
	pt.AddAccountWithAnchor(addr, NewKeypair("program").PublicKey(), vault{Balance: 1}, false)
	env := start(t, pt)

	// escrow has the same layout as vault, only the discriminator differs.
	_, err := GetAccountWithAnchor[escrow](context.Background(), env.Banks, addr)
	require.ErrorIs(t, err, banks.ErrDeserializeFailed)
	require.ErrorIs(t, err, record.ErrUnexpectedDiscriminator)
}

func TestGetAccountErrors(t *testing.T) {
	ctx := context.Background()
	pt := New()
	addr := NewKeypair("config").PublicKey()
	pt.AddAccountWithBorsh(addr, NewKeypair("program").PublicKey(), gameConfig{Name: "x"})
	env := start(t, pt)

	_, err := GetAccountWithBorsh[gameConfig](ctx, env.Banks, NewKeypair("nobody").PublicKey())
	require.ErrorIs(t, err, banks.ErrAccountNotFound)
	assert.NotErrorIs(t, err, banks.ErrDeserializeFailed)

	_, err = GetAccountWithPackable[token.Mint](ctx, env.Banks, addr)
	require.ErrorIs(t, err, banks.ErrDeserializeFailed)
	require.ErrorIs(t, err, record.ErrDeserialize)
	assert.NotErrorIs(t, err, banks.ErrAccountNotFound)
}

func TestAddAssociatedTokenAccount(t *testing.T) {
	pt := New()
	accounts := pt.GenerateAccounts(3)
	authority := accounts[0].PublicKey()
	mint := NewKeypair("mint").PublicKey()
	pt.AddTokenMint(mint, &authority, 500, 2, nil)

	addr := pt.AddAssociatedTokenAccount(accounts[1].PublicKey(), mint, 500)
	assert.Equal(t, ata.Derive(accounts[1].PublicKey(), mint), addr)

	env := start(t, pt)
	ta, err := GetAccountWithPackable[token.Account](context.Background(), env.Banks, addr)
	require.NoError(t, err)
	assert.Equal(t, uint64(500), ta.Amount)
	assert.Equal(t, mint, ta.Mint)
	assert.Equal(t, accounts[1].PublicKey(), ta.Owner)
}

func TestSeedingPanics(t *testing.T) {
	addr := NewKeypair("dup").PublicKey()

	t.Run("duplicate address", func(t *testing.T) {
		pt := New()
		pt.AddAccountWithLamports(addr, addr, 1)
		require.Panics(t, func() { pt.AddAccountWithLamports(addr, addr, 2) })
	})

	t.Run("oversized data", func(t *testing.T) {
		pt := New()
		require.Panics(t, func() {
			pt.AddAccountWithData(addr, addr, make([]byte, account.MaxPermittedDataLength+1), false)
		})
	})

	t.Run("after start", func(t *testing.T) {
		pt := New()
		start(t, pt)
		require.Panics(t, func() { pt.AddAccountWithLamports(addr, addr, 1) })
		require.Panics(t, func() { pt.GenerateAccounts(1) })
		require.Panics(t, func() { pt.SetGenesis(genesis.DefaultConfig()) })
	})

	t.Run("negative count", func(t *testing.T) {
		require.Panics(t, func() { New().GenerateAccounts(-1) })
	})

	t.Run("genesis after seeding", func(t *testing.T) {
		pt := New()
		pt.AddAccountWithData(addr, addr, []byte{1, 2, 3}, false)
		cfg := genesis.DefaultConfig()
		cfg.Rent.LamportsPerByteYear = 1
		require.Panics(t, func() { pt.SetGenesis(cfg) })
		assert.Equal(t, genesis.DefaultConfig().Rent, pt.Genesis().Rent)
	})
}

func TestSetGenesisBeforeSeeding(t *testing.T) {
	cfg := genesis.DefaultConfig()
	cfg.Rent.LamportsPerByteYear = 1

	pt := New()
	pt.SetGenesis(cfg)
	addr := NewKeypair("cheap").PublicKey()
	pt.AddAccountWithData(addr, addr, []byte{1, 2, 3}, false)
	env := start(t, pt)

	r, err := env.Banks.GetRent(context.Background())
	require.NoError(t, err)
	assert.Equal(t, cfg.Rent, r)
	RequireLamports(t, env, addr, r.MinimumBalance(3))
	RequireRentExempt(t, env, addr)
}

func TestFailedStartLeavesSeedsUntouched(t *testing.T) {
	store := accountstore.NewMemory()
	require.NoError(t, store.Close())

	pt := New(WithStore(store))
	addr := NewKeypair("seeded").PublicKey()
	pt.AddAccountWithLamports(addr, addr, 1)

	for range 2 {
		_, err := pt.Start(context.Background())
		require.ErrorIs(t, err, accountstore.ErrClosed)
		assert.Equal(t, []solana.PublicKey{addr}, pt.order)
		assert.Len(t, pt.accounts, 1)
		assert.False(t, pt.started)
	}
}

func TestStartTwice(t *testing.T) {
	pt := New()
	start(t, pt)
	_, err := pt.Start(context.Background())
	require.ErrorIs(t, err, bank.ErrAlreadyStarted)
}

func TestStartWithInvalidGenesis(t *testing.T) {
	cfg := genesis.DefaultConfig()
	cfg.SlotsPerEpoch = 0
	_, err := New(WithGenesis(cfg)).Start(context.Background())
	require.ErrorIs(t, err, genesis.ErrInvalidConfig)
}

func TestStartOnPebbleStore(t *testing.T) {
	store, err := accountstore.Open(accountstore.Config{Backend: "pebble", Path: t.TempDir(), CacheSize: 8, Compress: true})
	require.NoError(t, err)

	pt := New(WithStore(store))
	big := NewKeypair("big").PublicKey()
	pt.AddAccountWithData(big, NewKeypair("program").PublicKey(), make([]byte, 64*1024), false)
	env := start(t, pt)

	RequireRentExempt(t, env, big)
	RequireLamports(t, env, env.Payer.PublicKey(), DefaultAccountLamports)
}

func TestNewKeypairIsDeterministic(t *testing.T) {
	assert.Equal(t, NewKeypair("alice"), NewKeypair("alice"))
	assert.NotEqual(t, NewKeypair("alice").PublicKey(), NewKeypair("bob").PublicKey())
	assert.NotEqual(t, NewRandomKeypair().PublicKey(), NewRandomKeypair().PublicKey())
}
