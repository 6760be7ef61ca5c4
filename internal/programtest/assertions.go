package programtest

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/programtest/internal/core/account"
)

func fetch(t *testing.T, env *Context, addr solana.PublicKey) *account.Account {
	t.Helper()
	acct, err := env.Banks.GetAccount(context.Background(), addr)
	require.NoError(t, err, "Failed to fetch account %s", addr)
	return acct
}

// RequireAccountExists asserts that an account exists on the ledger.
func RequireAccountExists(t *testing.T, env *Context, addr solana.PublicKey) {
	t.Helper()
	require.NotNil(t, fetch(t, env, addr),
		"Expected account %s to exist, but it does not", addr)
}

// RequireAccountNotExists asserts that no account exists at addr.
func RequireAccountNotExists(t *testing.T, env *Context, addr solana.PublicKey) {
	t.Helper()
	require.Nil(t, fetch(t, env, addr),
		"Expected account %s to not exist, but it does", addr)
}

// RequireLamports asserts that an account holds exactly expected lamports.
func RequireLamports(t *testing.T, env *Context, addr solana.PublicKey, expected uint64) {
	t.Helper()
	acct := fetch(t, env, addr)
	require.NotNil(t, acct, "Account %s does not exist", addr)
	require.Equal(t, expected, acct.Lamports,
		"Account %s balance mismatch: expected %d lamports, got %d lamports",
		addr, expected, acct.Lamports)
}

// RequireAccountOwner asserts that an account is owned by owner.
func RequireAccountOwner(t *testing.T, env *Context, addr, owner solana.PublicKey) {
	t.Helper()
	acct := fetch(t, env, addr)
	require.NotNil(t, acct, "Account %s does not exist", addr)
	require.Equal(t, owner, acct.Owner,
		"Account %s owner mismatch: expected %s, got %s", addr, owner, acct.Owner)
}

// RequireRentExempt asserts that an account holds at least the rent-exempt
// minimum for its data length.
func RequireRentExempt(t *testing.T, env *Context, addr solana.PublicKey) {
	t.Helper()
	acct := fetch(t, env, addr)
	require.NotNil(t, acct, "Account %s does not exist", addr)
	minimum := env.Genesis.Rent.MinimumBalance(len(acct.Data))
	require.GreaterOrEqual(t, acct.Lamports, minimum,
		"Account %s is not rent exempt: holds %d lamports, needs %d", addr, acct.Lamports, minimum)
}

// RequireTokenBalance asserts that a token account holds expected tokens.
func RequireTokenBalance(t *testing.T, env *Context, addr solana.PublicKey, expected uint64) {
	t.Helper()
	actual, err := GetTokenBalance(context.Background(), env.Banks, addr)
	require.NoError(t, err, "Failed to read token account %s", addr)
	require.Equal(t, expected, actual,
		"Token account %s balance mismatch: expected %d, got %d", addr, expected, actual)
}

// RequireClockAtLeast asserts that the ledger clock reports a unix
// timestamp at or after ts.
func RequireClockAtLeast(t *testing.T, env *Context, ts int64) {
	t.Helper()
	clock, err := env.Banks.GetClock(context.Background())
	require.NoError(t, err, "Failed to read clock")
	require.GreaterOrEqual(t, clock.UnixTimestamp, ts,
		"Clock behind: expected unix timestamp >= %d, got %d", ts, clock.UnixTimestamp)
}

// AssertLamportsChange runs fn and asserts the balance of addr changed by
// expectedChange.
func AssertLamportsChange(t *testing.T, env *Context, addr solana.PublicKey, expectedChange int64, fn func()) {
	t.Helper()
	lamports := func() uint64 {
		if acct := fetch(t, env, addr); acct != nil {
			return acct.Lamports
		}
		return 0
	}
	before := lamports()
	fn()
	after := lamports()

	actualChange := int64(after) - int64(before)
	require.Equal(t, expectedChange, actualChange,
		"Account %s balance change mismatch: expected %d lamports change, got %d (before: %d, after: %d)",
		addr, expectedChange, actualChange, before, after)
}
