// Package programtest provides test infrastructure for programs running on a
// simulated ledger.
//
// # Overview
//
// The package provides:
//   - ProgramTest: a bootstrapper that seeds accounts before the ledger starts
//   - Context: the handle to a started ledger, with time warp controls
//   - Transaction helpers: assemble, sign and submit instructions
//   - Account helpers: fetch account data and decode it with a record codec
//   - Keypairs: deterministic keypairs derived from a name
//   - Assertions: test assertion helpers for common checks
//
// # Basic Usage
//
//	func TestMint(t *testing.T) {
//	    pt := programtest.New()
//	    accounts := pt.GenerateAccounts(2)
//
//	    ctx := context.Background()
//	    env, err := pt.Start(ctx)
//	    require.NoError(t, err)
//
//	    mint := programtest.NewKeypair("mint")
//	    err = programtest.CreateTokenMint(ctx, env.Banks, mint, accounts[0].PublicKey(), nil, 2, env.Payer)
//	    require.NoError(t, err)
//
//	    programtest.RequireAccountOwner(t, env, mint.PublicKey(), token.ProgramID)
//	}
//
// # Seeding
//
// Every Add* method of ProgramTest funnels through AddAccountWithData or
// AddAccount. Seeding mistakes are programming errors: the methods panic
// instead of returning errors, and they panic once the ledger has started.
//
// # Time warp
//
// Context.WarpToTimestamp projects the number of slots needed to reach a unix
// timestamp from the genesis slot duration and jumps there in one call.
// Context.WarpToTimestampIterative steps two slots at a time and gives up
// after a bounded number of steps.
package programtest
