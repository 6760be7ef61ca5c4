package programtest

import (
	"context"

	"github.com/gagliardetto/solana-go"

	"github.com/LeJamon/programtest/internal/banks"
	"github.com/LeJamon/programtest/internal/core/genesis"
)

// Context is a started ledger as seen by a test: a client, the clock
// controls, a funded payer and the genesis configuration the ledger runs
// with. It must not be shared between goroutines without external
// synchronization.
type Context struct {
	Banks   banks.Client
	Warper  banks.Warper
	Payer   solana.PrivateKey
	Genesis genesis.Config

	closer func() error
}

// NewContext wraps an already running ledger, for example one reached over
// JSON-RPC.
func NewContext(client banks.Client, warper banks.Warper, payer solana.PrivateKey, cfg genesis.Config) *Context {
	return &Context{Banks: client, Warper: warper, Payer: payer, Genesis: cfg}
}

// LatestBlockhash fetches the blockhash new transactions should use.
func (c *Context) LatestBlockhash(ctx context.Context) (solana.Hash, error) {
	h, err := c.Banks.LatestBlockhash(ctx)
	return h, banks.Wrap("get latest blockhash", err)
}

// Process assembles ixs into a transaction paid by the context payer, signs
// it with the payer and signers, and submits it.
func (c *Context) Process(ctx context.Context, ixs []solana.Instruction, signers ...solana.PrivateKey) error {
	return processInstructions(ctx, c.Banks, ixs, c.Payer, signers...)
}

// Close releases the ledger if the context owns it.
func (c *Context) Close() error {
	if c.closer == nil {
		return nil
	}
	closer := c.closer
	c.closer = nil
	return closer()
}
