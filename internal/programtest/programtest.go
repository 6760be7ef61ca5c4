package programtest

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"

	"github.com/LeJamon/programtest/internal/banks"
	"github.com/LeJamon/programtest/internal/codec/record"
	"github.com/LeJamon/programtest/internal/core/account"
	"github.com/LeJamon/programtest/internal/core/bank"
	"github.com/LeJamon/programtest/internal/core/genesis"
	"github.com/LeJamon/programtest/internal/core/invoke"
	"github.com/LeJamon/programtest/internal/core/programs/ata"
	"github.com/LeJamon/programtest/internal/core/programs/token"
	"github.com/LeJamon/programtest/internal/storage/accountstore"
)

// DefaultAccountLamports is the balance GenerateAccounts gives each keypair:
// 1000 SOL.
const DefaultAccountLamports = 1_000 * solana.LAMPORTS_PER_SOL

// Option configures a ProgramTest.
type Option func(*ProgramTest)

// WithGenesis replaces the default genesis configuration.
func WithGenesis(cfg genesis.Config) Option {
	return func(p *ProgramTest) { p.cfg = cfg }
}

// WithStore sets the account store the ledger is built on.
func WithStore(s accountstore.Store) Option {
	return func(p *ProgramTest) { p.store = s }
}

// WithLogger sets the logger handed to the ledger.
func WithLogger(l zerolog.Logger) Option {
	return func(p *ProgramTest) { p.log = l }
}

// ProgramTest collects the initial state of a ledger. Nothing reaches the
// ledger until Start.
type ProgramTest struct {
	cfg      genesis.Config
	store    accountstore.Store
	log      zerolog.Logger
	programs []invoke.Program

	accounts map[solana.PublicKey]*account.Account
	order    []solana.PublicKey
	started  bool
}

// New returns an empty bootstrapper with the default genesis configuration.
func New(opts ...Option) *ProgramTest {
	p := &ProgramTest{
		cfg:      genesis.DefaultConfig(),
		log:      zerolog.Nop(),
		accounts: make(map[solana.PublicKey]*account.Account),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Genesis returns the configuration the ledger will start with.
func (p *ProgramTest) Genesis() genesis.Config { return p.cfg }

// SetGenesis replaces the genesis configuration. It must be called before
// any account is seeded, since rent-exempt balances are fixed when an
// account is added.
func (p *ProgramTest) SetGenesis(cfg genesis.Config) {
	p.mustNotBeStarted("set genesis")
	if len(p.accounts) > 0 {
		panic(fmt.Sprintf("programtest: set genesis: %d accounts already seeded", len(p.accounts)))
	}
	p.cfg = cfg
}

// AddProgram registers an additional builtin program.
func (p *ProgramTest) AddProgram(program invoke.Program) {
	p.mustNotBeStarted("add program")
	p.programs = append(p.programs, program)
}

// GenerateAccounts creates n keypairs, each funded with
// DefaultAccountLamports and owned by itself, in generation order.
func (p *ProgramTest) GenerateAccounts(n int) []solana.PrivateKey {
	if n < 0 {
		panic(fmt.Sprintf("programtest: cannot generate %d accounts", n))
	}
	keys := make([]solana.PrivateKey, 0, n)
	for range n {
		key := NewRandomKeypair()
		p.AddAccountWithLamports(key.PublicKey(), key.PublicKey(), DefaultAccountLamports)
		keys = append(keys, key)
	}
	return keys
}

// AddAccount seeds a raw account record.
func (p *ProgramTest) AddAccount(addr solana.PublicKey, acct account.Account) {
	p.mustNotBeStarted("add account " + addr.String())
	if _, ok := p.accounts[addr]; ok {
		panic(fmt.Sprintf("programtest: account %s already added", addr))
	}
	if len(acct.Data) > account.MaxPermittedDataLength {
		panic(fmt.Sprintf("programtest: account %s data is %d bytes, limit is %d",
			addr, len(acct.Data), account.MaxPermittedDataLength))
	}
	p.accounts[addr] = acct.Clone()
	p.order = append(p.order, addr)
}

// AddAccountWithLamports seeds an account holding lamports and no data.
func (p *ProgramTest) AddAccountWithLamports(addr, owner solana.PublicKey, lamports uint64) {
	p.AddAccount(addr, account.Account{Owner: owner, Lamports: lamports})
}

// AddAccountWithData seeds an account holding data, funded with exactly the
// rent-exempt minimum for its length.
func (p *ProgramTest) AddAccountWithData(addr, owner solana.PublicKey, data []byte, executable bool) {
	p.AddAccount(addr, account.Account{
		Owner:      owner,
		Lamports:   p.cfg.Rent.MinimumBalance(len(data)),
		Data:       data,
		Executable: executable,
	})
}

// AddAccountWithPackable seeds an account holding a fixed-layout record.
func (p *ProgramTest) AddAccountWithPackable(addr, owner solana.PublicKey, v record.Packer) {
	p.AddAccountWithData(addr, owner, record.Pack(v), false)
}

// AddAccountWithBorsh seeds an account holding a Borsh-encoded value.
func (p *ProgramTest) AddAccountWithBorsh(addr, owner solana.PublicKey, v any) {
	p.AddAccountWithData(addr, owner, record.MustEncode(record.Borsh, v), false)
}

// AddAccountWithAnchor seeds an account holding a discriminator-tagged,
// Borsh-encoded value.
func (p *ProgramTest) AddAccountWithAnchor(addr, owner solana.PublicKey, v record.Discriminated, executable bool) {
	p.AddAccountWithData(addr, owner, record.MustEncode(record.Anchor, v), executable)
}

// AddTokenMint seeds an initialized mint.
func (p *ProgramTest) AddTokenMint(addr solana.PublicKey, mintAuthority *solana.PublicKey, supply uint64, decimals uint8, freezeAuthority *solana.PublicKey) {
	p.AddAccountWithPackable(addr, token.ProgramID, token.Mint{
		MintAuthority:   mintAuthority,
		Supply:          supply,
		Decimals:        decimals,
		IsInitialized:   true,
		FreezeAuthority: freezeAuthority,
	})
}

// AddTokenAccount seeds an initialized token account.
func (p *ProgramTest) AddTokenAccount(addr, mint, owner solana.PublicKey, amount uint64) {
	p.AddAccountWithPackable(addr, token.ProgramID, token.Account{
		Mint:   mint,
		Owner:  owner,
		Amount: amount,
		State:  token.AccountStateInitialized,
	})
}

// AddAssociatedTokenAccount seeds the associated token account of owner for
// mint and returns its address.
func (p *ProgramTest) AddAssociatedTokenAccount(owner, mint solana.PublicKey, amount uint64) solana.PublicKey {
	addr := ata.Derive(owner, mint)
	p.AddTokenAccount(addr, mint, owner, amount)
	return addr
}

// Start builds the ledger from the seeded state, funds a fresh payer and
// returns the handle tests drive the ledger through. Start may be called
// once.
func (p *ProgramTest) Start(ctx context.Context) (*Context, error) {
	if p.started {
		return nil, bank.ErrAlreadyStarted
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b, err := bank.New(p.cfg, p.store, bank.WithLogger(p.log), bank.WithPrograms(p.programs...))
	if err != nil {
		return nil, fmt.Errorf("create bank: %w", err)
	}

	for _, addr := range p.order {
		if err := b.InsertAccount(addr, p.accounts[addr]); err != nil {
			_ = b.Close()
			return nil, fmt.Errorf("seed %s: %w", addr, err)
		}
	}
	// The payer goes straight to the bank so a failed Start leaves the
	// seeded state as the caller built it.
	payer := NewRandomKeypair()
	if err := b.InsertAccount(payer.PublicKey(), &account.Account{
		Owner:    payer.PublicKey(),
		Lamports: DefaultAccountLamports,
	}); err != nil {
		_ = b.Close()
		return nil, fmt.Errorf("fund payer: %w", err)
	}
	if err := b.Start(); err != nil {
		_ = b.Close()
		return nil, fmt.Errorf("start bank: %w", err)
	}
	p.started = true

	p.log.Info().
		Str("component", "programtest").
		Int("accounts", len(p.order)+1).
		Str("payer", payer.PublicKey().String()).
		Msg("ledger started")

	local := banks.NewLocal(b)
	return &Context{
		Banks:   local,
		Warper:  local,
		Payer:   payer,
		Genesis: p.cfg,
		closer:  b.Close,
	}, nil
}

func (p *ProgramTest) mustNotBeStarted(op string) {
	if p.started {
		panic("programtest: " + op + ": ledger already started")
	}
}
