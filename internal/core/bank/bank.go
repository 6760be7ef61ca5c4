// Package bank is the in-process ledger runtime the test helpers drive. It
// stores accounts, executes transactions against builtin programs and owns
// the clock and rent sysvars.
//
// A Bank has two phases. Before Start, accounts may be inserted directly.
// After Start, state only changes through ProcessTransaction, SetClock and
// WarpToSlot.
package bank

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"

	"github.com/LeJamon/programtest/internal/core/account"
	"github.com/LeJamon/programtest/internal/core/genesis"
	"github.com/LeJamon/programtest/internal/core/invoke"
	"github.com/LeJamon/programtest/internal/core/programs/ata"
	"github.com/LeJamon/programtest/internal/core/programs/system"
	"github.com/LeJamon/programtest/internal/core/programs/token"
	"github.com/LeJamon/programtest/internal/core/rent"
	"github.com/LeJamon/programtest/internal/core/sysvar"
	"github.com/LeJamon/programtest/internal/storage/accountstore"
)

// NativeLoaderID owns the accounts of builtin programs.
var NativeLoaderID = solana.MustPublicKeyFromBase58("NativeLoader1111111111111111111111111111111")

// maxRecentBlockhashes bounds the blockhashes a transaction may reference.
const maxRecentBlockhashes = 300

// Option configures a Bank.
type Option func(*Bank)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(b *Bank) {
		b.log = l.With().Str("component", "bank").Logger()
	}
}

// WithPrograms registers additional builtin programs.
func WithPrograms(programs ...invoke.Program) Option {
	return func(b *Bank) {
		for _, p := range programs {
			b.programs[p.ID()] = p
		}
	}
}

// Bank is a single-node ledger. All methods are safe for concurrent use.
type Bank struct {
	mu sync.Mutex

	cfg      genesis.Config
	store    accountstore.Store
	log      zerolog.Logger
	programs map[solana.PublicKey]invoke.Program

	started bool
	clock   sysvar.Clock

	blockhash solana.Hash
	recent    map[solana.Hash]struct{}
	queue     []solana.Hash
	processed map[solana.Signature]struct{}
	txCount   uint64
}

// New creates a bank over store. A nil store selects an in-memory one.
func New(cfg genesis.Config, store accountstore.Store, opts ...Option) (*Bank, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if store == nil {
		store = accountstore.NewMemory()
	}
	b := &Bank{
		cfg:       cfg,
		store:     store,
		log:       zerolog.Nop(),
		programs:  make(map[solana.PublicKey]invoke.Program),
		recent:    make(map[solana.Hash]struct{}),
		processed: make(map[solana.Signature]struct{}),
	}
	for _, p := range []invoke.Program{system.New(), token.New(), ata.New()} {
		b.programs[p.ID()] = p
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Genesis returns the configuration the bank was created with.
func (b *Bank) Genesis() genesis.Config { return b.cfg }

// Rent returns the rent parameters in effect.
func (b *Bank) Rent() rent.Rent { return b.cfg.Rent }

// InsertAccount seeds an account before the bank starts. A second insert for
// the same address replaces the first.
func (b *Bank) InsertAccount(addr solana.PublicKey, acct *account.Account) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.started {
		return fmt.Errorf("insert %s: %w", addr, ErrAlreadyStarted)
	}
	return b.store.Put(addr, acct)
}

// RegisterProgram adds a builtin program before the bank starts.
func (b *Bank) RegisterProgram(p invoke.Program) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.started {
		return fmt.Errorf("register program %s: %w", p.ID(), ErrAlreadyStarted)
	}
	b.programs[p.ID()] = p
	return nil
}

// Start ends the seeding phase: it writes the sysvars and program accounts
// and produces the genesis blockhash.
func (b *Bank) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.started {
		return ErrAlreadyStarted
	}

	ts := b.cfg.CreationTime.Unix()
	b.clock = sysvar.Clock{
		EpochStartTimestamp: ts,
		LeaderScheduleEpoch: 1,
		UnixTimestamp:       ts,
	}
	if err := b.writeSysvars(); err != nil {
		return err
	}

	for id := range b.programs {
		if err := b.store.Put(id, &account.Account{
			Owner:      NativeLoaderID,
			Lamports:   1,
			Data:       []byte(id.String()),
			Executable: true,
		}); err != nil {
			return fmt.Errorf("program account %s: %w", id, err)
		}
	}

	seed := make([]byte, 8)
	binary.LittleEndian.PutUint64(seed, uint64(ts))
	b.registerBlockhash(solana.Hash(sha256.Sum256(append([]byte("genesis"), seed...))))
	b.started = true

	b.log.Info().
		Int("programs", len(b.programs)).
		Int64("unix_timestamp", ts).
		Str("blockhash", b.blockhash.String()).
		Msg("bank started")
	return nil
}

// Account returns the account at addr, or nil when none exists.
func (b *Bank) Account(addr solana.PublicKey) (*account.Account, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.started {
		return nil, ErrNotStarted
	}
	return b.load(addr)
}

// AccountsByOwner returns every account owned by owner, in address order.
func (b *Bank) AccountsByOwner(owner solana.PublicKey) ([]account.Keyed, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.started {
		return nil, ErrNotStarted
	}
	var out []account.Keyed
	err := b.store.ForEach(func(key solana.PublicKey, acct *account.Account) error {
		if acct.Owner.Equals(owner) {
			out = append(out, account.Keyed{Address: key, Account: acct})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan accounts owned by %s: %w", owner, err)
	}
	return out, nil
}

// Close releases the account store.
func (b *Bank) Close() error {
	return b.store.Close()
}

func (b *Bank) load(addr solana.PublicKey) (*account.Account, error) {
	acct, err := b.store.Get(addr)
	if errors.Is(err, accountstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return acct, nil
}

func (b *Bank) writeSysvars() error {
	sysvars := map[solana.PublicKey][]byte{
		sysvar.ClockID: b.clock.Bytes(),
		sysvar.RentID:  sysvar.RentBytes(b.cfg.Rent),
	}
	for id, data := range sysvars {
		acct := &account.Account{
			Owner:    sysvar.OwnerID,
			Lamports: b.cfg.Rent.MinimumBalance(len(data)),
			Data:     data,
		}
		if err := b.store.Put(id, acct); err != nil {
			return fmt.Errorf("write sysvar %s: %w", id, err)
		}
	}
	return nil
}

// registerBlockhash makes h the latest blockhash, evicting the oldest one
// once more than maxRecentBlockhashes are live.
func (b *Bank) registerBlockhash(h solana.Hash) {
	b.blockhash = h
	b.recent[h] = struct{}{}
	b.queue = append(b.queue, h)
	if len(b.queue) > maxRecentBlockhashes {
		delete(b.recent, b.queue[0])
		b.queue = b.queue[1:]
	}
}

// nextBlockhash derives a fresh blockhash from the current one and salt.
func (b *Bank) nextBlockhash(salt []byte) {
	h := sha256.New()
	h.Write(b.blockhash[:])
	h.Write(salt)
	var next solana.Hash
	copy(next[:], h.Sum(nil))
	b.registerBlockhash(next)
}
