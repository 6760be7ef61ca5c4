package config

import (
	"encoding/base64"
	"fmt"
	"path/filepath"

	"github.com/gagliardetto/solana-go"

	"github.com/LeJamon/programtest/internal/core/account"
	"github.com/LeJamon/programtest/internal/core/programs/ata"
	"github.com/LeJamon/programtest/internal/programtest"
)

type seed struct {
	addr  solana.PublicKey
	what  string
	apply func(pt *programtest.ProgramTest)
}

// resolver turns a configured key into an address. A key naming one of the
// configured keypairs resolves to that keypair's public key.
type resolver map[string]solana.PublicKey

func newResolver(names []string) resolver {
	r := make(resolver, len(names))
	for _, name := range names {
		r[name] = programtest.NewKeypair(name).PublicKey()
	}
	return r
}

func (r resolver) key(field, s string) (solana.PublicKey, error) {
	if pk, ok := r[s]; ok {
		return pk, nil
	}
	pk, err := solana.PublicKeyFromBase58(s)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("%s %q: %w", field, s, err)
	}
	return pk, nil
}

func (r resolver) optionalKey(field, s string) (*solana.PublicKey, error) {
	if s == "" {
		return nil, nil
	}
	pk, err := r.key(field, s)
	if err != nil {
		return nil, err
	}
	return &pk, nil
}

// accountData returns the seeded bytes of a, decoded from Data or read from
// DataFile.
func (c *Config) accountData(a AccountSeed) ([]byte, error) {
	if a.DataFile == "" {
		data, err := base64.StdEncoding.DecodeString(a.Data)
		if err != nil {
			return nil, fmt.Errorf("data: %w", err)
		}
		if len(data) > account.MaxPermittedDataLength {
			return nil, fmt.Errorf("data: %d bytes exceeds %d", len(data), account.MaxPermittedDataLength)
		}
		return data, nil
	}
	if a.Data != "" {
		return nil, fmt.Errorf("data_file: cannot be combined with data")
	}
	path := a.DataFile
	if !filepath.IsAbs(path) && c.configPath != "" {
		path = filepath.Join(filepath.Dir(c.configPath), path)
	}
	data, err := programtest.ReadAccountData(path)
	if err != nil {
		return nil, fmt.Errorf("data_file: %w", err)
	}
	return data, nil
}

// seeds resolves the initial state into the order it is added to the
// ledger: keypairs, raw accounts, mints, token accounts.
func (c *Config) seeds() ([]seed, error) {
	r := newResolver(c.Keypairs)
	var out []seed

	for _, name := range c.Keypairs {
		if name == "" {
			return nil, fmt.Errorf("keypairs: empty name")
		}
		pk := r[name]
		out = append(out, seed{pk, "keypair " + name, func(pt *programtest.ProgramTest) {
			pt.AddAccountWithLamports(pk, pk, programtest.DefaultAccountLamports)
		}})
	}

	for i, a := range c.Accounts {
		addr, err := r.key(fmt.Sprintf("accounts[%d].address", i), a.Address)
		if err != nil {
			return nil, err
		}
		owner := solana.SystemProgramID
		if a.Owner != "" {
			if owner, err = r.key(fmt.Sprintf("accounts[%d].owner", i), a.Owner); err != nil {
				return nil, err
			}
		}
		data, err := c.accountData(a)
		if err != nil {
			return nil, fmt.Errorf("accounts[%d].%w", i, err)
		}
		out = append(out, seed{addr, fmt.Sprintf("accounts[%d]", i), func(pt *programtest.ProgramTest) {
			// Without an explicit balance the account is funded rent exempt.
			if a.Lamports == 0 {
				pt.AddAccountWithData(addr, owner, data, a.Executable)
				return
			}
			pt.AddAccount(addr, account.Account{Owner: owner, Lamports: a.Lamports, Data: data, Executable: a.Executable})
		}})
	}

	for i, m := range c.Mints {
		field := fmt.Sprintf("mints[%d]", i)
		addr, err := r.key(field+".address", m.Address)
		if err != nil {
			return nil, err
		}
		authority, err := r.optionalKey(field+".authority", m.Authority)
		if err != nil {
			return nil, err
		}
		freeze, err := r.optionalKey(field+".freeze_authority", m.FreezeAuthority)
		if err != nil {
			return nil, err
		}
		out = append(out, seed{addr, field, func(pt *programtest.ProgramTest) {
			pt.AddTokenMint(addr, authority, m.Supply, m.Decimals, freeze)
		}})
	}

	for i, ta := range c.TokenAccounts {
		field := fmt.Sprintf("token_accounts[%d]", i)
		mint, err := r.key(field+".mint", ta.Mint)
		if err != nil {
			return nil, err
		}
		owner, err := r.key(field+".owner", ta.Owner)
		if err != nil {
			return nil, err
		}
		amount := ta.Amount
		if ta.Address == "" {
			out = append(out, seed{ata.Derive(owner, mint), field, func(pt *programtest.ProgramTest) {
				pt.AddAssociatedTokenAccount(owner, mint, amount)
			}})
			continue
		}
		addr, err := r.key(field+".address", ta.Address)
		if err != nil {
			return nil, err
		}
		out = append(out, seed{addr, field, func(pt *programtest.ProgramTest) {
			pt.AddTokenAccount(addr, mint, owner, amount)
		}})
	}

	seen := make(map[solana.PublicKey]string, len(out))
	for _, s := range out {
		if prev, dup := seen[s.addr]; dup {
			return nil, fmt.Errorf("%s and %s both seed %s", prev, s.what, s.addr)
		}
		seen[s.addr] = s.what
	}
	return out, nil
}

// Seed adds the configured initial state to pt and returns the configured
// keypairs, in order.
func (c *Config) Seed(pt *programtest.ProgramTest) ([]solana.PrivateKey, error) {
	seeds, err := c.seeds()
	if err != nil {
		return nil, err
	}
	for _, s := range seeds {
		s.apply(pt)
	}
	keys := make([]solana.PrivateKey, len(c.Keypairs))
	for i, name := range c.Keypairs {
		keys[i] = programtest.NewKeypair(name)
	}
	return keys, nil
}
