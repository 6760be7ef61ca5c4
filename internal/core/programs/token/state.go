// Package token implements the fungible-token program: its mint and token
// account layouts and the instructions the test helpers issue.
package token

import (
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/LeJamon/programtest/internal/codec/record"
)

// ProgramID is the address of the token program.
var ProgramID = solana.TokenProgramID

const (
	// MintSize is the packed length of a Mint.
	MintSize = 82

	// AccountSize is the packed length of an Account.
	AccountSize = 165
)

// AccountState is the lifecycle state of a token account.
type AccountState uint8

const (
	AccountStateUninitialized AccountState = iota
	AccountStateInitialized
	AccountStateFrozen
)

func (s AccountState) String() string {
	switch s {
	case AccountStateUninitialized:
		return "uninitialized"
	case AccountStateInitialized:
		return "initialized"
	case AccountStateFrozen:
		return "frozen"
	default:
		return fmt.Sprintf("AccountState(%d)", uint8(s))
	}
}

// Mint describes a token type.
type Mint struct {
	// MintAuthority may mint new tokens. Nil means the supply is fixed.
	MintAuthority   *solana.PublicKey
	Supply          uint64
	Decimals        uint8
	IsInitialized   bool
	FreezeAuthority *solana.PublicKey
}

var (
	_ record.Packable = (*Mint)(nil)
	_ record.Packable = (*Account)(nil)
)

func (Mint) PackedLen() int { return MintSize }

func (m Mint) PackInto(dst []byte) {
	putKeyOption(dst[0:36], m.MintAuthority)
	binary.LittleEndian.PutUint64(dst[36:44], m.Supply)
	dst[44] = m.Decimals
	dst[45] = boolByte(m.IsInitialized)
	putKeyOption(dst[46:82], m.FreezeAuthority)
}

func (m *Mint) UnpackFrom(src []byte) error {
	var err error
	if m.MintAuthority, err = keyOption(src[0:36]); err != nil {
		return fmt.Errorf("mint authority: %w", err)
	}
	m.Supply = binary.LittleEndian.Uint64(src[36:44])
	m.Decimals = src[44]
	if m.IsInitialized, err = byteBool(src[45]); err != nil {
		return fmt.Errorf("is_initialized: %w", err)
	}
	if m.FreezeAuthority, err = keyOption(src[46:82]); err != nil {
		return fmt.Errorf("freeze authority: %w", err)
	}
	return nil
}

// Account holds a balance of one mint on behalf of an owner.
type Account struct {
	Mint            solana.PublicKey
	Owner           solana.PublicKey
	Amount          uint64
	Delegate        *solana.PublicKey
	State           AccountState
	IsNative        *uint64
	DelegatedAmount uint64
	CloseAuthority  *solana.PublicKey
}

func (Account) PackedLen() int { return AccountSize }

func (a Account) PackInto(dst []byte) {
	copy(dst[0:32], a.Mint[:])
	copy(dst[32:64], a.Owner[:])
	binary.LittleEndian.PutUint64(dst[64:72], a.Amount)
	putKeyOption(dst[72:108], a.Delegate)
	dst[108] = byte(a.State)
	if a.IsNative != nil {
		binary.LittleEndian.PutUint32(dst[109:113], 1)
		binary.LittleEndian.PutUint64(dst[113:121], *a.IsNative)
	} else {
		clear(dst[109:121])
	}
	binary.LittleEndian.PutUint64(dst[121:129], a.DelegatedAmount)
	putKeyOption(dst[129:165], a.CloseAuthority)
}

func (a *Account) UnpackFrom(src []byte) error {
	a.Mint = solana.PublicKeyFromBytes(src[0:32])
	a.Owner = solana.PublicKeyFromBytes(src[32:64])
	a.Amount = binary.LittleEndian.Uint64(src[64:72])

	var err error
	if a.Delegate, err = keyOption(src[72:108]); err != nil {
		return fmt.Errorf("delegate: %w", err)
	}
	a.State = AccountState(src[108])
	if a.State > AccountStateFrozen {
		return fmt.Errorf("invalid account state %d", src[108])
	}
	switch tag := binary.LittleEndian.Uint32(src[109:113]); tag {
	case 0:
		a.IsNative = nil
	case 1:
		v := binary.LittleEndian.Uint64(src[113:121])
		a.IsNative = &v
	default:
		return fmt.Errorf("is_native: invalid option tag %d", tag)
	}
	a.DelegatedAmount = binary.LittleEndian.Uint64(src[121:129])
	if a.CloseAuthority, err = keyOption(src[129:165]); err != nil {
		return fmt.Errorf("close authority: %w", err)
	}
	return nil
}

// IsInitialized reports whether the account has been through
// InitializeAccount.
func (a Account) IsInitialized() bool { return a.State != AccountStateUninitialized }

// IsFrozen reports whether transfers out of the account are blocked.
func (a Account) IsFrozen() bool { return a.State == AccountStateFrozen }

func putKeyOption(dst []byte, k *solana.PublicKey) {
	if k == nil {
		clear(dst)
		return
	}
	binary.LittleEndian.PutUint32(dst[0:4], 1)
	copy(dst[4:36], k[:])
}

func keyOption(src []byte) (*solana.PublicKey, error) {
	switch tag := binary.LittleEndian.Uint32(src[0:4]); tag {
	case 0:
		return nil, nil
	case 1:
		k := solana.PublicKeyFromBytes(src[4:36])
		return &k, nil
	default:
		return nil, fmt.Errorf("invalid option tag %d", tag)
	}
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

func byteBool(b byte) (bool, error) {
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	}
	return false, fmt.Errorf("invalid bool byte %d", b)
}
