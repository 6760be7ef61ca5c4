package token

import (
	"bytes"
	"encoding/binary"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/LeJamon/programtest/internal/core/invoke"
	"github.com/LeJamon/programtest/internal/core/sysvar"
)

// InstructionType is the leading byte of every token instruction.
type InstructionType uint8

const (
	InstructionInitializeMint    InstructionType = 0
	InstructionInitializeAccount InstructionType = 1
	InstructionTransfer          InstructionType = 3
	InstructionMintTo            InstructionType = 7
	InstructionBurn              InstructionType = 8
)

func (t InstructionType) String() string {
	switch t {
	case InstructionInitializeMint:
		return "InitializeMint"
	case InstructionInitializeAccount:
		return "InitializeAccount"
	case InstructionTransfer:
		return "Transfer"
	case InstructionMintTo:
		return "MintTo"
	case InstructionBurn:
		return "Burn"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(t))
	}
}

// InitializeMint initializes a token-program-owned, MintSize-byte account as
// a mint.
func InitializeMint(mint, mintAuthority solana.PublicKey, freezeAuthority *solana.PublicKey, decimals uint8) solana.Instruction {
	buf := new(bytes.Buffer)
	enc := bin.NewBinEncoder(buf)
	_ = enc.WriteUint8(uint8(InstructionInitializeMint))
	_ = enc.WriteUint8(decimals)
	_ = enc.WriteBytes(mintAuthority[:], false)
	if freezeAuthority != nil {
		_ = enc.WriteUint8(1)
		_ = enc.WriteBytes(freezeAuthority[:], false)
	} else {
		_ = enc.WriteUint8(0)
	}
	return solana.NewInstruction(ProgramID, solana.AccountMetaSlice{
		{PublicKey: mint, IsWritable: true},
		{PublicKey: sysvar.RentID},
	}, buf.Bytes())
}

// InitializeAccount initializes a token-program-owned, AccountSize-byte
// account to hold tokens of mint for owner.
func InitializeAccount(acct, mint, owner solana.PublicKey) solana.Instruction {
	return solana.NewInstruction(ProgramID, solana.AccountMetaSlice{
		{PublicKey: acct, IsWritable: true},
		{PublicKey: mint},
		{PublicKey: owner},
		{PublicKey: sysvar.RentID},
	}, []byte{byte(InstructionInitializeAccount)})
}

// Transfer moves amount tokens between two accounts of the same mint.
func Transfer(source, destination, owner solana.PublicKey, amount uint64) solana.Instruction {
	return solana.NewInstruction(ProgramID, solana.AccountMetaSlice{
		{PublicKey: source, IsWritable: true},
		{PublicKey: destination, IsWritable: true},
		{PublicKey: owner, IsSigner: true},
	}, amountData(InstructionTransfer, amount))
}

// MintTo mints amount new tokens into destination.
func MintTo(mint, destination, authority solana.PublicKey, amount uint64) solana.Instruction {
	return solana.NewInstruction(ProgramID, solana.AccountMetaSlice{
		{PublicKey: mint, IsWritable: true},
		{PublicKey: destination, IsWritable: true},
		{PublicKey: authority, IsSigner: true},
	}, amountData(InstructionMintTo, amount))
}

// Burn destroys amount tokens held by acct.
func Burn(acct, mint, owner solana.PublicKey, amount uint64) solana.Instruction {
	return solana.NewInstruction(ProgramID, solana.AccountMetaSlice{
		{PublicKey: acct, IsWritable: true},
		{PublicKey: mint, IsWritable: true},
		{PublicKey: owner, IsSigner: true},
	}, amountData(InstructionBurn, amount))
}

func amountData(t InstructionType, amount uint64) []byte {
	data := make([]byte, 9)
	data[0] = byte(t)
	binary.LittleEndian.PutUint64(data[1:], amount)
	return data
}

type decoded struct {
	Type            InstructionType
	Amount          uint64
	Decimals        uint8
	MintAuthority   solana.PublicKey
	FreezeAuthority *solana.PublicKey
}

func decode(data []byte) (decoded, error) {
	var d decoded
	dec := bin.NewBinDecoder(data)
	t, err := dec.ReadUint8()
	if err != nil {
		return d, fmt.Errorf("%w: %v", invoke.ErrInvalidInstructionData, err)
	}
	d.Type = InstructionType(t)

	switch d.Type {
	case InstructionInitializeMint:
		err = d.decodeInitializeMint(dec)
	case InstructionInitializeAccount:
	case InstructionTransfer, InstructionMintTo, InstructionBurn:
		d.Amount, err = dec.ReadUint64(binary.LittleEndian)
	default:
		return d, fmt.Errorf("%w: unsupported token instruction %s", invoke.ErrInvalidInstructionData, d.Type)
	}
	if err != nil {
		return d, fmt.Errorf("%w: %s: %v", invoke.ErrInvalidInstructionData, d.Type, err)
	}
	if dec.Remaining() != 0 {
		return d, fmt.Errorf("%w: %s: %d trailing bytes", invoke.ErrInvalidInstructionData, d.Type, dec.Remaining())
	}
	return d, nil
}

func (d *decoded) decodeInitializeMint(dec *bin.Decoder) error {
	var err error
	if d.Decimals, err = dec.ReadUint8(); err != nil {
		return err
	}
	b, err := dec.ReadNBytes(solana.PublicKeyLength)
	if err != nil {
		return err
	}
	d.MintAuthority = solana.PublicKeyFromBytes(b)

	tag, err := dec.ReadUint8()
	if err != nil {
		return err
	}
	switch tag {
	case 0:
	case 1:
		if b, err = dec.ReadNBytes(solana.PublicKeyLength); err != nil {
			return err
		}
		k := solana.PublicKeyFromBytes(b)
		d.FreezeAuthority = &k
	default:
		return fmt.Errorf("invalid freeze authority tag %d", tag)
	}
	return nil
}
