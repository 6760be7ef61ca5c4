// Package system implements the builtin program that creates accounts,
// assigns their owner and moves lamports between them.
package system

import (
	"bytes"
	"encoding/binary"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/LeJamon/programtest/internal/core/invoke"
)

// ProgramID is the address of the system program.
var ProgramID = solana.SystemProgramID

// InstructionType is the u32 discriminant leading every system instruction.
type InstructionType uint32

const (
	InstructionCreateAccount InstructionType = 0
	InstructionAssign        InstructionType = 1
	InstructionTransfer      InstructionType = 2
	InstructionAllocate      InstructionType = 8
)

func (t InstructionType) String() string {
	switch t {
	case InstructionCreateAccount:
		return "CreateAccount"
	case InstructionAssign:
		return "Assign"
	case InstructionTransfer:
		return "Transfer"
	case InstructionAllocate:
		return "Allocate"
	default:
		return fmt.Sprintf("Unknown(%d)", uint32(t))
	}
}

type encoder struct {
	buf bytes.Buffer
	enc *bin.Encoder
}

func newEncoder(t InstructionType) *encoder {
	e := &encoder{}
	e.enc = bin.NewBinEncoder(&e.buf)
	_ = e.enc.WriteUint32(uint32(t), binary.LittleEndian)
	return e
}

func (e *encoder) u64(v uint64) *encoder {
	_ = e.enc.WriteUint64(v, binary.LittleEndian)
	return e
}

func (e *encoder) key(k solana.PublicKey) *encoder {
	_ = e.enc.WriteBytes(k[:], false)
	return e
}

func (e *encoder) bytes() []byte { return e.buf.Bytes() }

// CreateAccount funds a new account, allocates space bytes of data and
// assigns it to owner. Both from and to must sign.
func CreateAccount(from, to solana.PublicKey, lamports, space uint64, owner solana.PublicKey) solana.Instruction {
	data := newEncoder(InstructionCreateAccount).u64(lamports).u64(space).key(owner).bytes()
	return solana.NewInstruction(ProgramID, solana.AccountMetaSlice{
		{PublicKey: from, IsSigner: true, IsWritable: true},
		{PublicKey: to, IsSigner: true, IsWritable: true},
	}, data)
}

// Transfer moves lamports from a signing account to another account.
func Transfer(from, to solana.PublicKey, lamports uint64) solana.Instruction {
	data := newEncoder(InstructionTransfer).u64(lamports).bytes()
	return solana.NewInstruction(ProgramID, solana.AccountMetaSlice{
		{PublicKey: from, IsSigner: true, IsWritable: true},
		{PublicKey: to, IsWritable: true},
	}, data)
}

// Assign changes the owner of a signing, system-owned account.
func Assign(account, owner solana.PublicKey) solana.Instruction {
	data := newEncoder(InstructionAssign).key(owner).bytes()
	return solana.NewInstruction(ProgramID, solana.AccountMetaSlice{
		{PublicKey: account, IsSigner: true, IsWritable: true},
	}, data)
}

// Allocate sizes the data of a signing, system-owned account.
func Allocate(account solana.PublicKey, space uint64) solana.Instruction {
	data := newEncoder(InstructionAllocate).u64(space).bytes()
	return solana.NewInstruction(ProgramID, solana.AccountMetaSlice{
		{PublicKey: account, IsSigner: true, IsWritable: true},
	}, data)
}

// decoded is the union of all system instruction payloads.
type decoded struct {
	Type     InstructionType
	Lamports uint64
	Space    uint64
	Owner    solana.PublicKey
}

func decode(data []byte) (decoded, error) {
	var d decoded
	dec := bin.NewBinDecoder(data)
	t, err := dec.ReadUint32(binary.LittleEndian)
	if err != nil {
		return d, fmt.Errorf("%w: %v", invoke.ErrInvalidInstructionData, err)
	}
	d.Type = InstructionType(t)

	readKey := func() error {
		b, err := dec.ReadNBytes(solana.PublicKeyLength)
		if err != nil {
			return err
		}
		d.Owner = solana.PublicKeyFromBytes(b)
		return nil
	}

	switch d.Type {
	case InstructionCreateAccount:
		if d.Lamports, err = dec.ReadUint64(binary.LittleEndian); err == nil {
			if d.Space, err = dec.ReadUint64(binary.LittleEndian); err == nil {
				err = readKey()
			}
		}
	case InstructionAssign:
		err = readKey()
	case InstructionTransfer:
		d.Lamports, err = dec.ReadUint64(binary.LittleEndian)
	case InstructionAllocate:
		d.Space, err = dec.ReadUint64(binary.LittleEndian)
	default:
		return d, fmt.Errorf("%w: unknown system instruction %s", invoke.ErrInvalidInstructionData, d.Type)
	}
	if err != nil {
		return d, fmt.Errorf("%w: %s: %v", invoke.ErrInvalidInstructionData, d.Type, err)
	}
	if dec.Remaining() != 0 {
		return d, fmt.Errorf("%w: %s: %d trailing bytes", invoke.ErrInvalidInstructionData, d.Type, dec.Remaining())
	}
	return d, nil
}
