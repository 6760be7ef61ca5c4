// Package sysvar holds the runtime-owned accounts a program can read:
// the clock and the rent parameters.
package sysvar

import (
	"bytes"
	"encoding/binary"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/LeJamon/programtest/internal/core/rent"
)

var (
	// OwnerID owns every sysvar account.
	OwnerID = solana.MustPublicKeyFromBase58("Sysvar1111111111111111111111111111111111111")

	// ClockID is the address of the clock sysvar.
	ClockID = solana.SysVarClockPubkey

	// RentID is the address of the rent sysvar.
	RentID = solana.SysVarRentPubkey
)

const (
	// ClockSize is the serialized size of Clock.
	ClockSize = 40

	// RentSize is the serialized size of a rent sysvar.
	RentSize = 17
)

// Clock is the ledger's notion of time.
type Clock struct {
	Slot                uint64
	EpochStartTimestamp int64
	Epoch               uint64
	LeaderScheduleEpoch uint64
	UnixTimestamp       int64
}

func (c Clock) MarshalWithEncoder(enc *bin.Encoder) error {
	if err := enc.WriteUint64(c.Slot, binary.LittleEndian); err != nil {
		return err
	}
	if err := enc.WriteInt64(c.EpochStartTimestamp, binary.LittleEndian); err != nil {
		return err
	}
	if err := enc.WriteUint64(c.Epoch, binary.LittleEndian); err != nil {
		return err
	}
	if err := enc.WriteUint64(c.LeaderScheduleEpoch, binary.LittleEndian); err != nil {
		return err
	}
	return enc.WriteInt64(c.UnixTimestamp, binary.LittleEndian)
}

func (c *Clock) UnmarshalWithDecoder(dec *bin.Decoder) (err error) {
	if c.Slot, err = dec.ReadUint64(binary.LittleEndian); err != nil {
		return err
	}
	if c.EpochStartTimestamp, err = dec.ReadInt64(binary.LittleEndian); err != nil {
		return err
	}
	if c.Epoch, err = dec.ReadUint64(binary.LittleEndian); err != nil {
		return err
	}
	if c.LeaderScheduleEpoch, err = dec.ReadUint64(binary.LittleEndian); err != nil {
		return err
	}
	c.UnixTimestamp, err = dec.ReadInt64(binary.LittleEndian)
	return err
}

// Bytes returns the account data of the clock sysvar.
func (c Clock) Bytes() []byte {
	buf := new(bytes.Buffer)
	// Writes to a bytes.Buffer do not fail.
	_ = c.MarshalWithEncoder(bin.NewBinEncoder(buf))
	return buf.Bytes()
}

// ClockFromBytes parses clock sysvar account data.
func ClockFromBytes(data []byte) (Clock, error) {
	var c Clock
	if len(data) != ClockSize {
		return c, fmt.Errorf("clock sysvar: expected %d bytes, got %d", ClockSize, len(data))
	}
	err := c.UnmarshalWithDecoder(bin.NewBinDecoder(data))
	return c, err
}

// RentBytes returns the account data of the rent sysvar.
func RentBytes(r rent.Rent) []byte {
	buf := new(bytes.Buffer)
	enc := bin.NewBinEncoder(buf)
	_ = enc.WriteUint64(r.LamportsPerByteYear, binary.LittleEndian)
	_ = enc.WriteFloat64(r.ExemptionThreshold, binary.LittleEndian)
	_ = enc.WriteUint8(r.BurnPercent)
	return buf.Bytes()
}

// RentFromBytes parses rent sysvar account data.
func RentFromBytes(data []byte) (rent.Rent, error) {
	var r rent.Rent
	if len(data) != RentSize {
		return r, fmt.Errorf("rent sysvar: expected %d bytes, got %d", RentSize, len(data))
	}
	dec := bin.NewBinDecoder(data)
	var err error
	if r.LamportsPerByteYear, err = dec.ReadUint64(binary.LittleEndian); err != nil {
		return r, err
	}
	if r.ExemptionThreshold, err = dec.ReadFloat64(binary.LittleEndian); err != nil {
		return r, err
	}
	r.BurnPercent, err = dec.ReadUint8()
	return r, err
}
