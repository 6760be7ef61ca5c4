package rpc

import (
	"encoding/base64"
	"fmt"
	"time"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/LeJamon/programtest/internal/core/account"
	"github.com/LeJamon/programtest/internal/core/genesis"
	"github.com/LeJamon/programtest/internal/core/rent"
	"github.com/LeJamon/programtest/internal/core/sysvar"
)

func toAccountInfo(a *account.Account) *AccountInfo {
	if a == nil {
		return nil
	}
	return &AccountInfo{
		Lamports:   a.Lamports,
		Owner:      a.Owner.String(),
		Data:       base64.StdEncoding.EncodeToString(a.Data),
		Executable: a.Executable,
		RentEpoch:  a.RentEpoch,
	}
}

func (info *AccountInfo) account() (*account.Account, error) {
	owner, err := solana.PublicKeyFromBase58(info.Owner)
	if err != nil {
		return nil, fmt.Errorf("owner: %w", err)
	}
	data, err := base64.StdEncoding.DecodeString(info.Data)
	if err != nil {
		return nil, fmt.Errorf("data: %w", err)
	}
	return &account.Account{
		Lamports:   info.Lamports,
		Owner:      owner,
		Data:       data,
		Executable: info.Executable,
		RentEpoch:  info.RentEpoch,
	}, nil
}

func toClockInfo(c sysvar.Clock) ClockInfo {
	return ClockInfo{
		Slot:                c.Slot,
		EpochStartTimestamp: c.EpochStartTimestamp,
		Epoch:               c.Epoch,
		LeaderScheduleEpoch: c.LeaderScheduleEpoch,
		UnixTimestamp:       c.UnixTimestamp,
	}
}

func (c ClockInfo) clock() sysvar.Clock {
	return sysvar.Clock{
		Slot:                c.Slot,
		EpochStartTimestamp: c.EpochStartTimestamp,
		Epoch:               c.Epoch,
		LeaderScheduleEpoch: c.LeaderScheduleEpoch,
		UnixTimestamp:       c.UnixTimestamp,
	}
}

func toRentInfo(r rent.Rent) RentInfo {
	return RentInfo{
		LamportsPerByteYear: r.LamportsPerByteYear,
		ExemptionThreshold:  r.ExemptionThreshold,
		BurnPercent:         r.BurnPercent,
	}
}

func (r RentInfo) rent() rent.Rent {
	return rent.Rent{
		LamportsPerByteYear: r.LamportsPerByteYear,
		ExemptionThreshold:  r.ExemptionThreshold,
		BurnPercent:         r.BurnPercent,
	}
}

func toGenesisInfo(cfg genesis.Config) GenesisInfo {
	return GenesisInfo{
		TicksPerSlot:         cfg.TicksPerSlot,
		TargetTickDurationNs: cfg.TargetTickDuration.Nanoseconds(),
		SlotsPerEpoch:        cfg.SlotsPerEpoch,
		CreationTime:         cfg.CreationTime.Unix(),
		LamportsPerSignature: cfg.LamportsPerSignature,
		Rent:                 toRentInfo(cfg.Rent),
	}
}

// Config returns the genesis configuration g describes.
func (g GenesisInfo) Config() genesis.Config {
	return genesis.Config{
		TicksPerSlot:         g.TicksPerSlot,
		TargetTickDuration:   time.Duration(g.TargetTickDurationNs),
		SlotsPerEpoch:        g.SlotsPerEpoch,
		CreationTime:         time.Unix(g.CreationTime, 0).UTC(),
		LamportsPerSignature: g.LamportsPerSignature,
		Rent:                 g.Rent.rent(),
	}
}

// EncodeTransaction returns tx in base64 wire form.
func EncodeTransaction(tx *solana.Transaction) (string, error) {
	raw, err := tx.MarshalBinary()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// DecodeTransaction parses a base64 wire transaction.
func DecodeTransaction(s string) (*solana.Transaction, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("base64: %w", err)
	}
	dec := bin.NewBinDecoder(raw)
	tx, err := solana.TransactionFromDecoder(dec)
	if err != nil {
		return nil, err
	}
	if dec.Remaining() != 0 {
		return nil, fmt.Errorf("%d trailing bytes after transaction", dec.Remaining())
	}
	return tx, nil
}
