package bank

import (
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/LeJamon/programtest/internal/core/sysvar"
)

// LatestBlockhash returns the blockhash new transactions should reference.
func (b *Bank) LatestBlockhash() (solana.Hash, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.started {
		return solana.Hash{}, ErrNotStarted
	}
	return b.blockhash, nil
}

// Clock returns the current clock sysvar.
func (b *Bank) Clock() (sysvar.Clock, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.started {
		return sysvar.Clock{}, ErrNotStarted
	}
	return b.clock, nil
}

// SetClock overwrites the clock sysvar.
func (b *Bank) SetClock(c sysvar.Clock) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.started {
		return ErrNotStarted
	}
	prev := b.clock
	b.clock = c
	if err := b.writeSysvars(); err != nil {
		b.clock = prev
		return err
	}

	b.log.Debug().
		Uint64("slot", c.Slot).
		Int64("unix_timestamp", c.UnixTimestamp).
		Msg("clock overwritten")
	return nil
}

// WarpToSlot jumps the bank forward to slot. The clock's timestamp moves to
// the time genesis projects for slot, but never backwards.
func (b *Bank) WarpToSlot(slot uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.started {
		return ErrNotStarted
	}
	if slot <= b.clock.Slot {
		return fmt.Errorf("%w: %d <= %d", ErrInvalidWarpSlot, slot, b.clock.Slot)
	}

	prev := b.clock
	next := prev
	next.Slot = slot
	next.UnixTimestamp = max(prev.UnixTimestamp, b.cfg.SlotTimestamp(slot))
	next.Epoch = slot / b.cfg.SlotsPerEpoch
	next.LeaderScheduleEpoch = next.Epoch + 1
	if next.Epoch != prev.Epoch {
		next.EpochStartTimestamp = next.UnixTimestamp
	}

	b.clock = next
	if err := b.writeSysvars(); err != nil {
		b.clock = prev
		return err
	}

	salt := make([]byte, 8)
	binary.LittleEndian.PutUint64(salt, slot)
	b.nextBlockhash(salt)

	b.log.Debug().
		Uint64("from_slot", prev.Slot).
		Uint64("to_slot", slot).
		Int64("unix_timestamp", next.UnixTimestamp).
		Msg("warped")
	return nil
}
