package programtest

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/bits"

	"github.com/LeJamon/programtest/internal/banks"
	"github.com/LeJamon/programtest/internal/core/bank"
)

const (
	// IterativeWarpStep is the number of slots WarpToTimestampIterative
	// advances per step.
	IterativeWarpStep = 2

	// DefaultMaxWarpSteps bounds WarpToTimestampIterative when the caller
	// passes no budget.
	DefaultMaxWarpSteps = 100_000
)

var (
	// ErrInvalidWarpSlot is returned when a warp would not move the ledger
	// forward.
	ErrInvalidWarpSlot = bank.ErrInvalidWarpSlot

	// ErrWarpStalled is returned when iterative warping stops making
	// progress before reaching its target.
	ErrWarpStalled = errors.New("warp stalled before reaching target timestamp")
)

// SlotsForDuration returns floor((target-current) * 1e9 / nsPerSlot) for
// target > current, computed without intermediate overflow and saturating
// at math.MaxUint64.
func SlotsForDuration(current, target int64, nsPerSlot uint64) uint64 {
	if target <= current || nsPerSlot == 0 {
		return 0
	}
	delta := uint64(target) - uint64(current)
	hi, lo := bits.Mul64(delta, 1_000_000_000)
	if hi >= nsPerSlot {
		return math.MaxUint64
	}
	slots, _ := bits.Div64(hi, lo, nsPerSlot)
	return slots
}

// WarpToSlot jumps the ledger forward to slot.
func (c *Context) WarpToSlot(ctx context.Context, slot uint64) error {
	return banks.Wrap("warp to slot", c.Warper.WarpToSlot(ctx, slot))
}

// WarpToTimestamp moves the ledger clock to the unix timestamp target. It
// overwrites the clock's timestamp with target, then jumps the slot forward
// by the number of whole slots between the old and the new timestamp. It
// fails with ErrInvalidWarpSlot, leaving the clock untouched, unless target
// is after the current timestamp.
//
// If the slot jump fails, the clock read at the start is written back before
// the error is returned. Should that write fail too, the ledger is left with
// its timestamp at target and its slot unchanged, and the returned error
// wraps both failures.
func (c *Context) WarpToTimestamp(ctx context.Context, target int64) error {
	clock, err := c.Banks.GetClock(ctx)
	if err != nil {
		return banks.Wrap("get clock", err)
	}
	if target <= clock.UnixTimestamp {
		return fmt.Errorf("%w: cannot move time backward from %d to %d", ErrInvalidWarpSlot, clock.UnixTimestamp, target)
	}

	slots := SlotsForDuration(clock.UnixTimestamp, target, c.Genesis.NsPerSlot())
	if slots > math.MaxUint64-clock.Slot {
		return fmt.Errorf("%w: %d slots past slot %d overflows", ErrInvalidWarpSlot, slots, clock.Slot)
	}

	prev := clock
	clock.UnixTimestamp = target
	if err := c.Warper.SetClock(ctx, clock); err != nil {
		return banks.Wrap("set clock", err)
	}
	// A gap shorter than one slot is covered by the clock write alone.
	if slots == 0 {
		return nil
	}
	if err := c.Warper.WarpToSlot(ctx, clock.Slot+slots); err != nil {
		err = banks.Wrap("warp to slot", err)
		if rerr := c.Warper.SetClock(ctx, prev); rerr != nil {
			return errors.Join(err, banks.Wrap("restore clock", rerr))
		}
		return err
	}
	return nil
}

// WarpToTimestampIterative advances the ledger IterativeWarpStep slots at a
// time until its clock reports a timestamp at or after target. It gives up
// with ErrWarpStalled after maxSteps steps, as soon as a step does not
// advance the slot, or when a step leaves the timestamp unchanged although
// genesis projects the new slot past it. A maxSteps of zero or less selects
// DefaultMaxWarpSteps.
func (c *Context) WarpToTimestampIterative(ctx context.Context, target int64, maxSteps int) error {
	if maxSteps <= 0 {
		maxSteps = DefaultMaxWarpSteps
	}
	clock, err := c.Banks.GetClock(ctx)
	if err != nil {
		return banks.Wrap("get clock", err)
	}

	for step := 0; clock.UnixTimestamp < target; step++ {
		if step >= maxSteps {
			return fmt.Errorf("%w: timestamp %d after %d steps, target %d", ErrWarpStalled, clock.UnixTimestamp, step, target)
		}
		if err := c.Warper.WarpToSlot(ctx, clock.Slot+IterativeWarpStep); err != nil {
			return banks.Wrap("warp to slot", err)
		}
		next, err := c.Banks.GetClock(ctx)
		if err != nil {
			return banks.Wrap("get clock", err)
		}
		if next.Slot <= clock.Slot {
			return fmt.Errorf("%w: slot stuck at %d", ErrWarpStalled, next.Slot)
		}
		// Flat steps are expected while a pinned timestamp is ahead of the
		// slot projection.
		if next.UnixTimestamp <= clock.UnixTimestamp && c.Genesis.SlotTimestamp(next.Slot) > clock.UnixTimestamp {
			return fmt.Errorf("%w: timestamp stuck at %d at slot %d", ErrWarpStalled, next.UnixTimestamp, next.Slot)
		}
		clock = next
	}
	return nil
}
