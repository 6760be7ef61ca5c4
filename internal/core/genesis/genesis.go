// Package genesis describes the fixed configuration a simulated ledger is
// created with. A Config is read-only once the ledger has started.
package genesis

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
	"time"

	"github.com/LeJamon/programtest/internal/core/rent"
)

// Defaults for a test ledger, matching a development cluster.
const (
	DefaultTicksPerSlot         uint64 = 64
	DefaultTargetTickDuration          = 6250 * time.Microsecond
	DefaultSlotsPerEpoch        uint64 = 432_000
	DefaultLamportsPerSignature uint64 = 5000
)

var (
	// ErrInvalidConfig is returned by Validate for unusable configurations.
	ErrInvalidConfig = errors.New("invalid genesis config")
)

// Config holds the genesis parameters of a simulated ledger.
type Config struct {
	// TicksPerSlot is the number of PoH ticks in one slot.
	TicksPerSlot uint64 `mapstructure:"ticks_per_slot"`

	// TargetTickDuration is the wall-clock duration of one tick.
	TargetTickDuration time.Duration `mapstructure:"target_tick_duration"`

	// SlotsPerEpoch is the epoch length used by the clock sysvar.
	SlotsPerEpoch uint64 `mapstructure:"slots_per_epoch"`

	// CreationTime is the unix timestamp reported by the clock at slot 0.
	CreationTime time.Time `mapstructure:"creation_time"`

	// LamportsPerSignature is the fee charged per transaction signature.
	LamportsPerSignature uint64 `mapstructure:"lamports_per_signature"`

	// Rent configures the rent-exemption calculator.
	Rent rent.Rent `mapstructure:"rent"`
}

// DefaultConfig returns the configuration used by NewProgramTest.
func DefaultConfig() Config {
	return Config{
		TicksPerSlot:         DefaultTicksPerSlot,
		TargetTickDuration:   DefaultTargetTickDuration,
		SlotsPerEpoch:        DefaultSlotsPerEpoch,
		CreationTime:         time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC),
		LamportsPerSignature: DefaultLamportsPerSignature,
		Rent:                 rent.Default(),
	}
}

// NsPerSlot returns the number of nanoseconds a slot lasts.
func (c Config) NsPerSlot() uint64 {
	return c.TicksPerSlot * uint64(c.TargetTickDuration.Nanoseconds())
}

// SlotDuration returns NsPerSlot as a time.Duration.
func (c Config) SlotDuration() time.Duration {
	return time.Duration(c.NsPerSlot())
}

// SlotTimestamp returns the unix timestamp genesis projects for slot: the
// creation time plus slot*NsPerSlot, in whole seconds, saturating at
// math.MaxInt64. The product is computed in 128 bits.
func (c Config) SlotTimestamp(slot uint64) int64 {
	creation := c.CreationTime.Unix()
	hi, lo := bits.Mul64(slot, c.NsPerSlot())
	if hi >= 1e9 {
		return math.MaxInt64
	}
	secs, _ := bits.Div64(hi, lo, 1e9)
	if secs > math.MaxInt64 || (creation > 0 && int64(secs) > math.MaxInt64-creation) {
		return math.MaxInt64
	}
	return creation + int64(secs)
}

// Validate checks that the configuration can drive a ledger.
func (c Config) Validate() error {
	if c.TicksPerSlot == 0 {
		return fmt.Errorf("%w: ticks_per_slot must be positive", ErrInvalidConfig)
	}
	if c.TargetTickDuration <= 0 {
		return fmt.Errorf("%w: target_tick_duration must be positive", ErrInvalidConfig)
	}
	if c.SlotsPerEpoch == 0 {
		return fmt.Errorf("%w: slots_per_epoch must be positive", ErrInvalidConfig)
	}
	if c.CreationTime.IsZero() {
		return fmt.Errorf("%w: creation_time is required", ErrInvalidConfig)
	}
	if c.Rent.ExemptionThreshold < 0 {
		return fmt.Errorf("%w: rent exemption_threshold must not be negative", ErrInvalidConfig)
	}
	if c.Rent.BurnPercent > 100 {
		return fmt.Errorf("%w: rent burn_percent must be at most 100", ErrInvalidConfig)
	}
	return nil
}
