package programtest

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/programtest/internal/banks"
	"github.com/LeJamon/programtest/internal/banks/mock"
	"github.com/LeJamon/programtest/internal/core/genesis"
	"github.com/LeJamon/programtest/internal/core/sysvar"
)

func TestSlotsForDuration(t *testing.T) {
	tests := []struct {
		name            string
		current, target int64
		nsPerSlot       uint64
		want            uint64
	}{
		{"one hour", 0, 3600, 400_000_000, 9000},
		{"one second", 100, 101, 400_000_000, 2},
		{"equal", 5, 5, 400_000_000, 0},
		{"backwards", 10, 5, 400_000_000, 0},
		{"zero slot length", 0, 10, 0, 0},
		{"shorter than a slot", 0, 1, 3_200_000_000, 0},
		{"uneven", 0, 10, 3, 3_333_333_333},
		{"negative timestamps", -20, -10, 1_000_000_000, 10},
		{"saturates", 0, 1 << 40, 1, math.MaxUint64},
		{"full range", math.MinInt64, math.MaxInt64, 1, math.MaxUint64},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SlotsForDuration(tt.current, tt.target, tt.nsPerSlot))
		})
	}
}

func TestWarpToTimestamp(t *testing.T) {
	ctx := context.Background()
	env := start(t, New())

	before, err := env.Banks.GetClock(ctx)
	require.NoError(t, err)
	hashBefore, err := env.LatestBlockhash(ctx)
	require.NoError(t, err)

	target := before.UnixTimestamp + 3600
	require.NoError(t, env.WarpToTimestamp(ctx, target))

	after, err := env.Banks.GetClock(ctx)
	require.NoError(t, err)
	assert.Equal(t, before.Slot+9000, after.Slot)
	assert.GreaterOrEqual(t, after.UnixTimestamp, target)
	RequireClockAtLeast(t, env, target)

	hashAfter, err := env.LatestBlockhash(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, hashBefore, hashAfter)
}

func TestWarpToTimestampRejectsPast(t *testing.T) {
	ctx := context.Background()
	env := start(t, New())
	before, err := env.Banks.GetClock(ctx)
	require.NoError(t, err)

	for _, target := range []int64{before.UnixTimestamp, before.UnixTimestamp - 60} {
		err := env.WarpToTimestamp(ctx, target)
		require.ErrorIs(t, err, ErrInvalidWarpSlot)
	}

	after, err := env.Banks.GetClock(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestWarpToTimestampWithinOneSlot(t *testing.T) {
	ctx := context.Background()
	cfg := genesis.DefaultConfig()
	cfg.TargetTickDuration = 50 * time.Millisecond
	env := start(t, New(WithGenesis(cfg)))

	before, err := env.Banks.GetClock(ctx)
	require.NoError(t, err)
	require.NoError(t, env.WarpToTimestamp(ctx, before.UnixTimestamp+1))

	after, err := env.Banks.GetClock(ctx)
	require.NoError(t, err)
	assert.Equal(t, before.Slot, after.Slot)
	assert.Equal(t, before.UnixTimestamp+1, after.UnixTimestamp)
}

func TestWarpToSlot(t *testing.T) {
	ctx := context.Background()
	env := start(t, New())

	require.NoError(t, env.WarpToSlot(ctx, 100))
	clock, err := env.Banks.GetClock(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), clock.Slot)

	err = env.WarpToSlot(ctx, 100)
	require.ErrorIs(t, err, ErrInvalidWarpSlot)
	var ce *banks.ClientError
	require.ErrorAs(t, err, &ce)
}

func TestWarpToTimestampIterative(t *testing.T) {
	ctx := context.Background()
	env := start(t, New())
	before, err := env.Banks.GetClock(ctx)
	require.NoError(t, err)

	target := before.UnixTimestamp + 10
	require.NoError(t, env.WarpToTimestampIterative(ctx, target, 0))

	after, err := env.Banks.GetClock(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, after.UnixTimestamp, target)
	// 400ms slots: 26 slots is the first even count covering 10 seconds.
	assert.Equal(t, before.Slot+26, after.Slot)

	// Already there: nothing moves.
	require.NoError(t, env.WarpToTimestampIterative(ctx, target, 1))
	again, err := env.Banks.GetClock(ctx)
	require.NoError(t, err)
	assert.Equal(t, after, again)
}

func TestWarpToTimestampIterativeBudget(t *testing.T) {
	ctx := context.Background()
	env := start(t, New())
	before, err := env.Banks.GetClock(ctx)
	require.NoError(t, err)

	err = env.WarpToTimestampIterative(ctx, before.UnixTimestamp+3600, 3)
	require.ErrorIs(t, err, ErrWarpStalled)

	after, err := env.Banks.GetClock(ctx)
	require.NoError(t, err)
	assert.Equal(t, before.Slot+3*IterativeWarpStep, after.Slot)
}

func TestWarpWithMocks(t *testing.T) {
	ctx := context.Background()
	clock := sysvar.Clock{Slot: 10, UnixTimestamp: 1_000}
	boom := errors.New("unavailable")

	setup := func(t *testing.T) (*mock.MockClient, *mock.MockWarper, *Context) {
		ctrl := gomock.NewController(t)
		t.Cleanup(ctrl.Finish)
		client := mock.NewMockClient(ctrl)
		warper := mock.NewMockWarper(ctrl)
		return client, warper, NewContext(client, warper, NewKeypair("payer"), genesis.DefaultConfig())
	}

	t.Run("computed", func(t *testing.T) {
		client, warper, env := setup(t)
		want := clock
		want.UnixTimestamp = 1_060
		gomock.InOrder(
			client.EXPECT().GetClock(gomock.Any()).Return(clock, nil),
			warper.EXPECT().SetClock(gomock.Any(), want).Return(nil),
			warper.EXPECT().WarpToSlot(gomock.Any(), uint64(160)).Return(nil),
		)
		require.NoError(t, env.WarpToTimestamp(ctx, 1_060))
	})

	t.Run("slot jump error restores the clock", func(t *testing.T) {
		client, warper, env := setup(t)
		want := clock
		want.UnixTimestamp = 1_060
		gomock.InOrder(
			client.EXPECT().GetClock(gomock.Any()).Return(clock, nil),
			warper.EXPECT().SetClock(gomock.Any(), want).Return(nil),
			warper.EXPECT().WarpToSlot(gomock.Any(), uint64(160)).Return(boom),
			warper.EXPECT().SetClock(gomock.Any(), clock).Return(nil),
		)

		err := env.WarpToTimestamp(ctx, 1_060)
		require.ErrorIs(t, err, boom)
		var ce *banks.ClientError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, "warp to slot", ce.Op)
	})

	t.Run("failed restore reports both errors", func(t *testing.T) {
		client, warper, env := setup(t)
		lost := errors.New("connection reset")
		gomock.InOrder(
			client.EXPECT().GetClock(gomock.Any()).Return(clock, nil),
			warper.EXPECT().SetClock(gomock.Any(), gomock.Any()).Return(nil),
			warper.EXPECT().WarpToSlot(gomock.Any(), uint64(160)).Return(boom),
			warper.EXPECT().SetClock(gomock.Any(), clock).Return(lost),
		)

		err := env.WarpToTimestamp(ctx, 1_060)
		require.ErrorIs(t, err, boom)
		require.ErrorIs(t, err, lost)
		assert.Contains(t, err.Error(), "restore clock")
	})

	t.Run("clock error", func(t *testing.T) {
		client, _, env := setup(t)
		client.EXPECT().GetClock(gomock.Any()).Return(sysvar.Clock{}, boom)

		err := env.WarpToTimestamp(ctx, 2_000)
		require.ErrorIs(t, err, boom)
		var ce *banks.ClientError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, "get clock", ce.Op)
	})

	t.Run("set clock error stops the warp", func(t *testing.T) {
		client, warper, env := setup(t)
		client.EXPECT().GetClock(gomock.Any()).Return(clock, nil)
		warper.EXPECT().SetClock(gomock.Any(), gomock.Any()).Return(boom)

		require.ErrorIs(t, env.WarpToTimestamp(ctx, 2_000), boom)
	})

	t.Run("slot overflow", func(t *testing.T) {
		client, _, env := setup(t)
		client.EXPECT().GetClock(gomock.Any()).Return(sysvar.Clock{Slot: math.MaxUint64 - 1}, nil)

		require.ErrorIs(t, env.WarpToTimestamp(ctx, 3600), ErrInvalidWarpSlot)
	})

	t.Run("iterative stuck slot", func(t *testing.T) {
		client, warper, env := setup(t)
		client.EXPECT().GetClock(gomock.Any()).Return(clock, nil).Times(2)
		warper.EXPECT().WarpToSlot(gomock.Any(), clock.Slot+IterativeWarpStep).Return(nil)

		err := env.WarpToTimestampIterative(ctx, 2_000, 10)
		require.ErrorIs(t, err, ErrWarpStalled)
	})

	t.Run("iterative stuck timestamp", func(t *testing.T) {
		client, warper, env := setup(t)
		moved := clock
		moved.Slot += IterativeWarpStep
		gomock.InOrder(
			client.EXPECT().GetClock(gomock.Any()).Return(clock, nil),
			warper.EXPECT().WarpToSlot(gomock.Any(), moved.Slot).Return(nil),
			client.EXPECT().GetClock(gomock.Any()).Return(moved, nil),
		)

		err := env.WarpToTimestampIterative(ctx, 2_000, 0)
		require.ErrorIs(t, err, ErrWarpStalled)
		assert.Contains(t, err.Error(), "timestamp stuck")
	})

	t.Run("iterative waits out a pinned timestamp", func(t *testing.T) {
		client, warper, env := setup(t)
		pinned := env.Genesis.CreationTime.Unix() + 100
		from := sysvar.Clock{Slot: 10, UnixTimestamp: pinned}
		flat := sysvar.Clock{Slot: 12, UnixTimestamp: pinned}
		done := sysvar.Clock{Slot: 14, UnixTimestamp: pinned + 1}
		gomock.InOrder(
			client.EXPECT().GetClock(gomock.Any()).Return(from, nil),
			warper.EXPECT().WarpToSlot(gomock.Any(), uint64(12)).Return(nil),
			client.EXPECT().GetClock(gomock.Any()).Return(flat, nil),
			warper.EXPECT().WarpToSlot(gomock.Any(), uint64(14)).Return(nil),
			client.EXPECT().GetClock(gomock.Any()).Return(done, nil),
		)

		require.NoError(t, env.WarpToTimestampIterative(ctx, pinned+1, 10))
	})

	t.Run("iterative warp error", func(t *testing.T) {
		client, warper, env := setup(t)
		client.EXPECT().GetClock(gomock.Any()).Return(clock, nil)
		warper.EXPECT().WarpToSlot(gomock.Any(), gomock.Any()).Return(boom)

		err := env.WarpToTimestampIterative(ctx, 2_000, 10)
		require.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, ErrWarpStalled)
	})
}
