package record

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pair struct {
	A uint32
	B uint64
}

func (pair) PackedLen() int { return 12 }

func (p pair) PackInto(dst []byte) {
	binary.LittleEndian.PutUint32(dst[0:4], p.A)
	binary.LittleEndian.PutUint64(dst[4:12], p.B)
}

func (p *pair) UnpackFrom(src []byte) error {
	p.A = binary.LittleEndian.Uint32(src[0:4])
	p.B = binary.LittleEndian.Uint64(src[4:12])
	if p.A == 0xFFFFFFFF {
		return errors.New("reserved value")
	}
	return nil
}

// overflowing declares 4 bytes but writes 8.
type overflowing struct{}

func (overflowing) PackedLen() int { return 4 }

func (overflowing) PackInto(dst []byte) {
	binary.LittleEndian.PutUint64(dst[0:8], 1)
}

type gameState struct {
	Authority solana.PublicKey
	Score     uint64
	Name      string
	Active    bool
}

type counter struct {
	Authority solana.PublicKey
	Count     uint64
}

func (counter) Discriminator() Discriminator { return AccountDiscriminator("Counter") }

// lookalike has the same layout as counter under a different name.
type lookalike struct {
	Authority solana.PublicKey
	Count     uint64
}

func (lookalike) Discriminator() Discriminator { return AccountDiscriminator("Lookalike") }

func TestPackedRoundTrip(t *testing.T) {
	in := pair{A: 7, B: 1 << 40}

	data, err := Encode(Packed, in)
	require.NoError(t, err)
	require.Len(t, data, 12)

	out, err := Decode[pair](Packed, data)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestPackedLengthMismatch(t *testing.T) {
	_, err := Decode[pair](Packed, make([]byte, 11))
	require.ErrorIs(t, err, ErrDeserialize)

	_, err = Decode[pair](Packed, make([]byte, 13))
	require.ErrorIs(t, err, ErrDeserialize)
}

func TestPackedRejectedBytes(t *testing.T) {
	data := Pack(pair{A: 0xFFFFFFFF})
	_, err := Decode[pair](Packed, data)
	require.ErrorIs(t, err, ErrDeserialize)
}

func TestPackedOverflowPanics(t *testing.T) {
	require.Panics(t, func() { Pack(overflowing{}) })
}

func TestPackedUnsupported(t *testing.T) {
	_, err := Packed.Encode(gameState{})
	require.ErrorIs(t, err, ErrUnsupportedValue)
}

func TestBorshRoundTrip(t *testing.T) {
	in := gameState{
		Authority: solana.NewWallet().PublicKey(),
		Score:     42,
		Name:      "level-1",
		Active:    true,
	}

	data, err := Encode(Borsh, in)
	require.NoError(t, err)
	// 32 + 8 + (4 + 7) + 1
	assert.Len(t, data, 52)

	out, err := Decode[gameState](Borsh, data)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestBorshSchemaMismatch(t *testing.T) {
	data := MustEncode(Borsh, counter{Count: 3})

	// Too short for gameState.
	_, err := Decode[gameState](Borsh, data)
	require.ErrorIs(t, err, ErrDeserialize)

	// Trailing bytes are rejected.
	_, err = Decode[counter](Borsh, append(data, 0))
	require.ErrorIs(t, err, ErrDeserialize)
}

func TestAnchorRoundTrip(t *testing.T) {
	in := counter{Authority: solana.NewWallet().PublicKey(), Count: 99}

	data, err := Encode(Anchor, in)
	require.NoError(t, err)
	require.Len(t, data, DiscriminatorSize+40)

	disc := AccountDiscriminator("Counter")
	assert.Equal(t, disc[:], data[:DiscriminatorSize])

	out, err := Decode[counter](Anchor, data)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestAnchorWrongDiscriminator(t *testing.T) {
	data := MustEncode(Anchor, counter{Count: 1})

	_, err := Decode[lookalike](Anchor, data)
	require.ErrorIs(t, err, ErrUnexpectedDiscriminator)
	assert.False(t, errors.Is(err, ErrDeserialize))
}

func TestAnchorShortData(t *testing.T) {
	_, err := Decode[counter](Anchor, []byte{1, 2, 3})
	require.ErrorIs(t, err, ErrDeserialize)
}

func TestAnchorRequiresDiscriminator(t *testing.T) {
	_, err := Anchor.Encode(gameState{})
	require.ErrorIs(t, err, ErrUnsupportedValue)
	require.Panics(t, func() { MustEncode(Anchor, gameState{}) })
}

func TestAccountDiscriminator(t *testing.T) {
	assert.Equal(t, AccountDiscriminator("Counter"), AccountDiscriminator("Counter"))
	assert.NotEqual(t, AccountDiscriminator("Counter"), AccountDiscriminator("Lookalike"))
}
