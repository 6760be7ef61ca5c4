package record

import (
	"crypto/sha256"
	"fmt"
)

// DiscriminatorSize is the length of an account type tag.
const DiscriminatorSize = 8

// Discriminator tags the type of a framework-serialized account.
type Discriminator [DiscriminatorSize]byte

// Discriminated is implemented by records serialized with a type tag.
type Discriminated interface {
	Discriminator() Discriminator
}

// AccountDiscriminator returns the tag of the account type called name.
func AccountDiscriminator(name string) Discriminator {
	sum := sha256.Sum256([]byte("account:" + name))
	var d Discriminator
	copy(d[:], sum[:DiscriminatorSize])
	return d
}

type anchorCodec struct{}

func (anchorCodec) Name() string { return "anchor" }

func (anchorCodec) Encode(v any) ([]byte, error) {
	d, ok := v.(Discriminated)
	if !ok {
		return nil, fmt.Errorf("%w: %T has no discriminator", ErrUnsupportedValue, v)
	}
	payload, err := Borsh.Encode(v)
	if err != nil {
		return nil, err
	}
	disc := d.Discriminator()
	out := make([]byte, 0, DiscriminatorSize+len(payload))
	out = append(out, disc[:]...)
	return append(out, payload...), nil
}

// Decode validates the discriminator before decoding the payload.
func (anchorCodec) Decode(data []byte, v any) error {
	d, ok := v.(Discriminated)
	if !ok {
		return fmt.Errorf("%w: %T has no discriminator", ErrUnsupportedValue, v)
	}
	if len(data) < DiscriminatorSize {
		return fmt.Errorf("%w: %d bytes is shorter than the discriminator", ErrDeserialize, len(data))
	}
	want := d.Discriminator()
	var got Discriminator
	copy(got[:], data[:DiscriminatorSize])
	if got != want {
		return fmt.Errorf("%w: expected %x, got %x", ErrUnexpectedDiscriminator, want[:], got[:])
	}
	return Borsh.Decode(data[DiscriminatorSize:], v)
}
