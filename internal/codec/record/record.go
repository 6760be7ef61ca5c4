// Package record maps typed account records to raw account data and back.
//
// Three encodings are supported, each a Codec:
//
//   - Packed: fixed-layout records with a statically known length
//   - Borsh: schema-driven binary serialization
//   - Anchor: Borsh prefixed with an 8-byte type discriminator
//
// Callers pick the codec at the call site:
//
//	data, err := record.Encode(record.Borsh, state)
//	state, err := record.Decode[MyState](record.Borsh, data)
package record

import (
	"errors"
	"fmt"
)

var (
	// ErrDeserialize is returned when bytes do not match the expected schema.
	ErrDeserialize = errors.New("failed to deserialize account data")

	// ErrUnexpectedDiscriminator is returned when tagged data carries the
	// discriminator of a different type.
	ErrUnexpectedDiscriminator = errors.New("unexpected account discriminator")

	// ErrUnsupportedValue is returned when a value does not implement the
	// interface a codec needs.
	ErrUnsupportedValue = errors.New("value not supported by codec")
)

// Codec converts between typed records and account data.
type Codec interface {
	// Name identifies the encoding.
	Name() string

	// Encode serializes v.
	Encode(v any) ([]byte, error)

	// Decode deserializes data into v, which must be a pointer.
	Decode(data []byte, v any) error
}

// The supported codecs.
var (
	Packed Codec = packedCodec{}
	Borsh  Codec = borshCodec{}
	Anchor Codec = anchorCodec{}
)

// Encode serializes v with c.
func Encode[T any](c Codec, v T) ([]byte, error) {
	return c.Encode(v)
}

// MustEncode serializes v with c and panics on failure. It is meant for test
// setup, where a record that cannot be encoded is a programming error.
func MustEncode[T any](c Codec, v T) []byte {
	data, err := c.Encode(v)
	if err != nil {
		panic(fmt.Sprintf("cannot encode %T with %s codec: %v", v, c.Name(), err))
	}
	return data
}

// Decode deserializes data into a new T with c.
func Decode[T any](c Codec, data []byte) (T, error) {
	var v T
	err := c.Decode(data, &v)
	return v, err
}
