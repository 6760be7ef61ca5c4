package record

import "fmt"

// Packer is implemented by fixed-layout records.
type Packer interface {
	// PackedLen returns the exact serialized size.
	PackedLen() int

	// PackInto writes the record into dst, which is exactly PackedLen bytes.
	PackInto(dst []byte)
}

// Unpacker is implemented by pointers to fixed-layout records.
type Unpacker interface {
	PackedLen() int

	// UnpackFrom reads the record from src, which is exactly PackedLen bytes.
	UnpackFrom(src []byte) error
}

// Packable is a record that can be both packed and unpacked.
type Packable interface {
	Packer
	Unpacker
}

type packedCodec struct{}

func (packedCodec) Name() string { return "packed" }

// Encode panics if the record writes outside its declared length.
func (packedCodec) Encode(v any) ([]byte, error) {
	p, ok := v.(Packer)
	if !ok {
		return nil, fmt.Errorf("%w: %T is not packable", ErrUnsupportedValue, v)
	}
	return Pack(p), nil
}

func (packedCodec) Decode(data []byte, v any) error {
	u, ok := v.(Unpacker)
	if !ok {
		return fmt.Errorf("%w: %T is not unpackable", ErrUnsupportedValue, v)
	}
	return Unpack(data, u)
}

// Pack serializes p into a buffer of exactly p.PackedLen() bytes. A record
// that writes past its declared length panics.
func Pack(p Packer) []byte {
	buf := make([]byte, p.PackedLen())
	p.PackInto(buf)
	return buf
}

// Unpack deserializes data into u after checking its length.
func Unpack(data []byte, u Unpacker) error {
	if len(data) != u.PackedLen() {
		return fmt.Errorf("%w: %T expects %d bytes, got %d", ErrDeserialize, u, u.PackedLen(), len(data))
	}
	if err := u.UnpackFrom(data); err != nil {
		return fmt.Errorf("%w: %v", ErrDeserialize, err)
	}
	return nil
}
