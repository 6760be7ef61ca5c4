package record

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
)

type borshCodec struct{}

func (borshCodec) Name() string { return "borsh" }

func (borshCodec) Encode(v any) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := bin.NewBorshEncoder(buf).Encode(v); err != nil {
		return nil, fmt.Errorf("borsh encode %T: %w", v, err)
	}
	return buf.Bytes(), nil
}

// Decode rejects trailing bytes so that a payload of another, longer type
// does not silently decode.
func (borshCodec) Decode(data []byte, v any) error {
	dec := bin.NewBorshDecoder(data)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrDeserialize, err)
	}
	if rem := dec.Remaining(); rem != 0 {
		return fmt.Errorf("%w: %d trailing bytes after %T", ErrDeserialize, rem, v)
	}
	return nil
}
