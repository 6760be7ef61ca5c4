package accountstore

import (
	"bytes"
	"encoding/binary"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/pierrec/lz4"

	"github.com/LeJamon/programtest/internal/core/account"
)

const (
	// owner + lamports + rent epoch + executable + compressed + raw data length
	recordHeaderSize = 32 + 8 + 8 + 1 + 1 + 4

	// Data shorter than this is stored as is.
	minCompressionSize = 128
)

// encodeRecord serializes acct for storage, compressing its data when that
// saves space.
func encodeRecord(acct *account.Account, compress bool) ([]byte, error) {
	payload, compressed := acct.Data, false
	if compress && len(acct.Data) >= minCompressionSize {
		buf := make([]byte, lz4.CompressBlockBound(len(acct.Data)))
		n, err := lz4.CompressBlock(acct.Data, buf, nil)
		if err != nil {
			return nil, fmt.Errorf("lz4 compression failed: %w", err)
		}
		// n == 0 means the data is incompressible.
		if n > 0 && n < len(acct.Data) {
			payload, compressed = buf[:n], true
		}
	}

	out := bytes.NewBuffer(make([]byte, 0, recordHeaderSize+len(payload)))
	enc := bin.NewBinEncoder(out)
	_ = enc.WriteBytes(acct.Owner[:], false)
	_ = enc.WriteUint64(acct.Lamports, binary.LittleEndian)
	_ = enc.WriteUint64(acct.RentEpoch, binary.LittleEndian)
	_ = enc.WriteBool(acct.Executable)
	_ = enc.WriteBool(compressed)
	_ = enc.WriteUint32(uint32(len(acct.Data)), binary.LittleEndian)
	_ = enc.WriteBytes(payload, false)
	return out.Bytes(), nil
}

// decodeRecord is the inverse of encodeRecord.
func decodeRecord(raw []byte) (*account.Account, error) {
	if len(raw) < recordHeaderSize {
		return nil, fmt.Errorf("%w: record of %d bytes", ErrDataCorrupt, len(raw))
	}
	dec := bin.NewBinDecoder(raw)
	acct := &account.Account{}

	owner, err := dec.ReadNBytes(solana.PublicKeyLength)
	if err != nil {
		return nil, fmt.Errorf("%w: owner: %v", ErrDataCorrupt, err)
	}
	acct.Owner = solana.PublicKeyFromBytes(owner)
	if acct.Lamports, err = dec.ReadUint64(binary.LittleEndian); err != nil {
		return nil, fmt.Errorf("%w: lamports: %v", ErrDataCorrupt, err)
	}
	if acct.RentEpoch, err = dec.ReadUint64(binary.LittleEndian); err != nil {
		return nil, fmt.Errorf("%w: rent epoch: %v", ErrDataCorrupt, err)
	}
	if acct.Executable, err = dec.ReadBool(); err != nil {
		return nil, fmt.Errorf("%w: executable: %v", ErrDataCorrupt, err)
	}
	compressed, err := dec.ReadBool()
	if err != nil {
		return nil, fmt.Errorf("%w: compressed flag: %v", ErrDataCorrupt, err)
	}
	rawLen, err := dec.ReadUint32(binary.LittleEndian)
	if err != nil {
		return nil, fmt.Errorf("%w: data length: %v", ErrDataCorrupt, err)
	}
	if rawLen > account.MaxPermittedDataLength {
		return nil, fmt.Errorf("%w: data length %d", ErrDataCorrupt, rawLen)
	}
	payload := raw[recordHeaderSize:]

	if !compressed {
		if len(payload) != int(rawLen) {
			return nil, fmt.Errorf("%w: expected %d data bytes, got %d", ErrDataCorrupt, rawLen, len(payload))
		}
		if rawLen > 0 {
			acct.Data = append([]byte(nil), payload...)
		}
		return acct, nil
	}

	data := make([]byte, rawLen)
	n, err := lz4.UncompressBlock(payload, data)
	if err != nil {
		return nil, fmt.Errorf("%w: lz4: %v", ErrDataCorrupt, err)
	}
	if n != int(rawLen) {
		return nil, fmt.Errorf("%w: decompressed %d bytes, expected %d", ErrDataCorrupt, n, rawLen)
	}
	acct.Data = data
	return acct, nil
}
