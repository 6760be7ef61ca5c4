package accountstore

import (
	"bytes"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/programtest/internal/core/account"
)

func openStores(t *testing.T) map[string]Store {
	t.Helper()
	mem, err := Open(Config{Backend: "memory"})
	require.NoError(t, err)

	disk, err := Open(Config{Backend: "pebble", Path: t.TempDir(), CacheSize: 2, Compress: true})
	require.NoError(t, err)

	stores := map[string]Store{"memory": mem, "pebble": disk}
	t.Cleanup(func() {
		for _, s := range stores {
			_ = s.Close()
		}
	})
	return stores
}

func sample(size int) *account.Account {
	return &account.Account{
		Owner:     solana.TokenProgramID,
		Lamports:  2039280,
		Data:      bytes.Repeat([]byte{0xAB, 0x01}, size/2),
		RentEpoch: 7,
	}
}

func TestStoreRoundTrip(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			key := solana.NewWallet().PublicKey()
			_, err := s.Get(key)
			require.ErrorIs(t, err, ErrNotFound)

			want := sample(4096)
			require.NoError(t, s.Put(key, want))

			got, err := s.Get(key)
			require.NoError(t, err)
			assert.True(t, want.Equal(got), "got %s", got)

			got.Lamports = 1
			again, err := s.Get(key)
			require.NoError(t, err)
			assert.Equal(t, want.Lamports, again.Lamports, "stored record must not alias returned copies")

			require.NoError(t, s.Delete(key))
			_, err = s.Get(key)
			require.ErrorIs(t, err, ErrNotFound)
			require.NoError(t, s.Delete(key))
		})
	}
}

func TestStoreForEachOrdered(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			keys := make([]solana.PublicKey, 5)
			for i := range keys {
				keys[i] = solana.NewWallet().PublicKey()
				require.NoError(t, s.Put(keys[i], &account.Account{Owner: keys[i], Lamports: uint64(i)}))
			}

			var seen []solana.PublicKey
			require.NoError(t, s.ForEach(func(k solana.PublicKey, a *account.Account) error {
				assert.Equal(t, k, a.Owner)
				seen = append(seen, k)
				return nil
			}))
			require.Len(t, seen, len(keys))
			for i := 1; i < len(seen); i++ {
				assert.Negative(t, bytes.Compare(seen[i-1][:], seen[i][:]))
			}

			stop := errors.New("stop")
			calls := 0
			err := s.ForEach(func(solana.PublicKey, *account.Account) error {
				calls++
				return stop
			})
			require.ErrorIs(t, err, stop)
			assert.Equal(t, 1, calls)
		})
	}
}

func TestStoreClosed(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Close())
			require.NoError(t, s.Close())

			key := solana.NewWallet().PublicKey()
			_, err := s.Get(key)
			require.ErrorIs(t, err, ErrClosed)
			require.ErrorIs(t, s.Put(key, sample(0)), ErrClosed)

			var serr *StoreError
			require.ErrorAs(t, s.Delete(key), &serr)
			assert.Equal(t, "delete", serr.Op)
		})
	}
}

func TestPebbleSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	key := solana.NewWallet().PublicKey()
	want := sample(1024)

	s, err := NewPebble(Config{Path: dir, Compress: true})
	require.NoError(t, err)
	require.NoError(t, s.Put(key, want))
	require.NoError(t, s.Close())

	s, err = NewPebble(Config{Path: dir})
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Get(key)
	require.NoError(t, err)
	assert.True(t, want.Equal(got))
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open(Config{Backend: "tape"})
	require.ErrorIs(t, err, ErrUnsupportedBackend)
	assert.Equal(t, []string{"memory", "pebble"}, AvailableBackends())
}

func TestNewPebbleRequiresPath(t *testing.T) {
	_, err := NewPebble(Config{})
	require.Error(t, err)
}

func TestRecordEncoding(t *testing.T) {
	tests := []struct {
		name           string
		acct           *account.Account
		compress       bool
		wantCompressed bool
	}{
		{"empty", &account.Account{Owner: solana.SystemProgramID, Lamports: 1}, true, false},
		{"small data", sample(64), true, false},
		{"large repetitive data", sample(8192), true, true},
		{"compression disabled", sample(8192), false, false},
		{"executable", &account.Account{Owner: solana.NewWallet().PublicKey(), Executable: true, Data: []byte{1, 2, 3}}, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := encodeRecord(tt.acct, tt.compress)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCompressed, raw[recordHeaderSize-5] == 1)
			if tt.wantCompressed {
				assert.Less(t, len(raw), recordHeaderSize+len(tt.acct.Data))
			}

			got, err := decodeRecord(raw)
			require.NoError(t, err)
			assert.True(t, tt.acct.Equal(got), "got %s", got)
		})
	}
}

func TestDecodeRecordCorrupt(t *testing.T) {
	raw, err := encodeRecord(sample(64), false)
	require.NoError(t, err)

	_, err = decodeRecord(raw[:recordHeaderSize-1])
	require.ErrorIs(t, err, ErrDataCorrupt)

	_, err = decodeRecord(raw[:len(raw)-1])
	require.ErrorIs(t, err, ErrDataCorrupt)
}
