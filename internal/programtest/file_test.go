package programtest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddAccountWithFileData(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.bin")
	content := []byte{0xde, 0xad, 0xbe, 0xef, 0x01}
	require.NoError(t, os.WriteFile(path, content, 0o600))

	pt := New()
	addr := NewKeypair("from-file").PublicKey()
	owner := NewKeypair("program").PublicKey()
	pt.AddAccountWithFileData(addr, owner, path, true)
	env := start(t, pt)

	acct, err := GetAccount(context.Background(), env.Banks, addr)
	require.NoError(t, err)
	assert.Equal(t, content, acct.Data)
	assert.True(t, acct.Executable)
	assert.Equal(t, owner, acct.Owner)
	assert.Equal(t, env.Genesis.Rent.MinimumBalance(len(content)), acct.Lamports)
}

func TestReadAccountDataErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := ReadAccountData(filepath.Join(dir, "missing.bin"))
	require.ErrorIs(t, err, os.ErrNotExist)

	_, err = ReadAccountData(dir)
	require.ErrorContains(t, err, "is a directory")

	addr := NewKeypair("from-file").PublicKey()
	require.Panics(t, func() {
		New().AddAccountWithFileData(addr, addr, filepath.Join(dir, "missing.bin"), false)
	})
}
