package account

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
)

func TestNewIsEmpty(t *testing.T) {
	a := New()
	assert.True(t, a.IsEmpty())
	assert.Equal(t, solana.SystemProgramID, a.Owner)

	a.Lamports = 1
	assert.False(t, a.IsEmpty())
}

func TestClone(t *testing.T) {
	a := &Account{Owner: solana.TokenProgramID, Lamports: 10, Data: []byte{1, 2, 3}}
	c := a.Clone()

	assert.True(t, a.Equal(c))

	c.Data[0] = 9
	assert.Equal(t, byte(1), a.Data[0], "clone must not share data")
	assert.False(t, a.Equal(c))
}

func TestEqualNil(t *testing.T) {
	var a *Account
	assert.True(t, a.Equal(nil))
	assert.False(t, New().Equal(nil))
}
