package programtest

import (
	"crypto/ed25519"
	"crypto/sha512"

	"github.com/gagliardetto/solana-go"
)

// NewKeypair returns a keypair derived from name. The same name always
// yields the same keypair, which keeps addresses stable across test runs.
func NewKeypair(name string) solana.PrivateKey {
	hash := sha512.Sum512([]byte(name))
	return solana.PrivateKey(ed25519.NewKeyFromSeed(hash[:ed25519.SeedSize]))
}

// NewRandomKeypair returns a fresh keypair. It panics if the system random
// source fails.
func NewRandomKeypair() solana.PrivateKey {
	key, err := solana.NewRandomPrivateKey()
	if err != nil {
		panic("failed to generate keypair: " + err.Error())
	}
	return key
}

// signerSet resolves public keys to the private keys that may sign.
type signerSet []solana.PrivateKey

func (s signerSet) get(key solana.PublicKey) *solana.PrivateKey {
	for i := range s {
		if s[i].PublicKey().Equals(key) {
			return &s[i]
		}
	}
	return nil
}
