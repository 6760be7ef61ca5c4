package token

import "errors"

// Token program errors.
var (
	ErrNotRentExempt     = errors.New("token: lamport balance below rent-exempt threshold")
	ErrInsufficientFunds = errors.New("token: insufficient funds")
	ErrInvalidMint       = errors.New("token: invalid mint")
	ErrMintMismatch      = errors.New("token: account not associated with this mint")
	ErrOwnerMismatch     = errors.New("token: owner does not match")
	ErrFixedSupply       = errors.New("token: fixed supply, token mint cannot mint additional tokens")
	ErrAccountFrozen     = errors.New("token: account is frozen")
	ErrOverflow          = errors.New("token: operation overflowed")
)
