package bank

import (
	"errors"
	"fmt"
)

var (
	ErrNotStarted              = errors.New("bank has not started")
	ErrAlreadyStarted          = errors.New("bank has already started")
	ErrBlockhashNotFound       = errors.New("blockhash not found")
	ErrAlreadyProcessed        = errors.New("transaction has already been processed")
	ErrInvalidWarpSlot         = errors.New("warp slot must be greater than the current slot")
	ErrSignatureFailure        = errors.New("transaction signature verification failure")
	ErrSanitizeFailure         = errors.New("transaction failed to sanitize accounts offsets correctly")
	ErrAccountNotFound         = errors.New("attempt to debit an account but found no record of a prior credit")
	ErrInsufficientFundsForFee = errors.New("insufficient funds for fee")
	ErrUnbalancedTransaction   = errors.New("sum of account balances before and after transaction do not match")
)

// TransactionError reports the failure of one instruction of a
// transaction. Index is -1 for failures detected after all instructions
// ran.
type TransactionError struct {
	Index int
	Err   error
}

func (e *TransactionError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("transaction failed: %v", e.Err)
	}
	return fmt.Sprintf("transaction failed: error processing instruction %d: %v", e.Index, e.Err)
}

func (e *TransactionError) Unwrap() error { return e.Err }
