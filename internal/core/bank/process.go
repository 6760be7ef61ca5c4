package bank

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/LeJamon/programtest/internal/core/account"
	"github.com/LeJamon/programtest/internal/core/invoke"
	"github.com/LeJamon/programtest/internal/core/sysvar"
)

// ProcessTransaction verifies, executes and commits tx. The fee is charged
// even when an instruction fails; all other changes of a failed transaction
// are discarded.
func (b *Bank) ProcessTransaction(ctx context.Context, tx *solana.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.started {
		return ErrNotStarted
	}
	if err := sanitize(tx); err != nil {
		return err
	}
	if _, ok := b.recent[tx.Message.RecentBlockhash]; !ok {
		return fmt.Errorf("%w: %s", ErrBlockhashNotFound, tx.Message.RecentBlockhash)
	}
	sig := tx.Signatures[0]
	if _, ok := b.processed[sig]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyProcessed, sig)
	}
	if err := verifySignatures(tx); err != nil {
		return err
	}

	payerKey := tx.Message.AccountKeys[0]
	if err := b.chargeFee(payerKey, uint64(len(tx.Signatures))); err != nil {
		return err
	}
	b.processed[sig] = struct{}{}
	b.txCount++
	defer b.nextBlockhash(sig[:])

	log := b.log.With().Str("signature", sig.String()).Logger()

	ictx, err := b.loadAccounts(tx)
	if err != nil {
		return err
	}
	before := ictx.Snapshot()

	for i, ci := range tx.Message.Instructions {
		ix := resolve(ictx, &tx.Message, ci)
		program, ok := b.programs[ix.ProgramID]
		if !ok {
			err = fmt.Errorf("%w: %s", invoke.ErrUnsupportedProgramID, ix.ProgramID)
		} else {
			err = program.Process(ictx, ix)
		}
		if err != nil {
			log.Debug().Err(err).Int("instruction", i).Msg("transaction failed")
			return &TransactionError{Index: i, Err: err}
		}
	}

	after := ictx.Snapshot()
	if err := b.checkPostConditions(ictx, before, after); err != nil {
		log.Debug().Err(err).Msg("transaction failed post-execution checks")
		return &TransactionError{Index: -1, Err: err}
	}

	for _, key := range ictx.Writable() {
		acct := after[key]
		if acct.Lamports == 0 {
			err = b.store.Delete(key)
		} else {
			err = b.store.Put(key, acct)
		}
		if err != nil {
			return fmt.Errorf("commit %s: %w", key, err)
		}
	}

	log.Debug().
		Int("instructions", len(tx.Message.Instructions)).
		Uint64("tx_count", b.txCount).
		Msg("transaction committed")
	return nil
}

func sanitize(tx *solana.Transaction) error {
	if tx == nil {
		return fmt.Errorf("%w: nil transaction", ErrSanitizeFailure)
	}
	m := tx.Message
	h := m.Header
	switch {
	case len(m.AddressTableLookups) > 0:
		return fmt.Errorf("%w: address table lookups are not supported", ErrSanitizeFailure)
	case h.NumRequiredSignatures == 0:
		return fmt.Errorf("%w: no required signatures", ErrSanitizeFailure)
	case len(tx.Signatures) != int(h.NumRequiredSignatures):
		return fmt.Errorf("%w: %d signatures for %d signers", ErrSanitizeFailure, len(tx.Signatures), h.NumRequiredSignatures)
	case len(m.AccountKeys) < int(h.NumRequiredSignatures)+int(h.NumReadonlyUnsignedAccounts):
		return fmt.Errorf("%w: header exceeds %d account keys", ErrSanitizeFailure, len(m.AccountKeys))
	case h.NumReadonlySignedAccounts >= h.NumRequiredSignatures:
		return fmt.Errorf("%w: fee payer must be writable", ErrSanitizeFailure)
	}
	seen := make(map[solana.PublicKey]struct{}, len(m.AccountKeys))
	for _, k := range m.AccountKeys {
		if _, dup := seen[k]; dup {
			return fmt.Errorf("%w: duplicate account key %s", ErrSanitizeFailure, k)
		}
		seen[k] = struct{}{}
	}
	for i, ci := range m.Instructions {
		if int(ci.ProgramIDIndex) >= len(m.AccountKeys) || ci.ProgramIDIndex == 0 {
			return fmt.Errorf("%w: instruction %d program index %d", ErrSanitizeFailure, i, ci.ProgramIDIndex)
		}
		for _, a := range ci.Accounts {
			if int(a) >= len(m.AccountKeys) {
				return fmt.Errorf("%w: instruction %d account index %d", ErrSanitizeFailure, i, a)
			}
		}
	}
	return nil
}

func verifySignatures(tx *solana.Transaction) error {
	msg, err := tx.Message.MarshalBinary()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSanitizeFailure, err)
	}
	for i, sig := range tx.Signatures {
		if !sig.Verify(tx.Message.AccountKeys[i], msg) {
			return fmt.Errorf("%w: signer %s", ErrSignatureFailure, tx.Message.AccountKeys[i])
		}
	}
	return nil
}

func (b *Bank) chargeFee(payer solana.PublicKey, signatures uint64) error {
	acct, err := b.load(payer)
	if err != nil {
		return err
	}
	if acct == nil {
		return fmt.Errorf("%w: fee payer %s", ErrAccountNotFound, payer)
	}
	fee := b.cfg.LamportsPerSignature * signatures
	if acct.Lamports < fee {
		return fmt.Errorf("%w: %s has %d, fee is %d", ErrInsufficientFundsForFee, payer, acct.Lamports, fee)
	}
	acct.Lamports -= fee
	if acct.Lamports == 0 {
		return b.store.Delete(payer)
	}
	return b.store.Put(payer, acct)
}

// isWritable applies the message header layout: signed accounts come first,
// and the read-only ones close each group. Program and sysvar accounts are
// never writable.
func (b *Bank) isWritable(m *solana.Message, i int, invoked map[solana.PublicKey]bool) bool {
	h := m.Header
	key := m.AccountKeys[i]
	if invoked[key] || key.Equals(sysvar.ClockID) || key.Equals(sysvar.RentID) {
		return false
	}
	if _, builtin := b.programs[key]; builtin {
		return false
	}
	if i < int(h.NumRequiredSignatures) {
		return i < int(h.NumRequiredSignatures-h.NumReadonlySignedAccounts)
	}
	return i < len(m.AccountKeys)-int(h.NumReadonlyUnsignedAccounts)
}

func (b *Bank) loadAccounts(tx *solana.Transaction) (*invoke.Context, error) {
	m := &tx.Message
	invoked := make(map[solana.PublicKey]bool)
	for _, ci := range m.Instructions {
		invoked[m.AccountKeys[ci.ProgramIDIndex]] = true
	}

	ictx := invoke.NewContext(b.cfg.Rent, b.clock)
	for i, key := range m.AccountKeys {
		acct, err := b.load(key)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", key, err)
		}
		ictx.Load(key, acct, i < int(m.Header.NumRequiredSignatures), b.isWritable(m, i, invoked))
	}
	return ictx, nil
}

func resolve(ictx *invoke.Context, m *solana.Message, ci solana.CompiledInstruction) invoke.Instruction {
	ix := invoke.Instruction{
		ProgramID: m.AccountKeys[ci.ProgramIDIndex],
		Data:      ci.Data,
	}
	for _, idx := range ci.Accounts {
		key := m.AccountKeys[idx]
		ix.Accounts = append(ix.Accounts, invoke.AccountRef{
			Key:        key,
			IsSigner:   ictx.IsSigner(key),
			IsWritable: ictx.IsWritable(key),
		})
	}
	return ix
}

// checkPostConditions enforces rules that span the whole transaction:
// lamports are conserved and every data-bearing writable account is either
// closed or rent exempt.
func (b *Bank) checkPostConditions(ictx *invoke.Context, before, after map[solana.PublicKey]*account.Account) error {
	var sumBefore, sumAfter uint64
	for k := range before {
		sumBefore += before[k].Lamports
		sumAfter += after[k].Lamports
	}
	if sumBefore != sumAfter {
		return fmt.Errorf("%w: %d before, %d after", ErrUnbalancedTransaction, sumBefore, sumAfter)
	}

	for _, key := range ictx.Writable() {
		a := after[key]
		if a.Lamports == 0 || len(a.Data) == 0 {
			continue
		}
		if !b.cfg.Rent.IsExempt(a.Lamports, len(a.Data)) {
			return fmt.Errorf("%w: %s holds %d, needs %d", invoke.ErrInsufficientFundsForRent,
				key, a.Lamports, b.cfg.Rent.MinimumBalance(len(a.Data)))
		}
	}
	return nil
}

// IsTransactionError reports whether err came from executing a transaction,
// as opposed to it being rejected before execution.
func IsTransactionError(err error) bool {
	var te *TransactionError
	return errors.As(err, &te)
}
