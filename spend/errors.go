// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package spend

import "fmt"

// InvalidSpendSignatureError is returned when a SignedSpend's signature
// does not verify against its own claimed signer key.
type InvalidSpendSignatureError struct {
	Cause error
}

func (e *InvalidSpendSignatureError) Error() string {
	return fmt.Sprintf("spend: invalid signature: %v", e.Cause)
}

func (e *InvalidSpendSignatureError) Unwrap() error {
	return e.Cause
}

// SignedSrcTxHashMismatchError is returned when the submitted source
// transaction's hash does not match the hash recorded on the spend.
type SignedSrcTxHashMismatchError struct {
	Signed   TxHash
	Provided TxHash
}

func (e *SignedSrcTxHashMismatchError) Error() string {
	return fmt.Sprintf("spend: signed src tx hash %x does not match provided %x", e.Signed, e.Provided)
}

// ParentTxHashMismatchError is returned when a parent spend's destination
// transaction hash doesn't match this spend's source transaction hash,
// i.e. the claimed lineage doesn't hold.
type ParentTxHashMismatchError struct {
	SignedSrc TxHash
	ParentDst TxHash
}

func (e *ParentTxHashMismatchError) Error() string {
	return fmt.Sprintf("spend: signed src tx hash %x does not match parent dst tx hash %x", e.SignedSrc, e.ParentDst)
}

// InvalidSourceTxError is returned when the source transaction fails to
// verify against its parents' blinded amounts.
type InvalidSourceTxError struct {
	SignedSrc   TxHash
	ProvidedSrc TxHash
}

func (e *InvalidSourceTxError) Error() string {
	return fmt.Sprintf("spend: source tx %x failed verification (provided %x)", e.SignedSrc, e.ProvidedSrc)
}

// DoubleSpendAttemptError is returned by storage (and surfaced back
// through the validator) when a new spend conflicts with one already
// recorded at the same address.
type DoubleSpendAttemptError struct {
	New      SignedSpend
	Existing SignedSpend
}

func (e *DoubleSpendAttemptError) Error() string {
	return fmt.Sprintf("spend: double spend attempt at %s", e.New.Address())
}
