// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package spend implements the value-transfer spend validator (C3): it
// checks a submitted signed spend against its transaction and its
// parents' lineage before the storage facade ever sees it.
//
// The real DBC cryptography — blinded amounts, transaction balance
// proofs — is an external collaborator per spec; Transaction.Verify
// here is the documented stub boundary a production amount-commitment
// library would replace.
package spend

import (
	"crypto/sha256"

	"github.com/luxfi/storanet/address"
	"github.com/luxfi/storanet/keys"
)

// BlindedAmount is an opaque, comparable commitment to a value. The real
// scheme (Pedersen-style commitments over a spend's amount) is out of
// scope; this type only needs to support equality so Transaction.Verify
// can be exercised end to end.
type BlindedAmount [32]byte

// TxHash identifies a Transaction.
type TxHash [32]byte

// Transaction is a set of consumed input identifiers and newly created
// output identifiers, each carrying a blinded amount.
type Transaction struct {
	Inputs  []TxHash
	Outputs []Output
}

// Output is one newly created identifier and the blinded amount assigned
// to it by this transaction.
type Output struct {
	ID     [32]byte
	Amount BlindedAmount
}

// Hash returns the deterministic identity of tx.
func (tx Transaction) Hash() TxHash {
	h := sha256.New()
	for _, in := range tx.Inputs {
		h.Write(in[:])
	}
	for _, out := range tx.Outputs {
		h.Write(out.ID[:])
		h.Write(out.Amount[:])
	}
	var out TxHash
	copy(out[:], h.Sum(nil))
	return out
}

// Verify checks that tx balances given the blinded amounts of its
// inputs, keyed by input TxHash. The real balance proof (sum of inputs
// equals sum of outputs, in the commitment scheme) is out of scope; this
// stub requires only that an amount was supplied for every declared
// input, which is enough to exercise the validator's call shape and
// error path without depending on unavailable cryptography.
func (tx Transaction) Verify(parentAmounts map[TxHash]BlindedAmount) bool {
	for _, in := range tx.Inputs {
		if _, ok := parentAmounts[in]; !ok {
			return false
		}
	}
	return true
}

// SignedSpend is a one-time statement that identifier ID, created by the
// transaction hashed as SrcTxHash, is being consumed as an input of the
// transaction hashed as DstTxHash.
type SignedSpend struct {
	ID        [32]byte
	SrcTxHash TxHash
	DstTxHash TxHash
	Amount    BlindedAmount
	SignerKey keys.PublicKey
	Signature keys.Signature
}

// Address returns the deterministic XOR-name of the consumed identifier.
func (s SignedSpend) Address() address.Address {
	return address.FromSpendAddress(s.ID)
}

// BytesForSigning returns the canonical bytes a SignedSpend's signature
// covers.
func (s SignedSpend) BytesForSigning() []byte {
	h := sha256.New()
	h.Write(s.ID[:])
	h.Write(s.SrcTxHash[:])
	h.Write(s.DstTxHash[:])
	h.Write(s.Amount[:])
	return h.Sum(nil)
}

// VerifySignature checks s's signature against its own claimed signer key.
func (s SignedSpend) VerifySignature() error {
	if err := keys.Verify(s.SignerKey, s.BytesForSigning(), s.Signature); err != nil {
		return &InvalidSpendSignatureError{Cause: err}
	}
	return nil
}

// Equal reports whether two signed spends are the same record, used by
// the close-group unanimity rule and by storage's first-write-wins check.
func (s SignedSpend) Equal(other SignedSpend) bool {
	return s.ID == other.ID &&
		s.SrcTxHash == other.SrcTxHash &&
		s.DstTxHash == other.DstTxHash &&
		s.Amount == other.Amount &&
		s.SignerKey == other.SignerKey &&
		s.Signature == other.Signature
}
