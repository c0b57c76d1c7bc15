// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package register

import (
	"crypto/sha256"
	"sort"

	"github.com/luxfi/storanet/address"
	"github.com/luxfi/storanet/keys"
)

// RegisterOp is the signed, wire-transmissible form of a single CRDT
// write: an address to apply it to, the crdt-node being inserted (entry
// plus its declared parents), the User claiming to have authored it, and
// that User's signature over the rest of the op (absent for Anyone).
type RegisterOp struct {
	Address   address.Address
	Entry     Entry
	Parents   []EntryHash
	Source    User
	Signature *keys.Signature
}

// NewRegisterOp builds an unsigned op. Call Sign before sending it
// anywhere a verifier will check it, unless Source is AnyoneUser. The op
// keeps its own sorted copy of parents, so two ops built from the same
// parent set carry identical Parents whatever order they were given in.
func NewRegisterOp(addr address.Address, entry Entry, parents []EntryHash, source User) RegisterOp {
	sorted := make([]EntryHash, len(parents))
	copy(sorted, parents)
	sort.Slice(sorted, func(i, j int) bool { return lessHash(sorted[i], sorted[j]) })
	return RegisterOp{
		Address: addr,
		Entry:   entry,
		Parents: sorted,
		Source:  source,
	}
}

// BytesForSigning returns the canonical bytes this op's signature covers:
// the address, the would-be crdt-node hash, and the claimed source. Two
// ops with the same (address, entry, parents, source) always produce the
// same signing bytes, independent of everything else, including whether
// they're signed yet.
func (op RegisterOp) BytesForSigning() []byte {
	nodeHash := hashNode(op.Entry, op.Parents)

	h := sha256.New()
	h.Write(op.Address.AsBytes())
	h.Write(nodeHash[:])
	if pk, ok := op.Source.PublicKey(); ok {
		h.Write(pk[:])
	} else {
		h.Write([]byte{0})
	}
	return h.Sum(nil)
}

// Sign signs the op with sk, also checking sk's public key matches
// Source. It's a no-op error to sign an Anyone-sourced op; signatures on
// those are never checked, so there's nothing to attach.
func (op *RegisterOp) Sign(sk keys.SecretKey) error {
	pk, ok := op.Source.PublicKey()
	if !ok {
		return nil
	}
	if pk != sk.PublicKey() {
		return &InvalidSignatureError{Cause: errSignerKeyMismatch}
	}
	sig := sk.Sign(op.BytesForSigning())
	op.Signature = &sig
	return nil
}

// VerifySignature checks that op carries a valid signature from its
// claimed Source. Anyone-sourced ops need no signature and always pass.
func (op RegisterOp) VerifySignature() error {
	if op.Source.IsAnyone() {
		return nil
	}
	if op.Signature == nil {
		return &MissingSignatureError{}
	}
	pk, _ := op.Source.PublicKey()
	if err := keys.Verify(pk, op.BytesForSigning(), *op.Signature); err != nil {
		return &InvalidSignatureError{Cause: err}
	}
	return nil
}
