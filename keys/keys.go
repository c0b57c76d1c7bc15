// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package keys provides the signing primitives shared by the register CRDT
// and the spend validator. spec.md treats the real DBC/value-transfer
// cryptography (blinded amounts, BLS aggregation) as an external
// collaborator; these types cover only the one signature scheme this
// repo's own protocol messages need (register ops, signed spends).
//
// The default implementation is stdlib ed25519: the retrieved examples
// pack requires github.com/luxfi/crypto for production BLS, but its
// package API is not present anywhere in the pack to ground a call
// against (see DESIGN.md). PublicKey and Signature are fixed-size arrays
// sized for ed25519, and the register and spend packages call SecretKey
// and Verify directly; there is no signer/verifier interface behind which
// another scheme could be substituted.
package keys

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"errors"
)

// PublicKey identifies a signer.
type PublicKey [ed25519.PublicKeySize]byte

// Signature is a detached signature over an arbitrary message.
type Signature [ed25519.SignatureSize]byte

// SecretKey signs on behalf of a PublicKey.
type SecretKey struct {
	priv ed25519.PrivateKey
}

// Generate returns a fresh random key pair.
func Generate() (SecretKey, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return SecretKey{}, err
	}
	return SecretKey{priv: priv}, nil
}

// PublicKey returns the public counterpart of sk.
func (sk SecretKey) PublicKey() PublicKey {
	var pk PublicKey
	copy(pk[:], sk.priv.Public().(ed25519.PublicKey))
	return pk
}

// Sign signs msg.
func (sk SecretKey) Sign(msg []byte) Signature {
	var sig Signature
	copy(sig[:], ed25519.Sign(sk.priv, msg))
	return sig
}

// ErrInvalidSignature is returned by Verify when the signature does not
// match the claimed public key and message.
var ErrInvalidSignature = errors.New("keys: invalid signature")

// Verify checks that sig is pk's signature over msg.
func Verify(pk PublicKey, msg []byte, sig Signature) error {
	if !ed25519.Verify(pk[:], msg, sig[:]) {
		return ErrInvalidSignature
	}
	return nil
}

func (pk PublicKey) String() string {
	return hex.EncodeToString(pk[:])
}

func (pk PublicKey) IsZero() bool {
	return pk == PublicKey{}
}
