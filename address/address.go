// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package address implements the XOR-metric address space (C1) that every
// other component routes on: peers, chunks, registers, spends, and raw
// record keys are all mapped to one comparable, hashable Address type.
package address

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/luxfi/ids"
	"github.com/luxfi/storanet/utils/formatting"
)

// Kind discriminates what an Address represents.
type Kind uint8

const (
	// KindPeer addresses a network peer.
	KindPeer Kind = iota
	// KindChunk addresses an immutable content chunk.
	KindChunk
	// KindRegister addresses a mutable CRDT register.
	KindRegister
	// KindSpend addresses a signed spend (a one-time value-transfer record).
	KindSpend
	// KindRecordKey addresses a raw storage record key.
	KindRecordKey
)

func (k Kind) String() string {
	switch k {
	case KindPeer:
		return "Peer"
	case KindChunk:
		return "Chunk"
	case KindRegister:
		return "Register"
	case KindSpend:
		return "Spend"
	case KindRecordKey:
		return "RecordKey"
	default:
		return "Unknown"
	}
}

// Address is a discriminated value identifying one of a peer, a chunk, a
// register, a spend, or a raw record key. Two addresses built from
// syntactically identical inputs always compare equal, regardless of
// which constructor built them, because equality is defined purely on
// (kind, raw bytes).
type Address struct {
	kind Kind
	raw  []byte
}

// FromPeer returns the Address of a peer, keyed on its NodeID bytes.
func FromPeer(id ids.NodeID) Address {
	raw := make([]byte, len(id))
	copy(raw, id[:])
	return Address{kind: KindPeer, raw: raw}
}

// FromChunkAddress returns the Address of a chunk given the XOR-name of
// its content (i.e. the hash of the chunk's bytes). Chunks are content
// addressed, so the XOR-name *is* the content hash; no further hashing
// happens here.
func FromChunkAddress(contentHash [32]byte) Address {
	raw := make([]byte, 32)
	copy(raw, contentHash[:])
	return Address{kind: KindChunk, raw: raw}
}

// ChunkAddress returns the Address for the bytes of a chunk, computing
// the content hash for the caller.
func ChunkAddress(content []byte) Address {
	return FromChunkAddress(sha256.Sum256(content))
}

// FromRegisterAddress returns the Address of a register given its
// identity, the (name, tag) pair. The XOR-name is a deterministic
// function of both fields, so two registers with the same name but
// different tags (or vice versa) never collide.
func FromRegisterAddress(name [32]byte, tag uint64) Address {
	h := sha256.New()
	h.Write(name[:])
	var tagBytes [8]byte
	binary.BigEndian.PutUint64(tagBytes[:], tag)
	h.Write(tagBytes[:])
	return Address{kind: KindRegister, raw: h.Sum(nil)}
}

// FromSpendAddress returns the Address of a signed spend given the
// consumed one-time identifier.
func FromSpendAddress(id [32]byte) Address {
	h := sha256.Sum256(id[:])
	return Address{kind: KindSpend, raw: h[:]}
}

// FromRecordKey returns the Address wrapping an opaque storage record key.
func FromRecordKey(key []byte) Address {
	raw := make([]byte, len(key))
	copy(raw, key)
	return Address{kind: KindRecordKey, raw: raw}
}

// Kind returns the discriminant of this Address.
func (a Address) Kind() Kind {
	return a.kind
}

// IsZero reports whether a is the zero value (no kind set, no bytes).
func (a Address) IsZero() bool {
	return a.kind == KindPeer && len(a.raw) == 0
}

// AsBytes returns the canonical bytes of this Address.
func (a Address) AsBytes() []byte {
	raw := make([]byte, len(a.raw))
	copy(raw, a.raw)
	return raw
}

// ToRecordKey returns the record-key form of this Address, used as the
// local storage key. Today this is identical to AsBytes, kept as a
// distinct method so storage call sites read as key derivation rather
// than byte-poking.
func (a Address) ToRecordKey() []byte {
	return a.AsBytes()
}

// AsKBucketKey returns the K-bucket key of this Address: the SHA-256 of
// its canonical bytes. All distance math is performed on this value, so
// addresses of different kinds remain mutually comparable.
func (a Address) AsKBucketKey() [32]byte {
	return sha256.Sum256(a.raw)
}

// Distance computes the XOR-metric distance between two addresses.
func (a Address) Distance(other Address) [32]byte {
	ak := a.AsKBucketKey()
	bk := other.AsKBucketKey()
	var d [32]byte
	for i := range d {
		d[i] = ak[i] ^ bk[i]
	}
	return d
}

// Less provides a total order over distances, used to rank peers by
// proximity to a target.
func Less(a, b [32]byte) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// key returns a value usable as a Go map key, since []byte is not
// comparable.
func (a Address) key() string {
	return string([]byte{byte(a.kind)}) + string(a.raw)
}

// Equal reports whether a and other denote the same address.
func (a Address) Equal(other Address) bool {
	return a.key() == other.key()
}

// MapKey exposes the comparable map-key form for callers that need to use
// Address as a map[Address.MapKey()]V key directly.
func (a Address) MapKey() string {
	return a.key()
}

func (a Address) String() string {
	encoded, err := formatting.Encode(formatting.HexNC, a.raw)
	if err != nil {
		encoded = ""
	}
	return fmt.Sprintf("Address::%s(%s)", a.kind, encoded)
}

// GobEncode implements gob.GobEncoder, since Address's fields are
// unexported and gob only walks exported struct fields on its own.
func (a Address) GobEncode() ([]byte, error) {
	buf := make([]byte, 1+len(a.raw))
	buf[0] = byte(a.kind)
	copy(buf[1:], a.raw)
	return buf, nil
}

// GobDecode implements gob.GobDecoder.
func (a *Address) GobDecode(data []byte) error {
	if len(data) == 0 {
		*a = Address{}
		return nil
	}
	a.kind = Kind(data[0])
	a.raw = append([]byte(nil), data[1:]...)
	return nil
}
