// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package register

import (
	"bytes"
	"encoding/gob"
	"sort"

	"github.com/luxfi/storanet/keys"
)

// Action is a right that can be checked against Permissions.
type Action uint8

const (
	// Write is the (currently only) right the permission model expresses.
	Write Action = iota
)

// User is either a specific public key or the wildcard Anyone.
type User struct {
	anyone bool
	key    keys.PublicKey
}

// AnyoneUser is the wildcard principal.
var AnyoneUser = User{anyone: true}

// KeyUser returns the User identifying a specific public key.
func KeyUser(pk keys.PublicKey) User {
	return User{key: pk}
}

// IsAnyone reports whether u is the Anyone wildcard.
func (u User) IsAnyone() bool {
	return u.anyone
}

// PublicKey returns the wrapped key and true, or the zero key and false
// if u is Anyone.
func (u User) PublicKey() (keys.PublicKey, bool) {
	if u.anyone {
		return keys.PublicKey{}, false
	}
	return u.key, true
}

func (u User) Equal(other User) bool {
	return u.anyone == other.anyone && u.key == other.key
}

func (u User) String() string {
	if u.anyone {
		return "User::Anyone"
	}
	return "User::Key(" + u.key.String() + ")"
}

// GobEncode implements gob.GobEncoder, since User's fields are
// unexported and gob only walks exported struct fields on its own.
func (u User) GobEncode() ([]byte, error) {
	buf := make([]byte, 1+len(u.key))
	if u.anyone {
		buf[0] = 1
	}
	copy(buf[1:], u.key[:])
	return buf, nil
}

// GobDecode implements gob.GobDecoder.
func (u *User) GobDecode(data []byte) error {
	if len(data) == 0 {
		*u = User{}
		return nil
	}
	u.anyone = data[0] != 0
	copy(u.key[:], data[1:])
	return nil
}

// UserRights is the set of rights granted to a User.
type UserRights struct {
	MayWrite bool
}

// NewUserRights returns UserRights granting write iff mayWrite.
func NewUserRights(mayWrite bool) UserRights {
	return UserRights{MayWrite: mayWrite}
}

// Permissions maps a User to the rights they hold over a register. It is
// consulted on every write; the owner retains write access regardless of
// what's recorded here, since they signed the register's creation.
type Permissions map[User]UserRights

// NewPermissions builds a Permissions map from the given entries.
func NewPermissions(entries ...struct {
	User   User
	Rights UserRights
}) Permissions {
	p := make(Permissions, len(entries))
	for _, e := range entries {
		p[e.User] = e.Rights
	}
	return p
}

// AnyoneCanWrite is a convenience Permissions granting write to anyone.
func AnyoneCanWrite() Permissions {
	return Permissions{AnyoneUser: NewUserRights(true)}
}

// permEntry is the sorted, gob-friendly representation of one Permissions
// mapping, used only by GobEncode/GobDecode.
type permEntry struct {
	User   User
	Rights UserRights
}

// GobEncode implements gob.GobEncoder. Map iteration order is undefined,
// so Permissions is encoded as a slice sorted by the user's own encoded
// bytes: two Permissions values with the same entries always gob-encode
// byte-identically, matching User's own deterministic encoding.
func (p Permissions) GobEncode() ([]byte, error) {
	entries := make([]permEntry, 0, len(p))
	for u, r := range p {
		entries = append(entries, permEntry{User: u, Rights: r})
	}
	sort.Slice(entries, func(i, j int) bool {
		bi, _ := entries[i].User.GobEncode()
		bj, _ := entries[j].User.GobEncode()
		return bytes.Compare(bi, bj) < 0
	})

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(entries); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder.
func (p *Permissions) GobDecode(data []byte) error {
	var entries []permEntry
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&entries); err != nil {
		return err
	}
	out := make(Permissions, len(entries))
	for _, e := range entries {
		out[e.User] = e.Rights
	}
	*p = out
	return nil
}

// Allows reports whether requester may perform action, given owner always
// retains control of their own register.
func (p Permissions) Allows(action Action, owner, requester User) bool {
	if action != Write {
		return false
	}
	if owner.Equal(requester) {
		return true
	}
	if rights, ok := p[AnyoneUser]; ok && rights.MayWrite {
		return true
	}
	if requester.IsAnyone() {
		return false
	}
	rights, ok := p[requester]
	return ok && rights.MayWrite
}
