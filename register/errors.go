// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package register

import (
	"errors"
	"fmt"
)

var errSignerKeyMismatch = errors.New("register: signing key does not match op source")

// AccessDeniedError is returned when requester lacks write rights on a
// register, per its Permissions and owner.
type AccessDeniedError struct {
	Requester User
}

func (e *AccessDeniedError) Error() string {
	return fmt.Sprintf("register: access denied for %s", e.Requester)
}

// ContentBranchDetectedError is returned by WriteLatest when the register's
// frontier has more than one entry: a concurrent write raced this one, and
// the caller must merge the branches (WriteMergingBranches) before
// continuing a linear history.
type ContentBranchDetectedError struct {
	Frontier []EntryHash
}

func (e *ContentBranchDetectedError) Error() string {
	return fmt.Sprintf("register: content branch detected, %d entries in frontier", len(e.Frontier))
}

// MissingSignatureError is returned when a RegisterOp that requires a
// signature (source is not User::Anyone) has none attached.
type MissingSignatureError struct{}

func (e *MissingSignatureError) Error() string {
	return "register: missing signature"
}

// InvalidSignatureError is returned when a RegisterOp's signature does not
// verify against its source's public key.
type InvalidSignatureError struct {
	Cause error
}

func (e *InvalidSignatureError) Error() string {
	return fmt.Sprintf("register: invalid signature: %v", e.Cause)
}

func (e *InvalidSignatureError) Unwrap() error {
	return e.Cause
}
