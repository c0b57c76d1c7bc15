// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"fmt"

	"github.com/luxfi/storanet/address"
	"github.com/luxfi/storanet/spend"
)

// AddressMismatchError is the fatal request error raised when a payload's
// computed address doesn't match the storage key the caller asked to
// write it under.
type AddressMismatchError struct {
	Computed address.Address
	Declared address.Address
}

func (e *AddressMismatchError) Error() string {
	return fmt.Sprintf("storage: computed address %s does not match declared %s", e.Computed, e.Declared)
}

// IncompatibleRegisterError is returned when a Create op targets an
// address that already holds a register with a different owner than the
// one being created.
type IncompatibleRegisterError struct {
	Addr address.Address
}

func (e *IncompatibleRegisterError) Error() string {
	return fmt.Sprintf("storage: incompatible register already exists at %s", e.Addr)
}

// RegisterNotFoundError is returned by Edit when no register exists yet
// at the target address.
type RegisterNotFoundError struct {
	Addr address.Address
}

func (e *RegisterNotFoundError) Error() string {
	return fmt.Sprintf("storage: no register at %s", e.Addr)
}

// ChunkNotFoundError is returned by a chunk read miss.
type ChunkNotFoundError struct {
	Addr address.Address
}

func (e *ChunkNotFoundError) Error() string {
	return fmt.Sprintf("storage: no chunk at %s", e.Addr)
}

// SpendNotFoundError is returned by a spend read miss.
type SpendNotFoundError struct {
	Addr address.Address
}

func (e *SpendNotFoundError) Error() string {
	return fmt.Sprintf("storage: no spend at %s", e.Addr)
}

// re-exported so callers outside this package can errors.As into it
// without importing the spend package themselves just for this type.
type DoubleSpendAttemptError = spend.DoubleSpendAttemptError
