// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package storage implements the storage facade (C6): three independent
// per-kind stores (chunks, registers, spends) behind one write/read
// surface, each enforcing that a payload's computed address matches the
// key it's filed under.
package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/luxfi/storanet/address"
	"github.com/luxfi/storanet/register"
	"github.com/luxfi/storanet/spend"
)

// Publisher is told about storage-visible events so node.Node can relay
// them onto the event bus (C7). A Publisher is optional: Facade treats a
// nil Publisher as "don't publish".
type Publisher interface {
	ChunkStored(addr address.Address)
	RegisterCreated(addr address.Address)
	RegisterEdited(addr address.Address)
	SpendStored(addr address.Address)
	DoubleSpendDetected(a, b address.Address)
}

// Facade is the storage-facing half of a node: chunk store, register
// store, and spend store, each keyed by address.Address.MapKey().
type Facade struct {
	mu sync.Mutex

	chunks    map[string][]byte
	registers map[string]*register.Register
	spends    map[string]spend.SignedSpend

	doubleSpendLog []DoubleSpendPair

	Publisher Publisher
}

// DoubleSpendPair is one (a, b) conflict recorded in the double-spend log.
type DoubleSpendPair struct {
	A, B spend.SignedSpend
}

// New returns an empty Facade. publisher may be nil.
func New(publisher Publisher) *Facade {
	return &Facade{
		chunks:    make(map[string][]byte),
		registers: make(map[string]*register.Register),
		spends:    make(map[string]spend.SignedSpend),
		Publisher: publisher,
	}
}

func (f *Facade) publish(fn func(Publisher)) {
	if f.Publisher != nil {
		fn(f.Publisher)
	}
}

// WriteChunk stores content, computing its own address. Writing a chunk
// already present is an idempotent no-op success.
func (f *Facade) WriteChunk(_ context.Context, content []byte) (address.Address, error) {
	addr := address.ChunkAddress(content)

	f.mu.Lock()
	_, exists := f.chunks[addr.MapKey()]
	if !exists {
		f.chunks[addr.MapKey()] = append([]byte(nil), content...)
	}
	f.mu.Unlock()

	if !exists {
		f.publish(func(p Publisher) { p.ChunkStored(addr) })
	}
	return addr, nil
}

// ReadChunk returns the bytes stored at addr.
func (f *Facade) ReadChunk(_ context.Context, addr address.Address) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	content, ok := f.chunks[addr.MapKey()]
	if !ok {
		return nil, &ChunkNotFoundError{Addr: addr}
	}
	return append([]byte(nil), content...), nil
}

// CreateRegister creates a new register at the address derived from
// (name, tag), failing with *IncompatibleRegisterError if one already
// exists there with a different owner.
func (f *Facade) CreateRegister(_ context.Context, owner register.User, name [32]byte, tag uint64, perms register.Permissions) (address.Address, error) {
	addr := address.FromRegisterAddress(name, tag)

	f.mu.Lock()
	defer f.mu.Unlock()

	if existing, ok := f.registers[addr.MapKey()]; ok {
		if !existing.Owner().Equal(owner) {
			return addr, &IncompatibleRegisterError{Addr: addr}
		}
		return addr, nil
	}
	f.registers[addr.MapKey()] = register.New(owner, name, tag, perms)
	f.publish(func(p Publisher) { p.RegisterCreated(addr) })
	return addr, nil
}

// EditRegister applies op to the register at op.Address, which must
// already exist. Verification of op's signature is the caller's
// responsibility (node.Node does this before calling in, so storage
// stays a pure persistence layer); EditRegister enforces the address
// match and existence, and the register's own write-rights check
// (*register.AccessDeniedError) still applies to op.Source.
func (f *Facade) EditRegister(_ context.Context, op register.RegisterOp) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	reg, ok := f.registers[op.Address.MapKey()]
	if !ok {
		return &RegisterNotFoundError{Addr: op.Address}
	}
	if !reg.Address().Equal(op.Address) {
		return &AddressMismatchError{Computed: reg.Address(), Declared: op.Address}
	}
	if _, err := reg.Write(op.Entry, op.Parents, op.Source); err != nil {
		return err
	}
	f.publish(func(p Publisher) { p.RegisterEdited(op.Address) })
	return nil
}

// ReadRegister returns the frontier of the register at addr, along with
// its owner and permission table so a caller building a replica from
// scratch (client.Retrieve) doesn't need a second round trip.
func (f *Facade) ReadRegister(_ context.Context, addr address.Address) ([]register.Entry, register.User, register.Permissions, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	reg, ok := f.registers[addr.MapKey()]
	if !ok {
		return nil, register.User{}, nil, &RegisterNotFoundError{Addr: addr}
	}
	return reg.Read(), reg.Owner(), reg.Permissions(), nil
}

// WriteSpend implements spend.Writer: first write to an address wins; a
// differing spend to an already-occupied address is reported as
// *spend.DoubleSpendAttemptError and separately logged.
func (f *Facade) WriteSpend(_ context.Context, s spend.SignedSpend) error {
	addr := s.Address()

	f.mu.Lock()
	existing, occupied := f.spends[addr.MapKey()]
	if !occupied {
		f.spends[addr.MapKey()] = s
		f.mu.Unlock()
		f.publish(func(p Publisher) { p.SpendStored(addr) })
		return nil
	}
	if existing.Equal(s) {
		f.mu.Unlock()
		return nil
	}
	f.doubleSpendLog = append(f.doubleSpendLog, DoubleSpendPair{A: existing, B: s})
	f.mu.Unlock()

	f.publish(func(p Publisher) { p.DoubleSpendDetected(existing.Address(), s.Address()) })
	return &spend.DoubleSpendAttemptError{New: s, Existing: existing}
}

// GetSpend implements spend.ParentFetcher.
func (f *Facade) GetSpend(_ context.Context, addr address.Address) (spend.SignedSpend, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.spends[addr.MapKey()]
	if !ok {
		return spend.SignedSpend{}, fmt.Errorf("%w: %s", spend.ErrParentNotFound, addr)
	}
	return s, nil
}

// ReadSpend returns the spend recorded at addr, for the Query::GetDbcSpend
// path (as opposed to GetSpend, which serves the spend validator's
// parent-lineage lookups and reports misses via spend.ErrParentNotFound).
func (f *Facade) ReadSpend(_ context.Context, addr address.Address) (spend.SignedSpend, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.spends[addr.MapKey()]
	if !ok {
		return spend.SignedSpend{}, &SpendNotFoundError{Addr: addr}
	}
	return s, nil
}

// RecordKnownDoubleSpend appends a peer-reported (a, b) conflict to the
// local double-spend log without attempting to write either spend.
func (f *Facade) RecordKnownDoubleSpend(a, b spend.SignedSpend) {
	f.mu.Lock()
	f.doubleSpendLog = append(f.doubleSpendLog, DoubleSpendPair{A: a, B: b})
	f.mu.Unlock()
}

// DoubleSpendLog returns a copy of every (a, b) conflict recorded so far,
// whether detected locally or reported by a peer.
func (f *Facade) DoubleSpendLog() []DoubleSpendPair {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]DoubleSpendPair, len(f.doubleSpendLog))
	copy(out, f.doubleSpendLog)
	return out
}
