// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package protocol defines the wire-level request/response taxonomy
// exchanged between clients and nodes: a tagged union of commands,
// queries, and events, and the mirrored response shapes the close-group
// client reduces over. Go has no tagged unions, so each variant is
// modeled as a discriminated struct with one non-nil payload field per
// Kind, the same pattern the teacher uses for its own heterogeneous
// wire messages.
package protocol

import (
	"github.com/luxfi/storanet/address"
	"github.com/luxfi/storanet/register"
	"github.com/luxfi/storanet/spend"
)

// RequestKind discriminates a Request.
type RequestKind uint8

const (
	KindCmd RequestKind = iota
	KindQuery
	KindEvent
)

// CmdKind discriminates a Cmd payload.
type CmdKind uint8

const (
	CmdChunk CmdKind = iota
	CmdRegister
	CmdDbc
)

// QueryKind discriminates a Query payload.
type QueryKind uint8

const (
	QueryGetChunk QueryKind = iota
	QueryGetRegister
	QueryGetDbcSpend
)

// EventKind discriminates an Event payload.
type EventKind uint8

const (
	EventDoubleSpendAttempted EventKind = iota
)

// RegisterCmdKind discriminates whether a RegisterCmd creates a register
// or edits one that already exists.
type RegisterCmdKind uint8

const (
	RegisterCmdCreate RegisterCmdKind = iota
	RegisterCmdEdit
)

// RegisterCmd carries either the parameters to create a new register at
// an address (owner, name, tag, and initial permissions; Op is unused for
// a create), or an already-signed op to apply to an existing one.
type RegisterCmd struct {
	Kind RegisterCmdKind

	Owner       register.User
	Name        [32]byte
	Tag         uint64
	Permissions register.Permissions

	Op register.RegisterOp
}

// Cmd is a mutating request: store a chunk, apply a register op, or
// submit a signed spend.
type Cmd struct {
	Kind CmdKind

	ChunkBytes []byte

	Register *RegisterCmd

	SignedSpend *spend.SignedSpend
	SourceTx    *spend.Transaction
}

// Dst returns the destination address a RegisterCmd routes to: the
// address an op already names for an edit, or the address CreateRegister
// will give the new register, derived the same way Register.Address
// does, since a not-yet-created register carries no op to read it from.
func (c RegisterCmd) Dst() address.Address {
	switch c.Kind {
	case RegisterCmdCreate:
		return address.FromRegisterAddress(c.Name, c.Tag)
	case RegisterCmdEdit:
		return c.Op.Address
	default:
		return address.Address{}
	}
}

// Dst returns the destination address a Cmd routes to, used to look up
// its close group.
func (c Cmd) Dst() address.Address {
	switch c.Kind {
	case CmdChunk:
		return address.ChunkAddress(c.ChunkBytes)
	case CmdRegister:
		return c.Register.Dst()
	case CmdDbc:
		return c.SignedSpend.Address()
	default:
		return address.Address{}
	}
}

// Query is a non-mutating read: fetch a chunk, a register's frontier, or
// a recorded spend.
type Query struct {
	Kind QueryKind

	ChunkAddr address.Address

	RegisterAddr address.Address

	SpendAddr address.Address
}

// Dst returns the destination address a Query routes to.
func (q Query) Dst() address.Address {
	switch q.Kind {
	case QueryGetChunk:
		return q.ChunkAddr
	case QueryGetRegister:
		return q.RegisterAddr
	case QueryGetDbcSpend:
		return q.SpendAddr
	default:
		return address.Address{}
	}
}

// Event is a fire-and-forget network notification; it carries no
// response.
type Event struct {
	Kind EventKind

	DoubleSpendA *spend.SignedSpend
	DoubleSpendB *spend.SignedSpend
}

// Dst returns the destination address this event routes to: the close
// group that owns the conflicting spend, i.e. the one that cares about
// the conflict.
func (e Event) Dst() address.Address {
	switch e.Kind {
	case EventDoubleSpendAttempted:
		return e.DoubleSpendA.Address()
	default:
		return address.Address{}
	}
}

// Request is the outer tagged union dispatched to a close group.
type Request struct {
	Kind  RequestKind
	Cmd   *Cmd
	Query *Query
	Event *Event
}

// Dst returns the destination address this request routes to.
func (r Request) Dst() address.Address {
	switch r.Kind {
	case KindCmd:
		return r.Cmd.Dst()
	case KindQuery:
		return r.Query.Dst()
	case KindEvent:
		return r.Event.Dst()
	default:
		return address.Address{}
	}
}

// CmdOutcome discriminates which kind of success payload a CmdResponse
// carries.
type CmdOutcome uint8

const (
	OutcomeChunkStored CmdOutcome = iota
	OutcomeRegisterCreated
	OutcomeRegisterEdited
	OutcomeSpendStored
)

// CmdResponse is the result of a Cmd: either an outcome tag on success,
// or a structured ProtocolError.
type CmdResponse struct {
	Outcome CmdOutcome
	Err     error
}

// QueryResponse is the result of a Query: a per-kind success payload, or
// a structured ProtocolError. Only the field matching the originating
// Query's Kind is populated on success.
type QueryResponse struct {
	Chunk []byte

	Register            []register.Entry
	RegisterOwner       register.User
	RegisterPermissions register.Permissions

	Spend *spend.SignedSpend
	Err   error
}

// Response mirrors the request shape: exactly one of Cmd or Query is set,
// matching the Request's Kind. Event requests get no Response.
type Response struct {
	Kind  RequestKind
	Cmd   *CmdResponse
	Query *QueryResponse
}

// Succeeded reports whether this response represents success at the
// per-peer level, independent of the close-group reduction rule applied
// on top of it.
func (r Response) Succeeded() bool {
	switch r.Kind {
	case KindCmd:
		return r.Cmd != nil && r.Cmd.Err == nil
	case KindQuery:
		return r.Query != nil && r.Query.Err == nil
	default:
		return false
	}
}

// Err returns the per-peer error carried by this response, if any.
func (r Response) Err() error {
	switch r.Kind {
	case KindCmd:
		if r.Cmd != nil {
			return r.Cmd.Err
		}
	case KindQuery:
		if r.Query != nil {
			return r.Query.Err
		}
	}
	return nil
}
