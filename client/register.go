// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package client

import (
	"context"
	"fmt"

	"github.com/luxfi/storanet/address"
	"github.com/luxfi/storanet/closegroup"
	"github.com/luxfi/storanet/protocol"
	"github.com/luxfi/storanet/register"
)

// Register is a local handle onto a network register: a replica plus a
// FIFO queue of locally generated, not-yet-pushed ops. Offline writes
// (Write, WriteMergingBranches) only mutate the local replica and queue
// an op; the *Online variants additionally push immediately. Grounded on
// sn_client's ClientRegister (original_source/sn_client/src/register.rs):
// push() drains the queue oldest-first and, on a peer failure,
// re-enqueues the failing op at its original position rather than
// reordering around it.
type Register struct {
	client *Client

	name        [32]byte
	tag         uint64
	owner       register.User
	permissions register.Permissions
	reg         *register.Register

	ops []protocol.RegisterCmd
}

// NewRegister creates a brand new, empty, local register handle owned by
// the client's own key, with Anyone granted write by default.
func NewRegister(c *Client, name [32]byte, tag uint64) *Register {
	owner := register.KeyUser(c.SignerPublicKey())
	perms := register.AnyoneCanWrite()
	return &Register{
		client:      c,
		name:        name,
		tag:         tag,
		owner:       owner,
		permissions: perms,
		reg:         register.New(owner, name, tag, perms),
	}
}

// Retrieve fetches an existing register from the network to work on
// offline.
func Retrieve(ctx context.Context, c *Client, name [32]byte, tag uint64) (*Register, error) {
	addr := address.FromRegisterAddress(name, tag)
	entries, owner, perms, err := getRegister(ctx, c, addr)
	if err != nil {
		return nil, err
	}
	reg := register.New(owner, name, tag, perms)
	for _, e := range entries {
		if _, err := reg.WriteMergingBranches(e, owner); err != nil {
			return nil, err
		}
	}
	return &Register{client: c, name: name, tag: tag, owner: owner, permissions: perms, reg: reg}, nil
}

// Owner returns the register's owner.
func (r *Register) Owner() register.User { return r.owner }

// Permissions returns the register's permission table.
func (r *Register) Permissions() register.Permissions { return r.permissions }

// Address returns the register's network address.
func (r *Register) Address() address.Address { return r.reg.Address() }

// Size returns the number of entries ever written to this replica's
// local view of the register.
func (r *Register) Size() int { return r.reg.Size() }

// Read returns the current frontier of this replica's local view.
func (r *Register) Read() []register.Entry { return r.reg.Read() }

// Get returns the entry at a specific crdt-node hash, if present locally.
func (r *Register) Get(h register.EntryHash) (register.Entry, bool) { return r.reg.Get(h) }

// Write writes entry atop the current frontier, failing with
// *register.ContentBranchDetectedError if the frontier has more than
// one entry. The resulting op is queued, not pushed.
func (r *Register) Write(entry register.Entry) error {
	requester := register.KeyUser(r.client.SignerPublicKey())
	parents := r.reg.Frontier()
	if _, err := r.reg.WriteLatest(entry, requester); err != nil {
		return err
	}
	return r.enqueueOp(entry, parents, requester)
}

// WriteMergingBranches writes entry atop every branch in the current
// frontier, collapsing them to one. The resulting op is queued, not
// pushed.
func (r *Register) WriteMergingBranches(entry register.Entry) error {
	requester := register.KeyUser(r.client.SignerPublicKey())
	parents := r.reg.Frontier()
	if _, err := r.reg.WriteMergingBranches(entry, requester); err != nil {
		return err
	}
	return r.enqueueOp(entry, parents, requester)
}

// WriteAtop writes entry as a child of exactly the given parents,
// regardless of the current frontier. Useful for resolving a branch by
// hand rather than merging all of it. The resulting op is queued, not
// pushed.
func (r *Register) WriteAtop(entry register.Entry, parents []register.EntryHash) error {
	requester := register.KeyUser(r.client.SignerPublicKey())
	if _, err := r.reg.Write(entry, parents, requester); err != nil {
		return err
	}
	return r.enqueueOp(entry, parents, requester)
}

// WriteOnline writes entry then immediately pushes the queue.
func (r *Register) WriteOnline(ctx context.Context, entry register.Entry) error {
	if err := r.Write(entry); err != nil {
		return err
	}
	return r.Push(ctx)
}

// WriteMergingBranchesOnline writes entry merging branches then
// immediately pushes the queue.
func (r *Register) WriteMergingBranchesOnline(ctx context.Context, entry register.Entry) error {
	if err := r.WriteMergingBranches(entry); err != nil {
		return err
	}
	return r.Push(ctx)
}

// WriteAtopOnline writes entry atop parents then immediately pushes the
// queue.
func (r *Register) WriteAtopOnline(ctx context.Context, entry register.Entry, parents []register.EntryHash) error {
	if err := r.WriteAtop(entry, parents); err != nil {
		return err
	}
	return r.Push(ctx)
}

func (r *Register) enqueueOp(entry register.Entry, parents []register.EntryHash, requester register.User) error {
	op := register.NewRegisterOp(r.reg.Address(), entry, parents, requester)
	if err := op.Sign(r.client.SignerKey); err != nil {
		return err
	}
	r.ops = append(r.ops, protocol.RegisterCmd{Kind: protocol.RegisterCmdEdit, Op: op})
	return nil
}

// Sync fetches the network's current replica, merges it into the local
// one (creating the register on the network first if it doesn't exist
// yet), then pushes any locally queued ops.
func (r *Register) Sync(ctx context.Context) error {
	entries, owner, perms, err := getRegister(ctx, r.client, r.reg.Address())
	if err != nil {
		createCmd := protocol.RegisterCmd{
			Kind:        protocol.RegisterCmdCreate,
			Owner:       r.owner,
			Name:        r.name,
			Tag:         r.tag,
			Permissions: r.permissions,
		}
		r.ops = append([]protocol.RegisterCmd{createCmd}, r.ops...)
		return r.Push(ctx)
	}

	remote := register.New(owner, r.name, r.tag, perms)
	for _, e := range entries {
		if _, err := remote.WriteMergingBranches(e, owner); err != nil {
			return err
		}
	}
	r.reg.Merge(remote)
	return r.Push(ctx)
}

// Push sends every locally queued op to the network, oldest first. A
// failing op is left at the front of the queue, its original position,
// so the next Sync/Push retries it before anything newer, matching
// ClientRegister::push's re-enqueue-on-failure behavior.
func (r *Register) Push(ctx context.Context) error {
	for len(r.ops) > 0 {
		cmd := r.ops[0]
		var err error
		switch cmd.Kind {
		case protocol.RegisterCmdCreate:
			err = r.publishRegisterCreate(ctx, cmd)
		case protocol.RegisterCmdEdit:
			err = r.publishRegisterEdit(ctx, cmd)
		}
		if err != nil {
			return err
		}
		r.ops = r.ops[1:]
	}
	return nil
}

// PendingOps reports how many locally queued ops have not yet been
// pushed.
func (r *Register) PendingOps() int { return len(r.ops) }

func (r *Register) publishRegisterCreate(ctx context.Context, cmd protocol.RegisterCmd) error {
	req := protocol.Request{Kind: protocol.KindCmd, Cmd: &protocol.Cmd{Kind: protocol.CmdRegister, Register: &cmd}}
	outcomes, err := r.client.CloseGroup.SendToClosest(ctx, req)
	if err != nil {
		return err
	}
	_, err = closegroup.ReduceAllMustSucceed(outcomes, r.client.CloseGroup.GroupSize)
	return err
}

func (r *Register) publishRegisterEdit(ctx context.Context, cmd protocol.RegisterCmd) error {
	req := protocol.Request{Kind: protocol.KindCmd, Cmd: &protocol.Cmd{Kind: protocol.CmdRegister, Register: &cmd}}
	outcomes, err := r.client.CloseGroup.SendToClosest(ctx, req)
	if err != nil {
		return err
	}
	_, err = closegroup.ReduceAllMustSucceed(outcomes, r.client.CloseGroup.GroupSize)
	return err
}

// getRegister fetches the frontier, owner, and permissions of the
// register at addr from the network, accepting the first successful
// reply (GetRegister's accept rule: registers merge, so any one
// replica's view is enough to build a local copy to work from).
func getRegister(ctx context.Context, c *Client, addr address.Address) ([]register.Entry, register.User, register.Permissions, error) {
	req := protocol.Request{
		Kind:  protocol.KindQuery,
		Query: &protocol.Query{Kind: protocol.QueryGetRegister, RegisterAddr: addr},
	}
	outcomes, err := c.CloseGroup.SendToClosest(ctx, req)
	if err != nil {
		return nil, register.User{}, nil, err
	}
	resp, err := closegroup.ReduceFirstSuccess(outcomes)
	if err != nil {
		return nil, register.User{}, nil, err
	}
	if resp.Query == nil {
		return nil, register.User{}, nil, fmt.Errorf("client: GetRegister succeeded with no query payload")
	}
	return resp.Query.Register, resp.Query.RegisterOwner, resp.Query.RegisterPermissions, nil
}
