// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package register implements the Register CRDT (C2): a Merkle-DAG of
// signed entries that converges under concurrent, conflicting writes via
// a commutative, associative, idempotent merge of frontiers.
package register

import (
	"crypto/sha256"
	"sort"

	"golang.org/x/exp/maps"

	"github.com/luxfi/storanet/address"
)

// Entry is a single opaque payload stored at one crdt-node.
type Entry []byte

// EntryHash identifies a crdt-node: the hash of its entry bytes and the
// sorted hashes of its parents. Sorting the parent hashes before hashing
// is what makes two nodes with the same entry and the same parent set,
// built in different orders, hash identically.
type EntryHash [32]byte

func hashNode(entry Entry, parents []EntryHash) EntryHash {
	sorted := make([]EntryHash, len(parents))
	copy(sorted, parents)
	sort.Slice(sorted, func(i, j int) bool {
		return lessHash(sorted[i], sorted[j])
	})

	h := sha256.New()
	h.Write(entry)
	for _, p := range sorted {
		h.Write(p[:])
	}
	var out EntryHash
	copy(out[:], h.Sum(nil))
	return out
}

func lessHash(a, b EntryHash) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

type crdtNode struct {
	entry   Entry
	parents []EntryHash
}

// dag is the append-only Merkle structure backing a Register. Nodes are
// immutable once inserted; a node is part of the frontier iff no other
// node names it as a parent.
type dag struct {
	nodes map[EntryHash]crdtNode
}

func newDAG() *dag {
	return &dag{nodes: make(map[EntryHash]crdtNode)}
}

// insert adds a node if absent, returning its hash. Re-inserting an
// identical (entry, parents) pair is a no-op: hashing is content
// addressed, so this is what makes merge idempotent.
func (d *dag) insert(entry Entry, parents []EntryHash) EntryHash {
	h := hashNode(entry, parents)
	if _, ok := d.nodes[h]; !ok {
		frozenParents := make([]EntryHash, len(parents))
		copy(frozenParents, parents)
		d.nodes[h] = crdtNode{entry: entry, parents: frozenParents}
	}
	return h
}

// frontier returns the hashes of nodes with nothing in the DAG pointing
// at them as a parent, in an order independent of insertion order. Go's
// map iteration order is randomized, so the candidate hash set is pulled
// out with maps.Keys and then sorted explicitly rather than relied on to
// come back in any particular order.
func (d *dag) frontier() []EntryHash {
	referenced := make(map[EntryHash]struct{})
	for _, n := range d.nodes {
		for _, p := range n.parents {
			referenced[p] = struct{}{}
		}
	}
	out := make([]EntryHash, 0, len(d.nodes))
	for _, h := range maps.Keys(d.nodes) {
		if _, ok := referenced[h]; !ok {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return lessHash(out[i], out[j]) })
	return out
}

func (d *dag) get(h EntryHash) (crdtNode, bool) {
	n, ok := d.nodes[h]
	return n, ok
}

func (d *dag) size() int {
	return len(d.nodes)
}

// Register is a single named, tagged, permissioned CRDT. Owner always
// retains write rights; Permissions governs everyone else.
type Register struct {
	owner       User
	name        [32]byte
	tag         uint64
	permissions Permissions
	dag         *dag
}

// New creates an empty register owned by owner.
func New(owner User, name [32]byte, tag uint64, permissions Permissions) *Register {
	if permissions == nil {
		permissions = Permissions{}
	}
	return &Register{
		owner:       owner,
		name:        name,
		tag:         tag,
		permissions: permissions,
		dag:         newDAG(),
	}
}

// Address returns this register's network address.
func (r *Register) Address() address.Address {
	return address.FromRegisterAddress(r.name, r.tag)
}

// Owner returns the register's owning User.
func (r *Register) Owner() User {
	return r.owner
}

// Permissions returns the register's permission table.
func (r *Register) Permissions() Permissions {
	return r.permissions
}

// Frontier returns the crdt-node hashes making up the current frontier,
// in the same order as Read's entries. Callers building a RegisterOp
// for a pending write use this to declare the same parents WriteLatest
// or WriteMergingBranches used internally.
func (r *Register) Frontier() []EntryHash {
	return r.dag.frontier()
}

// Read returns the current frontier: every entry not superseded by a
// later write. More than one entry means concurrent, unresolved writes.
func (r *Register) Read() []Entry {
	frontier := r.dag.frontier()
	out := make([]Entry, 0, len(frontier))
	for _, h := range frontier {
		n, ok := r.dag.get(h)
		if !ok {
			continue
		}
		out = append(out, n.entry)
	}
	return out
}

// Size returns the total number of crdt-nodes ever written, including
// entries that have since been superseded.
func (r *Register) Size() int {
	return r.dag.size()
}

// Get returns the entry at a specific crdt-node hash, if present.
func (r *Register) Get(h EntryHash) (Entry, bool) {
	n, ok := r.dag.get(h)
	if !ok {
		return nil, false
	}
	return n.entry, true
}

// CheckUserRights reports whether requester may write to this register.
func (r *Register) CheckUserRights(requester User) bool {
	return r.permissions.Allows(Write, r.owner, requester)
}

// Write appends entry as a child of parents, after checking requester's
// write rights. It does not enforce that parents matches the current
// frontier; callers that want linear, branch-free history should use
// WriteLatest.
func (r *Register) Write(entry Entry, parents []EntryHash, requester User) (EntryHash, error) {
	if !r.CheckUserRights(requester) {
		return EntryHash{}, &AccessDeniedError{Requester: requester}
	}
	return r.dag.insert(entry, parents), nil
}

// WriteLatest appends entry as a child of the current frontier, refusing
// if the frontier has more than one entry (an unresolved branch that the
// caller must merge first, see WriteMergingBranches).
func (r *Register) WriteLatest(entry Entry, requester User) (EntryHash, error) {
	if !r.CheckUserRights(requester) {
		return EntryHash{}, &AccessDeniedError{Requester: requester}
	}
	frontier := r.dag.frontier()
	if len(frontier) > 1 {
		return EntryHash{}, &ContentBranchDetectedError{Frontier: frontier}
	}
	return r.dag.insert(entry, frontier), nil
}

// WriteMergingBranches appends entry as a child of every node currently
// in the frontier, collapsing any concurrent branches into one.
func (r *Register) WriteMergingBranches(entry Entry, requester User) (EntryHash, error) {
	if !r.CheckUserRights(requester) {
		return EntryHash{}, &AccessDeniedError{Requester: requester}
	}
	return r.dag.insert(entry, r.dag.frontier()), nil
}

// Merge folds other's nodes into r. Merge is commutative, associative,
// and idempotent: nodes are content addressed, so re-inserting a node
// already present is a no-op, and the resulting frontier depends only on
// the union of nodes seen, never on the order they arrived in.
func (r *Register) Merge(other *Register) {
	for h, n := range other.dag.nodes {
		if _, ok := r.dag.nodes[h]; ok {
			continue
		}
		r.dag.nodes[h] = n
	}
}
