// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package overlay

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/luxfi/ids"
	"github.com/luxfi/storanet/address"
	"github.com/luxfi/storanet/protocol"
	"github.com/luxfi/storanet/utils/set"
)

// Handler processes an inbound request for one simulated peer, the same
// role a real node's request pipeline plays.
type Handler func(ctx context.Context, from ids.NodeID, req protocol.Request) protocol.Response

// Mesh is an in-memory Overlay wiring any number of in-process peers
// together, used for tests and local multi-node simulation in place of
// a real DHT transport. Grounded on the teacher's test-double style for
// its networking interfaces (sendertest, validatorstest): a map keyed
// lookup plus a small amount of bookkeeping, no real sockets.
type Mesh struct {
	mu       sync.Mutex
	peers    []ids.NodeID
	joined   set.Set[ids.NodeID]
	handlers map[ids.NodeID]Handler
	events   map[ids.NodeID]chan PeerEvent
}

// NewMesh returns an empty Mesh.
func NewMesh() *Mesh {
	return &Mesh{
		handlers: make(map[ids.NodeID]Handler),
		events:   make(map[ids.NodeID]chan PeerEvent),
	}
}

// Join registers peer with handler, announcing it to every other peer
// already in the mesh via a PeerAdded event. Re-joining a peer that is
// already a member is a no-op: the mesh has no notion of a peer leaving
// and rejoining, so a duplicate Join most likely means caller error.
func (m *Mesh) Join(peer ids.NodeID, handler Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.joined.Contains(peer) {
		return
	}
	m.joined.Add(peer)
	m.peers = append(m.peers, peer)
	m.handlers[peer] = handler
	m.events[peer] = make(chan PeerEvent, 64)

	for _, other := range m.peers {
		if other == peer {
			continue
		}
		m.notify(other, PeerEvent{Kind: PeerAdded, Peer: peer})
		m.notify(peer, PeerEvent{Kind: PeerAdded, Peer: other})
	}
}

// notify must be called with m.mu held.
func (m *Mesh) notify(peer ids.NodeID, ev PeerEvent) {
	ch, ok := m.events[peer]
	if !ok {
		return
	}
	select {
	case ch <- ev:
	default:
	}
}

// ViewAs returns an Overlay handle scoped to a single peer's perspective
// (its own Events channel), sharing the mesh's routing.
func (m *Mesh) ViewAs(self ids.NodeID) Overlay {
	return &meshView{mesh: m, self: self}
}

type meshView struct {
	mesh *Mesh
	self ids.NodeID
}

func (v *meshView) NodeGetClosestPeers(_ context.Context, target address.Address, k int) ([]ids.NodeID, error) {
	v.mesh.mu.Lock()
	peers := make([]ids.NodeID, len(v.mesh.peers))
	copy(peers, v.mesh.peers)
	v.mesh.mu.Unlock()

	sort.Slice(peers, func(i, j int) bool {
		di := address.FromPeer(peers[i]).Distance(target)
		dj := address.FromPeer(peers[j]).Distance(target)
		return address.Less(di, dj)
	})
	if k < len(peers) {
		peers = peers[:k]
	}
	return peers, nil
}

func (v *meshView) SendRequest(ctx context.Context, peer ids.NodeID, req protocol.Request) (protocol.Response, error) {
	v.mesh.mu.Lock()
	handler, ok := v.mesh.handlers[peer]
	v.mesh.mu.Unlock()
	if !ok {
		return protocol.Response{}, fmt.Errorf("overlay: unknown peer %s", peer)
	}
	return handler(ctx, v.self, req), nil
}

func (v *meshView) SendResponse(_ context.Context, _ ids.NodeID, _ protocol.Response) error {
	return nil
}

func (v *meshView) Events() <-chan PeerEvent {
	v.mesh.mu.Lock()
	defer v.mesh.mu.Unlock()
	return v.mesh.events[v.self]
}
