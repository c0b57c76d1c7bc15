// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package overlay defines the DHT/transport boundary spec.md §1 treats
// as an external collaborator: peer discovery, closest-peer lookup, and
// request/response delivery. Only the interface is specified here,
// grounded on the teacher's networking/sender.Sender interface-only
// file; production code plugs in a real Kademlia-style implementation.
package overlay

import (
	"context"

	"github.com/luxfi/ids"
	"github.com/luxfi/storanet/address"
	"github.com/luxfi/storanet/protocol"
)

// PeerEventKind discriminates an Event published by the overlay.
type PeerEventKind uint8

const (
	// PeerAdded fires when a new peer joins the node's routing table.
	PeerAdded PeerEventKind = iota
	// PeerRemoved fires when a peer drops out of the routing table.
	PeerRemoved
)

// PeerEvent is a routing-table change the node reacts to (see
// node.Node.handleOverlayEvent).
type PeerEvent struct {
	Kind PeerEventKind
	Peer ids.NodeID
}

// Overlay is the transport a node or client replicates requests over.
// Implementations own peer discovery and delivery; this package only
// specifies the shape a caller depends on.
type Overlay interface {
	// NodeGetClosestPeers returns up to k peers nearest to target by XOR
	// distance, closest first.
	NodeGetClosestPeers(ctx context.Context, target address.Address, k int) ([]ids.NodeID, error)

	// SendRequest delivers req to peer and blocks for its response.
	SendRequest(ctx context.Context, peer ids.NodeID, req protocol.Request) (protocol.Response, error)

	// SendResponse is used by a node handling an inbound request to
	// reply along the same channel the request arrived on. It is not
	// used by send_to_closest/send_first_ok callers, which get the
	// response as SendRequest's return value instead; it exists for
	// symmetry with the teacher's request/response transport shape and
	// for overlay implementations that model delivery asynchronously.
	SendResponse(ctx context.Context, peer ids.NodeID, resp protocol.Response) error

	// Events returns a channel of routing-table changes.
	Events() <-chan PeerEvent
}
