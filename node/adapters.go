// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package node

import (
	"context"
	"errors"
	"fmt"

	"github.com/luxfi/storanet/address"
	"github.com/luxfi/storanet/closegroup"
	"github.com/luxfi/storanet/events"
	"github.com/luxfi/storanet/protocol"
	"github.com/luxfi/storanet/spend"
	"github.com/luxfi/storanet/storage"
)

// publisherAdapter implements storage.Publisher by relaying onto the
// node's event bus and bumping its metrics, keeping both concerns out of
// the storage package itself.
type publisherAdapter struct {
	node *Node
}

func (a *publisherAdapter) ChunkStored(addr address.Address) {
	a.node.Metrics.IncChunksStored()
	a.node.Bus.Broadcast(events.NodeEvent{Kind: events.ChunkStored, Addr: addr})
}

func (a *publisherAdapter) RegisterCreated(addr address.Address) {
	a.node.Metrics.IncRegistersCreated()
	a.node.Bus.Broadcast(events.NodeEvent{Kind: events.RegisterCreated, Addr: addr})
}

func (a *publisherAdapter) RegisterEdited(addr address.Address) {
	a.node.Metrics.IncRegistersEdited()
	a.node.Bus.Broadcast(events.NodeEvent{Kind: events.RegisterEdited, Addr: addr})
}

func (a *publisherAdapter) SpendStored(addr address.Address) {
	a.node.Metrics.IncSpendsStored()
	a.node.Bus.Broadcast(events.NodeEvent{Kind: events.SpendStored, Addr: addr})
}

func (a *publisherAdapter) DoubleSpendDetected(addrA, addrB address.Address) {
	a.node.Metrics.IncDoubleSpendsDetected()
	a.node.Bus.Broadcast(events.NodeEvent{Kind: events.DoubleSpendDetected, Addr: addrA, DoubleSpendB: addrB})
}

// conflictAdapter implements spend.ConflictNotifier by broadcasting a
// DoubleSpendAttempted event to the close group via the node's overlay
// fan-out, per spec.md §4.3 step 4.
type conflictAdapter struct {
	node *Node
}

func (a *conflictAdapter) NotifyDoubleSpend(newSpend, existing spend.SignedSpend) {
	if a.node.CloseGroup == nil {
		return
	}
	req := protocol.Request{
		Kind: protocol.KindEvent,
		Event: &protocol.Event{
			Kind:         protocol.EventDoubleSpendAttempted,
			DoubleSpendA: &newSpend,
			DoubleSpendB: &existing,
		},
	}
	// Fire-and-forget: events carry no response, so any per-peer errors
	// are simply dropped, matching spec.md §4.5.
	_, _ = a.node.CloseGroup.SendToClosest(context.Background(), req)
}

// parentFetcherAdapter implements spend.ParentFetcher by asking the
// close-group client to fetch whatever spend, if any, the network
// currently has recorded at a parent's address, applying the GetDbcSpend
// unanimity rule across the responses.
type parentFetcherAdapter struct {
	closeGroup *closegroup.Client
}

func (a *parentFetcherAdapter) GetSpend(ctx context.Context, addr address.Address) (spend.SignedSpend, error) {
	req := protocol.Request{
		Kind:  protocol.KindQuery,
		Query: &protocol.Query{Kind: protocol.QueryGetDbcSpend, SpendAddr: addr},
	}
	outcomes, err := a.closeGroup.SendToClosest(ctx, req)
	if err != nil {
		return spend.SignedSpend{}, err
	}
	resp, err := closegroup.ReduceGetDbcSpend(outcomes, a.closeGroup.GroupSize)
	if err != nil {
		var notFound *storage.SpendNotFoundError
		if errors.As(err, &notFound) {
			return spend.SignedSpend{}, fmt.Errorf("%w: %s", spend.ErrParentNotFound, addr)
		}
		return spend.SignedSpend{}, err
	}
	return *resp.Query.Spend, nil
}
