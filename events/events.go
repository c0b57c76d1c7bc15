// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package events implements the node event bus (C7): a bounded MPMC
// broadcast of NodeEvents to any number of subscribers, dropping the
// oldest queued event on a full subscriber channel rather than blocking
// the publisher. Grounded on sn_node's NodeEventsChannel (tokio
// broadcast, capacity 10,000).
package events

import (
	"sync"

	"github.com/luxfi/storanet/address"
	"github.com/luxfi/storanet/utils"
)

// Kind discriminates a NodeEvent.
type Kind uint8

const (
	ConnectedToNetwork Kind = iota
	ChunkStored
	RegisterCreated
	RegisterEdited
	SpendStored
	DoubleSpendDetected
	ChannelClosed
)

// NodeEvent is one occurrence on the bus. Only the fields relevant to
// Kind are populated.
type NodeEvent struct {
	Kind Kind
	Addr address.Address

	// DoubleSpendB is the second address of a DoubleSpendDetected pair;
	// Addr carries the first.
	DoubleSpendB address.Address
}

// DefaultCapacity is the per-subscriber buffer size spec.md §5 and
// sn_node's NodeEventsChannel both use.
const DefaultCapacity = 10_000

// Bus is a multi-producer, multi-consumer broadcast channel of
// NodeEvents.
type Bus struct {
	mu          sync.Mutex
	capacity    int
	subscribers []chan NodeEvent
	dropped     utils.AtomicInt
}

// NewBus returns a Bus whose subscriber channels buffer up to capacity
// events each. capacity <= 0 uses DefaultCapacity.
func NewBus(capacity int) *Bus {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Bus{capacity: capacity}
}

// Subscribe returns a new channel that receives every event broadcast
// from this point on.
func (b *Bus) Subscribe() <-chan NodeEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan NodeEvent, b.capacity)
	b.subscribers = append(b.subscribers, ch)
	return ch
}

// Broadcast sends ev to every subscriber. A subscriber whose channel is
// full has its oldest queued event dropped to make room, so Broadcast
// never blocks the publisher.
func (b *Bus) Broadcast(ev NodeEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subscribers {
		for {
			select {
			case ch <- ev:
			default:
				select {
				case <-ch:
					b.dropped.Inc()
				default:
				}
				continue
			}
			break
		}
	}
}

// DroppedCount returns the number of queued events discarded across all
// subscribers to make room for a newer one, since startup.
func (b *Bus) DroppedCount() int64 {
	return b.dropped.Get()
}

// Close broadcasts ChannelClosed and closes every subscriber channel.
// The bus must not be used afterward.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subscribers {
		select {
		case ch <- NodeEvent{Kind: ChannelClosed}:
		default:
		}
		close(ch)
	}
	b.subscribers = nil
}
