// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package events

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/storanet/address"
)

func TestBroadcastIsSeenByAllSubscribers(t *testing.T) {
	b := NewBus(4)
	sub1 := b.Subscribe()
	sub2 := b.Subscribe()

	addr := address.ChunkAddress([]byte("x"))
	b.Broadcast(NodeEvent{Kind: ChunkStored, Addr: addr})

	ev1 := <-sub1
	ev2 := <-sub2
	require.Equal(t, ChunkStored, ev1.Kind)
	require.Equal(t, ChunkStored, ev2.Kind)
	require.True(t, ev1.Addr.Equal(addr))
	require.True(t, ev2.Addr.Equal(addr))
}

func TestFullSubscriberChannelDropsOldestEvent(t *testing.T) {
	b := NewBus(2)
	sub := b.Subscribe()

	addrs := make([]address.Address, 3)
	for i := range addrs {
		addrs[i] = address.ChunkAddress([]byte{byte(i)})
		b.Broadcast(NodeEvent{Kind: ChunkStored, Addr: addrs[i]})
	}

	first := <-sub
	second := <-sub
	require.True(t, first.Addr.Equal(addrs[1]), "oldest event should have been dropped")
	require.True(t, second.Addr.Equal(addrs[2]))

	select {
	case <-sub:
		t.Fatal("expected only 2 buffered events")
	default:
	}

	require.Equal(t, int64(1), b.DroppedCount())
}

func TestCloseNotifiesSubscribersAndClosesChannel(t *testing.T) {
	b := NewBus(4)
	sub := b.Subscribe()
	b.Close()

	ev, ok := <-sub
	require.True(t, ok)
	require.Equal(t, ChannelClosed, ev.Kind)

	_, ok = <-sub
	require.False(t, ok)
}
