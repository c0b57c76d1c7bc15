// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package closegroup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	luxids "github.com/luxfi/ids"
	"github.com/luxfi/storanet/address"
	"github.com/luxfi/storanet/overlay/overlaymock"
	"github.com/luxfi/storanet/protocol"
)

// These tests drive Client against a mocked Overlay rather than the
// in-memory mesh, so transport-level failures (an unreachable peer, a peer
// lookup erroring outright) can be asserted without standing up real peers.
func TestSendFirstOKReturnsFirstSuccessAgainstMockOverlay(t *testing.T) {
	ctrl := gomock.NewController(t)
	ov := overlaymock.NewOverlay(ctrl)

	addr := address.ChunkAddress([]byte("mocked"))
	req := chunkQueryRequest(addr)
	peerA := luxids.GenerateTestNodeID()
	peerB := luxids.GenerateTestNodeID()

	ov.EXPECT().
		NodeGetClosestPeers(gomock.Any(), gomock.Eq(addr), gomock.Eq(2)).
		Return([]luxids.NodeID{peerA, peerB}, nil)
	ov.EXPECT().
		SendRequest(gomock.Any(), gomock.Eq(peerA), gomock.Any()).
		Return(protocol.Response{}, errors.New("peerA unreachable"))
	ov.EXPECT().
		SendRequest(gomock.Any(), gomock.Eq(peerB), gomock.Any()).
		Return(protocol.Response{Kind: protocol.KindQuery, Query: &protocol.QueryResponse{Chunk: []byte("hit")}}, nil)

	client := New(ov, 2, time.Second)
	resp, err := client.SendFirstOK(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, []byte("hit"), resp.Query.Chunk)
}

func TestSendFirstOKSurfacesTransportErrorWhenEveryPeerFailsAgainstMockOverlay(t *testing.T) {
	ctrl := gomock.NewController(t)
	ov := overlaymock.NewOverlay(ctrl)

	addr := address.ChunkAddress([]byte("mocked-fail"))
	req := chunkQueryRequest(addr)
	peer := luxids.GenerateTestNodeID()

	ov.EXPECT().
		NodeGetClosestPeers(gomock.Any(), gomock.Eq(addr), gomock.Eq(1)).
		Return([]luxids.NodeID{peer}, nil)
	ov.EXPECT().
		SendRequest(gomock.Any(), gomock.Eq(peer), gomock.Any()).
		Return(protocol.Response{}, errors.New("unreachable"))

	client := New(ov, 1, time.Second)
	_, err := client.SendFirstOK(context.Background(), req)
	require.Error(t, err)
	var peerErr *PeerError
	require.ErrorAs(t, err, &peerErr)
}

func TestSendToClosestPropagatesClosestPeerLookupErrorAgainstMockOverlay(t *testing.T) {
	ctrl := gomock.NewController(t)
	ov := overlaymock.NewOverlay(ctrl)

	addr := address.ChunkAddress([]byte("lookup-fail"))
	req := chunkQueryRequest(addr)

	ov.EXPECT().
		NodeGetClosestPeers(gomock.Any(), gomock.Eq(addr), gomock.Eq(3)).
		Return(nil, errors.New("routing table empty"))

	client := New(ov, 3, time.Second)
	_, err := client.SendToClosest(context.Background(), req)
	require.Error(t, err)
}
