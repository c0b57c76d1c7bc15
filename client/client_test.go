// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package client

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	luxids "github.com/luxfi/ids"
	"github.com/luxfi/storanet/address"
	"github.com/luxfi/storanet/closegroup"
	"github.com/luxfi/storanet/keys"
	"github.com/luxfi/storanet/node"
	"github.com/luxfi/storanet/overlay"
	"github.com/luxfi/storanet/protocol"
	"github.com/luxfi/storanet/spend"
)

func newTestClient(t *testing.T, groupSize int) (*Client, *overlay.Mesh) {
	t.Helper()
	mesh := overlay.NewMesh()
	nodes := make([]*node.Node, groupSize)
	for i := 0; i < groupSize; i++ {
		self := luxids.GenerateTestNodeID()
		ov := mesh.ViewAs(self)
		cg := closegroup.New(ov, groupSize, time.Second)
		n := node.New(ov, cg, nil, nil, nil)
		idx := i
		mesh.Join(self, func(ctx context.Context, _ luxids.NodeID, req protocol.Request) protocol.Response {
			return nodes[idx].Handle(ctx, req)
		})
		nodes[i] = n
	}

	clientSelf := luxids.GenerateTestNodeID()
	cg := closegroup.New(mesh.ViewAs(clientSelf), groupSize, time.Second)
	sk, err := keys.Generate()
	require.NoError(t, err)
	return New(cg, sk), mesh
}

func TestPutChunkThenGetChunkRoundTrips(t *testing.T) {
	c, _ := newTestClient(t, 3)

	content := []byte("hello close group")
	require.NoError(t, c.PutChunk(context.Background(), content))

	addr := protocol.Query{Kind: protocol.QueryGetChunk, ChunkAddr: address.ChunkAddress(content)}
	got, err := c.GetChunk(context.Background(), addr)
	require.NoError(t, err)
	require.Equal(t, content, got)
}

func TestSubmitSpendThenGetSpendRoundTrips(t *testing.T) {
	c, _ := newTestClient(t, 3)

	tx := spend.Transaction{Outputs: []spend.Output{{ID: [32]byte{7}, Amount: spend.BlindedAmount{1}}}}
	s := spend.SignedSpend{ID: [32]byte{7}, SrcTxHash: tx.Hash()}
	require.NoError(t, c.SubmitSpend(context.Background(), s, tx))

	addr := protocol.Query{Kind: protocol.QueryGetDbcSpend, SpendAddr: s.Address()}
	got, err := c.GetSpend(context.Background(), addr)
	require.NoError(t, err)
	require.True(t, got.Equal(s))
}
