// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package node

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	luxids "github.com/luxfi/ids"
	"github.com/luxfi/storanet/address"
	"github.com/luxfi/storanet/closegroup"
	"github.com/luxfi/storanet/keys"
	"github.com/luxfi/storanet/overlay"
	"github.com/luxfi/storanet/protocol"
	"github.com/luxfi/storanet/register"
	"github.com/luxfi/storanet/spend"
)

func newTestNode(t *testing.T, mesh *overlay.Mesh, self luxids.NodeID, groupSize int) *Node {
	t.Helper()
	ov := mesh.ViewAs(self)
	cg := closegroup.New(ov, groupSize, 0)
	return New(ov, cg, nil, nil, nil)
}

func TestHandleChunkCmdStoresAndReadsBack(t *testing.T) {
	mesh := overlay.NewMesh()
	self := luxids.GenerateTestNodeID()
	var n *Node
	n = newTestNode(t, mesh, self, 1)
	mesh.Join(self, func(ctx context.Context, _ luxids.NodeID, req protocol.Request) protocol.Response {
		return n.Handle(ctx, req)
	})

	content := []byte("payload")
	resp := n.Handle(context.Background(), protocol.Request{
		Kind: protocol.KindCmd,
		Cmd:  &protocol.Cmd{Kind: protocol.CmdChunk, ChunkBytes: content},
	})
	require.True(t, resp.Succeeded())

	readResp := n.Handle(context.Background(), protocol.Request{
		Kind:  protocol.KindQuery,
		Query: &protocol.Query{Kind: protocol.QueryGetChunk, ChunkAddr: address.ChunkAddress(content)},
	})
	require.True(t, readResp.Succeeded())
	require.Equal(t, content, readResp.Query.Chunk)
}

func TestHandleRegisterCreateThenEditRoundTrips(t *testing.T) {
	mesh := overlay.NewMesh()
	self := luxids.GenerateTestNodeID()
	var n *Node
	n = newTestNode(t, mesh, self, 1)
	mesh.Join(self, func(ctx context.Context, _ luxids.NodeID, req protocol.Request) protocol.Response {
		return n.Handle(ctx, req)
	})

	owner, err := keys.Generate()
	require.NoError(t, err)
	ownerUser := register.KeyUser(owner.PublicKey())

	createResp := n.Handle(context.Background(), protocol.Request{
		Kind: protocol.KindCmd,
		Cmd: &protocol.Cmd{
			Kind: protocol.CmdRegister,
			Register: &protocol.RegisterCmd{
				Kind:  protocol.RegisterCmdCreate,
				Owner: ownerUser,
				Name:  [32]byte{3},
			},
		},
	})
	require.True(t, createResp.Succeeded())

	addr := register.New(ownerUser, [32]byte{3}, 0, nil).Address()
	op := register.NewRegisterOp(addr, register.Entry("hi"), nil, ownerUser)
	require.NoError(t, op.Sign(owner))

	editResp := n.Handle(context.Background(), protocol.Request{
		Kind: protocol.KindCmd,
		Cmd: &protocol.Cmd{
			Kind:     protocol.CmdRegister,
			Register: &protocol.RegisterCmd{Kind: protocol.RegisterCmdEdit, Op: op},
		},
	})
	require.True(t, editResp.Succeeded())

	readResp := n.Handle(context.Background(), protocol.Request{
		Kind:  protocol.KindQuery,
		Query: &protocol.Query{Kind: protocol.QueryGetRegister, RegisterAddr: addr},
	})
	require.True(t, readResp.Succeeded())
	require.Equal(t, []register.Entry{register.Entry("hi")}, readResp.Query.Register)
}

func TestHandleDbcCmdDetectsDoubleSpendAcrossCloseGroup(t *testing.T) {
	mesh := overlay.NewMesh()
	const groupSize = 3
	nodes := make([]*Node, groupSize)
	for i := range nodes {
		self := luxids.GenerateTestNodeID()
		n := newTestNode(t, mesh, self, groupSize)
		idx := i
		mesh.Join(self, func(ctx context.Context, _ luxids.NodeID, req protocol.Request) protocol.Response {
			return nodes[idx].Handle(ctx, req)
		})
		nodes[i] = n
	}

	tx := spend.Transaction{Outputs: []spend.Output{{ID: [32]byte{1}, Amount: spend.BlindedAmount{1}}}}
	s := spend.SignedSpend{ID: [32]byte{1}, SrcTxHash: tx.Hash()}

	for _, n := range nodes {
		resp := n.Handle(context.Background(), protocol.Request{
			Kind: protocol.KindCmd,
			Cmd:  &protocol.Cmd{Kind: protocol.CmdDbc, SignedSpend: &s, SourceTx: &tx},
		})
		require.True(t, resp.Succeeded())
	}

	s2 := spend.SignedSpend{ID: [32]byte{1}, SrcTxHash: tx.Hash(), DstTxHash: spend.TxHash{9}}
	resp := nodes[0].Handle(context.Background(), protocol.Request{
		Kind: protocol.KindCmd,
		Cmd:  &protocol.Cmd{Kind: protocol.CmdDbc, SignedSpend: &s2, SourceTx: &tx},
	})
	require.False(t, resp.Succeeded())

	// nodes[0] handled the conflicting write directly (storage detects
	// it) and also receives its own DoubleSpendAttempted broadcast; the
	// other two close-group members learn of the conflict only via that
	// broadcast.
	require.Len(t, nodes[0].Storage.DoubleSpendLog(), 2)
	require.Len(t, nodes[1].Storage.DoubleSpendLog(), 1)
	require.Len(t, nodes[2].Storage.DoubleSpendLog(), 1)
}
