// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package client

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	luxids "github.com/luxfi/ids"
	"github.com/luxfi/storanet/closegroup"
	"github.com/luxfi/storanet/keys"
	"github.com/luxfi/storanet/node"
	"github.com/luxfi/storanet/overlay"
	"github.com/luxfi/storanet/protocol"
	"github.com/luxfi/storanet/register"
)

func TestRegisterCreateThenWriteOnlineThenRetrieveSeesEntry(t *testing.T) {
	c, _ := newTestClient(t, 3)

	reg := NewRegister(c, [32]byte{5}, 0)
	require.NoError(t, reg.Sync(context.Background()))
	require.NoError(t, reg.WriteOnline(context.Background(), register.Entry("first")))
	require.Equal(t, 0, reg.PendingOps())

	fetched, err := Retrieve(context.Background(), c, [32]byte{5}, 0)
	require.NoError(t, err)
	require.Equal(t, []register.Entry{register.Entry("first")}, fetched.Read())
}

// TestRegisterPushRetriesFailedOpAtOriginalPosition drives the scenario
// where a close-group member is briefly unreachable while the client has
// queued edits offline: the failing op must stay at the front of the
// queue across the outage, and the queue must fully drain once the peer
// recovers, without reordering later ops ahead of it.
func TestRegisterPushRetriesFailedOpAtOriginalPosition(t *testing.T) {
	mesh := overlay.NewMesh()
	const groupSize = 3
	nodes := make([]*node.Node, groupSize)
	var failing bool
	for i := 0; i < groupSize; i++ {
		self := luxids.GenerateTestNodeID()
		ov := mesh.ViewAs(self)
		cg := closegroup.New(ov, groupSize, time.Second)
		n := node.New(ov, cg, nil, nil, nil)
		idx := i
		mesh.Join(self, func(ctx context.Context, _ luxids.NodeID, req protocol.Request) protocol.Response {
			if idx == 0 && failing && req.Kind == protocol.KindCmd && req.Cmd.Kind == protocol.CmdRegister {
				return protocol.Response{Kind: protocol.KindCmd, Cmd: &protocol.CmdResponse{Err: fmt.Errorf("simulated peer outage")}}
			}
			return nodes[idx].Handle(ctx, req)
		})
		nodes[i] = n
	}

	clientSelf := luxids.GenerateTestNodeID()
	cg := closegroup.New(mesh.ViewAs(clientSelf), groupSize, time.Second)
	sk, err := keys.Generate()
	require.NoError(t, err)
	c := New(cg, sk)

	reg := NewRegister(c, [32]byte{6}, 0)
	require.NoError(t, reg.Sync(context.Background()))

	require.NoError(t, reg.Write(register.Entry("first-edit")))
	require.Equal(t, 1, reg.PendingOps())

	failing = true
	require.Error(t, reg.Push(context.Background()))
	require.Equal(t, 1, reg.PendingOps())

	require.NoError(t, reg.WriteMergingBranches(register.Entry("second-edit")))
	require.Equal(t, 2, reg.PendingOps())

	require.Error(t, reg.Push(context.Background()))
	require.Equal(t, 2, reg.PendingOps())

	failing = false
	require.NoError(t, reg.Push(context.Background()))
	require.Equal(t, 0, reg.PendingOps())

	fetched, err := Retrieve(context.Background(), c, [32]byte{6}, 0)
	require.NoError(t, err)
	require.Equal(t, []register.Entry{register.Entry("second-edit")}, fetched.Read())
}
