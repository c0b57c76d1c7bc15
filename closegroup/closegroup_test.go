// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package closegroup

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	luxids "github.com/luxfi/ids"
	"github.com/luxfi/storanet/address"
	"github.com/luxfi/storanet/metrics"
	"github.com/luxfi/storanet/overlay"
	"github.com/luxfi/storanet/protocol"
	"github.com/luxfi/storanet/spend"
)

func newMeshOfSize(t *testing.T, n int, handler overlay.Handler) (*overlay.Mesh, []luxids.NodeID) {
	t.Helper()
	mesh := overlay.NewMesh()
	peers := make([]luxids.NodeID, n)
	for i := 0; i < n; i++ {
		peers[i] = luxids.GenerateTestNodeID()
		mesh.Join(peers[i], handler)
	}
	return mesh, peers
}

func chunkQueryRequest(addr address.Address) protocol.Request {
	return protocol.Request{
		Kind:  protocol.KindQuery,
		Query: &protocol.Query{Kind: protocol.QueryGetChunk, ChunkAddr: addr},
	}
}

func TestSendToClosestCollectsOneOutcomePerPeer(t *testing.T) {
	handler := func(_ context.Context, _ luxids.NodeID, _ protocol.Request) protocol.Response {
		return protocol.Response{Kind: protocol.KindQuery, Query: &protocol.QueryResponse{Chunk: []byte("ok")}}
	}
	mesh, peers := newMeshOfSize(t, 5, handler)
	client := New(mesh.ViewAs(peers[0]), 5, time.Second)

	addr := address.ChunkAddress([]byte("x"))
	outcomes, err := client.SendToClosest(context.Background(), chunkQueryRequest(addr))
	require.NoError(t, err)
	require.Len(t, outcomes, 5)
	for _, o := range outcomes {
		require.NoError(t, o.Err)
		require.True(t, o.Response.Succeeded())
	}
}

func TestSendToClosestRecordsFanoutMetricsPerPeer(t *testing.T) {
	handler := func(_ context.Context, _ luxids.NodeID, _ protocol.Request) protocol.Response {
		return protocol.Response{Kind: protocol.KindQuery, Query: &protocol.QueryResponse{Chunk: []byte("ok")}}
	}
	mesh, peers := newMeshOfSize(t, 3, handler)
	client := New(mesh.ViewAs(peers[0]), 3, time.Second)

	reg := prometheus.NewRegistry()
	set, err := metrics.NewSet("fanouttest", reg)
	require.NoError(t, err)
	client.Metrics = set

	addr := address.ChunkAddress([]byte("metered"))
	_, err = client.SendToClosest(context.Background(), chunkQueryRequest(addr))
	require.NoError(t, err)

	require.Equal(t, float64(3), testutil.ToFloat64(set.CloseGroupFanoutOK.WithLabelValues("query:chunk")))
}

func TestReduceGetDbcSpendRequiresUnanimity(t *testing.T) {
	s := spend.SignedSpend{ID: [32]byte{1}}
	other := spend.SignedSpend{ID: [32]byte{1}, DstTxHash: spend.TxHash{9}}

	agreeing := []Outcome{
		{Response: protocol.Response{Kind: protocol.KindQuery, Query: &protocol.QueryResponse{Spend: &s}}},
		{Response: protocol.Response{Kind: protocol.KindQuery, Query: &protocol.QueryResponse{Spend: &s}}},
		{Response: protocol.Response{Kind: protocol.KindQuery, Query: &protocol.QueryResponse{Spend: &s}}},
	}
	resp, err := ReduceGetDbcSpend(agreeing, 3)
	require.NoError(t, err)
	require.True(t, resp.Query.Spend.Equal(s))

	disagreeing := []Outcome{
		{Response: protocol.Response{Kind: protocol.KindQuery, Query: &protocol.QueryResponse{Spend: &s}}},
		{Response: protocol.Response{Kind: protocol.KindQuery, Query: &protocol.QueryResponse{Spend: &other}}},
		{Response: protocol.Response{Kind: protocol.KindQuery, Query: &protocol.QueryResponse{Spend: &s}}},
	}
	_, err = ReduceGetDbcSpend(disagreeing, 3)
	require.ErrorIs(t, err, ErrUnexpectedResponses)
}

func TestReduceGetRegisterAcceptsFirstSuccess(t *testing.T) {
	outcomes := []Outcome{
		{Err: &PeerError{Err: context.DeadlineExceeded}},
		{Response: protocol.Response{Kind: protocol.KindQuery, Query: &protocol.QueryResponse{Register: nil}}},
	}
	resp, err := ReduceGetRegister(outcomes)
	require.NoError(t, err)
	require.True(t, resp.Succeeded())
}

func TestReduceAllMustSucceedFailsOnAnyShortfall(t *testing.T) {
	ok := protocol.Response{Kind: protocol.KindCmd, Cmd: &protocol.CmdResponse{Outcome: protocol.OutcomeRegisterCreated}}
	outcomes := []Outcome{
		{Response: ok},
		{Response: ok},
		{Err: &PeerError{Err: context.DeadlineExceeded}},
	}
	_, err := ReduceAllMustSucceed(outcomes, 3)
	require.Error(t, err)

	allOK := []Outcome{{Response: ok}, {Response: ok}, {Response: ok}}
	resp, err := ReduceAllMustSucceed(allOK, 3)
	require.NoError(t, err)
	require.True(t, resp.Succeeded())
}
