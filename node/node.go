// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package node implements the request pipeline (C5): it receives an
// inbound protocol.Request, routes it to the spend validator or the
// storage facade, and turns the result back into a protocol.Response.
// It also reacts to overlay peer events, per spec.md §4.5.
package node

import (
	"context"
	"math/rand"

	luxlog "github.com/luxfi/log"

	"github.com/luxfi/storanet/address"
	"github.com/luxfi/storanet/closegroup"
	"github.com/luxfi/storanet/events"
	nooplog "github.com/luxfi/storanet/log"
	"github.com/luxfi/storanet/metrics"
	"github.com/luxfi/storanet/overlay"
	"github.com/luxfi/storanet/protocol"
	"github.com/luxfi/storanet/spend"
	"github.com/luxfi/storanet/storage"
)

// Node dispatches inbound requests to the storage facade and the spend
// validator, and publishes storage-visible occurrences onto its event
// bus.
type Node struct {
	Storage    *storage.Facade
	Validator  *spend.Validator
	Bus        *events.Bus
	Overlay    overlay.Overlay
	CloseGroup *closegroup.Client
	Metrics    *metrics.Set
	Log        luxlog.Logger
}

// New wires a Node around storage, a spend validator fetching parents
// through closeGroup, and the overlay it listens for peer events on. bus,
// metricsSet, and logger may all be nil.
func New(ov overlay.Overlay, closeGroup *closegroup.Client, bus *events.Bus, metricsSet *metrics.Set, logger luxlog.Logger) *Node {
	if logger == nil {
		logger = nooplog.NewNoOpLogger()
	}
	if bus == nil {
		bus = events.NewBus(0)
	}

	n := &Node{Bus: bus, Overlay: ov, CloseGroup: closeGroup, Metrics: metricsSet, Log: logger}
	n.Storage = storage.New(&publisherAdapter{node: n})
	n.Validator = spend.NewValidator(&parentFetcherAdapter{closeGroup: closeGroup}, n.Storage, &conflictAdapter{node: n})
	return n
}

// Handle dispatches req, returning the Response to send back to the
// caller. Event requests never produce a response.
func (n *Node) Handle(ctx context.Context, req protocol.Request) protocol.Response {
	switch req.Kind {
	case protocol.KindCmd:
		return n.handleCmd(ctx, req.Cmd)
	case protocol.KindQuery:
		return n.handleQuery(ctx, req.Query)
	case protocol.KindEvent:
		n.handleEvent(req.Event)
		return protocol.Response{}
	default:
		return protocol.Response{}
	}
}

func (n *Node) handleCmd(ctx context.Context, cmd *protocol.Cmd) protocol.Response {
	switch cmd.Kind {
	case protocol.CmdChunk:
		_, err := n.Storage.WriteChunk(ctx, cmd.ChunkBytes)
		return protocol.Response{Kind: protocol.KindCmd, Cmd: &protocol.CmdResponse{Outcome: protocol.OutcomeChunkStored, Err: err}}

	case protocol.CmdRegister:
		return n.handleRegisterCmd(ctx, cmd.Register)

	case protocol.CmdDbc:
		err := n.Validator.Validate(ctx, *cmd.SignedSpend, *cmd.SourceTx)
		return protocol.Response{Kind: protocol.KindCmd, Cmd: &protocol.CmdResponse{Outcome: protocol.OutcomeSpendStored, Err: err}}

	default:
		return protocol.Response{Kind: protocol.KindCmd, Cmd: &protocol.CmdResponse{}}
	}
}

func (n *Node) handleRegisterCmd(ctx context.Context, cmd *protocol.RegisterCmd) protocol.Response {
	switch cmd.Kind {
	case protocol.RegisterCmdCreate:
		_, err := n.Storage.CreateRegister(ctx, cmd.Owner, cmd.Name, cmd.Tag, cmd.Permissions)
		return protocol.Response{Kind: protocol.KindCmd, Cmd: &protocol.CmdResponse{Outcome: protocol.OutcomeRegisterCreated, Err: err}}
	case protocol.RegisterCmdEdit:
		if err := cmd.Op.VerifySignature(); err != nil {
			return protocol.Response{Kind: protocol.KindCmd, Cmd: &protocol.CmdResponse{Outcome: protocol.OutcomeRegisterEdited, Err: err}}
		}
		err := n.Storage.EditRegister(ctx, cmd.Op)
		return protocol.Response{Kind: protocol.KindCmd, Cmd: &protocol.CmdResponse{Outcome: protocol.OutcomeRegisterEdited, Err: err}}
	default:
		return protocol.Response{Kind: protocol.KindCmd, Cmd: &protocol.CmdResponse{}}
	}
}

func (n *Node) handleQuery(ctx context.Context, q *protocol.Query) protocol.Response {
	switch q.Kind {
	case protocol.QueryGetChunk:
		content, err := n.Storage.ReadChunk(ctx, q.ChunkAddr)
		return protocol.Response{Kind: protocol.KindQuery, Query: &protocol.QueryResponse{Chunk: content, Err: err}}

	case protocol.QueryGetRegister:
		entries, owner, perms, err := n.Storage.ReadRegister(ctx, q.RegisterAddr)
		return protocol.Response{Kind: protocol.KindQuery, Query: &protocol.QueryResponse{
			Register:            entries,
			RegisterOwner:       owner,
			RegisterPermissions: perms,
			Err:                 err,
		}}

	case protocol.QueryGetDbcSpend:
		s, err := n.Storage.ReadSpend(ctx, q.SpendAddr)
		var sp *spend.SignedSpend
		if err == nil {
			sp = &s
		}
		return protocol.Response{Kind: protocol.KindQuery, Query: &protocol.QueryResponse{Spend: sp, Err: err}}

	default:
		return protocol.Response{Kind: protocol.KindQuery, Query: &protocol.QueryResponse{}}
	}
}

func (n *Node) handleEvent(ev *protocol.Event) {
	if ev.Kind == protocol.EventDoubleSpendAttempted {
		n.Storage.RecordKnownDoubleSpend(*ev.DoubleSpendA, *ev.DoubleSpendB)
	}
}

// RunOverlayEvents consumes the overlay's peer-event stream until ctx is
// canceled, handling each in handleOverlayEvent.
func (n *Node) RunOverlayEvents(ctx context.Context) {
	if n.Overlay == nil {
		return
	}
	events := n.Overlay.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				// Open question (c): a production node should likely
				// terminate here; today it logs and keeps running.
				n.Log.Warn("overlay event stream closed")
				return
			}
			n.handleOverlayEvent(ctx, ev)
		}
	}
}

func (n *Node) handleOverlayEvent(ctx context.Context, ev overlay.PeerEvent) {
	if ev.Kind != overlay.PeerAdded {
		return
	}
	n.Bus.Broadcast(events.NodeEvent{Kind: events.ConnectedToNetwork})

	var probe [32]byte
	_, _ = rand.Read(probe[:])
	target := address.FromRecordKey(probe[:])
	if _, err := n.Overlay.NodeGetClosestPeers(ctx, target, 1); err != nil {
		n.Log.Debug("peer-added routing probe failed", "error", err)
	}
}
