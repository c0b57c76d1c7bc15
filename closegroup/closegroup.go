// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package closegroup implements the close-group client (C4): replicate
// a request to the K peers closest to its destination address, and
// reduce their heterogeneous responses by a per-request-kind quorum
// rule.
package closegroup

import (
	"context"
	"fmt"
	"time"

	"github.com/luxfi/ids"
	"github.com/luxfi/storanet/metrics"
	"github.com/luxfi/storanet/overlay"
	"github.com/luxfi/storanet/protocol"
)

// DefaultPeerTimeout is the per-peer deadline spec.md §4.4 fixes at 10
// seconds.
const DefaultPeerTimeout = 10 * time.Second

// PeerError wraps the outcome of one peer's attempt at a request: either
// a transport/timeout error, or none if the peer actually responded
// (even with a per-peer protocol-level failure, which lives inside the
// Response itself).
type PeerError struct {
	Peer ids.NodeID
	Err  error
}

func (e *PeerError) Error() string {
	return fmt.Sprintf("closegroup: peer %s: %v", e.Peer, e.Err)
}

func (e *PeerError) Unwrap() error {
	return e.Err
}

// ErrUnexpectedResponses is returned by a reduction rule when the
// collected responses satisfy none of its success or standard failure
// shapes (e.g. GetDbcSpend responses split with no error explaining the
// split).
var ErrUnexpectedResponses = fmt.Errorf("closegroup: unexpected responses")

// Outcome is one peer's result: a Response on success, or an error if
// the transport failed or the peer timed out.
type Outcome struct {
	Peer     ids.NodeID
	Response protocol.Response
	Err      error
}

// Client replicates requests to the K closest peers of an Overlay and
// reduces their responses.
type Client struct {
	Overlay     overlay.Overlay
	GroupSize   int
	PeerTimeout time.Duration

	// Metrics records per-peer fan-out outcomes and latency. A nil Metrics
	// is fine: every metrics.Set method is a no-op on a nil receiver.
	Metrics *metrics.Set
}

// New builds a Client. peerTimeout of zero uses DefaultPeerTimeout.
func New(ov overlay.Overlay, groupSize int, peerTimeout time.Duration) *Client {
	if peerTimeout <= 0 {
		peerTimeout = DefaultPeerTimeout
	}
	return &Client{Overlay: ov, GroupSize: groupSize, PeerTimeout: peerTimeout}
}

// SendToClosest dispatches req to the GroupSize peers closest to its
// destination, in parallel, and returns one Outcome per peer in
// completion order. A peer that doesn't respond within PeerTimeout
// contributes a *PeerError wrapping context.DeadlineExceeded.
func (c *Client) SendToClosest(ctx context.Context, req protocol.Request) ([]Outcome, error) {
	peers, err := c.Overlay.NodeGetClosestPeers(ctx, req.Dst(), c.GroupSize)
	if err != nil {
		return nil, fmt.Errorf("closegroup: resolving closest peers: %w", err)
	}

	results := make(chan Outcome, len(peers))
	for _, peer := range peers {
		go func(peer ids.NodeID) {
			results <- c.sendOne(ctx, peer, req)
		}(peer)
	}

	outcomes := make([]Outcome, 0, len(peers))
	for range peers {
		outcomes = append(outcomes, <-results)
	}
	return outcomes, nil
}

// SendFirstOK dispatches req to the GroupSize closest peers in parallel
// and returns as soon as any one of them succeeds. If none succeeds it
// returns the first failure it collected (a *PeerError for a transport
// failure or timeout, else the peer's own error), or ErrUnexpectedResponses
// when there was no peer to ask. Peers still in flight when the
// first success arrives have their context canceled so they don't keep
// running after the call returns.
func (c *Client) SendFirstOK(ctx context.Context, req protocol.Request) (protocol.Response, error) {
	peers, err := c.Overlay.NodeGetClosestPeers(ctx, req.Dst(), c.GroupSize)
	if err != nil {
		return protocol.Response{}, fmt.Errorf("closegroup: resolving closest peers: %w", err)
	}

	fanoutCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan Outcome, len(peers))
	for _, peer := range peers {
		go func(peer ids.NodeID) {
			results <- c.sendOne(fanoutCtx, peer, req)
		}(peer)
	}

	var firstErr error
	for range peers {
		outcome := <-results
		if outcome.Err == nil && outcome.Response.Succeeded() {
			return outcome.Response, nil
		}
		if firstErr == nil {
			if outcome.Err != nil {
				firstErr = outcome.Err
			} else {
				firstErr = outcome.Response.Err()
			}
		}
	}
	if firstErr != nil {
		return protocol.Response{}, firstErr
	}
	return protocol.Response{}, ErrUnexpectedResponses
}

func (c *Client) sendOne(ctx context.Context, peer ids.NodeID, req protocol.Request) Outcome {
	peerCtx, cancel := context.WithTimeout(ctx, c.PeerTimeout)
	defer cancel()

	start := time.Now()
	resp, err := c.Overlay.SendRequest(peerCtx, peer, req)
	kind := requestKindLabel(req)

	if err != nil {
		c.Metrics.ObserveFanout(kind, "err")
		return Outcome{Peer: peer, Err: &PeerError{Peer: peer, Err: err}}
	}
	if peerCtx.Err() != nil {
		c.Metrics.ObserveFanout(kind, "timeout")
		return Outcome{Peer: peer, Err: &PeerError{Peer: peer, Err: peerCtx.Err()}}
	}
	c.Metrics.ObserveFanout(kind, "ok")
	if c.Metrics != nil && c.Metrics.FanoutLatency != nil {
		c.Metrics.FanoutLatency.Observe(time.Since(start).Seconds())
	}
	return Outcome{Peer: peer, Response: resp}
}

// requestKindLabel reduces req to the metric label ObserveFanout buckets
// fan-out outcomes under, e.g. "cmd:chunk" or "query:register".
func requestKindLabel(req protocol.Request) string {
	switch req.Kind {
	case protocol.KindCmd:
		switch req.Cmd.Kind {
		case protocol.CmdChunk:
			return "cmd:chunk"
		case protocol.CmdRegister:
			return "cmd:register"
		case protocol.CmdDbc:
			return "cmd:dbc"
		}
	case protocol.KindQuery:
		switch req.Query.Kind {
		case protocol.QueryGetChunk:
			return "query:chunk"
		case protocol.QueryGetRegister:
			return "query:register"
		case protocol.QueryGetDbcSpend:
			return "query:dbc"
		}
	case protocol.KindEvent:
		return "event"
	}
	return "unknown"
}
