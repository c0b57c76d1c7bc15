// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package client implements the client-side pipeline: replicating
// mutations to a close group and interpreting their heterogeneous
// responses (C4's caller side), plus the client register local handle
// that accumulates offline edits for later sync/push.
package client

import (
	"context"
	"fmt"

	"github.com/luxfi/storanet/closegroup"
	"github.com/luxfi/storanet/keys"
	"github.com/luxfi/storanet/protocol"
	"github.com/luxfi/storanet/spend"
)

// Client replicates requests to a close group and reduces the
// per-request-kind responses per spec.md §4.4's accept rules.
type Client struct {
	CloseGroup *closegroup.Client
	SignerKey  keys.SecretKey
}

// New builds a Client signing its own writes with signerKey.
func New(closeGroup *closegroup.Client, signerKey keys.SecretKey) *Client {
	return &Client{CloseGroup: closeGroup, SignerKey: signerKey}
}

// SignerPublicKey returns the public half of the client's signing key.
func (c *Client) SignerPublicKey() keys.PublicKey {
	return c.SignerKey.PublicKey()
}

// PutChunk stores content, replicated to every member of its close
// group; every peer must accept it.
func (c *Client) PutChunk(ctx context.Context, content []byte) error {
	req := protocol.Request{
		Kind: protocol.KindCmd,
		Cmd:  &protocol.Cmd{Kind: protocol.CmdChunk, ChunkBytes: content},
	}
	outcomes, err := c.CloseGroup.SendToClosest(ctx, req)
	if err != nil {
		return err
	}
	_, err = closegroup.ReduceAllMustSucceed(outcomes, c.CloseGroup.GroupSize)
	return err
}

// GetChunk fetches content at addr; the first successful response wins,
// matching GetRegister's accept rule (chunks are immutable and content
// addressed, so any replica that answers is correct).
func (c *Client) GetChunk(ctx context.Context, addr protocol.Query) ([]byte, error) {
	req := protocol.Request{Kind: protocol.KindQuery, Query: &addr}
	outcomes, err := c.CloseGroup.SendToClosest(ctx, req)
	if err != nil {
		return nil, err
	}
	resp, err := closegroup.ReduceFirstSuccess(outcomes)
	if err != nil {
		return nil, err
	}
	return resp.Query.Chunk, nil
}

// SubmitSpend replicates a signed spend and its source transaction,
// requiring every close-group member to accept it.
func (c *Client) SubmitSpend(ctx context.Context, s spend.SignedSpend, tx spend.Transaction) error {
	req := protocol.Request{
		Kind: protocol.KindCmd,
		Cmd:  &protocol.Cmd{Kind: protocol.CmdDbc, SignedSpend: &s, SourceTx: &tx},
	}
	outcomes, err := c.CloseGroup.SendToClosest(ctx, req)
	if err != nil {
		return err
	}
	_, err = closegroup.ReduceAllMustSucceed(outcomes, c.CloseGroup.GroupSize)
	return err
}

// GetSpend fetches the spend recorded at addr, requiring unanimity
// across the close group: a single divergent replica means either a
// double spend or a stale follower, either of which invalidates the read.
func (c *Client) GetSpend(ctx context.Context, addr protocol.Query) (spend.SignedSpend, error) {
	req := protocol.Request{Kind: protocol.KindQuery, Query: &addr}
	outcomes, err := c.CloseGroup.SendToClosest(ctx, req)
	if err != nil {
		return spend.SignedSpend{}, err
	}
	resp, err := closegroup.ReduceGetDbcSpend(outcomes, c.CloseGroup.GroupSize)
	if err != nil {
		return spend.SignedSpend{}, err
	}
	if resp.Query.Spend == nil {
		return spend.SignedSpend{}, fmt.Errorf("client: GetDbcSpend succeeded with no spend payload")
	}
	return *resp.Query.Spend, nil
}
