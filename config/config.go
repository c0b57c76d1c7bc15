// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package config holds the tunable parameters of a storanet node or client.
package config

import "time"

// DefaultCloseGroupSize is the network-wide K: the number of closest peers
// a request is replicated to and a response is reduced over.
const DefaultCloseGroupSize = 5

// DefaultPeerTimeout is the per-peer deadline on a close-group request.
const DefaultPeerTimeout = 10 * time.Second

// DefaultEventBusCapacity is the per-subscriber buffer size of the node
// event bus before the oldest queued event is dropped.
const DefaultEventBusCapacity = 10_000

// Config holds the parameters governing close-group replication and
// request timeouts. Both the node and the client construct one of these;
// they must agree on CloseGroupSize for quorum rules to line up.
type Config struct {
	// CloseGroupSize is K, the number of closest peers queried per request.
	CloseGroupSize int
	// PeerTimeout bounds a single peer's response time.
	PeerTimeout time.Duration
	// EventBusCapacity bounds the node's per-subscriber event queue.
	EventBusCapacity int
}

// Builder provides a fluent interface for constructing a Config, matching
// the defaults-then-override style used across this codebase's other
// parameter structs.
type Builder struct {
	cfg Config
}

// NewBuilder returns a Builder seeded with sensible defaults.
func NewBuilder() *Builder {
	return &Builder{
		cfg: Config{
			CloseGroupSize:   DefaultCloseGroupSize,
			PeerTimeout:      DefaultPeerTimeout,
			EventBusCapacity: DefaultEventBusCapacity,
		},
	}
}

// WithCloseGroupSize overrides K.
func (b *Builder) WithCloseGroupSize(k int) *Builder {
	b.cfg.CloseGroupSize = k
	return b
}

// WithPeerTimeout overrides the per-peer deadline.
func (b *Builder) WithPeerTimeout(d time.Duration) *Builder {
	b.cfg.PeerTimeout = d
	return b
}

// WithEventBusCapacity overrides the event bus's per-subscriber buffer size.
func (b *Builder) WithEventBusCapacity(n int) *Builder {
	b.cfg.EventBusCapacity = n
	return b
}

// Build validates and returns the Config.
func (b *Builder) Build() (Config, error) {
	if b.cfg.CloseGroupSize <= 0 {
		return Config{}, errCloseGroupSizeNotPositive
	}
	if b.cfg.PeerTimeout <= 0 {
		return Config{}, errPeerTimeoutNotPositive
	}
	if b.cfg.EventBusCapacity <= 0 {
		return Config{}, errEventBusCapacityNotPositive
	}
	return b.cfg, nil
}

// Default returns the default Config.
func Default() Config {
	cfg, _ := NewBuilder().Build()
	return cfg
}
