// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package closegroup

import (
	"github.com/luxfi/storanet/protocol"
)

// ReduceGetDbcSpend implements the GetDbcSpend accept-rule: at least
// groupSize successful responses, all equal, is success; any inequality
// or shortfall surfaces the first per-peer error, else the first
// transport error, else ErrUnexpectedResponses. Unanimity matters here
// because a single divergent replica means either a double spend or a
// stale follower, either of which invalidates the read.
func ReduceGetDbcSpend(outcomes []Outcome, groupSize int) (protocol.Response, error) {
	var (
		firstProtocolErr  error
		firstTransportErr error
		successes         []Outcome
	)
	for _, o := range outcomes {
		if o.Err != nil {
			if firstTransportErr == nil {
				firstTransportErr = o.Err
			}
			continue
		}
		if !o.Response.Succeeded() {
			if firstProtocolErr == nil {
				firstProtocolErr = o.Response.Err()
			}
			continue
		}
		successes = append(successes, o)
	}

	if len(successes) >= groupSize && allSpendsEqual(successes) {
		return successes[0].Response, nil
	}
	if firstProtocolErr != nil {
		return protocol.Response{}, firstProtocolErr
	}
	if firstTransportErr != nil {
		return protocol.Response{}, firstTransportErr
	}
	return protocol.Response{}, ErrUnexpectedResponses
}

func allSpendsEqual(outcomes []Outcome) bool {
	if len(outcomes) == 0 {
		return false
	}
	first := outcomes[0].Response.Query.Spend
	for _, o := range outcomes[1:] {
		other := o.Response.Query.Spend
		if first == nil || other == nil || !first.Equal(*other) {
			return false
		}
	}
	return true
}

// ReduceFirstSuccess accepts the first successful response, falling back
// to the first per-peer error, then the first transport error. Chunk
// reads use this rule directly: chunks are content addressed, so any
// replica that answers is correct. ReduceGetRegister is this same rule
// under the name spec.md uses for it.
func ReduceFirstSuccess(outcomes []Outcome) (protocol.Response, error) {
	var firstErr error
	for _, o := range outcomes {
		if o.Err != nil {
			if firstErr == nil {
				firstErr = o.Err
			}
			continue
		}
		if o.Response.Succeeded() {
			return o.Response, nil
		}
		if firstErr == nil {
			firstErr = o.Response.Err()
		}
	}
	if firstErr != nil {
		return protocol.Response{}, firstErr
	}
	return protocol.Response{}, ErrUnexpectedResponses
}

// ReduceGetRegister implements the GetRegister accept-rule: the first
// successful response wins, since registers are merged CRDTs and one
// replica's frontier is enough; freshness is reached by subsequent
// sync+push, not by this read.
func ReduceGetRegister(outcomes []Outcome) (protocol.Response, error) {
	return ReduceFirstSuccess(outcomes)
}

// ReduceAllMustSucceed implements the CreateRegister/EditRegister
// accept-rule: every one of the groupSize peers must succeed, else the
// first per-peer error is surfaced, else the first transport error, else
// ErrUnexpectedResponses.
func ReduceAllMustSucceed(outcomes []Outcome, groupSize int) (protocol.Response, error) {
	var (
		firstProtocolErr  error
		firstTransportErr error
		successCount      int
		lastSuccess       protocol.Response
	)
	for _, o := range outcomes {
		if o.Err != nil {
			if firstTransportErr == nil {
				firstTransportErr = o.Err
			}
			continue
		}
		if !o.Response.Succeeded() {
			if firstProtocolErr == nil {
				firstProtocolErr = o.Response.Err()
			}
			continue
		}
		successCount++
		lastSuccess = o.Response
	}

	if successCount >= groupSize && successCount == len(outcomes) {
		return lastSuccess, nil
	}
	if firstProtocolErr != nil {
		return protocol.Response{}, firstProtocolErr
	}
	if firstTransportErr != nil {
		return protocol.Response{}, firstTransportErr
	}
	return protocol.Response{}, ErrUnexpectedResponses
}
