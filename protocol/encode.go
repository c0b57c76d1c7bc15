// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package protocol

import (
	"bytes"
	"encoding/gob"

	"github.com/luxfi/storanet/register"
	"github.com/luxfi/storanet/spend"
)

func init() {
	// gob needs every concrete type that might flow through the error
	// interface fields on CmdResponse/QueryResponse registered up front;
	// these are the register and spend ProtocolError variants spec.md §6
	// enumerates. Error types declared in closegroup and storage are not
	// registered here or anywhere else.
	gob.Register(&register.AccessDeniedError{})
	gob.Register(&register.ContentBranchDetectedError{})
	gob.Register(&register.MissingSignatureError{})
	gob.Register(&register.InvalidSignatureError{})
	gob.Register(&spend.SignedSrcTxHashMismatchError{})
	gob.Register(&spend.ParentTxHashMismatchError{})
	gob.Register(&spend.InvalidSourceTxError{})
	gob.Register(&spend.DoubleSpendAttemptError{})
}

// Marshal renders a Request as the bytes sent over the overlay
// transport. encoding/gob is this repo's wire-stub codec: the overlay
// itself is an external collaborator (spec.md §1), so any self-describing
// deterministic codec satisfies the contract. Parent hash sets are
// sorted when an op is built (see register.NewRegisterOp), and the one
// map-valued payload field, register.Permissions, carries its
// own GobEncode that sorts entries before encoding, so two logically-equal
// requests always gob-encode byte-identically.
func Marshal(req Request) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(req); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes bytes produced by Marshal.
func Unmarshal(data []byte) (Request, error) {
	var req Request
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&req); err != nil {
		return Request{}, err
	}
	return req, nil
}

// MarshalResponse renders a Response for the wire.
func MarshalResponse(resp Response) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(resp); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalResponse decodes bytes produced by MarshalResponse.
func UnmarshalResponse(data []byte) (Response, error) {
	var resp Response
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&resp); err != nil {
		return Response{}, err
	}
	return resp, nil
}
