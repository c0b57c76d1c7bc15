// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package spend

import (
	"context"
	"errors"
	"fmt"

	"github.com/luxfi/storanet/address"
)

// ParentFetcher resolves the spend currently recorded at addr, via
// whatever close-group fetch the caller wires in (C4). It returns
// ErrParentNotFound if no spend is recorded there yet.
type ParentFetcher interface {
	GetSpend(ctx context.Context, addr address.Address) (SignedSpend, error)
}

// ErrParentNotFound is returned by a ParentFetcher when no spend is
// recorded at the requested address.
var ErrParentNotFound = fmt.Errorf("spend: parent not found")

// Writer persists a validated spend locally (C6), returning
// *DoubleSpendAttemptError if the address is already occupied by a
// different spend.
type Writer interface {
	WriteSpend(ctx context.Context, s SignedSpend) error
}

// ConflictNotifier is told about a detected double spend so it can
// publish the network-wide event the close group observes. It is
// optional: a validator with no notifier simply skips the broadcast.
type ConflictNotifier interface {
	NotifyDoubleSpend(newSpend, existing SignedSpend)
}

// Validator runs the four-step check spec.md assigns to C3: self
// consistency, parent lineage, transaction balance, then persistence.
type Validator struct {
	Parents  ParentFetcher
	Store    Writer
	Notifier ConflictNotifier
}

// NewValidator builds a Validator. notifier may be nil.
func NewValidator(parents ParentFetcher, store Writer, notifier ConflictNotifier) *Validator {
	return &Validator{Parents: parents, Store: store, Notifier: notifier}
}

// Validate checks signedSpend against sourceTx and, if sourceTx declares
// inputs, against each input's recorded parent spend, then persists it.
func (v *Validator) Validate(ctx context.Context, signedSpend SignedSpend, sourceTx Transaction) error {
	srcHash := sourceTx.Hash()
	if srcHash != signedSpend.SrcTxHash {
		return &SignedSrcTxHashMismatchError{Signed: signedSpend.SrcTxHash, Provided: srcHash}
	}

	parentAmounts := make(map[TxHash]BlindedAmount, len(sourceTx.Inputs))
	for _, inputID := range sourceTx.Inputs {
		parentAddr := address.FromSpendAddress(inputID)
		parent, err := v.Parents.GetSpend(ctx, parentAddr)
		if err != nil {
			return fmt.Errorf("spend: fetching parent at %s: %w", parentAddr, err)
		}
		if parent.DstTxHash != signedSpend.SrcTxHash {
			return &ParentTxHashMismatchError{SignedSrc: signedSpend.SrcTxHash, ParentDst: parent.DstTxHash}
		}
		parentAmounts[inputID] = parent.Amount
	}

	if !sourceTx.Verify(parentAmounts) {
		return &InvalidSourceTxError{SignedSrc: signedSpend.SrcTxHash, ProvidedSrc: srcHash}
	}

	if err := v.Store.WriteSpend(ctx, signedSpend); err != nil {
		var conflict *DoubleSpendAttemptError
		if errors.As(err, &conflict) && v.Notifier != nil {
			v.Notifier.NotifyDoubleSpend(conflict.New, conflict.Existing)
		}
		return err
	}
	return nil
}
